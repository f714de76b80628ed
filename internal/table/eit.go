package table

import (
	"github.com/isdb-go/epgd/internal/bcdtime"
	"github.com/isdb-go/epgd/internal/descriptor"
	"github.com/isdb-go/epgd/internal/section"
)

// EIT is one decoded Event Information Table section. ServiceID is the
// section's table_id_extension; table_id itself tells the caller whether
// this is present/following or schedule, actual or other (see IsEIT,
// IsScheduleEIT, IsExtendedEIT).
type EIT struct {
	TableID                  byte
	ServiceID                uint16
	TransportStreamID        uint16
	OriginalNetworkID        uint16
	SegmentLastSectionNumber byte
	LastTableID              byte
	SectionNumber            byte
	LastSectionNumber        byte
	VersionNumber            byte
	Events                   []EITEvent
}

type EITEvent struct {
	EventID       uint16
	StartTime     bcdtime.DateTime
	HasStartTime  bool
	Duration      uint32 // seconds
	RunningStatus byte
	FreeCAMode    bool
	Descriptors   *descriptor.DescriptorBlock
}

func DecodeEIT(s section.Section) (EIT, error) {
	body := s.Payload
	if len(body) < 6 {
		return EIT{}, ErrShort
	}
	eit := EIT{
		TableID:                  s.TableID,
		ServiceID:                s.TableIDExtension,
		TransportStreamID:        uint16(body[0])<<8 | uint16(body[1]),
		OriginalNetworkID:        uint16(body[2])<<8 | uint16(body[3]),
		SegmentLastSectionNumber: body[4],
		LastTableID:              body[5],
		SectionNumber:            s.SectionNumber,
		LastSectionNumber:        s.LastSectionNumber,
		VersionNumber:            s.VersionNumber,
	}
	pos := 6
	for pos+12 <= len(body) {
		eventID := uint16(body[pos])<<8 | uint16(body[pos+1])
		dt, hasTime := bcdtime.MJDBCDTimeToDateTime(body[pos+2 : pos+7])
		duration := bcdtime.BCDTimeToSecond(body[pos+7 : pos+10])
		runningStatus := (body[pos+10] >> 5) & 0x07
		freeCA := body[pos+10]&0x10 != 0
		descLoopLen := int(body[pos+10]&0x0F)<<8 | int(body[pos+11])
		pos += 12
		if pos+descLoopLen > len(body) {
			break
		}
		eit.Events = append(eit.Events, EITEvent{
			EventID:       eventID,
			StartTime:     dt,
			HasStartTime:  hasTime,
			Duration:      duration,
			RunningStatus: runningStatus,
			FreeCAMode:    freeCA,
			Descriptors:   descriptor.ParseBlock(body[pos : pos+descLoopLen]),
		})
		pos += descLoopLen
	}
	return eit, nil
}

// ScheduleInfo tracks EIT schedule completeness for one service, separately
// for basic and extended, per spec.md §4.6 "Completeness tracking". Each
// of the up to 8 table_ids in a range (low 3 bits of table_id) gets its
// own tableState; each tableState tracks up to 32 segments of up to 8
// sections each.
type ScheduleInfo struct {
	Basic    tableList
	Extended tableList
}

type tableList struct {
	valid       bool
	lastTableID byte
	tables      []tableState
}

type tableState struct {
	versionSet    bool
	versionNumber byte
	totalSegments int
	segExpected   [32]uint8
	segReceived   [32]uint8
	complete      bool
}

// OnSection folds in one received EIT section's header fields and reports
// whether this call transitioned the table (basic or extended, as given by
// isExtended) from incomplete to complete.
func (si *ScheduleInfo) OnSection(tableID, sectionNumber, segmentLastSectionNumber, lastSectionNumber, versionNumber, lastTableID byte, currentHour int) bool {
	if tableID < 0x50 || tableID > 0x6F {
		return false
	}
	list := &si.Basic
	if IsExtendedEIT(tableID) {
		list = &si.Extended
	}
	index := int(tableID & 0x07)

	if !list.valid || list.lastTableID != lastTableID {
		n := int(lastTableID&0x07) + 1
		list.tables = make([]tableState, n)
		list.lastTableID = lastTableID
		list.valid = true
	}
	if index >= len(list.tables) {
		grown := make([]tableState, index+1)
		copy(grown, list.tables)
		list.tables = grown
	}
	t := &list.tables[index]

	if !t.versionSet || t.versionNumber != versionNumber {
		*t = tableState{versionSet: true, versionNumber: versionNumber}
	}

	total := int(lastSectionNumber>>3) + 1
	if total > 32 {
		total = 32
	}
	if total > t.totalSegments {
		t.totalSegments = total
	}

	segment := int(sectionNumber >> 3)
	if segment >= 32 {
		return false
	}
	sectionsInSegment := int(segmentLastSectionNumber&0x07) + 1
	t.segExpected[segment] = uint8(sectionsInSegment)
	t.segReceived[segment] |= 1 << (sectionNumber & 0x07)

	wasComplete := t.complete
	t.complete = tableIsComplete(t, index, currentHour)
	list.tables[index] = *t
	return !wasComplete && t.complete
}

func tableIsComplete(t *tableState, index, currentHour int) bool {
	if t.totalSegments == 0 {
		return false
	}
	excuseBefore := 0
	if index == 0 {
		excuseBefore = currentHour / 3
	}
	for seg := 0; seg < t.totalSegments; seg++ {
		if index == 0 && seg < excuseBefore {
			continue
		}
		expected := t.segExpected[seg]
		if expected == 0 {
			return false
		}
		full := uint8((1 << expected) - 1)
		if t.segReceived[seg]&full != full {
			return false
		}
	}
	return true
}

// IsComplete reports whether the table (basic or extended) at the given
// low-3-bits table index is currently complete.
func (si *ScheduleInfo) IsComplete(index int, extended bool) bool {
	list := &si.Basic
	if extended {
		list = &si.Extended
	}
	if !list.valid || index >= len(list.tables) {
		return false
	}
	return list.tables[index].complete
}
