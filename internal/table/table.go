// Package table decodes PSI/SI section payloads (spec.md §4.4) into typed
// table structures: PAT, CAT, PMT, NIT, SDT, EIT, BIT, TOT, CDT, SDTT. Each
// Decode* function consumes a section.Section (already CRC-checked and
// deduplicated by the assembler) and the already-known table_id, returning
// a typed result or an error for malformed content.
package table

import (
	"errors"
	"fmt"

	"github.com/isdb-go/epgd/internal/descriptor"
	"github.com/isdb-go/epgd/internal/section"
)

var ErrShort = errors.New("table: section payload too short")

// Elementary stream type constants needed by downstream PMT consumers.
const (
	StreamTypeMPEG2Video = 0x02
	StreamTypeAAC        = 0x0F
	StreamTypeMPEG4Audio = 0x11
	StreamTypeH264       = 0x1B
	StreamTypeH265       = 0x24
	StreamTypeDataCarousel = 0x0D
	StreamTypePrivateData  = 0x06
)

// Table ids this package understands (spec.md §4.4).
const (
	TableIDPAT        = 0x00
	TableIDCAT        = 0x01
	TableIDPMT        = 0x02
	TableIDNIT        = 0x40
	TableIDNITOther   = 0x41
	TableIDSDTActual  = 0x42
	TableIDSDTOther   = 0x46
	TableIDEITPFActual = 0x4E
	TableIDEITPFOther  = 0x4F
	TableIDBIT        = 0xC4
	TableIDTOT        = 0x73
	TableIDCDT        = 0xC8
	TableIDSDTT       = 0xC3
)

// IsEIT reports whether a table_id falls in the whole EIT range
// (0x4E-0x6F: p/f actual/other plus schedule basic/extended actual/other).
func IsEIT(tableID byte) bool {
	return tableID >= 0x4E && tableID <= 0x6F
}

// IsScheduleEIT reports whether tableID is one of the schedule
// (non-present/following) EIT sub-ranges.
func IsScheduleEIT(tableID byte) bool {
	return tableID >= 0x50 && tableID <= 0x6F
}

// IsExtendedEIT reports whether a schedule EIT table_id carries extended
// (vs basic) event text, per the low bit-3 split in spec.md §4.4.
func IsExtendedEIT(tableID byte) bool {
	return tableID&0x08 != 0
}

// PAT is the Program Association Table: transport_stream_id plus the set
// of (program_number, pid) pairs it advertises. program_number==0 marks
// the NIT pid rather than a program.
type PAT struct {
	TransportStreamID uint16
	Programs          []PATEntry
}

type PATEntry struct {
	ProgramNumber uint16
	PID           uint16
}

func DecodePAT(s section.Section) (PAT, error) {
	pat := PAT{TransportStreamID: s.TableIDExtension}
	body := s.Payload
	for pos := 0; pos+4 <= len(body); pos += 4 {
		programNumber := uint16(body[pos])<<8 | uint16(body[pos+1])
		pid := (uint16(body[pos+2])<<8 | uint16(body[pos+3])) & 0x1FFF
		pat.Programs = append(pat.Programs, PATEntry{ProgramNumber: programNumber, PID: pid})
	}
	return pat, nil
}

// CAT carries only a descriptor block (typically CA descriptors for EMM
// PIDs).
type CAT struct {
	Descriptors *descriptor.DescriptorBlock
}

func DecodeCAT(s section.Section) (CAT, error) {
	return CAT{Descriptors: descriptor.ParseBlock(s.Payload)}, nil
}

// PMT is the Program Map Table.
type PMT struct {
	ProgramNumber uint16
	PCRPID        uint16
	Descriptors   *descriptor.DescriptorBlock
	Streams       []PMTStream
}

type PMTStream struct {
	StreamType    byte
	ElementaryPID uint16
	Descriptors   *descriptor.DescriptorBlock
}

func DecodePMT(s section.Section) (PMT, error) {
	body := s.Payload
	if len(body) < 4 {
		return PMT{}, ErrShort
	}
	pmt := PMT{ProgramNumber: s.TableIDExtension}
	pmt.PCRPID = (uint16(body[0])<<8 | uint16(body[1])) & 0x1FFF
	programInfoLen := int(uint16(body[2])&0x0F)<<8 | int(body[3])
	pos := 4
	if pos+programInfoLen > len(body) {
		return PMT{}, ErrShort
	}
	pmt.Descriptors = descriptor.ParseBlock(body[pos : pos+programInfoLen])
	pos += programInfoLen
	for pos+5 <= len(body) {
		streamType := body[pos]
		elementaryPID := (uint16(body[pos+1])<<8 | uint16(body[pos+2])) & 0x1FFF
		esInfoLen := int(uint16(body[pos+3])&0x0F)<<8 | int(body[pos+4])
		pos += 5
		if pos+esInfoLen > len(body) {
			break
		}
		pmt.Streams = append(pmt.Streams, PMTStream{
			StreamType:    streamType,
			ElementaryPID: elementaryPID,
			Descriptors:   descriptor.ParseBlock(body[pos : pos+esInfoLen]),
		})
		pos += esInfoLen
	}
	return pmt, nil
}

// Decode dispatches on table_id to the appropriate typed decoder. Callers
// that already know which table they expect may call the specific
// Decode<Name> function directly instead.
func Decode(s section.Section) (any, error) {
	switch {
	case s.TableID == TableIDPAT:
		return DecodePAT(s)
	case s.TableID == TableIDCAT:
		return DecodeCAT(s)
	case s.TableID == TableIDPMT:
		return DecodePMT(s)
	case s.TableID == TableIDNIT || s.TableID == TableIDNITOther:
		return DecodeNIT(s)
	case s.TableID == TableIDSDTActual || s.TableID == TableIDSDTOther:
		return DecodeSDT(s)
	case s.TableID == TableIDBIT:
		return DecodeBIT(s)
	case s.TableID == TableIDTOT:
		return DecodeTOT(s)
	case s.TableID == TableIDCDT:
		return DecodeCDT(s)
	case s.TableID == TableIDSDTT:
		return DecodeSDTT(s)
	case IsEIT(s.TableID):
		return DecodeEIT(s)
	default:
		return nil, fmt.Errorf("table: no decoder for table_id 0x%02x", s.TableID)
	}
}
