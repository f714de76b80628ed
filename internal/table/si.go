package table

import (
	"github.com/isdb-go/epgd/internal/bcdtime"
	"github.com/isdb-go/epgd/internal/descriptor"
	"github.com/isdb-go/epgd/internal/section"
)

// NIT is the Network Information Table.
type NIT struct {
	NetworkID           uint16
	NetworkDescriptors   *descriptor.DescriptorBlock
	TransportStreams     []NITTransportStream
}

type NITTransportStream struct {
	TransportStreamID  uint16
	OriginalNetworkID  uint16
	Descriptors        *descriptor.DescriptorBlock
}

func DecodeNIT(s section.Section) (NIT, error) {
	body := s.Payload
	if len(body) < 2 {
		return NIT{}, ErrShort
	}
	nit := NIT{NetworkID: s.TableIDExtension}
	networkDescLen := int(uint16(body[0])&0x0F)<<8 | int(body[1])
	pos := 2
	if pos+networkDescLen > len(body) {
		return NIT{}, ErrShort
	}
	nit.NetworkDescriptors = descriptor.ParseBlock(body[pos : pos+networkDescLen])
	pos += networkDescLen
	if pos+2 > len(body) {
		return nit, nil
	}
	tsLoopLen := int(uint16(body[pos])&0x0F)<<8 | int(body[pos+1])
	pos += 2
	end := pos + tsLoopLen
	if end > len(body) {
		end = len(body)
	}
	for pos+6 <= end {
		tsid := uint16(body[pos])<<8 | uint16(body[pos+1])
		onid := uint16(body[pos+2])<<8 | uint16(body[pos+3])
		descLen := int(uint16(body[pos+4])&0x0F)<<8 | int(body[pos+5])
		pos += 6
		if pos+descLen > end {
			break
		}
		nit.TransportStreams = append(nit.TransportStreams, NITTransportStream{
			TransportStreamID: tsid,
			OriginalNetworkID: onid,
			Descriptors:       descriptor.ParseBlock(body[pos : pos+descLen]),
		})
		pos += descLen
	}
	return nit, nil
}

// SDT is the Service Description Table (actual or other TS).
type SDT struct {
	TransportStreamID uint16
	OriginalNetworkID uint16
	Services          []SDTService
}

type SDTService struct {
	ServiceID      uint16
	EITScheduleFlag bool
	EITPresentFollowingFlag bool
	RunningStatus  byte
	FreeCAMode     bool
	Descriptors    *descriptor.DescriptorBlock
}

func DecodeSDT(s section.Section) (SDT, error) {
	body := s.Payload
	if len(body) < 3 {
		return SDT{}, ErrShort
	}
	sdt := SDT{
		TransportStreamID: s.TableIDExtension,
		OriginalNetworkID: uint16(body[0])<<8 | uint16(body[1]),
	}
	pos := 3 // skip original_network_id(2) + reserved_future_use(1)
	for pos+5 <= len(body) {
		serviceID := uint16(body[pos])<<8 | uint16(body[pos+1])
		eitSchedule := body[pos+2]&0x02 != 0
		eitPF := body[pos+2]&0x01 != 0
		runningStatus := (body[pos+3] >> 5) & 0x07
		freeCA := body[pos+3]&0x10 != 0
		descLen := int(body[pos+3]&0x0F)<<8 | int(body[pos+4])
		pos += 5
		if pos+descLen > len(body) {
			break
		}
		sdt.Services = append(sdt.Services, SDTService{
			ServiceID:               serviceID,
			EITScheduleFlag:         eitSchedule,
			EITPresentFollowingFlag: eitPF,
			RunningStatus:           runningStatus,
			FreeCAMode:              freeCA,
			Descriptors:             descriptor.ParseBlock(body[pos : pos+descLen]),
		})
		pos += descLen
	}
	return sdt, nil
}

// BIT is the Broadcaster Information Table.
type BIT struct {
	OriginalNetworkID        uint16
	BroadcastViewPropriety   bool
	Broadcasters             []BITBroadcaster
}

type BITBroadcaster struct {
	BroadcasterID uint16
	Descriptors   *descriptor.DescriptorBlock
}

func DecodeBIT(s section.Section) (BIT, error) {
	body := s.Payload
	if len(body) < 2 {
		return BIT{}, ErrShort
	}
	bit := BIT{
		OriginalNetworkID:      s.TableIDExtension,
		BroadcastViewPropriety: body[0]&0x80 != 0,
	}
	firstDescLen := int(uint16(body[0])&0x0F)<<8 | int(body[1])
	pos := 2 + firstDescLen
	if pos > len(body) {
		return bit, nil
	}
	for pos+4 <= len(body) {
		broadcasterID := uint16(body[pos])<<8 | uint16(body[pos+1])
		descLen := int(uint16(body[pos+2])&0x0F)<<8 | int(body[pos+3])
		pos += 4
		if pos+descLen > len(body) {
			break
		}
		bit.Broadcasters = append(bit.Broadcasters, BITBroadcaster{
			BroadcasterID: broadcasterID,
			Descriptors:   descriptor.ParseBlock(body[pos : pos+descLen]),
		})
		pos += descLen
	}
	return bit, nil
}

// TOT is the Time Offset Table: a single MJD+BCD broadcast time plus a
// descriptor block (typically carrying LocalTimeOffsetDescriptor, tag
// 0x58). TOT sections carry no CRC; section.Assembler's length check is
// the only integrity check applied before this decoder runs.
type TOT struct {
	Time        bcdtime.DateTime
	HasTime     bool
	Descriptors *descriptor.DescriptorBlock
}

func DecodeTOT(s section.Section) (TOT, error) {
	body := s.Payload
	if len(body) < 5 {
		return TOT{}, ErrShort
	}
	dt, ok := bcdtime.MJDBCDTimeToDateTime(body[0:5])
	tot := TOT{Time: dt, HasTime: ok}
	rest := body[5:]
	if len(rest) >= 2 {
		descLen := int(uint16(rest[0])&0x0F)<<8 | int(rest[1])
		if 2+descLen <= len(rest) {
			tot.Descriptors = descriptor.ParseBlock(rest[2 : 2+descLen])
		}
	}
	return tot, nil
}

// CDT is the Common Data Table (logo carousel header). The module body is
// parsed only as an opaque blob; logo bitmap decoding is out of scope.
type CDT struct {
	DownloadDataID uint16
	OriginalNetworkID uint16
	DataType       byte
	Descriptors    *descriptor.DescriptorBlock
	ModuleBody     []byte
}

func DecodeCDT(s section.Section) (CDT, error) {
	body := s.Payload
	if len(body) < 3 {
		return CDT{}, ErrShort
	}
	cdt := CDT{
		DownloadDataID:    s.TableIDExtension,
		OriginalNetworkID: uint16(body[0])<<8 | uint16(body[1]),
		DataType:          body[2],
	}
	pos := 3
	if pos+2 > len(body) {
		return cdt, nil
	}
	descLen := int(uint16(body[pos])&0x0F)<<8 | int(body[pos+1])
	pos += 2
	if pos+descLen > len(body) {
		return cdt, nil
	}
	cdt.Descriptors = descriptor.ParseBlock(body[pos : pos+descLen])
	pos += descLen
	cdt.ModuleBody = append([]byte(nil), body[pos:]...)
	return cdt, nil
}

// SDTT is the Software Download Trigger Table.
type SDTT struct {
	MakerID               byte
	ModelID               byte
	TransportStreamID     uint16
	OriginalNetworkID     uint16
	ServiceID             uint16
	Contents              []SDTTContent
}

type SDTTContent struct {
	GroupID       byte
	TargetVersion uint16
	NewVersion    uint16
	DownloadLevel byte
	Schedules     []SDTTSchedule
	Descriptors   *descriptor.DescriptorBlock
}

type SDTTSchedule struct {
	StartTime   bcdtime.DateTime
	DurationSec uint32
}

func DecodeSDTT(s section.Section) (SDTT, error) {
	body := s.Payload
	if len(body) < 7 {
		return SDTT{}, ErrShort
	}
	sdtt := SDTT{
		MakerID:           byte(s.TableIDExtension >> 8),
		ModelID:           byte(s.TableIDExtension),
		TransportStreamID: uint16(body[0])<<8 | uint16(body[1]),
		OriginalNetworkID: uint16(body[2])<<8 | uint16(body[3]),
		ServiceID:         uint16(body[4])<<8 | uint16(body[5]),
	}
	numContents := int(body[6])
	pos := 7
	for c := 0; c < numContents && pos+4 <= len(body); c++ {
		groupID := (body[pos] >> 4) & 0x0F
		targetVersion := (uint16(body[pos]&0x0F) << 8) | uint16(body[pos+1])
		newVersion := (uint16(body[pos+2]&0xF0) << 4) | uint16(body[pos+3])
		downloadLevel := (body[pos+2] >> 2) & 0x03
		pos += 4
		if pos+2 > len(body) {
			break
		}
		scheduleTimeInfoLen := int(body[pos])
		pos++
		content := SDTTContent{GroupID: groupID, TargetVersion: targetVersion, NewVersion: newVersion, DownloadLevel: downloadLevel}
		end := pos + scheduleTimeInfoLen
		if end > len(body) {
			end = len(body)
		}
		for pos+7 <= end {
			dt, _ := bcdtime.MJDBCDTimeToDateTime(body[pos : pos+5])
			durationSec := bcdtime.BCDTimeToSecond(body[pos+5 : pos+8])
			content.Schedules = append(content.Schedules, SDTTSchedule{StartTime: dt, DurationSec: durationSec})
			pos += 8
		}
		pos = end
		if pos+2 > len(body) {
			break
		}
		descLen := int(uint16(body[pos])&0x0F)<<8 | int(body[pos+1])
		pos += 2
		if pos+descLen > len(body) {
			break
		}
		content.Descriptors = descriptor.ParseBlock(body[pos : pos+descLen])
		pos += descLen
		sdtt.Contents = append(sdtt.Contents, content)
	}
	return sdtt, nil
}
