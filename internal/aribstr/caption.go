package aribstr

import "errors"

// DRCSRegistry extends DRCSMap with the ability to learn new glyphs off
// the wire, as carried in DRCS data units.
type DRCSRegistry interface {
	DRCSMap
	SetDRCS(code uint16, width, height, depth byte, bitmap []byte)
}

// LanguageInfo describes one language carried by a caption management
// data group.
type LanguageInfo struct {
	Tag        byte
	DMF        byte
	DC         byte
	Code       uint32 // 24-bit ISO 639-2 language code
	Format     byte
	TCS        byte
	RollupMode byte
}

// CaptionPacket is the decoded result of one caption PES payload.
type CaptionPacket struct {
	DataGroupID      byte
	DataGroupVersion byte
	Languages        []LanguageInfo
	Text             string
	Formats          FormatList
}

var (
	ErrBadDataIdentifier = errors.New("aribstr: bad caption data_identifier")
	ErrBadCaptionCRC     = errors.New("aribstr: caption data_group CRC mismatch")
	ErrCaptionTruncated  = errors.New("aribstr: truncated caption PES payload")
)

// ParsePES decodes one caption PES packet payload (the bytes following the
// PES packet's optional_PES_header, i.e. starting at data_identifier).
// drcs may be nil; DRCS text units then render as tofu and DRCS
// definition units are ignored. flags is passed through to the embedded
// ARIB string decoder for each text data unit (Caption is set
// automatically).
func ParsePES(data []byte, flags DecodeFlag, drcs DRCSRegistry) (*CaptionPacket, error) {
	if len(data) < 3 {
		return nil, ErrCaptionTruncated
	}
	dataIdentifier := data[0]
	privateStreamID := data[1]
	if dataIdentifier != 0x80 && dataIdentifier != 0x81 {
		return nil, ErrBadDataIdentifier
	}
	if privateStreamID != 0xFF {
		return nil, ErrBadDataIdentifier
	}
	headerLen := int(data[2] & 0x0F)
	pos := 3 + headerLen
	if pos+5 > len(data) {
		return nil, ErrCaptionTruncated
	}

	groupByte := data[pos]
	dataGroupID := groupByte >> 2
	dataGroupVersion := groupByte & 0x03
	dataGroupSize := int(data[pos+3])<<8 | int(data[pos+4])
	total := 5 + dataGroupSize + 2
	if pos+total > len(data) {
		return nil, ErrCaptionTruncated
	}
	if CRC16CCITT(data[pos:pos+total]) != 0 {
		return nil, ErrBadCaptionCRC
	}
	body := data[pos+5 : pos+5+dataGroupSize]

	pkt := &CaptionPacket{DataGroupID: dataGroupID, DataGroupVersion: dataGroupVersion}
	var unitData []byte
	if dataGroupID == 0x00 || dataGroupID == 0x20 {
		langs, rest, err := parseManagementData(body)
		if err != nil {
			return nil, err
		}
		pkt.Languages = langs
		unitData = rest
	} else {
		rest, err := parseCaptionData(body)
		if err != nil {
			return nil, err
		}
		unitData = rest
	}

	text, formats, err := parseDataUnits(unitData, flags, drcs)
	if err != nil {
		return pkt, err
	}
	pkt.Text = text
	pkt.Formats = formats
	return pkt, nil
}

func parseManagementData(data []byte) ([]LanguageInfo, []byte, error) {
	if len(data) < 2 {
		return nil, nil, ErrCaptionTruncated
	}
	tmd := data[0] >> 6
	pos := 1
	if tmd == 0b10 {
		pos += 5
	}
	if pos >= len(data) {
		return nil, nil, ErrCaptionTruncated
	}
	numLanguages := int(data[pos])
	pos++
	var langs []LanguageInfo
	for i := 0; i < numLanguages; i++ {
		if pos >= len(data) {
			return nil, nil, ErrCaptionTruncated
		}
		tag := data[pos] >> 5
		dmf := data[pos] & 0x0F
		pos++
		var dc byte
		if dmf == 0b1100 || dmf == 0b1101 || dmf == 0b1110 {
			if pos >= len(data) {
				return nil, nil, ErrCaptionTruncated
			}
			dc = data[pos]
			pos++
		}
		if pos+4 > len(data) {
			return nil, nil, ErrCaptionTruncated
		}
		code := uint32(data[pos])<<16 | uint32(data[pos+1])<<8 | uint32(data[pos+2])
		pos += 3
		formatByte := data[pos]
		pos++
		langs = append(langs, LanguageInfo{
			Tag:        tag,
			DMF:        dmf,
			DC:         dc,
			Code:       code,
			Format:     formatByte >> 4,
			TCS:        (formatByte >> 2) & 0x03,
			RollupMode: formatByte & 0x03,
		})
	}
	return langs, data[pos:], nil
}

func parseCaptionData(data []byte) ([]byte, error) {
	if len(data) < 1 {
		return nil, ErrCaptionTruncated
	}
	tmd := data[0] >> 6
	pos := 1
	if tmd == 0b01 || tmd == 0b10 {
		pos += 5
	}
	if pos > len(data) {
		return nil, ErrCaptionTruncated
	}
	return data[pos:], nil
}

func parseDataUnits(data []byte, flags DecodeFlag, drcs DRCSRegistry) (string, FormatList, error) {
	if len(data) < 3 {
		return "", nil, nil
	}
	loopLen := int(data[0])<<16 | int(data[1])<<8 | int(data[2])
	pos := 3
	end := pos + loopLen
	if end > len(data) {
		end = len(data)
	}
	var text string
	var formats FormatList
	for pos < end {
		consumed, unitText, unitFormats := parseOneUnit(data[pos:end], flags, drcs)
		if consumed <= 0 {
			break
		}
		if unitText != "" {
			text += unitText
			formats = append(formats, unitFormats...)
		}
		pos += consumed
	}
	return text, formats, nil
}

func parseOneUnit(data []byte, flags DecodeFlag, drcs DRCSRegistry) (int, string, FormatList) {
	if len(data) < 5 {
		return 0, "", nil
	}
	if data[0] != 0x1F {
		return 0, "", nil
	}
	param := data[1]
	size := int(data[2])<<16 | int(data[3])<<8 | int(data[4])
	pos := 5
	if pos+size > len(data) {
		size = len(data) - pos
	}
	body := data[pos : pos+size]
	consumed := pos + size
	switch param {
	case 0x20:
		var m DRCSMap
		if drcs != nil {
			m = drcs
		}
		text, formats, _ := DecodeCaption(body, flags, m)
		return consumed, text, formats
	case 0x30, 0x31:
		if drcs != nil {
			parseDRCSUnitData(body, drcs)
		}
		return consumed, "", nil
	default:
		return consumed, "", nil
	}
}

func parseDRCSUnitData(data []byte, registry DRCSRegistry) {
	if len(data) < 1 {
		return
	}
	pos := 0
	numberOfCode := int(data[pos])
	pos++
	for c := 0; c < numberOfCode && pos+3 <= len(data); c++ {
		characterCode := uint16(data[pos])<<8 | uint16(data[pos+1])
		pos += 2
		numberOfFont := int(data[pos])
		pos++
		for j := 0; j < numberOfFont; j++ {
			if pos >= len(data) {
				return
			}
			mode := data[pos] & 0x0F
			pos++
			if mode > 0x0001 {
				// Geometric DRCS representation: unsupported, and we
				// cannot determine its length without decoding it, so
				// stop rather than misparse the remainder.
				return
			}
			if pos+3 > len(data) {
				return
			}
			depth := data[pos]
			width := data[pos+1]
			height := data[pos+2]
			pos += 3
			bpp := drcsBitsPerPixel(depth)
			bitmapBytes := (int(width)*int(height)*bpp + 7) / 8
			if pos+bitmapBytes > len(data) {
				return
			}
			bitmap := data[pos : pos+bitmapBytes]
			pos += bitmapBytes
			if j == 0 {
				registry.SetDRCS(characterCode, width, height, depth, bitmap)
			}
		}
	}
}

func drcsBitsPerPixel(depth byte) int {
	switch {
	case depth == 0:
		return 1
	case depth <= 2:
		return 2
	case depth <= 6:
		return 3
	case depth <= 14:
		return 4
	case depth <= 30:
		return 5
	case depth <= 62:
		return 6
	case depth <= 126:
		return 7
	case depth <= 254:
		return 8
	default:
		return 9
	}
}
