// Package descriptor decodes the MPEG-2/ARIB descriptor loops nested in
// PSI/SI table items (per-program in PMT, per-transport-stream in NIT,
// per-event in EIT, ...). Each descriptor is a (tag, length, body) triple;
// this package knows ~40 tags used by ISDB-T/S and decodes their bodies
// into typed field structs. Unknown tags survive as RawBody instead of
// failing the surrounding block.
package descriptor

import "github.com/isdb-go/epgd/internal/aribstr"

// Tag constants for every descriptor this package understands.
const (
	TagCA                      = 0x09
	TagNetworkName             = 0x40
	TagServiceList             = 0x41
	TagSatelliteDelivery       = 0x43
	TagService                 = 0x48
	TagLinkage                 = 0x4A
	TagShortEvent              = 0x4D
	TagExtendedEvent           = 0x4E
	TagComponent               = 0x50
	TagStreamID                = 0x52
	TagContent                 = 0x54
	TagLocalTimeOffset         = 0x58
	TagDigitalCopyControl      = 0xC1
	TagAudioComponent          = 0xC4
	TagHyperlink               = 0xC5
	TagDataContent             = 0xC7
	TagVideoDecodeControl      = 0xC8
	TagCAEMMTS                 = 0xCB
	TagCAContractInfo          = 0xCC
	TagCAService                = 0xCD
	TagLogoTransmission         = 0xCF
	TagSeries                   = 0xD5
	TagEventGroup                = 0xD6
	TagSIParameter               = 0xD7
	TagBroadcasterName            = 0xD8
	TagComponentGroup            = 0xD9
	TagLDTLinkage                 = 0xDC
	TagAccessControl               = 0xF6
	TagTerrestrialDeliverySystem  = 0xFA
	TagPartialReception            = 0xFB
	TagEmergencyInformation        = 0xFC
	TagDataComponent               = 0xFD
	TagSystemManagement             = 0xFE
)

// Descriptor is one tagged record in a DescriptorBlock. Body holds one of
// the per-tag *Fields structs below, or RawBody for any tag this package
// does not decode (unknown tags, or a tag whose body failed its schema
// check — a malformed descriptor is discarded without failing its
// siblings, per spec).
type Descriptor struct {
	Tag  byte
	Body any
}

// RawBody is the fallback payload for unrecognized or malformed
// descriptors.
type RawBody struct {
	Data []byte
}

// DescriptorBlock owns an ordered sequence of descriptors parsed from one
// (tag,length,body)* loop.
type DescriptorBlock struct {
	items []Descriptor
}

// ParseBlock parses data as a sequence of (tag, length, body) records
// until it is exhausted. A record whose declared length would run past
// the end of data terminates the loop early (the block keeps whatever it
// parsed so far).
func ParseBlock(data []byte) *DescriptorBlock {
	b := &DescriptorBlock{}
	pos := 0
	for pos+2 <= len(data) {
		tag := data[pos]
		length := int(data[pos+1])
		pos += 2
		if pos+length > len(data) {
			break
		}
		body := data[pos : pos+length]
		pos += length
		b.items = append(b.items, Descriptor{Tag: tag, Body: decodeBody(tag, body)})
	}
	return b
}

// All returns every descriptor in wire order.
func (b *DescriptorBlock) All() []Descriptor {
	if b == nil {
		return nil
	}
	return b.items
}

// Lookup returns the first descriptor with the given tag.
func (b *DescriptorBlock) Lookup(tag byte) (Descriptor, bool) {
	if b == nil {
		return Descriptor{}, false
	}
	for _, d := range b.items {
		if d.Tag == tag {
			return d, true
		}
	}
	return Descriptor{}, false
}

// LookupAll returns every descriptor with the given tag, in wire order.
func (b *DescriptorBlock) LookupAll(tag byte) []Descriptor {
	if b == nil {
		return nil
	}
	var out []Descriptor
	for _, d := range b.items {
		if d.Tag == tag {
			out = append(out, d)
		}
	}
	return out
}

func decodeBody(tag byte, body []byte) any {
	var ok bool
	var result any
	switch tag {
	case TagCA:
		result, ok = parseCA(body)
	case TagNetworkName:
		result, ok = parseNetworkName(body)
	case TagServiceList:
		result, ok = parseServiceList(body)
	case TagSatelliteDelivery:
		result, ok = parseSatelliteDelivery(body)
	case TagService:
		result, ok = parseService(body)
	case TagLinkage:
		result, ok = parseLinkage(body)
	case TagShortEvent:
		result, ok = parseShortEvent(body)
	case TagExtendedEvent:
		result, ok = parseExtendedEvent(body)
	case TagComponent:
		result, ok = parseComponent(body)
	case TagStreamID:
		result, ok = parseStreamID(body)
	case TagContent:
		result, ok = parseContent(body)
	case TagLocalTimeOffset:
		result, ok = parseLocalTimeOffset(body)
	case TagDigitalCopyControl:
		result, ok = parseDigitalCopyControl(body)
	case TagAudioComponent:
		result, ok = parseAudioComponent(body)
	case TagHyperlink:
		result, ok = parseHyperlink(body)
	case TagDataContent:
		result, ok = parseDataContent(body)
	case TagVideoDecodeControl:
		result, ok = parseVideoDecodeControl(body)
	case TagCAEMMTS:
		result, ok = parseCAEMMTS(body)
	case TagCAContractInfo:
		result, ok = parseCAContractInfo(body)
	case TagCAService:
		result, ok = parseCAService(body)
	case TagLogoTransmission:
		result, ok = parseLogoTransmission(body)
	case TagSeries:
		result, ok = parseSeries(body)
	case TagEventGroup:
		result, ok = parseEventGroup(body)
	case TagSIParameter:
		result, ok = parseSIParameter(body)
	case TagBroadcasterName:
		result, ok = parseBroadcasterName(body)
	case TagComponentGroup:
		result, ok = parseComponentGroup(body)
	case TagLDTLinkage:
		result, ok = parseLDTLinkage(body)
	case TagAccessControl:
		result, ok = parseAccessControl(body)
	case TagTerrestrialDeliverySystem:
		result, ok = parseTerrestrialDeliverySystem(body)
	case TagPartialReception:
		result, ok = parsePartialReception(body)
	case TagEmergencyInformation:
		result, ok = parseEmergencyInformation(body)
	case TagDataComponent:
		result, ok = parseDataComponent(body)
	case TagSystemManagement:
		result, ok = parseSystemManagement(body)
	}
	if !ok {
		return RawBody{Data: append([]byte(nil), body...)}
	}
	return result
}

// decodeARIB renders an ARIB-encoded text field to Unicode, returning an
// empty string on decode failure rather than propagating an error — text
// fields are cosmetic and a decode failure must not discard the rest of
// the descriptor.
func decodeARIB(b []byte) string {
	s, err := aribstr.Decode(b, aribstr.DecodeFlagNone)
	if err != nil {
		return ""
	}
	return s
}
