package descriptor

import "github.com/isdb-go/epgd/internal/bcdtime"

// ──────────────────────────── 0x09 CA ────────────────────────────

type CAFields struct {
	CASystemID  uint16
	CAPID       uint16
	PrivateData []byte
}

func parseCA(b []byte) (CAFields, bool) {
	if len(b) < 4 {
		return CAFields{}, false
	}
	return CAFields{
		CASystemID:  uint16(b[0])<<8 | uint16(b[1]),
		CAPID:       uint16(b[2]&0x1F)<<8 | uint16(b[3]),
		PrivateData: append([]byte(nil), b[4:]...),
	}, true
}

// ──────────────────────────── 0x40 Network name ────────────────────────────

type NetworkNameFields struct {
	NetworkName string
}

func parseNetworkName(b []byte) (NetworkNameFields, bool) {
	return NetworkNameFields{NetworkName: decodeARIB(b)}, true
}

// ──────────────────────────── 0x41 Service list ────────────────────────────

type ServiceListEntry struct {
	ServiceID   uint16
	ServiceType byte
}

type ServiceListFields struct {
	Services []ServiceListEntry
}

func parseServiceList(b []byte) (ServiceListFields, bool) {
	var f ServiceListFields
	for pos := 0; pos+3 <= len(b); pos += 3 {
		f.Services = append(f.Services, ServiceListEntry{
			ServiceID:   uint16(b[pos])<<8 | uint16(b[pos+1]),
			ServiceType: b[pos+2],
		})
	}
	return f, true
}

// ──────────────────────────── 0x43 Satellite delivery ────────────────────────────

type SatelliteDeliveryFields struct {
	FrequencyBCD       uint32 // 8 BCD digits, GHz*100000
	OrbitalPositionBCD uint16 // 4 BCD digits, degrees*10
	WestEastFlag       bool
	Polarization       byte // 0=H 1=V 2=L 3=R
	Modulation         byte
	SymbolRateBCD       uint32 // 7 BCD digits in top 28 bits, Msymbol/s*10000
	FECInner            byte
}

func parseSatelliteDelivery(b []byte) (SatelliteDeliveryFields, bool) {
	if len(b) < 11 {
		return SatelliteDeliveryFields{}, false
	}
	freq := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	orbital := uint16(b[4])<<8 | uint16(b[5])
	westEast := b[6]&0x80 != 0
	polarization := (b[6] >> 5) & 0x03
	modulation := b[6] & 0x1F
	symRateFEC := uint32(b[7])<<24 | uint32(b[8])<<16 | uint32(b[9])<<8 | uint32(b[10])
	return SatelliteDeliveryFields{
		FrequencyBCD:       freq,
		OrbitalPositionBCD: orbital,
		WestEastFlag:       westEast,
		Polarization:       polarization,
		Modulation:         modulation,
		SymbolRateBCD:      symRateFEC >> 4,
		FECInner:           byte(symRateFEC & 0x0F),
	}, true
}

// ──────────────────────────── 0x48 Service ────────────────────────────

type ServiceFields struct {
	ServiceType  byte
	ProviderName string
	ServiceName  string
}

func parseService(b []byte) (ServiceFields, bool) {
	if len(b) < 2 {
		return ServiceFields{}, false
	}
	svcType := b[0]
	provLen := int(b[1])
	pos := 2
	if pos+provLen > len(b) {
		return ServiceFields{}, false
	}
	provider := decodeARIB(b[pos : pos+provLen])
	pos += provLen
	if pos >= len(b) {
		return ServiceFields{}, false
	}
	nameLen := int(b[pos])
	pos++
	if pos+nameLen > len(b) {
		return ServiceFields{}, false
	}
	name := decodeARIB(b[pos : pos+nameLen])
	return ServiceFields{ServiceType: svcType, ProviderName: provider, ServiceName: name}, true
}

// ──────────────────────────── 0x4A Linkage ────────────────────────────

type LinkageFields struct {
	TransportStreamID uint16
	OriginalNetworkID uint16
	ServiceID         uint16
	LinkageType       byte
	PrivateData       []byte
}

func parseLinkage(b []byte) (LinkageFields, bool) {
	if len(b) < 7 {
		return LinkageFields{}, false
	}
	return LinkageFields{
		TransportStreamID: uint16(b[0])<<8 | uint16(b[1]),
		OriginalNetworkID: uint16(b[2])<<8 | uint16(b[3]),
		ServiceID:         uint16(b[4])<<8 | uint16(b[5]),
		LinkageType:       b[6],
		PrivateData:       append([]byte(nil), b[7:]...),
	}, true
}

// ──────────────────────────── 0x4D Short event ────────────────────────────

type ShortEventFields struct {
	LanguageCode [3]byte
	EventName    string
	Description  string
}

func parseShortEvent(b []byte) (ShortEventFields, bool) {
	if len(b) < 4 {
		return ShortEventFields{}, false
	}
	var f ShortEventFields
	copy(f.LanguageCode[:], b[0:3])
	pos := 3
	nameLen := int(b[pos])
	pos++
	if pos+nameLen > len(b) {
		return ShortEventFields{}, false
	}
	f.EventName = decodeARIB(b[pos : pos+nameLen])
	pos += nameLen
	if pos >= len(b) {
		return f, true
	}
	textLen := int(b[pos])
	pos++
	if pos+textLen > len(b) {
		return f, true
	}
	f.Description = decodeARIB(b[pos : pos+textLen])
	return f, true
}

// ──────────────────────────── 0x4E Extended event ────────────────────────────

type ExtendedEventItem struct {
	Description string
	Item        string
}

type ExtendedEventFields struct {
	DescriptorNumber     byte
	LastDescriptorNumber byte
	LanguageCode         [3]byte
	Items                []ExtendedEventItem
	Text                 string
}

func parseExtendedEvent(b []byte) (ExtendedEventFields, bool) {
	if len(b) < 5 {
		return ExtendedEventFields{}, false
	}
	var f ExtendedEventFields
	f.DescriptorNumber = b[0] >> 4
	f.LastDescriptorNumber = b[0] & 0x0F
	copy(f.LanguageCode[:], b[1:4])
	itemsLen := int(b[4])
	pos := 5
	if pos+itemsLen > len(b) {
		return ExtendedEventFields{}, false
	}
	end := pos + itemsLen
	for pos < end {
		if pos+1 > end {
			break
		}
		descLen := int(b[pos])
		pos++
		if pos+descLen > end {
			break
		}
		desc := decodeARIB(b[pos : pos+descLen])
		pos += descLen
		if pos+1 > end {
			break
		}
		itemLen := int(b[pos])
		pos++
		if pos+itemLen > end {
			break
		}
		item := decodeARIB(b[pos : pos+itemLen])
		pos += itemLen
		f.Items = append(f.Items, ExtendedEventItem{Description: desc, Item: item})
	}
	pos = end
	if pos >= len(b) {
		return f, true
	}
	textLen := int(b[pos])
	pos++
	if pos+textLen > len(b) {
		return f, true
	}
	f.Text = decodeARIB(b[pos : pos+textLen])
	return f, true
}

// ──────────────────────────── 0x50 Component ────────────────────────────

type ComponentFields struct {
	StreamContent byte
	ComponentType byte
	ComponentTag  byte
	LanguageCode  [3]byte
	Text          string
}

func parseComponent(b []byte) (ComponentFields, bool) {
	if len(b) < 6 {
		return ComponentFields{}, false
	}
	var f ComponentFields
	f.StreamContent = b[0] & 0x0F
	f.ComponentType = b[1]
	f.ComponentTag = b[2]
	copy(f.LanguageCode[:], b[3:6])
	if len(b) > 6 {
		f.Text = decodeARIB(b[6:])
	}
	return f, true
}

// ──────────────────────────── 0x52 Stream ID ────────────────────────────

type StreamIDFields struct {
	ComponentTag byte
}

func parseStreamID(b []byte) (StreamIDFields, bool) {
	if len(b) < 1 {
		return StreamIDFields{}, false
	}
	return StreamIDFields{ComponentTag: b[0]}, true
}

// ──────────────────────────── 0x54 Content ────────────────────────────

type ContentNibble struct {
	ContentNibbleLevel1 byte
	ContentNibbleLevel2 byte
	UserNibble1         byte
	UserNibble2         byte
}

type ContentFields struct {
	Nibbles []ContentNibble
}

func parseContent(b []byte) (ContentFields, bool) {
	var f ContentFields
	for pos := 0; pos+2 <= len(b) && len(f.Nibbles) < 7; pos += 2 {
		f.Nibbles = append(f.Nibbles, ContentNibble{
			ContentNibbleLevel1: b[pos] >> 4,
			ContentNibbleLevel2: b[pos] & 0x0F,
			UserNibble1:         b[pos+1] >> 4,
			UserNibble2:         b[pos+1] & 0x0F,
		})
	}
	return f, true
}

// ContentNibbleLabel returns the human-readable ARIB genre label for a
// top-level content nibble, or "" if unrecognized.
func ContentNibbleLabel(nibble byte) string {
	switch nibble {
	case 0x00:
		return "news"
	case 0x01:
		return "sports"
	case 0x02:
		return "information"
	case 0x03:
		return "drama"
	case 0x04:
		return "music"
	case 0x05:
		return "variety"
	case 0x06:
		return "movie"
	case 0x07:
		return "anime"
	case 0x08:
		return "documentary"
	case 0x09:
		return "theatre"
	case 0x0A:
		return "hobby"
	case 0x0B:
		return "welfare"
	default:
		return ""
	}
}

// ──────────────────────────── 0x58 Local time offset ────────────────────────────

type LocalTimeOffsetEntry struct {
	CountryCode        [3]byte
	CountryRegionID    byte
	Polarity           bool // true = negative
	LocalTimeOffsetMin uint16
	TimeOfChange       bcdtime.DateTime
	NextTimeOffsetMin  uint16
}

type LocalTimeOffsetFields struct {
	Entries []LocalTimeOffsetEntry
}

func parseLocalTimeOffset(b []byte) (LocalTimeOffsetFields, bool) {
	var f LocalTimeOffsetFields
	for pos := 0; pos+13 <= len(b); pos += 13 {
		var e LocalTimeOffsetEntry
		copy(e.CountryCode[:], b[pos:pos+3])
		e.CountryRegionID = b[pos+3] >> 2
		e.Polarity = b[pos+3]&0x01 != 0
		offBCD := uint16(b[pos+4])<<8 | uint16(b[pos+5])
		e.LocalTimeOffsetMin = bcdtime.BCDTimeHMToMinute(offBCD)
		if dt, ok := bcdtime.MJDBCDTimeToDateTime(b[pos+6 : pos+11]); ok {
			e.TimeOfChange = dt
		}
		nextBCD := uint16(b[pos+11])<<8 | uint16(b[pos+12])
		e.NextTimeOffsetMin = bcdtime.BCDTimeHMToMinute(nextBCD)
		f.Entries = append(f.Entries, e)
	}
	return f, true
}

// ──────────────────────────── 0xC1 Digital copy control ────────────────────────────

type DigitalCopyControlFields struct {
	DigitalRecordingControlData byte
	MaximumBitrate              byte
	HasMaximumBitrate            bool
	APSControlData               byte
	ComponentControls            []ComponentDigitalCopyControl
}

type ComponentDigitalCopyControl struct {
	ComponentTag                 byte
	DigitalRecordingControlData byte
	MaximumBitrate                byte
	HasMaximumBitrate             bool
	APSControlData                byte
}

func parseDigitalCopyControl(b []byte) (DigitalCopyControlFields, bool) {
	if len(b) < 1 {
		return DigitalCopyControlFields{}, false
	}
	var f DigitalCopyControlFields
	f.DigitalRecordingControlData = b[0] >> 6
	maxBitrateFlag := b[0]&0x20 != 0
	componentControlFlag := b[0]&0x10 != 0
	f.APSControlData = (b[0] >> 2) & 0x03
	pos := 1
	if maxBitrateFlag {
		if pos >= len(b) {
			return f, true
		}
		f.MaximumBitrate = b[pos]
		f.HasMaximumBitrate = true
		pos++
	}
	if componentControlFlag {
		if pos >= len(b) {
			return f, true
		}
		count := int(b[pos])
		pos++
		for i := 0; i < count && pos < len(b); i++ {
			c := ComponentDigitalCopyControl{ComponentTag: b[pos]}
			pos++
			if pos >= len(b) {
				break
			}
			c.DigitalRecordingControlData = b[pos] >> 6
			cMaxFlag := b[pos]&0x20 != 0
			c.APSControlData = (b[pos] >> 2) & 0x03
			pos++
			if cMaxFlag {
				if pos >= len(b) {
					break
				}
				c.MaximumBitrate = b[pos]
				c.HasMaximumBitrate = true
				pos++
			}
			f.ComponentControls = append(f.ComponentControls, c)
		}
	}
	return f, true
}

// ──────────────────────────── 0xC4 Audio component ────────────────────────────

type AudioComponentFields struct {
	StreamContent   byte
	ComponentType   byte
	ComponentTag    byte
	StreamType      byte
	SimulcastGroupTag byte
	MainComponentFlag bool
	QualityIndicator  byte
	SamplingRate      byte
	LanguageCode      [3]byte
	LanguageCode2     [3]byte
	HasSecondLanguage bool
	Text              string
}

func parseAudioComponent(b []byte) (AudioComponentFields, bool) {
	if len(b) < 9 {
		return AudioComponentFields{}, false
	}
	var f AudioComponentFields
	f.StreamContent = b[0] & 0x0F
	f.ComponentType = b[1]
	f.ComponentTag = b[2]
	f.StreamType = b[3]
	f.SimulcastGroupTag = b[4]
	esMultiLingual := b[5]&0x80 != 0
	f.MainComponentFlag = b[5]&0x40 != 0
	f.QualityIndicator = (b[5] >> 4) & 0x03
	f.SamplingRate = (b[5] >> 1) & 0x07
	copy(f.LanguageCode[:], b[6:9])
	pos := 9
	if esMultiLingual {
		if pos+3 > len(b) {
			return f, true
		}
		copy(f.LanguageCode2[:], b[pos:pos+3])
		f.HasSecondLanguage = true
		pos += 3
	}
	if pos < len(b) {
		f.Text = decodeARIB(b[pos:])
	}
	return f, true
}

// ──────────────────────────── 0xC5 Hyperlink ────────────────────────────

type HyperlinkFields struct {
	HyperlinkType   byte
	LinkDestinationType byte
	Selector        []byte
	PrivateData     []byte
}

func parseHyperlink(b []byte) (HyperlinkFields, bool) {
	if len(b) < 2 {
		return HyperlinkFields{}, false
	}
	f := HyperlinkFields{HyperlinkType: b[0], LinkDestinationType: b[1]}
	if len(b) > 2 {
		selLen := int(b[2])
		pos := 3
		if pos+selLen <= len(b) {
			f.Selector = append([]byte(nil), b[pos:pos+selLen]...)
			pos += selLen
		}
		if pos < len(b) {
			f.PrivateData = append([]byte(nil), b[pos:]...)
		}
	}
	return f, true
}

// ──────────────────────────── 0xC7 / 0xFD Data (component/content) ────────────────────────────

type DataContentFields struct {
	DataComponentID uint16
	AdditionalData  []byte
}

func parseDataContent(b []byte) (DataContentFields, bool) {
	if len(b) < 2 {
		return DataContentFields{}, false
	}
	return DataContentFields{
		DataComponentID: uint16(b[0])<<8 | uint16(b[1]),
		AdditionalData:  append([]byte(nil), b[2:]...),
	}, true
}

func parseDataComponent(b []byte) (DataContentFields, bool) {
	return parseDataContent(b)
}

// ──────────────────────────── 0xC8 Video decode control ────────────────────────────

type VideoDecodeControlFields struct {
	StillPictureFlag bool
	SequenceEndCodeFlag bool
	VideoEncodeFormat byte
}

func parseVideoDecodeControl(b []byte) (VideoDecodeControlFields, bool) {
	if len(b) < 1 {
		return VideoDecodeControlFields{}, false
	}
	return VideoDecodeControlFields{
		StillPictureFlag:    b[0]&0x80 != 0,
		SequenceEndCodeFlag: b[0]&0x40 != 0,
		VideoEncodeFormat:   (b[0] >> 2) & 0x0F,
	}, true
}

// ──────────────────────────── 0xCB CA EMM TS ────────────────────────────

type CAEMMTSFields struct {
	CASystemID        uint16
	TransportStreamID uint16
	OriginalNetworkID uint16
	PowerSupplyPeriod byte
}

func parseCAEMMTS(b []byte) (CAEMMTSFields, bool) {
	if len(b) < 7 {
		return CAEMMTSFields{}, false
	}
	return CAEMMTSFields{
		CASystemID:        uint16(b[0])<<8 | uint16(b[1]),
		TransportStreamID: uint16(b[2])<<8 | uint16(b[3]),
		OriginalNetworkID: uint16(b[4])<<8 | uint16(b[5]),
		PowerSupplyPeriod: b[6],
	}, true
}

// ──────────────────────────── 0xCC CA contract info ────────────────────────────

type CAContractInfoFields struct {
	CASystemID     uint16
	CAUnitID       byte
	ComponentTags  []byte
	ContractVerificationInfo []byte
	FeeName        string
}

func parseCAContractInfo(b []byte) (CAContractInfoFields, bool) {
	if len(b) < 3 {
		return CAContractInfoFields{}, false
	}
	var f CAContractInfoFields
	f.CASystemID = uint16(b[0])<<8 | uint16(b[1])
	f.CAUnitID = b[2] >> 4
	numComponents := int(b[2] & 0x0F)
	pos := 3
	if pos+numComponents > len(b) {
		return f, true
	}
	f.ComponentTags = append([]byte(nil), b[pos:pos+numComponents]...)
	pos += numComponents
	if pos >= len(b) {
		return f, true
	}
	infoLen := int(b[pos])
	pos++
	if infoLen > 172 || pos+infoLen > len(b) {
		return f, true
	}
	f.ContractVerificationInfo = append([]byte(nil), b[pos:pos+infoLen]...)
	pos += infoLen
	if pos >= len(b) {
		return f, true
	}
	feeLen := int(b[pos])
	pos++
	if pos+feeLen > len(b) {
		return f, true
	}
	f.FeeName = decodeARIB(b[pos : pos+feeLen])
	return f, true
}

// ──────────────────────────── 0xCD CA service ────────────────────────────

type CAServiceFields struct {
	CASystemID       uint16
	BroadcasterGroupID byte
	MessageControl   byte
	ServiceIDs       []uint16
}

func parseCAService(b []byte) (CAServiceFields, bool) {
	if len(b) < 4 {
		return CAServiceFields{}, false
	}
	f := CAServiceFields{
		CASystemID:         uint16(b[0])<<8 | uint16(b[1]),
		BroadcasterGroupID: b[2],
		MessageControl:     b[3],
	}
	for pos := 4; pos+2 <= len(b); pos += 2 {
		f.ServiceIDs = append(f.ServiceIDs, uint16(b[pos])<<8|uint16(b[pos+1]))
	}
	return f, true
}

// ──────────────────────────── 0xCF Logo transmission ────────────────────────────

type LogoTransmissionFields struct {
	LogoTransmissionType byte
	LogoID               uint16
	LogoVersion          uint16
	DownloadDataID       uint16
	SimpleLogoText       string
}

func parseLogoTransmission(b []byte) (LogoTransmissionFields, bool) {
	if len(b) < 1 {
		return LogoTransmissionFields{}, false
	}
	f := LogoTransmissionFields{LogoTransmissionType: b[0]}
	switch f.LogoTransmissionType {
	case 0x01, 0x02:
		if len(b) < 7 {
			return f, true
		}
		f.LogoID = uint16(b[1]&0x01)<<8 | uint16(b[2])
		f.LogoVersion = uint16(b[3]&0x0F)<<8 | uint16(b[4])
		f.DownloadDataID = uint16(b[5])<<8 | uint16(b[6])
	case 0x03:
		f.SimpleLogoText = decodeARIB(b[1:])
	}
	return f, true
}

// ──────────────────────────── 0xD5 Series ────────────────────────────

type SeriesFields struct {
	SeriesID        uint16
	RepeatLabel     byte
	ProgramPattern  byte
	ExpireDate      bcdtime.DateTime
	HasExpireDate   bool
	EpisodeNumber   uint16
	LastEpisodeNumber uint16
	SeriesName      string
}

func parseSeries(b []byte) (SeriesFields, bool) {
	if len(b) < 8 {
		return SeriesFields{}, false
	}
	var f SeriesFields
	f.SeriesID = uint16(b[0])<<8 | uint16(b[1])
	f.RepeatLabel = b[2] >> 4
	f.ProgramPattern = (b[2] >> 1) & 0x07
	expireDateValidFlag := b[2]&0x01 != 0
	mjd := uint16(b[3])<<8 | uint16(b[4])
	if expireDateValidFlag && mjd != 0xFFFF {
		f.ExpireDate = bcdtime.MJDTimeToDateTime(mjd)
		f.HasExpireDate = true
	}
	f.EpisodeNumber = uint16(b[5])<<4 | uint16(b[6]>>4)
	f.LastEpisodeNumber = uint16(b[6]&0x0F)<<8 | uint16(b[7])
	if len(b) > 8 {
		f.SeriesName = decodeARIB(b[8:])
	}
	return f, true
}

// ──────────────────────────── 0xD6 Event group ────────────────────────────

type EventGroupEntry struct {
	OriginalNetworkID uint16 // only meaningful for cross-channel group types
	TransportStreamID uint16
	ServiceID         uint16
	EventID           uint16
	HasOriginalNetwork bool
}

type EventGroupFields struct {
	GroupType byte
	Events    []EventGroupEntry
}

func parseEventGroup(b []byte) (EventGroupFields, bool) {
	if len(b) < 1 {
		return EventGroupFields{}, false
	}
	f := EventGroupFields{GroupType: b[0] >> 4}
	count := int(b[0] & 0x0F)
	pos := 1
	crossChannel := f.GroupType == 4 || f.GroupType == 5
	for i := 0; i < count; i++ {
		if pos+4 > len(b) {
			break
		}
		e := EventGroupEntry{
			ServiceID: uint16(b[pos])<<8 | uint16(b[pos+1]),
			EventID:   uint16(b[pos+2])<<8 | uint16(b[pos+3]),
		}
		pos += 4
		f.Events = append(f.Events, e)
	}
	if crossChannel {
		for i := range f.Events {
			if pos+6 > len(b) {
				break
			}
			f.Events[i].OriginalNetworkID = uint16(b[pos])<<8 | uint16(b[pos+1])
			f.Events[i].TransportStreamID = uint16(b[pos+2])<<8 | uint16(b[pos+3])
			f.Events[i].ServiceID = uint16(b[pos+4])<<8 | uint16(b[pos+5])
			f.Events[i].HasOriginalNetwork = true
			pos += 6
		}
	}
	return f, true
}

// ──────────────────────────── 0xD7 SI parameter ────────────────────────────

type SIParameterFields struct {
	ParameterVersion byte
	UpdateTime       uint16 // MJD
	Raw              []byte // table-specific cycle parameters, not decoded per-table here
}

func parseSIParameter(b []byte) (SIParameterFields, bool) {
	if len(b) < 3 {
		return SIParameterFields{}, false
	}
	return SIParameterFields{
		ParameterVersion: b[0],
		UpdateTime:       uint16(b[1])<<8 | uint16(b[2]),
		Raw:              append([]byte(nil), b[3:]...),
	}, true
}

// ──────────────────────────── 0xD8 Broadcaster name ────────────────────────────

type BroadcasterNameFields struct {
	Name string
}

func parseBroadcasterName(b []byte) (BroadcasterNameFields, bool) {
	return BroadcasterNameFields{Name: decodeARIB(b)}, true
}

// ──────────────────────────── 0xD9 Component group ────────────────────────────

type ComponentGroupMember struct {
	CAUnits          []byte // component tags
	Text             string
}

type ComponentGroup struct {
	ComponentGroupID byte
	TotalBitrate     byte
	HasTotalBitrate  bool
	Members          []ComponentGroupMember
}

type ComponentGroupFields struct {
	ComponentGroupType byte
	Groups             []ComponentGroup
}

func parseComponentGroup(b []byte) (ComponentGroupFields, bool) {
	if len(b) < 1 {
		return ComponentGroupFields{}, false
	}
	f := ComponentGroupFields{ComponentGroupType: b[0] >> 5}
	totalBitrateFlag := b[0]&0x10 != 0
	groupCount := int(b[0] & 0x0F)
	pos := 1
	for i := 0; i < groupCount && pos < len(b); i++ {
		g := ComponentGroup{ComponentGroupID: b[pos] >> 4}
		caUnitCount := int(b[pos] & 0x0F)
		pos++
		// One member per CA unit in this simplified model.
		for u := 0; u < caUnitCount && pos < len(b); u++ {
			numComponents := int(b[pos] & 0x0F)
			pos++
			if pos+numComponents > len(b) {
				break
			}
			g.Members = append(g.Members, ComponentGroupMember{CAUnits: append([]byte(nil), b[pos:pos+numComponents]...)})
			pos += numComponents
		}
		if totalBitrateFlag {
			if pos < len(b) {
				g.TotalBitrate = b[pos]
				g.HasTotalBitrate = true
				pos++
			}
		}
		if pos < len(b) {
			textLen := int(b[pos])
			pos++
			if pos+textLen <= len(b) {
				if len(g.Members) > 0 {
					g.Members[len(g.Members)-1].Text = decodeARIB(b[pos : pos+textLen])
				}
				pos += textLen
			}
		}
		f.Groups = append(f.Groups, g)
	}
	return f, true
}

// ──────────────────────────── 0xDC LDT linkage ────────────────────────────

type LDTLinkageDescription struct {
	DescriptionID   uint16
	DescriptionType byte
}

type LDTLinkageFields struct {
	OriginalServiceID uint16
	TransportStreamID uint16
	OriginalNetworkID uint16
	Descriptions      []LDTLinkageDescription
}

func parseLDTLinkage(b []byte) (LDTLinkageFields, bool) {
	if len(b) < 6 {
		return LDTLinkageFields{}, false
	}
	f := LDTLinkageFields{
		OriginalServiceID: uint16(b[0])<<8 | uint16(b[1]),
		TransportStreamID: uint16(b[2])<<8 | uint16(b[3]),
		OriginalNetworkID: uint16(b[4])<<8 | uint16(b[5]),
	}
	for pos := 6; pos+3 <= len(b); pos += 3 {
		f.Descriptions = append(f.Descriptions, LDTLinkageDescription{
			DescriptionID:   uint16(b[pos])<<4 | uint16(b[pos+1]>>4),
			DescriptionType: b[pos+1] & 0x0F,
		})
	}
	return f, true
}

// ──────────────────────────── 0xF6 Access control ────────────────────────────

type AccessControlFields struct {
	CASystemID       uint16
	TransmissionType byte
	PID              uint16
	PrivateData      []byte
}

func parseAccessControl(b []byte) (AccessControlFields, bool) {
	if len(b) < 4 {
		return AccessControlFields{}, false
	}
	return AccessControlFields{
		CASystemID:       uint16(b[0])<<8 | uint16(b[1]),
		TransmissionType: b[2] >> 5,
		PID:              uint16(b[2]&0x1F)<<8 | uint16(b[3]),
		PrivateData:      append([]byte(nil), b[4:]...),
	}, true
}

// ──────────────────────────── 0xFA Terrestrial delivery system ────────────────────────────

type TerrestrialDeliverySystemFields struct {
	AreaCode          uint16
	GuardInterval     byte
	TransmissionMode  byte
	FrequenciesMHz100 []uint16 // frequency/7, in units making MHz = value*1/7 (raw field, caller scales)
}

func parseTerrestrialDeliverySystem(b []byte) (TerrestrialDeliverySystemFields, bool) {
	if len(b) < 3 {
		return TerrestrialDeliverySystemFields{}, false
	}
	f := TerrestrialDeliverySystemFields{
		AreaCode:         uint16(b[0])<<4 | uint16(b[1]>>4),
		GuardInterval:    (b[1] >> 2) & 0x03,
		TransmissionMode: b[1] & 0x03,
	}
	for pos := 2; pos+2 <= len(b); pos += 2 {
		f.FrequenciesMHz100 = append(f.FrequenciesMHz100, uint16(b[pos])<<8|uint16(b[pos+1]))
	}
	return f, true
}

// ──────────────────────────── 0xFB Partial reception ────────────────────────────

type PartialReceptionFields struct {
	ServiceIDs []uint16
}

func parsePartialReception(b []byte) (PartialReceptionFields, bool) {
	var f PartialReceptionFields
	for pos := 0; pos+2 <= len(b) && len(f.ServiceIDs) < 3; pos += 2 {
		f.ServiceIDs = append(f.ServiceIDs, uint16(b[pos])<<8|uint16(b[pos+1]))
	}
	return f, true
}

// ──────────────────────────── 0xFC Emergency information ────────────────────────────

type EmergencyInformationEntry struct {
	ServiceID     uint16
	StartEndFlag  bool
	SignalLevel   byte
	AreaCodes     []uint16
}

type EmergencyInformationFields struct {
	Entries []EmergencyInformationEntry
}

func parseEmergencyInformation(b []byte) (EmergencyInformationFields, bool) {
	var f EmergencyInformationFields
	pos := 0
	for pos+3 <= len(b) {
		e := EmergencyInformationEntry{
			ServiceID:    uint16(b[pos])<<8 | uint16(b[pos+1]),
			StartEndFlag: b[pos+2]&0x80 != 0,
			SignalLevel:  (b[pos+2] >> 6) & 0x01,
		}
		areaCount := int(b[pos+2] & 0x3F)
		pos += 3
		for i := 0; i < areaCount && pos+2 <= len(b); i++ {
			e.AreaCodes = append(e.AreaCodes, uint16(b[pos])<<8|uint16(b[pos+1]))
			pos += 2
		}
		f.Entries = append(f.Entries, e)
	}
	return f, true
}

// ──────────────────────────── 0xFE System management ────────────────────────────

type SystemManagementFields struct {
	BroadcastingFlag           byte
	BroadcastingIdentifier     byte
	AdditionalBroadcastingID   byte
	AdditionalData             []byte
}

func parseSystemManagement(b []byte) (SystemManagementFields, bool) {
	if len(b) < 2 {
		return SystemManagementFields{}, false
	}
	f := SystemManagementFields{
		BroadcastingFlag:       b[0] >> 6,
		BroadcastingIdentifier: b[0] & 0x3F,
	}
	if len(b) > 1 {
		f.AdditionalBroadcastingID = b[1]
	}
	if len(b) > 2 {
		f.AdditionalData = append([]byte(nil), b[2:]...)
	}
	return f, true
}
