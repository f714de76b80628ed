package aribstr

import "testing"

func TestDecode_SS2DefaultHiragana(t *testing.T) {
	// The default layout is G0=Kanji, G1=Alphanumeric, G2=Hiragana,
	// G3=Katakana; SS2 invokes G2 for one character, so 0x22 is 'あ'.
	data := []byte{0x19, 0x22} // SS2 selects G2 (Hiragana) for one character
	s, err := Decode(data, DecodeFlagNone)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s != "あ" {
		t.Fatalf("got %q, want 'あ'", s)
	}
}

func TestDecode_AlphanumericHalfWidth_S3(t *testing.T) {
	data := []byte{
		0x1B, 0x28, 0x4A, // ESC, designate G0 = Alphanumeric
		0x0F,       // LS0
		0x89,       // MSZ -> CharSize = Medium
		0x30, 0x31, 0x32, 0x33, // "0123"
	}
	s, err := Decode(data, UseCharSize)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s != "0123" {
		t.Fatalf("got %q, want \"0123\"", s)
	}
}

func TestDecode_AlphanumericFullWidthWithoutFlag(t *testing.T) {
	data := []byte{0x1B, 0x28, 0x4A, 0x0F, 0x30}
	s, err := Decode(data, DecodeFlagNone)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s != "０" {
		t.Fatalf("got %q, want fullwidth '0'", s)
	}
}

func TestDecode_JISKanjiPlane1HiraganaRow_S4(t *testing.T) {
	data := []byte{
		0x1B, 0x24, 0x39, // ESC 0x24 Fi: designate G0 = JISKanjiPlane1
		0x24, 0x22, // ku=4, ten=2 -> hiragana row -> 'あ'
	}
	s, err := Decode(data, DecodeFlagNone)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s != "あ" {
		t.Fatalf("got %q, want 'あ'", s)
	}
}

func TestDecode_KanjiSubsetAndTofu(t *testing.T) {
	// Default G0 = Kanji. Code kuten (0x30,0x21) is in kanjiSubset -> '日'.
	data := []byte{0x30, 0x21}
	s, err := Decode(data, DecodeFlagNone)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s != "日" {
		t.Fatalf("got %q, want '日'", s)
	}

	// An unmapped kuten code renders as tofu rather than failing.
	s2, err := Decode([]byte{0x7E, 0x7E}, DecodeFlagNone)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s2 != tofu {
		t.Fatalf("got %q, want tofu placeholder", s2)
	}
}

func TestDecode_NewlineAndSpace(t *testing.T) {
	data := []byte{0x0D, 0x20}
	s, err := Decode(data, DecodeFlagNone)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s != "\n　" {
		t.Fatalf("got %q", s)
	}
}

func TestDecode_TruncatedDoubleByteReturnsError(t *testing.T) {
	data := []byte{0x30} // Kanji needs 2 bytes, only 1 given
	_, err := Decode(data, DecodeFlagNone)
	if err == nil {
		t.Fatal("expected truncation error")
	}
}

type fakeDRCS struct {
	registered map[uint16][]byte
}

func newFakeDRCS() *fakeDRCS { return &fakeDRCS{registered: map[uint16][]byte{}} }

func (f *fakeDRCS) GetString(code uint16) (string, bool) {
	if _, ok := f.registered[code]; ok {
		return "〓", true
	}
	return "", false
}

func (f *fakeDRCS) SetDRCS(code uint16, width, height, depth byte, bitmap []byte) {
	f.registered[code] = append([]byte(nil), bitmap...)
}

func TestDecodeCaption_FormatRunRecorded(t *testing.T) {
	data := []byte{
		0x1B, 0x28, 0x4A, 0x0F, // G0 = Alphanumeric, LS0
		0x89, // MSZ
		0x41, // 'A'
		0x88, // SSZ
		0x42, // 'B'
	}
	s, formats, err := DecodeCaption(data, UseCharSize, nil)
	if err != nil {
		t.Fatalf("DecodeCaption: %v", err)
	}
	if s != "AB" {
		t.Fatalf("got %q", s)
	}
	if len(formats) < 2 {
		t.Fatalf("expected at least 2 format records, got %d: %+v", len(formats), formats)
	}
}

func TestDecodeUCS_PassthroughAndDRCS(t *testing.T) {
	drcs := newFakeDRCS()
	drcs.SetDRCS(0x0001, 16, 16, 2, []byte{0xFF, 0xFF})
	data := append([]byte("hi "), []byte{0xEE, 0xB0, 0x81}...) // U+EC01
	s, err := decodeUCS(data, drcs)
	if err != nil {
		t.Fatalf("decodeUCS: %v", err)
	}
	if s != "hi 〓" {
		t.Fatalf("got %q", s)
	}
}

func TestCRC16CCITT_SelfCheck(t *testing.T) {
	payload := []byte{0x00, 0x01, 0x02, 0x03}
	crc := CRC16CCITT(payload)
	full := append(append([]byte(nil), payload...), byte(crc>>8), byte(crc))
	if CRC16CCITT(full) != 0 {
		t.Fatal("self-check CRC over payload+CRC should be zero")
	}
}

func TestParsePES_CaptionText(t *testing.T) {
	text := []byte{0x1B, 0x28, 0x4A, 0x0F, 0x89, 0x41} // G0=Alphanumeric, LS0, MSZ, 'A'
	unit := []byte{0x1F, 0x20}
	unitSize := len(text)
	unit = append(unit, byte(unitSize>>16), byte(unitSize>>8), byte(unitSize))
	unit = append(unit, text...)

	units := []byte{byte(len(unit) >> 16), byte(len(unit) >> 8), byte(len(unit))}
	units = append(units, unit...)

	captionData := []byte{0x00} // TMD=00, no timestamp
	captionData = append(captionData, units...)

	// Build a non-management data_group (id != 0/0x20) wrapping captionData.
	dgID := byte(0x01)
	groupByte := dgID << 2
	dgHeader := []byte{groupByte, 0x00, 0x00, byte(len(captionData) >> 8), byte(len(captionData))}
	full := append(dgHeader, captionData...)
	crc := CRC16CCITT(full)
	full = append(full, byte(crc>>8), byte(crc))

	pes := []byte{0x80, 0xFF, 0x00}
	pes = append(pes, full...)

	pkt, err := ParsePES(pes, UseCharSize, nil)
	if err != nil {
		t.Fatalf("ParsePES: %v", err)
	}
	if pkt.Text != "A" {
		t.Fatalf("got %q", pkt.Text)
	}
}

func TestParsePES_BadCRCRejected(t *testing.T) {
	dgHeader := []byte{0x04, 0x00, 0x00, 0x00, 0x01}
	full := append(dgHeader, 0x00)
	full = append(full, 0x00, 0x00) // wrong CRC
	pes := []byte{0x80, 0xFF, 0x00}
	pes = append(pes, full...)
	_, err := ParsePES(pes, DecodeFlagNone, nil)
	if err != ErrBadCaptionCRC {
		t.Fatalf("got err=%v, want ErrBadCaptionCRC", err)
	}
}
