package section

import "testing"

// ── TS / section builders ──────────────────────────────────────────────

// buildTSPacket returns a 188-byte TS packet carrying payload as given,
// with PUSI set when pusi is true (the caller supplies the pointer_field
// as the payload's first byte).
func buildTSPacket(pid uint16, pusi bool, payload []byte) []byte {
	pkt := make([]byte, PacketLen)
	pkt[0] = SyncByte
	b1 := byte((pid >> 8) & 0x1F)
	if pusi {
		b1 |= 0x40
	}
	pkt[1] = b1
	pkt[2] = byte(pid & 0xFF)
	pkt[3] = 0x10 // payload only, no adaptation, continuity counter 0
	n := copy(pkt[4:], payload)
	_ = n
	return pkt
}

// buildSection builds a long-form section (8-byte header) with the given
// fields and payload, appending a correct trailing CRC32.
func buildSection(tableID byte, tableIDExt uint16, version byte, secNum, lastSecNum byte, payload []byte) []byte {
	header := make([]byte, 8)
	header[0] = tableID
	bodyLen := 5 + len(payload) + 4 // from byte 3 onward, plus CRC
	header[1] = 0xF0 | byte((bodyLen>>8)&0x0F)
	header[2] = byte(bodyLen & 0xFF)
	header[3] = byte(tableIDExt >> 8)
	header[4] = byte(tableIDExt)
	header[5] = 0xC0 | (version << 1) | 0x01 // reserved | version | current_next=1
	header[6] = secNum
	header[7] = lastSecNum

	body := append(header, payload...)
	crc := CRC32DVB(body)
	crcBytes := []byte{byte(crc >> 24), byte(crc >> 16), byte(crc >> 8), byte(crc)}
	return append(body, crcBytes...)
}

func feedAll(t *testing.T, a *Assembler, pid uint16, sectionBytes []byte) []Section {
	t.Helper()
	var out []Section
	pos := 0
	first := true
	for pos < len(sectionBytes) || first {
		var chunk []byte
		room := PacketLen - 5
		if first {
			chunk = []byte{0x00} // pointer_field = 0
			remain := sectionBytes[pos:]
			n := room
			if n > len(remain) {
				n = len(remain)
			}
			chunk = append(chunk, remain[:n]...)
			pos += n
		} else {
			remain := sectionBytes[pos:]
			n := room + 1
			if n > len(remain) {
				n = len(remain)
			}
			chunk = remain[:n]
			pos += n
		}
		pkt := buildTSPacket(pid, first, chunk)
		secs, err := a.Feed(pkt)
		if err != nil {
			t.Fatalf("Feed: %v", err)
		}
		out = append(out, secs...)
		if pos >= len(sectionBytes) {
			break
		}
		first = false
	}
	return out
}

func TestAssembler_SingleShortSection(t *testing.T) {
	a := NewAssembler()
	raw := buildSection(0x42, 0x1234, 0, 0, 0, []byte{0xAA, 0xBB, 0xCC})
	secs := feedAll(t, a, 0x0011, raw)
	if len(secs) != 1 {
		t.Fatalf("got %d sections, want 1", len(secs))
	}
	s := secs[0]
	if s.TableID != 0x42 || s.TableIDExtension != 0x1234 {
		t.Fatalf("got %+v", s)
	}
	if string(s.Payload) != "\xaa\xbb\xcc" {
		t.Fatalf("payload = % x", s.Payload)
	}
}

func TestAssembler_BadCRCDropped(t *testing.T) {
	a := NewAssembler()
	raw := buildSection(0x42, 0x1234, 0, 0, 0, []byte{0xAA, 0xBB, 0xCC})
	raw[len(raw)-1] ^= 0xFF // corrupt CRC
	secs := feedAll(t, a, 0x0011, raw)
	if len(secs) != 0 {
		t.Fatalf("got %d sections, want 0 (bad CRC)", len(secs))
	}
}

func TestAssembler_DuplicateVersionDropped(t *testing.T) {
	a := NewAssembler()
	raw := buildSection(0x42, 0x1234, 0, 0, 0, []byte{0x01})
	first := feedAll(t, a, 0x0011, raw)
	if len(first) != 1 {
		t.Fatalf("first feed: got %d, want 1", len(first))
	}
	second := feedAll(t, a, 0x0011, raw)
	if len(second) != 0 {
		t.Fatalf("duplicate-version feed: got %d, want 0", len(second))
	}
}

func TestAssembler_NewVersionDelivered(t *testing.T) {
	a := NewAssembler()
	v0 := buildSection(0x42, 0x1234, 0, 0, 0, []byte{0x01})
	v1 := buildSection(0x42, 0x1234, 1, 0, 0, []byte{0x02})
	feedAll(t, a, 0x0011, v0)
	secs := feedAll(t, a, 0x0011, v1)
	if len(secs) != 1 {
		t.Fatalf("got %d sections for new version, want 1", len(secs))
	}
}

func TestAssembler_NullPIDIgnored(t *testing.T) {
	a := NewAssembler()
	pkt := buildTSPacket(NullPID, true, []byte{0x00, 0xFF})
	secs, err := a.Feed(pkt)
	if err != nil || len(secs) != 0 {
		t.Fatalf("null PID should yield nothing, got %v, %v", secs, err)
	}
}

func TestAssembler_MultiPacketSection(t *testing.T) {
	a := NewAssembler()
	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i)
	}
	raw := buildSection(0x4E, 0x0001, 0, 0, 0, payload)
	secs := feedAll(t, a, 0x0012, raw)
	if len(secs) != 1 {
		t.Fatalf("got %d sections, want 1", len(secs))
	}
	if len(secs[0].Payload) != len(payload) {
		t.Fatalf("payload len = %d, want %d", len(secs[0].Payload), len(payload))
	}
}

func TestAssembler_ShortFormTOT(t *testing.T) {
	a := NewAssembler()
	// Short-form section: table_id, length, payload only, no CRC/version.
	payload := []byte{0xE5, 0xE1, 0x12, 0x34, 0x56}
	sectionLen := len(payload)
	raw := []byte{0x73, 0xF0 | byte(sectionLen>>8), byte(sectionLen)}
	raw = append(raw, payload...)
	secs := feedAll(t, a, 0x0014, raw)
	if len(secs) != 1 {
		t.Fatalf("got %d sections, want 1", len(secs))
	}
	if secs[0].LongForm {
		t.Fatal("TOT should be decoded as short form")
	}
	if string(secs[0].Payload) != string(payload) {
		t.Fatalf("payload = % x, want % x", secs[0].Payload, payload)
	}
}
