package table

import (
	"testing"

	"github.com/isdb-go/epgd/internal/section"
)

func TestDecodePAT(t *testing.T) {
	s := section.Section{
		TableID:           TableIDPAT,
		TableIDExtension:  0x1001,
		Payload:           []byte{0x00, 0x00, 0xE0, 0x10, 0x00, 0x01, 0xE0, 0x11},
	}
	pat, err := DecodePAT(s)
	if err != nil {
		t.Fatalf("DecodePAT: %v", err)
	}
	if pat.TransportStreamID != 0x1001 || len(pat.Programs) != 2 {
		t.Fatalf("got %+v", pat)
	}
	if pat.Programs[0].ProgramNumber != 0 || pat.Programs[0].PID != 0x0010 {
		t.Fatalf("got %+v", pat.Programs[0])
	}
	if pat.Programs[1].ProgramNumber != 1 || pat.Programs[1].PID != 0x0011 {
		t.Fatalf("got %+v", pat.Programs[1])
	}
}

func TestDecodePMT(t *testing.T) {
	payload := []byte{
		0xE0, 0x20, // PCR PID
		0xF0, 0x00, // program_info_length = 0
		0x1B, 0xE0, 0x21, 0xF0, 0x00, // H.264 stream, pid 0x21, no ES descriptors
	}
	s := section.Section{TableID: TableIDPMT, TableIDExtension: 1, Payload: payload}
	pmt, err := DecodePMT(s)
	if err != nil {
		t.Fatalf("DecodePMT: %v", err)
	}
	if pmt.PCRPID != 0x0020 || len(pmt.Streams) != 1 {
		t.Fatalf("got %+v", pmt)
	}
	if pmt.Streams[0].StreamType != StreamTypeH264 || pmt.Streams[0].ElementaryPID != 0x0021 {
		t.Fatalf("got %+v", pmt.Streams[0])
	}
}

func TestDecodeSDT(t *testing.T) {
	payload := []byte{
		0x00, 0x01, 0xFF, // original_network_id, reserved
		0x00, 0x05, 0x03, 0x80, 0x00, // service_id=5, eit_schedule|pf, running_status/free_ca/desc_len=0
	}
	s := section.Section{TableID: TableIDSDTActual, TableIDExtension: 0x10, Payload: payload}
	sdt, err := DecodeSDT(s)
	if err != nil {
		t.Fatalf("DecodeSDT: %v", err)
	}
	if sdt.OriginalNetworkID != 1 || len(sdt.Services) != 1 {
		t.Fatalf("got %+v", sdt)
	}
	if sdt.Services[0].ServiceID != 5 || !sdt.Services[0].EITScheduleFlag {
		t.Fatalf("got %+v", sdt.Services[0])
	}
}

func TestDecodeTOT(t *testing.T) {
	// MJD 58849 = 2020-01-01 per spec.md's S1 scenario, BCD 12:34:56.
	payload := []byte{0xE5, 0xE1, 0x12, 0x34, 0x56, 0xF0, 0x00}
	s := section.Section{TableID: TableIDTOT, Payload: payload, LongForm: false}
	tot, err := DecodeTOT(s)
	if err != nil {
		t.Fatalf("DecodeTOT: %v", err)
	}
	if !tot.HasTime || tot.Time.Year != 2020 || tot.Time.Month != 1 || tot.Time.Day != 1 {
		t.Fatalf("got %+v", tot.Time)
	}
	if tot.Time.Hour != 12 || tot.Time.Minute != 34 || tot.Time.Second != 56 {
		t.Fatalf("got %+v", tot.Time)
	}
}

func TestScheduleInfo_CompletesAfterAllSegments(t *testing.T) {
	var si ScheduleInfo
	// lastTableID=0x50 (1 table, index 0), lastSectionNumber=0x07 (one
	// segment of 8 sections), segmentLastSectionNumber=0x07.
	var completed bool
	for sec := byte(0); sec < 8; sec++ {
		completed = si.OnSection(0x50, sec, 0x07, 0x07, 1, 0x50, 0)
	}
	if !completed {
		t.Fatal("expected completion on final section")
	}
	if !si.IsComplete(0, false) {
		t.Fatal("IsComplete should report true")
	}
}

func TestScheduleInfo_VersionChangeResets(t *testing.T) {
	var si ScheduleInfo
	for sec := byte(0); sec < 8; sec++ {
		si.OnSection(0x50, sec, 0x07, 0x07, 1, 0x50, 0)
	}
	if !si.IsComplete(0, false) {
		t.Fatal("expected complete before version bump")
	}
	si.OnSection(0x50, 0, 0x07, 0x07, 2, 0x50, 0)
	if si.IsComplete(0, false) {
		t.Fatal("version change should reset completeness")
	}
}
