package epgstore

import (
	"path/filepath"
	"testing"

	"github.com/isdb-go/epgd/internal/bcdtime"
	"github.com/isdb-go/epgd/internal/epg"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "epg.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesSchema(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveScheduleStatus(epg.ServiceKey{NetworkID: 1, TransportStreamID: 2, ServiceID: 3}, false, true); err != nil {
		t.Fatalf("SaveScheduleStatus on fresh schema: %v", err)
	}
}

func TestSaveEvent_LoadIntoRoundTrip(t *testing.T) {
	s := openTestStore(t)

	key := epg.ServiceKey{NetworkID: 1, TransportStreamID: 2, ServiceID: 3}
	start := bcdtime.DateTime{Year: 2026, Month: 7, Day: 30, Hour: 21, Minute: 0, Second: 0}
	e := epg.EventInfo{
		EventID:       100,
		StartTime:     start,
		HasStartTime:  true,
		Duration:      1800,
		RunningStatus: 4,
		FreeCAMode:    true,
		Type:          epg.TypeBasic,
		SourceID:      "tuner-0",
		UpdatedTime:   start.GetLinearSeconds(),
		Name:          "Evening News",
		ShortText:     "Top stories of the day",
		ExtendedText:  "A much longer synopsis describing the evening news program in detail.",
	}
	if err := s.SaveEvent(key, e); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}

	// Overwrite via the same key to exercise the upsert path.
	e.Name = "Evening News (Updated)"
	if err := s.SaveEvent(key, e); err != nil {
		t.Fatalf("SaveEvent (update): %v", err)
	}

	db := epg.NewDatabase()
	if err := s.LoadInto(db); err != nil {
		t.Fatalf("LoadInto: %v", err)
	}

	got, ok := db.GetEventInfoByID(key, e.EventID)
	if !ok {
		t.Fatalf("event %d not restored", e.EventID)
	}
	if got.Name != "Evening News (Updated)" {
		t.Fatalf("Name = %q, want update to have taken effect", got.Name)
	}
	if got.ShortText != e.ShortText {
		t.Fatalf("ShortText = %q, want %q", got.ShortText, e.ShortText)
	}
	if got.ExtendedText != e.ExtendedText {
		t.Fatalf("ExtendedText = %q, want %q", got.ExtendedText, e.ExtendedText)
	}
	if got.Duration != e.Duration {
		t.Fatalf("Duration = %d, want %d", got.Duration, e.Duration)
	}
	if got.Type&epg.TypeDatabase == 0 {
		t.Fatalf("restored event missing TypeDatabase flag")
	}
	if !got.FreeCAMode {
		t.Fatalf("FreeCAMode lost in round trip")
	}
}

func TestSaveEvent_EmptyExtendedTextRoundTrips(t *testing.T) {
	s := openTestStore(t)

	key := epg.ServiceKey{NetworkID: 4, TransportStreamID: 5, ServiceID: 6}
	start := bcdtime.DateTime{Year: 2026, Month: 7, Day: 30, Hour: 6, Minute: 0, Second: 0}
	e := epg.EventInfo{
		EventID:      200,
		StartTime:    start,
		HasStartTime: true,
		Duration:     600,
		SourceID:     "tuner-0",
		UpdatedTime:  start.GetLinearSeconds(),
		Name:         "Morning Weather",
		ShortText:    "",
		ExtendedText: "",
	}
	if err := s.SaveEvent(key, e); err != nil {
		t.Fatalf("SaveEvent: %v", err)
	}

	db := epg.NewDatabase()
	if err := s.LoadInto(db); err != nil {
		t.Fatalf("LoadInto: %v", err)
	}
	got, ok := db.GetEventInfoByID(key, e.EventID)
	if !ok {
		t.Fatalf("event not restored")
	}
	if got.ExtendedText != "" {
		t.Fatalf("ExtendedText = %q, want empty", got.ExtendedText)
	}
}

func TestSaveScheduleStatus_Upserts(t *testing.T) {
	s := openTestStore(t)
	key := epg.ServiceKey{NetworkID: 1, TransportStreamID: 1, ServiceID: 1}

	if err := s.SaveScheduleStatus(key, false, false); err != nil {
		t.Fatalf("SaveScheduleStatus: %v", err)
	}
	if err := s.SaveScheduleStatus(key, false, true); err != nil {
		t.Fatalf("SaveScheduleStatus (update): %v", err)
	}

	var complete int
	row := s.db.QueryRow(`SELECT complete FROM schedule_status WHERE network_id=? AND transport_stream_id=? AND service_id=? AND extended=?`,
		key.NetworkID, key.TransportStreamID, key.ServiceID, 0)
	if err := row.Scan(&complete); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if complete != 1 {
		t.Fatalf("complete = %d, want 1 after update", complete)
	}
}

func TestCompressDecompressText(t *testing.T) {
	if out, err := compressText(""); err != nil || out != nil {
		t.Fatalf("compressText(\"\") = %v, %v; want nil, nil", out, err)
	}
	if out, err := decompressText(nil); err != nil || out != "" {
		t.Fatalf("decompressText(nil) = %q, %v; want \"\", nil", out, err)
	}

	const text = "a synopsis with unicode: 日本語テキスト"
	compressed, err := compressText(text)
	if err != nil {
		t.Fatalf("compressText: %v", err)
	}
	if len(compressed) == 0 {
		t.Fatalf("expected non-empty compressed output")
	}
	decompressed, err := decompressText(compressed)
	if err != nil {
		t.Fatalf("decompressText: %v", err)
	}
	if decompressed != text {
		t.Fatalf("decompressText round trip = %q, want %q", decompressed, text)
	}
}
