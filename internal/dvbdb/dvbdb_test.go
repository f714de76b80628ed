package dvbdb

import (
	"path/filepath"
	"testing"
)

func TestNew_EmbeddedLookup(t *testing.T) {
	db := New()
	if got := db.NetworkName(0x0200); got != "NHK Japan" {
		t.Fatalf("NetworkName(0x0200) = %q, want NHK Japan", got)
	}
	if got := db.NetworkName(0xFFFF); got != "ONID-0xFFFF" {
		t.Fatalf("NetworkName(0xFFFF) = %q, want hex fallback", got)
	}
}

func TestLookupTriplet_MergeOverridesEmbedded(t *testing.T) {
	db := New()
	if e := db.LookupTriplet(1, 2, 100); e != nil {
		t.Fatalf("expected no entry before merge, got %+v", e)
	}

	n := db.MergeEntries([]Entry{
		{OriginalNetworkID: 1, TransportStreamID: 2, ServiceID: 100, Name: "GR-TV", NetworkName: "Test Network"},
	})
	if n != 1 {
		t.Fatalf("MergeEntries returned %d, want 1", n)
	}

	e := db.LookupTriplet(1, 2, 100)
	if e == nil || e.Name != "GR-TV" {
		t.Fatalf("LookupTriplet after merge = %+v", e)
	}
	if got := db.NetworkName(1); got != "Test Network" {
		t.Fatalf("NetworkName(1) = %q, want Test Network", got)
	}
}

func TestLoadSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dvbdb.json")

	db, err := Load(path)
	if err != nil {
		t.Fatalf("Load(missing) error: %v", err)
	}
	db.MergeEntries([]Entry{
		{OriginalNetworkID: 7, TransportStreamID: 8, ServiceID: 9, Name: "Local"},
	})
	if err := db.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load(saved): %v", err)
	}
	if e := reloaded.LookupTriplet(7, 8, 9); e == nil || e.Name != "Local" {
		t.Fatalf("reloaded entry = %+v", e)
	}
}
