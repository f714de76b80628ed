// Package dvbdb provides a lookup database keyed on the
// (original_network_id, transport_stream_id, service_id) triplet that ISDB
// inherited from DVB SI: no broadcast stream carries a human name for its
// own network_id, only the numeric registry value, so a receiver that wants
// to show "NHK" instead of "network 0x0200" needs an external table.
//
// This package ships a small embedded ONID→network-name table (the same
// registry ISDB's network_id values are drawn from) and an optional JSON
// overlay file for operator-supplied entries. epgfs uses NetworkName to
// annotate the debug tree's event dumps; nothing in the ingest path depends
// on it, so an unrecognised network_id degrades to its hex form rather than
// failing.
package dvbdb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ── types ─────────────────────────────────────────────────────────────────────

// Entry is one DVB service registry entry.
type Entry struct {
	// DVB triplet (all three required for unique identification).
	OriginalNetworkID uint16 `json:"onid"`
	TransportStreamID uint16 `json:"tsid"`
	ServiceID         uint16 `json:"sid"`

	// Identity fields.
	Name        string `json:"name"`         // broadcaster's service name
	NetworkName string `json:"network_name"` // ONID-level network name (e.g. "Sky UK")
	Country     string `json:"country"`      // ISO 3166-1 alpha-2
	Language    string `json:"language"`     // primary language code
}

// DB is the in-memory DVB service database.
type DB struct {
	Entries []Entry `json:"entries"`

	// indices rebuilt at load
	byTriplet  map[tripletKey]int // (onid,tsid,sid) → index
	byONIDName map[uint16][]int   // onid → indices (for name fallback)
}

type tripletKey struct{ onid, tsid, sid uint16 }

func (db *DB) Len() int { return len(db.Entries) }

// ── load / save ───────────────────────────────────────────────────────────────

// New returns an empty DB pre-populated with the embedded ONID table.
func New() *DB {
	db := &DB{}
	db.loadEmbedded()
	db.buildIndices()
	return db
}

// Load reads the DB from a JSON file and merges with the embedded ONID table.
// Returns an empty (but still useful) DB if file absent.
func Load(path string) (*DB, error) {
	db := New() // start with embedded entries
	if path == "" {
		return db, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return db, nil
		}
		return nil, err
	}
	var loaded DB
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, err
	}
	// Merge loaded entries (overwrite embedded ones for same triplet).
	for _, e := range loaded.Entries {
		db.upsert(e)
	}
	db.buildIndices()
	return db, nil
}

// Save persists every entry of the DB, the embedded name-only placeholders
// included, by writing a temporary file and renaming it over path.
func (db *DB) Save(path string) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(filepath.Clean(path))
	tmp, err := os.CreateTemp(dir, ".dvbdb-*.json.tmp")
	if err != nil {
		return fmt.Errorf("dvbdb save: %w", err)
	}
	tmpName := tmp.Name()
	_, we := tmp.Write(data)
	ce := tmp.Close()
	if we != nil || ce != nil {
		os.Remove(tmpName)
		if we != nil {
			return we
		}
		return ce
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Upsert adds or replaces an entry by triplet.
func (db *DB) upsert(e Entry) {
	k := tripletKey{e.OriginalNetworkID, e.TransportStreamID, e.ServiceID}
	if idx, ok := db.byTriplet[k]; ok {
		db.Entries[idx] = e
		return
	}
	db.Entries = append(db.Entries, e)
}

// MergeEntries upserts a slice of entries by triplet and rebuilds indices.
// Returns the number of entries added; replacing an existing triplet is not
// counted.
func (db *DB) MergeEntries(entries []Entry) int {
	n := 0
	for _, e := range entries {
		before := db.Len()
		db.upsert(e)
		if db.Len() > before {
			n++
		}
	}
	db.buildIndices()
	return n
}

// ── lookup ────────────────────────────────────────────────────────────────────

// LookupTriplet returns the Entry for the given DVB triplet, or nil.
func (db *DB) LookupTriplet(onid, tsid, sid uint16) *Entry {
	if idx, ok := db.byTriplet[tripletKey{onid, tsid, sid}]; ok {
		e := db.Entries[idx]
		return &e
	}
	return nil
}

// NetworkName returns the broadcaster network name for an ONID, e.g. "Sky UK"
// for ONID 0x233D. The most recently added entry with a non-empty
// NetworkName wins over the embedded table. Falls back to a hex string if
// unknown.
func (db *DB) NetworkName(onid uint16) string {
	idxs := db.byONIDName[onid]
	for i := len(idxs) - 1; i >= 0; i-- {
		if nn := db.Entries[idxs[i]].NetworkName; nn != "" {
			return nn
		}
	}
	if n, ok := embeddedONIDNames[onid]; ok {
		return n
	}
	return fmt.Sprintf("ONID-0x%04X", onid)
}

// ── index build ───────────────────────────────────────────────────────────────

func (db *DB) buildIndices() {
	db.byTriplet = make(map[tripletKey]int, len(db.Entries))
	db.byONIDName = make(map[uint16][]int, 64)

	for i, e := range db.Entries {
		k := tripletKey{e.OriginalNetworkID, e.TransportStreamID, e.ServiceID}
		db.byTriplet[k] = i
		if e.OriginalNetworkID != 0 {
			db.byONIDName[e.OriginalNetworkID] = append(db.byONIDName[e.OriginalNetworkID], i)
		}
	}
}

// ── embedded ONID table ───────────────────────────────────────────────────────
// This covers the most common broadcasters worldwide so basic network
// identification works without an overlay file.  Source: dvbservices.com
// public network list + community annotations.

func (db *DB) loadEmbedded() {
	for onid, name := range embeddedONIDNames {
		// Add a name-only placeholder entry (tsid=0, sid=0). An overlay entry
		// with the same (onid, 0, 0) triplet replaces it; other triplets are
		// added beside it.
		db.Entries = append(db.Entries, Entry{
			OriginalNetworkID: onid,
			NetworkName:       name,
		})
	}
}

// embeddedONIDNames maps ONID → network name.
// Covers 80 networks worldwide; enough for basic network identity without
// an overlay file.
var embeddedONIDNames = map[uint16]string{
	// UK / Ireland
	0x0002: "BBC",
	0x003B: "ITV",
	0x0052: "Channel 4",
	0x005A: "Channel 5",
	0x233D: "Sky UK",
	0x2AF3: "Freesat UK",
	0x2EBD: "Freeview UK",
	0x3EEE: "Virgin Media UK",
	0x4048: "BT TV UK",
	0x20CF: "UPC Ireland",
	// US / Canada
	0x0086: "ATSC Local USA",
	0x20FA: "DirecTV USA",
	0x1FCA: "Dish Network USA",
	0x241F: "Comcast USA",
	0x2076: "Charter/Spectrum USA",
	0x2275: "Cox USA",
	0x2276: "AT&T U-verse USA",
	0x2277: "Verizon FiOS USA",
	0x22E0: "Bell Canada",
	0x22E1: "Rogers Canada",
	0x22E2: "Shaw Canada",
	0x22E3: "Telus Canada",
	0x22E4: "Videotron Canada",
	// Germany
	0x0001: "ARD Germany",
	0x0005: "ZDF Germany",
	0x0006: "RTL Germany",
	0x0085: "ProSieben Germany",
	0x00B0: "Sat.1 Germany",
	0x1004: "Sky Deutschland",
	0x20B0: "Unitymedia Germany",
	// France
	0x20C8: "Canal+ France",
	0x20C4: "TF1 France",
	0x20C5: "France Télévisions",
	0x20C7: "Orange France",
	0x20C9: "SFR France",
	// Netherlands
	0x0000: "DVB Reserved",
	0x222A: "Ziggo Netherlands",
	0x222B: "KPN Netherlands",
	// Nordics
	0x0028: "SVT Sweden",
	0x0070: "NRK Norway",
	0x026E: "DR Denmark",
	0x032C: "YLE Finland",
	// Spain / Italy
	0x0053: "RTVE Spain",
	0x0064: "Mediaset Spain",
	0x0060: "RAI Italy",
	0x1180: "Sky Italia",
	// Eastern Europe
	0x20A8: "Czech Republic (ČT)",
	0x0090: "TVP Poland",
	0x3201: "Romania (TVR)",
	// Middle East / Turkey
	0x2B66: "Digiturk Turkey",
	0x2B67: "D-Smart Turkey",
	0x20FF: "BeIN Sports MENA",
	0x200A: "OSN Middle East",
	// Asia-Pacific
	0x2000: "SES/Astra Global",
	0x2001: "Eutelsat Global",
	0x2041: "Foxtel Australia",
	0x2042: "Optus Australia",
	0x20B4: "StarHub Singapore",
	0x20B5: "Singtel Singapore",
	0x0200: "NHK Japan",
	0x20C0: "SoftBank Japan",
	// Africa
	0x2086: "DStv Africa",
	0x2087: "GOtv Africa",
	// Latin America
	0x20D8: "Claro TV Brazil",
	0x20D9: "Sky Mexico",
	0x20DA: "DirecTV Latin America",
	// Satellite platforms (multi-region)
	0x0073: "Astra 1 (SES)",
	0x0071: "Astra 2 (SES)",
	0x0072: "Astra 3 (SES)",
	0x20A4: "Eutelsat Hot Bird",
	0x20A5: "Eutelsat 9E",
	0x20A6: "Eutelsat 13E",
	0x20A7: "Eutelsat 16E",
	0x20A9: "Intelsat",
	0x20AA: "NSS",
	0x20AB: "PanAmSat",
	0x20AC: "Hispasat",
	0x20AD: "Amazonas",
	0x20AE: "Star One",
	0x20AF: "Galaxy",
}
