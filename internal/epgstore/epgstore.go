// Package epgstore persists EPGDatabase snapshots to a sqlite file: one
// row per event keyed by (network_id, transport_stream_id, service_id,
// event_id), brotli-compressed extended text, and a schedule_status table
// recording each service's last-known completeness so a restart does not
// have to wait out a full EIT cycle before resuming query service.
package epgstore

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"log"

	"github.com/andybalholm/brotli"
	_ "modernc.org/sqlite"

	"github.com/isdb-go/epgd/internal/bcdtime"
	"github.com/isdb-go/epgd/internal/epg"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	network_id INTEGER NOT NULL,
	transport_stream_id INTEGER NOT NULL,
	service_id INTEGER NOT NULL,
	event_id INTEGER NOT NULL,
	start_time INTEGER NOT NULL,
	duration INTEGER NOT NULL,
	running_status INTEGER NOT NULL,
	free_ca_mode INTEGER NOT NULL,
	type INTEGER NOT NULL,
	source_id TEXT NOT NULL,
	updated_time INTEGER NOT NULL,
	name TEXT NOT NULL,
	short_text TEXT NOT NULL,
	extended_text_br BLOB,
	PRIMARY KEY (network_id, transport_stream_id, service_id, event_id)
);
CREATE TABLE IF NOT EXISTS schedule_status (
	network_id INTEGER NOT NULL,
	transport_stream_id INTEGER NOT NULL,
	service_id INTEGER NOT NULL,
	extended INTEGER NOT NULL,
	complete INTEGER NOT NULL,
	PRIMARY KEY (network_id, transport_stream_id, service_id, extended)
);
`

// Store is a sqlite-backed snapshot of an epg.Database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the sqlite database at path and ensures its
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("epgstore: open %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("epgstore: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveEvent upserts one event under key, brotli-compressing its extended
// text before storage.
func (s *Store) SaveEvent(key epg.ServiceKey, e epg.EventInfo) error {
	compressed, err := compressText(e.ExtendedText)
	if err != nil {
		return fmt.Errorf("epgstore: compress extended text: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO events (
			network_id, transport_stream_id, service_id, event_id,
			start_time, duration, running_status, free_ca_mode, type,
			source_id, updated_time, name, short_text, extended_text_br
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (network_id, transport_stream_id, service_id, event_id)
		DO UPDATE SET
			start_time=excluded.start_time, duration=excluded.duration,
			running_status=excluded.running_status, free_ca_mode=excluded.free_ca_mode,
			type=excluded.type, source_id=excluded.source_id, updated_time=excluded.updated_time,
			name=excluded.name, short_text=excluded.short_text, extended_text_br=excluded.extended_text_br
	`,
		key.NetworkID, key.TransportStreamID, key.ServiceID, e.EventID,
		e.StartTime.GetLinearSeconds(), e.Duration, e.RunningStatus, boolToInt(e.FreeCAMode), e.Type,
		e.SourceID, e.UpdatedTime, e.Name, e.ShortText, compressed,
	)
	if err != nil {
		return fmt.Errorf("epgstore: save event %d/%d: %w", key.ServiceID, e.EventID, err)
	}
	return nil
}

// SaveScheduleStatus records whether key's schedule (basic or extended)
// is currently complete.
func (s *Store) SaveScheduleStatus(key epg.ServiceKey, extended, complete bool) error {
	_, err := s.db.Exec(`
		INSERT INTO schedule_status (network_id, transport_stream_id, service_id, extended, complete)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (network_id, transport_stream_id, service_id, extended)
		DO UPDATE SET complete=excluded.complete
	`, key.NetworkID, key.TransportStreamID, key.ServiceID, boolToInt(extended), boolToInt(complete))
	if err != nil {
		return fmt.Errorf("epgstore: save schedule status: %w", err)
	}
	return nil
}

// LoadInto reads every stored event and restores it directly into db,
// each gaining the epg.TypeDatabase flag to mark it as loaded from a
// snapshot rather than freshly decoded from the broadcast stream.
func (s *Store) LoadInto(db *epg.Database) error {
	rows, err := s.db.Query(`
		SELECT network_id, transport_stream_id, service_id, event_id,
			start_time, duration, running_status, free_ca_mode, type,
			source_id, updated_time, name, short_text, extended_text_br
		FROM events
	`)
	if err != nil {
		return fmt.Errorf("epgstore: query events: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var nid, tsid, sid, eid int64
		var startLinear, updatedTime int64
		var duration int64
		var runningStatus, freeCA, typ int64
		var srcID, name, shortText string
		var extBlob []byte
		if err := rows.Scan(&nid, &tsid, &sid, &eid, &startLinear, &duration,
			&runningStatus, &freeCA, &typ, &srcID, &updatedTime, &name, &shortText, &extBlob); err != nil {
			return fmt.Errorf("epgstore: scan event row: %w", err)
		}
		extText, err := decompressText(extBlob)
		if err != nil {
			return fmt.Errorf("epgstore: decompress extended text: %w", err)
		}

		key := epg.ServiceKey{NetworkID: uint16(nid), TransportStreamID: uint16(tsid), ServiceID: uint16(sid)}
		e := epg.EventInfo{
			EventID:       uint16(eid),
			StartTime:     bcdtime.FromLinearSeconds(startLinear),
			HasStartTime:  true,
			Duration:      uint32(duration),
			RunningStatus: byte(runningStatus),
			FreeCAMode:    freeCA != 0,
			Type:          byte(typ),
			SourceID:      srcID,
			UpdatedTime:   updatedTime,
			Name:          name,
			ShortText:     shortText,
			ExtendedText:  extText,
		}
		db.RestoreEvent(key, e)
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("epgstore: iterate event rows: %w", err)
	}

	log.Printf("epgstore: loaded %d events from snapshot", count)
	return nil
}

func compressText(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	r := brotli.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
