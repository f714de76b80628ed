package main

import (
	"context"
	"log"
	"time"

	"github.com/isdb-go/epgd/internal/epg"
	"github.com/isdb-go/epgd/internal/epgstore"
)

// runSnapshotLoop periodically persists every tracked event and the
// completion tracker's schedule status to store, plus once more on
// shutdown. Writing is best-effort: a failed save is logged and never
// blocks ingestion (spec.md §9's persistence contract).
func runSnapshotLoop(ctx context.Context, db *epg.Database, store *epgstore.Store, tracker *completionTracker, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			saveSnapshot(db, store, tracker)
			return
		case <-ticker.C:
			saveSnapshot(db, store, tracker)
		}
	}
}

func saveSnapshot(db *epg.Database, store *epgstore.Store, tracker *completionTracker) {
	count := 0
	for _, key := range db.GetServiceList() {
		for _, e := range db.GetEventList(key) {
			if err := store.SaveEvent(key, e); err != nil {
				log.Printf("isdb-epgd: save event service=%s event=%d: %v", serviceLabel(key), e.EventID, err)
				continue
			}
			count++
		}
	}
	tracker.persistAll()
	log.Printf("isdb-epgd: snapshot wrote %d events", count)
}
