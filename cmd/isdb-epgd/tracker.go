package main

import (
	"fmt"
	"log"
	"sync"

	"github.com/isdb-go/epgd/internal/epg"
	"github.com/isdb-go/epgd/internal/epgstore"
	"github.com/isdb-go/epgd/internal/metrics"
)

// completionState tracks one service's last-known basic/extended schedule
// completeness, mirrored into the ScheduleComplete gauge and, when a store
// is configured, into schedule_status for warm restarts.
type completionState struct {
	basic    bool
	extended bool
}

// completionTracker is the epg.EventListener that turns database lifecycle
// notifications into metrics and (optionally) persisted schedule status.
type completionTracker struct {
	mu    sync.Mutex
	reg   *metrics.Registry
	store *epgstore.Store
	state map[epg.ServiceKey]*completionState
}

func newCompletionTracker(reg *metrics.Registry, store *epgstore.Store) *completionTracker {
	return &completionTracker{
		reg:   reg,
		store: store,
		state: make(map[epg.ServiceKey]*completionState),
	}
}

func serviceLabel(key epg.ServiceKey) string {
	return fmt.Sprintf("%d-%d-%d", key.NetworkID, key.TransportStreamID, key.ServiceID)
}

func extendedLabel(extended bool) string {
	if extended {
		return "true"
	}
	return "false"
}

// OnScheduleStatusReset marks both basic and extended schedules incomplete,
// per spec.md §4.6's day-change reset (the original tracker resets its
// whole completeness bitmap, not just one flag).
func (t *completionTracker) OnScheduleStatusReset(key epg.ServiceKey) {
	t.mu.Lock()
	t.state[key] = &completionState{}
	t.mu.Unlock()

	label := serviceLabel(key)
	t.reg.ScheduleComplete.WithLabelValues(label, "false").Set(0)
	t.reg.ScheduleComplete.WithLabelValues(label, "true").Set(0)
	if t.store != nil {
		if err := t.store.SaveScheduleStatus(key, false, false); err != nil {
			log.Printf("isdb-epgd: persist schedule reset: %v", err)
		}
		if err := t.store.SaveScheduleStatus(key, true, false); err != nil {
			log.Printf("isdb-epgd: persist schedule reset: %v", err)
		}
	}
}

// OnServiceCompleted marks one schedule (basic or extended) complete.
func (t *completionTracker) OnServiceCompleted(key epg.ServiceKey, extended bool) {
	t.mu.Lock()
	st, ok := t.state[key]
	if !ok {
		st = &completionState{}
		t.state[key] = st
	}
	if extended {
		st.extended = true
	} else {
		st.basic = true
	}
	t.mu.Unlock()

	t.reg.ScheduleComplete.WithLabelValues(serviceLabel(key), extendedLabel(extended)).Set(1)
	if t.store != nil {
		if err := t.store.SaveScheduleStatus(key, extended, true); err != nil {
			log.Printf("isdb-epgd: persist schedule completion: %v", err)
		}
	}
}

// persistAll writes every tracked service's current completeness to store,
// used by the periodic snapshot loop to keep schedule_status current even
// between completion edges.
func (t *completionTracker) persistAll() {
	if t.store == nil {
		return
	}
	t.mu.Lock()
	snapshot := make(map[epg.ServiceKey]completionState, len(t.state))
	for k, v := range t.state {
		snapshot[k] = *v
	}
	t.mu.Unlock()

	for key, st := range snapshot {
		if err := t.store.SaveScheduleStatus(key, false, st.basic); err != nil {
			log.Printf("isdb-epgd: persist schedule status: %v", err)
		}
		if err := t.store.SaveScheduleStatus(key, true, st.extended); err != nil {
			log.Printf("isdb-epgd: persist schedule status: %v", err)
		}
	}
}
