package epg

import (
	"sort"

	"github.com/isdb-go/epgd/internal/table"
)

type scheduleTracker = table.ScheduleInfo

// serviceState holds everything the database tracks for one ServiceKey.
type serviceState struct {
	events    map[uint16]*EventInfo // by event_id
	timeMap   []*EventInfo          // sorted by StartTime, no overlaps
	extended  map[uint16]*EventInfo // orphaned extended-only records, by event_id
	pending   map[uint16]*EventInfo // pre-TOT buffer, by event_id
	schedule  scheduleTracker
	schedYear, schedMonth, schedDay int
	schedValid bool
}

func newServiceState() *serviceState {
	return &serviceState{
		events:   make(map[uint16]*EventInfo),
		extended: make(map[uint16]*EventInfo),
		pending:  make(map[uint16]*EventInfo),
	}
}

// timeMapIndexAtOrAfter returns the index of the first entry whose
// StartTime is >= linearSec (a lower-bound search over linear seconds).
func (s *serviceState) timeMapIndexAtOrAfter(linearSec int64) int {
	return sort.Search(len(s.timeMap), func(i int) bool {
		return s.timeMap[i].StartTime.GetLinearSeconds() >= linearSec
	})
}

// insertTimeMap inserts e into timeMap, keeping it sorted, resolving
// overlaps per spec.md §4.6 "TimeMap overlap resolution". Returns false
// if e lost the resolution and was not inserted (and any event map entry
// for the same event_id should be treated as not present).
func (s *serviceState) insertTimeMap(e *EventInfo) bool {
	start := e.StartTime.GetLinearSeconds()
	end := start + int64(e.Duration)

	// Exact-slot identical entry: done; the slot now refers to e so it
	// matches the events map entry the caller stores.
	if idx := s.timeMapIndexAtOrAfter(start); idx < len(s.timeMap) {
		existing := s.timeMap[idx]
		if existing.StartTime.GetLinearSeconds() == start {
			if existing.EventID == e.EventID && existing.Duration == e.Duration {
				s.timeMap[idx] = e
				return true
			}
			// Different event at the same slot: old entry is erased
			// (spec.md §4.6 TimeMap rule 5).
			if existing.UpdatedTime > e.UpdatedTime {
				return false
			}
			s.removeTimeMapAt(idx)
		}
	}

	// Forward (successor) overlap scan.
	for {
		idx := s.timeMapIndexAtOrAfter(start)
		if idx >= len(s.timeMap) {
			break
		}
		succ := s.timeMap[idx]
		if succ.StartTime.GetLinearSeconds() >= end {
			break
		}
		if succ.UpdatedTime > e.UpdatedTime {
			return false
		}
		s.removeTimeMapAt(idx)
	}

	// Backward (predecessor) overlap scan.
	for {
		idx := s.timeMapIndexAtOrAfter(start) - 1
		if idx < 0 {
			break
		}
		pred := s.timeMap[idx]
		predEnd := pred.StartTime.GetLinearSeconds() + int64(pred.Duration)
		if predEnd <= start {
			break
		}
		if pred.UpdatedTime > e.UpdatedTime {
			return false
		}
		s.removeTimeMapAt(idx)
	}

	idx := s.timeMapIndexAtOrAfter(start)
	s.timeMap = append(s.timeMap, nil)
	copy(s.timeMap[idx+1:], s.timeMap[idx:])
	s.timeMap[idx] = e
	return true
}

func (s *serviceState) removeTimeMapAt(idx int) {
	removed := s.timeMap[idx]
	s.timeMap = append(s.timeMap[:idx], s.timeMap[idx+1:]...)
	delete(s.events, removed.EventID)
}

func (s *serviceState) removeTimeMapByEventID(eventID uint16) {
	for i, e := range s.timeMap {
		if e.EventID == eventID {
			s.timeMap = append(s.timeMap[:i], s.timeMap[i+1:]...)
			return
		}
	}
}
