package epg

// GetServiceList returns every ServiceKey currently tracked, in no
// particular order.
func (db *Database) GetServiceList() []ServiceKey {
	db.mu.Lock()
	defer db.mu.Unlock()
	keys := make([]ServiceKey, 0, len(db.services))
	for k := range db.services {
		keys = append(keys, k)
	}
	return keys
}

// GetEventList returns every event known for key, unordered.
func (db *Database) GetEventList(key ServiceKey) []EventInfo {
	db.mu.Lock()
	defer db.mu.Unlock()
	svc, ok := db.services[key]
	if !ok {
		return nil
	}
	out := make([]EventInfo, 0, len(svc.events))
	for _, e := range svc.events {
		out = append(out, db.resolveCommon(*e))
	}
	return out
}

// GetEventListSortedByTime returns key's events ordered by start time, with
// overlaps already resolved (this is exactly the service's TimeMap).
func (db *Database) GetEventListSortedByTime(key ServiceKey) []EventInfo {
	db.mu.Lock()
	defer db.mu.Unlock()
	svc, ok := db.services[key]
	if !ok {
		return nil
	}
	out := make([]EventInfo, 0, len(svc.timeMap))
	for _, e := range svc.timeMap {
		out = append(out, db.resolveCommon(*e))
	}
	return out
}

// GetEventInfoByID looks up one event by its event_id.
func (db *Database) GetEventInfoByID(key ServiceKey, eventID uint16) (EventInfo, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	svc, ok := db.services[key]
	if !ok {
		return EventInfo{}, false
	}
	e, ok := svc.events[eventID]
	if !ok {
		return EventInfo{}, false
	}
	return db.resolveCommon(*e), true
}

// GetEventInfoAtTime returns the event covering linearSeconds, if any.
func (db *Database) GetEventInfoAtTime(key ServiceKey, linearSeconds int64) (EventInfo, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	svc, ok := db.services[key]
	if !ok {
		return EventInfo{}, false
	}
	idx := svc.timeMapIndexAtOrAfter(linearSeconds)
	if idx < len(svc.timeMap) && svc.timeMap[idx].StartTime.GetLinearSeconds() == linearSeconds {
		return db.resolveCommon(*svc.timeMap[idx]), true
	}
	if idx > 0 {
		cand := svc.timeMap[idx-1]
		if cand.StartTime.GetLinearSeconds() <= linearSeconds && linearSeconds < cand.EndLinearSeconds() {
			return db.resolveCommon(*cand), true
		}
	}
	return EventInfo{}, false
}

// GetNextEventInfo returns the event chronologically following the one
// given by eventID, if any.
func (db *Database) GetNextEventInfo(key ServiceKey, eventID uint16) (EventInfo, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	svc, ok := db.services[key]
	if !ok {
		return EventInfo{}, false
	}
	e, ok := svc.events[eventID]
	if !ok {
		return EventInfo{}, false
	}
	idx := svc.timeMapIndexAtOrAfter(e.StartTime.GetLinearSeconds())
	for idx < len(svc.timeMap) && svc.timeMap[idx].EventID == eventID {
		idx++
	}
	if idx >= len(svc.timeMap) {
		return EventInfo{}, false
	}
	return db.resolveCommon(*svc.timeMap[idx]), true
}

// EnumEventsSortedByTime calls fn for every event in key's TimeMap, in
// start-time order, stopping early if fn returns false.
func (db *Database) EnumEventsSortedByTime(key ServiceKey, fn func(EventInfo) bool) {
	db.mu.Lock()
	svc, ok := db.services[key]
	var snapshot []EventInfo
	if ok {
		snapshot = make([]EventInfo, len(svc.timeMap))
		for i, e := range svc.timeMap {
			snapshot[i] = db.resolveCommon(*e)
		}
	}
	db.mu.Unlock()
	if !ok {
		return
	}
	// timeMap is already maintained in start-time order by insertTimeMap.
	for _, e := range snapshot {
		if !fn(e) {
			return
		}
	}
}

// resolveCommon follows e.CommonEvent, if set, substituting the referenced
// event's text and descriptor fields while keeping e's own identity and
// schedule. Must be called with db.mu held.
func (db *Database) resolveCommon(e EventInfo) EventInfo {
	if e.CommonEvent == nil {
		return e
	}
	svc, ok := db.services[e.CommonEvent.ServiceKey]
	if !ok {
		return e
	}
	src, ok := svc.events[e.CommonEvent.EventID]
	if !ok {
		return e
	}
	e.Name = src.Name
	e.ShortText = src.ShortText
	e.ExtendedItems = src.ExtendedItems
	e.ExtendedText = src.ExtendedText
	e.Components = src.Components
	e.AudioComponents = src.AudioComponents
	e.ContentNibbles = src.ContentNibbles
	return e
}
