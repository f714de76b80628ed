package epg

// Merge folds every event in other into db, honoring flags. It combines a
// separately built Database into a live one, per spec.md §4.6 "Bulk merge".
//
//   - DiscardOldEvents: an incoming event loses to an existing one with a
//     strictly newer UpdatedTime (the default favors the incoming side).
//   - DiscardEndedEvents: events whose end time is already in the past
//     relative to db's current TOT are skipped entirely.
//   - MergeBasicExtended: extended-only records in other are merged as
//     extended-only in db rather than requiring a matching basic event.
//   - AsDatabase: incoming events gain TypeDatabase and lose TypePresent
//     and TypeFollowing; their TypeBasic/TypeExtended bits are kept.
func (db *Database) Merge(other *Database, flags MergeFlags, sourceID string) {
	other.mu.Lock()
	type copied struct {
		key ServiceKey
		ev  EventInfo
	}
	var events []copied
	for key, svc := range other.services {
		for _, e := range svc.events {
			events = append(events, copied{key: key, ev: *e})
		}
		for _, e := range svc.extended {
			events = append(events, copied{key: key, ev: *e})
		}
	}
	other.mu.Unlock()

	db.mu.Lock()
	currentEPGSeconds := db.currentTOTSeconds()
	for _, c := range events {
		e := c.ev
		if flags&DiscardEndedEvents != 0 && currentEPGSeconds > 0 && e.EndLinearSeconds() < currentEPGSeconds {
			continue
		}
		e.SourceID = sourceID
		if flags&AsDatabase != 0 {
			e.Type = (e.Type &^ (TypePresent | TypeFollowing)) | TypeDatabase
		}

		svc := db.serviceFor(c.key)
		existing, hadExisting := svc.events[e.EventID]
		if hadExisting {
			if flags&DiscardOldEvents != 0 && existing.UpdatedTime > e.UpdatedTime {
				continue
			}
			if existing.StartTime.GetLinearSeconds() != e.StartTime.GetLinearSeconds() {
				svc.removeTimeMapByEventID(e.EventID)
			}
		}

		isExtendedOnly := e.Type&TypeBasic == 0 && e.Type&TypeExtended != 0
		if isExtendedOnly && flags&MergeBasicExtended == 0 {
			if _, haveBasic := svc.events[e.EventID]; !haveBasic {
				svc.extended[e.EventID] = &e
				continue
			}
		}

		ev := e
		db.mergeEvent(svc, &ev, isExtendedOnly)
	}
	db.mu.Unlock()
}
