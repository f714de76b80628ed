package epg

import (
	"sync"

	"github.com/isdb-go/epgd/internal/bcdtime"
	"github.com/isdb-go/epgd/internal/descriptor"
	"github.com/isdb-go/epgd/internal/table"
)

// pastStaleWindowSeconds discards events whose end time already precedes
// current_epg_time by this much (spec.md §4.6 step 3).
const pastStaleWindowSeconds = 5 * 60

// Database is the EPG store. Zero value is not usable; use NewDatabase.
type Database struct {
	mu        sync.Mutex
	services  map[ServiceKey]*serviceState
	haveTOT   bool
	currentTOT bcdtime.DateTime

	listeners   map[int]EventListener
	nextListener int
}

func NewDatabase() *Database {
	return &Database{
		services:  make(map[ServiceKey]*serviceState),
		listeners: make(map[int]EventListener),
	}
}

// AddEventListener registers l and returns a token for RemoveEventListener.
func (db *Database) AddEventListener(l EventListener) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	id := db.nextListener
	db.nextListener++
	db.listeners[id] = l
	return id
}

func (db *Database) RemoveEventListener(token int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.listeners, token)
}

type pendingNotification struct {
	reset     *ServiceKey
	completed *ServiceKey
	extended  bool
}

func (db *Database) serviceFor(key ServiceKey) *serviceState {
	s, ok := db.services[key]
	if !ok {
		s = newServiceState()
		db.services[key] = s
	}
	return s
}

func (db *Database) currentTOTSeconds() int64 {
	if !db.haveTOT {
		return 0
	}
	return db.currentTOT.GetLinearSeconds()
}

// RestoreEvent inserts e directly into key's service, bypassing the
// classification and pending-queue logic UpdateSection applies to live
// broadcast sections. It is meant for reloading a previously persisted
// snapshot (see internal/epgstore): e's Type gains TypeDatabase, and
// overlap resolution still runs through insertTimeMap so a restored
// snapshot cannot corrupt an already-populated TimeMap.
func (db *Database) RestoreEvent(key ServiceKey, e EventInfo) {
	db.mu.Lock()
	defer db.mu.Unlock()
	e.Type |= TypeDatabase
	svc := db.serviceFor(key)
	db.mergeEvent(svc, &e, e.Type&TypeBasic == 0 && e.Type&TypeExtended != 0)
}

// UpdateTOT feeds a new broadcast clock reading. Every pending event
// buffered since before the first TOT is rewritten with the now-known
// updated_time and merged into its service's main map.
func (db *Database) UpdateTOT(tot table.TOT) {
	if !tot.HasTime {
		return
	}
	db.mu.Lock()
	db.currentTOT = tot.Time
	db.haveTOT = true
	nowSec := db.currentTOT.GetLinearSeconds()

	for _, svc := range db.services {
		if len(svc.pending) == 0 {
			continue
		}
		pending := svc.pending
		svc.pending = make(map[uint16]*EventInfo)
		for _, e := range pending {
			e.UpdatedTime = nowSec
			db.mergeEvent(svc, e, false)
		}
	}
	db.mu.Unlock()
}

// UpdateSection folds one decoded EIT section into the database, per
// spec.md §4.6 "Primary operation: update_section".
func (db *Database) UpdateSection(eit table.EIT, sourceID string) error {
	db.mu.Lock()
	var notes []pendingNotification
	key := ServiceKey{NetworkID: eit.OriginalNetworkID, TransportStreamID: eit.TransportStreamID, ServiceID: eit.ServiceID}
	svc := db.serviceFor(key)

	isSchedule, isExtended := classify(eit.TableID)
	currentEPGSeconds := db.currentTOTSeconds()

	receivedAny := false
	for _, ev := range eit.Events {
		if !ev.HasStartTime || ev.Duration == 0 {
			continue
		}
		endSec := ev.StartTime.GetLinearSeconds() + int64(ev.Duration)
		if currentEPGSeconds > 0 && endSec < currentEPGSeconds-pastStaleWindowSeconds {
			continue
		}
		receivedAny = true

		info := &EventInfo{
			EventID:       ev.EventID,
			StartTime:     ev.StartTime,
			HasStartTime:  true,
			Duration:      ev.Duration,
			RunningStatus: ev.RunningStatus,
			FreeCAMode:    ev.FreeCAMode,
			SourceID:      sourceID,
		}
		applyDescriptors(info, ev.Descriptors)

		if !isSchedule {
			info.Type = TypeBasic | TypeExtended
			if eit.TableID == table.TableIDEITPFActual {
				info.Type |= TypePresent
			} else {
				info.Type |= TypeFollowing
			}
		} else if isExtended {
			info.Type = TypeExtended
		} else {
			info.Type = TypeBasic
		}

		if currentEPGSeconds == 0 {
			info.UpdatedTime = 0
			if existing, ok := svc.events[ev.EventID]; ok && existing.UpdatedTime > 0 {
				continue
			}
			svc.pending[ev.EventID] = info
			continue
		}
		info.UpdatedTime = currentEPGSeconds

		if existing, ok := svc.events[ev.EventID]; ok && existing.UpdatedTime > currentEPGSeconds {
			continue
		}

		extendedOnly := isExtended
		if extendedOnly {
			if existing, ok := svc.events[ev.EventID]; ok && existing.SourceID == sourceID {
				extendedOnly = false
			}
		}
		if extendedOnly {
			svc.extended[ev.EventID] = info
			continue
		}

		db.mergeEvent(svc, info, isExtended)
	}

	if !receivedAny && currentEPGSeconds > 0 && isSchedule && !isExtended {
		pruneStaleSegment(svc, currentEPGSeconds, db.currentTOT, eit.TableID, eit.SectionNumber)
	}

	if isSchedule {
		if svc.schedValid {
			y, m, d := db.currentTOT.Year, db.currentTOT.Month, db.currentTOT.Day
			if y != svc.schedYear || m != svc.schedMonth || d != svc.schedDay {
				svc.schedule = scheduleTracker{}
				svc.schedYear, svc.schedMonth, svc.schedDay = y, m, d
				k := key
				notes = append(notes, pendingNotification{reset: &k})
			}
		} else {
			svc.schedYear, svc.schedMonth, svc.schedDay = db.currentTOT.Year, db.currentTOT.Month, db.currentTOT.Day
			svc.schedValid = true
		}

		currentHour := 0
		if db.haveTOT {
			currentHour = db.currentTOT.Hour
		}
		completed := svc.schedule.OnSection(eit.TableID, eit.SectionNumber, eit.SegmentLastSectionNumber, eit.LastSectionNumber, eit.VersionNumber, eit.LastTableID, currentHour)
		if completed {
			k := key
			notes = append(notes, pendingNotification{completed: &k, extended: isExtended})
		}
	}

	db.mu.Unlock()
	db.dispatch(notes)
	return nil
}

// mergeEvent implements spec.md §4.6 step 4d-4h for one already-classified
// (non-extended-only) event update.
func (db *Database) mergeEvent(svc *serviceState, info *EventInfo, isExtendedSection bool) {
	existing, hadExisting := svc.events[info.EventID]
	if hadExisting && existing.StartTime.GetLinearSeconds() != info.StartTime.GetLinearSeconds() {
		svc.removeTimeMapByEventID(info.EventID)
	}
	if hadExisting && existing.SourceID != info.SourceID {
		hadExisting = false // wholesale replace
	}
	if hadExisting {
		mergeFields(existing, info)
		info = existing
	}

	if !svc.insertTimeMap(info) {
		return
	}
	svc.events[info.EventID] = info

	if !isExtendedSection {
		if orphan, ok := svc.extended[info.EventID]; ok {
			if orphan.SourceID == info.SourceID && orphan.StartTime.GetLinearSeconds() == info.StartTime.GetLinearSeconds() && orphan.UpdatedTime <= info.UpdatedTime {
				info.ExtendedText = orphan.ExtendedText
				info.ExtendedItems = orphan.ExtendedItems
				info.Type |= TypeExtended
				if orphan.UpdatedTime > info.UpdatedTime {
					info.UpdatedTime = orphan.UpdatedTime
				}
			}
			delete(svc.extended, info.EventID)
		}
	}

	if pend, ok := svc.pending[info.EventID]; ok {
		if info.Type&TypeExtended == 0 && pend.ExtendedText != "" {
			info.ExtendedText = pend.ExtendedText
		}
		delete(svc.pending, info.EventID)
	}
}

func mergeFields(dst, src *EventInfo) {
	dst.StartTime = src.StartTime
	dst.Duration = src.Duration
	dst.RunningStatus = src.RunningStatus
	dst.FreeCAMode = src.FreeCAMode
	dst.UpdatedTime = src.UpdatedTime
	dst.Type |= src.Type
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.ShortText != "" {
		dst.ShortText = src.ShortText
	}
	if len(src.ExtendedItems) > 0 {
		dst.ExtendedItems = src.ExtendedItems
		dst.ExtendedText = src.ExtendedText
	}
	if len(src.Components) > 0 {
		dst.Components = src.Components
	}
	if len(src.AudioComponents) > 0 {
		dst.AudioComponents = src.AudioComponents
	}
	if len(src.ContentNibbles) > 0 {
		dst.ContentNibbles = src.ContentNibbles
	}
	if len(src.EventGroups) > 0 {
		dst.EventGroups = dedupEventGroups(append(dst.EventGroups, src.EventGroups...))
	}
	if src.CommonEvent != nil {
		dst.CommonEvent = src.CommonEvent
	}
}

func dedupEventGroups(groups []descriptor.EventGroupEntry) []descriptor.EventGroupEntry {
	type gkey struct {
		onid, tsid, sid, eid uint16
	}
	seen := make(map[gkey]bool)
	var out []descriptor.EventGroupEntry
	for _, g := range groups {
		k := gkey{g.OriginalNetworkID, g.TransportStreamID, g.ServiceID, g.EventID}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, g)
	}
	return out
}

func applyDescriptors(info *EventInfo, block *descriptor.DescriptorBlock) {
	if block == nil {
		return
	}
	if d, ok := block.Lookup(descriptor.TagShortEvent); ok {
		if f, ok := d.Body.(descriptor.ShortEventFields); ok {
			info.Name = f.EventName
			info.ShortText = f.Description
		}
	}
	for _, d := range block.LookupAll(descriptor.TagExtendedEvent) {
		if f, ok := d.Body.(descriptor.ExtendedEventFields); ok {
			info.ExtendedItems = append(info.ExtendedItems, f.Items...)
			info.ExtendedText += f.Text
			info.Type |= TypeExtended
		}
	}
	for _, d := range block.LookupAll(descriptor.TagComponent) {
		if f, ok := d.Body.(descriptor.ComponentFields); ok {
			info.Components = append(info.Components, f)
		}
	}
	for _, d := range block.LookupAll(descriptor.TagAudioComponent) {
		if f, ok := d.Body.(descriptor.AudioComponentFields); ok {
			info.AudioComponents = append(info.AudioComponents, f)
		}
	}
	if d, ok := block.Lookup(descriptor.TagContent); ok {
		if f, ok := d.Body.(descriptor.ContentFields); ok {
			info.ContentNibbles = f.Nibbles
		}
	}
	for _, d := range block.LookupAll(descriptor.TagEventGroup) {
		if f, ok := d.Body.(descriptor.EventGroupFields); ok {
			info.EventGroups = dedupEventGroups(append(info.EventGroups, f.Events...))
		}
	}
}

// pruneStaleSegment implements spec.md §4.6 step 5: an empty schedule
// section past 00:00:30 implies prior events in its 3-hour segment have
// disappeared from the broadcast. The segment starts (table_id&7)*4 days
// plus (section_number>>3)*3 hours after midnight of the current TOT date.
func pruneStaleSegment(svc *serviceState, currentEPGSeconds int64, now bcdtime.DateTime, tableID, sectionNumber byte) {
	if now.Hour == 0 && now.Minute == 0 && now.Second < 30 {
		return
	}
	segStart := now.TruncateToDays().GetLinearSeconds() + int64(tableID&0x07)*4*24*3600 + int64(sectionNumber>>3)*3*3600
	segEnd := segStart + 3*3600
	var toRemove []uint16
	for id, e := range svc.events {
		start := e.StartTime.GetLinearSeconds()
		if e.UpdatedTime < currentEPGSeconds && start >= segStart && start < segEnd {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		svc.removeTimeMapByEventID(id)
		delete(svc.events, id)
	}
}
