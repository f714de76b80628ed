// Package epg implements the EPG database (spec.md §4.6): ingestion of EIT
// sections and TOT clock updates into per-service event maps, overlap
// resolution, basic/extended merging, completeness tracking, and listener
// notification.
package epg

import (
	"github.com/isdb-go/epgd/internal/bcdtime"
	"github.com/isdb-go/epgd/internal/descriptor"
	"github.com/isdb-go/epgd/internal/table"
)

// ServiceKey identifies one broadcast service.
type ServiceKey struct {
	NetworkID         uint16
	TransportStreamID uint16
	ServiceID         uint16
}

// Type flags recorded on EventInfo, per spec.md §4.6 step 4f.
const (
	TypeBasic byte = 1 << iota
	TypeExtended
	TypePresent
	TypeFollowing
	TypeDatabase
)

// CommonEventRef points an event at another event whose text/components it
// shares (IsCommonEvent resolution, spec.md §4.6 Query operations).
type CommonEventRef struct {
	ServiceKey
	EventID uint16
}

// EventInfo is one decoded, merged EIT event.
type EventInfo struct {
	EventID         uint16
	StartTime       bcdtime.DateTime
	HasStartTime    bool
	Duration        uint32 // seconds
	RunningStatus   byte
	FreeCAMode      bool
	Type            byte
	SourceID        string
	UpdatedTime     int64 // linear seconds; 0 = pending sentinel
	Name            string
	ShortText       string
	ExtendedItems   []descriptor.ExtendedEventItem
	ExtendedText    string
	Components      []descriptor.ComponentFields
	AudioComponents []descriptor.AudioComponentFields
	ContentNibbles  []descriptor.ContentNibble
	EventGroups     []descriptor.EventGroupEntry
	CommonEvent     *CommonEventRef
}

// EndLinearSeconds returns the event's end time as linear seconds.
func (e *EventInfo) EndLinearSeconds() int64 {
	return e.StartTime.GetLinearSeconds() + int64(e.Duration)
}

// EventListener receives EPGDatabase lifecycle notifications. Listeners
// run after the triggering mutation has released the database's mutex
// (spec.md §9's guidance for a non-reentrant mutex); they must not block
// for long, and must not assume ordering with unrelated listeners beyond
// their own notifications being delivered in mutation order.
type EventListener interface {
	OnScheduleStatusReset(key ServiceKey)
	OnServiceCompleted(key ServiceKey, extended bool)
}

// MergeFlags controls Merge's per-event conflict resolution.
type MergeFlags int

const (
	DiscardOldEvents MergeFlags = 1 << iota
	DiscardEndedEvents
	MergeBasicExtended
	AsDatabase
)

func classify(tableID byte) (isSchedule, isExtended bool) {
	isSchedule = tableID >= 0x50
	isExtended = isSchedule && table.IsExtendedEIT(tableID)
	return
}
