package epg

import (
	"testing"

	"github.com/isdb-go/epgd/internal/bcdtime"
	"github.com/isdb-go/epgd/internal/descriptor"
	"github.com/isdb-go/epgd/internal/table"
)

func totAt(year, month, day, hour, minute, second int) table.TOT {
	dt := bcdtime.DateTime{Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: second}
	return table.TOT{Time: dt, HasTime: true}
}

// shortEventDescriptors encodes name and text as ARIB strings that first
// designate G0 as Alphanumeric (ESC 0x28 0x4A), so they decode to the
// fullwidth forms of their ASCII characters.
func shortEventDescriptors(name, text string) *descriptor.DescriptorBlock {
	alnum := func(s string) []byte { return append([]byte{0x1B, 0x28, 0x4A}, s...) }
	n, x := alnum(name), alnum(text)
	var body []byte
	body = append(body, 'j', 'p', 'n')
	body = append(body, byte(len(n)))
	body = append(body, n...)
	body = append(body, byte(len(x)))
	body = append(body, x...)
	return descriptor.ParseBlock(buildDescBlock(descriptor.TagShortEvent, body))
}

func buildDescBlock(tag byte, body []byte) []byte {
	return append([]byte{tag, byte(len(body))}, body...)
}

func basicEIT(serviceID, eventID uint16, startMJD uint16, hh, mm, ss byte, durH, durM, durS byte, name string) table.EIT {
	start, _ := bcdtime.MJDBCDTimeToDateTime([]byte{byte(startMJD >> 8), byte(startMJD), bcdByte(hh), bcdByte(mm), bcdByte(ss)})
	duration := bcdtime.BCDTimeToSecond([]byte{bcdByte(durH), bcdByte(durM), bcdByte(durS)})
	return table.EIT{
		TableID:           table.TableIDEITPFActual,
		ServiceID:         serviceID,
		TransportStreamID: 1,
		OriginalNetworkID: 1,
		Events: []table.EITEvent{
			{
				EventID:      eventID,
				StartTime:    start,
				HasStartTime: true,
				Duration:     duration,
				Descriptors:  shortEventDescriptors(name, name+" description"),
			},
		},
	}
}

func bcdByte(v byte) byte { return (v/10)<<4 | (v % 10) }

func TestUpdateSection_PendingBeforeTOTThenMerged(t *testing.T) {
	db := NewDatabase()
	eit := basicEIT(1, 100, 58849, 12, 0, 0, 0, 30, 0, "Program A")
	if err := db.UpdateSection(eit, "tuner1"); err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}
	key := ServiceKey{NetworkID: 1, TransportStreamID: 1, ServiceID: 1}
	if _, ok := db.GetEventInfoByID(key, 100); ok {
		t.Fatal("event should not be visible before TOT arrives")
	}

	db.UpdateTOT(totAt(2020, 1, 1, 12, 0, 0))
	info, ok := db.GetEventInfoByID(key, 100)
	if !ok {
		t.Fatal("event should be merged after TOT arrives")
	}
	if info.Name != "Ｐｒｏｇｒａｍ　Ａ" {
		t.Fatalf("got %+v", info)
	}
}

func TestUpdateSection_OverlapNewerSourceWins(t *testing.T) {
	db := NewDatabase()
	db.UpdateTOT(totAt(2020, 1, 1, 12, 0, 0))
	key := ServiceKey{NetworkID: 1, TransportStreamID: 1, ServiceID: 1}

	first := basicEIT(1, 100, 58849, 12, 0, 0, 0, 30, 0, "First")
	if err := db.UpdateSection(first, "src"); err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}

	// A different event at an overlapping slot from a later moment in
	// broadcast time should displace the first.
	db.UpdateTOT(totAt(2020, 1, 1, 12, 5, 0))
	second := basicEIT(1, 101, 58849, 12, 10, 0, 0, 20, 0, "Second")
	if err := db.UpdateSection(second, "src"); err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}

	list := db.GetEventListSortedByTime(key)
	if len(list) != 1 || list[0].EventID != 101 {
		t.Fatalf("expected overlap to drop event 100, got %+v", list)
	}
}

func TestUpdateSection_ScheduleCompletionNotifiesListener(t *testing.T) {
	db := NewDatabase()
	db.UpdateTOT(totAt(2020, 1, 1, 0, 0, 0))

	var resets, completions int
	db.AddEventListener(testListener{
		onReset:     func(ServiceKey) { resets++ },
		onCompleted: func(ServiceKey, bool) { completions++ },
	})

	eit := table.EIT{
		TableID:                  0x50,
		ServiceID:                1,
		TransportStreamID:        1,
		OriginalNetworkID:        1,
		SegmentLastSectionNumber: 0x07,
		LastTableID:              0x50,
	}
	for sec := byte(0); sec < 8; sec++ {
		eit.SectionNumber = sec
		eit.LastSectionNumber = 0x07
		eit.VersionNumber = 1
		if err := db.UpdateSection(eit, "src"); err != nil {
			t.Fatalf("UpdateSection: %v", err)
		}
	}
	if completions == 0 {
		t.Fatal("expected OnServiceCompleted to fire")
	}
}

func TestMerge_DiscardOldEventsKeepsNewer(t *testing.T) {
	a := NewDatabase()
	b := NewDatabase()
	a.UpdateTOT(totAt(2020, 1, 1, 12, 0, 0))
	b.UpdateTOT(totAt(2020, 1, 1, 12, 10, 0))

	key := ServiceKey{NetworkID: 1, TransportStreamID: 1, ServiceID: 1}
	oldEIT := basicEIT(1, 100, 58849, 12, 0, 0, 0, 30, 0, "Old")
	newEIT := basicEIT(1, 100, 58849, 12, 0, 0, 0, 30, 0, "New")
	if err := a.UpdateSection(oldEIT, "archive"); err != nil {
		t.Fatal(err)
	}
	if err := b.UpdateSection(newEIT, "live"); err != nil {
		t.Fatal(err)
	}

	a.Merge(b, DiscardOldEvents, "live")
	info, ok := a.GetEventInfoByID(key, 100)
	if !ok || info.Name != "Ｎｅｗ" {
		t.Fatalf("expected merge to prefer newer updated_time, got %+v", info)
	}
}

type testListener struct {
	onReset     func(ServiceKey)
	onCompleted func(ServiceKey, bool)
}

func (l testListener) OnScheduleStatusReset(key ServiceKey)       { l.onReset(key) }
func (l testListener) OnServiceCompleted(key ServiceKey, ext bool) { l.onCompleted(key, ext) }
