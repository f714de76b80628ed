package epgfs

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/isdb-go/epgd/internal/epg"
)

// RenderEvent formats e as a human-readable text dump: name, time range,
// duration, short/extended text, and component/content summaries. This is
// the content served when an event file is read. networkName is the
// dvbdb-resolved label for the event's network_id, or "" to omit the line.
func RenderEvent(e epg.EventInfo, networkName string) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "Name: %s\n", e.Name)
	if networkName != "" {
		fmt.Fprintf(&b, "Network: %s\n", networkName)
	}
	start := time.Unix(e.StartTime.GetLinearSeconds(), 0).UTC()
	end := time.Unix(e.EndLinearSeconds(), 0).UTC()
	fmt.Fprintf(&b, "Start: %s\n", start.Format(time.RFC3339))
	fmt.Fprintf(&b, "End: %s\n", end.Format(time.RFC3339))
	fmt.Fprintf(&b, "Duration: %s\n", end.Sub(start))
	fmt.Fprintf(&b, "RunningStatus: %d\n", e.RunningStatus)
	fmt.Fprintf(&b, "FreeCAMode: %t\n", e.FreeCAMode)
	fmt.Fprintf(&b, "Source: %s\n", e.SourceID)
	fmt.Fprintf(&b, "Updated: %s\n", humanize.Time(time.Unix(e.UpdatedTime, 0).UTC()))
	b.WriteString(eventTypeLabel(e.Type))
	b.WriteString("\n")

	if e.ShortText != "" {
		fmt.Fprintf(&b, "\n%s\n", e.ShortText)
	}
	if e.ExtendedText != "" {
		fmt.Fprintf(&b, "\n%s\n", e.ExtendedText)
	}

	if len(e.ContentNibbles) > 0 {
		b.WriteString("\nGenre:\n")
		for _, c := range e.ContentNibbles {
			fmt.Fprintf(&b, "  %02x/%02x\n", c.ContentNibbleLevel1, c.ContentNibbleLevel2)
		}
	}
	if len(e.Components) > 0 {
		b.WriteString("\nVideo components:\n")
		for _, c := range e.Components {
			fmt.Fprintf(&b, "  %+v\n", c)
		}
	}
	if len(e.AudioComponents) > 0 {
		b.WriteString("\nAudio components:\n")
		for _, c := range e.AudioComponents {
			fmt.Fprintf(&b, "  %+v\n", c)
		}
	}

	return []byte(b.String())
}

func eventTypeLabel(t byte) string {
	var flags []string
	if t&epg.TypeBasic != 0 {
		flags = append(flags, "basic")
	}
	if t&epg.TypeExtended != 0 {
		flags = append(flags, "extended")
	}
	if t&epg.TypePresent != 0 {
		flags = append(flags, "present")
	}
	if t&epg.TypeFollowing != 0 {
		flags = append(flags, "following")
	}
	if t&epg.TypeDatabase != 0 {
		flags = append(flags, "database")
	}
	if len(flags) == 0 {
		return "Type: (none)"
	}
	return "Type: " + strings.Join(flags, "+")
}
