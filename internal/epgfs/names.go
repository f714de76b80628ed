package epgfs

import (
	"fmt"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/isdb-go/epgd/internal/epg"
)

// ServiceDirName returns the directory name for a service:
// "<network_id>-<transport_stream_id>-<service_id>".
func ServiceDirName(key epg.ServiceKey) string {
	return fmt.Sprintf("%d-%d-%d", key.NetworkID, key.TransportStreamID, key.ServiceID)
}

// EventFileName returns the file name for one event: its start time
// formatted as "YYYYMMDD-HHMM" followed by the event_id, so entries sort
// chronologically in a plain directory listing.
func EventFileName(e epg.EventInfo) string {
	t := time.Unix(e.StartTime.GetLinearSeconds(), 0).UTC()
	stamp := strftime.Format("%Y%m%d-%H%M", t)
	title := safeFSName(e.Name)
	if title == "" {
		return fmt.Sprintf("%s-%05d", stamp, e.EventID)
	}
	return fmt.Sprintf("%s-%05d-%s", stamp, e.EventID, title)
}

// safeFSName strips path separators and NUL bytes so a broadcast event
// title can never escape its directory entry.
func safeFSName(name string) string {
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, "\x00", "")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.TrimSpace(name)
	return name
}
