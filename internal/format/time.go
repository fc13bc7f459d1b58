package format

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Timestamp layouts seen in the database: SQLite's datetime('now') default
// and RFC3339 strings from the X API and feed parsers.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseTime(ts string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TimeAgo renders a stored timestamp as a relative phrase ("3 minutes ago").
// Nil renders "never"; unparseable strings come back verbatim.
func TimeAgo(ts *string) string {
	if ts == nil {
		return "never"
	}
	t, ok := parseTime(*ts)
	if !ok {
		return *ts
	}
	return humanize.Time(t)
}

// FormatTimestamp renders a stored timestamp for table cells. Nil renders
// "N/A"; unparseable strings come back verbatim.
func FormatTimestamp(ts *string) string {
	if ts == nil {
		return "N/A"
	}
	t, ok := parseTime(*ts)
	if !ok {
		return *ts
	}
	return t.Format("Jan 02, 2006 15:04")
}
