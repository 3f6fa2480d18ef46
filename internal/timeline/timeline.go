// Package timeline arranges evaluated entries into the lines of the
// terminal timeline.
//
// Layout runs in two passes. The day pass buckets every entry into the days
// of the visible range, adds reminders for upcoming, ongoing and overdue
// tasks and orders each day. The line pass flattens the days into display
// lines, assigns 1-based display numbers and allocates the span guide
// columns that bracket multi-day entries. Printer turns the lines into
// (optionally colored) terminal text.
package timeline

import (
	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/eval"
)

// Layout arranges entries across the days of r and flattens them into
// numbered display lines. Entries are addressed by their index into the
// given slice; today and now place the current-time marker.
func Layout(entries []*eval.Entry, r eval.DateRange, today caldate.Date, now caldate.Time) *LineLayout {
	days := NewDayLayout(r, today, now)
	days.Layout(entries)

	lines := NewLineLayout()
	lines.Render(entries, days)
	return lines
}
