// Package ics renders evaluated entries as an iCalendar feed. Schedules
// that map exactly onto an RRULE export as one recurring VEVENT; everything
// else exports its already-evaluated occurrences as discrete VEVENTs.
package ics

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/eval"
	"github.com/planfile/planfile/internal/planfile"
)

const prodID = "-//planfile//planfile//EN"

// Export renders the entries as a VCALENDAR. Canceled tasks and undated
// entries are skipped; fs resolves each entry's source for UID derivation
// and RRULE mapping.
func Export(fs *planfile.Files, entries []*eval.Entry, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)

	recurring := map[planfile.Source]bool{}

	for _, entry := range entries {
		if entry.Kind == eval.EntryTaskCanceled || entry.Dates == nil {
			continue
		}

		if rule, ok := RRuleFor(fs.Command(entry.Source)); ok {
			// One VEVENT with an RRULE covers every occurrence of this
			// command; later entries of the same source are folded in.
			if recurring[entry.Source] {
				continue
			}
			recurring[entry.Source] = true

			event := newEvent(cal, fs, entry, now)
			event.AddRrule(rule)
			continue
		}

		newEvent(cal, fs, entry, now)
	}

	return cal.Serialize()
}

func newEvent(cal *ical.Calendar, fs *planfile.Files, entry *eval.Entry, now time.Time) *ical.VEvent {
	uid := EntryUID(fs.Path(entry.Source.File), entry.Title, entry.Dates.Root())

	event := cal.AddEvent(uid)
	event.SetDtStampTime(now.UTC())
	event.SetSummary(entry.Title)
	if len(entry.Desc) > 0 {
		event.SetDescription(strings.Join(entry.Desc, "\n"))
	}

	start, end := entry.Dates.Start(), entry.Dates.End()
	if startTime, ok := entry.Dates.StartTime(); ok {
		endTime, _ := entry.Dates.EndTime()
		event.SetStartAt(dateTime(start, startTime))
		event.SetEndAt(dateTime(end, endTime))
	} else {
		// DTEND is exclusive for all-day events.
		event.SetAllDayStartAt(midnight(start))
		event.SetAllDayEndAt(midnight(end.Succ()))
	}

	return event
}

// EntryUID derives the stable VEVENT UID: same file, title and root date
// always yield the same UID, so re-exports update rather than duplicate.
func EntryUID(path, title string, root caldate.Date) string {
	seed := path + "\x00" + title + "\x00" + root.String()
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String() + "@planfile"
}

// dateTime converts a date and clock time, normalizing the 24:00 end-of-day
// sentinel to 00:00 of the next day.
func dateTime(d caldate.Date, t caldate.Time) time.Time {
	if t.Hour == 24 {
		d, t = d.Succ(), caldate.Time{}
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day, t.Hour, t.Minute, 0, 0, time.UTC)
}

func midnight(d caldate.Date) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}
