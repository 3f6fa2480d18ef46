package gcal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"

	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/eval"
	"github.com/planfile/planfile/internal/ics"
	"github.com/planfile/planfile/internal/planfile"
)

// uidProperty is the private extended property that marks events as managed
// by planfile and keys them for upserts.
const uidProperty = "planfile_uid"

// Client wraps the Calendar API for a single named calendar.
type Client struct {
	service      *calendar.Service
	calendarName string
}

// NewClient creates a push client for the named calendar.
func NewClient(ctx context.Context, oauth *OAuthClient, token *oauth2.Token, calendarName string) (*Client, error) {
	service, err := oauth.Service(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &Client{service: service, calendarName: calendarName}, nil
}

// ensureCalendar finds the named calendar, creating it on first push.
func (c *Client) ensureCalendar(ctx context.Context) (string, error) {
	list, err := c.service.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to list calendars: %w", err)
	}
	for _, cal := range list.Items {
		if cal.Summary == c.calendarName {
			return cal.Id, nil
		}
	}

	created, err := c.service.Calendars.Insert(&calendar.Calendar{
		Summary: c.calendarName,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create calendar %s: %w", c.calendarName, err)
	}
	return created.Id, nil
}

// PushResult summarizes one push.
type PushResult struct {
	Created int
	Updated int
	Deleted int
}

// Push upserts the entries into the calendar, keyed by their stable UID in
// extended properties, and deletes managed events whose UID vanished from
// the pushed window.
func (c *Client) Push(ctx context.Context, fs *planfile.Files, entries []*eval.Entry, r eval.DateRange) (*PushResult, error) {
	calID, err := c.ensureCalendar(ctx)
	if err != nil {
		return nil, err
	}

	loc := fs.Timezone()

	desired := map[string]*calendar.Event{}
	for _, entry := range entries {
		if entry.Kind == eval.EntryTaskCanceled || entry.Dates == nil {
			continue
		}
		uid := ics.EntryUID(fs.Path(entry.Source.File), entry.Title, entry.Dates.Root())
		if _, ok := desired[uid]; ok {
			continue
		}
		desired[uid] = buildEvent(uid, entry, loc)
	}

	existing, err := c.managedEvents(ctx, calID, r, loc)
	if err != nil {
		return nil, err
	}

	result := &PushResult{}

	for uid, want := range desired {
		if have, ok := existing[uid]; ok {
			want.Id = have.Id
			if _, err := c.service.Events.Update(calID, have.Id, want).Context(ctx).Do(); err != nil {
				return result, fmt.Errorf("failed to update event %s: %w", uid, err)
			}
			result.Updated++
		} else {
			if _, err := c.service.Events.Insert(calID, want).Context(ctx).Do(); err != nil {
				return result, fmt.Errorf("failed to insert event %s: %w", uid, err)
			}
			result.Created++
		}
	}

	for uid, have := range existing {
		if _, ok := desired[uid]; ok {
			continue
		}
		if err := c.service.Events.Delete(calID, have.Id).Context(ctx).Do(); err != nil {
			return result, fmt.Errorf("failed to delete event %s: %w", uid, err)
		}
		result.Deleted++
	}

	return result, nil
}

// managedEvents lists the planfile-managed events inside the window.
func (c *Client) managedEvents(ctx context.Context, calID string, r eval.DateRange, loc *time.Location) (map[string]*calendar.Event, error) {
	from := midnight(r.From(), loc)
	until := midnight(r.Until().Succ(), loc)

	managed := map[string]*calendar.Event{}
	pageToken := ""
	for {
		call := c.service.Events.List(calID).
			Context(ctx).
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(until.Format(time.RFC3339)).
			SingleEvents(false).
			MaxResults(250)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		events, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}

		for _, item := range events.Items {
			if item.ExtendedProperties == nil {
				continue
			}
			uid := item.ExtendedProperties.Private[uidProperty]
			if uid == "" {
				continue
			}
			managed[uid] = item
		}

		pageToken = events.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return managed, nil
}

func buildEvent(uid string, entry *eval.Entry, loc *time.Location) *calendar.Event {
	event := &calendar.Event{
		Summary: entry.Title,
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{uidProperty: uid},
		},
	}
	if len(entry.Desc) > 0 {
		event.Description = strings.Join(entry.Desc, "\n")
	}

	start, end := entry.Dates.Start(), entry.Dates.End()
	if startTime, ok := entry.Dates.StartTime(); ok {
		endTime, _ := entry.Dates.EndTime()
		event.Start = &calendar.EventDateTime{
			DateTime: clockTime(start, startTime, loc).Format(time.RFC3339),
		}
		event.End = &calendar.EventDateTime{
			DateTime: clockTime(end, endTime, loc).Format(time.RFC3339),
		}
	} else {
		// All-day events use exclusive end dates.
		event.Start = &calendar.EventDateTime{Date: start.String()}
		event.End = &calendar.EventDateTime{Date: end.Succ().String()}
	}

	return event
}

// clockTime converts a date and clock time, normalizing the 24:00
// end-of-day sentinel to 00:00 of the next day.
func clockTime(d caldate.Date, t caldate.Time, loc *time.Location) time.Time {
	if t.Hour == 24 {
		d, t = d.Succ(), caldate.Time{}
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day, t.Hour, t.Minute, 0, 0, loc)
}

func midnight(d caldate.Date, loc *time.Location) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, loc)
}
