package gcal

import (
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/eval"
)

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gcal", "token.json")

	token := &oauth2.Token{
		AccessToken:  "at",
		RefreshToken: "rt",
		TokenType:    "Bearer",
		Expiry:       time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	if err := SaveToken(path, token); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}

	loaded, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken() error = %v", err)
	}
	if loaded.AccessToken != "at" || loaded.RefreshToken != "rt" {
		t.Errorf("loaded token = %+v, want original fields", loaded)
	}
}

func TestLoadToken_Missing(t *testing.T) {
	if _, err := LoadToken(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("LoadToken() should fail for a missing file")
	}
}

func TestBuildEvent(t *testing.T) {
	loc := time.UTC

	t.Run("all day", func(t *testing.T) {
		dates := eval.NewDates(
			caldate.Date{Year: 2024, Month: 3, Day: 10},
			caldate.Date{Year: 2024, Month: 3, Day: 12},
		)
		entry := &eval.Entry{Title: "offsite", Desc: []string{"bring laptop"}, Dates: &dates}

		event := buildEvent("uid@planfile", entry, loc)
		if event.Start.Date != "2024-03-10" {
			t.Errorf("Start.Date = %q, want 2024-03-10", event.Start.Date)
		}
		// Exclusive end date
		if event.End.Date != "2024-03-13" {
			t.Errorf("End.Date = %q, want 2024-03-13", event.End.Date)
		}
		if event.Description != "bring laptop" {
			t.Errorf("Description = %q", event.Description)
		}
		if event.ExtendedProperties.Private[uidProperty] != "uid@planfile" {
			t.Error("missing uid extended property")
		}
	})

	t.Run("timed with end-of-day sentinel", func(t *testing.T) {
		dates := eval.NewDatesWithTime(
			caldate.Date{Year: 2024, Month: 3, Day: 10}, caldate.Time{Hour: 19, Minute: 30},
			caldate.Date{Year: 2024, Month: 3, Day: 10}, caldate.Time{Hour: 24},
		)
		entry := &eval.Entry{Title: "party", Dates: &dates}

		event := buildEvent("uid@planfile", entry, loc)
		if event.Start.DateTime != "2024-03-10T19:30:00Z" {
			t.Errorf("Start.DateTime = %q", event.Start.DateTime)
		}
		if event.End.DateTime != "2024-03-11T00:00:00Z" {
			t.Errorf("End.DateTime = %q, want next-day midnight", event.End.DateTime)
		}
	})
}
