package planfile

import (
	"testing"

	"github.com/planfile/planfile/internal/caldate"
)

func TestParseDateArg(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		today     bool
		date      caldate.Date
		withDelta bool
	}{
		{"today", "today", true, caldate.Date{}, false},
		{"today with delta", "today+2d", true, caldate.Date{}, true},
		{"explicit", "2024-03-10", false, caldate.Date{Year: 2024, Month: 3, Day: 10}, false},
		{"explicit with delta", "2024-03-10 -w", false, caldate.Date{Year: 2024, Month: 3, Day: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arg, err := ParseDateArg(tt.src)
			if err != nil {
				t.Fatalf("ParseDateArg: %v", err)
			}
			if arg.Datum.Today != tt.today {
				t.Errorf("today = %v, want %v", arg.Datum.Today, tt.today)
			}
			if !tt.today && arg.Datum.Date != tt.date {
				t.Errorf("date = %v, want %v", arg.Datum.Date, tt.date)
			}
			if (arg.Delta != nil) != tt.withDelta {
				t.Errorf("delta = %v, want delta: %v", arg.Delta, tt.withDelta)
			}
		})
	}

	if _, err := ParseDateArg("tomorrow"); err == nil {
		t.Errorf("no error for unknown word")
	}
	if _, err := ParseDateArg("2024-03-10 junk"); err == nil {
		t.Errorf("no error for trailing junk")
	}
}

func TestParseRangeArg(t *testing.T) {
	arg, err := ParseRangeArg("today -- 2024-12-31-w")
	if err != nil {
		t.Fatalf("ParseRangeArg: %v", err)
	}
	if !arg.Start.Today {
		t.Errorf("start = %+v", arg.Start)
	}
	if arg.End == nil {
		t.Fatalf("no end")
	}
	if arg.End.Date != (caldate.Date{Year: 2024, Month: 12, Day: 31}) {
		t.Errorf("end date = %v", arg.End.Date)
	}
	if arg.EndDelta == nil || arg.EndDelta.Steps[0].Amount != -1 {
		t.Errorf("end delta = %+v", arg.EndDelta)
	}
}

func TestParseRangeArgWithoutEnd(t *testing.T) {
	single, err := ParseRangeArg("2024-03-10")
	if err != nil {
		t.Fatalf("ParseRangeArg: %v", err)
	}
	if single.End != nil || single.EndDelta != nil {
		t.Errorf("unexpected end: %+v", single)
	}
}

func TestParseRangeArgDeltaOnlyEnd(t *testing.T) {
	arg, err := ParseRangeArg("today -- +2w")
	if err != nil {
		t.Fatalf("ParseRangeArg: %v", err)
	}
	if arg.End != nil {
		t.Errorf("unexpected end datum: %+v", arg.End)
	}
	if arg.EndDelta == nil || arg.EndDelta.Steps[0].Kind != StepWeek || arg.EndDelta.Steps[0].Amount != 2 {
		t.Errorf("end delta = %+v", arg.EndDelta)
	}

	if _, err := ParseRangeArg("today --"); err == nil {
		t.Errorf("no error for bare --")
	}
}

func TestParseIdentArg(t *testing.T) {
	num, err := ParseIdentArg("17")
	if err != nil {
		t.Fatalf("ParseIdentArg: %v", err)
	}
	if !num.IsNumber || num.Number != 17 {
		t.Errorf("got %+v", num)
	}

	date, err := ParseIdentArg("2024-03-10")
	if err != nil {
		t.Fatalf("ParseIdentArg: %v", err)
	}
	if date.IsNumber || date.Date.Datum.Date != (caldate.Date{Year: 2024, Month: 3, Day: 10}) {
		t.Errorf("got %+v", date)
	}

	today, err := ParseIdentArg("today-1d")
	if err != nil {
		t.Fatalf("ParseIdentArg: %v", err)
	}
	if !today.Date.Datum.Today || today.Date.Delta == nil {
		t.Errorf("got %+v", today)
	}

	if _, err := ParseIdentArg("banana"); err == nil {
		t.Errorf("no error")
	}
}
