package eval

import (
	"fmt"

	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/planfile"
)

// ResolveDatum turns a command line datum into a concrete date.
func ResolveDatum(d planfile.Datum, today caldate.Date) caldate.Date {
	if d.Today {
		return today
	}
	return d.Date
}

// ResolveDateArg resolves a command line date argument against today.
func ResolveDateArg(arg planfile.DateArg, today caldate.Date) (caldate.Date, error) {
	date := ResolveDatum(arg.Datum, today)
	if arg.Delta != nil {
		applied, err := newDelta(arg.Delta).ApplyDate(date)
		if err != nil {
			return caldate.Date{}, err
		}
		date = applied
	}
	return date, nil
}

// ResolveRangeArg resolves a command line range argument against today. A
// missing end part keeps the range at the resolved start day; a missing end
// datum anchors the end delta at the resolved start.
func ResolveRangeArg(arg planfile.RangeArg, today caldate.Date) (DateRange, error) {
	start := ResolveDatum(arg.Start, today)
	if arg.StartDelta != nil {
		applied, err := newDelta(arg.StartDelta).ApplyDate(start)
		if err != nil {
			return DateRange{}, err
		}
		start = applied
	}

	end := start
	if arg.End != nil {
		end = ResolveDatum(*arg.End, today)
	}
	if arg.EndDelta != nil {
		applied, err := newDelta(arg.EndDelta).ApplyDate(end)
		if err != nil {
			return DateRange{}, err
		}
		end = applied
	}

	r, ok := NewDateRange(start, end)
	if !ok {
		return DateRange{}, fmt.Errorf("range starts %s, after it ends %s", start, end)
	}
	return r, nil
}
