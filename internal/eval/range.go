package eval

import (
	"fmt"

	"github.com/planfile/planfile/internal/caldate"
)

// DateRange is an inclusive range of days. The zero value is not valid;
// construct via NewDateRange.
type DateRange struct {
	from  caldate.Date
	until caldate.Date
}

// NewDateRange builds a range, failing when from lies after until.
func NewDateRange(from, until caldate.Date) (DateRange, bool) {
	if from.After(until) {
		return DateRange{}, false
	}
	return DateRange{from: from, until: until}, true
}

func (r DateRange) From() caldate.Date  { return r.from }
func (r DateRange) Until() caldate.Date { return r.until }

func (r DateRange) String() string {
	return fmt.Sprintf("%s -- %s", r.from, r.until)
}

// Contains reports whether date lies within the range.
func (r DateRange) Contains(date caldate.Date) bool {
	return !date.Before(r.from) && !date.After(r.until)
}

// Containing extends the range so it includes date.
func (r DateRange) Containing(date caldate.Date) DateRange {
	if date.Before(r.from) {
		r.from = date
	}
	if date.After(r.until) {
		r.until = date
	}
	return r
}

// WithFrom moves the start, failing when the range would be empty.
func (r DateRange) WithFrom(from caldate.Date) (DateRange, bool) {
	return NewDateRange(from, r.until)
}

// WithUntil moves the end, failing when the range would be empty.
func (r DateRange) WithUntil(until caldate.Date) (DateRange, bool) {
	return NewDateRange(r.from, until)
}

// Days returns the number of days in the range, at least 1.
func (r DateRange) Days() int {
	return r.until.RataDie() - r.from.RataDie() + 1
}

// ExpandBy grows the range so that for every day in the original range,
// every date the delta can map it to is also covered. A delta moving
// forwards extends the start backwards, and vice versa.
func (r DateRange) ExpandBy(d Delta) DateRange {
	lower, upper := d.Lower(), d.Upper()
	if shift := min(-upper, 0); shift != 0 {
		r.from = r.from.AddDays(shift)
	}
	if shift := max(-lower, 0); shift != 0 {
		r.until = r.until.AddDays(shift)
	}
	return r
}

// MoveBy shifts the range against the delta, so iterating the shifted range
// and applying the delta covers the original range.
func (r DateRange) MoveBy(d Delta) DateRange {
	lower, upper := d.Lower(), d.Upper()
	r.from = r.from.AddDays(-upper)
	r.until = r.until.AddDays(-lower)
	return r
}
