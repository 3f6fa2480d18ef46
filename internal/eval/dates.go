package eval

import (
	"strings"

	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/planfile"
)

// Dates is the resolved calendar placement of an entry: a root date and an
// other date, optionally with a time on each side. The root is the date the
// declaration anchors at; the other marks the far end of the covered span.
// Either side may come first.
type Dates struct {
	root      caldate.Date
	other     caldate.Date
	hasTime   bool
	rootTime  caldate.Time
	otherTime caldate.Time
}

func NewDates(root, other caldate.Date) Dates {
	return Dates{root: root, other: other}
}

func NewDatesWithTime(root caldate.Date, rootTime caldate.Time, other caldate.Date, otherTime caldate.Time) Dates {
	return Dates{root: root, other: other, hasTime: true, rootTime: rootTime, otherTime: otherTime}
}

func (d Dates) Root() caldate.Date  { return d.root }
func (d Dates) Other() caldate.Date { return d.other }
func (d Dates) HasTime() bool       { return d.hasTime }

func (d Dates) RootTime() (caldate.Time, bool)  { return d.rootTime, d.hasTime }
func (d Dates) OtherTime() (caldate.Time, bool) { return d.otherTime, d.hasTime }

// Point reports whether both sides name the same moment.
func (d Dates) Point() bool {
	return d.root == d.other && (!d.hasTime || d.rootTime == d.otherTime)
}

// Sorted returns the dates with the earlier side first. Equal dates are
// ordered by time.
func (d Dates) Sorted() Dates {
	swap := d.other.Before(d.root)
	if d.root == d.other && d.hasTime {
		swap = d.otherTime.Before(d.rootTime)
	}
	if swap {
		d.root, d.other = d.other, d.root
		d.rootTime, d.otherTime = d.otherTime, d.rootTime
	}
	return d
}

// Start returns the earlier of the two dates.
func (d Dates) Start() caldate.Date { return d.Sorted().root }

// End returns the later of the two dates.
func (d Dates) End() caldate.Date { return d.Sorted().other }

func (d Dates) StartTime() (caldate.Time, bool) { return d.Sorted().rootTime, d.hasTime }
func (d Dates) EndTime() (caldate.Time, bool)   { return d.Sorted().otherTime, d.hasTime }

// MoveBy shifts both sides by whole days and, when the dates carry times,
// by minutes. Minute overflow carries into the day.
func (d Dates) MoveBy(days, minutes int) Dates {
	d.root, d.rootTime = moveSide(d.root, d.rootTime, d.hasTime, days, minutes)
	d.other, d.otherTime = moveSide(d.other, d.otherTime, d.hasTime, days, minutes)
	return d
}

func moveSide(date caldate.Date, t caldate.Time, hasTime bool, days, minutes int) (caldate.Date, caldate.Time) {
	if hasTime && minutes != 0 {
		carry, shifted := t.AddMinutes(minutes)
		return date.AddDays(days + carry), shifted
	}
	return date.AddDays(days), t
}

func (d Dates) String() string {
	var b strings.Builder
	b.WriteString(d.root.String())
	if d.hasTime {
		b.WriteByte(' ')
		b.WriteString(d.rootTime.String())
	}
	if !d.Point() {
		b.WriteString(" -- ")
		b.WriteString(d.other.String())
		if d.hasTime {
			b.WriteByte(' ')
			b.WriteString(d.otherTime.String())
		}
	}
	return b.String()
}

// datesFromDoneDate resolves the shorthand forms a completion date allows.
// A missing other side copies the root, and a missing other time copies the
// root time.
func datesFromDoneDate(dd *planfile.DoneDate) Dates {
	other := dd.Root
	if dd.Other != nil {
		other = *dd.Other
	}
	if dd.RootTime == nil {
		return NewDates(dd.Root, other)
	}
	otherTime := *dd.RootTime
	if dd.OtherTime != nil {
		otherTime = *dd.OtherTime
	}
	return NewDatesWithTime(dd.Root, *dd.RootTime, other, otherTime)
}
