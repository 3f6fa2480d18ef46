package eval

import (
	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/planfile"
)

// StepKind enumerates delta step kinds. These mirror the file model's steps
// plus StepTime, which spec compilation uses to fold a fixed end time into
// the end delta.
type StepKind int

const (
	StepYear StepKind = iota
	StepMonth
	StepMonthReverse
	StepDay
	StepWeek
	StepHour
	StepMinute
	StepWeekday
	// StepTime moves to the next point the given wall clock time occurs,
	// today if it still lies ahead, otherwise tomorrow.
	StepTime
)

// Step is a single delta step ready for evaluation.
type Step struct {
	Kind    StepKind
	Amount  int
	Weekday caldate.Weekday
	Time    caldate.Time
	Span    planfile.Span
}

// Delta is a compiled sequence of steps applied left to right.
type Delta struct {
	Steps []Step
}

// newDelta compiles a file model delta. A nil delta compiles to the empty
// delta, which applies as the identity.
func newDelta(d *planfile.Delta) Delta {
	if d == nil {
		return Delta{}
	}
	steps := make([]Step, 0, len(d.Steps))
	for _, s := range d.Steps {
		steps = append(steps, Step{
			Kind:    StepKind(s.Kind),
			Amount:  s.Amount,
			Weekday: s.Weekday,
			Span:    s.Span,
		})
	}
	return Delta{Steps: steps}
}

// withTime returns a copy of the delta with a trailing StepTime.
func (d Delta) withTime(t caldate.Time, span planfile.Span) Delta {
	steps := make([]Step, 0, len(d.Steps)+1)
	steps = append(steps, d.Steps...)
	steps = append(steps, Step{Kind: StepTime, Time: t, Span: span})
	return Delta{Steps: steps}
}

// withDayStep returns a copy of the delta with a fixed day step prepended.
func (d Delta) withDayStep(days int, span planfile.Span) Delta {
	steps := make([]Step, 0, len(d.Steps)+1)
	steps = append(steps, Step{Kind: StepDay, Amount: days, Span: span})
	steps = append(steps, d.Steps...)
	return Delta{Steps: steps}
}

// stepBounds returns the lowest and highest day offset one step can move a
// date by, regardless of where it is applied.
func stepBounds(s Step) (lower, upper int) {
	n := s.Amount
	switch s.Kind {
	case StepYear:
		if n < 0 {
			return 366 * n, 365 * n
		}
		return 365 * n, 366 * n
	case StepMonth, StepMonthReverse:
		if n < 0 {
			return 31 * n, 28 * n
		}
		return 28 * n, 31 * n
	case StepDay:
		return n, n
	case StepWeek:
		return 7 * n, 7 * n
	case StepHour:
		return carryBounds(n, 24)
	case StepMinute:
		return carryBounds(n, 24*60)
	case StepWeekday:
		switch {
		case n > 0:
			return 7*(n-1) + 1, 7 * n
		case n < 0:
			return 7 * n, 7*(n+1) - 1
		default:
			return 0, 0
		}
	case StepTime:
		return 0, 1
	default:
		return 0, 0
	}
}

// carryBounds bounds how many whole days n units make, at per units per day.
func carryBounds(n, per int) (lower, upper int) {
	full := n / per
	rem := n % per
	lower, upper = full, full
	if rem < 0 {
		lower--
	}
	if rem > 0 {
		upper++
	}
	return lower, upper
}

// Lower is the lowest day offset applying the delta can produce.
func (d Delta) Lower() int {
	sum := 0
	for _, s := range d.Steps {
		lower, _ := stepBounds(s)
		sum += lower
	}
	return sum
}

// Upper is the highest day offset applying the delta can produce.
func (d Delta) Upper() int {
	sum := 0
	for _, s := range d.Steps {
		_, upper := stepBounds(s)
		sum += upper
	}
	return sum
}

// ApplyDate applies the delta to a date without a time. Hour and minute
// steps fail, a StepTime sets the time without it surviving into the result.
func (d Delta) ApplyDate(start caldate.Date) (caldate.Date, *Error) {
	e := deltaEval{start: start, curr: start}
	for _, s := range d.Steps {
		if err := e.step(s); err != nil {
			return caldate.Date{}, err
		}
	}
	return e.curr, nil
}

// ApplyDateTime applies the delta to a date with a time.
func (d Delta) ApplyDateTime(start caldate.Date, t caldate.Time) (caldate.Date, caldate.Time, *Error) {
	e := deltaEval{start: start, startTime: &t, curr: start}
	currTime := t
	e.currTime = &currTime
	for _, s := range d.Steps {
		if err := e.step(s); err != nil {
			return caldate.Date{}, caldate.Time{}, err
		}
	}
	return e.curr, *e.currTime, nil
}

// deltaEval tracks the date (and time, if any) while steps are applied. The
// start values only feed error reports.
type deltaEval struct {
	start     caldate.Date
	startTime *caldate.Time
	curr      caldate.Date
	currTime  *caldate.Time
}

func (e *deltaEval) invalidStep(span planfile.Span) *Error {
	return &Error{
		Kind:      ErrDeltaInvalidStep,
		File:      -1,
		Span:      span,
		Start:     e.start,
		StartTime: e.startTime,
		Prev:      e.curr,
		PrevTime:  e.currTime,
	}
}

func (e *deltaEval) step(s Step) *Error {
	switch s.Kind {
	case StepYear:
		date, ok := caldate.NewDate(e.curr.Year+s.Amount, e.curr.Month, e.curr.Day)
		if !ok {
			return e.invalidStep(s.Span)
		}
		e.curr = date
	case StepMonth:
		year, month := caldate.AddMonths(e.curr.Year, e.curr.Month, s.Amount)
		date, ok := caldate.NewDate(year, month, e.curr.Day)
		if !ok {
			return e.invalidStep(s.Span)
		}
		e.curr = date
	case StepMonthReverse:
		// Keep the day counted from the end of the month instead of the
		// start, so the last day maps to the last day.
		fromEnd := caldate.MonthLength(e.curr.Year, e.curr.Month) - e.curr.Day
		year, month := caldate.AddMonths(e.curr.Year, e.curr.Month, s.Amount)
		day := caldate.MonthLength(year, month) - fromEnd
		date, ok := caldate.NewDate(year, month, day)
		if !ok {
			return e.invalidStep(s.Span)
		}
		e.curr = date
	case StepDay:
		e.curr = e.curr.AddDays(s.Amount)
	case StepWeek:
		e.curr = e.curr.AddDays(7 * s.Amount)
	case StepHour, StepMinute:
		if e.currTime == nil {
			return &Error{
				Kind:  ErrDeltaNoTime,
				File:  -1,
				Span:  s.Span,
				Start: e.start,
				Prev:  e.curr,
			}
		}
		minutes := s.Amount
		if s.Kind == StepHour {
			minutes *= 60
		}
		days, t := e.currTime.AddMinutes(minutes)
		e.curr = e.curr.AddDays(days)
		*e.currTime = t
	case StepWeekday:
		e.curr = e.curr.AddDays(weekdayOffset(e.curr.Weekday(), s.Weekday, s.Amount))
	case StepTime:
		if e.currTime != nil && s.Time.Before(*e.currTime) {
			e.curr = e.curr.Succ()
		}
		if e.currTime == nil {
			t := s.Time
			e.currTime = &t
		} else {
			*e.currTime = s.Time
		}
	}
	return nil
}

// weekdayOffset is the day offset to the n-th next (n > 0) or previous
// (n < 0) occurrence of target, counting strictly from the current day: on a
// Monday, "+mon" moves a full week ahead.
func weekdayOffset(current, target caldate.Weekday, n int) int {
	switch {
	case n > 0:
		ahead := current.Until(target)
		if ahead == 0 {
			ahead = 7
		}
		return ahead + 7*(n-1)
	case n < 0:
		behind := target.Until(current)
		if behind == 0 {
			behind = 7
		}
		return -behind + 7*(n+1)
	default:
		return 0
	}
}
