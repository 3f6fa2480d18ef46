package planfile

import (
	"github.com/planfile/planfile/internal/caldate"
)

// DeltaStepKind enumerates the date arithmetic units a delta step can use.
type DeltaStepKind int

const (
	// StepYear moves by years, keeping month and day.
	StepYear DeltaStepKind = iota
	// StepMonth moves by months, keeping the day counted from the start of
	// the month.
	StepMonth
	// StepMonthReverse moves by months, keeping the day counted from the end
	// of the month.
	StepMonthReverse
	// StepDay moves by days.
	StepDay
	// StepWeek moves by seven days.
	StepWeek
	// StepHour moves by hours and requires a time.
	StepHour
	// StepMinute moves by minutes and requires a time.
	StepMinute
	// StepWeekday moves to the n-th next (or previous) occurrence of a
	// weekday, never staying in place.
	StepWeekday
)

// Name returns the unit's source token, without the weekday variants.
func (k DeltaStepKind) Name() string {
	switch k {
	case StepYear:
		return "y"
	case StepMonth:
		return "m"
	case StepMonthReverse:
		return "M"
	case StepDay:
		return "d"
	case StepWeek:
		return "w"
	case StepHour:
		return "h"
	case StepMinute:
		return "min"
	default:
		return "?"
	}
}

// DeltaStep is a single signed step of a delta, e.g. "+2w" or "-mon".
type DeltaStep struct {
	Kind    DeltaStepKind
	Amount  int
	Weekday caldate.Weekday // only for StepWeekday
	Span    Span
}

// Name returns the step's unit token as it appears in source.
func (s DeltaStep) Name() string {
	if s.Kind == StepWeekday {
		return s.Weekday.Name()
	}
	return s.Kind.Name()
}

// Delta is a sequence of steps applied left to right, e.g. "+2w3d".
type Delta struct {
	Steps []DeltaStep
	Span  Span
}

// Repeat describes how a date spec recurs.
type Repeat struct {
	// StartAtDone anchors the repetition at the root of the latest completion
	// instead of the declared start date.
	StartAtDone bool
	Delta       Delta
}
