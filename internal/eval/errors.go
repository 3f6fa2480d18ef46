// Package eval turns parsed plan file commands into concrete calendar
// entries over a date range. It owns delta arithmetic, formula evaluation,
// the per-command statement machine and the entry filters.
package eval

import (
	"fmt"

	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/planfile"
)

// ErrKind classifies evaluation failures.
type ErrKind int

const (
	// ErrDeltaInvalidStep is a delta step that lands on a nonexistent date,
	// like adding a year to February 29.
	ErrDeltaInvalidStep ErrKind = iota
	// ErrDeltaNoTime is an hour or minute step applied to a date that
	// carries no time.
	ErrDeltaNoTime
	// ErrRepeatDidNotMoveForwards is a repeat delta whose application does
	// not advance the date.
	ErrRepeatDidNotMoveForwards
	// ErrRemindDidNotMoveBackwards is a remind delta whose application does
	// not precede the occurrence.
	ErrRemindDidNotMoveBackwards
	// ErrMoveWithoutSource is a MOVE whose source date has no entry.
	ErrMoveWithoutSource
	// ErrTimedMoveWithoutTime is a MOVE to a time of an entry that has no
	// times.
	ErrTimedMoveWithoutTime
	// ErrDivByZero is a division by zero inside a formula.
	ErrDivByZero
	// ErrModByZero is a modulo by zero inside a formula.
	ErrModByZero
	// ErrEaster is an Easter calculation outside the supported years.
	ErrEaster
)

func (k ErrKind) String() string {
	switch k {
	case ErrDeltaInvalidStep:
		return "delta step resulted in invalid date"
	case ErrDeltaNoTime:
		return "time-based delta step applied to date without time"
	case ErrRepeatDidNotMoveForwards:
		return "repeat delta did not move forwards"
	case ErrRemindDidNotMoveBackwards:
		return "remind delta did not move backwards"
	case ErrMoveWithoutSource:
		return "tried to move nonexisting entry"
	case ErrTimedMoveWithoutTime:
		return "tried to move un-timed entry to new time"
	case ErrDivByZero:
		return "tried to divide by zero"
	case ErrModByZero:
		return "tried to modulo by zero"
	case ErrEaster:
		return "easter calculation failed"
	default:
		return "evaluation failed"
	}
}

// Error is an evaluation failure pointing back at the offending part of the
// source. Which of the detail fields are set depends on Kind.
type Error struct {
	Kind ErrKind
	File int // file index within the collection, -1 if unknown
	Span planfile.Span

	// ErrDeltaInvalidStep, ErrDeltaNoTime: the date the delta started from
	// and the intermediate date the failing step was applied to.
	Start     caldate.Date
	StartTime *caldate.Time
	Prev      caldate.Date
	PrevTime  *caldate.Time

	// ErrRepeatDidNotMoveForwards, ErrRemindDidNotMoveBackwards.
	From caldate.Date
	To   caldate.Date

	// ErrDivByZero, ErrModByZero, ErrEaster: the day being evaluated.
	Date caldate.Date

	// ErrEaster: the calendar library's reason.
	Msg string
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrDeltaInvalidStep, ErrDeltaNoTime:
		return fmt.Sprintf("%s (starting at %s, applied to %s)", e.Kind, e.Start, e.Prev)
	case ErrRepeatDidNotMoveForwards, ErrRemindDidNotMoveBackwards:
		return fmt.Sprintf("%s (%s to %s)", e.Kind, e.From, e.To)
	case ErrDivByZero, ErrModByZero:
		return fmt.Sprintf("%s (at %s)", e.Kind, e.Date)
	case ErrEaster:
		return fmt.Sprintf("%s (at %s: %s)", e.Kind, e.Date, e.Msg)
	default:
		return e.Kind.String()
	}
}
