package ics

import (
	"github.com/teambition/rrule-go"

	"github.com/planfile/planfile/internal/planfile"
)

var rruleWeekdays = [7]rrule.Weekday{
	rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU,
}

// RRuleFor maps a command's schedule onto a single RRULE when that mapping
// is exact: one weekday spec (weekly on that weekday) or one dated spec
// repeating by a pure day or week interval. Formulas, bounds, moves,
// exceptions, delta starts and completed tasks all return false; their
// occurrences export as discrete events instead.
func RRuleFor(cmd planfile.Command) (string, bool) {
	var stmts []planfile.Statement
	switch c := cmd.(type) {
	case *planfile.Task:
		if len(c.Dones) > 0 {
			return "", false
		}
		stmts = c.Statements
	case *planfile.Note:
		stmts = c.Statements
	default:
		return "", false
	}

	if len(stmts) != 1 {
		return "", false
	}
	ds, ok := stmts[0].(*planfile.DateStmt)
	if !ok {
		return "", false
	}

	var opt rrule.ROption
	switch spec := ds.Spec.(type) {
	case *planfile.WeekdaySpec:
		if spec.End != nil || spec.EndDelta != nil {
			return "", false
		}
		opt = rrule.ROption{
			Freq:      rrule.WEEKLY,
			Byweekday: []rrule.Weekday{rruleWeekdays[int(spec.Start)]},
		}

	case *planfile.DateSpec:
		if spec.Repeat == nil || spec.Repeat.StartAtDone {
			return "", false
		}
		if spec.StartDelta != nil || spec.End != nil || spec.EndDelta != nil {
			return "", false
		}
		steps := spec.Repeat.Delta.Steps
		if len(steps) != 1 || steps[0].Amount <= 0 {
			return "", false
		}
		switch steps[0].Kind {
		case planfile.StepDay:
			opt = rrule.ROption{Freq: rrule.DAILY}
		case planfile.StepWeek:
			opt = rrule.ROption{Freq: rrule.WEEKLY}
		default:
			return "", false
		}
		if steps[0].Amount > 1 {
			opt.Interval = steps[0].Amount
		}

	default:
		return "", false
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return "", false
	}
	return r.String(), true
}
