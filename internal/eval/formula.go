package eval

import (
	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/planfile"
)

// formulaSpec is a formula spec compiled for evaluation. Weekday specs
// compile to a formula too: a weekday equality test with the end weekday
// turned into a day step.
type formulaSpec struct {
	expr       *Expr
	startDelta Delta
	startTime  *caldate.Time
	endDelta   Delta
}

func newFormulaSpec(spec *planfile.FormulaSpec) formulaSpec {
	fs := formulaSpec{
		expr:       compileExpr(spec.Start),
		startDelta: newDelta(spec.StartDelta),
		startTime:  spec.StartTime,
		endDelta:   newDelta(spec.EndDelta),
	}
	if spec.EndTime != nil {
		fs.endDelta = fs.endDelta.withTime(*spec.EndTime, spec.EndTimeSpan)
	}
	return fs
}

func newWeekdayFormula(spec *planfile.WeekdaySpec) formulaSpec {
	fs := formulaSpec{
		expr: &Expr{
			Op:    planfile.OpEq,
			Left:  &Expr{Op: planfile.OpVar, Var: planfile.VarWeekday},
			Right: &Expr{Op: planfile.OpLit, Lit: int64(spec.Start.Number())},
		},
		startTime: spec.StartTime,
		endDelta:  newDelta(spec.EndDelta),
	}
	if spec.End != nil {
		// The end weekday is a fixed number of days ahead of the start, on
		// the same day when both name the same weekday.
		fs.endDelta = fs.endDelta.withDayStep(spec.Start.Until(*spec.End), spec.EndSpan)
	}
	if spec.EndTime != nil {
		fs.endDelta = fs.endDelta.withTime(*spec.EndTime, spec.EndTimeSpan)
	}
	return fs
}

func (s *commandState) evalFormulaSpec(fs formulaSpec) *Error {
	r, ok := fs.rangeIn(s)
	if !ok {
		return nil
	}
	for day := r.From(); !day.After(r.Until()); day = day.Succ() {
		v, err := fs.expr.Eval(day)
		if err != nil {
			return err
		}
		if v == 0 {
			continue
		}
		dates, err := fs.dates(day)
		if err != nil {
			return err
		}
		entry, err := s.entryWithRemind(s.kind, &dates)
		if err != nil {
			return err
		}
		s.add(entry)
	}
	return nil
}

// rangeIn narrows the scan range for the spec. The false return means
// nothing is in range.
func (fs *formulaSpec) rangeIn(s *commandState) (DateRange, bool) {
	r := s.rangeWithRemind().ExpandBy(fs.endDelta).MoveBy(fs.startDelta)

	if s.kind == EntryTask {
		var ok bool
		if lastDone := s.lastDoneRoot(); lastDone != nil {
			r, ok = r.WithFrom(lastDone.Succ())
		} else if s.from != nil {
			r, ok = r.WithFrom(*s.from)
		} else {
			// Without FROM there is no telling how far back unfinished
			// occurrences reach, so the scan looks back one year and no
			// further.
			r, ok = r.WithFrom(r.From().AddDays(-365))
		}
		if !ok {
			return DateRange{}, false
		}
	}

	return s.limitFromUntil(r)
}

func (fs *formulaSpec) dates(start caldate.Date) (Dates, *Error) {
	root, err := fs.startDelta.ApplyDate(start)
	if err != nil {
		return Dates{}, err
	}
	if fs.startTime != nil {
		other, otherTime, err := fs.endDelta.ApplyDateTime(root, *fs.startTime)
		if err != nil {
			return Dates{}, err
		}
		return NewDatesWithTime(root, *fs.startTime, other, otherTime), nil
	}
	other, err := fs.endDelta.ApplyDate(root)
	if err != nil {
		return Dates{}, err
	}
	return NewDates(root, other), nil
}
