package eval

import (
	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/planfile"
)

// dateSpec is a fixed date spec compiled for evaluation: a fixed end time
// becomes a trailing time step of the end delta, and the repeat is pulled
// out of its statement form.
type dateSpec struct {
	start       caldate.Date
	startDelta  Delta
	startTime   *caldate.Time
	end         *caldate.Date
	endDelta    Delta
	repeat      *Delta
	repeatSpan  planfile.Span
	startAtDone bool
}

func newDateSpec(spec *planfile.DateSpec) dateSpec {
	ds := dateSpec{
		start:      spec.Start,
		startDelta: newDelta(spec.StartDelta),
		startTime:  spec.StartTime,
		end:        spec.End,
		endDelta:   newDelta(spec.EndDelta),
	}
	if spec.EndTime != nil {
		ds.endDelta = ds.endDelta.withTime(*spec.EndTime, spec.EndTimeSpan)
	}
	if spec.Repeat != nil {
		repeat := newDelta(&spec.Repeat.Delta)
		ds.repeat = &repeat
		ds.repeatSpan = spec.Repeat.Delta.Span
		ds.startAtDone = spec.Repeat.StartAtDone
	}
	return ds
}

func (s *commandState) evalDateSpec(ds dateSpec) *Error {
	if ds.repeat == nil {
		// A single occurrence is emitted unconditionally; the aggregator
		// decides whether it is shown.
		return s.addOccurrence(&ds, ds.start)
	}

	start, r, ok := ds.startAndRange(s)
	if !ok {
		return nil
	}
	for start.Before(r.From()) {
		next, err := ds.step(start)
		if err != nil {
			return err
		}
		start = next
	}
	for !start.After(r.Until()) {
		if err := s.addOccurrence(&ds, start); err != nil {
			return err
		}
		next, err := ds.step(start)
		if err != nil {
			return err
		}
		start = next
	}
	return nil
}

func (s *commandState) addOccurrence(ds *dateSpec, start caldate.Date) *Error {
	dates, err := ds.dates(start)
	if err != nil {
		return err
	}
	entry, err := s.entryWithRemind(s.kind, &dates)
	if err != nil {
		return err
	}
	s.add(entry)
	return nil
}

// startAndRange picks the iteration start and the narrowed range for a
// repeating spec. Tasks resume after their last completion; notes always run
// from the declared start. The false return means nothing is in range.
func (ds *dateSpec) startAndRange(s *commandState) (caldate.Date, DateRange, bool) {
	r := s.rangeWithRemind().ExpandBy(ds.endDelta).MoveBy(ds.startDelta)
	start := ds.start

	if s.kind == EntryTask {
		lastDone := s.lastDoneRoot()
		if lastDone != nil && ds.startAtDone {
			start = *lastDone
		}
		rangeFrom := ds.start
		if lastDone != nil {
			rangeFrom = lastDone.Succ()
		}
		var ok bool
		if r, ok = r.WithFrom(rangeFrom); !ok {
			return start, DateRange{}, false
		}
	}

	r, ok := s.limitFromUntil(r)
	return start, r, ok
}

// step advances the repeat, enforcing forward progress.
func (ds *dateSpec) step(from caldate.Date) (caldate.Date, *Error) {
	to, err := ds.repeat.ApplyDate(from)
	if err != nil {
		return caldate.Date{}, err
	}
	if !to.After(from) {
		return caldate.Date{}, &Error{
			Kind: ErrRepeatDidNotMoveForwards,
			File: -1,
			Span: ds.repeatSpan,
			From: from,
			To:   to,
		}
	}
	return to, nil
}

// dates resolves the occurrence anchored at start. A fixed end date keeps
// its distance to the declared start, so repeated occurrences keep the span
// the first one has.
func (ds *dateSpec) dates(start caldate.Date) (Dates, *Error) {
	root, err := ds.startDelta.ApplyDate(start)
	if err != nil {
		return Dates{}, err
	}
	endAnchor := root
	if ds.end != nil {
		endAnchor = ds.end.AddDays(start.RataDie() - ds.start.RataDie())
	}

	if ds.startTime != nil {
		other, otherTime, err := ds.endDelta.ApplyDateTime(endAnchor, *ds.startTime)
		if err != nil {
			return Dates{}, err
		}
		return NewDatesWithTime(root, *ds.startTime, other, otherTime), nil
	}
	other, err := ds.endDelta.ApplyDate(endAnchor)
	if err != nil {
		return Dates{}, err
	}
	return NewDates(root, other), nil
}
