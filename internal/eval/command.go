package eval

import (
	"sort"

	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/planfile"
)

// Evaluate runs every task and note in cmds over the range and collects the
// entries the mode keeps. Commands evaluate independently of each other; the
// first failing command aborts with its error.
func Evaluate(cmds []planfile.SourcedCommand, mode EntryMode, r DateRange) ([]*Entry, error) {
	entries := NewEntries(mode, r)
	for _, sc := range cmds {
		s := newCommandState(sc, r)
		if s == nil {
			continue
		}
		if err := s.eval(); err != nil {
			return nil, err
		}
		for _, entry := range s.drain() {
			entries.Add(entry)
		}
	}
	return entries.List(), nil
}

// commandState accumulates the occurrences of a single task or note while
// its statements fold, one after the other. FROM, UNTIL and REMIND only
// affect the specs that follow them.
type commandState struct {
	source     planfile.Source
	kind       EntryKind
	title      string
	desc       []string
	statements []planfile.Statement
	dones      []planfile.Done

	r          DateRange
	from       *caldate.Date
	until      *caldate.Date
	remind     *Delta
	remindSpan planfile.Span

	entries map[caldate.Date]*Entry
	undated []*Entry
}

// newCommandState returns nil for commands that produce no entries.
func newCommandState(sc planfile.SourcedCommand, r DateRange) *commandState {
	s := &commandState{source: sc.Source, r: r, entries: map[caldate.Date]*Entry{}}
	switch cmd := sc.Command.(type) {
	case *planfile.Task:
		s.kind = EntryTask
		s.title = cmd.Title
		s.desc = cmd.Desc
		s.statements = cmd.Statements
		s.dones = cmd.Dones
	case *planfile.Note:
		s.kind = EntryNote
		s.title = cmd.Title
		s.desc = cmd.Desc
		s.statements = cmd.Statements
	default:
		return nil
	}

	// A moved occurrence may sit at a source date outside the range while
	// its target lies inside. Widen so the source still resolves.
	for _, stmt := range s.statements {
		if move, ok := stmt.(*planfile.MoveStmt); ok {
			s.r = s.r.Containing(move.From)
		}
	}
	return s
}

func (s *commandState) eval() *Error {
	for _, stmt := range s.statements {
		if err := s.evalStatement(stmt); err != nil {
			err.File = s.source.File
			return err
		}
	}
	for i := range s.dones {
		s.evalDone(&s.dones[i])
	}
	return nil
}

func (s *commandState) evalStatement(stmt planfile.Statement) *Error {
	switch st := stmt.(type) {
	case *planfile.DateStmt:
		return s.evalSpec(st.Spec)
	case *planfile.BDateStmt:
		return s.evalBirthday(&st.Spec)
	case *planfile.FromStmt:
		s.from = st.Date
	case *planfile.UntilStmt:
		s.until = st.Date
	case *planfile.ExceptStmt:
		delete(s.entries, st.Date)
	case *planfile.MoveStmt:
		return s.evalMove(st)
	case *planfile.RemindStmt:
		if st.Delta == nil {
			s.remind = nil
		} else {
			d := newDelta(st.Delta)
			s.remind = &d
			s.remindSpan = st.Delta.Span
		}
	}
	return nil
}

func (s *commandState) evalSpec(spec planfile.Spec) *Error {
	switch sp := spec.(type) {
	case *planfile.DateSpec:
		return s.evalDateSpec(newDateSpec(sp))
	case *planfile.WeekdaySpec:
		return s.evalFormulaSpec(newWeekdayFormula(sp))
	case *planfile.FormulaSpec:
		return s.evalFormulaSpec(newFormulaSpec(sp))
	}
	return nil
}

// rangeWithRemind widens the range so occurrences whose reminder falls
// inside it are still found.
func (s *commandState) rangeWithRemind() DateRange {
	if s.remind == nil {
		return s.r
	}
	return s.r.ExpandBy(*s.remind)
}

// limitFromUntil narrows a range to the active FROM/UNTIL bounds. It never
// widens. The false return means the bounds leave nothing to evaluate.
func (s *commandState) limitFromUntil(r DateRange) (DateRange, bool) {
	ok := true
	if s.from != nil && s.from.After(r.From()) {
		if r, ok = r.WithFrom(*s.from); !ok {
			return DateRange{}, false
		}
	}
	if s.until != nil && s.until.Before(r.Until()) {
		if r, ok = r.WithUntil(*s.until); !ok {
			return DateRange{}, false
		}
	}
	return r, true
}

// lastDoneRoot is the root date of the latest dated completion.
func (s *commandState) lastDoneRoot() *caldate.Date {
	var last *caldate.Date
	for i := range s.dones {
		date := s.dones[i].Date
		if date == nil {
			continue
		}
		if last == nil || date.Root.After(*last) {
			root := date.Root
			last = &root
		}
	}
	return last
}

func (s *commandState) newEntry(kind EntryKind, dates *Dates) *Entry {
	return &Entry{
		Source: s.source,
		Kind:   kind,
		Title:  s.title,
		Desc:   s.desc,
		Dates:  dates,
	}
}

// entryWithRemind builds an entry and attaches the active reminder. The
// remind delta must land strictly before the entry's start date.
func (s *commandState) entryWithRemind(kind EntryKind, dates *Dates) (*Entry, *Error) {
	entry := s.newEntry(kind, dates)
	if s.remind == nil || dates == nil {
		return entry, nil
	}
	start := dates.Start()
	target, err := s.remind.ApplyDate(start)
	if err != nil {
		return nil, err
	}
	if !target.Before(start) {
		return nil, &Error{
			Kind: ErrRemindDidNotMoveBackwards,
			File: -1,
			Span: s.remindSpan,
			From: start,
			To:   target,
		}
	}
	entry.Remind = &target
	return entry, nil
}

// add inserts a dated entry unless its root date already has one. Undated
// entries always append.
func (s *commandState) add(entry *Entry) {
	if entry.Dates == nil {
		s.undated = append(s.undated, entry)
		return
	}
	root := entry.Dates.Root()
	if _, exists := s.entries[root]; !exists {
		s.entries[root] = entry
	}
}

// addForced inserts a dated entry, replacing whatever its root date held.
func (s *commandState) addForced(entry *Entry) {
	s.entries[entry.Dates.Root()] = entry
}

func (s *commandState) evalMove(stmt *planfile.MoveStmt) *Error {
	entry, ok := s.entries[stmt.From]
	if !ok {
		return &Error{Kind: ErrMoveWithoutSource, File: -1, Span: stmt.Span, From: stmt.From}
	}

	days := 0
	if stmt.To != nil {
		days = stmt.To.RataDie() - stmt.From.RataDie()
	}
	minutes := 0
	if stmt.ToTime != nil {
		rootTime, hasTime := entry.Dates.RootTime()
		if !hasTime {
			return &Error{Kind: ErrTimedMoveWithoutTime, File: -1, Span: stmt.Span, From: stmt.From}
		}
		minutes = stmt.ToTime.Minutes() - rootTime.Minutes()
	}

	moved := *entry
	dates := entry.Dates.MoveBy(days, minutes)
	moved.Dates = &dates
	if entry.Remind != nil {
		// The reminder keeps its lead on the occurrence.
		remind := entry.Remind.AddDays(days)
		moved.Remind = &remind
	}

	delete(s.entries, stmt.From)
	s.addForced(&moved)
	return nil
}

// evalDone folds one completion record. Dated completions overwrite the
// occurrence at their root, even one outside the FROM/UNTIL bounds. An
// undated completion finishes the earliest still-open occurrence, or the
// task as a whole if none resolved.
func (s *commandState) evalDone(done *planfile.Done) {
	kind := EntryTaskDone
	if done.Canceled {
		kind = EntryTaskCanceled
	}
	doneAt := done.DoneAt

	if done.Date != nil {
		dates := datesFromDoneDate(done.Date)
		entry := s.newEntry(kind, &dates)
		entry.DoneAt = &doneAt
		s.addForced(entry)
		return
	}

	if entry := s.earliestOpen(); entry != nil {
		entry.Kind = kind
		entry.DoneAt = &doneAt
		return
	}
	entry := s.newEntry(kind, nil)
	entry.DoneAt = &doneAt
	s.undated = append(s.undated, entry)
}

// earliestOpen finds the unfinished occurrence with the earliest root date.
func (s *commandState) earliestOpen() *Entry {
	var best *Entry
	var bestRoot caldate.Date
	for root, entry := range s.entries {
		if entry.Kind != EntryTask {
			continue
		}
		if best == nil || root.Before(bestRoot) {
			best, bestRoot = entry, root
		}
	}
	return best
}

// drain empties the state into a flat list, dated entries first in root
// order, undated ones after in declaration order.
func (s *commandState) drain() []*Entry {
	roots := make([]caldate.Date, 0, len(s.entries))
	for root := range s.entries {
		roots = append(roots, root)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Before(roots[j]) })

	list := make([]*Entry, 0, len(roots)+len(s.undated))
	for _, root := range roots {
		list = append(list, s.entries[root])
	}
	return append(list, s.undated...)
}
