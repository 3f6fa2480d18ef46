package timeline

import (
	"fmt"
	"strconv"

	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/eval"
)

// SpanStyle picks the guide glyphs of one span column. Styles rotate with
// the column so neighbouring brackets stay distinguishable.
type SpanStyle int

const (
	SpanSolid SpanStyle = iota
	SpanDashed
	SpanDotted
)

func spanStyleFor(column int) SpanStyle {
	switch column % 3 {
	case 1:
		return SpanDashed
	case 2:
		return SpanDotted
	default:
		return SpanSolid
	}
}

// SpanSegment is the part of a span bracket drawn on one line.
type SpanSegment int

const (
	SegmentStart SpanSegment = iota
	SegmentMiddle
	SegmentEnd
)

// SpanCell is one cell of the span guide columns on a rendered line. A nil
// cell leaves the column empty on that line.
type SpanCell struct {
	Segment SpanSegment
	Style   SpanStyle
}

// Times is the time annotation of an entry line: nothing, a single time or
// a same-day from--to span.
type Times struct {
	Start *caldate.Time
	End   *caldate.Time
}

func timesAt(t caldate.Time) Times { return Times{Start: &t} }

// LineKind selects the glyph and color of an entry line.
type LineKind int

const (
	LineTask LineKind = iota
	LineDone
	LineCanceled
	LineNote
	LineBirthday
)

// Line is one display line: a day header, the current-time marker or an
// entry.
type Line interface {
	line()
}

// DayLine is the header opening one day of the range.
type DayLine struct {
	Spans []*SpanCell
	Date  caldate.Date
	Today bool
}

// NowLine marks the current time of day.
type NowLine struct {
	Spans []*SpanCell
	Time  caldate.Time
}

// EntryLine shows one entry with its display number. Extra carries reminder
// annotations like "in 3 days".
type EntryLine struct {
	Number int
	Spans  []*SpanCell
	Times  Times
	Kind   LineKind
	Text   string
	Extra  string
}

func (*DayLine) line()   {}
func (*NowLine) line()   {}
func (*EntryLine) line() {}

type spanState struct {
	index int
	cell  SpanCell
}

// LineLayout flattens a day layout into display lines, assigning display
// numbers and span guide columns along the way.
type LineLayout struct {
	// numbers maps entry indices to their display numbers. Numbers start
	// at 1 and are handed out in line order.
	numbers    map[int]int
	lastNumber int
	spans      []*spanState
	lines      []Line
}

func NewLineLayout() *LineLayout {
	return &LineLayout{numbers: make(map[int]int)}
}

// Render flattens the day layout into lines.
func (l *LineLayout) Render(entries []*eval.Entry, days *DayLayout) {
	// Spans opened before the first day still need their columns so the
	// visible ends connect to something.
	for _, e := range days.Earlier {
		if e.Kind == DayStart || e.Kind == DayTimedStart {
			l.startSpan(e.Index)
		}
	}
	l.stepSpans()

	for day := days.Range.From(); !day.After(days.Range.Until()); day = day.Succ() {
		l.line(&DayLine{Spans: l.spansForLine(), Date: day, Today: day == days.Today})
		for _, e := range days.Days[day] {
			l.renderDayEntry(entries, e)
		}
	}
}

// NumWidth returns the width of the widest display number.
func (l *LineLayout) NumWidth() int { return len(strconv.Itoa(l.lastNumber)) }

// SpanWidth returns the number of span guide columns.
func (l *LineLayout) SpanWidth() int { return len(l.spans) }

// Lines returns the display lines in order.
func (l *LineLayout) Lines() []Line { return l.lines }

// LookUpNumber resolves a display number back to the entry index it was
// assigned to.
func (l *LineLayout) LookUpNumber(number int) (int, bool) {
	for index, n := range l.numbers {
		if n == number {
			return index, true
		}
	}
	return 0, false
}

func (l *LineLayout) renderDayEntry(entries []*eval.Entry, e DayEntry) {
	switch e.Kind {
	case DayEnd:
		l.stopSpan(e.Index)
		l.entryLine(entries, e.Index, Times{}, "")
	case DayNow:
		l.line(&NowLine{Spans: l.spansForLine(), Time: e.Time})
	case DayTimedEnd:
		l.stopSpan(e.Index)
		l.entryLine(entries, e.Index, timesAt(e.Time), "")
	case DayTimedAt:
		times := timesAt(e.Time)
		times.End = e.Until
		l.entryLine(entries, e.Index, times, "")
	case DayTimedStart:
		l.startSpan(e.Index)
		l.entryLine(entries, e.Index, timesAt(e.Time), "")
	case DayReminderSince:
		extra := fmt.Sprintf("%d days ago", e.Days)
		if e.Days == 1 {
			extra = "yesterday"
		}
		l.entryLine(entries, e.Index, Times{}, extra)
	case DayAt:
		l.entryLine(entries, e.Index, Times{}, "")
	case DayReminderWhile:
		extra := fmt.Sprintf("%d days left", e.Days)
		if e.Days == 1 {
			extra = "1 day left"
		}
		l.entryLine(entries, e.Index, Times{}, extra)
	case DayUndated:
		l.entryLine(entries, e.Index, Times{}, "")
	case DayStart:
		l.startSpan(e.Index)
		l.entryLine(entries, e.Index, Times{}, "")
	case DayReminderUntil:
		extra := fmt.Sprintf("in %d days", e.Days)
		if e.Days == 1 {
			extra = "tomorrow"
		}
		l.entryLine(entries, e.Index, Times{}, extra)
	}
}

func lineKind(e *eval.Entry) LineKind {
	switch e.Kind {
	case eval.EntryTask:
		return LineTask
	case eval.EntryTaskDone:
		return LineDone
	case eval.EntryTaskCanceled:
		return LineCanceled
	case eval.EntryNote:
		return LineNote
	default:
		return LineBirthday
	}
}

func lineText(e *eval.Entry) string {
	if e.Kind == eval.EntryBirthday && e.Age != nil {
		return fmt.Sprintf("%s (%d)", e.Title, *e.Age)
	}
	return e.Title
}

// startSpan claims the first free span column for the entry, adding a new
// column when all are taken.
func (l *LineLayout) startSpan(index int) {
	for i, s := range l.spans {
		if s == nil {
			l.spans[i] = &spanState{index: index, cell: SpanCell{Segment: SegmentStart, Style: spanStyleFor(i)}}
			return
		}
	}
	l.spans = append(l.spans, &spanState{
		index: index,
		cell:  SpanCell{Segment: SegmentStart, Style: spanStyleFor(len(l.spans))},
	})
}

func (l *LineLayout) stopSpan(index int) {
	for _, s := range l.spans {
		if s != nil && s.index == index {
			s.cell.Segment = SegmentEnd
		}
	}
}

// stepSpans advances the span columns by one line: fresh starts become
// middles, finished ends free their column.
func (l *LineLayout) stepSpans() {
	for i, s := range l.spans {
		if s == nil {
			continue
		}
		switch s.cell.Segment {
		case SegmentStart:
			s.cell.Segment = SegmentMiddle
		case SegmentEnd:
			l.spans[i] = nil
		}
	}
}

func (l *LineLayout) spansForLine() []*SpanCell {
	cells := make([]*SpanCell, len(l.spans))
	for i, s := range l.spans {
		if s != nil {
			cell := s.cell
			cells[i] = &cell
		}
	}
	return cells
}

func (l *LineLayout) line(line Line) {
	l.lines = append(l.lines, line)
	l.stepSpans()
}

func (l *LineLayout) entryLine(entries []*eval.Entry, index int, times Times, extra string) {
	e := entries[index]

	number, ok := l.numbers[index]
	if !ok {
		l.lastNumber++
		l.numbers[index] = l.lastNumber
		number = l.lastNumber
	}

	l.line(&EntryLine{
		Number: number,
		Spans:  l.spansForLine(),
		Times:  times,
		Kind:   lineKind(e),
		Text:   lineText(e),
		Extra:  extra,
	})
}
