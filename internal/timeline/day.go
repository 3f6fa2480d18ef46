package timeline

import (
	"sort"

	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/eval"
)

// DayKind names the ways an entry can appear on a single day. The reminder
// kinds are synthetic: they surface an entry on a day its dates do not
// cover.
type DayKind int

const (
	DayEnd DayKind = iota
	DayNow
	DayTimedEnd
	DayTimedAt
	DayTimedStart
	DayReminderSince
	DayAt
	DayReminderWhile
	DayUndated
	DayStart
	DayReminderUntil
)

// DayEntry is one placement of an entry on a day. Index points into the
// entry list handed to Layout and is meaningless for DayNow.
type DayEntry struct {
	Kind  DayKind
	Index int
	// Time is set for DayNow and the timed kinds. Until is the end time
	// of a DayTimedAt covering a same-day span.
	Time  caldate.Time
	Until *caldate.Time
	// Days is the day count shown by the reminder kinds.
	Days int
}

// timed reports whether the entry carries a time of day.
func (e DayEntry) timed() bool {
	switch e.Kind {
	case DayNow, DayTimedEnd, DayTimedAt, DayTimedStart:
		return true
	}
	return false
}

// DayLayout buckets entries into the days of the visible range.
type DayLayout struct {
	Range eval.DateRange
	Today caldate.Date
	Now   caldate.Time

	// Earlier collects placements before the visible range. A span that
	// ends inside the range still needs its opening recorded so the
	// bracket draws from the first day on.
	Earlier []DayEntry
	Days    map[caldate.Date][]DayEntry
}

func NewDayLayout(r eval.DateRange, today caldate.Date, now caldate.Time) *DayLayout {
	days := make(map[caldate.Date][]DayEntry, r.Days())
	for day := r.From(); !day.After(r.Until()); day = day.Succ() {
		days[day] = nil
	}
	return &DayLayout{Range: r, Today: today, Now: now, Days: days}
}

// Layout places all entries, then orders each day for display.
func (l *DayLayout) Layout(entries []*eval.Entry) {
	l.insert(l.Today, DayEntry{Kind: DayNow, Time: l.Now})

	for _, i := range entryOrder(entries) {
		l.layoutEntry(i, entries[i])
	}

	for _, es := range l.Days {
		sortDay(es)
	}

	l.combineTimes()
}

// entryOrder sorts entry indices by start date, end date in reverse, kind
// and title. Days list their entries in this order, so a span covering more
// days comes before a shorter one starting the same day.
func entryOrder(entries []*eval.Entry) []int {
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ea, eb := entries[order[a]], entries[order[b]]
		if c := compareSide(ea.Dates, eb.Dates, sideStart); c != 0 {
			return c < 0
		}
		if c := compareSide(ea.Dates, eb.Dates, sideEnd); c != 0 {
			return c > 0
		}
		if ka, kb := kindRank(ea.Kind), kindRank(eb.Kind); ka != kb {
			return ka < kb
		}
		return ea.Title < eb.Title
	})
	return order
}

func kindRank(k eval.EntryKind) int {
	switch k {
	case eval.EntryTask:
		return 0
	case eval.EntryTaskDone:
		return 1
	case eval.EntryTaskCanceled:
		return 2
	case eval.EntryBirthday:
		return 3
	default:
		return 4
	}
}

const (
	sideStart = iota
	sideEnd
)

// compareSide orders two optional date pairs by one side, undated first,
// untimed before timed on equal dates.
func compareSide(a, b *eval.Dates, side int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	ad, at, aok := sideOf(*a, side)
	bd, bt, bok := sideOf(*b, side)
	if c := ad.Compare(bd); c != 0 {
		return c
	}
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	return at.Compare(bt)
}

func sideOf(d eval.Dates, side int) (caldate.Date, caldate.Time, bool) {
	if side == sideStart {
		t, ok := d.StartTime()
		return d.Start(), t, ok
	}
	t, ok := d.EndTime()
	return d.End(), t, ok
}

func (l *DayLayout) layoutEntry(index int, e *eval.Entry) {
	switch e.Kind {
	case eval.EntryTask:
		l.layoutTask(index, e)
	case eval.EntryTaskDone, eval.EntryTaskCanceled:
		l.layoutFinishedTask(index, e)
	default:
		l.layoutNote(index, e)
	}
}

func (l *DayLayout) layoutTask(index int, e *eval.Entry) {
	if e.Dates == nil {
		l.insert(l.Today, DayEntry{Kind: DayUndated, Index: index})
		return
	}
	start, end := e.Dates.Start(), e.Dates.End()
	switch {
	case l.Today.Before(start) && l.announced(e, start):
		days := start.RataDie() - l.Today.RataDie()
		l.insert(l.Today, DayEntry{Kind: DayReminderUntil, Index: index, Days: days})
	case start.Before(l.Today) && l.Today.Before(end):
		days := end.RataDie() - l.Today.RataDie()
		l.insert(l.Today, DayEntry{Kind: DayReminderWhile, Index: index, Days: days})
	case end.Before(l.Today):
		days := l.Today.RataDie() - end.RataDie()
		l.insert(l.Today, DayEntry{Kind: DayReminderSince, Index: index, Days: days})
	}
	l.layoutDated(index, *e.Dates)
}

// announced reports whether an upcoming task surfaces today. An entry's
// remind date replaces the default week of advance warning.
func (l *DayLayout) announced(e *eval.Entry, start caldate.Date) bool {
	if e.Remind != nil {
		return !l.Today.Before(*e.Remind)
	}
	return start.RataDie()-l.Today.RataDie() < 7
}

func (l *DayLayout) layoutFinishedTask(index int, e *eval.Entry) {
	at := *e.DoneAt
	if e.Dates == nil {
		// A dateless task shows up on the day it was finished.
		l.layoutDated(index, eval.NewDates(at, at))
		return
	}
	if end := e.Dates.End(); at.After(end) {
		l.insert(at, DayEntry{Kind: DayReminderSince, Index: index, Days: at.RataDie() - end.RataDie()})
	}
	l.layoutDated(index, *e.Dates)
}

func (l *DayLayout) layoutNote(index int, e *eval.Entry) {
	if e.Dates == nil {
		l.insert(l.Today, DayEntry{Kind: DayUndated, Index: index})
		return
	}
	start, end := e.Dates.Start(), e.Dates.End()
	if start.Before(l.Range.From()) && l.Range.Until().Before(end) {
		// The note covers every visible day, so laying it out as a
		// dated entry would hide it. Count down to its end instead.
		l.insert(l.Today, DayEntry{Kind: DayReminderWhile, Index: index, Days: end.RataDie() - l.Today.RataDie()})
		return
	}
	l.layoutDated(index, *e.Dates)
}

func (l *DayLayout) layoutDated(index int, dates eval.Dates) {
	d := dates.Sorted()
	start, end := d.Root(), d.Other()
	switch {
	case d.Point():
		e := DayEntry{Kind: DayAt, Index: index}
		if t, ok := d.RootTime(); ok {
			e = DayEntry{Kind: DayTimedAt, Index: index, Time: t}
		}
		l.insert(start, e)
	case end.Before(l.Range.From()) || l.Range.Until().Before(start):
		// Entirely outside the range. Placing the ends would draw a
		// bracket nothing visible belongs to.
	case start.Before(l.Range.From()) && l.Range.Until().Before(end):
		// Neither end is visible, same as above.
	default:
		if st, ok := d.RootTime(); ok {
			et, _ := d.OtherTime()
			l.insert(start, DayEntry{Kind: DayTimedStart, Index: index, Time: st})
			l.insert(end, DayEntry{Kind: DayTimedEnd, Index: index, Time: et})
		} else {
			l.insert(start, DayEntry{Kind: DayStart, Index: index})
			l.insert(end, DayEntry{Kind: DayEnd, Index: index})
		}
	}
}

func (l *DayLayout) insert(date caldate.Date, e DayEntry) {
	if date.Before(l.Range.From()) {
		l.Earlier = append(l.Earlier, e)
		return
	}
	es, ok := l.Days[date]
	if !ok {
		return
	}
	switch e.Kind {
	case DayEnd, DayTimedEnd:
		// Ends go in front so the bracket to their start does not cross
		// the day's other entries.
		l.Days[date] = append([]DayEntry{e}, es...)
	default:
		l.Days[date] = append(es, e)
	}
}

// sortDay orders one day for display: untimed ends first, then the timed
// entries in clock order, then reminders for overdue entries, point
// entries, ending-soon reminders, undated entries, span starts and finally
// starting-soon reminders. Entries within a category keep the order they
// were laid out in.
func sortDay(day []DayEntry) {
	// Timed entries sharing a time keep end before point before start.
	sort.SliceStable(day, func(a, b int) bool {
		return timedRank(day[a]) < timedRank(day[b])
	})
	sort.SliceStable(day, func(a, b int) bool {
		ea, eb := day[a], day[b]
		if !ea.timed() || !eb.timed() {
			return !ea.timed() && eb.timed()
		}
		return ea.Time.Before(eb.Time)
	})
	sort.SliceStable(day, func(a, b int) bool {
		return category(day[a]) < category(day[b])
	})
}

func timedRank(e DayEntry) int {
	switch e.Kind {
	case DayNow:
		return 1
	case DayTimedEnd:
		return 2
	case DayTimedAt:
		return 3
	case DayTimedStart:
		return 4
	default:
		return 0
	}
}

func category(e DayEntry) int {
	switch e.Kind {
	case DayEnd:
		return 0
	case DayNow, DayTimedEnd, DayTimedAt, DayTimedStart:
		return 1
	case DayReminderSince:
		return 2
	case DayAt:
		return 3
	case DayReminderWhile:
		return 4
	case DayUndated:
		return 5
	case DayStart:
		return 6
	default:
		return 7
	}
}

// combineTimes merges a timed start directly followed by its own timed end
// into a single entry spanning both times.
func (l *DayLayout) combineTimes() {
	for date, day := range l.Days {
		for i := 0; i+1 < len(day); i++ {
			a, b := day[i], day[i+1]
			if a.Kind == DayTimedStart && b.Kind == DayTimedEnd && a.Index == b.Index {
				until := b.Time
				day[i] = DayEntry{Kind: DayTimedAt, Index: a.Index, Time: a.Time, Until: &until}
				day = append(day[:i+1], day[i+2:]...)
			}
		}
		l.Days[date] = day
	}
}
