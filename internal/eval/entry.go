package eval

import (
	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/planfile"
)

// EntryKind classifies what an entry shows up as on the timeline.
type EntryKind int

const (
	EntryTask EntryKind = iota
	EntryTaskDone
	EntryTaskCanceled
	EntryNote
	EntryBirthday
)

func (k EntryKind) String() string {
	switch k {
	case EntryTask:
		return "task"
	case EntryTaskDone:
		return "done task"
	case EntryTaskCanceled:
		return "canceled task"
	case EntryNote:
		return "note"
	case EntryBirthday:
		return "birthday"
	default:
		return "entry"
	}
}

// Entry is one concrete occurrence of a command.
type Entry struct {
	Source planfile.Source
	Kind   EntryKind
	Title  string
	Desc   []string

	// Dates is nil for undated entries.
	Dates *Dates
	// Remind is the day the entry starts announcing itself ahead of its
	// start date. Nil without an active REMIND.
	Remind *caldate.Date
	// DoneAt is the completion date of done and canceled tasks.
	DoneAt *caldate.Date
	// Age is the age turned on a birthday whose year is known.
	Age *int
}

// EntryMode selects which entries survive aggregation over a range.
type EntryMode int

const (
	// ModeRooted keeps entries whose root date lies in the range.
	ModeRooted EntryMode = iota
	// ModeTouching keeps entries whose span overlaps the range.
	ModeTouching
	// ModeRelevant keeps touching entries, and with them undated entries,
	// tasks finished inside the range and unfinished tasks from before it.
	ModeRelevant
)

func (m EntryMode) String() string {
	switch m {
	case ModeRooted:
		return "rooted"
	case ModeTouching:
		return "touching"
	case ModeRelevant:
		return "relevant"
	default:
		return "unknown"
	}
}

// ParseEntryMode resolves a mode name from the command line or API.
func ParseEntryMode(s string) (EntryMode, bool) {
	switch s {
	case "rooted":
		return ModeRooted, true
	case "touching":
		return ModeTouching, true
	case "relevant":
		return ModeRelevant, true
	}
	return 0, false
}

// Entries collects the entries of all commands, filtered by mode.
type Entries struct {
	mode EntryMode
	r    DateRange
	list []*Entry
}

func NewEntries(mode EntryMode, r DateRange) *Entries {
	return &Entries{mode: mode, r: r}
}

// Add keeps the entry if it passes the mode's filter.
func (e *Entries) Add(entry *Entry) {
	keep := false
	switch e.mode {
	case ModeRooted:
		keep = e.isRooted(entry)
	case ModeTouching:
		keep = e.isTouching(entry)
	case ModeRelevant:
		keep = e.isRelevant(entry)
	}
	if keep {
		e.list = append(e.list, entry)
	}
}

// List returns the collected entries.
func (e *Entries) List() []*Entry { return e.list }

func (e *Entries) isRooted(entry *Entry) bool {
	return entry.Dates != nil && e.r.Contains(entry.Dates.Root())
}

func (e *Entries) isTouching(entry *Entry) bool {
	if entry.Dates == nil {
		return false
	}
	return !entry.Dates.Start().After(e.r.Until()) && !entry.Dates.End().Before(e.r.From())
}

func (e *Entries) isRelevant(entry *Entry) bool {
	if entry.Dates == nil {
		return true
	}
	if e.isTouching(entry) {
		return true
	}

	// Tasks finished inside the range.
	if entry.Kind == EntryTaskDone || entry.Kind == EntryTaskCanceled {
		if entry.DoneAt != nil && e.r.Contains(*entry.DoneAt) {
			return true
		}
	}

	// Unfinished tasks before the range.
	if entry.Kind == EntryTask {
		return !entry.Dates.Start().After(e.r.Until())
	}
	return false
}
