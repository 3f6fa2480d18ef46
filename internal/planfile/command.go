// Package planfile implements the plan file DSL: the command model, the
// parser, the canonical formatter and the loaded file collection.
//
// A plan file is a sequence of commands (TASK, NOTE, LOG, INCLUDE, TIMEZONE,
// CAPTURE). Tasks and notes carry statements describing when they occur
// (DATE, BDATE, FROM, UNTIL, EXCEPT, MOVE, REMIND) and tasks additionally
// carry completion records (DONE, CANCELED). Evaluating the model against a
// date range is the eval package's job.
package planfile

import (
	"github.com/planfile/planfile/internal/caldate"
)

// Spec describes when a task or note occurs. It is one of *DateSpec,
// *WeekdaySpec or *FormulaSpec.
type Spec interface {
	spec()
}

// DateSpec is a spec anchored at a fixed start date, e.g.
// "2024-03-10 +2d 14:00 -- 2024-03-12 16:00; done +w".
type DateSpec struct {
	Start      caldate.Date
	StartDelta *Delta
	StartTime  *caldate.Time

	// End of the occurrence: a fixed date and/or a delta and/or a time. The
	// delta and time are applied from the fixed end date if present, else
	// from the occurrence's root.
	End         *caldate.Date
	EndDelta    *Delta
	EndTime     *caldate.Time
	EndTimeSpan Span

	Repeat *Repeat
}

// WeekdaySpec is a spec selecting days by weekday, e.g. "mon 10:00 -- wed".
type WeekdaySpec struct {
	Start     caldate.Weekday
	StartTime *caldate.Time

	End         *caldate.Weekday
	EndSpan     Span
	EndDelta    *Delta
	EndTime     *caldate.Time
	EndTimeSpan Span
}

// FormulaSpec selects days by a formula over calendar variables, e.g.
// "(d = ml & wd = fri) 18:00". A nil Start means "*", every day.
type FormulaSpec struct {
	Start      *Expr
	StartDelta *Delta
	StartTime  *caldate.Time

	EndDelta    *Delta
	EndTime     *caldate.Time
	EndTimeSpan Span
}

// BirthdaySpec is an annually recurring date whose year may be unknown,
// written "1990-05-21" or "?-05-21". With an unknown year Date.Year is 0.
type BirthdaySpec struct {
	Date      caldate.Date
	YearKnown bool
}

func (*DateSpec) spec()    {}
func (*WeekdaySpec) spec() {}
func (*FormulaSpec) spec() {}

// Statement is a scheduling statement inside a task or note. It is one of
// *DateStmt, *BDateStmt, *FromStmt, *UntilStmt, *ExceptStmt, *MoveStmt or
// *RemindStmt.
type Statement interface {
	stmt()
}

// DateStmt declares occurrences via a spec.
type DateStmt struct {
	Spec Spec
}

// BDateStmt declares annually recurring birthday occurrences. Only valid in
// notes.
type BDateStmt struct {
	Spec BirthdaySpec
}

// FromStmt bounds following specs to dates at or after Date. A nil Date
// ("FROM *") resets the bound.
type FromStmt struct {
	Date *caldate.Date
}

// UntilStmt bounds following specs to dates at or before Date. A nil Date
// ("UNTIL *") resets the bound.
type UntilStmt struct {
	Date *caldate.Date
}

// ExceptStmt removes the occurrence rooted at Date.
type ExceptStmt struct {
	Date caldate.Date
}

// MoveStmt moves the occurrence rooted at From to a new date and/or time.
// At least one of To and ToTime is set.
type MoveStmt struct {
	Span   Span
	From   caldate.Date
	To     *caldate.Date
	ToTime *caldate.Time
}

// RemindStmt sets the reminder delta for following specs. A nil Delta
// ("REMIND *") resets it.
type RemindStmt struct {
	Delta *Delta
}

func (*DateStmt) stmt()   {}
func (*BDateStmt) stmt()  {}
func (*FromStmt) stmt()   {}
func (*UntilStmt) stmt()  {}
func (*ExceptStmt) stmt() {}
func (*MoveStmt) stmt()   {}
func (*RemindStmt) stmt() {}

// DoneDate records which occurrence a completion refers to, as a root date
// with optional time and an optional other end.
type DoneDate struct {
	Root      caldate.Date
	RootTime  *caldate.Time
	Other     *caldate.Date
	OtherTime *caldate.Time
}

// Simplified drops parts of the done date that repeat information already
// present, so the formatter can print the shortest equivalent form.
func (d DoneDate) Simplified() DoneDate {
	if d.Other != nil && *d.Other == d.Root {
		d.Other = nil
	}
	if d.Other == nil && d.OtherTime != nil && d.RootTime != nil && *d.OtherTime == *d.RootTime {
		d.OtherTime = nil
	}
	return d
}

// Done is a completion record of a task, e.g. "DONE [2024-03-12] 2024-03-10".
// DoneAt is the day the record was made, Date the occurrence it completes.
type Done struct {
	Canceled bool
	Date     *DoneDate
	DoneAt   caldate.Date
}

// Command is a top-level entry of a plan file. It is one of *Task, *Note,
// *Log, *Include, *Timezone or *Capture.
type Command interface {
	command()
}

// Task is a titled item that can be completed.
type Task struct {
	Title      string
	Statements []Statement
	Dones      []Done
	Desc       []string
}

// Note is a titled item without completion state.
type Note struct {
	Title      string
	Statements []Statement
	Desc       []string
}

// Log is a dated journal entry.
type Log struct {
	Date     caldate.Date
	DateSpan Span
	Desc     []string
}

// Include pulls another plan file into the collection. The path is relative
// to the including file.
type Include struct {
	Path     string
	PathSpan Span
}

// Timezone declares the timezone the collection's "today" is computed in.
// At most one distinct timezone may be declared across all loaded files.
type Timezone struct {
	Name     string
	NameSpan Span
}

// Capture marks a file as a capture target for quickly added tasks.
type Capture struct{}

func (*Task) command()     {}
func (*Note) command()     {}
func (*Log) command()      {}
func (*Include) command()  {}
func (*Timezone) command() {}
func (*Capture) command()  {}

// FileCommand is a command together with the byte range it occupies in its
// file's source text.
type FileCommand struct {
	Span    Span
	Command Command
}

// File is the parsed form of a single plan file.
type File struct {
	Commands []FileCommand
}

// Source identifies a command by file index and command index within the
// loaded collection.
type Source struct {
	File    int
	Command int
}

// SourcedCommand pairs a command with its source location.
type SourcedCommand struct {
	Source  Source
	Command Command
}
