package eval

import (
	"slices"
	"strings"
	"testing"

	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/planfile"
)

func parseCommands(t *testing.T, src string) []planfile.SourcedCommand {
	t.Helper()
	file, err := planfile.ParseFile("test.plan", src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	cmds := make([]planfile.SourcedCommand, len(file.Commands))
	for i, fc := range file.Commands {
		cmds[i] = planfile.SourcedCommand{
			Source:  planfile.Source{File: 0, Command: i},
			Command: fc.Command,
		}
	}
	return cmds
}

func evalEntries(t *testing.T, src string, mode EntryMode, r DateRange) []*Entry {
	t.Helper()
	entries, err := Evaluate(parseCommands(t, src), mode, r)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	return entries
}

func evalError(t *testing.T, src string, r DateRange) *Error {
	t.Helper()
	_, err := Evaluate(parseCommands(t, src), ModeRooted, r)
	if err == nil {
		t.Fatal("Evaluate succeeded, want error")
	}
	evalErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error is %T, want *Error", err)
	}
	return evalErr
}

func entryRoots(entries []*Entry) []caldate.Date {
	roots := make([]caldate.Date, 0, len(entries))
	for _, e := range entries {
		if e.Dates != nil {
			roots = append(roots, e.Dates.Root())
		}
	}
	return roots
}

func entryTitles(entries []*Entry) []string {
	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.Title
	}
	return titles
}

func january() DateRange { return span(ymd(2024, 1, 1), ymd(2024, 1, 31)) }

func march() DateRange { return span(ymd(2024, 3, 1), ymd(2024, 3, 31)) }

func TestEvaluateWeekdayNote(t *testing.T) {
	entries := evalEntries(t, "NOTE Standup\nDATE mon\n", ModeRooted, january())
	want := []caldate.Date{
		ymd(2024, 1, 1), ymd(2024, 1, 8), ymd(2024, 1, 15),
		ymd(2024, 1, 22), ymd(2024, 1, 29),
	}
	if got := entryRoots(entries); !slices.Equal(got, want) {
		t.Errorf("roots = %v, want %v", got, want)
	}
	for _, e := range entries {
		if e.Kind != EntryNote {
			t.Errorf("kind = %v, want %v", e.Kind, EntryNote)
		}
		if !e.Dates.Point() {
			t.Errorf("dates = %v, want a point", e.Dates)
		}
	}
}

func TestEvaluateWeekdaySpan(t *testing.T) {
	entries := evalEntries(t, "NOTE Sprint\nDATE mon 10:00 -- wed 12:00\n", ModeRooted,
		span(ymd(2024, 1, 8), ymd(2024, 1, 14)))
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	want := NewDatesWithTime(ymd(2024, 1, 8), hm(10, 0), ymd(2024, 1, 10), hm(12, 0))
	if got := *entries[0].Dates; got != want {
		t.Errorf("dates = %v, want %v", got, want)
	}
}

func TestEvaluateWeekdaySameDayEnd(t *testing.T) {
	// An end weekday equal to the start stays on the same day instead of
	// jumping a week ahead.
	entries := evalEntries(t, "NOTE Review\nDATE fri 10:00 -- fri 12:00\n", ModeRooted,
		span(ymd(2024, 1, 8), ymd(2024, 1, 14)))
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	want := NewDatesWithTime(ymd(2024, 1, 12), hm(10, 0), ymd(2024, 1, 12), hm(12, 0))
	if got := *entries[0].Dates; got != want {
		t.Errorf("dates = %v, want %v", got, want)
	}
}

func TestEvaluateDateRepeat(t *testing.T) {
	entries := evalEntries(t, "TASK Water the plants\nDATE 2024-03-10; +3d\n", ModeRooted,
		span(ymd(2024, 3, 9), ymd(2024, 3, 19)))
	want := []caldate.Date{
		ymd(2024, 3, 10), ymd(2024, 3, 13), ymd(2024, 3, 16), ymd(2024, 3, 19),
	}
	if got := entryRoots(entries); !slices.Equal(got, want) {
		t.Errorf("roots = %v, want %v", got, want)
	}
	for _, e := range entries {
		if e.Kind != EntryTask {
			t.Errorf("kind = %v, want %v", e.Kind, EntryTask)
		}
	}
}

func TestEvaluateDateRepeatKeepsSpan(t *testing.T) {
	// A fixed end date keeps its distance to the start on every repetition.
	entries := evalEntries(t, "TASK Retreat\nDATE 2024-03-10 -- 2024-03-12; +w\n", ModeRooted,
		span(ymd(2024, 3, 10), ymd(2024, 3, 24)))
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for _, e := range entries {
		root := e.Dates.Root()
		if want := NewDates(root, root.AddDays(2)); *e.Dates != want {
			t.Errorf("dates = %v, want %v", e.Dates, want)
		}
	}
}

func TestEvaluateDateRepeatCatchUp(t *testing.T) {
	// The repeat starts at the declared date, far before the range.
	entries := evalEntries(t, "TASK Laundry\nDATE 2024-01-01; +w\n", ModeRooted,
		span(ymd(2024, 3, 4), ymd(2024, 3, 10)))
	want := []caldate.Date{ymd(2024, 3, 4)}
	if got := entryRoots(entries); !slices.Equal(got, want) {
		t.Errorf("roots = %v, want %v", got, want)
	}
}

func TestEvaluateDateOvernightEnd(t *testing.T) {
	// An end time before the start time rolls over to the next day.
	entries := evalEntries(t, "NOTE Party\nDATE 2024-03-10 22:00 -- 02:00\n", ModeRooted, march())
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	want := NewDatesWithTime(ymd(2024, 3, 10), hm(22, 0), ymd(2024, 3, 11), hm(2, 0))
	if got := *entries[0].Dates; got != want {
		t.Errorf("dates = %v, want %v", got, want)
	}
}

func TestEvaluateDateStartDelta(t *testing.T) {
	entries := evalEntries(t, "TASK Prepare slides\nDATE 2024-03-10 +2d\n", ModeRooted, march())
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if want := NewDates(ymd(2024, 3, 12), ymd(2024, 3, 12)); *entries[0].Dates != want {
		t.Errorf("dates = %v, want %v", entries[0].Dates, want)
	}
}

func TestEvaluateRepeatMustMoveForwards(t *testing.T) {
	err := evalError(t, "TASK Broken\nDATE 2024-03-10; -d\n", march())
	if err.Kind != ErrRepeatDidNotMoveForwards {
		t.Fatalf("error kind = %v, want %v", err.Kind, ErrRepeatDidNotMoveForwards)
	}
	if err.From != ymd(2024, 3, 10) || err.To != ymd(2024, 3, 9) {
		t.Errorf("from %v to %v", err.From, err.To)
	}
	if got, want := err.Error(), "repeat delta did not move forwards (2024-03-10 to 2024-03-09)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestEvaluateFromUntil(t *testing.T) {
	src := strings.Join([]string{
		"TASK Standup",
		"FROM 2024-01-09",
		"UNTIL 2024-01-22",
		"DATE mon",
	}, "\n") + "\n"
	entries := evalEntries(t, src, ModeRooted, january())
	want := []caldate.Date{ymd(2024, 1, 15), ymd(2024, 1, 22)}
	if got := entryRoots(entries); !slices.Equal(got, want) {
		t.Errorf("roots = %v, want %v", got, want)
	}
}

func TestEvaluateFromAfterSpec(t *testing.T) {
	// Bounds only affect the specs that follow them.
	src := "TASK Standup\nDATE mon\nFROM 2024-01-09\n"
	entries := evalEntries(t, src, ModeRooted, january())
	if got := len(entries); got != 5 {
		t.Errorf("got %d entries, want 5", got)
	}
}

func TestEvaluateFromReset(t *testing.T) {
	src := strings.Join([]string{
		"TASK Standup",
		"FROM 2024-01-09",
		"FROM *",
		"DATE mon",
	}, "\n") + "\n"
	entries := evalEntries(t, src, ModeRooted, january())
	if got := len(entries); got != 5 {
		t.Errorf("got %d entries, want 5", got)
	}
}

func TestEvaluateExcept(t *testing.T) {
	src := "NOTE Standup\nDATE mon\nEXCEPT 2024-01-15\n"
	entries := evalEntries(t, src, ModeRooted, january())
	want := []caldate.Date{
		ymd(2024, 1, 1), ymd(2024, 1, 8), ymd(2024, 1, 22), ymd(2024, 1, 29),
	}
	if got := entryRoots(entries); !slices.Equal(got, want) {
		t.Errorf("roots = %v, want %v", got, want)
	}
}

func TestEvaluateMove(t *testing.T) {
	src := strings.Join([]string{
		"TASK Dentist",
		"DATE 2024-03-10",
		"MOVE 2024-03-10 TO 2024-03-15",
	}, "\n") + "\n"
	entries := evalEntries(t, src, ModeRooted, march())
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if got := entries[0].Dates.Root(); got != ymd(2024, 3, 15) {
		t.Errorf("root = %v, want %v", got, ymd(2024, 3, 15))
	}
}

func TestEvaluateMoveIntoRange(t *testing.T) {
	// The move source lies before the range; the occurrence there must still
	// resolve so its target can land inside.
	src := strings.Join([]string{
		"TASK Water the plants",
		"DATE 2024-02-26; +w",
		"MOVE 2024-02-26 TO 2024-03-01",
	}, "\n") + "\n"
	entries := evalEntries(t, src, ModeRooted, span(ymd(2024, 3, 1), ymd(2024, 3, 18)))
	want := []caldate.Date{
		ymd(2024, 3, 1), ymd(2024, 3, 4), ymd(2024, 3, 11), ymd(2024, 3, 18),
	}
	if got := entryRoots(entries); !slices.Equal(got, want) {
		t.Errorf("roots = %v, want %v", got, want)
	}
}

func TestEvaluateMoveTime(t *testing.T) {
	src := strings.Join([]string{
		"TASK Call mom",
		"DATE 2024-03-10 10:00 -- 11:00",
		"MOVE 2024-03-10 TO 14:00",
	}, "\n") + "\n"
	entries := evalEntries(t, src, ModeRooted, march())
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	want := NewDatesWithTime(ymd(2024, 3, 10), hm(14, 0), ymd(2024, 3, 10), hm(15, 0))
	if got := *entries[0].Dates; got != want {
		t.Errorf("dates = %v, want %v", got, want)
	}
}

func TestEvaluateMoveErrors(t *testing.T) {
	t.Run("nonexisting entry", func(t *testing.T) {
		src := "TASK x\nDATE 2024-03-10\nMOVE 2024-03-11 TO 2024-03-12\n"
		err := evalError(t, src, march())
		if err.Kind != ErrMoveWithoutSource {
			t.Fatalf("error kind = %v, want %v", err.Kind, ErrMoveWithoutSource)
		}
		if got, want := err.Error(), "tried to move nonexisting entry"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})
	t.Run("time move of untimed entry", func(t *testing.T) {
		src := "TASK x\nDATE 2024-03-10\nMOVE 2024-03-10 TO 14:00\n"
		err := evalError(t, src, march())
		if err.Kind != ErrTimedMoveWithoutTime {
			t.Fatalf("error kind = %v, want %v", err.Kind, ErrTimedMoveWithoutTime)
		}
		if got, want := err.Error(), "tried to move un-timed entry to new time"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})
}

func TestEvaluateRemind(t *testing.T) {
	src := "TASK Taxes\nREMIND -2w\nDATE 2024-04-15\n"
	entries := evalEntries(t, src, ModeRooted, span(ymd(2024, 4, 1), ymd(2024, 4, 30)))
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Remind == nil || *entries[0].Remind != ymd(2024, 4, 1) {
		t.Errorf("remind = %v, want %v", entries[0].Remind, ymd(2024, 4, 1))
	}
}

func TestEvaluateRemindReset(t *testing.T) {
	src := strings.Join([]string{
		"TASK Taxes",
		"REMIND -2w",
		"REMIND *",
		"DATE 2024-04-15",
	}, "\n") + "\n"
	entries := evalEntries(t, src, ModeRooted, span(ymd(2024, 4, 1), ymd(2024, 4, 30)))
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Remind != nil {
		t.Errorf("remind = %v, want nil", entries[0].Remind)
	}
}

func TestEvaluateRemindMustMoveBackwards(t *testing.T) {
	err := evalError(t, "TASK Taxes\nREMIND +2w\nDATE 2024-04-15\n",
		span(ymd(2024, 4, 1), ymd(2024, 4, 30)))
	if err.Kind != ErrRemindDidNotMoveBackwards {
		t.Fatalf("error kind = %v, want %v", err.Kind, ErrRemindDidNotMoveBackwards)
	}
	if err.From != ymd(2024, 4, 15) || err.To != ymd(2024, 4, 29) {
		t.Errorf("from %v to %v", err.From, err.To)
	}
}

func TestEvaluateDoneUndated(t *testing.T) {
	// An undated completion finishes the earliest open occurrence.
	src := strings.Join([]string{
		"TASK Take out the trash",
		"DATE 2024-03-10; +3d",
		"DONE [2024-03-11]",
	}, "\n") + "\n"
	entries := evalEntries(t, src, ModeRooted, span(ymd(2024, 3, 9), ymd(2024, 3, 16)))
	wantRoots := []caldate.Date{ymd(2024, 3, 10), ymd(2024, 3, 13), ymd(2024, 3, 16)}
	if got := entryRoots(entries); !slices.Equal(got, wantRoots) {
		t.Fatalf("roots = %v, want %v", got, wantRoots)
	}
	wantKinds := []EntryKind{EntryTaskDone, EntryTask, EntryTask}
	for i, e := range entries {
		if e.Kind != wantKinds[i] {
			t.Errorf("entry %d kind = %v, want %v", i, e.Kind, wantKinds[i])
		}
	}
	if entries[0].DoneAt == nil || *entries[0].DoneAt != ymd(2024, 3, 11) {
		t.Errorf("done at = %v, want %v", entries[0].DoneAt, ymd(2024, 3, 11))
	}
}

func TestEvaluateDoneDatedResumes(t *testing.T) {
	// After a dated completion the repeat resumes from the day after its
	// root, so the completed occurrence is not emitted again as open.
	src := strings.Join([]string{
		"TASK Take out the trash",
		"DATE 2024-03-10; +3d",
		"DONE [2024-03-12] 2024-03-11",
	}, "\n") + "\n"
	entries := evalEntries(t, src, ModeRooted, span(ymd(2024, 3, 9), ymd(2024, 3, 16)))
	wantRoots := []caldate.Date{ymd(2024, 3, 11), ymd(2024, 3, 13), ymd(2024, 3, 16)}
	if got := entryRoots(entries); !slices.Equal(got, wantRoots) {
		t.Fatalf("roots = %v, want %v", got, wantRoots)
	}
	wantKinds := []EntryKind{EntryTaskDone, EntryTask, EntryTask}
	for i, e := range entries {
		if e.Kind != wantKinds[i] {
			t.Errorf("entry %d kind = %v, want %v", i, e.Kind, wantKinds[i])
		}
	}
}

func TestEvaluateRepeatStartAtDone(t *testing.T) {
	// "; done +3d" anchors the repeat at the latest completion instead of
	// the declared start.
	src := strings.Join([]string{
		"TASK Stretch",
		"DATE 2024-03-10; done +3d",
		"DONE [2024-03-11] 2024-03-11",
	}, "\n") + "\n"
	entries := evalEntries(t, src, ModeRooted, span(ymd(2024, 3, 9), ymd(2024, 3, 18)))
	wantRoots := []caldate.Date{ymd(2024, 3, 11), ymd(2024, 3, 14), ymd(2024, 3, 17)}
	if got := entryRoots(entries); !slices.Equal(got, wantRoots) {
		t.Errorf("roots = %v, want %v", got, wantRoots)
	}
}

func TestEvaluateDoneAfterMove(t *testing.T) {
	// The completion's root refers to the moved occurrence.
	src := strings.Join([]string{
		"TASK Dentist",
		"DATE 2024-03-10",
		"MOVE 2024-03-10 TO 2024-03-12",
		"DONE [2024-03-12] 2024-03-12",
	}, "\n") + "\n"
	entries := evalEntries(t, src, ModeRooted, march())
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Kind != EntryTaskDone {
		t.Errorf("kind = %v, want %v", e.Kind, EntryTaskDone)
	}
	if got := e.Dates.Root(); got != ymd(2024, 3, 12) {
		t.Errorf("root = %v, want %v", got, ymd(2024, 3, 12))
	}
}

func TestEvaluateCanceled(t *testing.T) {
	src := strings.Join([]string{
		"TASK Conference",
		"DATE 2024-03-10",
		"CANCELED [2024-03-01] 2024-03-10",
	}, "\n") + "\n"
	entries := evalEntries(t, src, ModeRooted, march())
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Kind != EntryTaskCanceled {
		t.Errorf("kind = %v, want %v", entries[0].Kind, EntryTaskCanceled)
	}
}

func TestEvaluateDoneWithoutDates(t *testing.T) {
	src := "TASK Read Dune\nDONE [2024-03-12]\n"

	entries := evalEntries(t, src, ModeRelevant, march())
	if len(entries) != 1 {
		t.Fatalf("relevant: got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Dates != nil {
		t.Errorf("dates = %v, want nil", e.Dates)
	}
	if e.Kind != EntryTaskDone || e.DoneAt == nil || *e.DoneAt != ymd(2024, 3, 12) {
		t.Errorf("kind = %v, done at = %v", e.Kind, e.DoneAt)
	}

	if rooted := evalEntries(t, src, ModeRooted, march()); len(rooted) != 0 {
		t.Errorf("rooted: got %d entries, want 0", len(rooted))
	}
}

func TestEvaluateBirthday(t *testing.T) {
	entries := evalEntries(t, "NOTE Ada Lovelace\nBDATE 1990-05-21\n", ModeRooted,
		span(ymd(2024, 1, 1), ymd(2025, 12, 31)))
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	wantRoots := []caldate.Date{ymd(2024, 5, 21), ymd(2025, 5, 21)}
	wantAges := []int{34, 35}
	for i, e := range entries {
		if e.Kind != EntryBirthday {
			t.Errorf("entry %d kind = %v, want %v", i, e.Kind, EntryBirthday)
		}
		if got := e.Dates.Root(); got != wantRoots[i] {
			t.Errorf("entry %d root = %v, want %v", i, got, wantRoots[i])
		}
		if e.Age == nil || *e.Age != wantAges[i] {
			t.Errorf("entry %d age = %v, want %d", i, e.Age, wantAges[i])
		}
	}
}

func TestEvaluateBirthdayLeapDay(t *testing.T) {
	// In non-leap years a February 29 birthday spans February 28 to March 1.
	entries := evalEntries(t, "NOTE Bob\nBDATE ?-02-29\n", ModeRooted,
		span(ymd(2023, 1, 1), ymd(2024, 12, 31)))
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if want := NewDates(ymd(2023, 2, 28), ymd(2023, 3, 1)); *entries[0].Dates != want {
		t.Errorf("2023 dates = %v, want %v", entries[0].Dates, want)
	}
	if want := NewDates(ymd(2024, 2, 29), ymd(2024, 2, 29)); *entries[1].Dates != want {
		t.Errorf("2024 dates = %v, want %v", entries[1].Dates, want)
	}
	for i, e := range entries {
		if e.Age != nil {
			t.Errorf("entry %d age = %d, want unknown", i, *e.Age)
		}
	}
}

func TestEvaluateBirthdayBeforeBirth(t *testing.T) {
	entries := evalEntries(t, "NOTE Ada Lovelace\nBDATE 1990-05-21\n", ModeRooted,
		span(ymd(1989, 1, 1), ymd(1990, 12, 31)))
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if got := entries[0].Dates.Root(); got != ymd(1990, 5, 21) {
		t.Errorf("root = %v, want %v", got, ymd(1990, 5, 21))
	}
	if entries[0].Age == nil || *entries[0].Age != 0 {
		t.Errorf("age = %v, want 0", entries[0].Age)
	}
}

func TestEvaluateModes(t *testing.T) {
	src := strings.Join([]string{
		"TASK Old project",
		"DATE 2024-02-20 -- 2024-03-05",
		"",
		"TASK Ancient task",
		"DATE 2024-01-10",
		"",
		"TASK Early finish",
		"DATE 2024-01-05",
		"DONE [2024-03-03] 2024-01-05",
		"",
		"NOTE Past note",
		"DATE 2024-01-15",
		"",
		"TASK Current",
		"DATE 2024-03-10",
	}, "\n") + "\n"

	tests := []struct {
		mode EntryMode
		want []string
	}{
		{ModeRooted, []string{"Current"}},
		{ModeTouching, []string{"Old project", "Current"}},
		{ModeRelevant, []string{"Old project", "Ancient task", "Early finish", "Current"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			entries := evalEntries(t, src, tt.mode, march())
			if got := entryTitles(entries); !slices.Equal(got, tt.want) {
				t.Errorf("titles = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateDrainOrder(t *testing.T) {
	// Dated entries come out in root order regardless of declaration order,
	// and the undated completion picks the earliest open occurrence.
	src := strings.Join([]string{
		"TASK Chores",
		"DATE 2024-03-10",
		"DATE 2024-03-05",
		"DONE [2024-03-20]",
	}, "\n") + "\n"
	entries := evalEntries(t, src, ModeRooted, march())
	wantRoots := []caldate.Date{ymd(2024, 3, 5), ymd(2024, 3, 10)}
	if got := entryRoots(entries); !slices.Equal(got, wantRoots) {
		t.Fatalf("roots = %v, want %v", got, wantRoots)
	}
	if entries[0].Kind != EntryTaskDone {
		t.Errorf("earliest entry kind = %v, want %v", entries[0].Kind, EntryTaskDone)
	}
	if entries[1].Kind != EntryTask {
		t.Errorf("later entry kind = %v, want %v", entries[1].Kind, EntryTask)
	}
}

func TestEvaluateEntryFields(t *testing.T) {
	src := strings.Join([]string{
		"TASK Water the plants",
		"DATE 2024-03-10",
		"# Only the ones on the balcony.",
	}, "\n") + "\n"
	entries := evalEntries(t, src, ModeRooted, march())
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Title != "Water the plants" {
		t.Errorf("title = %q", e.Title)
	}
	if len(e.Desc) != 1 || e.Desc[0] != "Only the ones on the balcony." {
		t.Errorf("desc = %q", e.Desc)
	}
	if e.Source != (planfile.Source{File: 0, Command: 0}) {
		t.Errorf("source = %+v", e.Source)
	}
	if e.DoneAt != nil || e.Remind != nil || e.Age != nil {
		t.Errorf("unexpected extras: done at %v, remind %v, age %v", e.DoneAt, e.Remind, e.Age)
	}
}

func TestEvaluateErrorFile(t *testing.T) {
	cmds := parseCommands(t, "TASK Broken\nDATE 2024-03-10; -d\n")
	cmds[0].Source.File = 3
	_, err := Evaluate(cmds, ModeRooted, march())
	evalErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error is %T, want *Error", err)
	}
	if evalErr.File != 3 {
		t.Errorf("file = %d, want 3", evalErr.File)
	}
}
