package planfile

import (
	"fmt"
	"sort"
	"strings"
)

// FormatFile renders a file back into canonical source text. Commands whose
// index is in removed are dropped. Includes come first sorted by path, then
// the timezone, captures and logs sorted by date, then tasks and notes in
// their original order.
func FormatFile(f *File, removed map[int]bool) string {
	var commands []Command
	for i, fc := range f.Commands {
		if removed[i] {
			continue
		}
		commands = append(commands, fc.Command)
	}
	sortCommands(commands)

	var b strings.Builder
	for i, cmd := range commands {
		writeCommand(&b, cmd)
		if i+1 == len(commands) {
			continue
		}
		// Consecutive includes stay together, everything else gets a
		// blank line.
		_, currInclude := cmd.(*Include)
		_, nextInclude := commands[i+1].(*Include)
		if !(currInclude && nextInclude) {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// FormatCommand renders a single command in canonical form.
func FormatCommand(cmd Command) string {
	var b strings.Builder
	writeCommand(&b, cmd)
	return b.String()
}

// FormatDelta renders a delta in canonical form.
func FormatDelta(d Delta) string {
	var b strings.Builder
	writeDelta(&b, d)
	return b.String()
}

func commandRank(cmd Command) int {
	switch cmd.(type) {
	case *Include:
		return 0
	case *Timezone:
		return 1
	case *Capture:
		return 2
	case *Log:
		return 3
	default:
		return 4
	}
}

func sortCommands(commands []Command) {
	sort.SliceStable(commands, func(i, j int) bool {
		ri, rj := commandRank(commands[i]), commandRank(commands[j])
		if ri != rj {
			return ri < rj
		}
		switch a := commands[i].(type) {
		case *Include:
			return a.Path < commands[j].(*Include).Path
		case *Log:
			return a.Date.Before(commands[j].(*Log).Date)
		default:
			return false
		}
	})
}

func writeCommand(b *strings.Builder, cmd Command) {
	switch cmd := cmd.(type) {
	case *Include:
		fmt.Fprintf(b, "INCLUDE %s\n", cmd.Path)
	case *Timezone:
		fmt.Fprintf(b, "TIMEZONE %s\n", cmd.Name)
	case *Capture:
		b.WriteString("CAPTURE\n")
	case *Log:
		fmt.Fprintf(b, "LOG %s\n", cmd.Date)
		writeDesc(b, cmd.Desc)
	case *Task:
		fmt.Fprintf(b, "TASK %s\n", cmd.Title)
		for _, stmt := range cmd.Statements {
			writeStatement(b, stmt)
		}
		for _, done := range cmd.Dones {
			writeDone(b, done)
		}
		writeDesc(b, cmd.Desc)
	case *Note:
		fmt.Fprintf(b, "NOTE %s\n", cmd.Title)
		for _, stmt := range cmd.Statements {
			writeStatement(b, stmt)
		}
		writeDesc(b, cmd.Desc)
	}
}

func writeDesc(b *strings.Builder, desc []string) {
	for _, line := range desc {
		if line == "" {
			b.WriteString("#\n")
		} else {
			fmt.Fprintf(b, "# %s\n", line)
		}
	}
}

func writeStatement(b *strings.Builder, stmt Statement) {
	switch stmt := stmt.(type) {
	case *DateStmt:
		fmt.Fprintf(b, "DATE %s\n", formatSpec(stmt.Spec))
	case *BDateStmt:
		fmt.Fprintf(b, "BDATE %s\n", formatBirthdaySpec(stmt.Spec))
	case *FromStmt:
		if stmt.Date != nil {
			fmt.Fprintf(b, "FROM %s\n", stmt.Date)
		} else {
			b.WriteString("FROM *\n")
		}
	case *UntilStmt:
		if stmt.Date != nil {
			fmt.Fprintf(b, "UNTIL %s\n", stmt.Date)
		} else {
			b.WriteString("UNTIL *\n")
		}
	case *ExceptStmt:
		fmt.Fprintf(b, "EXCEPT %s\n", stmt.Date)
	case *MoveStmt:
		fmt.Fprintf(b, "MOVE %s TO", stmt.From)
		if stmt.To != nil {
			fmt.Fprintf(b, " %s", stmt.To)
		}
		if stmt.ToTime != nil {
			fmt.Fprintf(b, " %s", stmt.ToTime)
		}
		b.WriteByte('\n')
	case *RemindStmt:
		if stmt.Delta != nil {
			fmt.Fprintf(b, "REMIND %s\n", FormatDelta(*stmt.Delta))
		} else {
			b.WriteString("REMIND *\n")
		}
	}
}

func writeDone(b *strings.Builder, done Done) {
	keyword := "DONE"
	if done.Canceled {
		keyword = "CANCELED"
	}
	fmt.Fprintf(b, "%s [%s]", keyword, done.DoneAt)
	if done.Date != nil {
		fmt.Fprintf(b, " %s", formatDoneDate(*done.Date))
	}
	b.WriteByte('\n')
}

func formatDoneDate(d DoneDate) string {
	d = d.Simplified()

	var b strings.Builder
	fmt.Fprintf(&b, "%s", d.Root)
	if d.RootTime != nil {
		fmt.Fprintf(&b, " %s", d.RootTime)
	}
	if d.Other == nil && d.OtherTime == nil {
		return b.String()
	}
	b.WriteString(" --")
	if d.Other != nil {
		fmt.Fprintf(&b, " %s", d.Other)
	}
	if d.OtherTime != nil {
		fmt.Fprintf(&b, " %s", d.OtherTime)
	}
	return b.String()
}

func formatSpec(spec Spec) string {
	var b strings.Builder
	switch spec := spec.(type) {
	case *DateSpec:
		fmt.Fprintf(&b, "%s", spec.Start)
		if spec.StartDelta != nil {
			fmt.Fprintf(&b, " %s", FormatDelta(*spec.StartDelta))
		}
		if spec.StartTime != nil {
			fmt.Fprintf(&b, " %s", spec.StartTime)
		}
		if spec.End != nil || spec.EndDelta != nil || spec.EndTime != nil {
			b.WriteString(" --")
			if spec.End != nil {
				fmt.Fprintf(&b, " %s", spec.End)
			}
			if spec.EndDelta != nil {
				fmt.Fprintf(&b, " %s", FormatDelta(*spec.EndDelta))
			}
			if spec.EndTime != nil {
				fmt.Fprintf(&b, " %s", spec.EndTime)
			}
		}
		if spec.Repeat != nil {
			b.WriteString("; ")
			if spec.Repeat.StartAtDone {
				b.WriteString("done ")
			}
			b.WriteString(FormatDelta(spec.Repeat.Delta))
		}
	case *WeekdaySpec:
		b.WriteString(spec.Start.Name())
		if spec.StartTime != nil {
			fmt.Fprintf(&b, " %s", spec.StartTime)
		}
		if spec.End != nil || spec.EndDelta != nil || spec.EndTime != nil {
			b.WriteString(" --")
			if spec.End != nil {
				fmt.Fprintf(&b, " %s", spec.End.Name())
			}
			if spec.EndDelta != nil {
				fmt.Fprintf(&b, " %s", FormatDelta(*spec.EndDelta))
			}
			if spec.EndTime != nil {
				fmt.Fprintf(&b, " %s", spec.EndTime)
			}
		}
	case *FormulaSpec:
		if spec.Start != nil {
			fmt.Fprintf(&b, "(%s)", formatExpr(spec.Start))
		} else {
			b.WriteString("*")
		}
		if spec.StartDelta != nil {
			fmt.Fprintf(&b, " %s", FormatDelta(*spec.StartDelta))
		}
		if spec.StartTime != nil {
			fmt.Fprintf(&b, " %s", spec.StartTime)
		}
		if spec.EndDelta != nil || spec.EndTime != nil {
			b.WriteString(" --")
			if spec.EndDelta != nil {
				fmt.Fprintf(&b, " %s", FormatDelta(*spec.EndDelta))
			}
			if spec.EndTime != nil {
				fmt.Fprintf(&b, " %s", spec.EndTime)
			}
		}
	}
	return b.String()
}

func formatBirthdaySpec(spec BirthdaySpec) string {
	if spec.YearKnown {
		return spec.Date.String()
	}
	return fmt.Sprintf("?-%02d-%02d", spec.Date.Month, spec.Date.Day)
}

func writeDelta(b *strings.Builder, d Delta) {
	sign := 0
	for _, step := range d.Steps {
		amount := step.Amount
		stepSign := 1
		if amount < 0 {
			stepSign = -1
		}
		if sign == 0 || (amount != 0 && stepSign != sign) {
			if amount >= 0 {
				b.WriteByte('+')
			} else {
				b.WriteByte('-')
			}
		}
		sign = stepSign
		abs := amount
		if abs < 0 {
			abs = -abs
		}
		if abs != 1 {
			fmt.Fprintf(b, "%d", abs)
		}
		b.WriteString(step.Name())
	}
}

var exprOpTokens = map[ExprOp]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpMod: "%",
	OpEq:  "=",
	OpNeq: "!=",
	OpLt:  "<",
	OpLte: "<=",
	OpGt:  ">",
	OpGte: ">=",
	OpAnd: "&",
	OpOr:  "|",
	OpXor: "^",
}

func formatExpr(e *Expr) string {
	switch e.Op {
	case OpLit:
		return fmt.Sprintf("%d", e.Lit)
	case OpVar:
		return e.Var.Name()
	case OpParen:
		return fmt.Sprintf("(%s)", formatExpr(e.Left))
	case OpNeg:
		return fmt.Sprintf("-%s", formatExpr(e.Left))
	case OpNot:
		return fmt.Sprintf("!%s", formatExpr(e.Left))
	default:
		return fmt.Sprintf("%s %s %s", formatExpr(e.Left), exprOpTokens[e.Op], formatExpr(e.Right))
	}
}
