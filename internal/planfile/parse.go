package planfile

import (
	"fmt"
	"strings"

	"github.com/planfile/planfile/internal/caldate"
)

// ParseError is a syntax error with its position in the source file.
type ParseError struct {
	Path string
	Line int
	Col  int
	Span Span
	Msg  string
}

func newParseError(path, src string, span Span, msg string) *ParseError {
	line, col := span.LineCol(src)
	return &ParseError{Path: path, Line: line, Col: col, Span: span, Msg: msg}
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Col, e.Msg)
}

// ParseFile parses a plan file's source text. path is only used in error
// messages.
func ParseFile(path, src string) (File, error) {
	p := &parser{path: path, src: src}
	if err := p.run(); err != nil {
		return File{}, err
	}
	return p.file, nil
}

// parser consumes the file line by line. A TASK, NOTE or LOG line opens a
// command that collects the statement, completion and description lines
// below it; a blank line closes it. Within a task, statements must come
// before completions, and completions before the description, matching what
// the formatter writes back.
type parser struct {
	path string
	src  string
	file File

	cur     Command
	curSpan Span
	section int // 0 statements, 1 completions, 2 description
}

func (p *parser) run() *ParseError {
	offset := 0
	for _, raw := range strings.Split(p.src, "\n") {
		text := strings.TrimSuffix(raw, "\r")
		if err := p.line(text, offset); err != nil {
			return err
		}
		offset += len(raw) + 1
	}
	p.close()
	return nil
}

func (p *parser) close() {
	if p.cur != nil {
		p.file.Commands = append(p.file.Commands, FileCommand{Span: p.curSpan, Command: p.cur})
		p.cur = nil
	}
}

func (p *parser) open(cmd Command, span Span) {
	p.close()
	p.cur = cmd
	p.curSpan = span
	p.section = 0
}

// attach extends the open command's span to include the current line.
func (p *parser) attach(c *cursor) {
	p.curSpan.End = c.base + len(c.text)
}

func (p *parser) line(text string, offset int) *ParseError {
	c := &cursor{path: p.path, src: p.src, text: text, base: offset}

	if c.atEnd() {
		p.close()
		return nil
	}
	c.skipSpaces()

	if c.peek() == '#' {
		return p.descLine(c)
	}

	kwStart := c.pos
	keyword := c.word()
	kwSpan := c.spanFrom(kwStart)
	lineSpan := Span{Start: offset, End: offset + len(text)}

	switch keyword {
	case "INCLUDE":
		return p.singleLine(c, lineSpan, parseInclude)
	case "TIMEZONE":
		return p.singleLine(c, lineSpan, parseTimezone)
	case "CAPTURE":
		return p.singleLine(c, lineSpan, func(c *cursor) (Command, *ParseError) {
			return &Capture{}, nil
		})
	case "LOG":
		date, span, err := c.datum()
		if err != nil {
			return err
		}
		if err := c.expectEnd(); err != nil {
			return err
		}
		p.open(&Log{Date: date, DateSpan: span}, lineSpan)
		p.section = 2
		return nil
	case "TASK":
		title, err := parseTitle(c)
		if err != nil {
			return err
		}
		p.open(&Task{Title: title}, lineSpan)
		return nil
	case "NOTE":
		title, err := parseTitle(c)
		if err != nil {
			return err
		}
		p.open(&Note{Title: title}, lineSpan)
		return nil
	case "DATE", "BDATE", "FROM", "UNTIL", "EXCEPT", "MOVE", "REMIND":
		return p.statementLine(c, keyword, kwStart, kwSpan)
	case "DONE", "CANCELED":
		return p.doneLine(c, keyword == "CANCELED", kwSpan)
	default:
		if p.cur == nil {
			return c.errorf(kwSpan, "expected command")
		}
		return c.errorf(kwSpan, "expected statement")
	}
}

func (p *parser) singleLine(c *cursor, span Span, parse func(*cursor) (Command, *ParseError)) *ParseError {
	cmd, err := parse(c)
	if err != nil {
		return err
	}
	p.open(cmd, span)
	p.close()
	return nil
}

func (p *parser) descLine(c *cursor) *ParseError {
	if p.cur == nil {
		return c.errorf(c.spanFrom(c.pos), "expected command")
	}
	c.pos++ // '#'
	if c.peek() == ' ' {
		c.pos++
	}
	content := c.text[c.pos:]
	p.section = 2

	switch cmd := p.cur.(type) {
	case *Task:
		cmd.Desc = append(cmd.Desc, content)
	case *Note:
		cmd.Desc = append(cmd.Desc, content)
	case *Log:
		cmd.Desc = append(cmd.Desc, content)
	default:
		return c.errorf(c.spanFrom(0), "expected command")
	}
	p.attach(c)
	return nil
}

func (p *parser) statementLine(c *cursor, keyword string, kwStart int, kwSpan Span) *ParseError {
	var statements *[]Statement
	switch cmd := p.cur.(type) {
	case *Task:
		if keyword == "BDATE" {
			return c.errorf(kwSpan, "birthday specs are only allowed in notes")
		}
		statements = &cmd.Statements
	case *Note:
		statements = &cmd.Statements
	default:
		return c.errorf(kwSpan, "statement without task or note")
	}
	if p.section > 0 {
		return c.errorf(kwSpan, "statement after completion or description")
	}

	stmt, err := parseStatement(c, keyword, kwStart)
	if err != nil {
		return err
	}
	if err := c.expectEnd(); err != nil {
		return err
	}
	*statements = append(*statements, stmt)
	p.attach(c)
	return nil
}

func (p *parser) doneLine(c *cursor, canceled bool, kwSpan Span) *ParseError {
	task, ok := p.cur.(*Task)
	if !ok {
		if _, isNote := p.cur.(*Note); isNote {
			return c.errorf(kwSpan, "completions are only allowed in tasks")
		}
		return c.errorf(kwSpan, "completion without task")
	}
	if p.section > 1 {
		return c.errorf(kwSpan, "completion after description")
	}
	p.section = 1

	done, err := parseDone(c, canceled)
	if err != nil {
		return err
	}
	if err := c.expectEnd(); err != nil {
		return err
	}
	task.Dones = append(task.Dones, done)
	p.attach(c)
	return nil
}

func parseTitle(c *cursor) (string, *ParseError) {
	c.skipSpaces()
	title := strings.TrimRight(c.text[c.pos:], " \t")
	if title == "" {
		return "", c.errorf(c.spanFrom(c.pos), "expected title")
	}
	c.pos = len(c.text)
	return title, nil
}

func parseInclude(c *cursor) (Command, *ParseError) {
	c.skipSpaces()
	start := c.pos
	path := strings.TrimRight(c.text[c.pos:], " \t")
	if path == "" {
		return nil, c.errorf(c.spanFrom(start), "expected file path")
	}
	c.pos = start + len(path)
	return &Include{Path: path, PathSpan: c.spanFrom(start)}, nil
}

func parseTimezone(c *cursor) (Command, *ParseError) {
	c.skipSpaces()
	start := c.pos
	name := strings.TrimRight(c.text[c.pos:], " \t")
	if name == "" {
		return nil, c.errorf(c.spanFrom(start), "expected timezone name")
	}
	c.pos = start + len(name)
	return &Timezone{Name: name, NameSpan: c.spanFrom(start)}, nil
}

func parseStatement(c *cursor, keyword string, kwStart int) (Statement, *ParseError) {
	switch keyword {
	case "DATE":
		spec, err := parseSpec(c)
		if err != nil {
			return nil, err
		}
		return &DateStmt{Spec: spec}, nil
	case "BDATE":
		spec, err := parseBirthdaySpec(c)
		if err != nil {
			return nil, err
		}
		return &BDateStmt{Spec: spec}, nil
	case "FROM":
		date, err := parseOptionalDatum(c)
		if err != nil {
			return nil, err
		}
		return &FromStmt{Date: date}, nil
	case "UNTIL":
		date, err := parseOptionalDatum(c)
		if err != nil {
			return nil, err
		}
		return &UntilStmt{Date: date}, nil
	case "EXCEPT":
		date, _, err := c.datum()
		if err != nil {
			return nil, err
		}
		return &ExceptStmt{Date: date}, nil
	case "MOVE":
		return parseMove(c, kwStart)
	case "REMIND":
		return parseRemind(c)
	default:
		return nil, c.errorf(c.spanFrom(kwStart), "expected statement")
	}
}

// parseOptionalDatum handles the "FROM *" and "FROM 2024-03-10" argument
// forms shared by FROM and UNTIL.
func parseOptionalDatum(c *cursor) (*caldate.Date, *ParseError) {
	c.skipSpaces()
	if c.literal("*") {
		return nil, nil
	}
	date, _, err := c.datum()
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func parseMove(c *cursor, kwStart int) (Statement, *ParseError) {
	from, _, err := c.datum()
	if err != nil {
		return nil, err
	}
	c.skipSpaces()
	toStart := c.pos
	if c.word() != "TO" {
		return nil, c.errorf(c.spanFrom(toStart), "expected TO")
	}

	stmt := &MoveStmt{From: from}
	if date, ok, err := c.tryDatum(); err != nil {
		return nil, err
	} else if ok {
		stmt.To = &date
	}
	if t, _, ok, err := c.tryTime(); err != nil {
		return nil, err
	} else if ok {
		stmt.ToTime = &t
	}
	if stmt.To == nil && stmt.ToTime == nil {
		c.skipSpaces()
		return nil, c.errorf(c.spanFrom(c.pos), "expected target date or time")
	}
	stmt.Span = Span{Start: c.base + kwStart, End: c.base + c.pos}
	return stmt, nil
}

func parseRemind(c *cursor) (Statement, *ParseError) {
	c.skipSpaces()
	if c.literal("*") {
		return &RemindStmt{}, nil
	}
	delta, err := c.delta()
	if err != nil {
		return nil, err
	}
	return &RemindStmt{Delta: delta}, nil
}

func parseDone(c *cursor, canceled bool) (Done, *ParseError) {
	done := Done{Canceled: canceled}

	c.skipSpaces()
	if !c.literal("[") {
		return done, c.errorf(c.spanFrom(c.pos), "expected [")
	}
	doneAt, _, err := c.datum()
	if err != nil {
		return done, err
	}
	done.DoneAt = doneAt
	c.skipSpaces()
	if !c.literal("]") {
		return done, c.errorf(c.spanFrom(c.pos), "expected ]")
	}

	if c.atEnd() {
		return done, nil
	}
	date, err := parseDoneDate(c)
	if err != nil {
		return done, err
	}
	done.Date = date
	return done, nil
}

func parseDoneDate(c *cursor) (*DoneDate, *ParseError) {
	date := &DoneDate{}

	root, _, err := c.datum()
	if err != nil {
		return nil, err
	}
	date.Root = root
	if t, _, ok, err := c.tryTime(); err != nil {
		return nil, err
	} else if ok {
		date.RootTime = &t
	}

	save := c.pos
	c.skipSpaces()
	if !c.literal("--") {
		c.pos = save
		return date, nil
	}

	if date.RootTime == nil {
		// date -- date
		other, _, err := c.datum()
		if err != nil {
			return nil, err
		}
		date.Other = &other
		return date, nil
	}

	// date time -- time, or date time -- date time
	if other, ok, err := c.tryDatum(); err != nil {
		return nil, err
	} else if ok {
		date.Other = &other
		t, _, ok, err := c.tryTime()
		if err != nil {
			return nil, err
		}
		if !ok {
			c.skipSpaces()
			return nil, c.errorf(c.spanFrom(c.pos), "expected time")
		}
		date.OtherTime = &t
		return date, nil
	}
	t, _, ok, err := c.tryTime()
	if err != nil {
		return nil, err
	}
	if !ok {
		c.skipSpaces()
		return nil, c.errorf(c.spanFrom(c.pos), "expected date or time")
	}
	date.OtherTime = &t
	return date, nil
}

func parseSpec(c *cursor) (Spec, *ParseError) {
	c.skipSpaces()
	switch {
	case c.peek() == '(' || c.peek() == '*':
		return parseFormulaSpec(c)
	case isDigit(c.peek()):
		return parseDateSpec(c)
	case isLetter(c.peek()):
		return parseWeekdaySpec(c)
	default:
		return nil, c.errorf(c.spanFrom(c.pos), "expected date, weekday or formula")
	}
}

func parseDateSpec(c *cursor) (Spec, *ParseError) {
	spec := &DateSpec{}

	start, _, err := c.datum()
	if err != nil {
		return nil, err
	}
	spec.Start = start
	if spec.StartDelta, err = c.tryDelta(); err != nil {
		return nil, err
	}
	if t, _, ok, err := c.tryTime(); err != nil {
		return nil, err
	} else if ok {
		spec.StartTime = &t
	}

	save := c.pos
	c.skipSpaces()
	sepStart := c.pos
	if c.literal("--") {
		if date, ok, err := c.tryDatum(); err != nil {
			return nil, err
		} else if ok {
			spec.End = &date
		}
		if spec.EndDelta, err = c.tryDelta(); err != nil {
			return nil, err
		}
		if t, span, ok, err := c.tryTime(); err != nil {
			return nil, err
		} else if ok {
			spec.EndTime = &t
			spec.EndTimeSpan = span
		}
		if spec.End == nil && spec.EndDelta == nil && spec.EndTime == nil {
			return nil, c.errorf(c.spanFrom(sepStart), "expected end date, delta or time")
		}
	} else {
		c.pos = save
	}

	if spec.Repeat, err = parseRepeat(c); err != nil {
		return nil, err
	}
	return spec, nil
}

func parseRepeat(c *cursor) (*Repeat, *ParseError) {
	save := c.pos
	c.skipSpaces()
	if !c.literal(";") {
		c.pos = save
		return nil, nil
	}

	repeat := &Repeat{}
	c.skipSpaces()
	wordStart := c.pos
	if c.word() == "done" {
		repeat.StartAtDone = true
	} else {
		c.pos = wordStart
	}
	delta, err := c.delta()
	if err != nil {
		return nil, err
	}
	repeat.Delta = *delta
	return repeat, nil
}

func parseWeekdaySpec(c *cursor) (Spec, *ParseError) {
	spec := &WeekdaySpec{}

	c.skipSpaces()
	start := c.pos
	wd, ok := caldate.ParseWeekday(c.word())
	if !ok {
		return nil, c.errorf(c.spanFrom(start), "expected weekday")
	}
	spec.Start = wd
	if t, _, ok, err := c.tryTime(); err != nil {
		return nil, err
	} else if ok {
		spec.StartTime = &t
	}

	save := c.pos
	c.skipSpaces()
	sepStart := c.pos
	if !c.literal("--") {
		c.pos = save
		return spec, nil
	}

	c.skipSpaces()
	if isLetter(c.peek()) {
		endStart := c.pos
		wd, ok := caldate.ParseWeekday(c.word())
		if !ok {
			return nil, c.errorf(c.spanFrom(endStart), "expected weekday")
		}
		spec.End = &wd
		spec.EndSpan = c.spanFrom(endStart)
	}
	var err *ParseError
	if spec.EndDelta, err = c.tryDelta(); err != nil {
		return nil, err
	}
	if t, span, ok, err := c.tryTime(); err != nil {
		return nil, err
	} else if ok {
		spec.EndTime = &t
		spec.EndTimeSpan = span
	}
	if spec.End == nil && spec.EndDelta == nil && spec.EndTime == nil {
		return nil, c.errorf(c.spanFrom(sepStart), "expected end weekday, delta or time")
	}
	return spec, nil
}

func parseFormulaSpec(c *cursor) (Spec, *ParseError) {
	spec := &FormulaSpec{}

	c.skipSpaces()
	if !c.literal("*") {
		if !c.literal("(") {
			return nil, c.errorf(c.spanFrom(c.pos), "expected formula")
		}
		expr, err := parseExpr(c)
		if err != nil {
			return nil, err
		}
		c.skipSpaces()
		if !c.literal(")") {
			return nil, c.errorf(c.spanFrom(c.pos), "expected )")
		}
		spec.Start = expr
	}

	var err *ParseError
	if spec.StartDelta, err = c.tryDelta(); err != nil {
		return nil, err
	}
	if t, _, ok, err := c.tryTime(); err != nil {
		return nil, err
	} else if ok {
		spec.StartTime = &t
	}

	save := c.pos
	c.skipSpaces()
	sepStart := c.pos
	if !c.literal("--") {
		c.pos = save
		return spec, nil
	}
	if spec.EndDelta, err = c.tryDelta(); err != nil {
		return nil, err
	}
	if t, span, ok, err := c.tryTime(); err != nil {
		return nil, err
	} else if ok {
		spec.EndTime = &t
		spec.EndTimeSpan = span
	}
	if spec.EndDelta == nil && spec.EndTime == nil {
		return nil, c.errorf(c.spanFrom(sepStart), "expected end delta or time")
	}
	return spec, nil
}

func parseBirthdaySpec(c *cursor) (BirthdaySpec, *ParseError) {
	spec := BirthdaySpec{}

	c.skipSpaces()
	start := c.pos
	year := 0
	if c.literal("?") {
		spec.YearKnown = false
	} else {
		y, ok, err := c.tryNumber()
		if err != nil {
			return spec, err
		}
		if !ok {
			return spec, c.errorf(c.spanFrom(start), "expected date")
		}
		year = y
		spec.YearKnown = true
	}
	if !c.literal("-") {
		return spec, c.errorf(c.spanFrom(start), "expected date")
	}
	month, ok, err := c.tryNumber()
	if err != nil {
		return spec, err
	}
	if !ok || !c.literal("-") {
		return spec, c.errorf(c.spanFrom(start), "expected date")
	}
	day, ok, err := c.tryNumber()
	if err != nil {
		return spec, err
	}
	if !ok {
		return spec, c.errorf(c.spanFrom(start), "expected date")
	}

	// Year 0 is a leap year, so ?-02-29 passes validation.
	date, valid := caldate.NewDate(year, month, day)
	if !valid {
		return spec, c.errorf(c.spanFrom(start), "invalid date")
	}
	spec.Date = date
	return spec, nil
}

// Binary operators by precedence level, loosest first. Within a level,
// longer tokens come first so "<=" is not read as "<".
var binaryOps = [][]struct {
	tok string
	op  ExprOp
}{
	{{"|", OpOr}, {"^", OpXor}},
	{{"&", OpAnd}},
	{{"!=", OpNeq}, {"=", OpEq}},
	{{"<=", OpLte}, {">=", OpGte}, {"<", OpLt}, {">", OpGt}},
	{{"*", OpMul}, {"/", OpDiv}, {"%", OpMod}},
	{{"+", OpAdd}, {"-", OpSub}},
}

func parseExpr(c *cursor) (*Expr, *ParseError) {
	return parseBinary(c, 0)
}

func parseBinary(c *cursor, level int) (*Expr, *ParseError) {
	if level == len(binaryOps) {
		return parseUnary(c)
	}

	left, err := parseBinary(c, level+1)
	if err != nil {
		return nil, err
	}
	for {
		save := c.pos
		c.skipSpaces()
		var op ExprOp
		matched := false
		for _, cand := range binaryOps[level] {
			if c.literal(cand.tok) {
				op = cand.op
				matched = true
				break
			}
		}
		if !matched {
			c.pos = save
			return left, nil
		}
		right, err := parseBinary(c, level+1)
		if err != nil {
			return nil, err
		}
		left = &Expr{Op: op, Left: left, Right: right, Span: left.Span.Join(right.Span)}
	}
}

func parseUnary(c *cursor) (*Expr, *ParseError) {
	c.skipSpaces()
	start := c.pos
	if c.literal("-") {
		inner, err := parseUnary(c)
		if err != nil {
			return nil, err
		}
		return &Expr{Op: OpNeg, Left: inner, Span: c.spanFrom(start)}, nil
	}
	if c.literal("!") {
		inner, err := parseUnary(c)
		if err != nil {
			return nil, err
		}
		return &Expr{Op: OpNot, Left: inner, Span: c.spanFrom(start)}, nil
	}
	return parseAtom(c)
}

func parseAtom(c *cursor) (*Expr, *ParseError) {
	c.skipSpaces()
	start := c.pos

	if c.literal("(") {
		inner, err := parseExpr(c)
		if err != nil {
			return nil, err
		}
		c.skipSpaces()
		if !c.literal(")") {
			return nil, c.errorf(c.spanFrom(c.pos), "expected )")
		}
		return &Expr{Op: OpParen, Left: inner, Span: c.spanFrom(start)}, nil
	}

	if isDigit(c.peek()) {
		n, _, err := c.tryNumber()
		if err != nil {
			return nil, err
		}
		return &Expr{Op: OpLit, Lit: int64(n), Span: c.spanFrom(start)}, nil
	}

	if isLetter(c.peek()) {
		word := c.word()
		v, ok := ParseVar(word)
		if !ok {
			return nil, c.errorf(c.spanFrom(start), "unknown variable")
		}
		return &Expr{Op: OpVar, Var: v, Span: c.spanFrom(start)}, nil
	}

	return nil, c.errorf(c.spanFrom(c.pos), "expected expression")
}
