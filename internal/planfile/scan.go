package planfile

import (
	"strconv"

	"github.com/planfile/planfile/internal/caldate"
)

// cursor walks the remainder of a single line during parsing. Offsets are
// tracked relative to the file so spans point into the original source.
type cursor struct {
	path string
	src  string // full file source, for error positions
	text string // the line being parsed
	base int    // offset of text[0] within src
	pos  int    // current offset within text
}

func (c *cursor) errorf(span Span, msg string) *ParseError {
	return newParseError(c.path, c.src, span, msg)
}

// spanFrom builds a span from a line-relative start offset to the current
// position.
func (c *cursor) spanFrom(start int) Span {
	return Span{Start: c.base + start, End: c.base + c.pos}
}

func (c *cursor) peek() byte {
	if c.pos >= len(c.text) {
		return 0
	}
	return c.text[c.pos]
}

func (c *cursor) skipSpaces() {
	for c.pos < len(c.text) && (c.text[c.pos] == ' ' || c.text[c.pos] == '\t') {
		c.pos++
	}
}

// atEnd reports whether only whitespace remains on the line.
func (c *cursor) atEnd() bool {
	save := c.pos
	c.skipSpaces()
	end := c.pos >= len(c.text)
	c.pos = save
	return end
}

// expectEnd fails unless only whitespace remains on the line.
func (c *cursor) expectEnd() *ParseError {
	if !c.atEnd() {
		c.skipSpaces()
		return c.errorf(c.spanFrom(c.pos), "expected end of line")
	}
	return nil
}

// literal consumes s if it appears at the current position.
func (c *cursor) literal(s string) bool {
	if len(c.text)-c.pos < len(s) || c.text[c.pos:c.pos+len(s)] != s {
		return false
	}
	c.pos += len(s)
	return true
}

// word consumes a run of letters.
func (c *cursor) word() string {
	start := c.pos
	for c.pos < len(c.text) && isLetter(c.text[c.pos]) {
		c.pos++
	}
	return c.text[start:c.pos]
}

// tryNumber consumes a run of digits. The parsed value is bounds-checked by
// the callers, which know what it is for.
func (c *cursor) tryNumber() (int, bool, *ParseError) {
	start := c.pos
	for c.pos < len(c.text) && isDigit(c.text[c.pos]) {
		c.pos++
	}
	if c.pos == start {
		return 0, false, nil
	}
	n, err := strconv.Atoi(c.text[start:c.pos])
	if err != nil {
		return 0, false, c.errorf(c.spanFrom(start), "invalid number")
	}
	return n, true, nil
}

// tryDatum consumes a yyyy-mm-dd date if one starts at the current position.
func (c *cursor) tryDatum() (caldate.Date, bool, *ParseError) {
	save := c.pos
	c.skipSpaces()
	start := c.pos

	year, ok, err := c.tryNumber()
	if err != nil || !ok || !c.literal("-") {
		c.pos = save
		return caldate.Date{}, false, err
	}
	month, ok, err := c.tryNumber()
	if err != nil || !ok || !c.literal("-") {
		c.pos = save
		return caldate.Date{}, false, err
	}
	day, ok, err := c.tryNumber()
	if err != nil || !ok {
		c.pos = save
		return caldate.Date{}, false, err
	}

	date, valid := caldate.NewDate(year, month, day)
	if !valid {
		return caldate.Date{}, false, c.errorf(c.spanFrom(start), "invalid date")
	}
	return date, true, nil
}

// datum is like tryDatum but fails when no date is present.
func (c *cursor) datum() (caldate.Date, Span, *ParseError) {
	c.skipSpaces()
	start := c.pos
	date, ok, err := c.tryDatum()
	if err != nil {
		return caldate.Date{}, Span{}, err
	}
	if !ok {
		return caldate.Date{}, Span{}, c.errorf(c.spanFrom(start), "expected date")
	}
	return date, c.spanFrom(start), nil
}

// tryTime consumes an hh:mm time if one starts at the current position.
func (c *cursor) tryTime() (caldate.Time, Span, bool, *ParseError) {
	save := c.pos
	c.skipSpaces()
	start := c.pos

	hour, ok, err := c.tryNumber()
	if err != nil || !ok || !c.literal(":") {
		c.pos = save
		return caldate.Time{}, Span{}, false, err
	}
	min, ok, err := c.tryNumber()
	if err != nil || !ok {
		c.pos = save
		return caldate.Time{}, Span{}, false, err
	}

	t, valid := caldate.NewTime(hour, min)
	if !valid {
		return caldate.Time{}, Span{}, false, c.errorf(c.spanFrom(start), "invalid time")
	}
	return t, c.spanFrom(start), true, nil
}

// tryDeltaStep consumes one delta step. sign threads the explicit sign of
// earlier steps: a step without its own sign inherits it, and a first step
// without a sign is an error.
func (c *cursor) tryDeltaStep(sign *int) (DeltaStep, bool, *ParseError) {
	save := c.pos
	c.skipSpaces()
	start := c.pos

	explicit := 0
	switch c.peek() {
	case '+':
		explicit = 1
		c.pos++
	case '-':
		explicit = -1
		c.pos++
	}

	amount, hasAmount, err := c.tryNumber()
	if err != nil {
		return DeltaStep{}, false, err
	}

	kind, weekday, ok := c.tryDeltaUnit()
	if !ok {
		c.pos = save
		return DeltaStep{}, false, nil
	}

	effective := explicit
	if effective == 0 {
		effective = *sign
	}
	if effective == 0 {
		return DeltaStep{}, false, c.errorf(c.spanFrom(start), "ambiguous sign")
	}
	if !hasAmount {
		amount = 1
	}
	*sign = effective

	return DeltaStep{
		Kind:    kind,
		Amount:  effective * amount,
		Weekday: weekday,
		Span:    c.spanFrom(start),
	}, true, nil
}

// tryDeltaUnit consumes a delta unit token. Longer tokens are matched first
// so "min" is not read as a month step.
func (c *cursor) tryDeltaUnit() (DeltaStepKind, caldate.Weekday, bool) {
	rest := c.text[c.pos:]
	if len(rest) >= 3 {
		if rest[:3] == "min" {
			c.pos += 3
			return StepMinute, 0, true
		}
		if wd, ok := caldate.ParseWeekday(rest[:3]); ok {
			c.pos += 3
			return StepWeekday, wd, true
		}
	}
	if len(rest) >= 1 {
		var kind DeltaStepKind
		switch rest[0] {
		case 'y':
			kind = StepYear
		case 'm':
			kind = StepMonth
		case 'M':
			kind = StepMonthReverse
		case 'd':
			kind = StepDay
		case 'w':
			kind = StepWeek
		case 'h':
			kind = StepHour
		default:
			return 0, 0, false
		}
		c.pos++
		return kind, 0, true
	}
	return 0, 0, false
}

// tryDelta consumes a sequence of delta steps.
func (c *cursor) tryDelta() (*Delta, *ParseError) {
	var steps []DeltaStep
	sign := 0
	for {
		step, ok, err := c.tryDeltaStep(&sign)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return nil, nil
	}
	return &Delta{
		Steps: steps,
		Span:  steps[0].Span.Join(steps[len(steps)-1].Span),
	}, nil
}

// delta is like tryDelta but fails when no step is present.
func (c *cursor) delta() (*Delta, *ParseError) {
	c.skipSpaces()
	start := c.pos
	d, err := c.tryDelta()
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, c.errorf(c.spanFrom(start), "expected delta")
	}
	return d, nil
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
