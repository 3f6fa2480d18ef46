package planfile

import (
	"strconv"
	"strings"

	"github.com/planfile/planfile/internal/caldate"
)

// Datum is a date written on the command line: "today" or an explicit date.
type Datum struct {
	Today bool
	Date  caldate.Date
}

// DateArg is a command line date: a datum optionally followed by a delta,
// e.g. "today+2d".
type DateArg struct {
	Datum Datum
	Delta *Delta
}

// RangeArg is a command line date range. The end part is introduced by "--"
// and carries a datum and/or a delta; a missing end datum anchors the end at
// the resolved start.
type RangeArg struct {
	Start      Datum
	StartDelta *Delta
	End        *Datum
	EndDelta   *Delta
}

// IdentArg identifies an entry for done/cancel/edit/show: a display number
// from the last rendered timeline, or a date argument naming a log entry.
type IdentArg struct {
	IsNumber bool
	Number   int
	Date     DateArg
}

// ParseDateArg parses a command line date argument.
func ParseDateArg(s string) (DateArg, error) {
	c := argCursor(s)
	arg, err := parseDateArg(c)
	if err != nil {
		return DateArg{}, err
	}
	if err := c.expectEnd(); err != nil {
		return DateArg{}, err
	}
	return arg, nil
}

// ParseRangeArg parses a command line range argument.
func ParseRangeArg(s string) (RangeArg, error) {
	c := argCursor(s)
	arg := RangeArg{}

	start, err := parseDatum(c)
	if err != nil {
		return RangeArg{}, err
	}
	arg.Start = start

	delta, perr := c.tryDelta()
	if perr != nil {
		return RangeArg{}, perr
	}
	arg.StartDelta = delta

	save := c.pos
	c.skipSpaces()
	if c.literal("--") {
		c.skipSpaces()
		if isLetter(c.peek()) || isDigit(c.peek()) {
			end, err := parseDatum(c)
			if err != nil {
				return RangeArg{}, err
			}
			arg.End = &end
		}
		delta, perr := c.tryDelta()
		if perr != nil {
			return RangeArg{}, perr
		}
		arg.EndDelta = delta
		if arg.End == nil && arg.EndDelta == nil {
			return RangeArg{}, c.errorf(c.spanFrom(c.pos), "expected end date or delta")
		}
	} else {
		c.pos = save
	}

	if perr := c.expectEnd(); perr != nil {
		return RangeArg{}, perr
	}
	return arg, nil
}

// ParseIdentArg parses an entry identifier argument.
func ParseIdentArg(s string) (IdentArg, error) {
	if t := strings.TrimSpace(s); t != "" && allDigits(t) {
		if n, err := strconv.Atoi(t); err == nil {
			return IdentArg{IsNumber: true, Number: n}, nil
		}
	}
	date, err := ParseDateArg(s)
	if err != nil {
		return IdentArg{}, err
	}
	return IdentArg{Date: date}, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func argCursor(s string) *cursor {
	return &cursor{src: s, text: s}
}

func parseDatum(c *cursor) (Datum, error) {
	c.skipSpaces()
	start := c.pos
	if isLetter(c.peek()) {
		if c.word() != "today" {
			return Datum{}, c.errorf(c.spanFrom(start), "expected date or today")
		}
		return Datum{Today: true}, nil
	}
	date, _, err := c.datum()
	if err != nil {
		return Datum{}, err
	}
	return Datum{Date: date}, nil
}

func parseDateArg(c *cursor) (DateArg, error) {
	datum, err := parseDatum(c)
	if err != nil {
		return DateArg{}, err
	}
	delta, perr := c.tryDelta()
	if perr != nil {
		return DateArg{}, perr
	}
	return DateArg{Datum: datum, Delta: delta}, nil
}
