package timeline

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	ansiReset       = "\033[0m"
	ansiBold        = "\033[1m"
	ansiRed         = "\033[31m"
	ansiGreen       = "\033[32m"
	ansiYellow      = "\033[33m"
	ansiBlue        = "\033[34m"
	ansiMagenta     = "\033[35m"
	ansiCyan        = "\033[36m"
	ansiBrightBlack = "\033[90m"
	ansiBrightCyan  = "\033[96m"
)

// Printer renders a line layout into terminal text. The zero value prints
// uncolored at the natural minimum width.
type Printer struct {
	// Width is the total width day header lines are padded to.
	Width int
	// Color switches ANSI styling on.
	Color bool
}

// NewPrinter returns a colored printer sized to the attached terminal.
func NewPrinter() *Printer {
	return &Printer{Width: TerminalWidth(), Color: true}
}

// TerminalWidth reports the width of the terminal on stdout, or 80.
func TerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// Print renders all lines of the layout, one terminal line each.
func (p *Printer) Print(l *LineLayout) string {
	// The number column must fit the "now" marker.
	numWidth := max(l.NumWidth(), 3)
	spanWidth := l.SpanWidth()

	var b strings.Builder
	for _, line := range l.Lines() {
		switch ln := line.(type) {
		case *DayLine:
			p.printDayLine(&b, ln, numWidth, spanWidth)
		case *NowLine:
			p.printNowLine(&b, ln, numWidth, spanWidth)
		case *EntryLine:
			p.printEntryLine(&b, ln, numWidth, spanWidth)
		}
	}
	return b.String()
}

func (p *Printer) printDayLine(b *strings.Builder, ln *DayLine, numWidth, spanWidth int) {
	color := ansiCyan + ansiBold
	if ln.Today {
		color = ansiBrightCyan + ansiBold
	}

	label := fmt.Sprintf("===  %-9s  %s  ", ln.Date.Weekday().FullName(), ln.Date)
	tail := p.Width - numWidth - 1 - spanWidth - len(label)
	if tail < numWidth+spanWidth+4 {
		tail = numWidth + spanWidth + 4
	}

	b.WriteString(p.paint(color, strings.Repeat("=", numWidth+1)))
	p.printSpans(b, ln.Spans, spanWidth, p.paint(color, "="))
	b.WriteString(p.paint(color, label+strings.Repeat("=", tail)))
	b.WriteByte('\n')
}

func (p *Printer) printNowLine(b *strings.Builder, ln *NowLine, numWidth, spanWidth int) {
	b.WriteString(p.paint(ansiBrightCyan+ansiBold, fmt.Sprintf("%*s", numWidth, "now")))
	b.WriteByte(' ')
	p.printSpans(b, ln.Spans, spanWidth, " ")
	b.WriteString("  ")
	b.WriteString(p.paint(ansiBrightBlack, " "+ln.Time.String()))
	b.WriteByte('\n')
}

func (p *Printer) printEntryLine(b *strings.Builder, ln *EntryLine, numWidth, spanWidth int) {
	b.WriteString(p.paint(ansiBrightBlack, fmt.Sprintf("%*d", numWidth, ln.Number)))
	b.WriteByte(' ')
	p.printSpans(b, ln.Spans, spanWidth, " ")
	b.WriteByte(' ')
	b.WriteString(p.kindGlyph(ln.Kind))
	b.WriteString(p.paint(ansiBrightBlack, timesText(ln.Times)))
	b.WriteByte(' ')
	b.WriteString(ln.Text)
	if ln.Extra != "" {
		b.WriteString(p.paint(ansiBrightBlack, " ("+ln.Extra+")"))
	}
	b.WriteByte('\n')
}

// printSpans draws the span guide columns, using empty for free columns.
// Lines recorded before a column existed are padded to the full width.
func (p *Printer) printSpans(b *strings.Builder, cells []*SpanCell, width int, empty string) {
	for i := 0; i < width; i++ {
		if i < len(cells) && cells[i] != nil {
			b.WriteString(p.paint(ansiBrightBlack, spanGlyph(*cells[i])))
		} else {
			b.WriteString(empty)
		}
	}
}

func spanGlyph(c SpanCell) string {
	switch c.Segment {
	case SegmentStart:
		return "┌"
	case SegmentEnd:
		return "└"
	}
	switch c.Style {
	case SpanDashed:
		return "╎"
	case SpanDotted:
		return "┊"
	default:
		return "│"
	}
}

func timesText(t Times) string {
	switch {
	case t.Start == nil:
		return ""
	case t.End == nil:
		return " " + t.Start.String()
	default:
		return fmt.Sprintf(" %s--%s", t.Start, t.End)
	}
}

func (p *Printer) kindGlyph(k LineKind) string {
	switch k {
	case LineTask:
		return p.paint(ansiMagenta+ansiBold, "T")
	case LineDone:
		return p.paint(ansiGreen+ansiBold, "D")
	case LineCanceled:
		return p.paint(ansiRed+ansiBold, "C")
	case LineNote:
		return p.paint(ansiBlue+ansiBold, "N")
	default:
		return p.paint(ansiYellow+ansiBold, "B")
	}
}

func (p *Printer) paint(code, s string) string {
	if !p.Color || s == "" {
		return s
	}
	return code + s + ansiReset
}
