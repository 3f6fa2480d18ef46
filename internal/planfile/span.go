package planfile

// Span is a half-open byte range [Start, End) into a file's source text.
// Parse and eval errors carry spans so the CLI can point at the offending
// token.
type Span struct {
	Start int
	End   int
}

// Join returns the smallest span covering both s and o.
func (s Span) Join(o Span) Span {
	j := s
	if o.Start < j.Start {
		j.Start = o.Start
	}
	if o.End > j.End {
		j.End = o.End
	}
	return j
}

// LineCol converts the span's start offset into a 1-based line and column
// within source. Offsets past the end of source map to the last position.
func (s Span) LineCol(source string) (line, col int) {
	line, col = 1, 1
	for i := 0; i < len(source) && i < s.Start; i++ {
		if source[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
