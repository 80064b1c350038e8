// Package tokenizer splits DBML source into cleaned lines and breaks column and
// table lines into their parts in a single quote- and bracket-aware pass.
package tokenizer

import (
	"strings"
)

const commentMarker = "//"

// Lines splits src into physical lines and cleans each one. Line numbers are
// preserved so blank lines still count toward positions.
func Lines(src []byte) []Line {
	raw := strings.Split(string(src), "\n")
	lines := make([]Line, 0, len(raw))
	for i, r := range raw {
		lines = append(lines, Line{Number: i + 1, Text: CleanLine(r)})
	}
	return lines
}

// CleanLine drops everything from the first "//" onward and trims whitespace.
func CleanLine(raw string) string {
	if idx := strings.Index(raw, commentMarker); idx >= 0 {
		raw = raw[:idx]
	}
	return strings.TrimSpace(raw)
}

// segment is a line after quote normalization: quote characters are removed,
// spaces inside quotes become '_', and quoted marks which runes came from
// inside a quoted segment so they are never treated as delimiters.
type segment struct {
	runes  []rune
	quoted []bool
}

func normalize(s string) (segment, bool) {
	seg := segment{
		runes:  make([]rune, 0, len(s)),
		quoted: make([]bool, 0, len(s)),
	}
	inQuote := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote && r == ' ':
			seg.runes = append(seg.runes, '_')
			seg.quoted = append(seg.quoted, true)
		default:
			seg.runes = append(seg.runes, r)
			seg.quoted = append(seg.quoted, inQuote)
		}
	}
	return seg, inQuote
}

func (s segment) String() string { return string(s.runes) }

func (s segment) slice(from, to int) segment {
	return segment{runes: s.runes[from:to], quoted: s.quoted[from:to]}
}

func (s segment) trim() segment {
	start, end := 0, len(s.runes)
	for start < end && isSpace(s.runes[start]) {
		start++
	}
	for end > start && isSpace(s.runes[end-1]) {
		end--
	}
	return s.slice(start, end)
}

// index returns the position of the first unquoted r at bracket depth zero.
func (s segment) index(r rune) int {
	depth := 0
	for i, c := range s.runes {
		if s.quoted[i] {
			continue
		}
		switch {
		case c == r && depth == 0:
			return i
		case c == '[':
			depth++
		case c == ']' && depth > 0:
			depth--
		}
	}
	return -1
}

// block locates the first top-level [...] block. end is -1 when the block
// never terminates.
func (s segment) block() (open, end int) {
	open = -1
	depth := 0
	for i, c := range s.runes {
		if s.quoted[i] {
			continue
		}
		switch c {
		case '[':
			if open < 0 {
				open = i
			}
			depth++
		case ']':
			if open < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return open, i
			}
		}
	}
	return open, -1
}

// cut removes the first settings block, returning the text outside it, the
// block interior, and whether a block was found and terminated.
func (s segment) cut() (outside, inner string, found, terminated bool) {
	open, end := s.block()
	if open < 0 {
		return s.trim().String(), "", false, true
	}
	before := s.slice(0, open).String()
	if end < 0 {
		return strings.TrimSpace(before), s.slice(open+1, len(s.runes)).trim().String(), true, false
	}
	after := s.slice(end+1, len(s.runes)).trim().String()
	return strings.TrimSpace(before + after), s.slice(open+1, end).String(), true, true
}

// SplitColumn breaks a column definition such as
//
//	"full name" varchar(100) [not null, note: 'display']
//
// into its name, type, and raw settings text.
func SplitColumn(line string) ColumnParts {
	seg, openQuote := normalize(line)
	parts := ColumnParts{UnterminatedQuote: openQuote}

	sp := seg.index(' ')
	if sp < 0 {
		parts.Name = seg.trim().String()
		return parts
	}
	parts.Name = seg.slice(0, sp).String()

	rest := seg.slice(sp+1, len(seg.runes)).trim()
	typ, settings, found, terminated := rest.cut()
	parts.Type = typ
	parts.Settings = settings
	parts.HasSettings = found
	parts.UnterminatedBracket = !terminated
	return parts
}

// SplitTable breaks the text following the Table keyword, e.g.
//
//	Users as U [headercolor: #3498DB] {
//
// into its header, raw settings, and brace information.
func SplitTable(afterKeyword string) TableParts {
	seg, openQuote := normalize(afterKeyword)
	parts := TableParts{UnterminatedQuote: openQuote}

	header := seg
	if brace := seg.index('{'); brace >= 0 {
		parts.HasBrace = true
		header = seg.slice(0, brace)
		tail := seg.slice(brace+1, len(seg.runes)).trim()
		parts.ClosedInline = len(tail.runes) > 0 && tail.runes[0] == '}'
	}

	text, settings, found, terminated := header.trim().cut()
	parts.Header = text
	parts.Settings = settings
	parts.HasSettings = found
	parts.UnterminatedBracket = !terminated
	return parts
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\v' || r == '\f'
}
