package tokenizer

import "strings"

// Line is one physical line of DBML source after comment and whitespace removal.
type Line struct {
	// Number is the 1-based line number in the source.
	Number int
	// Text is the cleaned content; empty lines carry no structure.
	Text string
}

// IsBlank reports whether the cleaned line has no content.
func (l Line) IsBlank() bool {
	return l.Text == ""
}

// ColumnParts holds the pieces of a column definition line.
type ColumnParts struct {
	// Name is the text before the first unquoted space.
	Name string
	// Type is the remaining text once the settings block is removed.
	Type string
	// Settings is the interior of the first top-level [...] block.
	Settings    string
	HasSettings bool
	// UnterminatedQuote is set when a '"' segment never closes.
	UnterminatedQuote bool
	// UnterminatedBracket is set when a '[' block never closes.
	UnterminatedBracket bool
}

// TableParts holds the pieces of a Table header line.
type TableParts struct {
	// Header is the text between the Table keyword and '{' with any
	// settings block removed, e.g. "Users as U".
	Header      string
	Settings    string
	HasSettings bool
	// HasBrace reports whether the header carries an opening '{'.
	HasBrace bool
	// ClosedInline is set for "Table x { }" written on one line.
	ClosedInline        bool
	UnterminatedQuote   bool
	UnterminatedBracket bool
}

// HasKeyword reports whether text begins with the keyword kw as a whole word,
// i.e. followed by end of text, whitespace, or one of the runes in follow.
func HasKeyword(text, kw, follow string) bool {
	if !strings.HasPrefix(text, kw) {
		return false
	}
	rest := text[len(kw):]
	if rest == "" {
		return true
	}
	c := rest[0]
	return c == ' ' || c == '\t' || strings.IndexByte(follow, c) >= 0
}
