package parser

import (
	"strings"

	"github.com/electwix/dbml-catalyst/internal/schema/model"
)

// ApplySettings decodes the interior of a column settings block into col.
// Tokens are independent; later duplicates overwrite earlier ones. It returns
// the tokens it did not recognize, in order.
func ApplySettings(col *model.Column, text string) []string {
	var unknown []string
	for _, raw := range strings.Split(text, ",") {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			continue
		}
		switch {
		case hasPrefixFold(tok, "note"):
			col.Note = strings.TrimSpace(afterFold(tok, "note:"))
		case strings.EqualFold(tok, "primary key"), strings.EqualFold(tok, "pk"):
			col.IsPrimaryKey = true
		case strings.EqualFold(tok, "not null"):
			col.IsNullable = false
		case strings.EqualFold(tok, "unique"):
			col.IsUnique = true
		case strings.EqualFold(tok, "increment"):
			col.AutoIncrement = true
		case hasPrefixFold(tok, "default:"):
			value := strings.TrimSpace(tok[len("default:"):])
			col.Default = &value
		default:
			unknown = append(unknown, tok)
		}
	}
	return unknown
}

// tableNote extracts a note from a table-level settings block. Other table
// settings are returned so the caller can report them.
func tableNote(text string) (note string, ignored []string) {
	for _, raw := range strings.Split(text, ",") {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			continue
		}
		if hasPrefixFold(tok, "note") {
			note = strings.TrimSpace(afterFold(tok, "note:"))
			continue
		}
		ignored = append(ignored, tok)
	}
	return note, ignored
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// afterFold returns the text after the first case-insensitive occurrence of
// sub, or "" when sub is absent.
func afterFold(s, sub string) string {
	for i := 0; i+len(sub) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(sub)], sub) {
			return s[i+len(sub):]
		}
	}
	return ""
}
