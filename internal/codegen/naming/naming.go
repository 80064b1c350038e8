// Package naming converts DBML table and column names into identifiers and
// file names for the emission targets.
package naming

import (
	"errors"
	"go/token"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jinzhu/inflection"
)

const goKeywordSuffix = "_"

// ExportedIdentifier converts raw input into a public Go identifier.
func ExportedIdentifier(raw string) string {
	ident := toIdentifier(raw)
	if ident == "" {
		ident = "X"
	}
	if token.Lookup(ident).IsKeyword() {
		ident += goKeywordSuffix
	}
	return ident
}

// Plural returns the collection name for a type, e.g. Order -> Orders.
func Plural(name string) string {
	return inflection.Plural(name)
}

// FileName converts a type name into a snake_case file name segment.
func FileName(raw string) string {
	runes := []rune(raw)
	var b strings.Builder
	b.Grow(len(runes) * 2)
	prevUnderscore := false
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if unicode.IsUpper(r) {
				prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
				if prevLower && !prevUnderscore {
					b.WriteRune('_')
				}
				r = unicode.ToLower(r)
			}
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == '-' || r == ' ' || r == '.':
			if !prevUnderscore && b.Len() > 0 {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "table"
	}
	return name
}

// PathSegment keeps the case of raw but reduces it to a single file name
// segment: runs of anything other than letters, digits, '_' and '-' become
// one '_'. Separators and dot segments never survive.
func PathSegment(raw string) string {
	var b strings.Builder
	pending := false
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			if pending && b.Len() > 0 {
				b.WriteRune('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	name := strings.Trim(b.String(), "_-")
	if name == "" {
		return "table"
	}
	return name
}

// AvoidReserved returns name unchanged unless it matches reserved
// case-insensitively, in which case suffix is appended. The boolean reports
// a rename.
func AvoidReserved(name, reserved, suffix string) (string, bool) {
	if strings.EqualFold(name, reserved) {
		return name + suffix, true
	}
	return name, false
}

func toIdentifier(raw string) string {
	segments := splitSegments(raw)
	var b strings.Builder
	for _, seg := range segments {
		lower := strings.ToLower(seg)
		r, size := utf8.DecodeRuneInString(lower)
		if r == utf8.RuneError {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(lower[size:])
	}
	ident := b.String()
	if ident == "" {
		return ident
	}
	if r, _ := utf8.DecodeRuneInString(ident); !unicode.IsLetter(r) && r != '_' {
		ident = "X" + ident
	}
	return ident
}

// splitSegments breaks raw at separators and camelCase boundaries.
func splitSegments(raw string) []string {
	parts := make([]string, 0, 4)
	var buf strings.Builder
	runes := []rune(raw)
	flush := func() {
		if buf.Len() > 0 {
			parts = append(parts, buf.String())
			buf.Reset()
		}
	}
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		buf.WriteRune(r)
	}
	flush()
	return parts
}

// UniqueName returns base, or base with a numeric suffix when base was
// already handed out from used.
func UniqueName(base string, used map[string]int) (string, error) {
	if base == "" {
		base = "value"
	}
	if used == nil {
		return "", errors.New("nil name map")
	}
	if _, exists := used[base]; !exists {
		used[base] = 1
		return base, nil
	}
	for i := used[base] + 1; ; i++ {
		candidate := base + strconv.Itoa(i)
		if _, exists := used[candidate]; !exists {
			used[base] = i
			used[candidate] = 1
			return candidate, nil
		}
	}
}
