// Package diagnostic provides shared types for DBML parsing diagnostics.
//
// It sits apart from the parser so the strict grammar check and the pipeline
// can report findings without importing each other.
package diagnostic

import (
	"fmt"

	"github.com/electwix/dbml-catalyst/internal/schema/model"
)

// Severity indicates the seriousness of a diagnostic.
type Severity int

const (
	// SeverityError indicates an issue that stops generation.
	SeverityError Severity = iota
	// SeverityWarning indicates a potential issue that doesn't stop generation.
	SeverityWarning
)

// String returns the lower-case severity label.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Diagnostic captures parser feedback for callers to display.
type Diagnostic struct {
	Path     string
	Line     int
	Column   int
	Message  string
	Severity Severity
}

// String formats the diagnostic as path:line:col: message [severity].
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s [%s]", d.Path, d.Line, d.Column, d.Message, d.Severity)
}

// Warning builds a warning diagnostic at the given line.
func Warning(path string, line int, format string, args ...any) Diagnostic {
	return Diagnostic{Path: path, Line: line, Column: 1, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

// SchemaParser turns DBML source into a schema. Parsing is permissive:
// problems surface as diagnostics, never as errors.
type SchemaParser interface {
	Parse(path string, content []byte) (*model.Schema, []Diagnostic)
}
