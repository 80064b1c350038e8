package grammar

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/jinzhu/inflection"

	"github.com/electwix/dbml-catalyst/internal/logging"
	"github.com/electwix/dbml-catalyst/internal/schema/diagnostic"
	"github.com/electwix/dbml-catalyst/internal/schema/model"
)

var (
	buildOnce sync.Once
	built     *participle.Parser[Document]
	buildErr  error
)

func shared() (*participle.Parser[Document], error) {
	buildOnce.Do(func() {
		built, buildErr = build()
	})
	return built, buildErr
}

// Checker validates DBML source against the strict grammar.
type Checker struct {
	parser *participle.Parser[Document]
	logger logging.Logger
}

// NewChecker builds a Checker. The grammar is compiled once per process.
func NewChecker(logger logging.Logger) (*Checker, error) {
	p, err := shared()
	if err != nil {
		return nil, fmt.Errorf("build dbml grammar: %w", err)
	}
	return &Checker{parser: p, logger: logging.OrNop(logger)}, nil
}

// Parse returns the strict parse tree of src.
func (c *Checker) Parse(path string, src []byte) (*Document, error) {
	return c.parser.ParseBytes(path, src)
}

// Check reports the first syntax problem in src as a warning diagnostic.
// Participle stops at the first error, so at most one syntax diagnostic is
// returned. When src parses and parsed is non-nil, every table the grammar
// sees must also be in parsed; each one missing is reported at its header.
func (c *Checker) Check(path string, src []byte, parsed *model.Schema) []diagnostic.Diagnostic {
	doc, err := c.Parse(path, src)
	if err == nil {
		c.logger.Debug("grammar check passed", "path", path, "entries", len(doc.Entries))
		if parsed == nil {
			return nil
		}
		return crossCheck(path, doc, parsed)
	}
	d := diagnostic.Diagnostic{
		Path:     path,
		Line:     1,
		Column:   1,
		Message:  "grammar: " + err.Error(),
		Severity: diagnostic.SeverityWarning,
	}
	var perr participle.Error
	if errors.As(err, &perr) {
		pos := perr.Position()
		if pos.Line > 0 {
			d.Line = pos.Line
			d.Column = pos.Column
		}
		d.Message = "grammar: " + perr.Message()
	}
	c.logger.Debug("grammar check failed", "path", path, "line", d.Line, "error", d.Message)
	return []diagnostic.Diagnostic{d}
}

func crossCheck(path string, doc *Document, parsed *model.Schema) []diagnostic.Diagnostic {
	names := make(map[string]bool, len(parsed.Tables))
	for _, tbl := range parsed.Tables {
		names[tbl.Name] = true
	}
	var diags []diagnostic.Diagnostic
	for _, decl := range Tables(doc) {
		if names[inflection.Singular(decl.Name.Plain())] {
			continue
		}
		d := diagnostic.Warning(path, decl.Pos.Line, "grammar: table %s is not read by the parser", decl.Name.String())
		d.Column = max(decl.Pos.Column, 1)
		diags = append(diags, d)
	}
	return diags
}

// Tables returns the table declarations of doc in source order.
func Tables(doc *Document) []*TableDecl {
	var tables []*TableDecl
	for _, e := range doc.Entries {
		if e.Table != nil {
			tables = append(tables, e.Table)
		}
	}
	return tables
}

// String joins the name parts with '.'.
func (n *Name) String() string {
	if n == nil {
		return ""
	}
	return strings.Join(n.Parts, ".")
}

// Plain renders the name the way the line parser does: double quotes are
// dropped and spaces inside them become '_'.
func (n *Name) Plain() string {
	if n == nil {
		return ""
	}
	parts := make([]string, len(n.Parts))
	for i, part := range n.Parts {
		if len(part) >= 2 && part[0] == '"' && part[len(part)-1] == '"' {
			part = strings.ReplaceAll(part[1:len(part)-1], " ", "_")
		}
		parts[i] = part
	}
	return strings.Join(parts, ".")
}
