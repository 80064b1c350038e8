// Package parser implements the permissive DBML-subset parser.
//
// The parser makes one forward pass over cleaned lines. Each line moves an
// explicit state accumulator between two states, outside any table and inside
// a table, and column lines are attributed to the open table only. Nothing in
// here fails: malformed input becomes diagnostics and best-effort values.
package parser

import (
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/electwix/dbml-catalyst/internal/logging"
	"github.com/electwix/dbml-catalyst/internal/schema/diagnostic"
	"github.com/electwix/dbml-catalyst/internal/schema/model"
	"github.com/electwix/dbml-catalyst/internal/schema/tokenizer"
)

const (
	tableKeyword = "Table"
	refPrefix    = "Ref:"
	aliasToken   = "as"
)

// Option configures a Parser.
type Option func(*Parser)

// WithLogger routes trace and debug output to logger.
func WithLogger(logger logging.Logger) Option {
	return func(p *Parser) {
		p.logger = logging.OrNop(logger)
	}
}

// Parser converts DBML text into a model.Schema. A Parser holds no parse
// state and may be reused, including concurrently.
type Parser struct {
	logger logging.Logger
}

var _ diagnostic.SchemaParser = (*Parser)(nil)

// New constructs a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// state is threaded through processLine for a single Parse call.
type state struct {
	path    string
	schema  *model.Schema
	current int
	diags   []diagnostic.Diagnostic
}

func newState(path string) *state {
	return &state{path: path, schema: model.NewSchema(), current: -1}
}

func (s *state) inTable() bool {
	return s.current >= 0
}

func (s *state) table() *model.Table {
	return s.schema.Tables[s.current]
}

func (s *state) warn(line int, format string, args ...any) {
	s.diags = append(s.diags, diagnostic.Warning(s.path, line, format, args...))
}

// Parse reads DBML source and returns the tables it declares together with
// any warnings raised along the way.
func (p *Parser) Parse(path string, src []byte) (*model.Schema, []diagnostic.Diagnostic) {
	st := newState(path)
	for _, line := range tokenizer.Lines(src) {
		p.processLine(st, line)
	}
	if st.inTable() {
		p.logger.Debug("table not closed before end of input", "path", path, "table", st.table().Name)
	}
	p.dump(st.schema)
	return st.schema, st.diags
}

func (p *Parser) processLine(st *state, line tokenizer.Line) {
	text := line.Text
	switch {
	case line.IsBlank():
		return
	case strings.HasPrefix(text, "}"):
		if st.inTable() {
			p.logger.Trace("table closed", "table", st.table().Name, "line", line.Number)
		}
		st.current = -1
	case tokenizer.HasKeyword(text, tableKeyword, "{"):
		p.openTable(st, line)
	case strings.HasPrefix(text, refPrefix):
		p.logger.Trace("relationship ignored", "line", line.Number)
	case st.inTable() && strings.Contains(text, " "):
		st.table().AddColumn(p.parseColumn(st, line))
	default:
		p.logger.Trace("line ignored", "line", line.Number, "text", text)
	}
}

func (p *Parser) openTable(st *state, line tokenizer.Line) {
	parts := tokenizer.SplitTable(line.Text[len(tableKeyword):])
	if !parts.HasBrace {
		st.warn(line.Number, "table header missing '{'")
	}
	if parts.UnterminatedQuote {
		st.warn(line.Number, "unterminated quote in table header")
	}
	if parts.UnterminatedBracket {
		st.warn(line.Number, "unterminated '[' in table settings")
	}

	name, alias := splitHeader(parts.Header)
	if name == "" {
		st.warn(line.Number, "table header has no name")
	}
	tbl := &model.Table{
		Name:  inflection.Singular(name),
		Alias: alias,
		Path:  st.path,
		Line:  line.Number,
	}
	if parts.HasSettings {
		note, ignored := tableNote(parts.Settings)
		tbl.Note = note
		for _, setting := range ignored {
			p.logger.Debug("table setting ignored", "table", tbl.Name, "setting", setting, "line", line.Number)
		}
	}

	st.schema.Append(tbl)
	st.current = len(st.schema.Tables) - 1
	p.logger.Trace("table opened", "table", tbl.Name, "line", line.Number)
	if parts.ClosedInline {
		st.current = -1
	}
}

// splitHeader separates "name as alias" into its parts. The name is the text
// before the first space; the alias is everything after an "as" token.
func splitHeader(header string) (name, alias string) {
	if !strings.Contains(header, " ") {
		return header, ""
	}
	fields := strings.Fields(header)
	for i := 1; i < len(fields); i++ {
		if fields[i] == aliasToken {
			alias = strings.Join(fields[i+1:], " ")
			break
		}
	}
	return fields[0], alias
}

func (p *Parser) parseColumn(st *state, line tokenizer.Line) *model.Column {
	parts := tokenizer.SplitColumn(line.Text)
	col := model.NewColumn(parts.Name)
	col.Type = parts.Type
	col.Line = line.Number

	if parts.UnterminatedQuote {
		st.warn(line.Number, "unterminated quote in column %q", col.Name)
	}
	if parts.UnterminatedBracket {
		st.warn(line.Number, "unterminated '[' in settings of column %q", col.Name)
	}
	if parts.HasSettings {
		for _, setting := range ApplySettings(col, parts.Settings) {
			st.warn(line.Number, "unknown column setting %q", setting)
			p.logger.Debug("unknown column setting", "column", col.Name, "setting", setting, "line", line.Number)
		}
	}
	return col
}

func (p *Parser) dump(schema *model.Schema) {
	for _, tbl := range schema.Tables {
		p.logger.Debug("parsed table", "table", tbl.Name, "alias", tbl.Alias, "columns", len(tbl.Columns))
		for _, col := range tbl.Columns {
			p.logger.Trace("parsed column",
				"table", tbl.Name,
				"column", col.Name,
				"type", col.Type,
				"note", col.Note,
				"pk", col.IsPrimaryKey,
				"unique", col.IsUnique,
				"nullable", col.IsNullable,
				"increment", col.AutoIncrement,
				"default", col.DefaultValue(),
			)
		}
	}
}
