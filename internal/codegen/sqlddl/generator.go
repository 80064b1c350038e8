// Package sqlddl generates SQLite DDL from a parsed schema and can verify the
// result against an in-memory SQLite database.
package sqlddl

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/electwix/dbml-catalyst/internal/codegen/naming"
	"github.com/electwix/dbml-catalyst/internal/codegen/render"
	"github.com/electwix/dbml-catalyst/internal/logging"
	"github.com/electwix/dbml-catalyst/internal/schema/model"
	"github.com/electwix/dbml-catalyst/internal/types"
)

// SchemaFile holds every statement in declaration order.
const SchemaFile = "schema.sql"

// Options configures SQL emission.
type Options struct {
	// Verify executes the generated schema in memory before returning it.
	Verify bool
	Logger logging.Logger
}

// Generator produces one .sql file per table plus schema.sql.
type Generator struct {
	opts   Options
	tmpl   *template.Template
	logger logging.Logger
}

// New parses the embedded templates and returns a Generator.
func New(opts Options) (*Generator, error) {
	tmpl, err := template.New("sqlddl").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Generator{opts: opts, tmpl: tmpl, logger: logging.OrNop(opts.Logger)}, nil
}

type tableData struct {
	Name        string
	Note        string
	Definitions []string
}

// Generate renders CREATE TABLE statements in declaration order.
func (g *Generator) Generate(ctx context.Context, schema *model.Schema) ([]render.File, error) {
	files := make([]render.File, 0, len(schema.Tables)+1)
	statements := make([]string, 0, len(schema.Tables))

	for _, tbl := range schema.Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stmt, err := g.renderTable(tbl)
		if err != nil {
			return nil, fmt.Errorf("generate table %s: %w", tbl.Name, err)
		}
		statements = append(statements, stmt)
		files = append(files, render.File{
			Path:    g.tablePath(tbl),
			Content: []byte(stmt + "\n"),
		})
	}

	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, "schema.sql.tmpl", statements); err != nil {
		return nil, fmt.Errorf("generate %s: %w", SchemaFile, err)
	}
	if g.opts.Verify {
		tables, err := Verify(ctx, buf.String())
		if err != nil {
			return nil, fmt.Errorf("verify %s: %w", SchemaFile, err)
		}
		g.logger.Info("sqlite accepted generated schema", "tables", len(tables))
	}
	files = append(files, render.File{Path: SchemaFile, Content: buf.Bytes()})
	return files, nil
}

// tablePath names the per-table file; it never collides with SchemaFile.
func (g *Generator) tablePath(tbl *model.Table) string {
	name, renamed := naming.AvoidReserved(naming.FileName(tbl.Name), strings.TrimSuffix(SchemaFile, ".sql"), "_table")
	if renamed {
		g.logger.Warn("table file shadows combined schema; renamed", "table", tbl.Name, "file", name+".sql")
	}
	return name + ".sql"
}

func (g *Generator) renderTable(tbl *model.Table) (string, error) {
	if len(tbl.Columns) == 0 {
		g.logger.Warn("table has no columns; statement omitted", "table", tbl.Name)
		return fmt.Sprintf("-- table %s declares no columns", quoteIdent(tbl.Name)), nil
	}

	pk := tbl.PrimaryKey()
	inlinePK := len(pk) == 1
	data := tableData{Name: quoteIdent(tbl.Name), Note: noteText(tbl.Note)}
	for _, col := range tbl.Columns {
		data.Definitions = append(data.Definitions, g.columnDefinition(tbl, col, inlinePK))
	}
	if len(pk) > 1 {
		names := make([]string, len(pk))
		for i, col := range pk {
			names[i] = quoteIdent(col.Name)
		}
		data.Definitions = append(data.Definitions, "PRIMARY KEY ("+strings.Join(names, ", ")+")")
	}

	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, "table.sql.tmpl", data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func (g *Generator) columnDefinition(tbl *model.Table, col *model.Column, inlinePK bool) string {
	st := types.Resolve(col.Type, col.IsNullable)
	sqlType := types.SQLiteType(st)
	parts := []string{quoteIdent(col.Name), sqlType}
	// SQLite only accepts AUTOINCREMENT on an INTEGER PRIMARY KEY column.
	rowid := col.IsPrimaryKey && inlinePK && st.IsInteger() && sqlType == "INTEGER"

	if col.IsPrimaryKey && inlinePK {
		parts = append(parts, "PRIMARY KEY")
		if col.AutoIncrement && rowid {
			parts = append(parts, "AUTOINCREMENT")
		}
	}
	if col.AutoIncrement && !rowid {
		g.logger.Debug("increment needs a single INTEGER primary key; ignored", "table", tbl.Name, "column", col.Name)
	}
	if !col.IsNullable {
		parts = append(parts, "NOT NULL")
	}
	if col.IsUnique && !col.IsPrimaryKey {
		parts = append(parts, "UNIQUE")
	}
	if col.Default != nil {
		if value := defaultExpr(*col.Default); value != "" {
			parts = append(parts, "DEFAULT "+value)
		}
	}
	return strings.Join(parts, " ")
}

// defaultExpr turns a DBML default into a SQLite default clause value.
// Backtick expressions become parenthesized expressions and double-quoted
// strings become SQL string literals; everything else is kept verbatim.
func defaultExpr(raw string) string {
	value := strings.TrimSpace(raw)
	switch {
	case value == "":
		return ""
	case len(value) >= 2 && value[0] == '`' && value[len(value)-1] == '`':
		expr := strings.TrimSpace(value[1 : len(value)-1])
		if strings.EqualFold(expr, "now()") {
			return "CURRENT_TIMESTAMP"
		}
		return "(" + expr + ")"
	case len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"':
		inner := value[1 : len(value)-1]
		return "'" + strings.ReplaceAll(inner, "'", "''") + "'"
	default:
		return value
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func noteText(note string) string {
	note = strings.Trim(strings.TrimSpace(note), `'"`)
	return strings.Join(strings.Fields(note), " ")
}
