// Package dbmlfmt renders a parsed schema back to normalized DBML.
//
// The output shows how the permissive parser understood its input: table
// settings are reduced to the note, column settings are written in a fixed
// order and relationships are gone.
package dbmlfmt

import (
	"context"
	"fmt"
	"strings"

	"github.com/electwix/dbml-catalyst/internal/codegen/naming"
	"github.com/electwix/dbml-catalyst/internal/codegen/render"
	"github.com/electwix/dbml-catalyst/internal/logging"
	"github.com/electwix/dbml-catalyst/internal/schema/model"
)

// SchemaFile holds every table in declaration order.
const SchemaFile = "schema.dbml"

// Options configures DBML emission.
type Options struct {
	// Indent prefixes column lines. Defaults to two spaces.
	Indent string
	Logger logging.Logger
}

// Generator produces one .dbml file per table plus schema.dbml.
type Generator struct {
	indent string
	logger logging.Logger
}

// New returns a Generator.
func New(opts Options) (*Generator, error) {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	if strings.TrimSpace(opts.Indent) != "" {
		return nil, fmt.Errorf("indent must be whitespace, got %q", opts.Indent)
	}
	return &Generator{indent: opts.Indent, logger: logging.OrNop(opts.Logger)}, nil
}

// Generate renders each table and the combined schema.
func (g *Generator) Generate(ctx context.Context, schema *model.Schema) ([]render.File, error) {
	files := make([]render.File, 0, len(schema.Tables)+1)
	var all strings.Builder

	for i, tbl := range schema.Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var b strings.Builder
		g.writeTable(&b, tbl)

		name, renamed := naming.AvoidReserved(naming.FileName(tbl.Name), strings.TrimSuffix(SchemaFile, ".dbml"), "_table")
		if renamed {
			g.logger.Warn("table file shadows combined schema; renamed", "table", tbl.Name, "file", name+".dbml")
		}
		path := name + ".dbml"
		files = append(files, render.File{Path: path, Content: []byte(b.String())})

		if i > 0 {
			all.WriteString("\n")
		}
		all.WriteString(b.String())
	}

	files = append(files, render.File{Path: SchemaFile, Content: []byte(all.String())})
	return files, nil
}

func (g *Generator) writeTable(b *strings.Builder, tbl *model.Table) {
	b.WriteString("Table ")
	b.WriteString(tbl.Name)
	if tbl.Alias != "" {
		fmt.Fprintf(b, " as %s", tbl.Alias)
	}
	if tbl.Note != "" {
		fmt.Fprintf(b, " [note: %s]", quoteNote(tbl.Note))
	}
	b.WriteString(" {\n")
	for _, col := range tbl.Columns {
		g.writeColumn(b, col)
	}
	b.WriteString("}\n")
}

func (g *Generator) writeColumn(b *strings.Builder, col *model.Column) {
	fmt.Fprintf(b, "%s%s %s", g.indent, col.Name, columnType(col.Type))

	var attributes []string
	if col.IsPrimaryKey {
		attributes = append(attributes, "pk")
	}
	if col.AutoIncrement {
		attributes = append(attributes, "increment")
	}
	if !col.IsNullable {
		attributes = append(attributes, "not null")
	}
	if col.IsUnique {
		attributes = append(attributes, "unique")
	}
	if col.Default != nil {
		attributes = append(attributes, "default: "+*col.Default)
	}
	if col.Note != "" {
		attributes = append(attributes, "note: "+quoteNote(col.Note))
	}
	if len(attributes) > 0 {
		fmt.Fprintf(b, " [%s]", strings.Join(attributes, ", "))
	}
	b.WriteString("\n")
}

// columnType keeps the type text but quotes it when it would otherwise be
// read as more than one token.
func columnType(typ string) string {
	if typ == "" {
		return `""`
	}
	if strings.ContainsAny(typ, " \t") {
		return `"` + strings.ReplaceAll(typ, `"`, "") + `"`
	}
	return typ
}

func quoteNote(note string) string {
	note = strings.TrimSpace(note)
	if len(note) >= 2 {
		first, last := note[0], note[len(note)-1]
		if first == last && (first == '\'' || first == '"' || first == '`') {
			return note
		}
	}
	return "'" + strings.ReplaceAll(note, "'", `\'`) + "'"
}
