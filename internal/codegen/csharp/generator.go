// Package csharp generates Entity Framework Core model classes and a
// DbContext from a parsed schema.
package csharp

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
)

const (
	// DefaultNamespace is used when Options.Namespace is empty.
	DefaultNamespace = "Models"
	// DefaultContextName is the DbContext class name when none is configured.
	DefaultContextName = "DataContext"
)

// Options configures C# emission.
type Options struct {
	Namespace   string
	ContextName string
	Logger      logging.Logger
}

// Generator produces one .cs file per table plus the DbContext.
type Generator struct {
	opts   Options
	tmpl   *template.Template
	logger logging.Logger
}

// New parses the embedded templates and returns a Generator.
func New(opts Options) (*Generator, error) {
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	if opts.ContextName == "" {
		opts.ContextName = DefaultContextName
	}
	tmpl, err := template.New("csharp").ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Generator{opts: opts, tmpl: tmpl, logger: logging.OrNop(opts.Logger)}, nil
}

type classData struct {
	Namespace string
	Name      string
	Indexes   []string
	Columns   []propertyData
}

type propertyData struct {
	Name         string
	Type         string
	Note         string
	IsPrimaryKey bool
	Required     bool
	Default      string
}

type contextData struct {
	Namespace string
	Name      string
	Sets      []setData
}

type setData struct {
	Type string
	Name string
}

// Generate renders one class per table, named and typed as declared,
// followed by the DbContext listing a DbSet per table. A table that would
// shadow the DbContext class gets a "Table" suffix.
func (g *Generator) Generate(ctx context.Context, schema *model.Schema) ([]render.File, error) {
	files := make([]render.File, 0, len(schema.Tables)+1)
	dbContext := contextData{Namespace: g.opts.Namespace, Name: g.opts.ContextName}

	for _, tbl := range schema.Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		className, renamed := naming.AvoidReserved(tbl.Name, g.opts.ContextName, "Table")
		if renamed {
			g.logger.Warn("table shadows the context class; renamed", "table", tbl.Name, "class", className)
		}
		dbContext.Sets = append(dbContext.Sets, setData{Type: className, Name: naming.Plural(className)})

		var buf bytes.Buffer
		if err := g.tmpl.ExecuteTemplate(&buf, "model.cs.tmpl", g.buildClass(tbl, className)); err != nil {
			return nil, fmt.Errorf("generate model %s: %w", tbl.Name, err)
		}
		files = append(files, render.File{Path: g.modelPath(className), Content: buf.Bytes()})
		g.logger.Debug("rendered class", "table", tbl.Name, "columns", len(tbl.Columns))
	}

	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, "context.cs.tmpl", dbContext); err != nil {
		return nil, fmt.Errorf("generate %s: %w", g.opts.ContextName, err)
	}
	files = append(files, render.File{Path: g.opts.ContextName + ".cs", Content: buf.Bytes()})
	return files, nil
}

// modelPath keeps the class name as the file name when it is a plain
// segment. Anything that could leave the output directory is flattened.
func (g *Generator) modelPath(className string) string {
	name := naming.PathSegment(className)
	if name != className {
		g.logger.Warn("class name is not a plain file name; sanitized", "class", className, "file", name+".cs")
	}
	if reserved, renamed := naming.AvoidReserved(name, g.opts.ContextName, "Table"); renamed {
		g.logger.Warn("model file shadows the context file; renamed", "class", className, "file", reserved+".cs")
		name = reserved
	}
	return name + ".cs"
}

func (g *Generator) buildClass(tbl *model.Table, className string) classData {
	data := classData{Namespace: g.opts.Namespace, Name: className}
	for _, col := range tbl.UniqueColumns() {
		data.Indexes = append(data.Indexes, col.Name)
	}
	for _, col := range tbl.Columns {
		prop := propertyData{
			Name:         col.Name,
			Type:         col.Type,
			Note:         strings.TrimSpace(col.Note),
			IsPrimaryKey: col.IsPrimaryKey,
			Required:     !col.IsNullable,
		}
		if col.Default != nil {
			prop.Default = strings.TrimSpace(strings.ReplaceAll(*col.Default, "'", `"`))
			if prop.Default == "" {
				g.logger.Debug("empty default omitted", "table", tbl.Name, "column", col.Name)
			}
		}
		data.Columns = append(data.Columns, prop)
	}
	return data
}
