// Package golang generates Go model structs and a table registry using text
// templates.
package golang

import (
	"bytes"
	"context"
	"fmt"
	"go/token"
	"slices"
	"strings"
	"text/template"

	"github.com/electwix/dbml-catalyst/internal/codegen/naming"
	"github.com/electwix/dbml-catalyst/internal/codegen/render"
	"github.com/electwix/dbml-catalyst/internal/logging"
	"github.com/electwix/dbml-catalyst/internal/schema/model"
	"github.com/electwix/dbml-catalyst/internal/types"
)

// DefaultPackage is used when Options.Package is empty.
const DefaultPackage = "models"

// RegistryFile is the path of the aggregate registry artifact.
const RegistryFile = "registry.go"

// Options configures Go emission.
type Options struct {
	Package             string
	EmitJSONTags        bool
	EmitPointersForNull bool
	EmitConstructors    bool
	Logger              logging.Logger
}

// Generator produces one Go file per table plus registry.go.
type Generator struct {
	opts   Options
	tmpl   *template.Template
	mapper *types.GoMapper
	logger logging.Logger
}

// New parses the embedded templates and returns a Generator.
func New(opts Options) (*Generator, error) {
	if opts.Package == "" {
		opts.Package = DefaultPackage
	}
	if !token.IsIdentifier(opts.Package) {
		return nil, fmt.Errorf("invalid go package name %q", opts.Package)
	}
	tmpl, err := template.New("golang").ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Generator{
		opts:   opts,
		tmpl:   tmpl,
		mapper: types.NewGoMapper(opts.EmitPointersForNull),
		logger: logging.OrNop(opts.Logger),
	}, nil
}

type modelData struct {
	Package  string
	Source   string
	Imports  []string
	TypeName string
	Note     string
	Indexes  []string
	Fields   []fieldData
	Defaults []defaultData
}

type fieldData struct {
	Name string
	Type string
	Tag  string
	Note string
}

type defaultData struct {
	Name  string
	Value string
}

type registryData struct {
	Package  string
	Tables   []registryEntry
	NeedsPtr bool
}

type registryEntry struct {
	TableName string
	TypeName  string
	Plural    string
}

// Generate renders the schema. Table files follow declaration order and the
// registry comes last.
func (g *Generator) Generate(ctx context.Context, schema *model.Schema) ([]render.File, error) {
	files := make([]render.File, 0, len(schema.Tables)+1)
	registry := registryData{Package: g.opts.Package}
	seen := make(map[string]bool, len(schema.Tables))

	for _, tbl := range schema.Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, needsPtr := g.buildModel(tbl)
		for _, reserved := range reservedTypes {
			if name, renamed := naming.AvoidReserved(data.TypeName, reserved, "Table"); renamed {
				g.logger.Warn("table shadows a registry declaration; renamed", "table", tbl.Name, "type", name)
				data.TypeName = name
			}
		}
		if seen[data.TypeName] {
			g.logger.Warn("duplicate table emitted twice", "table", tbl.Name, "type", data.TypeName)
		}
		seen[data.TypeName] = true
		registry.NeedsPtr = registry.NeedsPtr || needsPtr
		registry.Tables = append(registry.Tables, registryEntry{
			TableName: tbl.Name,
			TypeName:  data.TypeName,
			Plural:    naming.Plural(data.TypeName),
		})

		path := g.modelPath(data.TypeName)
		content, err := g.execute("model.go.tmpl", path, data)
		if err != nil {
			return nil, fmt.Errorf("generate model %s: %w", tbl.Name, err)
		}
		files = append(files, render.File{Path: path, Content: content})
	}

	content, err := g.execute("registry.go.tmpl", RegistryFile, registry)
	if err != nil {
		return nil, fmt.Errorf("generate registry: %w", err)
	}
	files = append(files, render.File{Path: RegistryFile, Content: content})
	return files, nil
}

// reservedTypes are declared by registry.go.
var reservedTypes = []string{"Registry", "TableNames"}

// modelPath builds the file name for a model type. Names the go tool would
// treat as a test or as constrained to one platform get a "_model" suffix,
// and the result never collides with the registry file.
func (g *Generator) modelPath(typeName string) string {
	base := naming.FileName(typeName)
	if hasBuildSuffix(base) {
		g.logger.Warn("model file name carries a build constraint; renamed", "type", typeName, "file", base+"_model.go")
		base += "_model"
	}
	if name, renamed := naming.AvoidReserved(base, strings.TrimSuffix(RegistryFile, ".go"), "_model"); renamed {
		g.logger.Warn("model file shadows the registry; renamed", "type", typeName, "file", name+".go")
		base = name
	}
	return base + ".go"
}

var knownOS = map[string]bool{
	"aix": true, "android": true, "darwin": true, "dragonfly": true, "freebsd": true,
	"hurd": true, "illumos": true, "ios": true, "js": true, "linux": true, "nacl": true,
	"netbsd": true, "openbsd": true, "plan9": true, "solaris": true, "wasip1": true,
	"windows": true, "zos": true,
}

var knownArch = map[string]bool{
	"386": true, "amd64": true, "amd64p32": true, "arm": true, "armbe": true,
	"arm64": true, "arm64be": true, "loong64": true, "mips": true, "mipsle": true,
	"mips64": true, "mips64le": true, "mips64p32": true, "mips64p32le": true,
	"ppc": true, "ppc64": true, "ppc64le": true, "riscv": true, "riscv64": true,
	"s390": true, "s390x": true, "sparc": true, "sparc64": true, "wasm": true,
}

// hasBuildSuffix reports whether base ends in _test, _GOOS or _GOARCH.
func hasBuildSuffix(base string) bool {
	i := strings.LastIndexByte(base, '_')
	if i < 0 {
		return false
	}
	last := base[i+1:]
	return last == "test" || knownOS[last] || knownArch[last]
}

func (g *Generator) execute(name, path string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	formatted, err := render.Source(path, buf.Bytes())
	if err != nil {
		g.logger.Warn("keeping unformatted go output", "path", path, "error", err)
		return buf.Bytes(), nil
	}
	return formatted, nil
}

func (g *Generator) buildModel(tbl *model.Table) (modelData, bool) {
	data := modelData{
		Package:  g.opts.Package,
		TypeName: naming.ExportedIdentifier(tbl.Name),
		Note:     commentText(tbl.Note),
	}
	if tbl.Path != "" {
		data.Source = fmt.Sprintf("%s:%d", tbl.Path, tbl.Line)
	}

	imports := map[string]bool{}
	used := map[string]int{}
	needsPtr := false
	withDefaults := g.opts.EmitConstructors && tbl.HasDefaults()
	for _, col := range tbl.Columns {
		fieldName, err := naming.UniqueName(naming.ExportedIdentifier(col.Name), used)
		if err != nil {
			fieldName = naming.ExportedIdentifier(col.Name)
		}
		// Primary keys never hold NULL, whatever the column says.
		st := types.Resolve(col.Type, col.IsNullable && !col.IsPrimaryKey)
		lt := g.mapper.Map(st)
		if lt.Import != "" {
			imports[lt.Import] = true
		}
		data.Fields = append(data.Fields, fieldData{
			Name: fieldName,
			Type: lt.Name,
			Tag:  g.structTag(col),
			Note: commentText(col.Note),
		})
		if col.IsUnique {
			data.Indexes = append(data.Indexes, fieldName)
		}
		if withDefaults && col.Default != nil {
			value, ok := goDefault(st, *col.Default)
			if !ok {
				g.logger.Debug("default left to the database", "table", tbl.Name, "column", col.Name, "default", *col.Default)
				continue
			}
			if strings.Contains(value, "time.Now()") {
				imports["time"] = true
			}
			data.Defaults = append(data.Defaults, defaultData{
				Name:  fieldName,
				Value: g.mapper.Initializer(lt, value),
			})
			needsPtr = needsPtr || lt.Pointer
		}
	}
	for imp := range imports {
		data.Imports = append(data.Imports, imp)
	}
	slices.Sort(data.Imports)
	return data, needsPtr
}

// goDefault turns a DBML default into a Go expression. Backtick
// expressions are evaluated by the database; only now() on a temporal
// column has a Go equivalent.
func goDefault(st types.SemanticType, raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}
	if len(value) >= 2 && value[0] == '`' && value[len(value)-1] == '`' {
		expr := strings.TrimSpace(value[1 : len(value)-1])
		if st.IsTemporal() && strings.EqualFold(expr, "now()") {
			return "time.Now()", true
		}
		return "", false
	}
	return strings.ReplaceAll(value, "'", `"`), true
}

func (g *Generator) structTag(col *model.Column) string {
	parts := []string{fmt.Sprintf(`db:%q`, col.Name)}
	if g.opts.EmitJSONTags {
		parts = append(parts, fmt.Sprintf(`json:%q`, col.Name))
	}
	if col.IsPrimaryKey {
		opts := "pk"
		if col.AutoIncrement {
			opts += ",increment"
		}
		parts = append(parts, fmt.Sprintf(`dbml:%q`, opts))
	}
	if !col.IsNullable {
		parts = append(parts, `validate:"required"`)
	}
	return strings.Join(parts, " ")
}

// commentText prepares a DBML note for a line comment: surrounding quotes
// are dropped and line breaks flattened.
func commentText(note string) string {
	note = strings.TrimSpace(note)
	if len(note) >= 2 {
		first, last := note[0], note[len(note)-1]
		if first == last && (first == '\'' || first == '"' || first == '`') {
			note = note[1 : len(note)-1]
		}
	}
	return strings.Join(strings.Fields(note), " ")
}
