package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/electwix/dbml-catalyst/internal/fileset"
)

func TestLoadSuccess(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeInputs(t, tempDir, "schema/users.dbml", "schema/books.dbml", "core/accounts.dbml")

	configPath := writeConfig(t, tempDir, "dbml-catalyst.toml", `
inputs = ["core/*.dbml", "schema/*.dbml"]
out = "gen"
`)

	result, err := Load(configPath, LoadOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", result.Warnings)
	}

	want := JobPlan{
		Package: DefaultGoPackage,
		Out:     filepath.Join(tempDir, "gen"),
		Target:  TargetGo,
		Inputs: []string{
			filepath.Join(tempDir, "core", "accounts.dbml"),
			filepath.Join(tempDir, "schema", "books.dbml"),
			filepath.Join(tempDir, "schema", "users.dbml"),
		},
		Generation: Generation{
			EmitConstructors: true,
			ContextName:      DefaultContextName,
		},
	}
	if diff := cmp.Diff(want, result.Plan); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadGenerationOptions(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeInputs(t, tempDir, "shop.dbml")

	configPath := writeConfig(t, tempDir, "dbml-catalyst.toml", `
inputs = ["shop.dbml"]
out = "gen/models"
target = "csharp"
package = "Shop.Data"

[generation]
emit_json_tags = true
emit_pointers_for_null = true
emit_constructors = false
context_name = "ShopContext"
verify_sql = true
strict_check = true
`)

	result, err := Load(configPath, LoadOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if result.Plan.Target != TargetCSharp || result.Plan.Package != "Shop.Data" {
		t.Fatalf("unexpected target/package: %q %q", result.Plan.Target, result.Plan.Package)
	}
	want := Generation{
		EmitJSONTags:        true,
		EmitPointersForNull: true,
		EmitConstructors:    false,
		ContextName:         "ShopContext",
		VerifySQL:           true,
		StrictCheck:         true,
	}
	if diff := cmp.Diff(want, result.Plan.Generation); diff != "" {
		t.Fatalf("generation mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeInputs(t, tempDir, "shop.dbml")

	configPath := writeConfig(t, tempDir, "dbml-catalyst.yaml", `
inputs:
  - shop.dbml
out: gen
target: sql
generation:
  verify_sql: true
`)

	result, err := Load(configPath, LoadOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if result.Plan.Target != TargetSQL {
		t.Fatalf("target = %q, want sql", result.Plan.Target)
	}
	if !result.Plan.Generation.VerifySQL {
		t.Fatal("expected verify_sql from YAML")
	}
	if len(result.Plan.Inputs) != 1 {
		t.Fatalf("inputs = %v", result.Plan.Inputs)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeInputs(t, tempDir, "shop.dbml")
	configPath := writeConfig(t, tempDir, "dbml-catalyst.toml", `
inputs = ["shop.dbml"]
out = "gen"
target = "go"
`)

	result, err := Load(configPath, LoadOptions{Out: "other", Target: "DBML"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if result.Plan.Out != filepath.Join(tempDir, "other") {
		t.Fatalf("out override ignored: %q", result.Plan.Out)
	}
	if result.Plan.Target != TargetDBML {
		t.Fatalf("target override ignored: %q", result.Plan.Target)
	}
}

func TestLoadUnknownKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		body string
	}{
		{
			name: "toml",
			file: "dbml-catalyst.toml",
			body: `
inputs = ["shop.dbml"]
out = "gen"
colour = "blue"

[generation]
emit_enums = true
`,
		},
		{
			name: "yaml",
			file: "dbml-catalyst.yml",
			body: `
inputs: [shop.dbml]
out: gen
colour: blue
generation:
  emit_enums: true
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tempDir := t.TempDir()
			writeInputs(t, tempDir, "shop.dbml")
			configPath := writeConfig(t, tempDir, tt.file, tt.body)

			result, err := Load(configPath, LoadOptions{})
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			want := []string{configPath + ": unknown configuration keys: colour, generation.emit_enums"}
			if diff := cmp.Diff(want, result.Warnings); diff != "" {
				t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
			}

			_, err = Load(configPath, LoadOptions{Strict: true})
			if err == nil || !strings.Contains(err.Error(), "unknown configuration keys") {
				t.Fatalf("expected strict error, got %v", err)
			}
		})
	}
}

func TestLoadValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing out", `inputs = ["shop.dbml"]`, "out is required"},
		{"absolute out", fmt.Sprintf("inputs = [\"shop.dbml\"]\nout = %q", filepath.Join(string(filepath.Separator), "tmp", "gen")), "out must be a relative path"},
		{"upward out", "inputs = [\"shop.dbml\"]\nout = \"../gen\"", "out must not traverse upwards"},
		{"dot out", "inputs = [\"shop.dbml\"]\nout = \".\"", "out must name a subdirectory"},
		{"bad target", "inputs = [\"shop.dbml\"]\nout = \"gen\"\ntarget = \"rust\"", "unsupported target"},
		{"bad package", "inputs = [\"shop.dbml\"]\nout = \"gen\"\npackage = \"123bad\"", "invalid package name"},
		{"keyword package", "inputs = [\"shop.dbml\"]\nout = \"gen\"\npackage = \"type\"", "invalid package name"},
		{"bad namespace", "inputs = [\"shop.dbml\"]\nout = \"gen\"\ntarget = \"csharp\"\npackage = \"Shop..Data\"", "invalid namespace"},
		{"bad context", "inputs = [\"shop.dbml\"]\nout = \"gen\"\n[generation]\ncontext_name = \"my-context\"", "invalid context_name"},
		{"no inputs", `out = "gen"`, "inputs must include at least one pattern"},
		{"no match", "inputs = [\"missing/*.dbml\"]\nout = \"gen\"", "inputs patterns matched no files: missing/*.dbml"},
		{"bad glob", "inputs = [\"[\"]\nout = \"gen\"", "invalid glob pattern"},
		{"bad toml", `inputs = [`, "dbml-catalyst.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tempDir := t.TempDir()
			writeInputs(t, tempDir, "shop.dbml")
			configPath := writeConfig(t, tempDir, "dbml-catalyst.toml", tt.body)

			_, err := Load(configPath, LoadOptions{})
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadWithResolver(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	configPath := writeConfig(t, tempDir, "dbml-catalyst.toml", `
inputs = ["*.dbml"]
out = "gen"
`)
	resolver := fileset.NewResolver(fstest.MapFS{
		"b.dbml": &fstest.MapFile{Mode: fs.ModePerm},
		"a.dbml": &fstest.MapFile{Mode: fs.ModePerm},
	})

	result, err := Load(configPath, LoadOptions{Resolver: &resolver})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"a.dbml", "b.dbml"}, result.Plan.Inputs); diff != "" {
		t.Fatalf("inputs mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"), LoadOptions{})
	if err == nil || !strings.Contains(err.Error(), "read ") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestParseTarget(t *testing.T) {
	t.Parallel()

	tests := map[string]Target{
		"":        TargetGo,
		"go":      TargetGo,
		" CSharp": TargetCSharp,
		"sql":     TargetSQL,
		"dbml":    TargetDBML,
	}
	for in, want := range tests {
		got, err := ParseTarget(in)
		if err != nil {
			t.Fatalf("ParseTarget(%q) error = %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseTarget(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseTarget("rust"); err == nil {
		t.Fatal("expected error for unsupported target")
	}
}

func writeInputs(tb testing.TB, dir string, names ...string) {
	tb.Helper()

	for _, name := range names {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			tb.Fatalf("create input dir: %v", err)
		}
		if err := os.WriteFile(path, []byte("Table t {\n  id int\n}\n"), 0o600); err != nil {
			tb.Fatalf("write input: %v", err)
		}
	}
}

func writeConfig(tb testing.TB, dir, name, contents string) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	clean := strings.TrimSpace(contents) + "\n"
	if err := os.WriteFile(path, []byte(clean), 0o600); err != nil {
		tb.Fatalf("write config: %v", err)
	}
	return path
}
