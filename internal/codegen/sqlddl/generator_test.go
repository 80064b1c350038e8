package sqlddl

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/electwix/dbml-catalyst/internal/logging"
	"github.com/electwix/dbml-catalyst/internal/schema/model"
)

func strPtr(s string) *string { return &s }

func orderSchema() *model.Schema {
	return &model.Schema{Tables: []*model.Table{
		{
			Name: "Order",
			Note: "'all orders'",
			Columns: []*model.Column{
				{Name: "id", Type: "int", IsPrimaryKey: true, AutoIncrement: true, IsNullable: true},
				{Name: "total", Type: "decimal", IsNullable: false, Default: strPtr("0")},
				{Name: "placed_at", Type: "timestamp", IsNullable: true, Default: strPtr("`now()`")},
			},
		},
		{
			Name: "order_item",
			Columns: []*model.Column{
				{Name: "order_id", Type: "int", IsPrimaryKey: true, IsNullable: true},
				{Name: "sku", Type: "varchar(32)", IsPrimaryKey: true, IsNullable: true},
				{Name: "label", Type: "text", IsUnique: true, IsNullable: true, Default: strPtr(`"n/a"`)},
			},
		},
	}}
}

func TestGenerateDDL(t *testing.T) {
	gen, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	files, err := gen.Generate(context.Background(), orderSchema())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	if diff := cmp.Diff([]string{"order.sql", "order_item.sql", SchemaFile}, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	wantOrder := `-- all orders
CREATE TABLE "Order" (
  "id" INTEGER PRIMARY KEY AUTOINCREMENT,
  "total" NUMERIC NOT NULL DEFAULT 0,
  "placed_at" TEXT DEFAULT CURRENT_TIMESTAMP
);
`
	if diff := cmp.Diff(wantOrder, string(files[0].Content)); diff != "" {
		t.Errorf("order.sql mismatch (-want +got):\n%s", diff)
	}

	wantItem := `CREATE TABLE "order_item" (
  "order_id" INTEGER,
  "sku" TEXT,
  "label" TEXT UNIQUE DEFAULT 'n/a',
  PRIMARY KEY ("order_id", "sku")
);
`
	if diff := cmp.Diff(wantItem, string(files[1].Content)); diff != "" {
		t.Errorf("order_item.sql mismatch (-want +got):\n%s", diff)
	}

	schema := string(files[2].Content)
	if !strings.HasPrefix(schema, "-- Code generated by dbml-catalyst. DO NOT EDIT.\n\n-- all orders\n") {
		t.Errorf("schema.sql header:\n%s", schema)
	}
	if strings.Index(schema, `"Order"`) > strings.Index(schema, `"order_item"`) {
		t.Errorf("schema.sql out of declaration order:\n%s", schema)
	}
	if !strings.HasSuffix(schema, ");\n") {
		t.Errorf("schema.sql should end with a single newline:\n%q", schema)
	}
}

func TestGenerateWithVerify(t *testing.T) {
	gen, err := New(Options{Verify: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := gen.Generate(context.Background(), orderSchema()); err != nil {
		t.Fatalf("Generate() with verify error = %v", err)
	}
}

func TestVerifyRejectsDuplicateTables(t *testing.T) {
	schema := &model.Schema{Tables: []*model.Table{
		{Name: "a", Columns: []*model.Column{{Name: "x", Type: "int", IsNullable: true}}},
		{Name: "a", Columns: []*model.Column{{Name: "y", Type: "int", IsNullable: true}}},
	}}
	gen, err := New(Options{Verify: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := gen.Generate(context.Background(), schema); err == nil {
		t.Fatal("expected verification error for duplicate tables")
	}
}

func TestVerify(t *testing.T) {
	tables, err := Verify(context.Background(), `CREATE TABLE "b" ("id" INTEGER PRIMARY KEY AUTOINCREMENT);
CREATE TABLE "a" ("id" INTEGER);`)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, tables); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}

	if _, err := Verify(context.Background(), "CREATE TABLE ("); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestSchemaNamedTableIsRenamed(t *testing.T) {
	var logs bytes.Buffer
	gen, err := New(Options{Verify: true, Logger: logging.NewSlogAdapter(logging.New(logging.Options{Writer: &logs}))})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	schema := &model.Schema{Tables: []*model.Table{{
		Name:    "schema",
		Columns: []*model.Column{{Name: "version", Type: "int", IsNullable: true}},
	}}}
	files, err := gen.Generate(context.Background(), schema)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	paths := []string{files[0].Path, files[1].Path}
	if diff := cmp.Diff([]string{"schema_table.sql", SchemaFile}, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(files[1].Content), `CREATE TABLE "schema"`) {
		t.Errorf("combined schema lost the table:\n%s", files[1].Content)
	}
	if !strings.Contains(logs.String(), "shadows combined schema") {
		t.Errorf("logs %q missing rename warning", logs.String())
	}
}

func TestEmptyTableIsCommented(t *testing.T) {
	gen, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	files, err := gen.Generate(context.Background(), &model.Schema{Tables: []*model.Table{{Name: "empty"}}})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := string(files[0].Content); got != "-- table \"empty\" declares no columns\n" {
		t.Fatalf("empty table content = %q", got)
	}
}

func TestDefaultExpr(t *testing.T) {
	tests := map[string]string{
		"0":          "0",
		"'active'":   "'active'",
		`"it's"`:     "'it''s'",
		"`now()`":    "CURRENT_TIMESTAMP",
		"`random()`": "(random())",
		"":           "",
		"true":       "true",
	}
	for raw, want := range tests {
		if got := defaultExpr(raw); got != want {
			t.Errorf("defaultExpr(%q) = %q, want %q", raw, got, want)
		}
	}
}
