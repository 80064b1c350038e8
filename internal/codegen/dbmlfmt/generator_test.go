package dbmlfmt

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/electwix/dbml-catalyst/internal/schema/grammar"
	"github.com/electwix/dbml-catalyst/internal/schema/model"
	"github.com/electwix/dbml-catalyst/internal/schema/parser"
)

const source = `Table Users as U [note: 'people who buy', headercolor: #3498db] {
  id int [increment, pk]
  email varchar(255) [unique, not null, note: 'login name']
  status varchar [default: 'active']
  Ref: U.id < orders.user_id
}

Table order_items {
  qty int [default: 1] // how many
}
`

func generate(t *testing.T, schema *model.Schema) map[string]string {
	t.Helper()
	gen, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	files, err := gen.Generate(context.Background(), schema)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Path] = string(f.Content)
	}
	return out
}

func TestGenerateNormalizesSource(t *testing.T) {
	schema, _ := parser.New().Parse("shop.dbml", []byte(source))
	files := generate(t, schema)

	wantUser := `Table User as U [note: 'people who buy'] {
  id int [pk, increment]
  email varchar(255) [not null, unique, note: 'login name']
  status varchar [default: 'active']
}
`
	if diff := cmp.Diff(wantUser, files["user.dbml"]); diff != "" {
		t.Errorf("user.dbml mismatch (-want +got):\n%s", diff)
	}

	wantItem := `Table order_item {
  qty int [default: 1]
}
`
	if diff := cmp.Diff(wantItem, files["order_item.dbml"]); diff != "" {
		t.Errorf("order_item.dbml mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantUser+"\n"+wantItem, files[SchemaFile]); diff != "" {
		t.Errorf("schema.dbml mismatch (-want +got):\n%s", diff)
	}
}

func TestGeneratedOutputRoundTrips(t *testing.T) {
	first, diags := parser.New().Parse("shop.dbml", []byte(source))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	out := generate(t, first)[SchemaFile]

	second, diags := parser.New().Parse("shop.dbml", []byte(out))
	if len(diags) != 0 {
		t.Fatalf("normalized output produced diagnostics: %v\n%s", diags, out)
	}
	ignorePos := cmp.Options{
		cmpopts.IgnoreFields(model.Table{}, "Line"),
		cmpopts.IgnoreFields(model.Column{}, "Line"),
	}
	if diff := cmp.Diff(first, second, ignorePos); diff != "" {
		t.Fatalf("round trip changed the schema (-first +second):\n%s", diff)
	}

	checker, err := grammar.NewChecker(nil)
	if err != nil {
		t.Fatalf("NewChecker() error = %v", err)
	}
	if diags := checker.Check("schema.dbml", []byte(out), second); len(diags) != 0 {
		t.Fatalf("normalized output fails the grammar check: %v\n%s", diags, out)
	}
}

func TestColumnTypeAndNoteQuoting(t *testing.T) {
	schema := &model.Schema{Tables: []*model.Table{{
		Name: "metric",
		Note: "raw note",
		Columns: []*model.Column{
			{Name: "value", Type: "double precision", IsNullable: true, Note: "it's fine"},
		},
	}}}
	got := generate(t, schema)["metric.dbml"]
	want := `Table metric [note: 'raw note'] {
  value "double precision" [note: 'it\'s fine']
}
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaNamedTableIsRenamed(t *testing.T) {
	files := generate(t, &model.Schema{Tables: []*model.Table{{Name: "schema"}}})
	if _, ok := files["schema_table.dbml"]; !ok {
		t.Fatalf("expected schema_table.dbml, got %v", files)
	}
}

func TestNewRejectsVisibleIndent(t *testing.T) {
	if _, err := New(Options{Indent: "--"}); err == nil {
		t.Fatal("expected error for non-whitespace indent")
	}
}
