package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewColumnDefaults(t *testing.T) {
	col := NewColumn("id")
	want := &Column{Name: "id", IsNullable: true}
	if diff := cmp.Diff(want, col); diff != "" {
		t.Fatalf("NewColumn mismatch (-want +got):\n%s", diff)
	}
	if got := col.DefaultValue(); got != "" {
		t.Fatalf("DefaultValue() = %q, want empty", got)
	}
}

func TestTableHelpers(t *testing.T) {
	zero := "0"
	tbl := &Table{Name: "Order"}
	tbl.AddColumn(&Column{Name: "id", IsPrimaryKey: true})
	tbl.AddColumn(&Column{Name: "email", IsUnique: true, IsNullable: true})
	tbl.AddColumn(&Column{Name: "total", Default: &zero})
	tbl.AddColumn(&Column{Name: "code", IsUnique: true})

	if got := names(tbl.PrimaryKey()); !cmp.Equal(got, []string{"id"}) {
		t.Fatalf("PrimaryKey() = %v, want [id]", got)
	}
	if got := names(tbl.UniqueColumns()); !cmp.Equal(got, []string{"email", "code"}) {
		t.Fatalf("UniqueColumns() = %v, want [email code]", got)
	}
	if !tbl.HasDefaults() {
		t.Fatalf("HasDefaults() = false, want true")
	}
	if got := tbl.Columns[2].DefaultValue(); got != "0" {
		t.Fatalf("DefaultValue() = %q, want 0", got)
	}
}

func TestSchemaMergeKeepsOrderAndDuplicates(t *testing.T) {
	first := NewSchema()
	first.Append(&Table{Name: "User"})
	second := NewSchema()
	second.Append(&Table{Name: "Order"})
	second.Append(&Table{Name: "User"})

	first.Merge(second)
	first.Merge(nil)

	var got []string
	for _, tbl := range first.Tables {
		got = append(got, tbl.Name)
	}
	if diff := cmp.Diff([]string{"User", "Order", "User"}, got); diff != "" {
		t.Fatalf("merged order mismatch (-want +got):\n%s", diff)
	}
}

func names(cols []*Column) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, c.Name)
	}
	return out
}
