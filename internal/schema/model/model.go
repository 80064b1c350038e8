// Package model defines the tables and columns produced by the DBML parser.
package model

// Schema is the ordered collection of tables discovered in DBML sources.
type Schema struct {
	Tables []*Table
}

// NewSchema constructs an empty schema.
func NewSchema() *Schema {
	return &Schema{Tables: make([]*Table, 0, 8)}
}

// Append adds a table to the end of the schema, preserving parse order.
func (s *Schema) Append(t *Table) {
	s.Tables = append(s.Tables, t)
}

// Merge appends all tables of other after the tables already present.
// Duplicate names are kept; each produces its own artifacts.
func (s *Schema) Merge(other *Schema) {
	if other == nil {
		return
	}
	s.Tables = append(s.Tables, other.Tables...)
}

// Table models a DBML Table block.
type Table struct {
	// Name is the singularized table identifier.
	Name string
	// Alias is set when the header carries an "as <alias>" clause.
	Alias string
	// Note comes from a table-level note setting.
	Note string
	// Columns holds the columns in declaration order.
	Columns []*Column
	// Path and Line locate the table header.
	Path string
	Line int
}

// AddColumn appends a column in declaration order.
func (t *Table) AddColumn(c *Column) {
	t.Columns = append(t.Columns, c)
}

// UniqueColumns returns the columns flagged unique, in declaration order.
func (t *Table) UniqueColumns() []*Column {
	var out []*Column
	for _, c := range t.Columns {
		if c.IsUnique {
			out = append(out, c)
		}
	}
	return out
}

// PrimaryKey returns the primary key columns in declaration order.
func (t *Table) PrimaryKey() []*Column {
	var out []*Column
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			out = append(out, c)
		}
	}
	return out
}

// HasDefaults reports whether any column declares a default value.
func (t *Table) HasDefaults() bool {
	for _, c := range t.Columns {
		if c.Default != nil {
			return true
		}
	}
	return false
}

// Column describes a single column line within a table.
type Column struct {
	Name string
	// Type is the free-form type text, never validated.
	Type          string
	Note          string
	IsPrimaryKey  bool
	IsUnique      bool
	IsNullable    bool
	AutoIncrement bool
	// Default is nil when the column has no default setting.
	Default *string
	Line    int
}

// NewColumn returns a column with DBML defaults: nullable, no flags.
func NewColumn(name string) *Column {
	return &Column{Name: name, IsNullable: true}
}

// DefaultValue returns the default text, or "" when unset.
func (c *Column) DefaultValue() string {
	if c.Default == nil {
		return ""
	}
	return *c.Default
}
