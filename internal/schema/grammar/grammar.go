// Package grammar holds a strict participle grammar for the DBML subset that
// dbml-catalyst understands. The permissive line parser remains
// authoritative; this grammar only reports constructs outside the subset.
package grammar

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// DBMLLexer tokenizes DBML source for the strict grammar.
//
//nolint:govet // Participle DSL uses unkeyed fields
var DBMLLexer = lexer.MustSimple([]lexer.SimpleRule{
	{"Comment", `//[^\n]*`},
	{"BlockComment", `/\*[\s\S]*?\*/`},
	{"Whitespace", `[ \t\r\n]+`},
	{"String", "'''[\\s\\S]*?'''|'(\\\\.|[^'\\\\])*'|\"(\\\\.|[^\"\\\\])*\"|`[^`]*`"},
	{"Color", `#[0-9A-Fa-f]{3,8}\b`},
	{"Number", `-?[0-9]+(\.[0-9]+)?`},
	{"Ident", `[A-Za-z_][A-Za-z0-9_]*`},
	{"Operator", `<>|[<>-]`},
	{"Punct", `[{}\[\](),:.]`},
})

// Document is the root of a DBML file.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type Document struct {
	Entries []*Entry `@@*`
}

// Entry is one top-level DBML declaration.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type Entry struct {
	Table      *TableDecl      `  @@`
	Ref        *RefDecl        `| @@`
	Enum       *EnumDecl       `| @@`
	Project    *ProjectDecl    `| @@`
	TableGroup *TableGroupDecl `| @@`
}

// Name is a possibly schema-qualified identifier such as public.users.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type Name struct {
	Parts []string `@(Ident | String) ("." @(Ident | String))*`
}

// TableDecl is a Table block.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type TableDecl struct {
	Pos      lexer.Position
	Name     *Name           `"Table" @@`
	Alias    string          `("as" @(Ident | String))?`
	Settings []*Setting      `("[" @@ ("," @@)* "]")?`
	Elements []*TableElement `"{" @@* "}"`
}

// TableElement is one line-level construct inside a Table block.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type TableElement struct {
	Note    *NoteDecl    `  @@`
	Indexes *IndexesDecl `| @@`
	Ref     *RefDecl     `| @@`
	Column  *ColumnDecl  `| @@`
}

// ColumnDecl is a column definition line.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type ColumnDecl struct {
	Pos      lexer.Position
	Name     string     `@(Ident | String)`
	Type     *TypeRef   `@@`
	Settings []*Setting `("[" @@ ("," @@)* "]")?`
}

// TypeRef is a column type such as varchar(255) or decimal(10, 2).
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type TypeRef struct {
	Name *Name    `@@`
	Args []string `("(" @(Number | Ident) ("," @(Number | Ident))* ")")?`
}

// Setting is one entry of a bracketed settings list.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type Setting struct {
	Pos   lexer.Position
	Words []string `@Ident+`
	Value *Value   `(":" @@)?`
}

// Value is the right-hand side of a key: value setting.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type Value struct {
	String *string    `  @String`
	Number *string    `| @Number`
	Color  *string    `| @Color`
	Ref    *RefTarget `| @@`
	Words  []string   `| @Ident+`
}

// RefTarget is an inline relationship such as "> users.id".
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type RefTarget struct {
	Op     string `@Operator`
	Target *Name  `@@`
}

// RefDecl is a standalone relationship in short or block form.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type RefDecl struct {
	Pos  lexer.Position
	Name string   `"Ref" @Ident?`
	Body *RefBody `@@`
}

// RefBody holds the endpoint of either form.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type RefBody struct {
	Short *RefEndpoint `  ":" @@`
	Block *RefEndpoint `| "{" @@ "}"`
}

// RefEndpoint is the "a.b > c.d [settings]" body of a relationship.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type RefEndpoint struct {
	Left     *Name      `@@`
	Op       string     `@Operator`
	Right    *Name      `@@`
	Settings []*Setting `("[" @@ ("," @@)* "]")?`
}

// NoteDecl is a table note in either inline or block form.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type NoteDecl struct {
	Text string `"Note" ( ":" @String | "{" @String "}" )`
}

// IndexesDecl is an indexes block inside a table.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type IndexesDecl struct {
	Indexes []*IndexDecl `"indexes" "{" @@* "}"`
}

// IndexDecl is a single or composite index entry.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type IndexDecl struct {
	Columns  []string   `( "(" @(Ident | String) ("," @(Ident | String))* ")" | @(Ident | String) )`
	Settings []*Setting `("[" @@ ("," @@)* "]")?`
}

// EnumDecl is an Enum block.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type EnumDecl struct {
	Name   *Name        `"Enum" @@`
	Values []*EnumValue `"{" @@* "}"`
}

// EnumValue is one member of an Enum.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type EnumValue struct {
	Name     string     `@(Ident | String)`
	Settings []*Setting `("[" @@ ("," @@)* "]")?`
}

// ProjectDecl is a Project block of key: value pairs.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type ProjectDecl struct {
	Name     string     `"Project" @(Ident | String)?`
	Settings []*Setting `"{" @@* "}"`
}

// TableGroupDecl is a TableGroup block listing table names.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type TableGroupDecl struct {
	Name   *Name   `"TableGroup" @@`
	Tables []*Name `"{" @@* "}"`
}

func build() (*participle.Parser[Document], error) {
	return participle.Build[Document](
		participle.Lexer(DBMLLexer),
		participle.Elide("Whitespace", "Comment", "BlockComment"),
		participle.CaseInsensitive("Ident"),
		participle.UseLookahead(4),
	)
}
