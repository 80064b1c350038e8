package types

import (
	"strings"
	"unicode"
)

// LanguageType is a type as it appears in generated source.
type LanguageType struct {
	// Name is the type as written in code, e.g. "int64" or "sql.NullString".
	Name string
	// Import is the import path the type needs, if any.
	Import string
	// NullField names the value field of a database/sql Null wrapper.
	NullField string
	// Pointer is set when nullability is expressed with a pointer.
	Pointer bool
}

// IsNullWrapper reports whether the type is a database/sql Null* wrapper.
func (lt LanguageType) IsNullWrapper() bool {
	return lt.NullField != ""
}

// GoMapper converts semantic types to Go field types.
type GoMapper struct {
	emitPointersForNull bool
}

// NewGoMapper creates a Go mapper. When emitPointersForNull is set nullable
// columns become pointers instead of database/sql Null wrappers.
func NewGoMapper(emitPointersForNull bool) *GoMapper {
	return &GoMapper{emitPointersForNull: emitPointersForNull}
}

type goScalar struct {
	name      string
	imp       string
	nullName  string
	nullField string
}

var goScalars = map[Category]goScalar{
	CategoryInteger:      {name: "int32", nullName: "sql.NullInt32", nullField: "Int32"},
	CategoryBigInteger:   {name: "int64", nullName: "sql.NullInt64", nullField: "Int64"},
	CategorySmallInteger: {name: "int16", nullName: "sql.NullInt16", nullField: "Int16"},
	CategoryDecimal:      {name: "float64", nullName: "sql.NullFloat64", nullField: "Float64"},
	CategoryFloat:        {name: "float32"},
	CategoryDouble:       {name: "float64", nullName: "sql.NullFloat64", nullField: "Float64"},
	CategoryText:         {name: "string", nullName: "sql.NullString", nullField: "String"},
	CategoryChar:         {name: "string", nullName: "sql.NullString", nullField: "String"},
	CategoryVarchar:      {name: "string", nullName: "sql.NullString", nullField: "String"},
	CategoryBoolean:      {name: "bool", nullName: "sql.NullBool", nullField: "Bool"},
	CategoryTimestamp:    {name: "time.Time", imp: "time", nullName: "sql.NullTime", nullField: "Time"},
	CategoryDate:         {name: "time.Time", imp: "time", nullName: "sql.NullTime", nullField: "Time"},
	CategoryTime:         {name: "time.Time", imp: "time", nullName: "sql.NullTime", nullField: "Time"},
	CategoryUUID:         {name: "uuid.UUID", imp: "github.com/google/uuid"},
}

// Map converts a semantic type to a Go type. Unknown types keep their raw
// DBML spelling so the generated code shows what the source declared.
func (m *GoMapper) Map(st SemanticType) LanguageType {
	if st.Array {
		elem := st
		elem.Array = false
		elem.Nullable = false
		et := m.Map(elem)
		return LanguageType{Name: "[]" + et.Name, Import: et.Import}
	}
	switch st.Category {
	case CategoryBlob:
		return LanguageType{Name: "[]byte"}
	case CategoryJSON:
		return LanguageType{Name: "json.RawMessage", Import: "encoding/json"}
	case CategoryUnknown:
		return LanguageType{Name: rawGoName(st.Raw)}
	}

	scalar, ok := goScalars[st.Category]
	if !ok {
		return LanguageType{Name: rawGoName(st.Raw)}
	}
	lt := LanguageType{Name: scalar.name, Import: scalar.imp}
	if !st.Nullable {
		return lt
	}
	if !m.emitPointersForNull && scalar.nullName != "" {
		return LanguageType{Name: scalar.nullName, Import: "database/sql", NullField: scalar.nullField}
	}
	lt.Name = "*" + lt.Name
	lt.Pointer = true
	return lt
}

// Initializer renders a default value for a field of type lt. The value is
// emitted verbatim apart from the caller's quote substitution; wrapper and
// pointer types get the minimal scaffolding to hold it.
func (m *GoMapper) Initializer(lt LanguageType, value string) string {
	switch {
	case lt.IsNullWrapper():
		return lt.Name + "{" + lt.NullField + ": " + value + ", Valid: true}"
	case lt.Pointer:
		return "ptr[" + strings.TrimPrefix(lt.Name, "*") + "](" + value + ")"
	default:
		return value
	}
}

// rawGoName turns an unrecognized DBML type into something usable as a Go
// type name. Any size suffix is dropped and characters that cannot appear in
// an identifier become '_'.
func rawGoName(raw string) string {
	name := strings.TrimSpace(raw)
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name = strings.Trim(b.String(), "_")
	if name == "" {
		return "any"
	}
	return name
}
