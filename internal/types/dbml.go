package types

import (
	"strconv"
	"strings"
)

// Resolve infers the semantic type of a DBML column type. DBML types are
// free-form, so the common PostgreSQL, MySQL, and SQLite spellings are
// recognized case-insensitively and anything else is CategoryUnknown with the
// raw text preserved.
func Resolve(raw string, nullable bool) SemanticType {
	trimmed := strings.TrimSpace(raw)
	if elem, ok := strings.CutSuffix(trimmed, "[]"); ok && elem != "" {
		st := Resolve(elem, false)
		st.Array = true
		st.Nullable = nullable
		st.Raw = raw
		return st
	}

	st := SemanticType{Nullable: nullable, MaxLength: -1, Raw: raw}
	base, args := splitTypeArgs(strings.ToLower(trimmed))

	switch base {
	case "int", "integer", "int4", "mediumint":
		st.Category = CategoryInteger
	case "bigint", "int8", "serial", "bigserial", "serial8":
		st.Category = CategoryBigInteger
	case "smallint", "int2", "tinyint", "smallserial":
		st.Category = CategorySmallInteger

	case "decimal", "numeric", "dec", "money":
		st.Category = CategoryDecimal
		if len(args) > 0 {
			st.Precision = args[0]
		}
		if len(args) > 1 {
			st.Scale = args[1]
		}
	case "real", "float4", "float":
		st.Category = CategoryFloat
	case "double", "double precision", "float8":
		st.Category = CategoryDouble

	case "text", "clob", "string", "longtext", "mediumtext":
		st.Category = CategoryText
	case "char", "character", "nchar":
		st.Category = CategoryChar
		st.MaxLength = firstArg(args)
	case "varchar", "character varying", "nvarchar":
		st.Category = CategoryVarchar
		st.MaxLength = firstArg(args)
	case "blob", "bytea", "binary", "varbinary":
		st.Category = CategoryBlob

	case "timestamp", "timestamptz", "datetime", "timestamp with time zone", "timestamp without time zone":
		st.Category = CategoryTimestamp
	case "date":
		st.Category = CategoryDate
	case "time", "timetz":
		st.Category = CategoryTime

	case "bool", "boolean", "bit":
		st.Category = CategoryBoolean
	case "uuid", "uniqueidentifier":
		st.Category = CategoryUUID
	case "json", "jsonb":
		st.Category = CategoryJSON
	}
	return st
}

// splitTypeArgs separates "decimal(10, 2)" into "decimal" and [10 2].
// Non-numeric arguments are skipped.
func splitTypeArgs(t string) (string, []int) {
	open := strings.IndexByte(t, '(')
	if open < 0 {
		return t, nil
	}
	base := strings.TrimSpace(t[:open])
	end := strings.IndexByte(t[open:], ')')
	if end < 0 {
		return base, nil
	}
	var args []int
	for _, part := range strings.Split(t[open+1:open+end], ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			args = append(args, n)
		}
	}
	return base, args
}

func firstArg(args []int) int {
	if len(args) == 0 {
		return -1
	}
	return args[0]
}
