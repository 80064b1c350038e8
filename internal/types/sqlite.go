package types

import "strings"

// SQLiteType returns the column type to declare in SQLite DDL. Known
// categories collapse to SQLite's storage classes; unknown types are passed
// through so SQLite applies its own affinity rules.
func SQLiteType(st SemanticType) string {
	if st.Array {
		return "TEXT"
	}
	switch st.Category {
	case CategoryInteger, CategoryBigInteger, CategorySmallInteger, CategoryBoolean:
		return "INTEGER"
	case CategoryFloat, CategoryDouble:
		return "REAL"
	case CategoryDecimal:
		return "NUMERIC"
	case CategoryText, CategoryChar, CategoryVarchar, CategoryUUID, CategoryJSON,
		CategoryTimestamp, CategoryDate, CategoryTime:
		return "TEXT"
	case CategoryBlob:
		return "BLOB"
	}
	raw := strings.TrimSpace(st.Raw)
	if raw == "" {
		return "TEXT"
	}
	return strings.ToUpper(raw)
}
