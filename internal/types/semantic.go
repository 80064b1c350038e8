// Package types maps free-form DBML column types onto semantic categories and
// from there onto the types used by each emission target.
package types

// Category is the semantic meaning of a column type, independent of the
// database or language that ends up representing it.
type Category int

const (
	// CategoryUnknown is an unrecognized type; targets fall back to the raw text.
	CategoryUnknown Category = iota

	// CategoryInteger is a 32-bit signed integer.
	CategoryInteger
	// CategoryBigInteger is a 64-bit signed integer.
	CategoryBigInteger
	// CategorySmallInteger is a 16-bit signed integer.
	CategorySmallInteger
	// CategoryDecimal is an exact decimal with precision and scale.
	CategoryDecimal
	// CategoryFloat is a 32-bit float.
	CategoryFloat
	// CategoryDouble is a 64-bit float.
	CategoryDouble

	// CategoryText is unbounded text.
	CategoryText
	// CategoryChar is fixed-length text.
	CategoryChar
	// CategoryVarchar is bounded text.
	CategoryVarchar
	// CategoryBlob is binary data.
	CategoryBlob

	// CategoryTimestamp is a date and time.
	CategoryTimestamp
	// CategoryDate is a date only.
	CategoryDate
	// CategoryTime is a time of day.
	CategoryTime

	// CategoryBoolean is a boolean.
	CategoryBoolean
	// CategoryUUID is a UUID.
	CategoryUUID
	// CategoryJSON is a JSON document.
	CategoryJSON
)

var categoryNames = map[Category]string{
	CategoryInteger:      "integer",
	CategoryBigInteger:   "biginteger",
	CategorySmallInteger: "smallinteger",
	CategoryDecimal:      "decimal",
	CategoryFloat:        "float",
	CategoryDouble:       "double",
	CategoryText:         "text",
	CategoryChar:         "char",
	CategoryVarchar:      "varchar",
	CategoryBlob:         "blob",
	CategoryTimestamp:    "timestamp",
	CategoryDate:         "date",
	CategoryTime:         "time",
	CategoryBoolean:      "boolean",
	CategoryUUID:         "uuid",
	CategoryJSON:         "json",
}

// String returns a human-readable name for the category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// SemanticType is a column type with its meaning resolved.
type SemanticType struct {
	Category Category
	Nullable bool

	// Precision and Scale are set for decimal(p, s).
	Precision int
	Scale     int

	// MaxLength is the declared size of char and varchar, -1 when absent.
	MaxLength int

	// Array marks a "type[]" column; the other fields describe the element.
	Array bool

	// Raw is the column type exactly as written in the DBML source.
	Raw string
}

// IsInteger reports whether the type is one of the integer categories.
func (s SemanticType) IsInteger() bool {
	switch s.Category {
	case CategoryInteger, CategoryBigInteger, CategorySmallInteger:
		return true
	default:
		return false
	}
}

// IsTemporal reports whether the type holds dates or times.
func (s SemanticType) IsTemporal() bool {
	switch s.Category {
	case CategoryTimestamp, CategoryDate, CategoryTime:
		return true
	default:
		return false
	}
}
