package sqlutil

import (
	"database/sql"
)

// Helper functions for converting between Go types and sql.Null* types

// ToSqlString converts an optional Go string to sql.NullString.
// The empty string is stored as NULL.
func ToSqlString(val string) sql.NullString {
	if val == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: val, Valid: true}
}

// FromSqlString converts sql.NullString to Go string with default
func FromSqlString(val sql.NullString, defaultVal string) string {
	if !val.Valid {
		return defaultVal
	}
	return val.String
}
