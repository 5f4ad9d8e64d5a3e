package sqlutil

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the few SQL differences between the supported drivers.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DialectForDriver maps a database/sql driver name to its dialect.
func DialectForDriver(driver string) (Dialect, error) {
	switch driver {
	case "sqlite":
		return DialectSQLite, nil
	case "postgres", "pgx":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Rebind rewrites '?' placeholders into the dialect's bind syntax.
// Queries are written with '?' and only rewritten for Postgres ($1, $2, ...).
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
