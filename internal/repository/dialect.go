package repository

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect adapts the shared SQL to a database driver.
type Dialect struct {
	Name string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
}

var (
	Postgres = Dialect{Name: "postgres", numbered: true}
	SQLite   = Dialect{Name: "sqlite"}
)

// DialectFor returns the dialect for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case Postgres.Name:
		return Postgres, nil
	case SQLite.Name:
		return SQLite, nil
	default:
		return Dialect{}, errors.New("unsupported driver: " + driver)
	}
}

// Rebind rewrites ? placeholders for the dialect.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// uniqueViolation reports whether err is a unique-constraint failure and, when
// it can tell, which column caused it.
func (d Dialect) uniqueViolation(err error) (column string, ok bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code != "23505" {
			return "", false
		}
		return columnFromText(pqErr.Constraint + " " + pqErr.Detail), true
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			strings.Contains(liteErr.Error(), "UNIQUE constraint failed") {
			return columnFromText(liteErr.Error()), true
		}
		return "", false
	}

	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return columnFromText(err.Error()), true
	}
	return "", false
}

func columnFromText(text string) string {
	switch {
	case strings.Contains(text, "username"):
		return "username"
	case strings.Contains(text, "phone"):
		return "phone"
	case strings.Contains(text, "token"):
		return "token"
	default:
		return ""
	}
}
