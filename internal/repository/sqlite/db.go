// Package sqlite contains SQLite implementations of repository interfaces,
// backed by the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// DB wraps a *sql.DB opened with foreign keys enforced.
type DB struct{ SQL *sql.DB }

// Open opens (creating if needed) the database at path. Use ":memory:" for a private
// in-memory database; it is pinned to a single connection so every query sees the same data.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open(DriverName, DSN(path))
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{SQL: db}, nil
}

// DSN builds a modernc DSN with the pragmas every connection needs.
func DSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	if path == ":memory:" {
		path = "file::memory:"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Close closes the database.
func (db *DB) Close() error { return db.SQL.Close() }

func sqliteCode(err error) int {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()
	}
	return 0
}

// constraintViolation matches the extended code, falling back to the primary
// SQLITE_CONSTRAINT code plus message when extended codes are not reported.
func constraintViolation(err error, extended []int, marker string) bool {
	c := sqliteCode(err)
	for _, e := range extended {
		if c == e {
			return true
		}
	}
	return c&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(err.Error(), marker)
}

func isUniqueViolation(err error) bool {
	return constraintViolation(err,
		[]int{sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY}, "UNIQUE")
}

func isForeignKeyViolation(err error) bool {
	return constraintViolation(err, []int{sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY}, "FOREIGN KEY")
}
