package db

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/driver/pgdriver"
)

// UniqueViolation reports whether err is a unique-constraint rejection from
// either supported driver. The returned string names the violated constraint
// (PostgreSQL constraint name, or the SQLite "table.column" message) and never
// contains the offending value.
func UniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		if pgErr.Field('C') != pgerrcode.UniqueViolation {
			return "", false
		}
		return pgErr.Field('n'), true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if liteErr.ExtendedCode != sqlite3.ErrConstraintUnique && liteErr.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
			return "", false
		}
		return liteErr.Error(), true
	}

	return "", false
}
