package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// IsNoRows reports whether err means a lookup found nothing.
func IsNoRows(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, pgx.ErrNoRows) ||
		errors.Is(err, sql.ErrNoRows)
}

// Constraint names the kind of integrity rule a write broke.
type Constraint string

const (
	ConstraintNone       Constraint = ""
	ConstraintUnique     Constraint = "unique"
	ConstraintForeignKey Constraint = "foreign_key"
	ConstraintNotNull    Constraint = "not_null"
	ConstraintCheck      Constraint = "check"
	ConstraintOther      Constraint = "other"
)

// ClassifyConstraint maps driver errors from either backend onto a
// Constraint. It returns ConstraintNone for anything that is not an
// integrity violation.
func ClassifyConstraint(err error) Constraint {
	if err == nil {
		return ConstraintNone
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ConstraintUnique
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ConstraintForeignKey
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return ConstraintCheck
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgConstraint(pgErr.Code)
	}

	var liteErr *msqlite.Error
	if errors.As(err, &liteErr) {
		return sqliteConstraint(liteErr.Code(), liteErr.Error())
	}

	return ConstraintNone
}

// IsConstraintViolation reports whether err is an integrity violation.
func IsConstraintViolation(err error) bool {
	return ClassifyConstraint(err) != ConstraintNone
}

// SQLSTATE class 23 is integrity_constraint_violation.
func pgConstraint(code string) Constraint {
	switch code {
	case "23505":
		return ConstraintUnique
	case "23503":
		return ConstraintForeignKey
	case "23502":
		return ConstraintNotNull
	case "23514":
		return ConstraintCheck
	}
	if strings.HasPrefix(code, "23") {
		return ConstraintOther
	}
	return ConstraintNone
}

func sqliteConstraint(code int, msg string) Constraint {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return ConstraintUnique
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return ConstraintForeignKey
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return ConstraintNotNull
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return ConstraintCheck
	}
	if code&0xff != sqlite3.SQLITE_CONSTRAINT {
		return ConstraintNone
	}

	// Primary result code only; fall back to the message text.
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return ConstraintUnique
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ConstraintForeignKey
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return ConstraintNotNull
	case strings.Contains(msg, "CHECK constraint failed"):
		return ConstraintCheck
	}
	return ConstraintOther
}
