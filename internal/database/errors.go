package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes for constraint violations.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// sqliteMessage matches the text sqlite uses for a constraint class.
func sqliteMessage(err error, kind string) bool {
	return err != nil && strings.Contains(err.Error(), kind+" constraint failed")
}

// IsForeignKeyViolation reports whether err was caused by a referenced or referencing row.
func IsForeignKeyViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated) ||
		pgCode(err) == pgForeignKeyViolation ||
		sqliteMessage(err, "FOREIGN KEY")
}

// IsUniqueViolation reports whether err was caused by a duplicate key.
func IsUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		pgCode(err) == pgUniqueViolation ||
		sqliteMessage(err, "UNIQUE")
}

// IsCheckViolation reports whether err was caused by a CHECK constraint.
func IsCheckViolation(err error) bool {
	return errors.Is(err, gorm.ErrCheckConstraintViolated) ||
		pgCode(err) == pgCheckViolation ||
		sqliteMessage(err, "CHECK")
}
