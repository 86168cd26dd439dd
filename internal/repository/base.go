// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"strings"

	"devhub/internal/database"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate adds FOR UPDATE on PostgreSQL. SQLite serialises writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if database.IsPostgres(tx) {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// lockForShare adds FOR SHARE on PostgreSQL so a parent row cannot be deleted underneath a child insert.
func lockForShare(tx *gorm.DB) *gorm.DB {
	if database.IsPostgres(tx) {
		return tx.Clauses(clause.Locking{Strength: "SHARE"})
	}
	return tx
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// likePattern builds a case-insensitive substring pattern for use with `LIKE ? ESCAPE '\'`.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

// rowExists reports whether table has a row with the given id. Pass a locked tx to also lock it.
func rowExists(tx *gorm.DB, table string, id uint) (bool, error) {
	var ids []uint
	if err := tx.Table(table).Where("id = ?", id).Limit(1).Pluck("id", &ids).Error; err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}
