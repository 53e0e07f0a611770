// Package store provides gorm-backed data access for recipes, reviews,
// social relations and the similarity graph.
//
// Each store owns one table family and embeds shared dependencies via Base.
// Stores never call each other; cross-table work happens in the service layer
// or inside a transaction handed to a store through WithTx.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultQueryTimeout = 10 * time.Second

// Base contains shared dependencies for all stores.
type Base struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

// NewBase creates a Base.
func NewBase(db *gorm.DB, log *logrus.Logger) Base {
	return Base{DB: db, Log: log}
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	// sqlite drivers without error translation
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// notFound maps gorm.ErrRecordNotFound to a domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// pageBounds turns a 1-based page into offset and limit.
func pageBounds(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage, perPage
}
