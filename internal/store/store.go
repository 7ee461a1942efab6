// Package store persists contact messages for the development API.
package store

import (
	"context"
	"errors"
	"strings"

	"folioterm/internal/model"
)

// ErrNotFound is returned when no message has the requested ID.
var ErrNotFound = errors.New("message not found")

// MessageStore is the persistence the API handlers need. SQLiteStore and
// PgStore implement it.
type MessageStore interface {
	// Save inserts msg as pending and fills in its ID.
	Save(ctx context.Context, msg *model.Message) error
	// List returns messages with any of the given statuses, oldest first.
	List(ctx context.Context, statuses ...model.Status) ([]model.Message, error)
	Get(ctx context.Context, id model.MessageID) (model.Message, error)
	// UpdateStatus sets the status and returns the updated message.
	UpdateStatus(ctx context.Context, id model.MessageID, status model.Status) (model.Message, error)
	Ping(ctx context.Context) error
	Close() error
}

// IsPostgres reports whether dsn names a PostgreSQL database rather than a
// SQLite file.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open returns a PgStore for postgres DSNs and a SQLiteStore otherwise.
func Open(ctx context.Context, dsn string) (MessageStore, error) {
	if IsPostgres(dsn) {
		return NewPgStore(ctx, dsn)
	}
	return NewSQLiteStore(dsn)
}
