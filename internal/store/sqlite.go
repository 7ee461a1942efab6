package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"folioterm/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements MessageStore backed by a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ MessageStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at the given path and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS contact_messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	email      TEXT NOT NULL,
	name       TEXT NOT NULL,
	phone      TEXT NOT NULL DEFAULT '',
	subject    TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS contact_messages_status ON contact_messages (status);
`
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Save(ctx context.Context, msg *model.Message) error {
	msg.Status = model.StatusPending
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO contact_messages (email, name, phone, subject, message, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.Email, msg.Name, msg.Phone, msg.Subject, msg.Message, msg.Status,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	msg.ID = model.IntID(id)
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, statuses ...model.Status) ([]model.Message, error) {
	query := "SELECT id, email, name, phone, subject, message, status FROM contact_messages"
	args := make([]any, len(statuses))
	if len(statuses) > 0 {
		marks := make([]string, len(statuses))
		for i, st := range statuses {
			marks[i] = "?"
			args[i] = st
		}
		query += " WHERE status IN (" + strings.Join(marks, ", ") + ")"
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	msgs := []model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id model.MessageID) (model.Message, error) {
	n, ok := id.Int64()
	if !ok {
		return model.Message{}, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT id, email, name, phone, subject, message, status FROM contact_messages WHERE id = ?", n)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Message{}, ErrNotFound
	}
	return m, err
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, id model.MessageID, status model.Status) (model.Message, error) {
	n, ok := id.Int64()
	if !ok {
		return model.Message{}, ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, "UPDATE contact_messages SET status = ? WHERE id = ?", status, n)
	if err != nil {
		return model.Message{}, fmt.Errorf("update status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return model.Message{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (model.Message, error) {
	var (
		m  model.Message
		id int64
	)
	if err := row.Scan(&id, &m.Email, &m.Name, &m.Phone, &m.Subject, &m.Message, &m.Status); err != nil {
		return model.Message{}, err
	}
	m.ID = model.IntID(id)
	return m, nil
}
