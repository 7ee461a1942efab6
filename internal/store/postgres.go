package store

import (
	"context"
	"errors"
	"fmt"

	"folioterm/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is the PostgreSQL implementation of MessageStore.
type PgStore struct {
	pool *pgxpool.Pool
}

var _ MessageStore = (*PgStore)(nil)

// NewPgStore connects to connString, checks the connection and creates the
// table if needed.
func NewPgStore(ctx context.Context, connString string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS contact_messages (
	id         BIGSERIAL PRIMARY KEY,
	email      TEXT NOT NULL,
	name       TEXT NOT NULL,
	phone      TEXT NOT NULL DEFAULT '',
	subject    TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &PgStore{pool: pool}, nil
}

func (s *PgStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Save inserts a new row and populates msg.ID from the RETURNING clause.
func (s *PgStore) Save(ctx context.Context, msg *model.Message) error {
	msg.Status = model.StatusPending
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO contact_messages (email, name, phone, subject, message, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		msg.Email, msg.Name, msg.Phone, msg.Subject, msg.Message, string(msg.Status),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	msg.ID = model.IntID(id)
	return nil
}

func (s *PgStore) List(ctx context.Context, statuses ...model.Status) ([]model.Message, error) {
	query := "SELECT id, email, name, phone, subject, message, status FROM contact_messages"
	var args []any
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, st := range statuses {
			names[i] = string(st)
		}
		query += " WHERE status = ANY($1)"
		args = append(args, names)
	}
	query += " ORDER BY id"

	rows, err := s.pool.Query(ctx, query, args...)
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

func (s *PgStore) Get(ctx context.Context, id model.MessageID) (model.Message, error) {
	n, ok := id.Int64()
	if !ok {
		return model.Message{}, ErrNotFound
	}
	m, err := scanMessage(s.pool.QueryRow(ctx,
		"SELECT id, email, name, phone, subject, message, status FROM contact_messages WHERE id = $1", n))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Message{}, ErrNotFound
	}
	return m, err
}

func (s *PgStore) UpdateStatus(ctx context.Context, id model.MessageID, status model.Status) (model.Message, error) {
	n, ok := id.Int64()
	if !ok {
		return model.Message{}, ErrNotFound
	}
	m, err := scanMessage(s.pool.QueryRow(ctx,
		`UPDATE contact_messages SET status = $1 WHERE id = $2
		 RETURNING id, email, name, phone, subject, message, status`,
		string(status), n))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Message{}, ErrNotFound
	}
	if err != nil {
		return model.Message{}, fmt.Errorf("update status: %w", err)
	}
	return m, nil
}
