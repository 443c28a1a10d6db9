package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	selectSlotSQL = `SELECT payload::text FROM question_slots WHERE name = $1`
	upsertSlotSQL = `
		INSERT INTO question_slots (name, payload, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (name) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`
)

// pgStore is the subset of *pgxpool.Pool the slot uses.
type pgStore interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSlot keeps the blob in one row of question_slots (see db/migrations).
// The upsert is a single statement, so a reader sees one snapshot or the other.
type PostgresSlot struct {
	db   pgStore
	name string
}

var _ Slot = (*PostgresSlot)(nil)

func NewPostgresSlot(db pgStore, name string) *PostgresSlot {
	if name == "" {
		name = DefaultSlot
	}
	return &PostgresSlot{db: db, name: name}
}

func (s *PostgresSlot) Name() string { return s.name }

func (s *PostgresSlot) Read(ctx context.Context) ([]byte, bool, error) {
	var payload string
	err := s.db.QueryRow(ctx, selectSlotSQL, s.name).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(payload), true, nil
}

func (s *PostgresSlot) Write(ctx context.Context, data []byte) error {
	_, err := s.db.Exec(ctx, upsertSlotSQL, s.name, string(data))
	return err
}
