package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	upsertRecordSQL = `
INSERT INTO conversation_states (user_id, record, expires_at, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (user_id) DO UPDATE
SET record = EXCLUDED.record, expires_at = EXCLUDED.expires_at, updated_at = now()`

	selectRecordSQL = `
SELECT record FROM conversation_states
WHERE user_id = $1 AND (expires_at IS NULL OR expires_at > now())`

	deleteRecordSQL = `DELETE FROM conversation_states WHERE user_id = $1`
	sweepExpiredSQL = `DELETE FROM conversation_states WHERE expires_at IS NOT NULL AND expires_at <= now()`
)

// PostgresBackend stores records in the conversation_states table.
type PostgresBackend struct {
	db *sqlx.DB
}

// NewPostgresBackend wraps a migrated database handle.
func NewPostgresBackend(db *sqlx.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// Load returns the user's unexpired record.
func (p *PostgresBackend) Load(ctx context.Context, userID int64) ([]byte, error) {
	var record []byte
	err := p.db.GetContext(ctx, &record, selectRecordSQL, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	return record, nil
}

// Save upserts the user's record.
func (p *PostgresBackend) Save(ctx context.Context, userID int64, record []byte, ttl time.Duration) error {
	var expires sql.NullTime
	if ttl > 0 {
		expires = sql.NullTime{Time: time.Now().Add(ttl).UTC(), Valid: true}
	}
	if _, err := p.db.ExecContext(ctx, upsertRecordSQL, userID, record, expires); err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	return nil
}

// Delete removes the user's record.
func (p *PostgresBackend) Delete(ctx context.Context, userID int64) error {
	if _, err := p.db.ExecContext(ctx, deleteRecordSQL, userID); err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}

// Sweep deletes expired rows.
func (p *PostgresBackend) Sweep(ctx context.Context) (int, error) {
	res, err := p.db.ExecContext(ctx, sweepExpiredSQL)
	if err != nil {
		return 0, fmt.Errorf("sweep states: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep states: %w", err)
	}
	return int(n), nil
}
