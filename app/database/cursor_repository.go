package database

import (
	"context"
	"database/sql"
	"time"
)

// SQLCursorRepository persists the poller's fetch cursor. The cursor is an
// optimization and an observability aid, never the dedup source of truth:
// losing it cannot cause duplicate delivery, only a wider re-fetch.
type SQLCursorRepository struct {
	db *DB
}

func NewCursorRepository(db *DB) *SQLCursorRepository {
	return &SQLCursorRepository{db: db}
}

func (r *SQLCursorRepository) Get(ctx context.Context) (int64, error) {
	var position int64
	err := r.db.QueryRowContext(ctx,
		`SELECT position FROM fetch_cursor WHERE id = 1`).Scan(&position)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, &StoreError{Op: "cursor read", Err: err}
	}
	return position, nil
}

// Advance moves the cursor forward. Positions smaller than the stored one are
// ignored, so the cursor never moves backward across cycles.
func (r *SQLCursorRepository) Advance(ctx context.Context, position int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fetch_cursor (id, position, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			position = max(position, excluded.position),
			updated_at = excluded.updated_at
	`, position, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return &StoreError{Op: "cursor advance", Err: err}
	}
	return nil
}
