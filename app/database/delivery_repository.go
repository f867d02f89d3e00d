package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLDeliveryRepository handles database operations for delivery records
type SQLDeliveryRepository struct {
	db *DB
}

func NewDeliveryRepository(db *DB) *SQLDeliveryRepository {
	return &SQLDeliveryRepository{db: db}
}

func (r *SQLDeliveryRepository) IsDelivered(ctx context.Context, postID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM deliveries WHERE post_id = ? LIMIT 1`, postID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, &StoreError{Op: "delivery check", Err: err}
	}
	return true, nil
}

// MarkDelivered commits a delivery record. It reports whether the record was
// newly inserted; a false return means another caller already committed this
// id, which is safe to ignore. The write is durable when this returns.
func (r *SQLDeliveryRepository) MarkDelivered(ctx context.Context, postID, title, matchedRule string, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO deliveries (post_id, title, matched_rule, delivered_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (post_id) DO NOTHING`,
		postID, title, matchedRule, at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, &StoreError{Op: "delivery mark", Err: err}
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, &StoreError{Op: "delivery mark", Err: err}
	}

	return inserted > 0, nil
}

func (r *SQLDeliveryRepository) GetDeliveryCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deliveries`).Scan(&count)
	if err != nil {
		return 0, &StoreError{Op: "delivery count", Err: err}
	}
	return count, nil
}

func (r *SQLDeliveryRepository) GetRecentDeliveries(ctx context.Context, limit int) ([]Delivery, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT post_id, title, matched_rule, delivered_at
		FROM deliveries
		ORDER BY delivered_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, &StoreError{Op: "recent deliveries", Err: err}
	}
	defer rows.Close()

	var deliveries []Delivery
	for rows.Next() {
		var d Delivery
		var deliveredAt string
		if err := rows.Scan(&d.PostID, &d.Title, &d.MatchedRule, &deliveredAt); err != nil {
			return nil, &StoreError{Op: "recent deliveries", Err: err}
		}
		d.DeliveredAt, err = time.Parse(time.RFC3339Nano, deliveredAt)
		if err != nil {
			return nil, &StoreError{Op: "recent deliveries", Err: fmt.Errorf("malformed delivered_at %q: %w", deliveredAt, err)}
		}
		deliveries = append(deliveries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "recent deliveries", Err: err}
	}

	return deliveries, nil
}
