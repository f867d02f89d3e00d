package database

import (
	"context"
	"fmt"
	"time"
)

// StoreError is a durability failure. The scheduler treats it as fatal: the
// process must not keep dispatching without a durable record of what it sent,
// since that risks duplicate notifications on restart.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Delivery is a committed delivery record. Once a record exists for a post id,
// that id is never delivered again.
type Delivery struct {
	PostID      string
	Title       string
	MatchedRule string
	DeliveredAt time.Time
}

type DeliveryRepository interface {
	IsDelivered(ctx context.Context, postID string) (bool, error)
	MarkDelivered(ctx context.Context, postID, title, matchedRule string, at time.Time) (bool, error)
	GetDeliveryCount(ctx context.Context) (int, error)
	GetRecentDeliveries(ctx context.Context, limit int) ([]Delivery, error)
}

type CursorRepository interface {
	Get(ctx context.Context) (int64, error)
	Advance(ctx context.Context, position int64) error
}
