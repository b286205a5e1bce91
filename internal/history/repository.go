package history

import (
	"context"

	"github.com/wakeroute/wakeroute/internal/eta"
)

// Repository is the append-only outcome log. Appends must be durable per
// the backing store's transactional guarantees; reads may trail writes
// still in flight from other sessions.
type Repository interface {
	// Append adds a record to the log. The record's ID and RecordedAt are
	// assigned by the store if zero.
	Append(ctx context.Context, rec *Record) error

	// Recent returns up to limit records for the exact (routeKey, mode)
	// pair, most recent first.
	Recent(ctx context.Context, routeKey string, mode eta.Mode, limit int) ([]Record, error)

	// All returns every record for the (routeKey, mode) pair in insertion
	// order. Used by the trend model.
	All(ctx context.Context, routeKey string, mode eta.Mode) ([]Record, error)
}
