package history

import (
	"context"
	"sync"
	"time"

	"github.com/wakeroute/wakeroute/internal/eta"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Intended for testing; production uses PostgresRepository or
// SQLiteRepository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records []Record
	nextID  int64
}

// NewInMemoryRepository creates a new in-memory outcome log.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

// Append adds a record to the log.
func (r *InMemoryRepository) Append(_ context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.ID = r.nextID
	r.nextID++
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	r.records = append(r.records, *rec)
	return nil
}

// Recent returns up to limit records for the pair, most recent first.
func (r *InMemoryRepository) Recent(_ context.Context, routeKey string, mode eta.Mode, limit int) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Record
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if r.records[i].RouteKey == routeKey && r.records[i].Mode == mode {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

// All returns every record for the pair in insertion order.
func (r *InMemoryRepository) All(_ context.Context, routeKey string, mode eta.Mode) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Record
	for _, rec := range r.records {
		if rec.RouteKey == routeKey && rec.Mode == mode {
			out = append(out, rec)
		}
	}
	return out, nil
}
