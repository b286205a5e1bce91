package history

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wakeroute/wakeroute/internal/eta"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL outcome log.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Append adds a record to the log.
func (r *PostgresRepository) Append(ctx context.Context, rec *Record) error {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO eta_records (route_key, mode, predicted_minutes, actual_minutes, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		rec.RouteKey, string(rec.Mode), rec.Predicted, rec.Actual, rec.RecordedAt,
	).Scan(&rec.ID)
}

// Recent returns up to limit records for the pair, most recent first.
func (r *PostgresRepository) Recent(ctx context.Context, routeKey string, mode eta.Mode, limit int) ([]Record, error) {
	query := `
		SELECT id, route_key, mode, predicted_minutes, actual_minutes, recorded_at
		FROM eta_records
		WHERE route_key = $1 AND mode = $2
		ORDER BY id DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, routeKey, string(mode), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// All returns every record for the pair in insertion order.
func (r *PostgresRepository) All(ctx context.Context, routeKey string, mode eta.Mode) ([]Record, error) {
	query := `
		SELECT id, route_key, mode, predicted_minutes, actual_minutes, recorded_at
		FROM eta_records
		WHERE route_key = $1 AND mode = $2
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, routeKey, string(mode))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRecords(rows pgxRows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var mode string
		if err := rows.Scan(&rec.ID, &rec.RouteKey, &mode, &rec.Predicted, &rec.Actual, &rec.RecordedAt); err != nil {
			return nil, err
		}
		rec.Mode = eta.Mode(mode)
		records = append(records, rec)
	}
	return records, rows.Err()
}
