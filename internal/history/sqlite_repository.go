package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/wakeroute/wakeroute/internal/eta"
)

// SQLiteRepository is a SQLite implementation of Repository for
// personal-scale single-binary deployments. The caller owns the *sql.DB
// (opened via the modernc.org/sqlite driver).
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite outcome log.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// InitSchema creates the outcome log table if it does not exist.
func (r *SQLiteRepository) InitSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS eta_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	route_key TEXT NOT NULL,
	mode TEXT NOT NULL,
	predicted_minutes INTEGER NOT NULL,
	actual_minutes INTEGER NOT NULL,
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_eta_records_bucket ON eta_records (route_key, mode, id);
`
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Append adds a record to the log.
func (r *SQLiteRepository) Append(ctx context.Context, rec *Record) error {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO eta_records (route_key, mode, predicted_minutes, actual_minutes, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.RouteKey, string(rec.Mode), rec.Predicted, rec.Actual, rec.RecordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}
	rec.ID, err = res.LastInsertId()
	return err
}

// Recent returns up to limit records for the pair, most recent first.
func (r *SQLiteRepository) Recent(ctx context.Context, routeKey string, mode eta.Mode, limit int) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, route_key, mode, predicted_minutes, actual_minutes, recorded_at
		 FROM eta_records
		 WHERE route_key = ? AND mode = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		routeKey, string(mode), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scan(rows)
}

// All returns every record for the pair in insertion order.
func (r *SQLiteRepository) All(ctx context.Context, routeKey string, mode eta.Mode) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, route_key, mode, predicted_minutes, actual_minutes, recorded_at
		 FROM eta_records
		 WHERE route_key = ? AND mode = ?
		 ORDER BY id ASC`,
		routeKey, string(mode),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scan(rows)
}

func (r *SQLiteRepository) scan(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var mode, recordedAt string
		if err := rows.Scan(&rec.ID, &rec.RouteKey, &mode, &rec.Predicted, &rec.Actual, &recordedAt); err != nil {
			return nil, err
		}
		rec.Mode = eta.Mode(mode)
		if ts, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
			rec.RecordedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
