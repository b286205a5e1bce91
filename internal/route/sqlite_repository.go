package route

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/wakeroute/wakeroute/internal/eta"
)

// SQLiteRepository is a SQLite implementation of Repository for
// personal-scale single-binary deployments. The caller owns the *sql.DB
// (opened via the modernc.org/sqlite driver).
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite route repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// InitSchema creates the routes table if it does not exist.
func (r *SQLiteRepository) InitSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS routes (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	label TEXT NOT NULL,
	start_address TEXT NOT NULL,
	end_address TEXT NOT NULL,
	target_arrival_local TEXT NOT NULL,
	modes TEXT NOT NULL,
	use_correction INTEGER NOT NULL,
	prep_minutes INTEGER NOT NULL,
	safety_margin_minutes INTEGER NOT NULL,
	extra_margin_minutes INTEGER NOT NULL,
	bus_station_id TEXT,
	subway_station TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_routes_user ON routes (user_id, created_at);
`
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func joinModes(modes []eta.Mode) string {
	names := make([]string, 0, len(modes))
	for _, m := range modes {
		names = append(names, string(m))
	}
	return strings.Join(names, ",")
}

func splitModes(s string) []eta.Mode {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	modes := make([]eta.Mode, 0, len(parts))
	for _, p := range parts {
		modes = append(modes, eta.Mode(p))
	}
	return modes
}

const sqliteRouteColumns = `id, user_id, label, start_address, end_address, target_arrival_local,
	modes, use_correction, prep_minutes, safety_margin_minutes, extra_margin_minutes,
	bus_station_id, subway_station, created_at, updated_at`

// Get retrieves a route by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Route, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sqliteRouteColumns+` FROM routes WHERE id = ?`, id)
	return scanSQLiteRoute(row)
}

// GetByUserAndID retrieves a route by user ID and route ID.
func (r *SQLiteRepository) GetByUserAndID(ctx context.Context, userID, routeID string) (*Route, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sqliteRouteColumns+` FROM routes WHERE id = ? AND user_id = ?`, routeID, userID)
	return scanSQLiteRoute(row)
}

type sqliteRow interface {
	Scan(dest ...any) error
}

func scanSQLiteRoute(row sqliteRow) (*Route, error) {
	var rt Route
	var modes, createdAt, updatedAt string
	var busStation, subwayStation sql.NullString

	err := row.Scan(
		&rt.ID,
		&rt.UserID,
		&rt.Label,
		&rt.StartAddress,
		&rt.EndAddress,
		&rt.TargetArrival,
		&modes,
		&rt.UseCorrection,
		&rt.PrepMinutes,
		&rt.SafetyMarginMinutes,
		&rt.ExtraMarginMinutes,
		&busStation,
		&subwayStation,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}

	rt.Modes = splitModes(modes)
	if busStation.Valid {
		rt.BusStationID = &busStation.String
	}
	if subwayStation.Valid {
		rt.SubwayStation = &subwayStation.String
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rt.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		rt.UpdatedAt = ts
	}
	return &rt, nil
}

// List retrieves all routes for a user with pagination, newest first.
func (r *SQLiteRepository) List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	fetchLimit := limit + 1

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteRouteColumns+`
		 FROM routes
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id
		 LIMIT ?`,
		userID, fetchLimit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*Route
	for rows.Next() {
		rt, err := scanSQLiteRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{Items: routes}
	if len(routes) > limit {
		result.Items = routes[:limit]
		result.NextCursor = routes[limit-1].ID
	}
	return result, nil
}

// Create creates a new route.
func (r *SQLiteRepository) Create(ctx context.Context, rt *Route) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO routes (`+sqliteRouteColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.ID,
		rt.UserID,
		rt.Label,
		rt.StartAddress,
		rt.EndAddress,
		rt.TargetArrival,
		joinModes(rt.Modes),
		rt.UseCorrection,
		rt.PrepMinutes,
		rt.SafetyMarginMinutes,
		rt.ExtraMarginMinutes,
		rt.BusStationID,
		rt.SubwayStation,
		rt.CreatedAt.UTC().Format(time.RFC3339Nano),
		rt.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Update updates an existing route.
func (r *SQLiteRepository) Update(ctx context.Context, rt *Route) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE routes SET
			label = ?, start_address = ?, end_address = ?, target_arrival_local = ?,
			modes = ?, use_correction = ?, prep_minutes = ?, safety_margin_minutes = ?,
			extra_margin_minutes = ?, bus_station_id = ?, subway_station = ?, updated_at = ?
		 WHERE id = ?`,
		rt.Label,
		rt.StartAddress,
		rt.EndAddress,
		rt.TargetArrival,
		joinModes(rt.Modes),
		rt.UseCorrection,
		rt.PrepMinutes,
		rt.SafetyMarginMinutes,
		rt.ExtraMarginMinutes,
		rt.BusStationID,
		rt.SubwayStation,
		rt.UpdatedAt.UTC().Format(time.RFC3339Nano),
		rt.ID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRouteNotFound
	}
	return nil
}

// Delete deletes a route by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM routes WHERE id = ?`, id)
	return err
}

// Ensure SQLiteRepository implements Repository interface.
var _ Repository = (*SQLiteRepository)(nil)
