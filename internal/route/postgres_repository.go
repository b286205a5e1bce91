package route

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wakeroute/wakeroute/internal/eta"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL route repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const routeColumns = `
	id, user_id, label,
	start_address, end_address, target_arrival_local,
	modes, use_correction,
	prep_minutes, safety_margin_minutes, extra_margin_minutes,
	bus_station_id, subway_station,
	created_at, updated_at
`

func modesToStrings(modes []eta.Mode) []string {
	out := make([]string, 0, len(modes))
	for _, m := range modes {
		out = append(out, string(m))
	}
	return out
}

func stringsToModes(names []string) []eta.Mode {
	out := make([]eta.Mode, 0, len(names))
	for _, n := range names {
		out = append(out, eta.Mode(n))
	}
	return out
}

// Get retrieves a route by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = $1`
	return r.scanRoute(r.pool.QueryRow(ctx, query, id))
}

// GetByUserAndID retrieves a route by user ID and route ID.
func (r *PostgresRepository) GetByUserAndID(ctx context.Context, userID, routeID string) (*Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = $1 AND user_id = $2`
	return r.scanRoute(r.pool.QueryRow(ctx, query, routeID, userID))
}

func (r *PostgresRepository) scanRoute(row pgx.Row) (*Route, error) {
	var rt Route
	var modes []string

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
		&rt.BusStationID,
		&rt.SubwayStation,
		&rt.CreatedAt,
		&rt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}

	rt.Modes = stringsToModes(modes)
	return &rt, nil
}

// List retrieves all routes for a user with pagination, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	query := `
		SELECT ` + routeColumns + `
		FROM routes
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*Route
	for rows.Next() {
		rt, err := r.scanRoute(rows)
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
func (r *PostgresRepository) Create(ctx context.Context, rt *Route) error {
	query := `
		INSERT INTO routes (
			id, user_id, label,
			start_address, end_address, target_arrival_local,
			modes, use_correction,
			prep_minutes, safety_margin_minutes, extra_margin_minutes,
			bus_station_id, subway_station,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.pool.Exec(ctx, query,
		rt.ID,
		rt.UserID,
		rt.Label,
		rt.StartAddress,
		rt.EndAddress,
		rt.TargetArrival,
		modesToStrings(rt.Modes),
		rt.UseCorrection,
		rt.PrepMinutes,
		rt.SafetyMarginMinutes,
		rt.ExtraMarginMinutes,
		rt.BusStationID,
		rt.SubwayStation,
		rt.CreatedAt,
		rt.UpdatedAt,
	)
	return err
}

// Update updates an existing route.
func (r *PostgresRepository) Update(ctx context.Context, rt *Route) error {
	query := `
		UPDATE routes SET
			label = $2,
			start_address = $3,
			end_address = $4,
			target_arrival_local = $5,
			modes = $6,
			use_correction = $7,
			prep_minutes = $8,
			safety_margin_minutes = $9,
			extra_margin_minutes = $10,
			bus_station_id = $11,
			subway_station = $12,
			updated_at = $13
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		rt.ID,
		rt.Label,
		rt.StartAddress,
		rt.EndAddress,
		rt.TargetArrival,
		modesToStrings(rt.Modes),
		rt.UseCorrection,
		rt.PrepMinutes,
		rt.SafetyMarginMinutes,
		rt.ExtraMarginMinutes,
		rt.BusStationID,
		rt.SubwayStation,
		rt.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrRouteNotFound
	}
	return nil
}

// Delete deletes a route by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM routes WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
