package route_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/wakeroute/wakeroute/internal/eta"
	"github.com/wakeroute/wakeroute/internal/route"
)

func newSQLiteRepo(t *testing.T) *route.SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := route.NewSQLiteRepository(db)
	require.NoError(t, repo.InitSchema(context.Background()))
	return repo
}

func sampleRoute(id string, createdAt time.Time) *route.Route {
	station := "100000127"
	return &route.Route{
		ID:                  id,
		UserID:              testUserID,
		Label:               "Morning commute",
		StartAddress:        "Gwanghwamun Plaza, Seoul",
		EndAddress:          "Gangnam Station, Seoul",
		TargetArrival:       "08:40",
		Modes:               []eta.Mode{eta.ModeWalk, eta.ModeSubway},
		UseCorrection:       true,
		PrepMinutes:         30,
		SafetyMarginMinutes: 5,
		BusStationID:        &station,
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
	}
}

func TestSQLiteRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip preserves everything", func(t *testing.T) {
		repo := newSQLiteRepo(t)
		now := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, repo.Create(ctx, sampleRoute("rt_1", now)))

		got, err := repo.GetByUserAndID(ctx, testUserID, "rt_1")
		require.NoError(t, err)

		assert.Equal(t, "Morning commute", got.Label)
		assert.Equal(t, []eta.Mode{eta.ModeWalk, eta.ModeSubway}, got.Modes)
		assert.True(t, got.UseCorrection)
		require.NotNil(t, got.BusStationID)
		assert.Equal(t, "100000127", *got.BusStationID)
		assert.Nil(t, got.SubwayStation)
		assert.True(t, got.CreatedAt.Equal(now), "created at %v", got.CreatedAt)
	})

	t.Run("user scoping", func(t *testing.T) {
		repo := newSQLiteRepo(t)
		require.NoError(t, repo.Create(ctx, sampleRoute("rt_1", time.Now())))

		_, err := repo.GetByUserAndID(ctx, "usr_other", "rt_1")
		assert.ErrorIs(t, err, route.ErrRouteNotFound)
	})

	t.Run("list pages newest first", func(t *testing.T) {
		repo := newSQLiteRepo(t)
		base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		for i, id := range []string{"rt_a", "rt_b", "rt_c"} {
			rt := sampleRoute(id, base.Add(time.Duration(i)*time.Hour))
			require.NoError(t, repo.Create(ctx, rt))
		}

		result, err := repo.List(ctx, testUserID, route.ListOptions{Limit: 2})
		require.NoError(t, err)
		require.Len(t, result.Items, 2)
		assert.Equal(t, "rt_c", result.Items[0].ID)
		assert.Equal(t, "rt_b", result.Items[1].ID)
		assert.Equal(t, "rt_b", result.NextCursor)
	})

	t.Run("update rewrites fields", func(t *testing.T) {
		repo := newSQLiteRepo(t)
		rt := sampleRoute("rt_1", time.Now())
		require.NoError(t, repo.Create(ctx, rt))

		rt.Label = "Updated"
		rt.Modes = []eta.Mode{eta.ModeBus}
		rt.BusStationID = nil
		require.NoError(t, repo.Update(ctx, rt))

		got, err := repo.Get(ctx, "rt_1")
		require.NoError(t, err)
		assert.Equal(t, "Updated", got.Label)
		assert.Equal(t, []eta.Mode{eta.ModeBus}, got.Modes)
		assert.Nil(t, got.BusStationID)
	})

	t.Run("update of a missing route fails", func(t *testing.T) {
		repo := newSQLiteRepo(t)
		err := repo.Update(ctx, sampleRoute("rt_missing", time.Now()))
		assert.ErrorIs(t, err, route.ErrRouteNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		repo := newSQLiteRepo(t)
		require.NoError(t, repo.Create(ctx, sampleRoute("rt_1", time.Now())))
		require.NoError(t, repo.Delete(ctx, "rt_1"))
		require.NoError(t, repo.Delete(ctx, "rt_1"))

		_, err := repo.Get(ctx, "rt_1")
		assert.ErrorIs(t, err, route.ErrRouteNotFound)
	})
}
