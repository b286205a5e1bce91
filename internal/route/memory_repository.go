package route

import (
	"context"
	"sort"
	"sync"

	"github.com/wakeroute/wakeroute/internal/eta"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and single-user local runs.
type InMemoryRepository struct {
	mu     sync.RWMutex
	routes map[string]*Route
}

// NewInMemoryRepository creates a new in-memory route repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		routes: make(map[string]*Route),
	}
}

func copyRoute(r *Route) *Route {
	cpy := *r
	cpy.Modes = append([]eta.Mode(nil), r.Modes...)
	return &cpy
}

// Get retrieves a route by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.routes[id]
	if !ok {
		return nil, ErrRouteNotFound
	}
	return copyRoute(rt), nil
}

// GetByUserAndID retrieves a route by user ID and route ID.
func (r *InMemoryRepository) GetByUserAndID(_ context.Context, userID, routeID string) (*Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.routes[routeID]
	if !ok || rt.UserID != userID {
		return nil, ErrRouteNotFound
	}
	return copyRoute(rt), nil
}

// List retrieves all routes for a user with pagination, newest first.
func (r *InMemoryRepository) List(_ context.Context, userID string, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var routes []*Route
	for _, rt := range r.routes {
		if rt.UserID == userID {
			routes = append(routes, copyRoute(rt))
		}
	}
	sort.Slice(routes, func(i, j int) bool {
		if !routes[i].CreatedAt.Equal(routes[j].CreatedAt) {
			return routes[i].CreatedAt.After(routes[j].CreatedAt)
		}
		return routes[i].ID < routes[j].ID
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{Items: routes}
	if len(routes) > limit {
		result.Items = routes[:limit]
		result.NextCursor = routes[limit-1].ID
	}
	return result, nil
}

// Create creates a new route.
func (r *InMemoryRepository) Create(_ context.Context, rt *Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.routes[rt.ID] = copyRoute(rt)
	return nil
}

// Update updates an existing route.
func (r *InMemoryRepository) Update(_ context.Context, rt *Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.routes[rt.ID]; !ok {
		return ErrRouteNotFound
	}
	r.routes[rt.ID] = copyRoute(rt)
	return nil
}

// Delete deletes a route by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.routes, id)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
