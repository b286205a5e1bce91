package route

import "context"

// ListOptions contains options for listing routes.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult contains the results of listing routes.
type ListResult struct {
	Items      []*Route
	NextCursor string
}

// Repository defines the interface for route persistence.
type Repository interface {
	// Get retrieves a route by ID.
	Get(ctx context.Context, id string) (*Route, error)

	// GetByUserAndID retrieves a route by user ID and route ID.
	// Returns ErrRouteNotFound if the route doesn't exist or doesn't
	// belong to the user.
	GetByUserAndID(ctx context.Context, userID, routeID string) (*Route, error)

	// List retrieves all routes for a user with pagination.
	List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error)

	// Create creates a new route.
	Create(ctx context.Context, route *Route) error

	// Update updates an existing route.
	Update(ctx context.Context, route *Route) error

	// Delete deletes a route by ID.
	Delete(ctx context.Context, id string) error
}
