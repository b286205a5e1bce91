package route

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wakeroute/wakeroute/internal/api/models"
	"github.com/wakeroute/wakeroute/internal/eta"
	"github.com/wakeroute/wakeroute/internal/planner"
	"github.com/wakeroute/wakeroute/internal/schedule"
)

// Validation constants.
const (
	MaxLabelLength   = 80
	MaxAddressLength = 200
	MaxMarginMinutes = 240
)

// Service provides saved route operations.
type Service struct {
	repo Repository
}

// NewService creates a new route service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List retrieves all routes for a user.
func (s *Service) List(ctx context.Context, userID string, limit int) (*models.PagedRoutes, error) {
	result, err := s.repo.List(ctx, userID, ListOptions{Limit: limit})
	if err != nil {
		return nil, err
	}

	items := make([]models.Route, 0, len(result.Items))
	for _, rt := range result.Items {
		items = append(items, s.toAPIRoute(rt))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedRoutes{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Get retrieves a route by ID for a user.
func (s *Service) Get(ctx context.Context, userID, routeID string) (*models.Route, error) {
	rt, err := s.repo.GetByUserAndID(ctx, userID, routeID)
	if err != nil {
		return nil, err
	}

	result := s.toAPIRoute(rt)
	return &result, nil
}

// GetDomain retrieves the domain route by ID for a user. Used by callers
// that evaluate the route rather than render it.
func (s *Service) GetDomain(ctx context.Context, userID, routeID string) (*Route, error) {
	return s.repo.GetByUserAndID(ctx, userID, routeID)
}

// Create creates a new route for a user.
func (s *Service) Create(ctx context.Context, userID string, input *models.RouteCreateRequest) (*models.Route, error) {
	if fieldErrors := s.validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	rt := &Route{
		ID:                  "rt_" + uuid.New().String()[:22],
		UserID:              userID,
		Label:               input.Label,
		StartAddress:        input.StartAddress,
		EndAddress:          input.EndAddress,
		TargetArrival:       input.TargetArrivalLocal,
		Modes:               parseModes(input.Modes),
		UseCorrection:       input.UseCorrection,
		PrepMinutes:         input.PrepMinutes,
		SafetyMarginMinutes: input.SafetyMarginMinutes,
		ExtraMarginMinutes:  input.ExtraMarginMinutes,
		BusStationID:        input.BusStationID,
		SubwayStation:       input.SubwayStation,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, rt); err != nil {
		return nil, err
	}

	result := s.toAPIRoute(rt)
	return &result, nil
}

// Update updates an existing route for a user.
func (s *Service) Update(ctx context.Context, userID, routeID string, input *models.RouteUpdateRequest) (*models.Route, error) {
	rt, err := s.repo.GetByUserAndID(ctx, userID, routeID)
	if err != nil {
		return nil, err
	}

	if fieldErrors := s.validateUpdateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if input.Label != nil {
		rt.Label = *input.Label
	}
	if input.StartAddress != nil {
		rt.StartAddress = *input.StartAddress
	}
	if input.EndAddress != nil {
		rt.EndAddress = *input.EndAddress
	}
	if input.TargetArrivalLocal != nil {
		rt.TargetArrival = *input.TargetArrivalLocal
	}
	if input.Modes != nil {
		rt.Modes = parseModes(input.Modes)
	}
	if input.UseCorrection != nil {
		rt.UseCorrection = *input.UseCorrection
	}
	if input.PrepMinutes != nil {
		rt.PrepMinutes = *input.PrepMinutes
	}
	if input.SafetyMarginMinutes != nil {
		rt.SafetyMarginMinutes = *input.SafetyMarginMinutes
	}
	if input.ExtraMarginMinutes != nil {
		rt.ExtraMarginMinutes = *input.ExtraMarginMinutes
	}
	if input.BusStationID != nil {
		rt.BusStationID = input.BusStationID
	}
	if input.SubwayStation != nil {
		rt.SubwayStation = input.SubwayStation
	}
	rt.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, rt); err != nil {
		return nil, err
	}

	result := s.toAPIRoute(rt)
	return &result, nil
}

// Delete deletes a route for a user.
func (s *Service) Delete(ctx context.Context, userID, routeID string) error {
	// Verify ownership
	if _, err := s.repo.GetByUserAndID(ctx, userID, routeID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, routeID)
}

// validateCreateInput validates the create route input.
func (s *Service) validateCreateInput(input *models.RouteCreateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Label == "" {
		errs = append(errs, models.FieldError{Field: "label", Message: "is required"})
	} else if len(input.Label) > MaxLabelLength {
		errs = append(errs, models.FieldError{Field: "label", Message: "must be at most 80 characters"})
	}

	errs = append(errs, s.validateAddress(input.StartAddress, "startAddress", true)...)
	errs = append(errs, s.validateAddress(input.EndAddress, "endAddress", true)...)

	if input.TargetArrivalLocal == "" {
		errs = append(errs, models.FieldError{Field: "targetArrivalLocal", Message: "is required"})
	} else if _, _, err := schedule.ParseArrival(input.TargetArrivalLocal); err != nil {
		errs = append(errs, models.FieldError{Field: "targetArrivalLocal", Message: "must be in HH:mm format"})
	}

	errs = append(errs, s.validateModes(input.Modes, true)...)
	errs = append(errs, s.validateMargin(input.PrepMinutes, "prepMinutes")...)
	errs = append(errs, s.validateMargin(input.SafetyMarginMinutes, "safetyMarginMinutes")...)
	errs = append(errs, s.validateMargin(input.ExtraMarginMinutes, "extraMarginMinutes")...)

	return errs
}

// validateUpdateInput validates the update route input.
func (s *Service) validateUpdateInput(input *models.RouteUpdateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Label != nil {
		if *input.Label == "" {
			errs = append(errs, models.FieldError{Field: "label", Message: "cannot be empty"})
		} else if len(*input.Label) > MaxLabelLength {
			errs = append(errs, models.FieldError{Field: "label", Message: "must be at most 80 characters"})
		}
	}

	if input.StartAddress != nil {
		errs = append(errs, s.validateAddress(*input.StartAddress, "startAddress", false)...)
	}
	if input.EndAddress != nil {
		errs = append(errs, s.validateAddress(*input.EndAddress, "endAddress", false)...)
	}

	if input.TargetArrivalLocal != nil {
		if _, _, err := schedule.ParseArrival(*input.TargetArrivalLocal); err != nil {
			errs = append(errs, models.FieldError{Field: "targetArrivalLocal", Message: "must be in HH:mm format"})
		}
	}

	if input.Modes != nil {
		errs = append(errs, s.validateModes(input.Modes, false)...)
	}

	if input.PrepMinutes != nil {
		errs = append(errs, s.validateMargin(*input.PrepMinutes, "prepMinutes")...)
	}
	if input.SafetyMarginMinutes != nil {
		errs = append(errs, s.validateMargin(*input.SafetyMarginMinutes, "safetyMarginMinutes")...)
	}
	if input.ExtraMarginMinutes != nil {
		errs = append(errs, s.validateMargin(*input.ExtraMarginMinutes, "extraMarginMinutes")...)
	}

	return errs
}

func (s *Service) validateAddress(addr, field string, required bool) []models.FieldError {
	if addr == "" {
		if required {
			return []models.FieldError{{Field: field, Message: "is required"}}
		}
		return []models.FieldError{{Field: field, Message: "cannot be empty"}}
	}
	if len(addr) > MaxAddressLength {
		return []models.FieldError{{Field: field, Message: "must be at most 200 characters"}}
	}
	return nil
}

func (s *Service) validateModes(modes []models.Mode, required bool) []models.FieldError {
	if len(modes) == 0 {
		if required {
			return []models.FieldError{{Field: "modes", Message: "is required"}}
		}
		return []models.FieldError{{Field: "modes", Message: "cannot be empty"}}
	}
	for _, m := range modes {
		if _, err := ParseAPIMode(m); err != nil {
			return []models.FieldError{{Field: "modes", Message: "must contain only WALK, BUS or SUBWAY"}}
		}
	}
	return nil
}

func (s *Service) validateMargin(minutes int, field string) []models.FieldError {
	if minutes < 0 {
		return []models.FieldError{{Field: field, Message: "cannot be negative"}}
	}
	if minutes > MaxMarginMinutes {
		return []models.FieldError{{Field: field, Message: "must be at most 240"}}
	}
	return nil
}

// ParseAPIMode converts a wire mode into a domain mode.
func ParseAPIMode(m models.Mode) (eta.Mode, error) {
	switch m {
	case models.ModeWalk:
		return eta.ModeWalk, nil
	case models.ModeBus:
		return eta.ModeBus, nil
	case models.ModeSubway:
		return eta.ModeSubway, nil
	}
	return "", eta.ErrUnknownMode
}

// APIMode converts a domain mode into its wire form.
func APIMode(m eta.Mode) models.Mode {
	switch m {
	case eta.ModeBus:
		return models.ModeBus
	case eta.ModeSubway:
		return models.ModeSubway
	default:
		return models.ModeWalk
	}
}

func parseModes(modes []models.Mode) []eta.Mode {
	out := make([]eta.Mode, 0, len(modes))
	for _, m := range modes {
		dm, err := ParseAPIMode(m)
		if err != nil {
			continue
		}
		out = append(out, dm)
	}
	return out
}

// toAPIRoute converts a domain Route to an API Route.
func (s *Service) toAPIRoute(rt *Route) models.Route {
	modes := make([]models.Mode, 0, len(rt.Modes))
	for _, m := range rt.Modes {
		modes = append(modes, APIMode(m))
	}

	return models.Route{
		ID:                  rt.ID,
		Label:               rt.Label,
		StartAddress:        rt.StartAddress,
		EndAddress:          rt.EndAddress,
		TargetArrivalLocal:  rt.TargetArrival,
		Modes:               modes,
		UseCorrection:       rt.UseCorrection,
		PrepMinutes:         rt.PrepMinutes,
		SafetyMarginMinutes: rt.SafetyMarginMinutes,
		ExtraMarginMinutes:  rt.ExtraMarginMinutes,
		BusStationID:        rt.BusStationID,
		SubwayStation:       rt.SubwayStation,
		RouteKey:            planner.RouteKey(rt.StartAddress, rt.EndAddress),
		CreatedAt:           models.Timestamp(rt.CreatedAt),
		UpdatedAt:           models.Timestamp(rt.UpdatedAt),
	}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
