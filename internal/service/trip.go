// Package service contains the business logic for trip publication and discovery.
// Services validate inputs, orchestrate the map gateway and the trip code
// generator, and call repo interfaces. No SQL or HTTP lives here.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/tripshare/internal/domain"
	"github.com/pkordes/tripshare/internal/repo"
	"github.com/pkordes/tripshare/internal/tripcode"
)

// geohashPrecision gives cells of roughly 5m x 5m.
const geohashPrecision = 9

const (
	msgInvalidGeocode     = "invalid geocode data"
	msgInvalidEndpoints   = "invalid origin or destination"
	msgNoTripsMatched     = "no trips found matching criteria"
	msgDirectionsNotFound = "search not found"
	msgTripNotFound       = "trip not found"
)

// Geocoder is the map gateway as seen by the service.
// *geocode.Gateway satisfies it.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.GeocodeResult, error)
	Directions(ctx context.Context, origin, destination string, mode domain.VehicleMode) (domain.RouteDescription, error)
	Autocomplete(ctx context.Context, input string) ([]domain.Suggestion, error)
}

// CodeGenerator hands out trip codes not held by any active trip.
// *tripcode.Generator satisfies it.
type CodeGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// TripService implements trip publication and discovery.
// It holds no per-request state and is safe for concurrent use.
type TripService struct {
	repo     repo.TripRepo
	geo      Geocoder
	codes    CodeGenerator
	log      *slog.Logger
	loc      *time.Location
	validate *validator.Validate
}

// NewTripService wires the service. loc is the calendar used to turn a search
// date into a day window; nil means time.Local.
func NewTripService(r repo.TripRepo, geo Geocoder, codes CodeGenerator, log *slog.Logger, loc *time.Location) *TripService {
	if log == nil {
		log = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &TripService{
		repo:     r,
		geo:      geo,
		codes:    codes,
		log:      log.With("component", "trip_service"),
		loc:      loc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// CreateTrip geocodes the endpoints, assigns a trip code and persists a
// pending trip. Nothing is written unless every geocode succeeds.
//
// Errors:
//   - ErrInvalidArgument for malformed input (checked before any I/O).
//   - ErrNotFound when geocoding fails, the owner is unknown or deleted,
//     or the store rejects the row.
//   - ErrResourceExhausted when no free trip code could be drawn.
//   - ErrConflict when another trip took the code between check and insert.
func (s *TripService) CreateTrip(ctx context.Context, in domain.CreateTripInput) (domain.Trip, error) {
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.CreateTrip: %w", validationError(err))
	}
	ownerID, err := uuid.Parse(in.UserID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.CreateTrip: %w",
			domain.InvalidArgument("user id is not a valid identifier"))
	}
	schedule := domain.Schedule{StartTime: in.StartTime, EndTime: in.EndTime, Recurrence: in.Recurrence}
	if err := schedule.Validate(); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.CreateTrip: %w", err)
	}

	addrs := append([]string{in.Origin, in.Destination}, in.Waypoints...)
	locs, err := s.geocodeLocations(ctx, addrs)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.CreateTrip: %w", err)
	}

	code, err := s.codes.Generate(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.CreateTrip: %w", err)
	}

	seats := 0
	if in.AvailableSeats != nil {
		seats = *in.AvailableSeats
	}
	trip := domain.Trip{
		OwnerID:        ownerID,
		TripCode:       code,
		Start:          locs[0],
		End:            locs[1],
		Waypoints:      locs[2:],
		Schedule:       schedule,
		AvailableSeats: seats,
		Status:         domain.StatusPending,
		Notes:          in.Notes,
	}

	created, err := s.repo.Create(ctx, trip)
	if errors.Is(err, domain.ErrConstraint) {
		return domain.Trip{}, fmt.Errorf("service.TripService.CreateTrip: %w",
			domain.NotFound("trip rejected by store: %s", domain.Message(err)))
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.CreateTrip: %w", err)
	}

	s.log.InfoContext(ctx, "trip created",
		"trip_id", created.ID,
		"trip_code", created.TripCode,
		"owner_id", created.OwnerID,
	)
	return created, nil
}

// SearchTrips finds pending trips between two places departing on a given
// calendar day. An empty result is reported as ErrNotFound.
func (s *TripService) SearchTrips(ctx context.Context, q domain.SearchQuery) ([]domain.Trip, error) {
	if strings.TrimSpace(q.Origin) == "" || strings.TrimSpace(q.Destination) == "" {
		return nil, fmt.Errorf("service.TripService.SearchTrips: %w",
			domain.InvalidArgument("origin and destination are required"))
	}
	if q.DepartureDate.IsZero() {
		return nil, fmt.Errorf("service.TripService.SearchTrips: %w",
			domain.InvalidArgument("departure date is required"))
	}
	if q.Seats < 0 {
		return nil, fmt.Errorf("service.TripService.SearchTrips: %w",
			domain.InvalidArgument("seats must not be negative"))
	}
	seats := q.Seats
	if seats == 0 {
		seats = 1
	}

	var origin, destination domain.GeocodeResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		origin, err = s.geo.Geocode(gctx, q.Origin)
		return err
	})
	g.Go(func() (err error) {
		destination, err = s.geo.Geocode(gctx, q.Destination)
		return err
	})
	if err := g.Wait(); err != nil || origin.FormattedAddress == "" || destination.FormattedAddress == "" {
		return nil, fmt.Errorf("service.TripService.SearchTrips: %w", domain.NotFound(msgInvalidEndpoints))
	}

	from, to := domain.DayWindow(q.DepartureDate, s.loc)
	trips, err := s.repo.Search(ctx, domain.SearchCriteria{
		StartAddress: origin.FormattedAddress,
		EndAddress:   destination.FormattedAddress,
		From:         from,
		To:           to,
		MinSeats:     seats,
	})
	if err != nil {
		return nil, fmt.Errorf("service.TripService.SearchTrips: %w", err)
	}
	if len(trips) == 0 {
		return nil, fmt.Errorf("service.TripService.SearchTrips: %w", domain.NotFound(msgNoTripsMatched))
	}
	return trips, nil
}

// GetDirections returns routes between two free-text places.
// Every provider failure is reported as the same ErrNotFound.
func (s *TripService) GetDirections(ctx context.Context, origin, destination string, mode domain.VehicleMode) (domain.RouteDescription, error) {
	if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
		return domain.RouteDescription{}, fmt.Errorf("service.TripService.GetDirections: %w",
			domain.InvalidArgument("origin and destination are required"))
	}
	routes, err := s.geo.Directions(ctx, origin, destination, mode)
	if err != nil {
		return domain.RouteDescription{}, fmt.Errorf("service.TripService.GetDirections: %w",
			domain.NotFound(msgDirectionsNotFound))
	}
	return routes, nil
}

// Autocomplete returns place suggestions for a partial address.
func (s *TripService) Autocomplete(ctx context.Context, input string) ([]domain.Suggestion, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("service.TripService.Autocomplete: %w", domain.InvalidArgument("input is required"))
	}
	out, err := s.geo.Autocomplete(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Autocomplete: %w", err)
	}
	return out, nil
}

// Geocode resolves one free-text address.
func (s *TripService) Geocode(ctx context.Context, address string) (domain.GeocodeResult, error) {
	if strings.TrimSpace(address) == "" {
		return domain.GeocodeResult{}, fmt.Errorf("service.TripService.Geocode: %w", domain.InvalidArgument("address is required"))
	}
	res, err := s.geo.Geocode(ctx, address)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("service.TripService.Geocode: %w", err)
	}
	return res, nil
}

// GetByCode returns the active trip holding a share code. Codes are matched
// case-insensitively.
func (s *TripService) GetByCode(ctx context.Context, code string) (domain.Trip, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !tripcode.Valid(code) {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByCode: %w",
			domain.InvalidArgument("trip code must be %d letters or digits", tripcode.Length))
	}
	t, err := s.repo.FindByCode(ctx, code)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByCode: %w", domain.NotFound(msgTripNotFound))
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByCode: %w", err)
	}
	return t, nil
}

// DeleteTrip soft-deletes a trip owned by userID. A trip owned by someone
// else is reported as not found.
func (s *TripService) DeleteTrip(ctx context.Context, userID string, tripID uuid.UUID) (domain.Trip, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.DeleteTrip: %w",
			domain.InvalidArgument("user id is not a valid identifier"))
	}
	if _, err := s.repo.FindOneActive(ctx, domain.TripFilter{ID: tripID, OwnerID: ownerID}); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.NotFound(msgTripNotFound)
		}
		return domain.Trip{}, fmt.Errorf("service.TripService.DeleteTrip: %w", err)
	}

	deleted, err := s.repo.SoftDelete(ctx, tripID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Trip{}, fmt.Errorf("service.TripService.DeleteTrip: %w", domain.NotFound(msgTripNotFound))
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.DeleteTrip: %w", err)
	}

	s.log.InfoContext(ctx, "trip deleted", "trip_id", deleted.ID, "owner_id", ownerID)
	return deleted, nil
}

// ListOwnerTrips returns one page of the user's active trips, earliest first.
// Always returns a non-nil slice.
func (s *TripService) ListOwnerTrips(ctx context.Context, userID string, page domain.PaginationParams) ([]domain.Trip, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListOwnerTrips: %w",
			domain.InvalidArgument("user id is not a valid identifier"))
	}
	trips, err := s.repo.FindActive(ctx, domain.TripFilter{OwnerID: ownerID}, page)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListOwnerTrips: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// geocodeLocations resolves every address concurrently. The first failure
// cancels the rest; results keep the input order.
func (s *TripService) geocodeLocations(ctx context.Context, addrs []string) ([]domain.Location, error) {
	locs := make([]domain.Location, len(addrs))
	g, gctx := errgroup.WithContext(ctx)
	for i, addr := range addrs {
		g.Go(func() error {
			res, err := s.geo.Geocode(gctx, addr)
			if err != nil {
				return err
			}
			loc, err := toLocation(addr, res)
			if err != nil {
				return err
			}
			locs[i] = loc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return locs, nil
}

// toLocation turns a geocode result into a stored location. A result without
// usable coordinates is rejected.
func toLocation(input string, res domain.GeocodeResult) (domain.Location, error) {
	if res.Coordinates == nil || !res.Coordinates.Valid() {
		return domain.Location{}, domain.NotFound(msgInvalidGeocode)
	}
	addr := res.FormattedAddress
	if addr == "" {
		addr = input
	}
	p := *res.Coordinates
	return domain.Location{
		Address:     addr,
		PlaceID:     res.PlaceID,
		Coordinates: p,
		Geohash:     geohash.EncodeWithPrecision(p.Lat, p.Lng, geohashPrecision),
	}, nil
}

// validationError turns the first validator failure into an InvalidArgument.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.InvalidArgument("invalid input")
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return domain.InvalidArgument("%s is required", fieldName(fe.Field()))
	case "max":
		return domain.InvalidArgument("%s exceeds maximum of %s", fieldName(fe.Field()), fe.Param())
	case "gte", "lte":
		return domain.InvalidArgument("%s must be between 0 and 100", fieldName(fe.Field()))
	default:
		return domain.InvalidArgument("%s is invalid", fieldName(fe.Field()))
	}
}

var fieldNames = map[string]string{
	"UserID":         "user id",
	"Origin":         "origin",
	"Destination":    "destination",
	"Waypoints":      "waypoints",
	"StartTime":      "start time",
	"AvailableSeats": "available seats",
	"Notes":          "notes",
}

func fieldName(f string) string {
	if n, ok := fieldNames[f]; ok {
		return n
	}
	// dive errors report Waypoints[3]
	if strings.HasPrefix(f, "Waypoints[") {
		return "waypoint"
	}
	return strings.ToLower(f)
}
