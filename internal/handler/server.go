// Package handler implements the HTTP surface of the trips API.
// All handlers are methods on Server; routes are registered in Routes.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/tripshare/internal/apidoc"
	"github.com/pkordes/tripshare/internal/domain"
	"github.com/pkordes/tripshare/internal/middleware"
)

// TripServicer defines the business operations the handlers depend on.
// *service.TripService satisfies it; tests inject a mock.
type TripServicer interface {
	CreateTrip(ctx context.Context, in domain.CreateTripInput) (domain.Trip, error)
	SearchTrips(ctx context.Context, q domain.SearchQuery) ([]domain.Trip, error)
	GetDirections(ctx context.Context, origin, destination string, mode domain.VehicleMode) (domain.RouteDescription, error)
	Autocomplete(ctx context.Context, input string) ([]domain.Suggestion, error)
	Geocode(ctx context.Context, address string) (domain.GeocodeResult, error)
	GetByCode(ctx context.Context, code string) (domain.Trip, error)
	DeleteTrip(ctx context.Context, userID string, tripID uuid.UUID) (domain.Trip, error)
	ListOwnerTrips(ctx context.Context, userID string, page domain.PaginationParams) ([]domain.Trip, error)
	ExportOwnerTrips(ctx context.Context, userID string) ([]domain.ExportRow, error)
}

// Server holds the handlers' dependencies.
type Server struct {
	trips TripServicer
	log   *slog.Logger
}

// NewServer constructs the Server. A nil logger uses slog.Default().
func NewServer(trips TripServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{trips: trips, log: log}
}

// Routes returns the API router. Cross-cutting middleware (request id,
// logging, CORS, body limits) is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Get("/trips/search", s.SearchTrips)
	r.Get("/trips/code/{code}", s.GetTripByCode)
	r.Get("/search-direction", s.GetDirections)
	r.Get("/autocomplete", s.Autocomplete)
	r.Get("/geocode", s.Geocode)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUserID)
		r.Post("/trips", s.CreateTrip)
		r.Get("/trips/mine", s.ListMyTrips)
		r.Get("/trips/mine/export", s.ExportMyTrips)
		r.Delete("/trips/{id}", s.DeleteTrip)
	})

	return r
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(apidoc.OpenAPI)
}
