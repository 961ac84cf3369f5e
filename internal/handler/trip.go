package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripshare/internal/domain"
	"github.com/pkordes/tripshare/internal/middleware"
)

// createTripRequest is the POST /trips body. The owner comes from the
// X-User-ID header, never from the body.
type createTripRequest struct {
	Origin         string             `json:"origin"`
	Destination    string             `json:"destination"`
	Waypoints      []string           `json:"waypoints"`
	StartTime      time.Time          `json:"start_time"`
	EndTime        *time.Time         `json:"end_time"`
	Recurrence     *domain.Recurrence `json:"recurrence"`
	AvailableSeats *int               `json:"available_seats"`
	Notes          string             `json:"notes"`
}

type tripList struct {
	Data []domain.Trip `json:"data"`
}

type pagedTripList struct {
	Data       []domain.Trip `json:"data"`
	Pagination pagination    `json:"pagination"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body createTripRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	created, err := s.trips.CreateTrip(r.Context(), domain.CreateTripInput{
		UserID:         middleware.UserID(r.Context()),
		Origin:         body.Origin,
		Destination:    body.Destination,
		Waypoints:      body.Waypoints,
		StartTime:      body.StartTime,
		EndTime:        body.EndTime,
		Recurrence:     body.Recurrence,
		AvailableSeats: body.AvailableSeats,
		Notes:          body.Notes,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// SearchTrips handles GET /trips/search?origin=&destination=&departure_date=YYYY-MM-DD&seats=.
func (s *Server) SearchTrips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var date openapi_types.Date
	if err := date.UnmarshalText([]byte(q.Get("departure_date"))); err != nil {
		badRequest(w, "departure_date must be a date in YYYY-MM-DD form")
		return
	}
	seats, ok := optionalInt(w, q.Get("seats"), "seats")
	if !ok {
		return
	}

	trips, err := s.trips.SearchTrips(r.Context(), domain.SearchQuery{
		Origin:        q.Get("origin"),
		Destination:   q.Get("destination"),
		DepartureDate: date.Time,
		Seats:         seats,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripList{Data: trips})
}

// ListMyTrips handles GET /trips/mine?page=&limit=.
func (s *Server) ListMyTrips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, ok := optionalIntPtr(w, q.Get("page"), "page")
	if !ok {
		return
	}
	limit, ok := optionalIntPtr(w, q.Get("limit"), "limit")
	if !ok {
		return
	}
	params := domain.NewPaginationParams(page, limit)

	trips, err := s.trips.ListOwnerTrips(r.Context(), middleware.UserID(r.Context()), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedTripList{
		Data:       trips,
		Pagination: pagination{Page: params.Page, Limit: params.Limit},
	})
}

// GetTripByCode handles GET /trips/code/{code}.
func (s *Server) GetTripByCode(w http.ResponseWriter, r *http.Request) {
	trip, err := s.trips.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// DeleteTrip handles DELETE /trips/{id}. Only the owner may delete.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "trip id is not a valid identifier")
		return
	}
	if _, err := s.trips.DeleteTrip(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// optionalInt parses an optional integer query parameter; absent means 0.
func optionalInt(w http.ResponseWriter, raw, name string) (int, bool) {
	p, ok := optionalIntPtr(w, raw, name)
	if !ok || p == nil {
		return 0, ok
	}
	return *p, true
}

func optionalIntPtr(w http.ResponseWriter, raw, name string) (*int, bool) {
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(w, name+" must be an integer")
		return nil, false
	}
	return &n, true
}
