package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripshare/internal/domain"
	"github.com/pkordes/tripshare/internal/handler"
	"github.com/pkordes/tripshare/internal/middleware"
)

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	createTrip     func(ctx context.Context, in domain.CreateTripInput) (domain.Trip, error)
	searchTrips    func(ctx context.Context, q domain.SearchQuery) ([]domain.Trip, error)
	getDirections  func(ctx context.Context, o, d string, mode domain.VehicleMode) (domain.RouteDescription, error)
	autocomplete   func(ctx context.Context, input string) ([]domain.Suggestion, error)
	geocode        func(ctx context.Context, address string) (domain.GeocodeResult, error)
	getByCode      func(ctx context.Context, code string) (domain.Trip, error)
	deleteTrip     func(ctx context.Context, userID string, id uuid.UUID) (domain.Trip, error)
	listOwnerTrips func(ctx context.Context, userID string, p domain.PaginationParams) ([]domain.Trip, error)
	exportTrips    func(ctx context.Context, userID string) ([]domain.ExportRow, error)
}

func (m *mockTripServicer) CreateTrip(ctx context.Context, in domain.CreateTripInput) (domain.Trip, error) {
	return m.createTrip(ctx, in)
}
func (m *mockTripServicer) SearchTrips(ctx context.Context, q domain.SearchQuery) ([]domain.Trip, error) {
	return m.searchTrips(ctx, q)
}
func (m *mockTripServicer) GetDirections(ctx context.Context, o, d string, mode domain.VehicleMode) (domain.RouteDescription, error) {
	return m.getDirections(ctx, o, d, mode)
}
func (m *mockTripServicer) Autocomplete(ctx context.Context, input string) ([]domain.Suggestion, error) {
	return m.autocomplete(ctx, input)
}
func (m *mockTripServicer) Geocode(ctx context.Context, address string) (domain.GeocodeResult, error) {
	return m.geocode(ctx, address)
}
func (m *mockTripServicer) GetByCode(ctx context.Context, code string) (domain.Trip, error) {
	return m.getByCode(ctx, code)
}
func (m *mockTripServicer) DeleteTrip(ctx context.Context, userID string, id uuid.UUID) (domain.Trip, error) {
	return m.deleteTrip(ctx, userID, id)
}
func (m *mockTripServicer) ListOwnerTrips(ctx context.Context, userID string, p domain.PaginationParams) ([]domain.Trip, error) {
	return m.listOwnerTrips(ctx, userID, p)
}
func (m *mockTripServicer) ExportOwnerTrips(ctx context.Context, userID string) ([]domain.ExportRow, error) {
	return m.exportTrips(ctx, userID)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

// ---- helpers ---------------------------------------------------------------

const userID = "3f2b0f5e-8f4c-4c52-9a53-0d0a4b1f9a11"

func newHTTPHandler(svc handler.TripServicer) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewServer(svc, log).Routes()
}

func tripFixture() domain.Trip {
	return domain.Trip{
		ID:       uuid.New(),
		OwnerID:  uuid.MustParse(userID),
		TripCode: "K7Q2M",
		Start: domain.Location{
			Address:     "Hà Nội, Việt Nam",
			Coordinates: domain.GeoPoint{Lat: 21.0278, Lng: 105.8342},
		},
		End: domain.Location{
			Address:     "Hồ Chí Minh, Việt Nam",
			Coordinates: domain.GeoPoint{Lat: 10.8231, Lng: 106.6297},
		},
		Schedule:       domain.Schedule{StartTime: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)},
		AvailableSeats: 3,
		Status:         domain.StatusPending,
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(h http.Handler, method, target string, body io.Reader, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(middleware.UserIDHeader, user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

// ---- GET /healthz, /openapi.yaml ------------------------------------------

func TestGetHealth_returns200WithOKStatus(t *testing.T) {
	rec := do(newHTTPHandler(&mockTripServicer{}), http.MethodGet, "/healthz", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestOpenAPI_served(t *testing.T) {
	rec := do(newHTTPHandler(&mockTripServicer{}), http.MethodGet, "/openapi.yaml", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "/trips/search")
}

// ---- POST /trips -----------------------------------------------------------

func TestCreateTrip_201(t *testing.T) {
	fixture := tripFixture()
	var got domain.CreateTripInput
	svc := &mockTripServicer{
		createTrip: func(_ context.Context, in domain.CreateTripInput) (domain.Trip, error) {
			got = in
			return fixture, nil
		},
	}

	rec := do(newHTTPHandler(svc), http.MethodPost, "/trips", jsonBody(t, map[string]any{
		"origin":          "Hanoi",
		"destination":     "Ho Chi Minh City",
		"start_time":      "2024-06-01T08:00:00Z",
		"available_seats": 3,
		"notes":           "no smoking",
	}), userID)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "Hanoi", got.Origin)
	assert.Equal(t, "Ho Chi Minh City", got.Destination)
	assert.True(t, got.StartTime.Equal(fixture.Schedule.StartTime))
	require.NotNil(t, got.AvailableSeats)
	assert.Equal(t, 3, *got.AvailableSeats)
	assert.Equal(t, "no smoking", got.Notes)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "K7Q2M", body["trip_code"])
	assert.Equal(t, "pending", body["status"])
	assert.NotContains(t, body, "is_deleted")
}

func TestCreateTrip_401_WithoutUser(t *testing.T) {
	svc := &mockTripServicer{createTrip: func(context.Context, domain.CreateTripInput) (domain.Trip, error) {
		t.Fatal("service must not be called")
		return domain.Trip{}, nil
	}}

	rec := do(newHTTPHandler(svc), http.MethodPost, "/trips", jsonBody(t, map[string]any{"origin": "Hanoi"}), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateTrip_400_MalformedBody(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":      `{"origin":`,
		"unknown field": `{"origin":"Hanoi","driver":"me"}`,
		"bad time":      `{"origin":"Hanoi","start_time":"tomorrow"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(newHTTPHandler(&mockTripServicer{}), http.MethodPost, "/trips", strings.NewReader(raw), userID)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid_argument", decodeError(t, rec).Error.Code)
		})
	}
}

func TestCreateTrip_ErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"invalid", domain.InvalidArgument("user id is not a valid identifier"), http.StatusBadRequest, "invalid_argument", "user id is not a valid identifier"},
		{"geocode", domain.NotFound("no geocode results"), http.StatusNotFound, "not_found", "no geocode results"},
		{"conflict", domain.Conflict("trip code already in use"), http.StatusConflict, "conflict", "trip code already in use"},
		{"exhausted", domain.ResourceExhausted("could not generate a unique trip code after 10 attempts"), http.StatusServiceUnavailable, "resource_exhausted", "could not generate a unique trip code after 10 attempts"},
		{"internal", errors.New("pq: connection refused to 10.0.0.3"), http.StatusInternalServerError, "internal", "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockTripServicer{createTrip: func(context.Context, domain.CreateTripInput) (domain.Trip, error) {
				return domain.Trip{}, fmt.Errorf("service.TripService.CreateTrip: %w", tc.err)
			}}

			rec := do(newHTTPHandler(svc), http.MethodPost, "/trips", jsonBody(t, map[string]any{"origin": "Hanoi"}), userID)

			require.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.code, body.Error.Code)
			assert.Equal(t, tc.message, body.Error.Message)
		})
	}
}

// ---- GET /trips/search -----------------------------------------------------

func TestSearchTrips_200(t *testing.T) {
	var got domain.SearchQuery
	svc := &mockTripServicer{searchTrips: func(_ context.Context, q domain.SearchQuery) ([]domain.Trip, error) {
		got = q
		return []domain.Trip{tripFixture()}, nil
	}}

	rec := do(newHTTPHandler(svc), http.MethodGet,
		"/trips/search?origin=Hanoi&destination=Ho+Chi+Minh+City&departure_date=2024-06-01&seats=2", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hanoi", got.Origin)
	assert.Equal(t, "Ho Chi Minh City", got.Destination)
	assert.Equal(t, 2, got.Seats)
	y, m, d := got.DepartureDate.Date()
	assert.Equal(t, []int{2024, 6, 1}, []int{y, int(m), d})

	var body struct {
		Data []domain.Trip `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "K7Q2M", body.Data[0].TripCode)
}

func TestSearchTrips_SeatsOptional(t *testing.T) {
	var got domain.SearchQuery
	svc := &mockTripServicer{searchTrips: func(_ context.Context, q domain.SearchQuery) ([]domain.Trip, error) {
		got = q
		return []domain.Trip{tripFixture()}, nil
	}}

	rec := do(newHTTPHandler(svc), http.MethodGet, "/trips/search?origin=a&destination=b&departure_date=2024-06-01", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, got.Seats, "the service applies the default")
}

func TestSearchTrips_400_BadQuery(t *testing.T) {
	h := newHTTPHandler(&mockTripServicer{})
	for name, target := range map[string]string{
		"missing date": "/trips/search?origin=a&destination=b",
		"bad date":     "/trips/search?origin=a&destination=b&departure_date=01/06/2024",
		"bad seats":    "/trips/search?origin=a&destination=b&departure_date=2024-06-01&seats=many",
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(h, http.MethodGet, target, nil, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSearchTrips_404_NothingMatched(t *testing.T) {
	svc := &mockTripServicer{searchTrips: func(context.Context, domain.SearchQuery) ([]domain.Trip, error) {
		return nil, domain.NotFound("no trips found matching criteria")
	}}

	rec := do(newHTTPHandler(svc), http.MethodGet, "/trips/search?origin=a&destination=b&departure_date=2024-06-01", nil, "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no trips found matching criteria", decodeError(t, rec).Error.Message)
}

// ---- GET /trips/mine -------------------------------------------------------

func TestListMyTrips_200(t *testing.T) {
	var gotUser string
	var gotPage domain.PaginationParams
	svc := &mockTripServicer{listOwnerTrips: func(_ context.Context, u string, p domain.PaginationParams) ([]domain.Trip, error) {
		gotUser, gotPage = u, p
		return []domain.Trip{}, nil
	}}

	rec := do(newHTTPHandler(svc), http.MethodGet, "/trips/mine?page=2&limit=500", nil, userID)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, domain.PaginationParams{Page: 2, Limit: 100}, gotPage)
	assert.JSONEq(t, `{"data":[],"pagination":{"page":2,"limit":100}}`, rec.Body.String())
}

func TestListMyTrips_401(t *testing.T) {
	rec := do(newHTTPHandler(&mockTripServicer{}), http.MethodGet, "/trips/mine", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ---- GET /trips/code/{code} ------------------------------------------------

func TestGetTripByCode(t *testing.T) {
	svc := &mockTripServicer{getByCode: func(_ context.Context, code string) (domain.Trip, error) {
		if code == "K7Q2M" {
			return tripFixture(), nil
		}
		return domain.Trip{}, domain.NotFound("trip not found")
	}}
	h := newHTTPHandler(svc)

	rec := do(h, http.MethodGet, "/trips/code/K7Q2M", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/trips/code/ZZZZZ", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "trip not found", decodeError(t, rec).Error.Message)
}

// ---- DELETE /trips/{id} ----------------------------------------------------

func TestDeleteTrip_204(t *testing.T) {
	id := uuid.New()
	var gotUser string
	var gotID uuid.UUID
	svc := &mockTripServicer{deleteTrip: func(_ context.Context, u string, tid uuid.UUID) (domain.Trip, error) {
		gotUser, gotID = u, tid
		return domain.Trip{ID: tid, IsDeleted: true}, nil
	}}

	rec := do(newHTTPHandler(svc), http.MethodDelete, "/trips/"+id.String(), nil, userID)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, id, gotID)
	assert.Empty(t, rec.Body.String())
}

func TestDeleteTrip_400_BadID(t *testing.T) {
	rec := do(newHTTPHandler(&mockTripServicer{}), http.MethodDelete, "/trips/not-a-uuid", nil, userID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTrip_404(t *testing.T) {
	svc := &mockTripServicer{deleteTrip: func(context.Context, string, uuid.UUID) (domain.Trip, error) {
		return domain.Trip{}, domain.NotFound("trip not found")
	}}

	rec := do(newHTTPHandler(svc), http.MethodDelete, "/trips/"+uuid.NewString(), nil, userID)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
