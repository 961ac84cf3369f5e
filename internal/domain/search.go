package domain

import (
	"time"

	"github.com/google/uuid"
)

// SearchQuery is a rider's search request as received from the HTTP layer.
// Seats defaults to 1 when zero.
type SearchQuery struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
	Seats         int
}

// SearchCriteria is the fully resolved repository query built by the service
// after geocoding: formatted addresses to substring-match and a closed time window.
type SearchCriteria struct {
	StartAddress string
	EndAddress   string
	From         time.Time
	To           time.Time
	MinSeats     int
}

// TripFilter narrows FindActive/FindOneActive. Zero-valued fields are ignored.
// Active scoping (is_deleted = false) is always applied by the repository.
type TripFilter struct {
	ID       uuid.UUID
	OwnerID  uuid.UUID
	TripCode string
	Status   TripStatus
}

// DayWindow returns the inclusive [00:00:00.000, 23:59:59.999] interval of the
// calendar day that date falls on, evaluated in loc.
func DayWindow(date time.Time, loc *time.Location) (from, to time.Time) {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := date.Date()
	from = time.Date(y, m, d, 0, 0, 0, 0, loc)
	to = from.AddDate(0, 0, 1).Add(-time.Millisecond)
	return from, to
}
