// Package domain contains the core data types for the trip publication service.
// Apart from uuid it has no external dependencies and is imported by every
// other internal package (repo, service, handler, geocode).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is a published route offer: a driver's origin, destination and
// departure time that riders can discover through search.
// TripCode is the short public identifier; ID is the storage identifier.
type Trip struct {
	ID             uuid.UUID     `json:"id"`
	OwnerID        uuid.UUID     `json:"owner_id"`
	TripCode       string        `json:"trip_code"`
	Start          Location      `json:"start_location"`
	End            Location      `json:"end_location"`
	Waypoints      []Location    `json:"waypoints"`
	Schedule       Schedule      `json:"schedule"`
	AvailableSeats int           `json:"available_seats"`
	Status         TripStatus    `json:"status"`
	Notes          string        `json:"notes,omitempty"`
	IsDeleted      bool          `json:"-"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Owner          *OwnerProfile `json:"owner,omitempty"` // joined from users on every repository read
}

// OwnerProfile is the public projection of the user who published a trip.
// The user record itself belongs to the identity collaborator.
type OwnerProfile struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Avatar string    `json:"avatar,omitempty"`
}

// Schedule describes when a trip departs. EndTime is nil for open-ended trips.
type Schedule struct {
	StartTime  time.Time   `json:"start_time"`
	EndTime    *time.Time  `json:"end_time,omitempty"`
	Recurrence *Recurrence `json:"recurrence,omitempty"`
}

// Frequency is how often a recurring trip repeats.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Recurrence marks a trip as repeating on the given weekdays (0 = Sunday).
type Recurrence struct {
	DaysOfWeek []int     `json:"days_of_week"`
	Frequency  Frequency `json:"frequency"`
}

// Validate enforces the schedule rules shared by every write path:
//   - StartTime must be set.
//   - EndTime, if set, must not be before StartTime.
//   - Recurrence days must be 0..6 and the frequency must be known.
func (s Schedule) Validate() error {
	if s.StartTime.IsZero() {
		return InvalidArgument("start time is required")
	}
	if s.EndTime != nil && s.EndTime.Before(s.StartTime) {
		return InvalidArgument("end time must not be before start time")
	}
	if r := s.Recurrence; r != nil {
		for _, d := range r.DaysOfWeek {
			if d < 0 || d > 6 {
				return InvalidArgument("recurrence day %d out of range 0..6", d)
			}
		}
		switch r.Frequency {
		case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		default:
			return InvalidArgument("unknown recurrence frequency %q", r.Frequency)
		}
	}
	return nil
}

// CreateTripInput carries a createTrip request from the HTTP layer to the service.
// Origin and Destination are free text; the service geocodes them.
type CreateTripInput struct {
	UserID         string      `validate:"required"`
	Origin         string      `validate:"required,max=500"`
	Destination    string      `validate:"required,max=500"`
	Waypoints      []string    `validate:"max=10,dive,required,max=500"`
	StartTime      time.Time   `validate:"required"`
	EndTime        *time.Time  `validate:"omitempty"`
	Recurrence     *Recurrence `validate:"omitempty"`
	AvailableSeats *int        `validate:"omitempty,gte=0,lte=100"`
	Notes          string      `validate:"max=2000"`
}
