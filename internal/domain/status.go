package domain

// TripStatus is the moderation state of a published trip.
type TripStatus string

const (
	StatusPending   TripStatus = "pending"
	StatusApproved  TripStatus = "approved"
	StatusRejected  TripStatus = "rejected"
	StatusCancelled TripStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s TripStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// transitions lists the allowed targets for each source status.
var transitions = map[TripStatus][]TripStatus{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusCancelled},
}

// CanTransition reports whether a trip may move from one status to another.
// Only pending trips can be approved or rejected; pending and approved trips
// can be cancelled. Rejected and cancelled are terminal.
func CanTransition(from, to TripStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
