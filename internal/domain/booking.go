package domain

type BookingStatus string

const (
	BookingStatusRequested BookingStatus = "REQUESTED"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking is a seeker-catalyst engagement tracked through
// REQUESTED -> CONFIRMED -> COMPLETED. CANCELLED bookings leave the active
// set and are never rendered; the server is authoritative for every
// transition.
type Booking struct {
	ID                int32              `json:"id"`
	Seeker            UserRef            `json:"seeker"`
	Catalyst          UserRef            `json:"catalyst"`
	Status            BookingStatus      `json:"status"`
	Notes             string             `json:"notes"`
	SeekerPreferences PreferenceSnapshot `json:"seeker_preferences"`
	CreatedAt         string             `json:"created_at"`
}

// Active reports whether the booking should be surfaced in a list view.
func (b Booking) Active() bool {
	switch b.Status {
	case BookingStatusRequested, BookingStatusConfirmed, BookingStatusCompleted:
		return true
	}
	return false
}

// CanTransition checks the client-observed state machine before an action is
// issued. The server re-validates; this only gates UI affordances.
func CanTransition(from, to BookingStatus) bool {
	switch from {
	case BookingStatusRequested:
		return to == BookingStatusConfirmed || to == BookingStatusCancelled
	case BookingStatusConfirmed:
		return to == BookingStatusCompleted || to == BookingStatusCancelled
	case BookingStatusCompleted:
		return to == BookingStatusConfirmed || to == BookingStatusCancelled
	}
	return false
}
