package model

import "time"

// SessionState is the position of a booking session in the purchase flow.
type SessionState string

const (
	StateEmpty         SessionState = "EMPTY"
	StateEventSet      SessionState = "EVENT_SET"
	StateSeatsSelected SessionState = "SEATS_SELECTED"
	StateSeatsLocked   SessionState = "SEATS_LOCKED"
	StateNamesSet      SessionState = "NAMES_SET"
	StateSaleConfirmed SessionState = "SALE_CONFIRMED"
)

// PassengerName is the person a seat is sold to.
type PassengerName struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Complete reports whether both parts of the name are present.
func (n PassengerName) Complete() bool { return n.FirstName != "" && n.LastName != "" }

// SelectedSeat is a seat the user picked, optionally with the passenger
// the seat will be sold to.
type SelectedSeat struct {
	Row       string  `json:"row"`
	Number    int     `json:"number"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// Ref returns the coordinates of the selected seat.
func (s SelectedSeat) Ref() SeatRef { return SeatRef{Row: s.Row, Number: s.Number} }

// Named reports whether a passenger has been attached to the seat.
func (s SelectedSeat) Named() bool {
	return s.FirstName != nil && *s.FirstName != "" && s.LastName != nil && *s.LastName != ""
}

// BookingSession is the purchase intent of one authenticated principal.
// It is never authoritative for seat occupancy: the inventory service is.
//
// Locked records whether the last lock request for the current selection
// succeeded; LastSale records the last confirmation answer.  Both are
// reset whenever the event or the selection changes.  Confirming is set
// while a sale request for the selection is with the inventory service.
type BookingSession struct {
	EventID       *int64                   `json:"event_id,omitempty"`
	SelectedSeats []SelectedSeat           `json:"selected_seats"`
	Names         map[string]PassengerName `json:"names"`
	Locked        bool                     `json:"locked"`
	LastSale      *SaleOutcome             `json:"last_sale,omitempty"`
	Confirming    bool                     `json:"confirming,omitempty"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// State derives the flow position from the session contents.
func (s BookingSession) State() SessionState {
	switch {
	case s.EventID == nil:
		return StateEmpty
	case s.LastSale != nil && s.LastSale.Succeeded():
		return StateSaleConfirmed
	case len(s.SelectedSeats) == 0:
		return StateEventSet
	case !s.Locked:
		return StateSeatsSelected
	case s.allNamed():
		return StateNamesSet
	default:
		return StateSeatsLocked
	}
}

// Refs returns the coordinates of every selected seat, in selection order.
func (s BookingSession) Refs() []SeatRef {
	out := make([]SeatRef, 0, len(s.SelectedSeats))
	for _, seat := range s.SelectedSeats {
		out = append(out, seat.Ref())
	}
	return out
}

func (s BookingSession) allNamed() bool {
	for _, seat := range s.SelectedSeats {
		if !seat.Named() {
			return false
		}
	}
	return len(s.SelectedSeats) > 0
}
