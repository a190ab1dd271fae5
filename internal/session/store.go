// Package session keeps one BookingSession per authenticated principal.
// Stores serialise read-modify-write per principal; sessions of different
// principals never block each other.
package session

import (
	"context"
	"errors"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

// ErrConflict is returned when a concurrent writer kept winning the race
// for the same session and the update could not be applied.
var ErrConflict = errors.New("session update conflict")

// Mutator edits a session in place.  Returning an error aborts the update
// and leaves the stored session untouched.
type Mutator func(s *model.BookingSession) error

// Store persists booking sessions keyed by principal id.
type Store interface {
	// Get returns the principal's session, or an empty one.
	Get(ctx context.Context, principal string) (model.BookingSession, error)
	// Update applies fn atomically and returns the stored result.
	Update(ctx context.Context, principal string, fn Mutator) (model.BookingSession, error)
	// Delete removes the session.  Deleting a missing session is not an error.
	Delete(ctx context.Context, principal string) error
}

func empty() model.BookingSession {
	return model.BookingSession{
		SelectedSeats: []model.SelectedSeat{},
		Names:         map[string]model.PassengerName{},
	}
}

// normalize fills nil collections so callers can mutate without checks.
func normalize(s *model.BookingSession) {
	if s.SelectedSeats == nil {
		s.SelectedSeats = []model.SelectedSeat{}
	}
	if s.Names == nil {
		s.Names = map[string]model.PassengerName{}
	}
}
