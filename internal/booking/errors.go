package booking

import (
	"errors"
	"fmt"
)

// ErrSessionState is wrapped by every error caused by calling an
// operation out of order.
var ErrSessionState = errors.New("session state violation")

var (
	ErrNoEvent          = fmt.Errorf("%w: no event selected", ErrSessionState)
	ErrNoSeats          = fmt.Errorf("%w: no seats selected", ErrSessionState)
	ErrNamesMissing     = fmt.Errorf("%w: every selected seat needs a passenger name", ErrSessionState)
	ErrCatalogIDMissing = fmt.Errorf("%w: event has no catalog identity", ErrSessionState)
	ErrSaleConfirmed    = fmt.Errorf("%w: sale already confirmed, clear the session first", ErrSessionState)
	ErrSaleInProgress   = fmt.Errorf("%w: sale confirmation already in progress", ErrSessionState)
)

// ErrInvalidSelection is wrapped by errors about malformed seat or name
// input.
var ErrInvalidSelection = errors.New("invalid selection")

var (
	ErrTooManySeats  = fmt.Errorf("%w: too many seats", ErrInvalidSelection)
	ErrDuplicateSeat = fmt.Errorf("%w: duplicate seat", ErrInvalidSelection)
	ErrBlankName     = fmt.Errorf("%w: first and last name are required", ErrInvalidSelection)
)

// ErrEventClosed is returned when the event exists but can no longer be
// sold.
var ErrEventClosed = errors.New("event is not on sale")
