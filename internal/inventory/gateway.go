// Package inventory is the client side of the external seat-inventory
// service, which owns seat occupancy and sale confirmation.  Callers depend
// on the Gateway interface; Client is the HTTP implementation.
package inventory

import (
	"context"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

// Gateway is the capability set consumed from the inventory service.
//
// FetchSeatMap returns a cold (empty) map, not an error, when the remote
// side has no data for the event yet.  LockSeats and ConfirmSale return
// application-level rejections as outcomes; only transport and protocol
// failures are errors.
type Gateway interface {
	FetchSeatMap(ctx context.Context, eventID int64) (model.SeatMap, error)
	LockSeats(ctx context.Context, eventID int64, seats []model.SeatRef) (model.LockOutcome, error)
	ConfirmSale(ctx context.Context, catalogEventID int64, seats []model.SelectedSeat) (model.SaleOutcome, error)
}
