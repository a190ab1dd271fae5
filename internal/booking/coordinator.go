// Package booking drives a principal through the purchase flow: pick an
// event, select seats, lock them remotely, attach passenger names, confirm
// the sale and clear the session.
//
// The session only records intent.  Whether a seat is actually held is
// decided by the inventory service, so lock and sale answers are handed
// back to the caller as they come.
package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/inventory"
	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/queue"
	"github.com/iliyamo/event-seat-booking/internal/session"
)

// DefaultMaxSeats caps how many seats one sale may carry.
const DefaultMaxSeats = 4

// EventCatalog resolves events by local id.  Unknown ids must yield an
// error wrapping model.ErrEventNotFound.
type EventCatalog interface {
	GetByID(ctx context.Context, id int64) (model.Event, error)
}

// Publisher announces confirmed sales.
type Publisher interface {
	PublishSaleConfirmed(ctx context.Context, ev queue.SaleConfirmedEvent) error
}

// Coordinator implements the booking flow on top of a session store and
// the inventory gateway.
type Coordinator struct {
	store     session.Store
	gw        inventory.Gateway
	events    EventCatalog
	logger    echo.Logger
	publisher Publisher
	maxSeats  int
	clock     clockwork.Clock
}

type Option func(*Coordinator)

// WithMaxSeats overrides DefaultMaxSeats.  Non-positive values are ignored.
func WithMaxSeats(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxSeats = n
		}
	}
}

// WithPublisher enables sale notifications.
func WithPublisher(p Publisher) Option {
	return func(c *Coordinator) { c.publisher = p }
}

// WithClock replaces the real clock used for sale timestamps and event
// activity checks.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Coordinator) { c.clock = clock }
}

// New builds a coordinator.
func New(store session.Store, gw inventory.Gateway, events EventCatalog, logger echo.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    store,
		gw:       gw,
		events:   events,
		logger:   logger,
		maxSeats: DefaultMaxSeats,
		clock:    clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// MaxSeats reports the per-sale seat cap.
func (c *Coordinator) MaxSeats() int { return c.maxSeats }

// SetEvent points the session at an event.  It is always legal and drops
// everything tied to the previous event.
func (c *Coordinator) SetEvent(ctx context.Context, principal string, eventID int64) (model.BookingSession, error) {
	ev, err := c.events.GetByID(ctx, eventID)
	if err != nil {
		return model.BookingSession{}, err
	}
	if !ev.Active(c.clock.Now()) {
		return model.BookingSession{}, fmt.Errorf("%w: event %d", ErrEventClosed, eventID)
	}
	return c.store.Update(ctx, principal, func(s *model.BookingSession) error {
		id := ev.ID
		s.EventID = &id
		s.SelectedSeats = []model.SelectedSeat{}
		s.Names = map[string]model.PassengerName{}
		s.Locked = false
		s.LastSale = nil
		s.Confirming = false
		return nil
	})
}

// SelectSeats replaces the selection.  Nothing is sent to the inventory
// service.  Names already given for seats that stay selected are kept.
func (c *Coordinator) SelectSeats(ctx context.Context, principal string, seats []model.SeatRef) (model.BookingSession, error) {
	if len(seats) > c.maxSeats {
		return model.BookingSession{}, fmt.Errorf("%w: %d requested, at most %d", ErrTooManySeats, len(seats), c.maxSeats)
	}
	seen := make(map[string]struct{}, len(seats))
	picked := make([]model.SelectedSeat, 0, len(seats))
	for _, ref := range seats {
		ref.Row = strings.ToUpper(strings.TrimSpace(ref.Row))
		if err := ref.Validate(); err != nil {
			return model.BookingSession{}, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
		}
		if _, dup := seen[ref.Key()]; dup {
			return model.BookingSession{}, fmt.Errorf("%w: %s", ErrDuplicateSeat, ref.Key())
		}
		seen[ref.Key()] = struct{}{}
		picked = append(picked, model.SelectedSeat{Row: ref.Row, Number: ref.Number})
	}

	return c.store.Update(ctx, principal, func(s *model.BookingSession) error {
		if err := requireOpen(s); err != nil {
			return err
		}
		names := make(map[string]model.PassengerName, len(picked))
		for i := range picked {
			key := picked[i].Ref().Key()
			if n, ok := s.Names[key]; ok {
				names[key] = n
				applyName(&picked[i], n)
			}
		}
		s.SelectedSeats = picked
		s.Names = names
		s.Locked = false
		s.LastSale = nil
		return nil
	})
}

// LockSeats asks the inventory service to lock exactly the selected
// seats.  The outcome is returned verbatim, partial or failed outcomes
// included, and the session is never cleared because of it.  Gateway
// errors are returned as-is; nothing is retried here.
func (c *Coordinator) LockSeats(ctx context.Context, principal string) (model.LockOutcome, error) {
	s, err := c.store.Get(ctx, principal)
	if err != nil {
		return model.LockOutcome{}, err
	}
	if err := requireOpen(&s); err != nil {
		return model.LockOutcome{}, err
	}
	if len(s.SelectedSeats) == 0 {
		return model.LockOutcome{}, ErrNoSeats
	}
	ev, err := c.events.GetByID(ctx, *s.EventID)
	if err != nil {
		return model.LockOutcome{}, err
	}

	refs := s.Refs()
	out, err := c.gw.LockSeats(ctx, ev.RemoteID(), refs)
	if err != nil {
		c.logger.Warnf("[booking] lock principal=%s event=%d: %v", principal, ev.ID, err)
		return model.LockOutcome{}, err
	}
	if !out.Succeeded {
		c.logger.Infof("[booking] lock rejected principal=%s event=%d: %s", principal, ev.ID, out.Message)
	}

	// The selection may have changed while the remote call was in flight;
	// only record the result against the seats that were actually sent.
	_, err = c.store.Update(ctx, principal, func(cur *model.BookingSession) error {
		if sameEvent(cur.EventID, s.EventID) && slices.Equal(cur.Refs(), refs) {
			cur.Locked = out.Succeeded
		}
		return nil
	})
	if err != nil {
		c.logger.Warnf("[booking] record lock principal=%s: %v", principal, err)
	}
	return out, nil
}

// SetNames attaches passengers to selected seats by "row-number" key.
// Keys that are not part of the selection are ignored.
func (c *Coordinator) SetNames(ctx context.Context, principal string, names map[string]model.PassengerName) (model.BookingSession, error) {
	clean := make(map[string]model.PassengerName, len(names))
	for key, n := range names {
		n.FirstName = strings.TrimSpace(n.FirstName)
		n.LastName = strings.TrimSpace(n.LastName)
		if !n.Complete() {
			return model.BookingSession{}, fmt.Errorf("%w: seat %s", ErrBlankName, key)
		}
		clean[normalizeKey(key)] = n
	}

	return c.store.Update(ctx, principal, func(s *model.BookingSession) error {
		if err := requireOpen(s); err != nil {
			return err
		}
		if len(s.SelectedSeats) == 0 {
			return ErrNoSeats
		}
		for i := range s.SelectedSeats {
			key := s.SelectedSeats[i].Ref().Key()
			n, ok := clean[key]
			if !ok {
				continue
			}
			s.Names[key] = n
			applyName(&s.SelectedSeats[i], n)
		}
		return nil
	})
}

// Session returns the principal's current session.
func (c *Coordinator) Session(ctx context.Context, principal string) (model.BookingSession, error) {
	return c.store.Get(ctx, principal)
}

// State returns the flow position of the principal's session.
func (c *Coordinator) State(ctx context.Context, principal string) (model.SessionState, error) {
	s, err := c.store.Get(ctx, principal)
	if err != nil {
		return "", err
	}
	return s.State(), nil
}

// ConfirmSale sends the named selection to the inventory service exactly
// once.  The selection is claimed before the remote call, so an
// overlapping confirmation from the same principal fails with
// ErrSaleInProgress.  The answer is recorded only if the session still
// holds the seats that were sent; event, seats and names stay as they are
// until Clear is called.
func (c *Coordinator) ConfirmSale(ctx context.Context, principal string) (model.SaleOutcome, error) {
	sent, err := c.store.Update(ctx, principal, func(s *model.BookingSession) error {
		if err := readyForSale(s); err != nil {
			return err
		}
		s.Confirming = true
		return nil
	})
	if err != nil {
		return model.SaleOutcome{}, err
	}

	ev, err := c.events.GetByID(ctx, *sent.EventID)
	if err == nil && ev.CatalogEventID == nil {
		err = ErrCatalogIDMissing
	}
	if err != nil {
		c.settle(ctx, principal, sent, nil)
		return model.SaleOutcome{}, err
	}

	out, err := c.gw.ConfirmSale(ctx, *ev.CatalogEventID, sent.SelectedSeats)
	if err != nil {
		c.logger.Errorf("[booking] confirm principal=%s event=%d: %v", principal, ev.ID, err)
		c.settle(ctx, principal, sent, nil)
		return model.SaleOutcome{}, err
	}
	c.settle(ctx, principal, sent, &out)

	if out.Succeeded() {
		c.logger.Infof("[booking] sale confirmed principal=%s event=%d seats=%d", principal, ev.ID, len(sent.SelectedSeats))
		c.publish(ctx, principal, ev, sent.SelectedSeats, out)
	} else {
		c.logger.Infof("[booking] sale rejected principal=%s event=%d: %s", principal, ev.ID, out.Message)
	}
	return out, nil
}

// settle releases the claim taken by ConfirmSale and records out, but only
// on the session that was sent.  A session that was cleared or pointed at
// another event meanwhile is left alone.
func (c *Coordinator) settle(ctx context.Context, principal string, sent model.BookingSession, out *model.SaleOutcome) {
	refs := sent.Refs()
	_, err := c.store.Update(context.WithoutCancel(ctx), principal, func(cur *model.BookingSession) error {
		if !cur.Confirming || !sameEvent(cur.EventID, sent.EventID) || !slices.Equal(cur.Refs(), refs) {
			return errSessionMoved
		}
		cur.Confirming = false
		if out != nil {
			o := *out
			cur.LastSale = &o
		}
		return nil
	})
	switch {
	case errors.Is(err, errSessionMoved):
		c.logger.Infof("[booking] session changed during sale principal=%s, outcome not recorded", principal)
	case err != nil:
		c.logger.Errorf("[booking] record sale principal=%s: %v", principal, err)
	}
}

// Clear resets the session to EMPTY.  Clearing an empty session is a no-op.
func (c *Coordinator) Clear(ctx context.Context, principal string) error {
	return c.store.Delete(ctx, principal)
}

// SeatMap returns the inventory service's current map for an event.  A
// cold map comes back empty, not as an error.
func (c *Coordinator) SeatMap(ctx context.Context, eventID int64) (model.SeatMap, error) {
	ev, err := c.events.GetByID(ctx, eventID)
	if err != nil {
		return model.SeatMap{}, err
	}
	sm, err := c.gw.FetchSeatMap(ctx, ev.RemoteID())
	if err != nil {
		return model.SeatMap{}, err
	}
	sm.EventID = ev.ID
	if sm.Seats == nil {
		sm.Seats = []model.Seat{}
	}
	return sm, nil
}

func (c *Coordinator) publish(ctx context.Context, principal string, ev model.Event, seats []model.SelectedSeat, out model.SaleOutcome) {
	if c.publisher == nil {
		return
	}
	msg := queue.SaleConfirmedEvent{
		MessageID:      uuid.NewString(),
		Principal:      principal,
		EventID:        ev.ID,
		CatalogEventID: *ev.CatalogEventID,
		EventTitle:     ev.Title,
		RemoteSaleID:   out.RemoteSaleID,
		ConfirmedAt:    c.clock.Now().UTC().Format(time.RFC3339),
	}
	for _, s := range seats {
		msg.Seats = append(msg.Seats, queue.SoldSeat{
			Row:       s.Row,
			Number:    s.Number,
			FirstName: deref(s.FirstName),
			LastName:  deref(s.LastName),
		})
	}
	if err := c.publisher.PublishSaleConfirmed(ctx, msg); err != nil {
		c.logger.Warnf("[booking] publish sale principal=%s: %v", principal, err)
	}
}

var errSessionMoved = errors.New("session changed")

func requireOpen(s *model.BookingSession) error {
	if s.EventID == nil {
		return ErrNoEvent
	}
	if s.Confirming {
		return ErrSaleInProgress
	}
	if s.LastSale != nil && s.LastSale.Succeeded() {
		return ErrSaleConfirmed
	}
	return nil
}

func readyForSale(s *model.BookingSession) error {
	if err := requireOpen(s); err != nil {
		return err
	}
	if len(s.SelectedSeats) == 0 {
		return ErrNoSeats
	}
	for _, seat := range s.SelectedSeats {
		if !seat.Named() {
			return fmt.Errorf("%w: seat %s", ErrNamesMissing, seat.Ref().Key())
		}
	}
	return nil
}

func applyName(seat *model.SelectedSeat, n model.PassengerName) {
	first, last := n.FirstName, n.LastName
	seat.FirstName = &first
	seat.LastName = &last
}

// normalizeKey upper-cases the row part so "b-3" matches seat B-3.
func normalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if i := strings.LastIndex(key, "-"); i > 0 {
		return strings.ToUpper(strings.TrimSpace(key[:i])) + "-" + strings.TrimSpace(key[i+1:])
	}
	return key
}

func sameEvent(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
