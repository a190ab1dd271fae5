package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-booking/internal/inventory"
	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/queue"
	"github.com/iliyamo/event-seat-booking/internal/session"
)

var now = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

type catalog map[int64]model.Event

func (c catalog) GetByID(_ context.Context, id int64) (model.Event, error) {
	ev, ok := c[id]
	if !ok {
		return model.Event{}, fmt.Errorf("event %d: %w", id, model.ErrEventNotFound)
	}
	return ev, nil
}

type fakeGateway struct {
	seatMap     model.SeatMap
	fetchErr    error
	lockOut     model.LockOutcome
	lockErr     error
	lockCalls   [][]model.SeatRef
	lockEvents  []int64
	saleOut     model.SaleOutcome
	saleErr     error
	saleCalls   int
	saleEventID int64
	saleSeats   []model.SelectedSeat
	onConfirm   func()
}

func (f *fakeGateway) FetchSeatMap(_ context.Context, eventID int64) (model.SeatMap, error) {
	if f.fetchErr != nil {
		return model.SeatMap{}, f.fetchErr
	}
	sm := f.seatMap
	sm.EventID = eventID
	return sm, nil
}

func (f *fakeGateway) LockSeats(_ context.Context, eventID int64, seats []model.SeatRef) (model.LockOutcome, error) {
	f.lockEvents = append(f.lockEvents, eventID)
	f.lockCalls = append(f.lockCalls, seats)
	return f.lockOut, f.lockErr
}

func (f *fakeGateway) ConfirmSale(_ context.Context, catalogEventID int64, seats []model.SelectedSeat) (model.SaleOutcome, error) {
	f.saleCalls++
	f.saleEventID = catalogEventID
	f.saleSeats = seats
	if f.onConfirm != nil {
		f.onConfirm()
	}
	return f.saleOut, f.saleErr
}

type recordingPublisher struct {
	events []queue.SaleConfirmedEvent
	err    error
}

func (p *recordingPublisher) PublishSaleConfirmed(_ context.Context, ev queue.SaleConfirmedEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func ptr[T any](v T) *T { return &v }

type fixture struct {
	c   *Coordinator
	gw  *fakeGateway
	pub *recordingPublisher
	ctx context.Context
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := log.New("test")
	logger.SetOutput(io.Discard)

	events := catalog{
		1: {ID: 1, CatalogEventID: ptr(int64(501)), Title: "Concierto", StartsAt: now.Add(48 * time.Hour)},
		2: {ID: 2, CatalogEventID: ptr(int64(502)), Title: "Teatro", StartsAt: now.Add(72 * time.Hour)},
		3: {ID: 3, Title: "Local only", StartsAt: now.Add(24 * time.Hour)},
		4: {ID: 4, CatalogEventID: ptr(int64(504)), Title: "Past", StartsAt: now.Add(-time.Hour)},
	}
	gw := &fakeGateway{}
	pub := &recordingPublisher{}
	c := New(session.NewMemoryStore(time.Hour), gw, events, logger,
		WithPublisher(pub), WithClock(clockwork.NewFakeClockAt(now)))
	return fixture{c: c, gw: gw, pub: pub, ctx: context.Background()}
}

func TestSetEvent(t *testing.T) {
	f := newFixture(t)

	s, err := f.c.SetEvent(f.ctx, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, model.StateEventSet, s.State())

	_, err = f.c.SetEvent(f.ctx, "u1", 99)
	assert.ErrorIs(t, err, model.ErrEventNotFound)

	_, err = f.c.SetEvent(f.ctx, "u1", 4)
	assert.ErrorIs(t, err, ErrEventClosed)
}

func TestSetEvent_ClearsPreviousSelection(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.SetEvent(f.ctx, "u1", 1)
	require.NoError(t, err)
	_, err = f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "A", Number: 1}})
	require.NoError(t, err)
	_, err = f.c.SetNames(f.ctx, "u1", map[string]model.PassengerName{"A-1": {FirstName: "Ana", LastName: "Gil"}})
	require.NoError(t, err)

	s, err := f.c.SetEvent(f.ctx, "u1", 2)
	require.NoError(t, err)

	assert.Equal(t, int64(2), *s.EventID)
	assert.Empty(t, s.SelectedSeats)
	assert.Empty(t, s.Names)
	assert.Equal(t, model.StateEventSet, s.State())
}

func TestSelectSeats(t *testing.T) {
	f := newFixture(t)

	_, err := f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "A", Number: 1}})
	assert.ErrorIs(t, err, ErrNoEvent)
	assert.ErrorIs(t, err, ErrSessionState)

	_, err = f.c.SetEvent(f.ctx, "u1", 1)
	require.NoError(t, err)

	s, err := f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: " b ", Number: 3}, {Row: "12", Number: 1}})
	require.NoError(t, err)
	assert.Equal(t, []model.SeatRef{{Row: "B", Number: 3}, {Row: "12", Number: 1}}, s.Refs())
	assert.Equal(t, model.StateSeatsSelected, s.State())
	assert.Empty(t, f.gw.lockCalls)

	s, err = f.c.SelectSeats(f.ctx, "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, model.StateEventSet, s.State())
}

func TestSelectSeats_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.SetEvent(f.ctx, "u1", 1)
	require.NoError(t, err)

	cases := map[string]struct {
		seats []model.SeatRef
		want  error
	}{
		"invalid row":   {[]model.SeatRef{{Row: "AA", Number: 1}}, model.ErrInvalidRow},
		"zero number":   {[]model.SeatRef{{Row: "A", Number: 0}}, ErrInvalidSelection},
		"duplicate":     {[]model.SeatRef{{Row: "A", Number: 1}, {Row: "a", Number: 1}}, ErrDuplicateSeat},
		"too many":      {[]model.SeatRef{{Row: "A", Number: 1}, {Row: "A", Number: 2}, {Row: "A", Number: 3}, {Row: "A", Number: 4}, {Row: "A", Number: 5}}, ErrTooManySeats},
		"invalid digit": {[]model.SeatRef{{Row: "1x", Number: 1}}, ErrInvalidSelection},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.c.SelectSeats(f.ctx, "u1", tc.seats)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	s, err := f.c.Session(f.ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, s.SelectedSeats)
}

func TestSelectSeats_KeepsNamesOfRemainingSeats(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.SetEvent(f.ctx, "u1", 1)
	require.NoError(t, err)
	_, err = f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "A", Number: 1}, {Row: "A", Number: 2}})
	require.NoError(t, err)
	_, err = f.c.SetNames(f.ctx, "u1", map[string]model.PassengerName{
		"A-1": {FirstName: "Ana", LastName: "Gil"},
		"A-2": {FirstName: "Luis", LastName: "Mora"},
	})
	require.NoError(t, err)

	s, err := f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "A", Number: 2}, {Row: "A", Number: 3}})
	require.NoError(t, err)

	assert.Equal(t, map[string]model.PassengerName{"A-2": {FirstName: "Luis", LastName: "Mora"}}, s.Names)
	assert.True(t, s.SelectedSeats[0].Named())
	assert.False(t, s.SelectedSeats[1].Named())
}

func TestLockSeats_UsesCatalogIdentity(t *testing.T) {
	f := newFixture(t)
	f.gw.lockOut = model.LockOutcome{Succeeded: true, LockedSeats: []model.SeatRef{{Row: "B", Number: 3}}}
	_, err := f.c.SetEvent(f.ctx, "u1", 1)
	require.NoError(t, err)
	_, err = f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "B", Number: 3}})
	require.NoError(t, err)

	out, err := f.c.LockSeats(f.ctx, "u1")
	require.NoError(t, err)

	assert.True(t, out.Succeeded)
	assert.Equal(t, []int64{501}, f.gw.lockEvents)
	assert.Equal(t, [][]model.SeatRef{{{Row: "B", Number: 3}}}, f.gw.lockCalls)
	state, err := f.c.State(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.StateSeatsLocked, state)
}

func TestLockSeats_FallsBackToLocalIdentity(t *testing.T) {
	f := newFixture(t)
	f.gw.lockOut = model.LockOutcome{Succeeded: true}
	_, err := f.c.SetEvent(f.ctx, "u1", 3)
	require.NoError(t, err)
	_, err = f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "A", Number: 1}})
	require.NoError(t, err)

	_, err = f.c.LockSeats(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, f.gw.lockEvents)
}

func TestLockSeats_RejectionKeepsSession(t *testing.T) {
	f := newFixture(t)
	f.gw.lockOut = model.LockOutcome{
		Message:          "Asiento ocupado",
		UnavailableSeats: []model.SeatRef{{Row: "A", Number: 2}},
		LockedSeats:      []model.SeatRef{{Row: "A", Number: 1}},
	}
	_, err := f.c.SetEvent(f.ctx, "u1", 1)
	require.NoError(t, err)
	_, err = f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "A", Number: 1}, {Row: "A", Number: 2}})
	require.NoError(t, err)

	out, err := f.c.LockSeats(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, f.gw.lockOut, out)

	s, err := f.c.Session(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.StateSeatsSelected, s.State())
	assert.Len(t, s.SelectedSeats, 2)

	// the caller may try again
	f.gw.lockOut = model.LockOutcome{Succeeded: true}
	_, err = f.c.LockSeats(f.ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, f.gw.lockCalls, 2)
}

func TestLockSeats_TransportErrorSurfaces(t *testing.T) {
	f := newFixture(t)
	f.gw.lockErr = &inventory.TransportError{Op: "lock seats", Err: context.DeadlineExceeded}
	_, err := f.c.SetEvent(f.ctx, "u1", 1)
	require.NoError(t, err)
	_, err = f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "A", Number: 1}})
	require.NoError(t, err)

	_, err = f.c.LockSeats(f.ctx, "u1")
	assert.True(t, inventory.IsTransport(err))
	assert.Len(t, f.gw.lockCalls, 1)

	state, err := f.c.State(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.StateSeatsSelected, state)
}

func TestLockSeats_RequiresSelection(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.LockSeats(f.ctx, "u1")
	assert.ErrorIs(t, err, ErrNoEvent)

	_, err = f.c.SetEvent(f.ctx, "u1", 1)
	require.NoError(t, err)
	_, err = f.c.LockSeats(f.ctx, "u1")
	assert.ErrorIs(t, err, ErrNoSeats)
	assert.Empty(t, f.gw.lockCalls)
}

func TestSetNames_IgnoresUnknownKeys(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.SetEvent(f.ctx, "u1", 1)
	require.NoError(t, err)
	_, err = f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "B", Number: 3}, {Row: "B", Number: 4}})
	require.NoError(t, err)

	s, err := f.c.SetNames(f.ctx, "u1", map[string]model.PassengerName{
		"b-3": {FirstName: " Juan ", LastName: "Pérez"},
		"Z-9": {FirstName: "Nadie", LastName: "X"},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]model.PassengerName{"B-3": {FirstName: "Juan", LastName: "Pérez"}}, s.Names)
	assert.Equal(t, "Juan", *s.SelectedSeats[0].FirstName)
	assert.Nil(t, s.SelectedSeats[1].FirstName)
	assert.Equal(t, model.StateSeatsSelected, s.State())

	_, err = f.c.SetNames(f.ctx, "u1", map[string]model.PassengerName{"B-4": {FirstName: "Solo"}})
	assert.ErrorIs(t, err, ErrBlankName)
}

func TestConfirmSale_Preconditions(t *testing.T) {
	f := newFixture(t)

	_, err := f.c.ConfirmSale(f.ctx, "u1")
	assert.ErrorIs(t, err, ErrNoEvent)

	_, err = f.c.SetEvent(f.ctx, "u1", 1)
	require.NoError(t, err)
	_, err = f.c.ConfirmSale(f.ctx, "u1")
	assert.ErrorIs(t, err, ErrNoSeats)

	_, err = f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "A", Number: 1}})
	require.NoError(t, err)
	_, err = f.c.ConfirmSale(f.ctx, "u1")
	assert.ErrorIs(t, err, ErrNamesMissing)

	_, err = f.c.SetEvent(f.ctx, "u1", 3)
	require.NoError(t, err)
	_, err = f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "A", Number: 1}})
	require.NoError(t, err)
	_, err = f.c.SetNames(f.ctx, "u1", map[string]model.PassengerName{"A-1": {FirstName: "Ana", LastName: "Gil"}})
	require.NoError(t, err)
	_, err = f.c.ConfirmSale(f.ctx, "u1")
	assert.ErrorIs(t, err, ErrCatalogIDMissing)

	assert.Zero(t, f.gw.saleCalls)
}

func TestConfirmSale_FailureIsNotRetried(t *testing.T) {
	f := newFixture(t)
	f.gw.saleErr = &inventory.TransportError{Op: "confirm sale", Err: errors.New("connection refused")}
	_, err := f.c.SetEvent(f.ctx, "u1", 1)
	require.NoError(t, err)
	_, err = f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "A", Number: 1}})
	require.NoError(t, err)
	_, err = f.c.SetNames(f.ctx, "u1", map[string]model.PassengerName{"A-1": {FirstName: "Ana", LastName: "Gil"}})
	require.NoError(t, err)

	_, err = f.c.ConfirmSale(f.ctx, "u1")
	assert.True(t, inventory.IsTransport(err))
	assert.Equal(t, 1, f.gw.saleCalls)
	assert.Empty(t, f.pub.events)

	f.gw.saleErr = nil
	f.gw.saleOut = model.SaleOutcome{Result: model.SaleFailure, Message: "Venta rechazada"}
	out, err := f.c.ConfirmSale(f.ctx, "u1")
	require.NoError(t, err)
	assert.False(t, out.Succeeded())
	assert.Equal(t, 2, f.gw.saleCalls)

	s, err := f.c.Session(f.ctx, "u1")
	require.NoError(t, err)
	assert.False(t, s.Confirming)
	assert.Equal(t, model.StateSeatsSelected, s.State())
}

func namedSelection(t *testing.T, f fixture, principal string) {
	t.Helper()
	_, err := f.c.SetEvent(f.ctx, principal, 1)
	require.NoError(t, err)
	_, err = f.c.SelectSeats(f.ctx, principal, []model.SeatRef{{Row: "B", Number: 3}})
	require.NoError(t, err)
	_, err = f.c.SetNames(f.ctx, principal, map[string]model.PassengerName{"B-3": {FirstName: "Juan", LastName: "Pérez"}})
	require.NoError(t, err)
}

func TestConfirmSale_OverlappingRequestIsRejected(t *testing.T) {
	f := newFixture(t)
	f.gw.saleOut = model.SaleOutcome{Result: model.SaleSuccess, RemoteSaleID: ptr(int64(12345))}
	namedSelection(t, f, "u1")

	var nested, names, lock error
	f.gw.onConfirm = func() {
		_, nested = f.c.ConfirmSale(f.ctx, "u1")
		_, names = f.c.SetNames(f.ctx, "u1", map[string]model.PassengerName{"B-3": {FirstName: "Ana", LastName: "Gil"}})
		_, lock = f.c.LockSeats(f.ctx, "u1")
	}

	out, err := f.c.ConfirmSale(f.ctx, "u1")
	require.NoError(t, err)
	assert.True(t, out.Succeeded())

	assert.ErrorIs(t, nested, ErrSaleInProgress)
	assert.ErrorIs(t, nested, ErrSessionState)
	assert.ErrorIs(t, names, ErrSaleInProgress)
	assert.ErrorIs(t, lock, ErrSaleInProgress)
	assert.Equal(t, 1, f.gw.saleCalls)
	assert.Len(t, f.pub.events, 1)

	s, err := f.c.Session(f.ctx, "u1")
	require.NoError(t, err)
	assert.False(t, s.Confirming)
	assert.Equal(t, model.StateSaleConfirmed, s.State())
}

func TestConfirmSale_EventChangedDuringSale(t *testing.T) {
	f := newFixture(t)
	f.gw.saleOut = model.SaleOutcome{Result: model.SaleSuccess, RemoteSaleID: ptr(int64(12345))}
	namedSelection(t, f, "u1")

	f.gw.onConfirm = func() {
		_, err := f.c.SetEvent(f.ctx, "u1", 2)
		require.NoError(t, err)
	}

	out, err := f.c.ConfirmSale(f.ctx, "u1")
	require.NoError(t, err)
	assert.True(t, out.Succeeded())
	assert.Len(t, f.pub.events, 1)

	s, err := f.c.Session(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), *s.EventID)
	assert.Nil(t, s.LastSale)
	assert.False(t, s.Confirming)
	assert.Equal(t, model.StateEventSet, s.State())

	_, err = f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "C", Number: 1}})
	assert.NoError(t, err)
}

func TestConfirmSale_ClearDuringSaleLeavesSessionEmpty(t *testing.T) {
	f := newFixture(t)
	f.gw.saleOut = model.SaleOutcome{Result: model.SaleSuccess}
	namedSelection(t, f, "u1")
	f.gw.onConfirm = func() { require.NoError(t, f.c.Clear(f.ctx, "u1")) }

	_, err := f.c.ConfirmSale(f.ctx, "u1")
	require.NoError(t, err)

	state, err := f.c.State(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.StateEmpty, state)
}

func TestConfirmSale_ReleasesClaimWhenCatalogIDMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.SetEvent(f.ctx, "u1", 3)
	require.NoError(t, err)
	_, err = f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "A", Number: 1}})
	require.NoError(t, err)
	_, err = f.c.SetNames(f.ctx, "u1", map[string]model.PassengerName{"A-1": {FirstName: "Ana", LastName: "Gil"}})
	require.NoError(t, err)

	_, err = f.c.ConfirmSale(f.ctx, "u1")
	assert.ErrorIs(t, err, ErrCatalogIDMissing)

	_, err = f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "A", Number: 2}})
	assert.NoError(t, err)
}

func TestState_NamesBeforeFailedLock(t *testing.T) {
	f := newFixture(t)
	f.gw.lockOut = model.LockOutcome{Message: "Asiento ocupado", UnavailableSeats: []model.SeatRef{{Row: "B", Number: 3}}}
	namedSelection(t, f, "u1")

	out, err := f.c.LockSeats(f.ctx, "u1")
	require.NoError(t, err)
	require.False(t, out.Succeeded)

	state, err := f.c.State(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.StateSeatsSelected, state)
}

func TestConfirmSale_PublishFailureDoesNotChangeOutcome(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")
	f.gw.saleOut = model.SaleOutcome{Result: model.SaleSuccess, RemoteSaleID: ptr(int64(7))}
	_, err := f.c.SetEvent(f.ctx, "u1", 1)
	require.NoError(t, err)
	_, err = f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "A", Number: 1}})
	require.NoError(t, err)
	_, err = f.c.SetNames(f.ctx, "u1", map[string]model.PassengerName{"A-1": {FirstName: "Ana", LastName: "Gil"}})
	require.NoError(t, err)

	out, err := f.c.ConfirmSale(f.ctx, "u1")
	require.NoError(t, err)
	assert.True(t, out.Succeeded())
	assert.Len(t, f.pub.events, 1)
}

func TestBookingFlow_EndToEnd(t *testing.T) {
	f := newFixture(t)
	f.gw.lockOut = model.LockOutcome{Succeeded: true, LockedSeats: []model.SeatRef{{Row: "B", Number: 3}}}
	f.gw.saleOut = model.SaleOutcome{Result: model.SaleSuccess, Message: "Venta exitosa", RemoteSaleID: ptr(int64(12345))}

	_, err := f.c.SetEvent(f.ctx, "u1", 1)
	require.NoError(t, err)
	_, err = f.c.SelectSeats(f.ctx, "u1", []model.SeatRef{{Row: "B", Number: 3}})
	require.NoError(t, err)

	lock, err := f.c.LockSeats(f.ctx, "u1")
	require.NoError(t, err)
	require.True(t, lock.Succeeded)

	_, err = f.c.SetNames(f.ctx, "u1", map[string]model.PassengerName{"B-3": {FirstName: "Juan", LastName: "Pérez"}})
	require.NoError(t, err)
	before, err := f.c.Session(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.StateNamesSet, before.State())

	sale, err := f.c.ConfirmSale(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.SaleSuccess, sale.Result)
	require.NotNil(t, sale.RemoteSaleID)
	assert.Equal(t, int64(12345), *sale.RemoteSaleID)

	assert.Equal(t, int64(501), f.gw.saleEventID)
	require.Len(t, f.gw.saleSeats, 1)
	assert.Equal(t, "Juan", *f.gw.saleSeats[0].FirstName)
	assert.Equal(t, "Pérez", *f.gw.saleSeats[0].LastName)

	after, err := f.c.Session(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, before.EventID, after.EventID)
	assert.Equal(t, before.SelectedSeats, after.SelectedSeats)
	assert.Equal(t, before.Names, after.Names)
	assert.Equal(t, model.StateSaleConfirmed, after.State())

	_, err = f.c.ConfirmSale(f.ctx, "u1")
	assert.ErrorIs(t, err, ErrSaleConfirmed)
	assert.Equal(t, 1, f.gw.saleCalls)

	require.Len(t, f.pub.events, 1)
	msg := f.pub.events[0]
	assert.NotEmpty(t, msg.MessageID)
	assert.Equal(t, "u1", msg.Principal)
	assert.Equal(t, int64(501), msg.CatalogEventID)
	assert.Equal(t, []queue.SoldSeat{{Row: "B", Number: 3, FirstName: "Juan", LastName: "Pérez"}}, msg.Seats)

	require.NoError(t, f.c.Clear(f.ctx, "u1"))
	state, err := f.c.State(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.StateEmpty, state)

	require.NoError(t, f.c.Clear(f.ctx, "u1"))
	state, err = f.c.State(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.StateEmpty, state)
}

func TestSeatMap(t *testing.T) {
	f := newFixture(t)
	f.gw.seatMap = model.SeatMap{Seats: []model.Seat{{Row: "A", Column: 1, State: model.SeatFree}}}

	sm, err := f.c.SeatMap(f.ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sm.EventID)
	assert.Len(t, sm.Seats, 1)

	f.gw.seatMap = model.SeatMap{}
	sm, err = f.c.SeatMap(f.ctx, 1)
	require.NoError(t, err)
	assert.True(t, sm.Cold())
	assert.NotNil(t, sm.Seats)

	_, err = f.c.SeatMap(f.ctx, 42)
	assert.ErrorIs(t, err, model.ErrEventNotFound)
}
