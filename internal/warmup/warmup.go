// Package warmup primes the inventory service before real traffic arrives.
//
// The inventory service builds its seat map for an event lazily, on the
// first successful lock.  At start-up the coordinator walks every active
// event and keeps trying seats until one lock sticks, which is enough for
// the remote side to materialise and cache the event.
package warmup

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/inventory"
	"github.com/iliyamo/event-seat-booking/internal/model"
)

const (
	DefaultDelay = 5 * time.Second
	DefaultRows  = 50
	DefaultCols  = 50
)

// EventLister returns the events that are sellable at now.
type EventLister interface {
	ListActive(ctx context.Context, now time.Time) ([]model.Event, error)
}

// EventResult records what happened to a single event during a run.
type EventResult struct {
	EventID        int64          `json:"event_id"`
	CatalogEventID *int64         `json:"catalog_event_id,omitempty"`
	Warmed         bool           `json:"warmed"`
	Attempts       int            `json:"attempts"`
	Seat           *model.SeatRef `json:"seat,omitempty"`
	Reason         string         `json:"reason,omitempty"`
}

// Summary is reported once all events of a run have been processed.
type Summary struct {
	Events     int           `json:"events"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Results    []EventResult `json:"results"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Coordinator runs warm-up passes against the inventory service.
type Coordinator struct {
	events  EventLister
	gw      inventory.Gateway
	logger  echo.Logger
	delay   time.Duration
	defRows int
	defCols int
	clock   clockwork.Clock
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithDelay sets how long Start waits before the first run.
func WithDelay(d time.Duration) Option {
	return func(c *Coordinator) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithDefaultBounds sets the probe rectangle used for events without a
// configured seat grid.
func WithDefaultBounds(rows, cols int) Option {
	return func(c *Coordinator) {
		if rows > 0 {
			c.defRows = rows
		}
		if cols > 0 {
			c.defCols = cols
		}
	}
}

// WithClock replaces the real clock, which drives both the start delay
// and the active-event cut-off.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Coordinator) { c.clock = clock }
}

// New builds a coordinator.
func New(events EventLister, gw inventory.Gateway, logger echo.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		events:  events,
		gw:      gw,
		logger:  logger,
		delay:   DefaultDelay,
		defRows: DefaultRows,
		defCols: DefaultCols,
		clock:   clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start launches a single run in its own goroutine after the configured
// delay and returns immediately.  The run has no cancellation path: it
// works through every event it listed.  The summary is delivered on the
// returned channel, which is buffered so nobody has to read it.
func (c *Coordinator) Start() <-chan Summary {
	done := make(chan Summary, 1)
	go func() {
		if c.delay > 0 {
			c.clock.Sleep(c.delay)
		}
		done <- c.Run(context.Background())
		close(done)
	}()
	return done
}

// Run performs one warm-up pass synchronously.  It never panics and never
// returns an error; problems are logged and counted as failures.
func (c *Coordinator) Run(ctx context.Context) (sum Summary) {
	sum.StartedAt = c.clock.Now().UTC()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Errorf("[warmup] aborted: %v", r)
		}
		sum.FinishedAt = c.clock.Now().UTC()
		c.logger.Infof("[warmup] finished events=%d succeeded=%d failed=%d",
			sum.Events, sum.Succeeded, sum.Failed)
	}()

	events, err := c.events.ListActive(ctx, c.clock.Now())
	if err != nil {
		c.logger.Errorf("[warmup] list active events: %v", err)
		return sum
	}
	sum.Events = len(events)
	c.logger.Infof("[warmup] starting for %d active events", len(events))

	for _, ev := range events {
		res := c.warmEvent(ctx, ev)
		sum.Results = append(sum.Results, res)
		if res.Warmed {
			sum.Succeeded++
		} else {
			sum.Failed++
		}
	}
	return sum
}

func (c *Coordinator) warmEvent(ctx context.Context, ev model.Event) (res EventResult) {
	res = EventResult{EventID: ev.ID, CatalogEventID: ev.CatalogEventID}
	defer func() {
		if r := recover(); r != nil {
			res.Warmed = false
			res.Reason = fmt.Sprintf("panic: %v", r)
			c.logger.Errorf("[warmup] event=%d panicked: %v", ev.ID, r)
		}
	}()

	if ev.CatalogEventID == nil {
		res.Reason = "no catalog event id"
		c.logger.Warnf("[warmup] event=%d skipped: no catalog event id", ev.ID)
		return res
	}
	remoteID := *ev.CatalogEventID

	candidates, err := c.candidatesFor(ctx, ev, remoteID)
	if err != nil {
		res.Reason = err.Error()
		c.logger.Warnf("[warmup] event=%d failed: %v", ev.ID, err)
		return res
	}

	for seat := range candidates {
		res.Attempts++
		if c.tryLock(ctx, ev.ID, remoteID, seat) {
			res.Warmed = true
			res.Seat = &seat
			c.logger.Infof("[warmup] event=%d warmed with seat %s after %d attempts",
				ev.ID, seat.Key(), res.Attempts)
			return res
		}
	}
	res.Reason = "no seat could be locked"
	c.logger.Warnf("[warmup] event=%d failed: no seat locked after %d attempts", ev.ID, res.Attempts)
	return res
}

// candidatesFor picks the seats to try.  A reachable, populated map yields
// its FREE seats in map order; a cold map or an unreachable service falls
// back to probing the event's bounding rectangle.
func (c *Coordinator) candidatesFor(ctx context.Context, ev model.Event, remoteID int64) (iter.Seq[model.SeatRef], error) {
	sm, err := c.gw.FetchSeatMap(ctx, remoteID)
	switch {
	case err != nil && inventory.IsTransport(err):
		c.logger.Debugf("[warmup] event=%d seat map unavailable, probing: %v", ev.ID, err)
	case err != nil:
		return nil, fmt.Errorf("fetch seat map: %w", err)
	case sm.Cold():
		c.logger.Debugf("[warmup] event=%d seat map cold, probing", ev.ID)
	default:
		return FreeSeats(sm), nil
	}
	rows, cols := ev.Bounds(c.defRows, c.defCols)
	return Candidates(rows, cols), nil
}

// tryLock attempts to lock exactly one seat.  Every kind of failure only
// ends the attempt for this seat.
func (c *Coordinator) tryLock(ctx context.Context, eventID, remoteID int64, seat model.SeatRef) bool {
	out, err := c.gw.LockSeats(ctx, remoteID, []model.SeatRef{seat})
	if err != nil {
		if inventory.IsTransport(err) {
			c.logger.Warnf("[warmup] event=%d seat=%s inventory unavailable: %v", eventID, seat.Key(), err)
		} else {
			c.logger.Debugf("[warmup] event=%d seat=%s lock error: %v", eventID, seat.Key(), err)
		}
		return false
	}
	if out.Succeeded {
		return true
	}
	switch {
	case inventory.IsTransportMessage(out.Message):
		c.logger.Warnf("[warmup] event=%d seat=%s inventory unavailable: %s", eventID, seat.Key(), out.Message)
	case inventory.IsUnavailableMessage(out.Message):
		c.logger.Debugf("[warmup] event=%d seat=%s taken: %s", eventID, seat.Key(), out.Message)
	default:
		c.logger.Debugf("[warmup] event=%d seat=%s rejected: %s", eventID, seat.Key(), out.Message)
	}
	return false
}

// Candidates yields every seat of a rows x cols grid in row-major order,
// starting at row 1, number 1.  Rows are rendered as numerals.
func Candidates(rows, cols int) iter.Seq[model.SeatRef] {
	return func(yield func(model.SeatRef) bool) {
		for r := 1; r <= rows; r++ {
			row := strconv.Itoa(r)
			for n := 1; n <= cols; n++ {
				if !yield(model.SeatRef{Row: row, Number: n}) {
					return
				}
			}
		}
	}
}

// FreeSeats yields the FREE seats of a map in the order the service sent
// them.
func FreeSeats(sm model.SeatMap) iter.Seq[model.SeatRef] {
	return func(yield func(model.SeatRef) bool) {
		for _, s := range sm.Seats {
			if s.State != model.SeatFree {
				continue
			}
			if !yield(s.Ref()) {
				return
			}
		}
	}
}
