package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/booking"
	"github.com/iliyamo/event-seat-booking/internal/model"
)

// EventReader is the read side of the event catalog.
type EventReader interface {
	ListActive(ctx context.Context, now time.Time) ([]model.Event, error)
	GetByID(ctx context.Context, id int64) (model.Event, error)
}

// EventHandler serves the public catalog and seat maps.
type EventHandler struct {
	Events  EventReader
	Booking *booking.Coordinator
	Now     func() time.Time
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events EventReader, b *booking.Coordinator) *EventHandler {
	if events == nil || b == nil {
		panic("nil dependency passed to NewEventHandler")
	}
	return &EventHandler{Events: events, Booking: b, Now: time.Now}
}

// PublicEvent hides the catalog identity from clients.
type PublicEvent struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	StartsAt    time.Time `json:"starts_at"`
	RowCount    *int      `json:"row_count,omitempty"`
	ColumnCount *int      `json:"column_count,omitempty"`
}

func toPublic(ev model.Event) PublicEvent {
	return PublicEvent{ID: ev.ID, Title: ev.Title, StartsAt: ev.StartsAt, RowCount: ev.RowCount, ColumnCount: ev.ColumnCount}
}

// List handles GET /v1/events and returns events still on sale.
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.Events.ListActive(c.Request().Context(), h.Now())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]PublicEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, toPublic(ev))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ev, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toPublic(ev))
}

// SeatMap handles GET /v1/events/:id/seats.  It reads straight from the
// inventory service; an empty seat list means the event is not warmed yet.
func (h *EventHandler) SeatMap(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	sm, err := h.Booking.SeatMap(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sm)
}
