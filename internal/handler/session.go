package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/booking"
	"github.com/iliyamo/event-seat-booking/internal/middleware"
	"github.com/iliyamo/event-seat-booking/internal/model"
)

// SessionHandler drives the per-user booking flow under /v1/session.
type SessionHandler struct {
	Booking *booking.Coordinator
}

// NewSessionHandler panics on a nil coordinator.
func NewSessionHandler(b *booking.Coordinator) *SessionHandler {
	if b == nil {
		panic("nil coordinator passed to NewSessionHandler")
	}
	return &SessionHandler{Booking: b}
}

// SessionView is the JSON shape of a booking session.
type SessionView struct {
	State         model.SessionState             `json:"state"`
	EventID       *int64                         `json:"event_id"`
	SelectedSeats []model.SelectedSeat           `json:"selected_seats"`
	Names         map[string]model.PassengerName `json:"names"`
	Locked        bool                           `json:"locked"`
	LastSale      *model.SaleOutcome             `json:"last_sale,omitempty"`
	MaxSeats      int                            `json:"max_seats"`
	UpdatedAt     *time.Time                     `json:"updated_at,omitempty"`
}

func (h *SessionHandler) view(s model.BookingSession) SessionView {
	v := SessionView{
		State:         s.State(),
		EventID:       s.EventID,
		SelectedSeats: s.SelectedSeats,
		Names:         s.Names,
		Locked:        s.Locked,
		LastSale:      s.LastSale,
		MaxSeats:      h.Booking.MaxSeats(),
	}
	if !s.UpdatedAt.IsZero() {
		v.UpdatedAt = &s.UpdatedAt
	}
	return v
}

// SetEvent handles PUT /v1/session/event/:id.
func (h *SessionHandler) SetEvent(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if _, err := h.Booking.SetEvent(c.Request().Context(), p, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SelectSeats handles PUT /v1/session/seats with a body of
// [{"row":"B","number":3}, ...].  An empty array clears the selection.
func (h *SessionHandler) SelectSeats(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}
	var body []seatInput
	if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	seats := make([]model.SeatRef, 0, len(body))
	for _, in := range body {
		if err := validate.Struct(in); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": describe(err)})
		}
		seats = append(seats, in.ref())
	}
	if _, err := h.Booking.SelectSeats(c.Request().Context(), p, seats); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// LockSeats handles POST /v1/session/lock.  A rejected lock is still a 200:
// the outcome tells the client which seats could not be held.
func (h *SessionHandler) LockSeats(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.Booking.LockSeats(c.Request().Context(), p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// SetNames handles PUT /v1/session/names with a body keyed by "row-number":
// {"B-3": {"first_name":"Juan","last_name":"Pérez"}}.
func (h *SessionHandler) SetNames(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}
	body := map[string]nameInput{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	names := make(map[string]model.PassengerName, len(body))
	for key, in := range body {
		if err := validate.Struct(in); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": key + ": " + describe(err)})
		}
		names[key] = in.name()
	}
	if _, err := h.Booking.SetNames(c.Request().Context(), p, names); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /v1/session.
func (h *SessionHandler) Get(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}
	s, err := h.Booking.Session(c.Request().Context(), p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, h.view(s))
}

// ConfirmSale handles POST /v1/session/sale.  SUCCESS answers 201, a
// rejected sale answers 200 with the FAILURE outcome.  The session is left
// in place for the receipt; clients call DELETE /v1/session afterwards.
func (h *SessionHandler) ConfirmSale(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.Booking.ConfirmSale(c.Request().Context(), p)
	if err != nil {
		return respondError(c, err)
	}
	if out.Succeeded() {
		return c.JSON(http.StatusCreated, out)
	}
	return c.JSON(http.StatusOK, out)
}

// Clear handles DELETE /v1/session.  It is idempotent.
func (h *SessionHandler) Clear(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.Booking.Clear(c.Request().Context(), p); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
