// Package handler exposes the booking flow, the public event browse API and
// operational endpoints over HTTP.  Handlers translate core errors into
// status codes; they hold no state of their own.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/booking"
	"github.com/iliyamo/event-seat-booking/internal/inventory"
	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/session"
)

// respondError maps a core error to a JSON error response.
func respondError(c echo.Context, err error) error {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("[http] %s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(status, echo.Map{"error": msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrEventNotFound):
		return http.StatusNotFound, "event not found"
	case errors.Is(err, booking.ErrInvalidSelection), errors.Is(err, model.ErrInvalidRow):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, booking.ErrSessionState), errors.Is(err, booking.ErrEventClosed):
		return http.StatusConflict, err.Error()
	case errors.Is(err, session.ErrConflict):
		return http.StatusConflict, "session is being modified, retry"
	case inventory.IsTransport(err):
		return http.StatusServiceUnavailable, "inventory service unavailable"
	case errors.Is(err, inventory.ErrProtocol):
		return http.StatusBadGateway, "inventory service returned an invalid response"
	}
	return http.StatusInternalServerError, "internal error"
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

func parseID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
