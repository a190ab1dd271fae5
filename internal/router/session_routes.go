package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/handler"
	"github.com/iliyamo/event-seat-booking/internal/middleware"
)

// RegisterSession registers the booking flow under /v1/session.  Every
// route needs a valid JWT with a subject; the subject keys the session.
// limiter runs after authentication so buckets are per principal.
func RegisterSession(e *echo.Echo, h *handler.SessionHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/session",
		middleware.JWTAuth(jwtSecret),
		middleware.RequirePrincipal(),
		middleware.RequireRole(RoleCustomer, RoleAdmin),
		limiter,
	)
	g.GET("", h.Get)
	g.DELETE("", h.Clear)
	g.PUT("/event/:id", h.SetEvent)
	g.PUT("/seats", h.SelectSeats)
	g.POST("/lock", h.LockSeats)
	g.PUT("/names", h.SetNames)
	g.POST("/sale", h.ConfirmSale)
}

// RegisterAdmin registers operator endpoints.  They require the ADMIN role.
func RegisterAdmin(e *echo.Echo, w *handler.WarmupHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(RoleAdmin),
	)
	g.POST("/warmup", w.Run)
}
