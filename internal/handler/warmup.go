package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/warmup"
)

// WarmupRunner runs one warm-up pass.
type WarmupRunner interface {
	Run(ctx context.Context) warmup.Summary
}

// WarmupHandler triggers warm-up on demand.
type WarmupHandler struct {
	Runner WarmupRunner
}

// Run handles POST /v1/admin/warmup.  The pass runs synchronously and its
// summary is returned; failures are reported in the summary, not as
// errors.
func (h *WarmupHandler) Run(c echo.Context) error {
	sum := h.Runner.Run(c.Request().Context())
	return c.JSON(http.StatusOK, sum)
}
