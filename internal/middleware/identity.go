package middleware

import (
	"encoding/json"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys populated by JWTAuth.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// Principal returns the authenticated subject as a string.  JWT numeric
// claims decode as float64, so numbers are normalised to their integer
// form.  It reports false when no usable subject is present.
func Principal(c echo.Context) (string, bool) {
	switch t := c.Get(ContextUserID).(type) {
	case string:
		return t, t != ""
	case float64:
		if t <= 0 {
			return "", false
		}
		return strconv.FormatUint(uint64(t), 10), true
	case json.Number:
		return t.String(), t != ""
	case int64:
		return strconv.FormatInt(t, 10), t > 0
	case uint64:
		return strconv.FormatUint(t, 10), t > 0
	case int:
		return strconv.Itoa(t), t > 0
	}
	return "", false
}

func principalOr(c echo.Context, fallback string) string {
	if p, ok := Principal(c); ok {
		return p
	}
	return fallback
}
