package handler // handler implements the HTTP boundary of the API

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gymtrack/gymtrack-api/internal/middleware"
	"github.com/gymtrack/gymtrack-api/internal/model"
)

// dbTimeout bounds every persistence call made from a handler.
const dbTimeout = 5 * time.Second

// currentUser returns the identity resolved by the JWTAuth middleware.
func currentUser(c echo.Context) (model.User, error) {
	if u, ok := c.Get(middleware.ContextUserKey).(model.User); ok {
		return u, nil
	}
	return model.User{}, errors.New("no authenticated user in context")
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// pagination reads skip/limit query parameters, clamping skip to >= 0 and
// limit into [1, max]. Absent or malformed values fall back to defaults.
func pagination(c echo.Context, defLimit, maxLimit int) (skip, limit int) {
	skip = 0
	limit = defLimit
	if v := c.QueryParam("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			skip = n
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			limit = n
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}

// parseDate validates a YYYY-MM-DD calendar date.
func parseDate(s string) (string, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}
