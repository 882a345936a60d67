package middleware

// identity.go holds the helper shared by the rate limit and cache key
// builders: a best-effort string form of the authenticated user's id as
// stored by JWTAuth. Requests that have not passed JWTAuth key as "anon".

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

func currentUserID(c echo.Context) string {
	if v := c.Get(ContextUserIDKey); v != nil {
		if id, ok := v.(uint64); ok {
			return strconv.FormatUint(id, 10)
		}
	}
	return "anon"
}
