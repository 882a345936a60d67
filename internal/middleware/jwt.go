package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gymtrack/gymtrack-api/internal/repository"
	"github.com/gymtrack/gymtrack-api/internal/utils"
)

// Context keys under which the resolved identity is stored for handlers.
const (
	ContextUserKey   = "user"    // the full model.User
	ContextUserIDKey = "user_id" // uint64 id, used by rate/cache keys
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and resolves its subject to a live user account. Every failure mode —
// missing header, bad signature, expired token, or a user deleted after
// the token was issued — produces the same 401 with a Bearer challenge so
// callers learn nothing beyond "credentials rejected". On success the
// resolved user is stored in the request context; nothing persists beyond
// the request.
func JWTAuth(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c)
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			username, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return unauthorized(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.GetByUsername(ctx, username)
			if err != nil {
				return unauthorized(c)
			}

			c.Set(ContextUserKey, u)
			c.Set(ContextUserIDKey, u.ID)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context) error {
	c.Response().Header().Set("WWW-Authenticate", "Bearer")
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
}
