package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gymtrack/gymtrack-api/internal/config"
	"github.com/gymtrack/gymtrack-api/internal/repository"
	"github.com/gymtrack/gymtrack-api/internal/utils"
)

// dummyRecord is a well-formed hash record that no password matches. Login
// verifies against it when the username lookup misses, so an unknown
// username costs the same as a wrong password and the two cannot be told
// apart by response timing.
var dummyRecord = fmt.Sprintf("pbkdf2_sha256$%d$%s$%s",
	utils.MinPBKDF2Iterations,
	base64.StdEncoding.EncodeToString(make([]byte, 16)),
	base64.StdEncoding.EncodeToString(make([]byte, 32)))

// AuthHandler owns registration and login.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// Register creates a new account. Username and email are checked for
// availability independently, username first, so the caller learns which
// one is taken. The unique indexes catch the race where two registrations
// slip past the pre-checks at once.
func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if l := len(req.Username); l < 3 || l > 50 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must be 3-50 characters"})
	}
	if !strings.Contains(req.Email, "@") || len(req.Email) > 255 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email address"})
	}
	if l := len(req.Password); l < 6 || l > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be 6-100 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Users.GetByUsername(ctx, req.Username); err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username already registered"})
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create user"})
	}
	if _, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create user"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.PBKDF2Iterations)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create user"})
	}

	u, err := h.Users.Create(ctx, req.Username, req.Email, hash)
	switch {
	case errors.Is(err, repository.ErrUsernameExists):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username already registered"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create user"})
	}
	return c.JSON(http.StatusCreated, u)
}

// Login exchanges form-encoded credentials for a bearer access token. A
// wrong username and a wrong password produce the same 401 so the endpoint
// cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, username)
	stored := dummyRecord
	if err == nil {
		stored = u.PasswordHash
	}
	if !utils.VerifyPassword(stored, password) || err != nil {
		c.Response().Header().Set("WWW-Authenticate", "Bearer")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect username or password"})
	}

	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.Username, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"token_type":   "bearer",
	})
}
