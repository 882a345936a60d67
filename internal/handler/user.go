package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gymtrack/gymtrack-api/internal/config"
	"github.com/gymtrack/gymtrack-api/internal/repository"
	"github.com/gymtrack/gymtrack-api/internal/utils"
)

// UserHandler serves the authenticated user's own profile. There is no
// admin surface: every route operates on the caller, never on an id taken
// from the path.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserHandler(cfg config.Config, users *repository.UserRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users}
}

// Me returns the caller's profile.
func (h *UserHandler) Me(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateMe applies a partial profile update. Only fields present in the
// body change; a new password is re-hashed before it is stored.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}

	var req struct {
		Username    *string  `json:"username"`
		Email       *string  `json:"email"`
		Password    *string  `json:"password"`
		Age         *int     `json:"age"`
		Height      *float64 `json:"height"`
		Weight      *float64 `json:"weight"`
		Gender      *string  `json:"gender"`
		FitnessGoal *string  `json:"fitness_goal"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if req.Username != nil {
		*req.Username = strings.TrimSpace(*req.Username)
		if l := len(*req.Username); l < 3 || l > 50 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must be 3-50 characters"})
		}
	}
	if req.Email != nil {
		*req.Email = strings.TrimSpace(*req.Email)
		if !strings.Contains(*req.Email, "@") || len(*req.Email) > 255 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email address"})
		}
	}
	if req.Password != nil {
		if l := len(*req.Password); l < 6 || l > 100 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be 6-100 characters"})
		}
	}
	if req.Age != nil && (*req.Age < 1 || *req.Age > 150) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "age must be between 1 and 150"})
	}
	if req.Height != nil && (*req.Height < 50 || *req.Height > 300) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "height must be between 50 and 300 cm"})
	}
	if req.Weight != nil && (*req.Weight < 20 || *req.Weight > 500) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "weight must be between 20 and 500 kg"})
	}
	if req.Gender != nil && len(*req.Gender) > 20 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "gender must be at most 20 characters"})
	}
	if req.FitnessGoal != nil && len(*req.FitnessGoal) > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "fitness_goal must be at most 100 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ch := repository.UserChanges{
		Username:    req.Username,
		Email:       req.Email,
		Age:         req.Age,
		Height:      req.Height,
		Weight:      req.Weight,
		Gender:      req.Gender,
		FitnessGoal: req.FitnessGoal,
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password, h.Cfg.PBKDF2Iterations)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update user"})
		}
		ch.PasswordHash = &hash
	}

	updated, err := h.Users.Update(ctx, u.ID, ch)
	switch {
	case errors.Is(err, repository.ErrUsernameExists):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username already registered"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update user"})
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteMe removes the caller's account together with every workout and
// tracking record they own.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.Delete(ctx, u.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete user"})
	}
	return c.NoContent(http.StatusNoContent)
}
