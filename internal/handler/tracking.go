package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gymtrack/gymtrack-api/internal/model"
	"github.com/gymtrack/gymtrack-api/internal/repository"
)

// TrackingHandler serves the daily sleep and nutrition logs. Both follow
// the same shape: at most one log per calendar day per user, offset
// pagination ordered newest first, and update/delete by log id.
type TrackingHandler struct {
	Sleep     *repository.SleepRepo
	Nutrition *repository.NutritionRepo
}

func NewTrackingHandler(sleep *repository.SleepRepo, nutrition *repository.NutritionRepo) *TrackingHandler {
	return &TrackingHandler{Sleep: sleep, Nutrition: nutrition}
}

// CreateSleep records one night of sleep. A second log for the same date
// is rejected.
func (h *TrackingHandler) CreateSleep(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}

	var req struct {
		Date    string  `json:"date"`
		Hours   float64 `json:"hours"`
		Quality int     `json:"quality"`
		Notes   *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	date, ok := parseDate(req.Date)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be formatted YYYY-MM-DD"})
	}
	if req.Hours < 0 || req.Hours > 24 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hours must be between 0 and 24"})
	}
	if req.Quality < 1 || req.Quality > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quality must be between 1 and 5"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if exists, err := h.Sleep.ExistsForDate(ctx, u.ID, date); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create sleep log"})
	} else if exists {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sleep log already exists for this date"})
	}

	l, err := h.Sleep.Create(ctx, model.SleepLog{
		UserID:  u.ID,
		Date:    date,
		Hours:   req.Hours,
		Quality: req.Quality,
		Notes:   req.Notes,
	})
	if errors.Is(err, repository.ErrLogExists) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sleep log already exists for this date"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create sleep log"})
	}
	return c.JSON(http.StatusCreated, l)
}

// ListSleep returns the caller's sleep logs, newest date first.
func (h *TrackingHandler) ListSleep(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	skip, limit := pagination(c, 30, 100)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Sleep.List(ctx, u.ID, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list sleep logs"})
	}
	return c.JSON(http.StatusOK, out)
}

// GetSleep returns one owned sleep log.
func (h *TrackingHandler) GetSleep(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid log id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	l, err := h.Sleep.GetByID(ctx, id, u.ID)
	if errors.Is(err, repository.ErrLogNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "sleep log not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch sleep log"})
	}
	return c.JSON(http.StatusOK, l)
}

// UpdateSleep changes measurements or notes on an owned log. The date is
// immutable: moving a log to another day is a delete plus create.
func (h *TrackingHandler) UpdateSleep(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid log id"})
	}

	var req struct {
		Hours   *float64 `json:"hours"`
		Quality *int     `json:"quality"`
		Notes   *string  `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Hours != nil && (*req.Hours < 0 || *req.Hours > 24) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hours must be between 0 and 24"})
	}
	if req.Quality != nil && (*req.Quality < 1 || *req.Quality > 5) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quality must be between 1 and 5"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	l, err := h.Sleep.Update(ctx, id, u.ID, repository.SleepLogChanges{
		Hours:   req.Hours,
		Quality: req.Quality,
		Notes:   req.Notes,
	})
	if errors.Is(err, repository.ErrLogNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "sleep log not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update sleep log"})
	}
	return c.JSON(http.StatusOK, l)
}

// DeleteSleep removes one owned sleep log.
func (h *TrackingHandler) DeleteSleep(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid log id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Sleep.Delete(ctx, id, u.ID); err != nil {
		if errors.Is(err, repository.ErrLogNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sleep log not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete sleep log"})
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateNutrition records one day of nutrition intake. Same one-per-date
// rule as sleep.
func (h *TrackingHandler) CreateNutrition(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}

	var req struct {
		Date     string   `json:"date"`
		Calories uint32   `json:"calories"`
		Protein  float64  `json:"protein"`
		Carbs    *float64 `json:"carbs"`
		Fats     *float64 `json:"fats"`
		Water    *float64 `json:"water"`
		Notes    *string  `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	date, ok := parseDate(req.Date)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be formatted YYYY-MM-DD"})
	}
	if msg := validateNutrition(req.Protein, req.Carbs, req.Fats, req.Water); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if exists, err := h.Nutrition.ExistsForDate(ctx, u.ID, date); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create nutrition log"})
	} else if exists {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nutrition log already exists for this date"})
	}

	l, err := h.Nutrition.Create(ctx, model.NutritionLog{
		UserID:   u.ID,
		Date:     date,
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fats:     req.Fats,
		Water:    req.Water,
		Notes:    req.Notes,
	})
	if errors.Is(err, repository.ErrLogExists) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nutrition log already exists for this date"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create nutrition log"})
	}
	return c.JSON(http.StatusCreated, l)
}

// validateNutrition checks the non-negative macro measurements shared by
// create and update.
func validateNutrition(protein float64, carbs, fats, water *float64) string {
	if protein < 0 {
		return "protein must not be negative"
	}
	if carbs != nil && *carbs < 0 {
		return "carbs must not be negative"
	}
	if fats != nil && *fats < 0 {
		return "fats must not be negative"
	}
	if water != nil && *water < 0 {
		return "water must not be negative"
	}
	return ""
}

// ListNutrition returns the caller's nutrition logs, newest date first.
func (h *TrackingHandler) ListNutrition(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	skip, limit := pagination(c, 30, 100)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Nutrition.List(ctx, u.ID, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list nutrition logs"})
	}
	return c.JSON(http.StatusOK, out)
}

// GetNutrition returns one owned nutrition log.
func (h *TrackingHandler) GetNutrition(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid log id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	l, err := h.Nutrition.GetByID(ctx, id, u.ID)
	if errors.Is(err, repository.ErrLogNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "nutrition log not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch nutrition log"})
	}
	return c.JSON(http.StatusOK, l)
}

// UpdateNutrition changes measurements or notes on an owned log; the date
// is immutable.
func (h *TrackingHandler) UpdateNutrition(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid log id"})
	}

	var req struct {
		Calories *uint32  `json:"calories"`
		Protein  *float64 `json:"protein"`
		Carbs    *float64 `json:"carbs"`
		Fats     *float64 `json:"fats"`
		Water    *float64 `json:"water"`
		Notes    *string  `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	protein := 0.0
	if req.Protein != nil {
		protein = *req.Protein
	}
	if msg := validateNutrition(protein, req.Carbs, req.Fats, req.Water); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	l, err := h.Nutrition.Update(ctx, id, u.ID, repository.NutritionLogChanges{
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fats:     req.Fats,
		Water:    req.Water,
		Notes:    req.Notes,
	})
	if errors.Is(err, repository.ErrLogNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "nutrition log not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update nutrition log"})
	}
	return c.JSON(http.StatusOK, l)
}

// DeleteNutrition removes one owned nutrition log.
func (h *TrackingHandler) DeleteNutrition(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid log id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Nutrition.Delete(ctx, id, u.ID); err != nil {
		if errors.Is(err, repository.ErrLogNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "nutrition log not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete nutrition log"})
	}
	return c.NoContent(http.StatusNoContent)
}
