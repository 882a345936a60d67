package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gymtrack/gymtrack-api/internal/model"
	"github.com/gymtrack/gymtrack-api/internal/queue"
	"github.com/gymtrack/gymtrack-api/internal/repository"
	queue_publisher "github.com/gymtrack/gymtrack-api/internal/service"
)

// WorkoutHandler serves the workout aggregate: sessions, their exercises
// and sets. Every operation is scoped to the authenticated caller; a
// session owned by someone else is indistinguishable from a missing one.
type WorkoutHandler struct {
	Workouts *repository.WorkoutRepo
	// PublishEvents gates the workout.completed broker publish so tests
	// run without a broker.
	PublishEvents bool
}

func NewWorkoutHandler(workouts *repository.WorkoutRepo, publishEvents bool) *WorkoutHandler {
	return &WorkoutHandler{Workouts: workouts, PublishEvents: publishEvents}
}

type exercisePayload struct {
	Name string `json:"name"`
	Sets []struct {
		Reps   uint32  `json:"reps"`
		Weight float64 `json:"weight"`
	} `json:"sets"`
}

func (p exercisePayload) validate() string {
	name := strings.TrimSpace(p.Name)
	if l := len(name); l < 1 || l > 100 {
		return "exercise name must be 1-100 characters"
	}
	for _, s := range p.Sets {
		if s.Reps < 1 {
			return "set reps must be at least 1"
		}
		if s.Weight < 0 {
			return "set weight must not be negative"
		}
	}
	return ""
}

func (p exercisePayload) toInput() model.ExerciseInput {
	in := model.ExerciseInput{Name: strings.TrimSpace(p.Name), Sets: make([]model.SetInput, 0, len(p.Sets))}
	for _, s := range p.Sets {
		in.Sets = append(in.Sets, model.SetInput{Reps: s.Reps, Weight: s.Weight})
	}
	return in
}

// Create creates a session together with any nested exercises and sets in
// one transaction.
func (h *WorkoutHandler) Create(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}

	var req struct {
		Title     string            `json:"title"`
		Exercises []exercisePayload `json:"exercises"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if l := len(req.Title); l < 1 || l > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title must be 1-100 characters"})
	}
	exercises := make([]model.ExerciseInput, 0, len(req.Exercises))
	for _, ex := range req.Exercises {
		if msg := ex.validate(); msg != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
		}
		exercises = append(exercises, ex.toInput())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Workouts.CreateSession(ctx, u.ID, req.Title, exercises)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create workout"})
	}
	return c.JSON(http.StatusCreated, s)
}

// List returns the caller's sessions, newest first, with skip/limit
// pagination.
func (h *WorkoutHandler) List(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	skip, limit := pagination(c, 100, 100)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Workouts.ListSessions(ctx, u.ID, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list workouts"})
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one owned session with its full exercise and set tree.
func (h *WorkoutHandler) Get(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workout id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Workouts.GetSession(ctx, id, u.ID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "workout not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch workout"})
	}
	return c.JSON(http.StatusOK, s)
}

// Update renames a session. The title is the only mutable field; completion
// state only moves through the completion endpoints.
func (h *WorkoutHandler) Update(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workout id"})
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if l := len(req.Title); l < 1 || l > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title must be 1-100 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Workouts.UpdateSessionTitle(ctx, id, u.ID, req.Title)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "workout not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update workout"})
	}
	return c.JSON(http.StatusOK, s)
}

// Delete removes a session and everything under it.
func (h *WorkoutHandler) Delete(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workout id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Workouts.DeleteSession(ctx, id, u.ID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "workout not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete workout"})
	}
	return c.NoContent(http.StatusNoContent)
}

// AddExercise appends an exercise (with optional sets) to an owned session.
// Adding to a completed session reopens it.
func (h *WorkoutHandler) AddExercise(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workout id"})
	}

	var req exercisePayload
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ex, err := h.Workouts.AddExercise(ctx, id, u.ID, req.toInput())
	if errors.Is(err, repository.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "workout not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not add exercise"})
	}
	return c.JSON(http.StatusCreated, ex)
}

// DeleteExercise removes one exercise and its sets. Ownership is resolved
// through the exercise's session, so the route takes only the exercise id.
func (h *WorkoutHandler) DeleteExercise(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid exercise id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Workouts.DeleteExercise(ctx, id, u.ID); err != nil {
		if errors.Is(err, repository.ErrExerciseNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "exercise not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete exercise"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleExercise flips one exercise's completion flag and returns the
// session with its recomputed completion state. Completing the last open
// exercise completes the session and publishes a workout.completed event.
func (h *WorkoutHandler) ToggleExercise(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	sessionID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workout id"})
	}
	exerciseID, err := paramID(c, "exercise_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid exercise id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Workouts.ToggleExercise(ctx, sessionID, exerciseID, u.ID)
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "workout not found"})
	case errors.Is(err, repository.ErrExerciseNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "exercise not found"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update exercise"})
	}
	if s.IsCompleted {
		h.publishCompleted(s)
	}
	return c.JSON(http.StatusOK, s)
}

// Complete force-marks the whole session done regardless of individual
// exercise state. Idempotent; each call republishes the completion event.
func (h *WorkoutHandler) Complete(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workout id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Workouts.CompleteSession(ctx, id, u.ID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "workout not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not complete workout"})
	}
	h.publishCompleted(s)
	return c.JSON(http.StatusOK, s)
}

// publishCompleted fires the broker event in the background. Publish
// failures are logged inside the publisher and never fail the request.
func (h *WorkoutHandler) publishCompleted(s model.WorkoutSession) {
	if !h.PublishEvents {
		return
	}
	completedAt := ""
	if s.CompletedAt != nil {
		completedAt = s.CompletedAt.UTC().Format(time.RFC3339)
	}
	ev := queue.WorkoutCompletedEvent{
		SessionID:     s.ID,
		UserID:        s.UserID,
		Title:         s.Title,
		ExerciseCount: len(s.Exercises),
		CompletedAt:   completedAt,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()
		_ = queue_publisher.PublishWorkoutCompleted(ctx, ev)
	}()
}
