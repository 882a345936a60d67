package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/gymtrack/gymtrack-api/internal/model"
)

// WorkoutRepo provides persistence for the workout aggregate: a session
// plus its owned exercises and sets. Every query is scoped by user_id so a
// session owned by someone else behaves exactly like a missing one, and
// every multi-row write runs inside a single transaction.
type WorkoutRepo struct{ DB *sql.DB }

func NewWorkoutRepo(db *sql.DB) *WorkoutRepo { return &WorkoutRepo{DB: db} }

const sessionColumns = "id, user_id, title, date, is_completed, completed_at"

func scanSession(row *sql.Row) (model.WorkoutSession, error) {
	var s model.WorkoutSession
	var completedAt sql.NullTime
	err := row.Scan(&s.ID, &s.UserID, &s.Title, &s.Date, &s.IsCompleted, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WorkoutSession{}, ErrSessionNotFound
	}
	if err != nil {
		return model.WorkoutSession{}, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		s.CompletedAt = &t
	}
	s.Exercises = []model.Exercise{}
	return s, nil
}

// CreateSession creates a session and, atomically with it, every nested
// exercise and set in the order given. Any failure rolls the whole
// aggregate back so an orphaned session is never visible.
func (r *WorkoutRepo) CreateSession(ctx context.Context, userID uint64, title string, exercises []model.ExerciseInput) (model.WorkoutSession, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.WorkoutSession{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO workout_sessions (user_id, title) VALUES (?,?)", userID, title)
	if err != nil {
		return model.WorkoutSession{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.WorkoutSession{}, err
	}
	sessionID := uint64(id)

	for _, ex := range exercises {
		if _, err := insertExerciseTx(ctx, tx, sessionID, ex); err != nil {
			return model.WorkoutSession{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.WorkoutSession{}, err
	}
	return r.GetSession(ctx, sessionID, userID)
}

// insertExerciseTx inserts one exercise and bulk-inserts its sets within
// the caller's transaction, returning the new exercise id.
func insertExerciseTx(ctx context.Context, tx *sql.Tx, sessionID uint64, ex model.ExerciseInput) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO exercises (session_id, name) VALUES (?,?)", sessionID, ex.Name)
	if err != nil {
		return 0, err
	}
	exID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if len(ex.Sets) == 0 {
		return uint64(exID), nil
	}
	q := "INSERT INTO workout_sets (exercise_id, reps, weight) VALUES "
	args := make([]interface{}, 0, len(ex.Sets)*3)
	for i, st := range ex.Sets {
		if i > 0 {
			q += ","
		}
		q += "(?,?,?)"
		args = append(args, exID, st.Reps, st.Weight)
	}
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return 0, err
	}
	return uint64(exID), nil
}

// GetSession returns a session with its exercises and sets, only if it
// belongs to the given user.
func (r *WorkoutRepo) GetSession(ctx context.Context, sessionID, userID uint64) (model.WorkoutSession, error) {
	s, err := scanSession(r.DB.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM workout_sessions WHERE id=? AND user_id=? LIMIT 1",
		sessionID, userID))
	if err != nil {
		return model.WorkoutSession{}, err
	}
	byID := map[uint64]*model.WorkoutSession{s.ID: &s}
	if err := r.loadChildren(ctx, byID, []uint64{s.ID}); err != nil {
		return model.WorkoutSession{}, err
	}
	return s, nil
}

// ListSessions returns the user's sessions ordered by date descending with
// offset pagination. Children are loaded with two additional queries.
func (r *WorkoutRepo) ListSessions(ctx context.Context, userID uint64, skip, limit int) ([]model.WorkoutSession, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM workout_sessions WHERE user_id=? ORDER BY date DESC, id DESC LIMIT ? OFFSET ?",
		userID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.WorkoutSession{}
	ids := []uint64{}
	for rows.Next() {
		var s model.WorkoutSession
		var completedAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Date, &s.IsCompleted, &completedAt); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			t := completedAt.Time
			s.CompletedAt = &t
		}
		s.Exercises = []model.Exercise{}
		out = append(out, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	byID := make(map[uint64]*model.WorkoutSession, len(out))
	for i := range out {
		byID[out[i].ID] = &out[i]
	}
	if err := r.loadChildren(ctx, byID, ids); err != nil {
		return nil, err
	}
	return out, nil
}

// loadChildren attaches exercises and sets to the given sessions, keeping
// insertion order within each parent.
func (r *WorkoutRepo) loadChildren(ctx context.Context, byID map[uint64]*model.WorkoutSession, sessionIDs []uint64) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	ph := strings.TrimSuffix(strings.Repeat("?,", len(sessionIDs)), ",")
	args := make([]interface{}, len(sessionIDs))
	for i, id := range sessionIDs {
		args[i] = id
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, session_id, name, is_completed FROM exercises WHERE session_id IN ("+ph+") ORDER BY id",
		args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	exByID := map[uint64]int{} // exercise id -> index in parent slice
	for rows.Next() {
		var e model.Exercise
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Name, &e.IsCompleted); err != nil {
			return err
		}
		e.Sets = []model.WorkoutSet{}
		parent := byID[e.SessionID]
		parent.Exercises = append(parent.Exercises, e)
		exByID[e.ID] = len(parent.Exercises) - 1
	}
	if err := rows.Err(); err != nil {
		return err
	}

	setRows, err := r.DB.QueryContext(ctx,
		`SELECT ws.id, ws.exercise_id, ws.reps, ws.weight, e.session_id
		   FROM workout_sets ws JOIN exercises e ON e.id = ws.exercise_id
		  WHERE e.session_id IN (`+ph+`) ORDER BY ws.id`,
		args...)
	if err != nil {
		return err
	}
	defer setRows.Close()

	for setRows.Next() {
		var st model.WorkoutSet
		var sessionID uint64
		if err := setRows.Scan(&st.ID, &st.ExerciseID, &st.Reps, &st.Weight, &sessionID); err != nil {
			return err
		}
		parent := byID[sessionID]
		if idx, ok := exByID[st.ExerciseID]; ok {
			parent.Exercises[idx].Sets = append(parent.Exercises[idx].Sets, st)
		}
	}
	return setRows.Err()
}

// UpdateSessionTitle changes the only mutable session field.
func (r *WorkoutRepo) UpdateSessionTitle(ctx context.Context, sessionID, userID uint64, title string) (model.WorkoutSession, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE workout_sessions SET title=? WHERE id=? AND user_id=?", title, sessionID, userID)
	if err != nil {
		return model.WorkoutSession{}, err
	}
	if _, err := res.RowsAffected(); err != nil {
		return model.WorkoutSession{}, err
	}
	// RowsAffected is 0 both for a missing session and for an unchanged
	// title, so re-read to distinguish.
	return r.GetSession(ctx, sessionID, userID)
}

// DeleteSession removes a session and cascades to its exercises and sets
// inside one transaction, leaves first.
func (r *WorkoutRepo) DeleteSession(ctx context.Context, sessionID, userID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var owned uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM workout_sessions WHERE id=? AND user_id=? LIMIT 1",
		sessionID, userID).Scan(&owned)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE ws FROM workout_sets ws JOIN exercises e ON e.id = ws.exercise_id WHERE e.session_id = ?`,
		sessionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM exercises WHERE session_id = ?", sessionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM workout_sessions WHERE id = ?", sessionID); err != nil {
		return err
	}
	return tx.Commit()
}

// AddExercise appends an exercise with its sets to an owned session. The
// exercise and its sets are written in one transaction.
func (r *WorkoutRepo) AddExercise(ctx context.Context, sessionID, userID uint64, ex model.ExerciseInput) (model.Exercise, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Exercise{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var owned uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM workout_sessions WHERE id=? AND user_id=? LIMIT 1",
		sessionID, userID).Scan(&owned)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Exercise{}, ErrSessionNotFound
	}
	if err != nil {
		return model.Exercise{}, err
	}
	exID, err := insertExerciseTx(ctx, tx, sessionID, ex)
	if err != nil {
		return model.Exercise{}, err
	}
	// A new incomplete exercise makes a previously completed session
	// incomplete again.
	if _, err := tx.ExecContext(ctx,
		"UPDATE workout_sessions SET is_completed=0, completed_at=NULL WHERE id=? AND is_completed=1",
		sessionID); err != nil {
		return model.Exercise{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Exercise{}, err
	}
	return r.getExercise(ctx, exID)
}

func (r *WorkoutRepo) getExercise(ctx context.Context, exerciseID uint64) (model.Exercise, error) {
	var e model.Exercise
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, session_id, name, is_completed FROM exercises WHERE id=? LIMIT 1",
		exerciseID).Scan(&e.ID, &e.SessionID, &e.Name, &e.IsCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Exercise{}, ErrExerciseNotFound
	}
	if err != nil {
		return model.Exercise{}, err
	}
	e.Sets = []model.WorkoutSet{}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, exercise_id, reps, weight FROM workout_sets WHERE exercise_id=? ORDER BY id", exerciseID)
	if err != nil {
		return model.Exercise{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var st model.WorkoutSet
		if err := rows.Scan(&st.ID, &st.ExerciseID, &st.Reps, &st.Weight); err != nil {
			return model.Exercise{}, err
		}
		e.Sets = append(e.Sets, st)
	}
	return e, rows.Err()
}

// DeleteExercise removes an exercise and its sets. Ownership is checked
// transitively through the exercise's owning session.
func (r *WorkoutRepo) DeleteExercise(ctx context.Context, exerciseID, userID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var sessionID uint64
	err = tx.QueryRowContext(ctx,
		`SELECT e.session_id FROM exercises e
		   JOIN workout_sessions s ON s.id = e.session_id
		  WHERE e.id=? AND s.user_id=? LIMIT 1`,
		exerciseID, userID).Scan(&sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrExerciseNotFound
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM workout_sets WHERE exercise_id = ?", exerciseID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM exercises WHERE id = ?", exerciseID); err != nil {
		return err
	}
	return tx.Commit()
}

// ToggleExercise flips one exercise's completion flag and recomputes the
// session's derived completion state: the session is complete exactly when
// all of its exercises are. Transitioning to fully complete stamps
// completed_at; transitioning away clears it. The whole step is one
// transaction.
func (r *WorkoutRepo) ToggleExercise(ctx context.Context, sessionID, exerciseID, userID uint64) (model.WorkoutSession, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.WorkoutSession{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var wasCompleted bool
	err = tx.QueryRowContext(ctx,
		"SELECT is_completed FROM workout_sessions WHERE id=? AND user_id=? LIMIT 1 FOR UPDATE",
		sessionID, userID).Scan(&wasCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WorkoutSession{}, ErrSessionNotFound
	}
	if err != nil {
		return model.WorkoutSession{}, err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE exercises SET is_completed = NOT is_completed WHERE id=? AND session_id=?",
		exerciseID, sessionID)
	if err != nil {
		return model.WorkoutSession{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.WorkoutSession{}, err
	} else if n == 0 {
		return model.WorkoutSession{}, ErrExerciseNotFound
	}

	var remaining int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM exercises WHERE session_id=? AND is_completed=0",
		sessionID).Scan(&remaining); err != nil {
		return model.WorkoutSession{}, err
	}

	allComplete := remaining == 0
	switch {
	case allComplete && !wasCompleted:
		if _, err := tx.ExecContext(ctx,
			"UPDATE workout_sessions SET is_completed=1, completed_at=? WHERE id=?",
			time.Now().UTC(), sessionID); err != nil {
			return model.WorkoutSession{}, err
		}
	case !allComplete && wasCompleted:
		if _, err := tx.ExecContext(ctx,
			"UPDATE workout_sessions SET is_completed=0, completed_at=NULL WHERE id=?",
			sessionID); err != nil {
			return model.WorkoutSession{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.WorkoutSession{}, err
	}
	return r.GetSession(ctx, sessionID, userID)
}

// CompleteSession force-marks every exercise and the session itself
// completed, stamping the completion time. Idempotent.
func (r *WorkoutRepo) CompleteSession(ctx context.Context, sessionID, userID uint64) (model.WorkoutSession, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.WorkoutSession{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var owned uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM workout_sessions WHERE id=? AND user_id=? LIMIT 1 FOR UPDATE",
		sessionID, userID).Scan(&owned)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WorkoutSession{}, ErrSessionNotFound
	}
	if err != nil {
		return model.WorkoutSession{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE exercises SET is_completed=1 WHERE session_id=?", sessionID); err != nil {
		return model.WorkoutSession{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE workout_sessions SET is_completed=1, completed_at=? WHERE id=?",
		time.Now().UTC(), sessionID); err != nil {
		return model.WorkoutSession{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.WorkoutSession{}, err
	}
	return r.GetSession(ctx, sessionID, userID)
}
