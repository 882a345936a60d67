package model

import "time"

// WorkoutSession is the aggregate root for a single gym visit. It
// owns an ordered list of exercises, each of which owns its sets.
// IsCompleted is derived state: it is true exactly when every
// exercise in the session is completed, and CompletedAt records the
// instant the session last transitioned to fully complete.
type WorkoutSession struct {
	ID          uint64     `json:"id"`           // workout_sessions.id
	UserID      uint64     `json:"user_id"`      // workout_sessions.user_id
	Title       string     `json:"title"`        // workout_sessions.title
	Date        time.Time  `json:"date"`         // workout_sessions.date
	IsCompleted bool       `json:"is_completed"` // workout_sessions.is_completed
	CompletedAt *time.Time `json:"completed_at"` // workout_sessions.completed_at (nullable)
	Exercises   []Exercise `json:"exercises"`
}

// Exercise is a named movement inside a session.
type Exercise struct {
	ID          uint64       `json:"id"`           // exercises.id
	SessionID   uint64       `json:"session_id"`   // exercises.session_id
	Name        string       `json:"name"`         // exercises.name
	IsCompleted bool         `json:"is_completed"` // exercises.is_completed
	Sets        []WorkoutSet `json:"sets"`
}

// WorkoutSet is the leaf entity: one set of reps at a weight.
type WorkoutSet struct {
	ID         uint64  `json:"id"`          // workout_sets.id
	ExerciseID uint64  `json:"exercise_id"` // workout_sets.exercise_id
	Reps       uint32  `json:"reps"`        // workout_sets.reps
	Weight     float64 `json:"weight"`      // workout_sets.weight
}

// ExerciseInput carries the nested payload for creating an exercise
// together with its sets in one transaction.
type ExerciseInput struct {
	Name string     `json:"name"`
	Sets []SetInput `json:"sets"`
}

// SetInput carries a single set definition for aggregate creation.
type SetInput struct {
	Reps   uint32  `json:"reps"`
	Weight float64 `json:"weight"`
}
