// Package repository holds the data access layer. Sentinel errors defined
// here let handlers translate persistence failures into stable HTTP
// responses without inspecting driver errors. Note that every *NotFound
// sentinel covers both "row absent" and "row owned by another user":
// ownership-scoped queries make the two cases indistinguishable on purpose
// so the API never leaks the existence of someone else's data.
package repository

import "errors"

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists signals a duplicate username on create or update.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists signals a duplicate email on create or update.
var ErrEmailExists = errors.New("email already exists")

// ErrSessionNotFound is returned when a workout session does not exist or
// is not owned by the requesting user.
var ErrSessionNotFound = errors.New("workout session not found")

// ErrExerciseNotFound is returned when an exercise does not exist within
// the caller's sessions.
var ErrExerciseNotFound = errors.New("exercise not found")

// ErrLogNotFound is returned for sleep and nutrition log lookups that
// match no row for the requesting user.
var ErrLogNotFound = errors.New("log not found")

// ErrLogExists signals that a daily log already exists for the
// (user, date) pair. The pair is covered by a unique index, so the error
// also surfaces when two concurrent creates race past the handler check.
var ErrLogExists = errors.New("log already exists for this date")
