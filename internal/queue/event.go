// Package queue defines message payloads exchanged over the message broker.
package queue

// WorkoutCompletedEvent is published when a workout session transitions to
// fully complete. It carries enough information for downstream consumers to
// log, notify, or feed analytics without querying the primary database.
type WorkoutCompletedEvent struct {
	SessionID     uint64 `json:"session_id"`
	UserID        uint64 `json:"user_id"`
	Title         string `json:"title"`
	ExerciseCount int    `json:"exercise_count"`
	CompletedAt   string `json:"completed_at"`
}
