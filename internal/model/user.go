package model

import "time"

// User represents an application user record as stored in the
// `users` table. The password hash is never serialized; handlers
// return this struct directly so the json tags double as the
// public representation of an account.
type User struct {
	ID           uint64    `json:"id"`           // users.id
	Username     string    `json:"username"`     // users.username
	Email        string    `json:"email"`        // users.email
	PasswordHash string    `json:"-"`            // users.password_hash
	Age          *int      `json:"age"`          // users.age (nullable)
	Height       *float64  `json:"height"`       // users.height_cm (nullable)
	Weight       *float64  `json:"weight"`       // users.weight_kg (nullable)
	Gender       *string   `json:"gender"`       // users.gender (nullable)
	FitnessGoal  *string   `json:"fitness_goal"` // users.fitness_goal (nullable)
	CreatedAt    time.Time `json:"created_at"`   // users.created_at
	UpdatedAt    time.Time `json:"updated_at"`   // users.updated_at
}
