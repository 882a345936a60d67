package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/gymtrack/gymtrack-api/internal/model"
)

// UserRepo provides persistence for user accounts.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, username, email, password_hash, age, height_cm, weight_kg, gender, fitness_goal, created_at, updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.Age, &u.Height, &u.Weight, &u.Gender, &u.FitnessGoal,
		&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// Create inserts a new user with an already-hashed password and returns the
// stored record. Duplicate usernames and emails are caught by the unique
// indexes; MySQL error 1062 is mapped onto the matching sentinel.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string) (model.User, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash) VALUES (?,?,?)",
		username, email, passwordHash)
	if err != nil {
		return model.User{}, mapDuplicateUser(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByUsername fetches a user by exact username. Lookups are
// case-sensitive as stored; no normalization is applied.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

// GetByEmail fetches a user by exact email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// UserChanges is an explicit optional-field change set for profile updates.
// Only non-nil fields are written; absent fields are left untouched.
// PasswordHash, when set, must already be hashed by the caller.
type UserChanges struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Age          *int
	Height       *float64
	Weight       *float64
	Gender       *string
	FitnessGoal  *string
}

// Update applies the change set to the user and returns the updated record.
// Username and email changes rely on the unique indexes to reject values
// taken by other users.
func (r *UserRepo) Update(ctx context.Context, id uint64, ch UserChanges) (model.User, error) {
	sets := make([]string, 0, 8)
	args := make([]interface{}, 0, 9)
	add := func(col string, v interface{}) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if ch.Username != nil {
		add("username", *ch.Username)
	}
	if ch.Email != nil {
		add("email", *ch.Email)
	}
	if ch.PasswordHash != nil {
		add("password_hash", *ch.PasswordHash)
	}
	if ch.Age != nil {
		add("age", *ch.Age)
	}
	if ch.Height != nil {
		add("height_cm", *ch.Height)
	}
	if ch.Weight != nil {
		add("weight_kg", *ch.Weight)
	}
	if ch.Gender != nil {
		add("gender", *ch.Gender)
	}
	if ch.FitnessGoal != nil {
		add("fitness_goal", *ch.FitnessGoal)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	q := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id=?"
	if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
		return model.User{}, mapDuplicateUser(err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes the user and every record they own. Children are deleted
// explicitly, leaves first, inside one transaction so a failure part way
// through never leaves a partially deleted account.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	steps := []string{
		`DELETE ws FROM workout_sets ws
		   JOIN exercises e ON e.id = ws.exercise_id
		   JOIN workout_sessions s ON s.id = e.session_id
		  WHERE s.user_id = ?`,
		`DELETE e FROM exercises e
		   JOIN workout_sessions s ON s.id = e.session_id
		  WHERE s.user_id = ?`,
		`DELETE FROM workout_sessions WHERE user_id = ?`,
		`DELETE FROM sleep_logs WHERE user_id = ?`,
		`DELETE FROM nutrition_logs WHERE user_id = ?`,
	}
	for _, q := range steps {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return tx.Commit()
}

// mapDuplicateUser converts a MySQL duplicate-key error (1062) into the
// sentinel for whichever unique index was violated.
func mapDuplicateUser(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "username") {
		return ErrUsernameExists
	}
	return ErrEmailExists
}
