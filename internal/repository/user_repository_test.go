package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func userRows(id int64, username, email string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "age", "height_cm",
		"weight_kg", "gender", "fitness_goal", "created_at", "updated_at",
	}).AddRow(id, username, email, "pbkdf2_sha256$260000$salt$hash",
		nil, nil, nil, nil, nil, now, now)
}

func TestUserCreateReturnsStoredRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "alice@example.com", "hash").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT id, username, email").
		WillReturnRows(userRows(1, "alice", "alice@example.com"))

	u, err := repo.Create(context.Background(), "alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID != 1 || u.Username != "alice" {
		t.Errorf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserCreateMapsDuplicateUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice' for key 'users.uq_users_username'"))

	_, err = repo.Create(context.Background(), "alice", "a@example.com", "hash")
	if !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("err = %v, want ErrUsernameExists", err)
	}
}

func TestUserCreateMapsDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'a@example.com' for key 'users.uq_users_email'"))

	_, err = repo.Create(context.Background(), "alice", "a@example.com", "hash")
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("err = %v, want ErrEmailExists", err)
	}
}

func TestUserGetByUsernameNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	repo := NewUserRepo(db)

	empty := sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "age", "height_cm",
		"weight_kg", "gender", "fitness_goal", "created_at", "updated_at",
	})
	mock.ExpectQuery("SELECT id, username, email").WillReturnRows(empty)

	_, err = repo.GetByUsername(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestUserGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	repo := NewUserRepo(db)

	empty := sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "age", "height_cm",
		"weight_kg", "gender", "fitness_goal", "created_at", "updated_at",
	})
	mock.ExpectQuery("SELECT id, username, email").WillReturnRows(empty)

	_, err = repo.GetByID(context.Background(), 42)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestUserUpdateAppliesOnlyPresentFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	repo := NewUserRepo(db)

	age := 30
	mock.ExpectExec("UPDATE users SET age=").
		WithArgs(age, uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, username, email").
		WillReturnRows(userRows(1, "alice", "alice@example.com"))

	if _, err := repo.Update(context.Background(), 1, UserChanges{Age: &age}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserUpdateNoChangesJustReloads(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT id, username, email").
		WillReturnRows(userRows(1, "alice", "alice@example.com"))

	if _, err := repo.Update(context.Background(), 1, UserChanges{}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserDeleteCascadesInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE ws FROM workout_sets ws").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE e FROM exercises e").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM workout_sessions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM sleep_logs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM nutrition_logs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Delete(context.Background(), 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserDeleteUnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE ws FROM workout_sets ws").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE e FROM exercises e").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM workout_sessions").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM sleep_logs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM nutrition_logs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := repo.Delete(context.Background(), 99); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}
