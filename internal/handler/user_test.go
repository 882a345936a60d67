package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/gymtrack/gymtrack-api/internal/repository"
)

func TestMeReturnsCaller(t *testing.T) {
	db, _ := newMockDB(t)
	h := NewUserHandler(testConfig(), repository.NewUserRepo(db))
	e := echo.New()

	c, rec := jsonRequest(e, http.MethodGet, "/users/me", "")
	asUser(c, 1, "alice")

	if err := h.Me(c); err != nil {
		t.Fatalf("me: %v", err)
	}
	wantStatus(t, rec, http.StatusOK)

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["username"] != "alice" {
		t.Errorf("username = %v", body["username"])
	}
	if _, leaked := body["password_hash"]; leaked {
		t.Error("password_hash leaked into the response")
	}
}

func TestMeWithoutIdentity(t *testing.T) {
	db, _ := newMockDB(t)
	h := NewUserHandler(testConfig(), repository.NewUserRepo(db))
	e := echo.New()

	c, rec := jsonRequest(e, http.MethodGet, "/users/me", "")
	if err := h.Me(c); err != nil {
		t.Fatalf("me: %v", err)
	}
	wantStatus(t, rec, http.StatusUnauthorized)
}

func TestUpdateMePartial(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewUserHandler(testConfig(), repository.NewUserRepo(db))
	e := echo.New()

	mock.ExpectExec("UPDATE users SET age=").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, username, email").
		WillReturnRows(userRows(1, "alice", "alice@example.com", "hash"))

	c, rec := jsonRequest(e, http.MethodPut, "/users/me", `{"age":30}`)
	asUser(c, 1, "alice")

	if err := h.UpdateMe(c); err != nil {
		t.Fatalf("update: %v", err)
	}
	wantStatus(t, rec, http.StatusOK)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateMeValidation(t *testing.T) {
	db, _ := newMockDB(t)
	h := NewUserHandler(testConfig(), repository.NewUserRepo(db))
	e := echo.New()

	cases := []struct {
		name string
		body string
	}{
		{"age too low", `{"age":0}`},
		{"age too high", `{"age":200}`},
		{"height too low", `{"height":10}`},
		{"weight too high", `{"weight":900}`},
		{"short username", `{"username":"ab"}`},
		{"bad email", `{"email":"nope"}`},
		{"short password", `{"password":"123"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := jsonRequest(e, http.MethodPut, "/users/me", tc.body)
			asUser(c, 1, "alice")
			if err := h.UpdateMe(c); err != nil {
				t.Fatalf("update: %v", err)
			}
			wantStatus(t, rec, http.StatusBadRequest)
		})
	}
}

func TestDeleteMeCascades(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewUserHandler(testConfig(), repository.NewUserRepo(db))
	e := echo.New()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE ws FROM workout_sets ws").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE e FROM exercises e").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM workout_sessions").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM sleep_logs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM nutrition_logs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := jsonRequest(e, http.MethodDelete, "/users/me", "")
	asUser(c, 1, "alice")

	if err := h.DeleteMe(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	wantStatus(t, rec, http.StatusNoContent)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
