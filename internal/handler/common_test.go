package handler

import (
	"database/sql"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/gymtrack/gymtrack-api/internal/middleware"
	"github.com/gymtrack/gymtrack-api/internal/model"
)

// newMockDB returns an sqlmock-backed database handle closed with the test.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// jsonRequest builds an echo context carrying a JSON body.
func jsonRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asUser stores an authenticated identity the way JWTAuth would.
func asUser(c echo.Context, id uint64, username string) {
	now := time.Now().UTC()
	u := model.User{ID: id, Username: username, Email: username + "@example.com",
		PasswordHash: "hash", CreatedAt: now, UpdatedAt: now}
	c.Set(middleware.ContextUserKey, u)
	c.Set(middleware.ContextUserIDKey, id)
}

func userRows(id int64, username, email, hash string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "age", "height_cm",
		"weight_kg", "gender", "fitness_goal", "created_at", "updated_at",
	}).AddRow(id, username, email, hash, nil, nil, nil, nil, nil, now, now)
}

func emptyUserRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "age", "height_cm",
		"weight_kg", "gender", "fitness_goal", "created_at", "updated_at",
	})
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}
