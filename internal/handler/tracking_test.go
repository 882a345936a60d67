package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/gymtrack/gymtrack-api/internal/repository"
)

func newTrackingHandler(t *testing.T) (*TrackingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewTrackingHandler(repository.NewSleepRepo(db), repository.NewNutritionRepo(db)), mock
}

func TestCreateSleepLog(t *testing.T) {
	h, mock := newTrackingHandler(t)
	e := echo.New()

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT 1 FROM sleep_logs").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec("INSERT INTO sleep_logs").WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("SELECT id, user_id, date, hours, quality, notes FROM sleep_logs").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "date", "hours", "quality", "notes"}).
			AddRow(5, 1, day, 7.5, 4, nil))

	c, rec := jsonRequest(e, http.MethodPost, "/tracking/sleep",
		`{"date":"2025-03-10","hours":7.5,"quality":4}`)
	asUser(c, 1, "alice")

	if err := h.CreateSleep(c); err != nil {
		t.Fatalf("create sleep: %v", err)
	}
	wantStatus(t, rec, http.StatusCreated)

	var body struct {
		Date  string  `json:"date"`
		Hours float64 `json:"hours"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Date != "2025-03-10" || body.Hours != 7.5 {
		t.Errorf("unexpected log: %+v", body)
	}
}

func TestCreateSleepLogDuplicateDate(t *testing.T) {
	h, mock := newTrackingHandler(t)
	e := echo.New()

	mock.ExpectQuery("SELECT 1 FROM sleep_logs").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	c, rec := jsonRequest(e, http.MethodPost, "/tracking/sleep",
		`{"date":"2025-03-10","hours":8,"quality":3}`)
	asUser(c, 1, "alice")

	if err := h.CreateSleep(c); err != nil {
		t.Fatalf("create sleep: %v", err)
	}
	wantStatus(t, rec, http.StatusBadRequest)
	if !strings.Contains(rec.Body.String(), "already exists for this date") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCreateSleepLogValidation(t *testing.T) {
	h, _ := newTrackingHandler(t)
	e := echo.New()

	cases := []struct {
		name string
		body string
	}{
		{"bad date", `{"date":"10-03-2025","hours":8,"quality":3}`},
		{"hours above 24", `{"date":"2025-03-10","hours":25,"quality":3}`},
		{"negative hours", `{"date":"2025-03-10","hours":-1,"quality":3}`},
		{"quality zero", `{"date":"2025-03-10","hours":8,"quality":0}`},
		{"quality six", `{"date":"2025-03-10","hours":8,"quality":6}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := jsonRequest(e, http.MethodPost, "/tracking/sleep", tc.body)
			asUser(c, 1, "alice")
			if err := h.CreateSleep(c); err != nil {
				t.Fatalf("create sleep: %v", err)
			}
			wantStatus(t, rec, http.StatusBadRequest)
		})
	}
}

func TestUpdateSleepLogNotOwned(t *testing.T) {
	h, mock := newTrackingHandler(t)
	e := echo.New()

	mock.ExpectExec("UPDATE sleep_logs SET hours=").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, user_id, date, hours, quality, notes FROM sleep_logs").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "date", "hours", "quality", "notes"}))

	c, rec := jsonRequest(e, http.MethodPut, "/tracking/sleep/5", `{"hours":6}`)
	c.SetParamNames("id")
	c.SetParamValues("5")
	asUser(c, 2, "mallory")

	if err := h.UpdateSleep(c); err != nil {
		t.Fatalf("update sleep: %v", err)
	}
	wantStatus(t, rec, http.StatusNotFound)
}

func TestDeleteSleepLog(t *testing.T) {
	h, mock := newTrackingHandler(t)
	e := echo.New()

	mock.ExpectExec("DELETE FROM sleep_logs").WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := jsonRequest(e, http.MethodDelete, "/tracking/sleep/5", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	asUser(c, 1, "alice")

	if err := h.DeleteSleep(c); err != nil {
		t.Fatalf("delete sleep: %v", err)
	}
	wantStatus(t, rec, http.StatusNoContent)
}

func TestCreateNutritionLog(t *testing.T) {
	h, mock := newTrackingHandler(t)
	e := echo.New()

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT 1 FROM nutrition_logs").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec("INSERT INTO nutrition_logs").WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery("SELECT id, user_id, date, calories").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "date", "calories", "protein", "carbs", "fats", "water", "notes"}).
			AddRow(9, 1, day, 2200, 150.0, nil, nil, nil, nil))

	c, rec := jsonRequest(e, http.MethodPost, "/tracking/nutrition",
		`{"date":"2025-03-10","calories":2200,"protein":150}`)
	asUser(c, 1, "alice")

	if err := h.CreateNutrition(c); err != nil {
		t.Fatalf("create nutrition: %v", err)
	}
	wantStatus(t, rec, http.StatusCreated)
}

func TestCreateNutritionLogValidation(t *testing.T) {
	h, _ := newTrackingHandler(t)
	e := echo.New()

	cases := []struct {
		name string
		body string
	}{
		{"bad date", `{"date":"March 10","calories":2000,"protein":100}`},
		{"negative protein", `{"date":"2025-03-10","calories":2000,"protein":-5}`},
		{"negative carbs", `{"date":"2025-03-10","calories":2000,"protein":100,"carbs":-1}`},
		{"negative water", `{"date":"2025-03-10","calories":2000,"protein":100,"water":-0.5}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := jsonRequest(e, http.MethodPost, "/tracking/nutrition", tc.body)
			asUser(c, 1, "alice")
			if err := h.CreateNutrition(c); err != nil {
				t.Fatalf("create nutrition: %v", err)
			}
			wantStatus(t, rec, http.StatusBadRequest)
		})
	}
}

func TestGetNutritionLogNotOwned(t *testing.T) {
	h, mock := newTrackingHandler(t)
	e := echo.New()

	mock.ExpectQuery("SELECT id, user_id, date, calories").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "date", "calories", "protein", "carbs", "fats", "water", "notes"}))

	c, rec := jsonRequest(e, http.MethodGet, "/tracking/nutrition/9", "")
	c.SetParamNames("id")
	c.SetParamValues("9")
	asUser(c, 2, "mallory")

	if err := h.GetNutrition(c); err != nil {
		t.Fatalf("get nutrition: %v", err)
	}
	wantStatus(t, rec, http.StatusNotFound)
}

func TestListSleepPaginationClamps(t *testing.T) {
	h, mock := newTrackingHandler(t)
	e := echo.New()

	// limit above the cap must be clamped to 100
	mock.ExpectQuery("SELECT id, user_id, date, hours, quality, notes FROM sleep_logs").
		WithArgs(uint64(1), 100, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "date", "hours", "quality", "notes"}))

	c, rec := jsonRequest(e, http.MethodGet, "/tracking/sleep?limit=500", "")
	asUser(c, 1, "alice")

	if err := h.ListSleep(c); err != nil {
		t.Fatalf("list sleep: %v", err)
	}
	wantStatus(t, rec, http.StatusOK)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
