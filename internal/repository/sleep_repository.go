package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/gymtrack/gymtrack-api/internal/model"
)

// SleepRepo provides persistence for daily sleep logs.
type SleepRepo struct{ DB *sql.DB }

func NewSleepRepo(db *sql.DB) *SleepRepo { return &SleepRepo{DB: db} }

const sleepColumns = "id, user_id, date, hours, quality, notes"

// dateFormat is the wire and storage format for calendar dates.
const dateFormat = "2006-01-02"

func scanSleepLog(row *sql.Row) (model.SleepLog, error) {
	var l model.SleepLog
	var day time.Time
	err := row.Scan(&l.ID, &l.UserID, &day, &l.Hours, &l.Quality, &l.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SleepLog{}, ErrLogNotFound
	}
	if err != nil {
		return model.SleepLog{}, err
	}
	l.Date = day.Format(dateFormat)
	return l, nil
}

// Create inserts a sleep log. The (user_id, date) unique index rejects a
// second log for the same day; error 1062 maps to ErrLogExists.
func (r *SleepRepo) Create(ctx context.Context, l model.SleepLog) (model.SleepLog, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO sleep_logs (user_id, date, hours, quality, notes) VALUES (?,?,?,?,?)",
		l.UserID, l.Date, l.Hours, l.Quality, l.Notes)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.SleepLog{}, ErrLogExists
		}
		return model.SleepLog{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.SleepLog{}, err
	}
	return r.GetByID(ctx, uint64(id), l.UserID)
}

// ExistsForDate reports whether the user already has a log on that date.
// Used as a pre-check for a friendlier error; the unique index remains the
// authority under concurrent creates.
func (r *SleepRepo) ExistsForDate(ctx context.Context, userID uint64, date string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM sleep_logs WHERE user_id=? AND date=? LIMIT 1", userID, date).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// GetByID returns a log only if it belongs to the user.
func (r *SleepRepo) GetByID(ctx context.Context, id, userID uint64) (model.SleepLog, error) {
	return scanSleepLog(r.DB.QueryRowContext(ctx,
		"SELECT "+sleepColumns+" FROM sleep_logs WHERE id=? AND user_id=? LIMIT 1", id, userID))
}

// List returns the user's logs ordered by date descending.
func (r *SleepRepo) List(ctx context.Context, userID uint64, skip, limit int) ([]model.SleepLog, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+sleepColumns+" FROM sleep_logs WHERE user_id=? ORDER BY date DESC LIMIT ? OFFSET ?",
		userID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.SleepLog{}
	for rows.Next() {
		var l model.SleepLog
		var day time.Time
		if err := rows.Scan(&l.ID, &l.UserID, &day, &l.Hours, &l.Quality, &l.Notes); err != nil {
			return nil, err
		}
		l.Date = day.Format(dateFormat)
		out = append(out, l)
	}
	return out, rows.Err()
}

// SleepLogChanges is the optional-field change set for updates. The date
// itself is immutable; only measurements and notes can change.
type SleepLogChanges struct {
	Hours   *float64
	Quality *int
	Notes   *string
}

// Update applies only the fields present in the change set.
func (r *SleepRepo) Update(ctx context.Context, id, userID uint64, ch SleepLogChanges) (model.SleepLog, error) {
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)
	if ch.Hours != nil {
		sets = append(sets, "hours=?")
		args = append(args, *ch.Hours)
	}
	if ch.Quality != nil {
		sets = append(sets, "quality=?")
		args = append(args, *ch.Quality)
	}
	if ch.Notes != nil {
		sets = append(sets, "notes=?")
		args = append(args, *ch.Notes)
	}
	if len(sets) > 0 {
		args = append(args, id, userID)
		q := "UPDATE sleep_logs SET " + strings.Join(sets, ", ") + " WHERE id=? AND user_id=?"
		if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
			return model.SleepLog{}, err
		}
	}
	return r.GetByID(ctx, id, userID)
}

// Delete removes an owned log; ErrLogNotFound when nothing matched.
func (r *SleepRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM sleep_logs WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLogNotFound
	}
	return nil
}
