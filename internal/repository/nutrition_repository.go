package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/gymtrack/gymtrack-api/internal/model"
)

// NutritionRepo provides persistence for daily nutrition logs. It follows
// the same one-per-(user, date) shape as SleepRepo.
type NutritionRepo struct{ DB *sql.DB }

func NewNutritionRepo(db *sql.DB) *NutritionRepo { return &NutritionRepo{DB: db} }

const nutritionColumns = "id, user_id, date, calories, protein, carbs, fats, water, notes"

func scanNutritionLog(row *sql.Row) (model.NutritionLog, error) {
	var l model.NutritionLog
	var day time.Time
	err := row.Scan(&l.ID, &l.UserID, &day, &l.Calories, &l.Protein, &l.Carbs, &l.Fats, &l.Water, &l.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NutritionLog{}, ErrLogNotFound
	}
	if err != nil {
		return model.NutritionLog{}, err
	}
	l.Date = day.Format(dateFormat)
	return l, nil
}

// Create inserts a nutrition log; a duplicate (user_id, date) pair maps to
// ErrLogExists via the unique index.
func (r *NutritionRepo) Create(ctx context.Context, l model.NutritionLog) (model.NutritionLog, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO nutrition_logs (user_id, date, calories, protein, carbs, fats, water, notes) VALUES (?,?,?,?,?,?,?,?)",
		l.UserID, l.Date, l.Calories, l.Protein, l.Carbs, l.Fats, l.Water, l.Notes)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.NutritionLog{}, ErrLogExists
		}
		return model.NutritionLog{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.NutritionLog{}, err
	}
	return r.GetByID(ctx, uint64(id), l.UserID)
}

// ExistsForDate reports whether the user already has a log on that date.
func (r *NutritionRepo) ExistsForDate(ctx context.Context, userID uint64, date string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM nutrition_logs WHERE user_id=? AND date=? LIMIT 1", userID, date).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// GetByID returns a log only if it belongs to the user.
func (r *NutritionRepo) GetByID(ctx context.Context, id, userID uint64) (model.NutritionLog, error) {
	return scanNutritionLog(r.DB.QueryRowContext(ctx,
		"SELECT "+nutritionColumns+" FROM nutrition_logs WHERE id=? AND user_id=? LIMIT 1", id, userID))
}

// List returns the user's logs ordered by date descending.
func (r *NutritionRepo) List(ctx context.Context, userID uint64, skip, limit int) ([]model.NutritionLog, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+nutritionColumns+" FROM nutrition_logs WHERE user_id=? ORDER BY date DESC LIMIT ? OFFSET ?",
		userID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.NutritionLog{}
	for rows.Next() {
		var l model.NutritionLog
		var day time.Time
		if err := rows.Scan(&l.ID, &l.UserID, &day, &l.Calories, &l.Protein, &l.Carbs, &l.Fats, &l.Water, &l.Notes); err != nil {
			return nil, err
		}
		l.Date = day.Format(dateFormat)
		out = append(out, l)
	}
	return out, rows.Err()
}

// NutritionLogChanges is the optional-field change set for updates.
type NutritionLogChanges struct {
	Calories *uint32
	Protein  *float64
	Carbs    *float64
	Fats     *float64
	Water    *float64
	Notes    *string
}

// Update applies only the fields present in the change set.
func (r *NutritionRepo) Update(ctx context.Context, id, userID uint64, ch NutritionLogChanges) (model.NutritionLog, error) {
	sets := make([]string, 0, 6)
	args := make([]interface{}, 0, 8)
	add := func(col string, v interface{}) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if ch.Calories != nil {
		add("calories", *ch.Calories)
	}
	if ch.Protein != nil {
		add("protein", *ch.Protein)
	}
	if ch.Carbs != nil {
		add("carbs", *ch.Carbs)
	}
	if ch.Fats != nil {
		add("fats", *ch.Fats)
	}
	if ch.Water != nil {
		add("water", *ch.Water)
	}
	if ch.Notes != nil {
		add("notes", *ch.Notes)
	}
	if len(sets) > 0 {
		args = append(args, id, userID)
		q := "UPDATE nutrition_logs SET " + strings.Join(sets, ", ") + " WHERE id=? AND user_id=?"
		if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
			return model.NutritionLog{}, err
		}
	}
	return r.GetByID(ctx, id, userID)
}

// Delete removes an owned log; ErrLogNotFound when nothing matched.
func (r *NutritionRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM nutrition_logs WHERE id=? AND user_id=?", id, userID)
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
