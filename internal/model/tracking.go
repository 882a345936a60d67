package model

// SleepLog records one night of sleep. At most one log may exist per
// (user, date); the pair is covered by a unique index so concurrent
// creates cannot slip a duplicate past the application check.
type SleepLog struct {
	ID      uint64  `json:"id"`      // sleep_logs.id
	UserID  uint64  `json:"user_id"` // sleep_logs.user_id
	Date    string  `json:"date"`    // sleep_logs.date, formatted YYYY-MM-DD
	Hours   float64 `json:"hours"`   // sleep_logs.hours (0-24)
	Quality int     `json:"quality"` // sleep_logs.quality (1-5)
	Notes   *string `json:"notes"`   // sleep_logs.notes (nullable)
}

// NutritionLog records one day of nutrition intake, with the same
// one-per-(user, date) rule as SleepLog.
type NutritionLog struct {
	ID       uint64   `json:"id"`       // nutrition_logs.id
	UserID   uint64   `json:"user_id"`  // nutrition_logs.user_id
	Date     string   `json:"date"`     // nutrition_logs.date, formatted YYYY-MM-DD
	Calories uint32   `json:"calories"` // nutrition_logs.calories
	Protein  float64  `json:"protein"`  // nutrition_logs.protein grams
	Carbs    *float64 `json:"carbs"`    // nutrition_logs.carbs grams (nullable)
	Fats     *float64 `json:"fats"`     // nutrition_logs.fats grams (nullable)
	Water    *float64 `json:"water"`    // nutrition_logs.water liters (nullable)
	Notes    *string  `json:"notes"`    // nutrition_logs.notes (nullable)
}
