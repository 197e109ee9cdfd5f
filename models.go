package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil
// so that *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// profile maps to the profiles table: body metrics (nullable until onboarding
// fills them in), the current nutrition targets and the onboarding state.
// Enum columns hold values already checked by the nutrition package parsers.
type profile struct {
	UserID         int      `json:"user_id"          db:"user_id"`
	Sex            *string  `json:"sex"              db:"sex"`
	AgeYears       *int     `json:"age_years"        db:"age_years"`
	HeightCM       *float64 `json:"height_cm"        db:"height_cm"`
	WeightKG       *float64 `json:"weight_kg"        db:"weight_kg"`
	TargetWeightKG *float64 `json:"target_weight_kg" db:"target_weight_kg"`
	ActivityLevel  *string  `json:"activity_level"   db:"activity_level"`
	Goal           *string  `json:"goal"             db:"goal"`
	Diet           string   `json:"diet"             db:"diet"`

	Calories     int     `json:"calories"      db:"calories"`
	ProteinG     int     `json:"protein_g"     db:"protein_g"`
	CarbsG       int     `json:"carbs_g"       db:"carbs_g"`
	FatG         int     `json:"fat_g"         db:"fat_g"`
	SplitProtein float64 `json:"split_protein" db:"split_protein"`
	SplitCarbs   float64 `json:"split_carbs"   db:"split_carbs"`
	SplitFat     float64 `json:"split_fat"     db:"split_fat"`

	// InitialCalories is the calorie target computed when onboarding
	// completed; revert re-derives from it.
	InitialCalories    *int       `json:"initial_calories"    db:"initial_calories"`
	AutoCalculate      bool       `json:"auto_calculate"      db:"auto_calculate"`
	OnboardingState    []byte     `json:"-"                   db:"onboarding_state"`
	OnboardingComplete bool       `json:"onboarding_complete" db:"onboarding_complete"`
	UpdatedAt          *time.Time `json:"updated_at"          db:"updated_at"`

	// Computed fields, populated server-side from the metrics. Not stored in DB.
	Computed *profileComputed `json:"computed,omitempty" db:"-"`
}

// profileComputed holds values derived from a complete set of metrics.
type profileComputed struct {
	BMR           int     `json:"bmr"`
	TDEE          int     `json:"tdee"`
	BMI           float64 `json:"bmi"`
	BaseCalories  int     `json:"base_calories"`
	WaterTargetML int     `json:"water_target_ml"`
	StepsTarget   int     `json:"steps_target"`
}

// intakeItem maps to intake_items. Nullable numeric fields use pointers
// so pgx can scan NULLs and JSON omits them naturally.
type intakeItem struct {
	ID        int        `json:"id" db:"id"`
	UserID    int        `json:"user_id" db:"user_id"`
	Date      DateOnly   `json:"date" db:"date"`
	ItemName  string     `json:"item_name" db:"item_name"`
	Meal      string     `json:"meal" db:"meal"`
	Qty       *float64   `json:"qty" db:"qty"`
	Uom       *string    `json:"uom" db:"uom"`
	Calories  int        `json:"calories" db:"calories"`
	ProteinG  *float64   `json:"protein_g" db:"protein_g"`
	CarbsG    *float64   `json:"carbs_g" db:"carbs_g"`
	FatG      *float64   `json:"fat_g" db:"fat_g"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// weightEntry maps to weight_log.
type weightEntry struct {
	ID        int        `json:"id" db:"id"`
	UserID    int        `json:"user_id" db:"user_id"`
	Date      DateOnly   `json:"date" db:"date"`
	WeightKG  float64    `json:"weight_kg" db:"weight_kg"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// intakeDayDBRow is the shape of each row returned by the week-summary GROUP BY query.
// Used only for scanning; the final response uses intakeDaySummary.
type intakeDayDBRow struct {
	Date     DateOnly `db:"date"`
	Calories int      `db:"calories"`
	ProteinG float64  `db:"protein_g"`
	CarbsG   float64  `db:"carbs_g"`
	FatG     float64  `db:"fat_g"`
}

// macroTotals is a calories + grams tuple used for consumed and remaining amounts.
type macroTotals struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// intakeDaySummary is one day's entry in the GET /intake/week-summary response.
// Days with no logged items have HasData=false and zero consumed fields.
type intakeDaySummary struct {
	Date      DateOnly    `json:"date"`
	Targets   macroTotals `json:"targets"`
	Consumed  macroTotals `json:"consumed"`
	Remaining macroTotals `json:"remaining"`
	HasData   bool        `json:"has_data"`
}

// dailySummary is the response shape for GET /intake/daily.
type dailySummary struct {
	Date      string       `json:"date"`
	Targets   macroTotals  `json:"targets"`
	Consumed  macroTotals  `json:"consumed"`
	Remaining macroTotals  `json:"remaining"`
	Items     []intakeItem `json:"items"`
}

// createIntakeItemRequest is the request body for POST /api/intake/items.
type createIntakeItemRequest struct {
	Date     string   `json:"date"`
	ItemName string   `json:"item_name"`
	Meal     string   `json:"meal"`
	Qty      *float64 `json:"qty"`
	Uom      *string  `json:"uom"`
	Calories int      `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
}

// patchProfileRequest is the request body for PATCH /api/profile.
// All fields are pointers; only non-nil fields get written to the database.
type patchProfileRequest struct {
	Sex            *string  `json:"sex"`
	AgeYears       *int     `json:"age_years"`
	HeightCM       *float64 `json:"height_cm"`
	WeightKG       *float64 `json:"weight_kg"`
	TargetWeightKG *float64 `json:"target_weight_kg"`
	ActivityLevel  *string  `json:"activity_level"`
	Goal           *string  `json:"goal"`
	Diet           *string  `json:"diet"`
	AutoCalculate  *bool    `json:"auto_calculate"`
}

// editTargetRequest is the request body for PUT /api/targets.
type editTargetRequest struct {
	Field string `json:"field"`
	Value *int   `json:"value"`
}
