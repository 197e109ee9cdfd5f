// Package nutrition derives daily calorie and macro targets from body metrics
// and reconciles those targets when a single field is edited by hand.
//
// Every function here is pure: inputs are copied, outputs are fresh values and
// nothing is cached between calls, so the package is safe for concurrent use.
package nutrition

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is wrapped by every error the package returns. Callers can
// test for it with errors.Is to map rejections to a 400.
var ErrInvalidInput = errors.New("invalid input")

/* ─── Enums ──────────────────────────────────────────────────────────── */

// Sex selects the Mifflin-St Jeor constant.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// sexOffsets is the per-sex BMR constant. "other" uses the mean of the two.
var sexOffsets = map[Sex]float64{
	SexMale:   5,
	SexFemale: -161,
	SexOther:  -78,
}

// ActivityLevel is ordinal: later levels burn more.
type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightly_active"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityActive           ActivityLevel = "active"
	ActivityVeryActive       ActivityLevel = "very_active"
)

// ActivityLevels lists the levels in increasing order.
var ActivityLevels = []ActivityLevel{
	ActivitySedentary,
	ActivityLightlyActive,
	ActivityModeratelyActive,
	ActivityActive,
	ActivityVeryActive,
}

// activityMultipliers maps each level to its TDEE multiplier. This is the
// single source of truth for valid activity levels.
var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:        1.2,
	ActivityLightlyActive:    1.375,
	ActivityModeratelyActive: 1.55,
	ActivityActive:           1.725,
	ActivityVeryActive:       1.9,
}

// stepsTargets is the suggested daily step count per activity level.
var stepsTargets = map[ActivityLevel]int{
	ActivitySedentary:        8000,
	ActivityLightlyActive:    10000,
	ActivityModeratelyActive: 12000,
	ActivityActive:           15000,
	ActivityVeryActive:       15000,
}

// Goal adjusts maintenance calories up or down.
type Goal string

const (
	GoalLoseWeight     Goal = "lose_weight"
	GoalMaintainWeight Goal = "maintain_weight"
	GoalGainMuscle     Goal = "gain_muscle"
)

// goalFactors is applied to TDEE. Adjustments stay within ±25% of baseline.
var goalFactors = map[Goal]float64{
	GoalLoseWeight:     0.80,
	GoalMaintainWeight: 1.00,
	GoalGainMuscle:     1.10,
}

// Diet names a macro percentage split preset.
type Diet string

const (
	DietNone                Diet = "none"
	DietKeto                Diet = "keto"
	DietMediterranean       Diet = "mediterranean"
	DietIntermittentFasting Diet = "intermittent_fasting"
	DietDukan               Diet = "dukan"
)

func (s Sex) Valid() bool           { _, ok := sexOffsets[s]; return ok }
func (a ActivityLevel) Valid() bool { _, ok := activityMultipliers[a]; return ok }
func (g Goal) Valid() bool          { _, ok := goalFactors[g]; return ok }
func (d Diet) Valid() bool          { _, ok := dietSplits[d]; return ok }

// ParseSex returns the Sex named by s.
func ParseSex(s string) (Sex, error) {
	if v := Sex(s); v.Valid() {
		return v, nil
	}
	return "", fmt.Errorf("sex must be one of: male, female, other: %w", ErrInvalidInput)
}

// ParseActivityLevel returns the ActivityLevel named by s.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	if v := ActivityLevel(s); v.Valid() {
		return v, nil
	}
	return "", fmt.Errorf("activity_level must be one of: sedentary, lightly_active, moderately_active, active, very_active: %w", ErrInvalidInput)
}

// ParseGoal returns the Goal named by s.
func ParseGoal(s string) (Goal, error) {
	if v := Goal(s); v.Valid() {
		return v, nil
	}
	return "", fmt.Errorf("goal must be one of: lose_weight, maintain_weight, gain_muscle: %w", ErrInvalidInput)
}

// ParseDiet returns the Diet named by s.
func ParseDiet(s string) (Diet, error) {
	if v := Diet(s); v.Valid() {
		return v, nil
	}
	return "", fmt.Errorf("diet must be one of: none, keto, mediterranean, intermittent_fasting, dukan: %w", ErrInvalidInput)
}

/* ─── Metrics ────────────────────────────────────────────────────────── */

// Metrics are the body and preference inputs the targets are derived from.
type Metrics struct {
	Sex            Sex           `json:"sex"`
	AgeYears       int           `json:"age_years"`
	HeightCM       float64       `json:"height_cm"`
	WeightKG       float64       `json:"weight_kg"`
	TargetWeightKG float64       `json:"target_weight_kg"`
	Activity       ActivityLevel `json:"activity_level"`
	Goal           Goal          `json:"goal"`
	Diet           Diet          `json:"diet"`
}

// Validate reports the first field that cannot feed the formulas.
// TargetWeightKG is optional (zero means unset) but must not be negative.
func (m Metrics) Validate() error {
	switch {
	case !m.Sex.Valid():
		return fmt.Errorf("unknown sex %q: %w", m.Sex, ErrInvalidInput)
	case m.AgeYears <= 0 || m.AgeYears > 130:
		return fmt.Errorf("age must be between 1 and 130, got %d: %w", m.AgeYears, ErrInvalidInput)
	case !(m.HeightCM > 0):
		return fmt.Errorf("height_cm must be positive, got %v: %w", m.HeightCM, ErrInvalidInput)
	case !(m.WeightKG > 0):
		return fmt.Errorf("weight_kg must be positive, got %v: %w", m.WeightKG, ErrInvalidInput)
	case m.TargetWeightKG < 0 || math.IsNaN(m.TargetWeightKG):
		return fmt.Errorf("target_weight_kg must not be negative, got %v: %w", m.TargetWeightKG, ErrInvalidInput)
	case !m.Activity.Valid():
		return fmt.Errorf("unknown activity level %q: %w", m.Activity, ErrInvalidInput)
	case !m.Goal.Valid():
		return fmt.Errorf("unknown goal %q: %w", m.Goal, ErrInvalidInput)
	case !m.Diet.Valid():
		return fmt.Errorf("unknown diet %q: %w", m.Diet, ErrInvalidInput)
	}
	return nil
}

// BMI returns weight / height² rounded to one decimal. Zero for invalid heights.
func BMI(m Metrics) float64 {
	if !(m.HeightCM > 0) {
		return 0
	}
	meters := m.HeightCM / 100
	return math.Round(m.WeightKG/(meters*meters)*10) / 10
}

// WaterTargetML suggests about 33 ml of water per kg of body weight,
// rounded to the nearest 100 ml.
func WaterTargetML(m Metrics) int {
	if !(m.WeightKG > 0) {
		return 0
	}
	return int(math.Round(m.WeightKG*33/100)) * 100
}

// StepsTarget is the suggested daily step count for the activity level, or 0
// for an unknown level.
func StepsTarget(a ActivityLevel) int {
	return stepsTargets[a]
}
