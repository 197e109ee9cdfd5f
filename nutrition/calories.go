package nutrition

import "math"

const (
	// MinCalories is the floor every computed calorie target is clamped to.
	MinCalories = 1200
	// MaxCalories is the ceiling every computed calorie target is clamped to.
	MaxCalories = 5000

	// calorieStep is the granularity computed targets are rounded to.
	calorieStep = 50
)

// BMR returns the Mifflin-St Jeor basal metabolic rate in kcal.
// Assumes m has passed Validate.
func BMR(m Metrics) float64 {
	return 10*m.WeightKG + 6.25*m.HeightCM - 5*float64(m.AgeYears) + sexOffsets[m.Sex]
}

// TDEE returns BMR scaled by the activity multiplier.
func TDEE(m Metrics) float64 {
	return BMR(m) * activityMultipliers[m.Activity]
}

// ComputeBaseCalories returns the daily calorie target for m: TDEE adjusted
// for the goal, rounded to the nearest 50 kcal and clamped to
// [MinCalories, MaxCalories]. Clamping is silent.
func ComputeBaseCalories(m Metrics) (int, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	kcal := TDEE(m) * goalFactors[m.Goal]
	rounded := int(math.Round(kcal/calorieStep)) * calorieStep
	return clampCalories(rounded), nil
}

func clampCalories(kcal int) int {
	if kcal < MinCalories {
		return MinCalories
	}
	if kcal > MaxCalories {
		return MaxCalories
	}
	return kcal
}
