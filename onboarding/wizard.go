// Package onboarding walks a new user through the profile screens one at a
// time and turns the collected answers into nutrition metrics and targets.
package onboarding

import (
	"errors"
	"fmt"

	"lg/nutrition-go-api/nutrition"
)

var (
	// ErrWrongStep is returned when answers are submitted for a screen other
	// than the current one.
	ErrWrongStep = errors.New("answers do not belong to the current step")
	// ErrIncomplete is returned when moving past a screen whose fields are
	// missing, or completing before every screen is answered.
	ErrIncomplete = errors.New("step is incomplete")
)

// Step is one onboarding screen.
type Step string

const (
	StepGender       Step = "gender"
	StepAge          Step = "age"
	StepHeightWeight Step = "height_weight"
	StepGoal         Step = "goal"
	StepTargetWeight Step = "target_weight"
	StepActivity     Step = "activity"
	StepDiet         Step = "diet"
	StepSummary      Step = "summary"
)

// Steps is the screen order.
var Steps = []Step{
	StepGender,
	StepAge,
	StepHeightWeight,
	StepGoal,
	StepTargetWeight,
	StepActivity,
	StepDiet,
	StepSummary,
}

// ParseStep returns the Step named by s.
func ParseStep(s string) (Step, error) {
	for _, step := range Steps {
		if string(step) == s {
			return step, nil
		}
	}
	return "", fmt.Errorf("unknown onboarding step %q: %w", s, nutrition.ErrInvalidInput)
}

// Answers holds whatever the user has entered so far. Nil means unanswered.
type Answers struct {
	Sex            *nutrition.Sex           `json:"sex,omitempty"`
	AgeYears       *int                     `json:"age_years,omitempty"`
	HeightCM       *float64                 `json:"height_cm,omitempty"`
	WeightKG       *float64                 `json:"weight_kg,omitempty"`
	Goal           *nutrition.Goal          `json:"goal,omitempty"`
	TargetWeightKG *float64                 `json:"target_weight_kg,omitempty"`
	Activity       *nutrition.ActivityLevel `json:"activity_level,omitempty"`
	Diet           *nutrition.Diet          `json:"diet,omitempty"`
}

// Wizard is the onboarding state. It is a plain value so callers can persist
// it as JSON between requests.
type Wizard struct {
	Step    Step    `json:"step"`
	Answers Answers `json:"answers"`
}

// New returns a wizard positioned on the first screen.
func New() Wizard {
	return Wizard{Step: StepGender}
}

func (w Wizard) index() int {
	for i, s := range Steps {
		if s == w.Step {
			return i
		}
	}
	return 0
}

// Apply validates and records the answers for step, which must be the
// current step. Fields belonging to other screens are ignored.
func (w *Wizard) Apply(step Step, a Answers) error {
	if step != w.Step {
		return fmt.Errorf("%w: got %s, current %s", ErrWrongStep, step, w.Step)
	}
	switch step {
	case StepGender:
		if a.Sex == nil || !a.Sex.Valid() {
			return fmt.Errorf("sex must be one of: male, female, other: %w", nutrition.ErrInvalidInput)
		}
		w.Answers.Sex = a.Sex
	case StepAge:
		if a.AgeYears == nil || *a.AgeYears <= 0 || *a.AgeYears > 130 {
			return fmt.Errorf("age must be between 1 and 130: %w", nutrition.ErrInvalidInput)
		}
		w.Answers.AgeYears = a.AgeYears
	case StepHeightWeight:
		if a.HeightCM == nil || !(*a.HeightCM > 0) {
			return fmt.Errorf("height_cm must be positive: %w", nutrition.ErrInvalidInput)
		}
		if a.WeightKG == nil || !(*a.WeightKG > 0) {
			return fmt.Errorf("weight_kg must be positive: %w", nutrition.ErrInvalidInput)
		}
		w.Answers.HeightCM, w.Answers.WeightKG = a.HeightCM, a.WeightKG
	case StepGoal:
		if a.Goal == nil || !a.Goal.Valid() {
			return fmt.Errorf("goal must be one of: lose_weight, maintain_weight, gain_muscle: %w", nutrition.ErrInvalidInput)
		}
		w.Answers.Goal = a.Goal
	case StepTargetWeight:
		if a.TargetWeightKG == nil || !(*a.TargetWeightKG > 0) {
			return fmt.Errorf("target_weight_kg must be positive: %w", nutrition.ErrInvalidInput)
		}
		w.Answers.TargetWeightKG = a.TargetWeightKG
	case StepActivity:
		if a.Activity == nil || !a.Activity.Valid() {
			return fmt.Errorf("unknown activity level: %w", nutrition.ErrInvalidInput)
		}
		w.Answers.Activity = a.Activity
	case StepDiet:
		if a.Diet == nil || !a.Diet.Valid() {
			return fmt.Errorf("unknown diet: %w", nutrition.ErrInvalidInput)
		}
		w.Answers.Diet = a.Diet
	case StepSummary:
		// Nothing to enter on the summary screen.
	}
	return nil
}

// answered reports whether the fields of step have been recorded.
func (a Answers) answered(step Step) bool {
	switch step {
	case StepGender:
		return a.Sex != nil
	case StepAge:
		return a.AgeYears != nil
	case StepHeightWeight:
		return a.HeightCM != nil && a.WeightKG != nil
	case StepGoal:
		return a.Goal != nil
	case StepTargetWeight:
		return a.TargetWeightKG != nil
	case StepActivity:
		return a.Activity != nil
	case StepDiet:
		return a.Diet != nil
	}
	return true
}

// Next advances to the following screen once the current one is answered.
// On the summary screen it does nothing.
func (w *Wizard) Next() error {
	if !w.Answers.answered(w.Step) {
		return fmt.Errorf("%w: %s", ErrIncomplete, w.Step)
	}
	if i := w.index(); i < len(Steps)-1 {
		w.Step = Steps[i+1]
	}
	return nil
}

// Back returns to the previous screen, keeping every answer.
func (w *Wizard) Back() {
	if i := w.index(); i > 0 {
		w.Step = Steps[i-1]
	}
}

// Metrics assembles the answers into validated metrics.
func (w Wizard) Metrics() (nutrition.Metrics, error) {
	for _, s := range Steps {
		if !w.Answers.answered(s) {
			return nutrition.Metrics{}, fmt.Errorf("%w: %s", ErrIncomplete, s)
		}
	}
	a := w.Answers
	m := nutrition.Metrics{
		Sex:            *a.Sex,
		AgeYears:       *a.AgeYears,
		HeightCM:       *a.HeightCM,
		WeightKG:       *a.WeightKG,
		TargetWeightKG: *a.TargetWeightKG,
		Activity:       *a.Activity,
		Goal:           *a.Goal,
		Diet:           *a.Diet,
	}
	if err := m.Validate(); err != nil {
		return nutrition.Metrics{}, err
	}
	return m, nil
}

// Complete finishes onboarding from the summary screen and derives the
// initial targets.
func (w Wizard) Complete() (nutrition.Metrics, nutrition.Targets, error) {
	if w.Step != StepSummary {
		return nutrition.Metrics{}, nutrition.Targets{}, fmt.Errorf("%w: still on %s", ErrIncomplete, w.Step)
	}
	m, err := w.Metrics()
	if err != nil {
		return nutrition.Metrics{}, nutrition.Targets{}, err
	}
	t, err := nutrition.ComputeTargets(m)
	if err != nil {
		return nutrition.Metrics{}, nutrition.Targets{}, err
	}
	return m, t, nil
}
