package nutrition

import (
	"fmt"
	"math"
)

// Energy per gram of each macro.
const (
	KcalPerGramProtein = 4
	KcalPerGramCarbs   = 4
	KcalPerGramFat     = 9
)

const (
	// IdentityTolerance is how far 4P + 4C + 9F may drift from Calories
	// because of integer rounding: at most one gram of slack per macro.
	IdentityTolerance = 4

	// MaxEditCalories and MaxEditGrams bound manual edits.
	MaxEditCalories = 20000
	MaxEditGrams    = 2500
)

// Field names one editable target value.
type Field string

const (
	FieldCalories Field = "calories"
	FieldProtein  Field = "protein"
	FieldCarbs    Field = "carbs"
	FieldFat      Field = "fat"
)

// ParseField returns the Field named by s.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldCalories, FieldProtein, FieldCarbs, FieldFat:
		return f, nil
	}
	return "", fmt.Errorf("field must be one of: calories, protein, carbs, fat: %w", ErrInvalidInput)
}

// MacroSplit is the share of calories coming from each macro. Shares are
// fractions in [0, 1] summing to 1.
type MacroSplit struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

func (s MacroSplit) valid() bool {
	for _, v := range []float64{s.Protein, s.Carbs, s.Fat} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return math.Abs(s.Protein+s.Carbs+s.Fat-1) < 1e-6
}

// dietSplits maps each diet to its protein/carbs/fat split.
var dietSplits = map[Diet]MacroSplit{
	DietNone:                {Protein: 0.30, Carbs: 0.45, Fat: 0.25},
	DietKeto:                {Protein: 0.25, Carbs: 0.05, Fat: 0.70},
	DietMediterranean:       {Protein: 0.20, Carbs: 0.50, Fat: 0.30},
	DietIntermittentFasting: {Protein: 0.30, Carbs: 0.45, Fat: 0.25},
	DietDukan:               {Protein: 0.40, Carbs: 0.35, Fat: 0.25},
}

// PresetSplit returns the macro split for diet d.
func PresetSplit(d Diet) (MacroSplit, error) {
	s, ok := dietSplits[d]
	if !ok {
		return MacroSplit{}, fmt.Errorf("unknown diet %q: %w", d, ErrInvalidInput)
	}
	return s, nil
}

// Targets is a daily calorie and macro target set. Split is the caloric share
// currently in effect; it starts as the diet preset and is re-anchored when a
// single macro is edited.
type Targets struct {
	Calories int        `json:"calories"`
	ProteinG int        `json:"protein_g"`
	CarbsG   int        `json:"carbs_g"`
	FatG     int        `json:"fat_g"`
	Diet     Diet       `json:"diet"`
	Split    MacroSplit `json:"split"`
}

// MacroCalories is the energy the three macro targets add up to.
func (t Targets) MacroCalories() int {
	return t.ProteinG*KcalPerGramProtein + t.CarbsG*KcalPerGramCarbs + t.FatG*KcalPerGramFat
}

// Consistent reports whether the macros add up to Calories within
// IdentityTolerance.
func (t Targets) Consistent() bool {
	d := t.MacroCalories() - t.Calories
	return d >= -IdentityTolerance && d <= IdentityTolerance
}

/* ─── Forward derivation ─────────────────────────────────────────────── */

// ComputeTargets runs the full derivation for m: base calories, then the
// diet preset's macros.
func ComputeTargets(m Metrics) (Targets, error) {
	kcal, err := ComputeBaseCalories(m)
	if err != nil {
		return Targets{}, err
	}
	return DeriveMacros(kcal, m.Diet)
}

// DeriveMacros splits calories across the macros using diet d's preset.
// Carbs absorb the rounding so the caloric identity holds.
func DeriveMacros(calories int, d Diet) (Targets, error) {
	if err := checkCalories(calories); err != nil {
		return Targets{}, err
	}
	split, err := PresetSplit(d)
	if err != nil {
		return Targets{}, err
	}
	return applySplit(calories, d, split), nil
}

// applySplit converts a split to whole grams. Protein and fat are rounded
// independently and carbs take whatever energy is left.
func applySplit(calories int, d Diet, split MacroSplit) Targets {
	c := float64(calories)
	protein := int(math.Round(c * split.Protein / KcalPerGramProtein))
	fat := int(math.Round(c * split.Fat / KcalPerGramFat))
	rest := calories - protein*KcalPerGramProtein - fat*KcalPerGramFat

	// Carbs cannot go negative, so when protein and fat both rounded up on a
	// carb-free split, give the excess back from fat first, then protein.
	for rest < -2 && fat > 0 {
		fat--
		rest += KcalPerGramFat
	}
	for rest < -2 && protein > 0 {
		protein--
		rest += KcalPerGramProtein
	}

	carbs := 0
	if rest > 0 {
		carbs = int(math.Round(float64(rest) / KcalPerGramCarbs))
	}
	return Targets{
		Calories: calories,
		ProteinG: protein,
		CarbsG:   carbs,
		FatG:     fat,
		Diet:     d,
		Split:    split,
	}
}

/* ─── Reconciliation ─────────────────────────────────────────────────── */

// RecalculateFromCalories re-derives all three macros for a new calorie
// target from the split in effect on prev, never from prev's gram values.
func RecalculateFromCalories(prev Targets, calories int) (Targets, error) {
	if err := checkCalories(calories); err != nil {
		return Targets{}, err
	}
	split := prev.Split
	if !split.valid() {
		var err error
		if split, err = PresetSplit(prev.Diet); err != nil {
			return Targets{}, err
		}
	}
	if !prev.Diet.Valid() {
		return Targets{}, fmt.Errorf("unknown diet %q: %w", prev.Diet, ErrInvalidInput)
	}
	return applySplit(calories, prev.Diet, split), nil
}

// RecalculateFromProtein holds protein at grams and refills the rest of the
// previous calorie budget with carbs and fat.
func RecalculateFromProtein(prev Targets, grams int) (Targets, error) {
	return recalculateFromMacro(prev, FieldProtein, grams)
}

// RecalculateFromCarbs holds carbs at grams and refills the rest of the
// previous calorie budget with protein and fat.
func RecalculateFromCarbs(prev Targets, grams int) (Targets, error) {
	return recalculateFromMacro(prev, FieldCarbs, grams)
}

// RecalculateFromFats holds fat at grams and refills the rest of the previous
// calorie budget with protein and carbs.
func RecalculateFromFats(prev Targets, grams int) (Targets, error) {
	return recalculateFromMacro(prev, FieldFat, grams)
}

// macroKcal is energy per gram indexed like macroShares.
var macroKcal = [3]float64{KcalPerGramProtein, KcalPerGramCarbs, KcalPerGramFat}

func macroIndex(f Field) int {
	switch f {
	case FieldProtein:
		return 0
	case FieldCarbs:
		return 1
	}
	return 2
}

func (s MacroSplit) shares() [3]float64 { return [3]float64{s.Protein, s.Carbs, s.Fat} }

// recalculateFromMacro fixes one macro and splits the remaining budget
// between the other two in the ratio of the diet preset. The ratio always
// comes from the preset, so a sequence of edits never compounds earlier ad hoc
// edits. Calories becomes the exact sum of the three macros.
func recalculateFromMacro(prev Targets, field Field, grams int) (Targets, error) {
	if grams < 0 || grams > MaxEditGrams {
		return Targets{}, fmt.Errorf("%s must be between 0 and %d g, got %d: %w", field, MaxEditGrams, grams, ErrInvalidInput)
	}
	if prev.Calories < 0 {
		return Targets{}, fmt.Errorf("previous calories must not be negative, got %d: %w", prev.Calories, ErrInvalidInput)
	}
	preset, err := PresetSplit(prev.Diet)
	if err != nil {
		return Targets{}, err
	}

	held := macroIndex(field)
	shares := preset.shares()
	var g [3]int
	g[held] = grams

	remaining := float64(prev.Calories) - float64(grams)*macroKcal[held]
	if remaining < 0 {
		remaining = 0
	}
	var otherShare float64
	for i := range shares {
		if i != held {
			otherShare += shares[i]
		}
	}
	for i := range shares {
		if i == held || otherShare == 0 {
			continue
		}
		g[i] = int(math.Round(remaining * shares[i] / otherShare / macroKcal[i]))
	}

	t := Targets{ProteinG: g[0], CarbsG: g[1], FatG: g[2], Diet: prev.Diet}
	t.Calories = t.MacroCalories()
	// The result must stay editable through the calorie path.
	if t.Calories > MaxEditCalories {
		return Targets{}, fmt.Errorf("%s of %d g gives %d kcal, above %d: %w", field, grams, t.Calories, MaxEditCalories, ErrInvalidInput)
	}
	t.Split = realizedSplit(t, preset)
	return t, nil
}

// realizedSplit is the caloric share each macro of t actually contributes,
// or fallback when t carries no energy.
func realizedSplit(t Targets, fallback MacroSplit) MacroSplit {
	total := float64(t.MacroCalories())
	if total <= 0 {
		return fallback
	}
	return MacroSplit{
		Protein: float64(t.ProteinG*KcalPerGramProtein) / total,
		Carbs:   float64(t.CarbsG*KcalPerGramCarbs) / total,
		Fat:     float64(t.FatG*KcalPerGramFat) / total,
	}
}

// Edit applies a reconciling edit of one field.
func Edit(prev Targets, field Field, value int) (Targets, error) {
	switch field {
	case FieldCalories:
		return RecalculateFromCalories(prev, value)
	case FieldProtein:
		return RecalculateFromProtein(prev, value)
	case FieldCarbs:
		return RecalculateFromCarbs(prev, value)
	case FieldFat:
		return RecalculateFromFats(prev, value)
	}
	return Targets{}, fmt.Errorf("unknown field %q: %w", field, ErrInvalidInput)
}

// SetManual overwrites one field without touching the others. It backs the
// "auto-calculate off" mode, so the result may break the caloric identity.
func SetManual(prev Targets, field Field, value int) (Targets, error) {
	t := prev
	switch field {
	case FieldCalories:
		if err := checkCalories(value); err != nil {
			return Targets{}, err
		}
		t.Calories = value
		return t, nil
	case FieldProtein, FieldCarbs, FieldFat:
		if value < 0 || value > MaxEditGrams {
			return Targets{}, fmt.Errorf("%s must be between 0 and %d g, got %d: %w", field, MaxEditGrams, value, ErrInvalidInput)
		}
	default:
		return Targets{}, fmt.Errorf("unknown field %q: %w", field, ErrInvalidInput)
	}
	switch field {
	case FieldProtein:
		t.ProteinG = value
	case FieldCarbs:
		t.CarbsG = value
	case FieldFat:
		t.FatG = value
	}
	return t, nil
}

// ChangeDiet switches prev to diet d. The split resets to d's preset so the
// next calorie edit uses the new ratios; the gram targets are left alone.
func ChangeDiet(prev Targets, d Diet) (Targets, error) {
	split, err := PresetSplit(d)
	if err != nil {
		return Targets{}, err
	}
	t := prev
	t.Diet = d
	t.Split = split
	return t, nil
}

// Revert discards ad hoc macro edits: the macros are re-derived from t's
// calories with the diet preset split.
func Revert(t Targets) (Targets, error) {
	return DeriveMacros(t.Calories, t.Diet)
}

func checkCalories(calories int) error {
	if calories <= 0 || calories > MaxEditCalories {
		return fmt.Errorf("calories must be between 1 and %d, got %d: %w", MaxEditCalories, calories, ErrInvalidInput)
	}
	return nil
}
