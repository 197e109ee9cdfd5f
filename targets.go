package main

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/nutrition-go-api/nutrition"
)

/* ─── Profile ↔ engine conversion ────────────────────────────────────── */

// metrics converts the stored profile into engine input.
// Returns ok=false when any required field is nil or fails validation.
func (p *profile) metrics() (nutrition.Metrics, bool) {
	if p.Sex == nil || p.AgeYears == nil || p.HeightCM == nil ||
		p.WeightKG == nil || p.ActivityLevel == nil || p.Goal == nil {
		return nutrition.Metrics{}, false
	}
	m := nutrition.Metrics{
		Sex:      nutrition.Sex(*p.Sex),
		AgeYears: *p.AgeYears,
		HeightCM: *p.HeightCM,
		WeightKG: *p.WeightKG,
		Activity: nutrition.ActivityLevel(*p.ActivityLevel),
		Goal:     nutrition.Goal(*p.Goal),
		Diet:     nutrition.Diet(p.Diet),
	}
	if p.TargetWeightKG != nil {
		m.TargetWeightKG = *p.TargetWeightKG
	}
	if m.Validate() != nil {
		return nutrition.Metrics{}, false
	}
	return m, true
}

// targets returns the stored target set.
func (p *profile) targets() nutrition.Targets {
	return nutrition.Targets{
		Calories: p.Calories,
		ProteinG: p.ProteinG,
		CarbsG:   p.CarbsG,
		FatG:     p.FatG,
		Diet:     nutrition.Diet(p.Diet),
		Split: nutrition.MacroSplit{
			Protein: p.SplitProtein,
			Carbs:   p.SplitCarbs,
			Fat:     p.SplitFat,
		},
	}
}

// populateComputed fills the computed-only fields on p from its metrics.
// No-ops if any required metric is missing.
func populateComputed(p *profile) {
	m, ok := p.metrics()
	if !ok {
		p.Computed = nil
		return
	}
	base, err := nutrition.ComputeBaseCalories(m)
	if err != nil {
		p.Computed = nil
		return
	}
	p.Computed = &profileComputed{
		BMR:           int(math.Round(nutrition.BMR(m))),
		TDEE:          int(math.Round(nutrition.TDEE(m))),
		BMI:           nutrition.BMI(m),
		BaseCalories:  base,
		WaterTargetML: nutrition.WaterTargetML(m),
		StepsTarget:   nutrition.StepsTarget(m.Activity),
	}
}

// targetArgs returns the named args for the target columns of t.
func targetArgs(t nutrition.Targets) pgx.NamedArgs {
	return pgx.NamedArgs{
		"calories":     t.Calories,
		"proteinG":     t.ProteinG,
		"carbsG":       t.CarbsG,
		"fatG":         t.FatG,
		"splitProtein": t.Split.Protein,
		"splitCarbs":   t.Split.Carbs,
		"splitFat":     t.Split.Fat,
	}
}

// targetSetClause writes every target column at once so a stored target set
// is never half updated.
const targetSetClause = `calories = @calories, protein_g = @proteinG, carbs_g = @carbsG, fat_g = @fatG,
	split_protein = @splitProtein, split_carbs = @splitCarbs, split_fat = @splitFat, updated_at = now()`

/* ─── Database helpers ────────────────────────────────────────────────── */

// loadProfile returns the profile row for userID.
func (h *Handler) loadProfile(c *gin.Context, userID int) (profile, error) {
	return queryOne[profile](h.db, c,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
}

// saveTargets persists t as the user's current target set.
func (h *Handler) saveTargets(c *gin.Context, userID int, t nutrition.Targets) (profile, error) {
	args := targetArgs(t)
	args["userID"] = userID
	return queryOne[profile](h.db, c,
		"UPDATE profiles SET "+targetSetClause+" WHERE user_id = @userID RETURNING *", args)
}

// recomputeTargets re-derives targets from p's metrics and saves them.
// Returns ok=false (and p unchanged) when the metrics are incomplete.
func (h *Handler) recomputeTargets(c *gin.Context, p profile) (profile, bool, error) {
	m, ok := p.metrics()
	if !ok {
		return p, false, nil
	}
	t, err := nutrition.ComputeTargets(m)
	if err != nil {
		return p, false, err
	}
	updated, err := h.saveTargets(c, p.UserID, t)
	if err != nil {
		return p, false, err
	}
	return updated, true, nil
}

// currentMonday returns the Monday of the current week at midnight UTC.
// Uses AddDate to safely handle month/year boundaries. Direct day subtraction
// can produce day=0 or negative, which time.Date normalizes but is confusing.
func currentMonday() time.Time {
	now := time.Now().UTC()
	weekday := int(now.Weekday()) // 0=Sun
	if weekday == 0 {
		weekday = 7 // treat Sunday as day 7 so Mon=1..Sun=7
	}
	daysBack := weekday - 1
	return now.AddDate(0, 0, -daysBack).Truncate(24 * time.Hour)
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// recalculateTargets re-derives the full target set from the stored metrics.
// POST /api/targets/recalculate. Returns 409 when the metrics are incomplete.
func (h *Handler) recalculateTargets(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := h.loadProfile(c, userID)
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	updated, ok, err := h.recomputeTargets(c, p)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save targets")
		return
	}
	if !ok {
		apiError(c, http.StatusConflict, "profile metrics are incomplete")
		return
	}

	populateComputed(&updated)
	c.JSON(http.StatusOK, updated)
}

// editTarget applies a manual edit of one target field.
// PUT /api/targets. Body: { "field": "calories|protein|carbs|fat", "value": N }.
// With auto_calculate on, the other fields are reconciled so the macros keep
// adding up to the calorie target; with it off only the edited field changes.
func (h *Handler) editTarget(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body editTargetRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	field, err := nutrition.ParseField(body.Field)
	if err != nil {
		apiError(c, http.StatusBadRequest, "field must be one of: calories, protein, carbs, fat")
		return
	}
	if body.Value == nil {
		apiError(c, http.StatusBadRequest, "value is required")
		return
	}

	p, err := h.loadProfile(c, userID)
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	var t nutrition.Targets
	if p.AutoCalculate {
		t, err = nutrition.Edit(p.targets(), field, *body.Value)
	} else {
		t, err = nutrition.SetManual(p.targets(), field, *body.Value)
	}
	if err != nil {
		if errors.Is(err, nutrition.ErrInvalidInput) {
			apiError(c, http.StatusBadRequest, err.Error())
		} else {
			apiError(c, http.StatusInternalServerError, "failed to recalculate targets")
		}
		return
	}

	updated, err := h.saveTargets(c, userID, t)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save targets")
		return
	}

	populateComputed(&updated)
	c.JSON(http.StatusOK, updated)
}

// revertTargets discards manual edits and re-derives the macros from the
// calorie target computed at the end of onboarding, using the diet preset.
// POST /api/targets/revert. Falls back to the current calories before onboarding.
func (h *Handler) revertTargets(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := h.loadProfile(c, userID)
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	base := p.targets()
	if p.InitialCalories != nil {
		base.Calories = *p.InitialCalories
	}
	t, err := nutrition.Revert(base)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.saveTargets(c, userID, t)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save targets")
		return
	}

	populateComputed(&updated)
	c.JSON(http.StatusOK, updated)
}
