package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/nutrition-go-api/nutrition"
	"lg/nutrition-go-api/onboarding"
)

// onboardingResponse is the response shape for every /api/onboarding route.
type onboardingResponse struct {
	Step     onboarding.Step    `json:"step"`
	Steps    []onboarding.Step  `json:"steps"`
	Answers  onboarding.Answers `json:"answers"`
	Complete bool               `json:"complete"`
}

func newOnboardingResponse(w onboarding.Wizard, complete bool) onboardingResponse {
	return onboardingResponse{
		Step:     w.Step,
		Steps:    onboarding.Steps,
		Answers:  w.Answers,
		Complete: complete,
	}
}

// loadWizard decodes the stored wizard state. A profile that never started
// onboarding gets a fresh wizard on the first screen.
func loadWizard(p *profile) (onboarding.Wizard, error) {
	if len(p.OnboardingState) == 0 {
		return onboarding.New(), nil
	}
	var w onboarding.Wizard
	if err := json.Unmarshal(p.OnboardingState, &w); err != nil {
		return onboarding.Wizard{}, err
	}
	if _, err := onboarding.ParseStep(string(w.Step)); err != nil {
		return onboarding.New(), nil
	}
	return w, nil
}

// saveWizard persists w as the user's onboarding state.
func (h *Handler) saveWizard(c *gin.Context, userID int, w onboarding.Wizard) error {
	state, err := json.Marshal(w)
	if err != nil {
		return err
	}
	_, err = h.db.Exec(c,
		"UPDATE profiles SET onboarding_state = @state::jsonb, updated_at = now() WHERE user_id = @userID",
		pgx.NamedArgs{"state": string(state), "userID": userID})
	return err
}

// onboardingError maps wizard errors to a status code.
func onboardingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, onboarding.ErrWrongStep), errors.Is(err, onboarding.ErrIncomplete):
		apiError(c, http.StatusConflict, err.Error())
	case errors.Is(err, nutrition.ErrInvalidInput):
		apiError(c, http.StatusBadRequest, err.Error())
	default:
		apiError(c, http.StatusInternalServerError, "failed to update onboarding")
	}
}

// withWizard loads the user's profile and wizard, runs fn on the wizard and
// saves the result. fn errors are reported through onboardingError.
func (h *Handler) withWizard(c *gin.Context, fn func(w *onboarding.Wizard) error) {
	userID := c.GetInt("user_id")

	p, err := h.loadProfile(c, userID)
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}
	w, err := loadWizard(&p)
	if err != nil {
		log.Printf("[withWizard] bad onboarding state for user %d: %v", userID, err)
		w = onboarding.New()
	}

	if err := fn(&w); err != nil {
		onboardingError(c, err)
		return
	}
	if err := h.saveWizard(c, userID, w); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save onboarding state")
		return
	}

	c.JSON(http.StatusOK, newOnboardingResponse(w, p.OnboardingComplete))
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getOnboarding returns the current screen and the answers so far.
// GET /api/onboarding.
func (h *Handler) getOnboarding(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := h.loadProfile(c, userID)
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}
	w, err := loadWizard(&p)
	if err != nil {
		log.Printf("[getOnboarding] bad onboarding state for user %d: %v", userID, err)
		w = onboarding.New()
	}

	c.JSON(http.StatusOK, newOnboardingResponse(w, p.OnboardingComplete))
}

// answerOnboarding records the answers for the current screen.
// PUT /api/onboarding. Body: { "step": "age", "answers": { "age_years": 30 } }.
func (h *Handler) answerOnboarding(c *gin.Context) {
	var body struct {
		Step    string             `json:"step"`
		Answers onboarding.Answers `json:"answers"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	step, err := onboarding.ParseStep(body.Step)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	h.withWizard(c, func(w *onboarding.Wizard) error {
		return w.Apply(step, body.Answers)
	})
}

// nextOnboarding moves to the following screen.
// POST /api/onboarding/next. 409 if the current screen is unanswered.
func (h *Handler) nextOnboarding(c *gin.Context) {
	h.withWizard(c, func(w *onboarding.Wizard) error {
		return w.Next()
	})
}

// backOnboarding moves to the previous screen, keeping every answer.
// POST /api/onboarding/back.
func (h *Handler) backOnboarding(c *gin.Context) {
	h.withWizard(c, func(w *onboarding.Wizard) error {
		w.Back()
		return nil
	})
}

// completionTargets picks the targets to store when onboarding completes.
// A user who already finished onboarding and turned auto_calculate off keeps
// their manual grams; only the diet and split follow the new answers.
func completionTargets(p *profile, computed nutrition.Targets) (nutrition.Targets, error) {
	if p.OnboardingComplete && !p.AutoCalculate {
		return nutrition.ChangeDiet(p.targets(), computed.Diet)
	}
	return computed, nil
}

// completeOnboarding writes the collected metrics and the derived targets to
// the profile and marks onboarding complete. auto_calculate is left as the
// user set it. The starting weight is also logged for today.
// POST /api/onboarding/complete. 409 unless the wizard is on the summary screen.
func (h *Handler) completeOnboarding(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := h.loadProfile(c, userID)
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}
	w, err := loadWizard(&p)
	if err != nil {
		apiError(c, http.StatusConflict, "onboarding has not started")
		return
	}
	m, t, err := w.Complete()
	if err != nil {
		onboardingError(c, err)
		return
	}
	state, err := json.Marshal(w)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save onboarding state")
		return
	}

	kept, err := completionTargets(&p, t)
	if err != nil {
		onboardingError(c, err)
		return
	}

	args := targetArgs(kept)
	args["userID"] = userID
	args["initialCalories"] = t.Calories
	args["sex"] = string(m.Sex)
	args["ageYears"] = m.AgeYears
	args["heightCM"] = m.HeightCM
	args["weightKG"] = m.WeightKG
	args["targetWeightKG"] = m.TargetWeightKG
	args["activityLevel"] = string(m.Activity)
	args["goal"] = string(m.Goal)
	args["diet"] = string(m.Diet)
	args["state"] = string(state)

	updated, err := queryOne[profile](h.db, c,
		`UPDATE profiles SET
			sex = @sex, age_years = @ageYears, height_cm = @heightCM, weight_kg = @weightKG,
			target_weight_kg = @targetWeightKG, activity_level = @activityLevel,
			goal = @goal, diet = @diet,
			initial_calories = @initialCalories, onboarding_state = @state::jsonb,
			onboarding_complete = true,
			`+targetSetClause+`
		 WHERE user_id = @userID
		 RETURNING *`, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}

	if _, err := h.db.Exec(c,
		`INSERT INTO weight_log (user_id, date, weight_kg)
		 VALUES (@userID, @date, @weightKG)
		 ON CONFLICT (user_id, date) DO NOTHING`,
		pgx.NamedArgs{"userID": userID, "date": time.Now().Format("2006-01-02"), "weightKG": m.WeightKG}); err != nil {
		log.Printf("[completeOnboarding] failed to log starting weight for user %d: %v", userID, err)
	}

	populateComputed(&updated)
	c.JSON(http.StatusOK, updated)
}
