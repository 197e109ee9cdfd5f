package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/nutrition-go-api/nutrition"
)

// getProfile returns the profile and current targets for the authenticated user.
// Computed fields (bmr, tdee, bmi, water, steps) are populated when all
// metrics are present.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := h.loadProfile(c, userID)
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	populateComputed(&p)

	c.JSON(http.StatusOK, p)
}

// validatePatchProfile rejects enum values and measurements the nutrition
// engine cannot use. Runs before anything is written, so a bad field never
// leaves a half-updated profile behind.
func validatePatchProfile(body *patchProfileRequest) string {
	if body.Sex != nil {
		if _, err := nutrition.ParseSex(*body.Sex); err != nil {
			return "sex must be one of: male, female, other"
		}
	}
	if body.ActivityLevel != nil {
		if _, err := nutrition.ParseActivityLevel(*body.ActivityLevel); err != nil {
			return "activity_level must be one of: sedentary, lightly_active, moderately_active, active, very_active"
		}
	}
	if body.Goal != nil {
		if _, err := nutrition.ParseGoal(*body.Goal); err != nil {
			return "goal must be one of: lose_weight, maintain_weight, gain_muscle"
		}
	}
	if body.Diet != nil {
		if _, err := nutrition.ParseDiet(*body.Diet); err != nil {
			return "diet must be one of: none, keto, mediterranean, intermittent_fasting, dukan"
		}
	}
	if body.AgeYears != nil && (*body.AgeYears <= 0 || *body.AgeYears > 130) {
		return "age_years must be between 1 and 130"
	}
	if body.HeightCM != nil && (*body.HeightCM <= 0 || *body.HeightCM > 300) {
		return "height_cm must be between 0 and 300"
	}
	if body.WeightKG != nil && (*body.WeightKG <= 0 || *body.WeightKG > 1000) {
		return "weight_kg must be between 0 and 1000"
	}
	if body.TargetWeightKG != nil && (*body.TargetWeightKG <= 0 || *body.TargetWeightKG > 1000) {
		return "target_weight_kg must be between 0 and 1000"
	}
	return ""
}

// touchesMetrics reports whether the patch changes an input of the target
// derivation.
func (body *patchProfileRequest) touchesMetrics() bool {
	return body.Sex != nil || body.AgeYears != nil || body.HeightCM != nil ||
		body.WeightKG != nil || body.ActivityLevel != nil || body.Goal != nil ||
		body.Diet != nil
}

// patchSetClauses builds the SET clause for a profile PATCH from the fields the
// client actually sent. A diet change also resets the stored split to the new
// diet's preset in the same statement, so the diet and split never disagree.
// The body must already have passed validatePatchProfile.
func patchSetClauses(body *patchProfileRequest) ([]string, pgx.NamedArgs) {
	setClauses := []string{}
	args := pgx.NamedArgs{}

	if body.Sex != nil {
		setClauses = append(setClauses, "sex = @sex")
		args["sex"] = *body.Sex
	}
	if body.AgeYears != nil {
		setClauses = append(setClauses, "age_years = @ageYears")
		args["ageYears"] = *body.AgeYears
	}
	if body.HeightCM != nil {
		setClauses = append(setClauses, "height_cm = @heightCM")
		args["heightCM"] = *body.HeightCM
	}
	if body.WeightKG != nil {
		setClauses = append(setClauses, "weight_kg = @weightKG")
		args["weightKG"] = *body.WeightKG
	}
	if body.TargetWeightKG != nil {
		setClauses = append(setClauses, "target_weight_kg = @targetWeightKG")
		args["targetWeightKG"] = *body.TargetWeightKG
	}
	if body.ActivityLevel != nil {
		setClauses = append(setClauses, "activity_level = @activityLevel")
		args["activityLevel"] = *body.ActivityLevel
	}
	if body.Goal != nil {
		setClauses = append(setClauses, "goal = @goal")
		args["goal"] = *body.Goal
	}
	if body.Diet != nil {
		if split, err := nutrition.PresetSplit(nutrition.Diet(*body.Diet)); err == nil {
			setClauses = append(setClauses, "diet = @diet",
				"split_protein = @splitProtein", "split_carbs = @splitCarbs", "split_fat = @splitFat")
			args["diet"] = *body.Diet
			args["splitProtein"] = split.Protein
			args["splitCarbs"] = split.Carbs
			args["splitFat"] = split.Fat
		}
	}
	if body.AutoCalculate != nil {
		setClauses = append(setClauses, "auto_calculate = @autoCalculate")
		args["autoCalculate"] = *body.AutoCalculate
	}
	return setClauses, args
}

// rederiveForDiet rescales p's current calories with its (already switched)
// diet preset and saves the result.
func (h *Handler) rederiveForDiet(c *gin.Context, p profile) (profile, error) {
	t, err := nutrition.RecalculateFromCalories(p.targets(), p.Calories)
	if err != nil {
		return p, err
	}
	return h.saveTargets(c, p.UserID, t)
}

// patchProfile updates only the provided profile fields.
// PATCH /api/profile. Uses pointer fields in the request body to distinguish
// "not provided" from zero; only non-nil fields get updated.
// When auto_calculate is true after the update and a metric changed, the
// targets are re-derived from the new metrics. With auto_calculate off only
// the split follows a diet change; the gram targets stay as the user set them.
func (h *Handler) patchProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body patchProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := validatePatchProfile(&body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	setClauses, args := patchSetClauses(&body)
	args["userID"] = userID

	if len(setClauses) == 0 {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	query := "UPDATE profiles SET " +
		strings.Join(setClauses, ", ") +
		", updated_at = now() WHERE user_id = @userID RETURNING *"

	p, err := queryOne[profile](h.db, c, query, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	// If auto_calculate is on, re-derive and persist targets from the new metrics.
	// Without complete metrics a diet change still rescales the current
	// calories to the new preset.
	if p.AutoCalculate && body.touchesMetrics() {
		updated, ok, err := h.recomputeTargets(c, p)
		if err == nil && !ok && body.Diet != nil {
			updated, err = h.rederiveForDiet(c, p)
			ok = err == nil
		}
		if err != nil {
			log.Printf("[patchProfile] target recompute failed for user %d: %v", userID, err)
		} else if ok {
			p = updated
		}
	}

	populateComputed(&p)

	c.JSON(http.StatusOK, p)
}
