package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"lg/nutrition-go-api/nutrition"
	"lg/nutrition-go-api/onboarding"
)

func TestLoadWizard_NullStateStartsFresh(t *testing.T) {
	p := profile{}
	w, err := loadWizard(&p)
	if err != nil {
		t.Fatal(err)
	}
	if w.Step != onboarding.StepGender {
		t.Errorf("expected first step, got %q", w.Step)
	}
}

func TestLoadWizard_RestoresStoredState(t *testing.T) {
	sex := nutrition.SexFemale
	stored := onboarding.Wizard{Step: onboarding.StepAge, Answers: onboarding.Answers{Sex: &sex}}
	raw, err := json.Marshal(stored)
	if err != nil {
		t.Fatal(err)
	}

	p := profile{OnboardingState: raw}
	w, err := loadWizard(&p)
	if err != nil {
		t.Fatal(err)
	}
	if w.Step != onboarding.StepAge {
		t.Errorf("expected age step, got %q", w.Step)
	}
	if w.Answers.Sex == nil || *w.Answers.Sex != nutrition.SexFemale {
		t.Errorf("expected sex answer to survive, got %+v", w.Answers)
	}
}

func TestLoadWizard_UnknownStepRestarts(t *testing.T) {
	p := profile{OnboardingState: []byte(`{"step":"favourite_colour","answers":{}}`)}
	w, err := loadWizard(&p)
	if err != nil {
		t.Fatal(err)
	}
	if w.Step != onboarding.StepGender {
		t.Errorf("expected restart on first step, got %q", w.Step)
	}
}

func TestLoadWizard_CorruptState(t *testing.T) {
	p := profile{OnboardingState: []byte(`{not json`)}
	if _, err := loadWizard(&p); err == nil {
		t.Error("expected decode error")
	}
}

func TestOnboardingError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: x", onboarding.ErrWrongStep), http.StatusConflict},
		{fmt.Errorf("%w: x", onboarding.ErrIncomplete), http.StatusConflict},
		{fmt.Errorf("bad age: %w", nutrition.ErrInvalidInput), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		onboardingError(c, tt.err)
		if w.Code != tt.status {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.status, w.Code)
		}
	}
}

func TestAnswerOnboarding_Validation(t *testing.T) {
	router := setupTestRouter("PUT", "/api/onboarding", (*Handler).answerOnboarding)

	w := doRequest(router, "PUT", "/api/onboarding", `{`)
	expectError(t, w, http.StatusBadRequest, "invalid request body")

	w = doRequest(router, "PUT", "/api/onboarding", `{"step":"shoe_size","answers":{}}`)
	expectError(t, w, http.StatusBadRequest, "unknown onboarding step")
}

func TestNewOnboardingResponse(t *testing.T) {
	resp := newOnboardingResponse(onboarding.New(), false)
	if resp.Step != onboarding.StepGender || resp.Complete {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(resp.Steps) != len(onboarding.Steps) {
		t.Errorf("expected %d steps, got %d", len(onboarding.Steps), len(resp.Steps))
	}
}

func TestCompletionTargets(t *testing.T) {
	computed, err := nutrition.DeriveMacros(2750, nutrition.DietKeto)
	if err != nil {
		t.Fatal(err)
	}

	// First completion takes the computed targets.
	fresh := completeProfile()
	got, err := completionTargets(&fresh, computed)
	if err != nil || got != computed {
		t.Errorf("first completion: expected %+v, got %+v (err %v)", computed, got, err)
	}

	// Repeat completion with auto on also recomputes.
	repeat := completeProfile()
	repeat.OnboardingComplete = true
	got, _ = completionTargets(&repeat, computed)
	if got != computed {
		t.Errorf("repeat with auto on: expected %+v, got %+v", computed, got)
	}

	// Repeat completion with auto off keeps the manual grams.
	manual := completeProfile()
	manual.OnboardingComplete = true
	manual.AutoCalculate = false
	manual.ProteinG = 210
	got, err = completionTargets(&manual, computed)
	if err != nil {
		t.Fatal(err)
	}
	if got.Calories != 2000 || got.ProteinG != 210 || got.CarbsG != 224 || got.FatG != 56 {
		t.Errorf("expected manual grams kept, got %+v", got)
	}
	if got.Diet != nutrition.DietKeto || got.Split != computed.Split {
		t.Errorf("expected diet and split to follow the answers, got %+v", got)
	}
}
