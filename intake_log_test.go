package main

import (
	"net/http"
	"testing"
	"time"
)

func TestSumIntake(t *testing.T) {
	items := []intakeItem{
		{Calories: 300, ProteinG: ptr(20.0), CarbsG: ptr(30.0), FatG: ptr(10.0)},
		{Calories: 150},
		{Calories: 50, ProteinG: ptr(1.5)},
	}
	got := sumIntake(items)
	want := macroTotals{Calories: 500, ProteinG: 21.5, CarbsG: 30, FatG: 10}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if (sumIntake(nil) != macroTotals{}) {
		t.Error("expected zero totals for no items")
	}
}

func TestRemainingOf_GoesNegativeWhenExceeded(t *testing.T) {
	target := macroTotals{Calories: 2000, ProteinG: 150, CarbsG: 224, FatG: 56}
	consumed := macroTotals{Calories: 2100, ProteinG: 100, CarbsG: 250, FatG: 50}
	got := remainingOf(target, consumed)
	want := macroTotals{Calories: -100, ProteinG: 50, CarbsG: -26, FatG: 6}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestTargetTotals(t *testing.T) {
	p := completeProfile()
	got := targetTotals(&p)
	want := macroTotals{Calories: 2000, ProteinG: 150, CarbsG: 224, FatG: 56}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestBuildWeek_FillsMissingDays(t *testing.T) {
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	targets := macroTotals{Calories: 2000, ProteinG: 150, CarbsG: 224, FatG: 56}
	rows := []intakeDayDBRow{
		{Date: DateOnly{monday.AddDate(0, 0, 2)}, Calories: 1800, ProteinG: 120, CarbsG: 200, FatG: 60},
	}

	week := buildWeek(monday, targets, rows)
	if len(week) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week))
	}
	for i, day := range week {
		wantDate := monday.AddDate(0, 0, i).Format("2006-01-02")
		if got := day.Date.Format("2006-01-02"); got != wantDate {
			t.Errorf("day %d: expected %s, got %s", i, wantDate, got)
		}
		if day.Targets != targets {
			t.Errorf("day %d: targets not carried", i)
		}
	}
	if !week[2].HasData || week[2].Consumed.Calories != 1800 || week[2].Remaining.Calories != 200 {
		t.Errorf("unexpected Wednesday: %+v", week[2])
	}
	if week[0].HasData || week[0].Remaining != targets {
		t.Errorf("empty Monday should have full targets remaining: %+v", week[0])
	}
}

func TestGetDailySummary_InvalidDate(t *testing.T) {
	router := setupTestRouter("GET", "/api/intake/daily", (*Handler).getDailySummary)
	w := doRequest(router, "GET", "/api/intake/daily?date=10/19/2026", "")
	expectError(t, w, http.StatusBadRequest, "invalid date")
}

func TestGetWeekSummary_InvalidWeekStart(t *testing.T) {
	router := setupTestRouter("GET", "/api/intake/week-summary", (*Handler).getWeekSummary)
	w := doRequest(router, "GET", "/api/intake/week-summary?week_start=nope", "")
	expectError(t, w, http.StatusBadRequest, "invalid week_start")
}

func TestCreateIntakeItem_Validation(t *testing.T) {
	router := setupTestRouter("POST", "/api/intake/items", (*Handler).createIntakeItem)

	tests := []struct {
		name, body, substr string
	}{
		{"invalid json", `{`, "invalid request body"},
		{"missing name", `{"meal":"lunch","calories":100}`, "item_name is required"},
		{"bad meal", `{"item_name":"Apple","meal":"brunch","calories":95}`, "meal must be one of"},
		{"negative calories", `{"item_name":"Apple","meal":"snack","calories":-5}`, "calories must not be negative"},
		{"bad date", `{"item_name":"Apple","meal":"snack","calories":95,"date":"2026-13-40"}`, "invalid date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "POST", "/api/intake/items", tt.body)
			expectError(t, w, http.StatusBadRequest, tt.substr)
		})
	}
}

func TestUpdateIntakeItem_InvalidMeal(t *testing.T) {
	router := setupTestRouter("PUT", "/api/intake/items/:id", (*Handler).updateIntakeItem)
	w := doRequest(router, "PUT", "/api/intake/items/1", `{"meal":"elevenses"}`)
	expectError(t, w, http.StatusBadRequest, "meal must be one of")
}
