package main

import (
	"net/http"
	"testing"
)

func TestValidWeightKG(t *testing.T) {
	for _, w := range []float64{0.1, 80, 1000} {
		if !validWeightKG(w) {
			t.Errorf("expected %v to be valid", w)
		}
	}
	for _, w := range []float64{0, -1, 1000.1} {
		if validWeightKG(w) {
			t.Errorf("expected %v to be invalid", w)
		}
	}
}

func TestGetWeightLog_Validation(t *testing.T) {
	router := setupTestRouter("GET", "/api/weight-log", (*Handler).getWeightLog)

	tests := []struct {
		name, query, substr string
	}{
		{"missing params", "", "start and end query params are required"},
		{"missing end", "?start=2026-10-01", "start and end query params are required"},
		{"bad start", "?start=yesterday&end=2026-10-19", "invalid start"},
		{"bad end", "?start=2026-10-01&end=today", "invalid end"},
		{"reversed", "?start=2026-10-19&end=2026-10-01", "start must not be after end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "GET", "/api/weight-log"+tt.query, "")
			expectError(t, w, http.StatusBadRequest, tt.substr)
		})
	}
}

func TestUpsertWeightEntry_Validation(t *testing.T) {
	router := setupTestRouter("POST", "/api/weight-log", (*Handler).upsertWeightEntry)

	tests := []struct {
		name, body, substr string
	}{
		{"missing date", `{"weight_kg":80}`, "date is required"},
		{"bad date", `{"date":"19-10-2026","weight_kg":80}`, "invalid date"},
		{"zero weight", `{"date":"2026-10-19","weight_kg":0}`, "weight_kg must be between"},
		{"huge weight", `{"date":"2026-10-19","weight_kg":1500}`, "weight_kg must be between"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "POST", "/api/weight-log", tt.body)
			expectError(t, w, http.StatusBadRequest, tt.substr)
		})
	}
}

func TestUpdateWeightEntry_Validation(t *testing.T) {
	router := setupTestRouter("PUT", "/api/weight-log/:id", (*Handler).updateWeightEntry)

	w := doRequest(router, "PUT", "/api/weight-log/3", `{"weight_kg":-2}`)
	expectError(t, w, http.StatusBadRequest, "weight_kg must be between")

	w = doRequest(router, "PUT", "/api/weight-log/3", `{"date":"soon"}`)
	expectError(t, w, http.StatusBadRequest, "invalid date")
}
