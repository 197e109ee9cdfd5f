package main

import (
	"slices"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/nutrition")
	t.Setenv("PORT", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("AUTH_RATE_PER_MIN", "")

	cfg := loadConfig()
	if cfg.DBURL != "postgres://localhost/nutrition" {
		t.Errorf("unexpected DB_URL %q", cfg.DBURL)
	}
	if cfg.Port != "3000" {
		t.Errorf("expected default port 3000, got %q", cfg.Port)
	}
	if cfg.AuthRatePerMin != 10 {
		t.Errorf("expected default rate 10, got %d", cfg.AuthRatePerMin)
	}
	if len(cfg.CORSOrigins) != 0 {
		t.Errorf("expected no origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, http://localhost:5173 ,")
	t.Setenv("AUTH_RATE_PER_MIN", "30")

	cfg := loadConfig()
	if cfg.Port != "8080" || cfg.RedisURL != "redis://cache:6379/0" || cfg.AuthRatePerMin != 30 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	want := []string{"https://app.example.com", "http://localhost:5173"}
	if !slices.Equal(cfg.CORSOrigins, want) {
		t.Errorf("expected origins %v, got %v", want, cfg.CORSOrigins)
	}
}

func TestLoadConfig_InvalidRateKeepsDefault(t *testing.T) {
	t.Setenv("AUTH_RATE_PER_MIN", "lots")
	if cfg := loadConfig(); cfg.AuthRatePerMin != 10 {
		t.Errorf("expected default rate 10, got %d", cfg.AuthRatePerMin)
	}
}

func TestCORSConfig(t *testing.T) {
	open := config{}.corsConfig()
	if !open.AllowAllOrigins {
		t.Error("expected all origins allowed when none configured")
	}
	if !slices.Contains(open.AllowHeaders, "Authorization") {
		t.Errorf("expected Authorization header allowed, got %v", open.AllowHeaders)
	}

	locked := config{CORSOrigins: []string{"https://app.example.com"}}.corsConfig()
	if locked.AllowAllOrigins || !slices.Equal(locked.AllowOrigins, []string{"https://app.example.com"}) {
		t.Errorf("unexpected cors config: %+v", locked)
	}
	if err := locked.Validate(); err != nil {
		t.Errorf("expected valid cors config: %v", err)
	}
}
