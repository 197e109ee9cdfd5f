package main

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/joho/godotenv"
)

// config is the server configuration, read from the environment.
type config struct {
	DBURL          string
	Port           string
	RedisURL       string   // optional; enables the shared rate limiter
	CORSOrigins    []string // empty means allow all
	AuthRatePerMin int
}

// loadConfig reads .env when present and then the process environment.
// A missing .env is fine for the server; deployed instances set real env vars.
func loadConfig() config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[loadConfig] ignoring .env: %v", err)
	}

	cfg := config{
		DBURL:          os.Getenv("DB_URL"),
		Port:           os.Getenv("PORT"),
		RedisURL:       os.Getenv("REDIS_URL"),
		AuthRatePerMin: 10,
	}
	if cfg.Port == "" {
		cfg.Port = "3000"
	}
	for _, o := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	if s := os.Getenv("AUTH_RATE_PER_MIN"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cfg.AuthRatePerMin = n
		} else {
			log.Printf("[loadConfig] invalid AUTH_RATE_PER_MIN %q, using %d", s, cfg.AuthRatePerMin)
		}
	}
	return cfg
}

// corsConfig allows the configured origins, or every origin when none are set.
// Authorization must be allowed explicitly for the Bearer token.
func (cfg config) corsConfig() cors.Config {
	cc := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.CORSOrigins
	}
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization")
	return cc
}
