package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler holds shared dependencies (db pool) for all route handlers.
type Handler struct {
	db *pgxpool.Pool
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
	}
	return results, err
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// newDBPool opens the connection pool for the profile, intake and weight
// tables. Handlers run concurrently and each borrows a connection per request.
func newDBPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse DB_URL: %w", err)
	}
	// Simple protocol: no server-side prepared statements, so a migration that
	// changes a column type never trips "cached plan must not change result type",
	// and poolers in transaction mode keep working.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	// Hosted Postgres drops idle connections; recycle ours before it does.
	config.MaxConnIdleTime = 4 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Printf("[newDBPool] pool ready (max %d conns)", config.MaxConns)
	return pool, nil
}

// registerRoutes registers all API routes on the router. authLimit throttles
// the public credential endpoints per client IP.
func (h *Handler) registerRoutes(router *gin.Engine, authLimit gin.HandlerFunc) {
	// Public routes
	router.POST("/api/login", authLimit, h.login)
	router.POST("/api/register", authLimit, h.register)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.PATCH("/profile", h.patchProfile)
	api.POST("/targets/recalculate", h.recalculateTargets)
	api.PUT("/targets", h.editTarget)
	api.POST("/targets/revert", h.revertTargets)
	api.GET("/onboarding", h.getOnboarding)
	api.PUT("/onboarding", h.answerOnboarding)
	api.POST("/onboarding/next", h.nextOnboarding)
	api.POST("/onboarding/back", h.backOnboarding)
	api.POST("/onboarding/complete", h.completeOnboarding)
	api.GET("/intake/daily", h.getDailySummary)
	api.GET("/intake/week-summary", h.getWeekSummary)
	api.POST("/intake/items", h.createIntakeItem)
	api.PUT("/intake/items/:id", h.updateIntakeItem)
	api.DELETE("/intake/items/:id", h.deleteIntakeItem)
	api.GET("/weight-log", h.getWeightLog)
	api.POST("/weight-log", h.upsertWeightEntry)
	api.PUT("/weight-log/:id", h.updateWeightEntry)
	api.DELETE("/weight-log/:id", h.deleteWeightEntry)
}
