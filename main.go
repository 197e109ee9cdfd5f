package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Set properties of the predefined Logger, including
	// the log entry prefix and a flag to disable printing
	// the time, source file, and line number.
	log.SetPrefix("lg/nutrition-go-api: ")
	log.SetFlags(0)

	cfg := loadConfig()
	if cfg.DBURL == "" {
		log.Fatal("DB_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := newDBPool(ctx, cfg.DBURL)
	cancel()
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	fmt.Println("Starting gin app...")

	h := &Handler{db: pool}
	router := gin.Default()
	router.SetTrustedProxies(nil)
	router.Use(cors.New(cfg.corsConfig()))
	h.registerRoutes(router, rateLimitMiddleware(newLimiter(cfg)))

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
