package main // Entry point package

import (
	"log"  // Logging library
	"time" // Durations for the session tunables

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/restaurant-floor-plan/internal/config"     // Internal config loader
	"github.com/iliyamo/restaurant-floor-plan/internal/database"   // MySQL connection helper
	"github.com/iliyamo/restaurant-floor-plan/internal/handler"    // HTTP handlers
	"github.com/iliyamo/restaurant-floor-plan/internal/middleware" // Rate limiting middleware
	"github.com/iliyamo/restaurant-floor-plan/internal/queue"      // RabbitMQ consumer
	"github.com/iliyamo/restaurant-floor-plan/internal/repository" // DB repositories
	"github.com/iliyamo/restaurant-floor-plan/internal/router"     // Route registration
	qp "github.com/iliyamo/restaurant-floor-plan/internal/service" // Event publisher / notifier
	"github.com/iliyamo/restaurant-floor-plan/internal/session"    // Per-floor editing sessions
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env vars win

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err) // No DB, no service
	}
	defer func() { _ = db.Close() }()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; features degrade

	// Repositories over the shared connection pool.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	floors := repository.NewFloorRepo(db)
	versions := repository.NewVersionRepo(db)
	approvals := repository.NewApprovalRepo(db)
	activity := repository.NewActivityRepo(db)
	drafts := repository.NewDraftStore(rdb, time.Duration(cfg.DraftTTLHours)*time.Hour)

	// The session manager owns one lifecycle per floor and runs autosave.
	sessions := session.NewManager(floors, versions, approvals, activity, drafts,
		qp.Notifier{}, session.Config{
			AutosaveDebounce: time.Duration(cfg.AutosaveDebounce) * time.Second,
			AutosaveInterval: time.Duration(cfg.AutosaveInterval) * time.Second,
			IdleTimeout:      time.Duration(cfg.SessionIdleMin) * time.Minute,
		})

	e := echo.New() // Create Echo instance

	// Distributed token bucket in front of everything; a nil Redis client
	// turns it into a pass-through.
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e) // Health check
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterFloorPlan(e,
		handler.NewFloorHandler(floors, sessions),
		handler.NewEditorHandler(sessions),
		handler.NewLifecycleHandler(floors, versions, approvals, activity, sessions),
		cfg.JWTSecret, rdb)

	// Consume published/approval events into logs/floorplan.log.  The
	// consumer reconnects on its own; a dead broker only costs the log.
	go func() {
		if err := queue.StartEventsConsumer(); err != nil {
			log.Printf("events consumer: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
