package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/nexus-crm/nexus/internal/analytics"
	"github.com/nexus-crm/nexus/internal/api"
	"github.com/nexus-crm/nexus/internal/config"
	"github.com/nexus-crm/nexus/internal/crm"
	"github.com/nexus-crm/nexus/internal/pkg/logger"
	"github.com/nexus-crm/nexus/internal/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.RedactPII)

	// Connect to Postgres
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime())
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database")

	store := crm.NewStore(db)

	// Optional Redis, used for the analytics distributed lock
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("Redis unreachable, falling back to Postgres advisory locks: %v", err)
			redisClient = nil
		} else {
			log.Println("Connected to Redis")
		}
	}

	// Reply scheduler
	schedOpts := []scheduler.Option{
		scheduler.WithDelayRange(cfg.Scheduler.MinReplyDelay(), cfg.Scheduler.MaxReplyDelay()),
	}
	if cfg.Scheduler.NoResponseAfter() > 0 {
		schedOpts = append(schedOpts,
			scheduler.WithNoResponseSweep(cfg.Scheduler.NoResponseAfter(), cfg.Scheduler.SweepInterval()))
	}
	sched := scheduler.New(store, schedOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Daily analytics aggregator
	aggOpts := []analytics.Option{
		analytics.WithEngagementWindow(cfg.Analytics.EngagementWindow()),
		analytics.WithLockTTL(cfg.Analytics.LockTTL()),
	}
	if redisClient != nil {
		aggOpts = append(aggOpts, analytics.WithRedis(redisClient))
	}
	agg := analytics.New(store, aggOpts...)

	handlers := api.NewHandlers(store, sched, agg)
	router := api.SetupRoutes(handlers)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	// Stop background timers and sweeps before closing the listener
	sched.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
