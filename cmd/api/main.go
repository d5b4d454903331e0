package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/callwork/backend/internal/config"
	"github.com/callwork/backend/internal/database"
	"github.com/callwork/backend/internal/database/migrations"
	"github.com/callwork/backend/internal/handlers"
	"github.com/callwork/backend/internal/jobs"
	"github.com/callwork/backend/internal/middleware"
	"github.com/callwork/backend/internal/queue"
	"github.com/callwork/backend/internal/routes"
	"github.com/callwork/backend/internal/services/balance"
	"github.com/callwork/backend/internal/services/lead"
	"github.com/callwork/backend/internal/services/notify"
	"github.com/callwork/backend/internal/services/quality"
	"github.com/callwork/backend/internal/services/telephony"
)

func main() {
	// Initialize configuration (loads .env for local development)
	cfg := config.LoadConfig()

	// Setup database connection
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := migrations.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis backs the cross-instance event fan-out
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("Invalid Redis URL: %v", err)
	}
	if cfg.Redis.Password != "" {
		redisOpts.Password = cfg.Redis.Password
	}
	redisOpts.DB = cfg.Redis.DB
	rdb := redis.NewClient(redisOpts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := notify.NewHub(rdb)
	go hub.Run(ctx)

	// Initialize services
	balanceService := balance.NewBalanceService(db)
	leadService := lead.NewLeadService(db, balanceService, cfg.Workflow.CallFee)
	lockTTL := time.Duration(cfg.Workflow.LockTTLSeconds) * time.Second
	qualityService := quality.NewQualityService(db, balanceService, hub, lockTTL)
	telephonyClient := telephony.NewClient(cfg.Telephony)
	callService := telephony.NewCallService(db, telephonyClient)

	// Initialize job queue and background jobs
	jobQueue := queue.NewQueue(db)
	jobs.RegisterAllJobHandlers(jobQueue, callService)
	go jobQueue.ProcessJobs()

	sweepInterval := time.Duration(cfg.Workflow.SweepIntervalSecs) * time.Second
	scheduler, err := jobs.ScheduleRecurringJobs(qualityService, sweepInterval)
	if err != nil {
		log.Fatalf("Failed to schedule recurring jobs: %v", err)
	}
	defer scheduler.Stop()

	// Initialize router
	router := gin.Default()

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	rateLimiter := middleware.NewRateLimiter(10, 5, 20, 10)
	defer rateLimiter.Stop()
	router.Use(rateLimiter.IPRateLimiterMiddleware())

	// Register routes
	routes.RegisterRoutes(router, db, routes.Handlers{
		Auth:     handlers.NewAuthHandler(db),
		Lead:     handlers.NewLeadHandler(db, leadService),
		Operator: handlers.NewOperatorHandler(leadService),
		Quality:  handlers.NewQualityHandler(qualityService, hub),
		Balance:  handlers.NewBalanceHandler(balanceService),
		Project:  handlers.NewProjectHandler(db),
		Call:     handlers.NewCallHandler(callService, jobQueue),
	}, rateLimiter)

	// Start server
	fmt.Printf("Callwork API server running on port %s\n", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
