package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalstar-go-api/internal/config"
	"github.com/noah-isme/evalstar-go-api/internal/database"
	"github.com/noah-isme/evalstar-go-api/internal/handler"
	"github.com/noah-isme/evalstar-go-api/internal/middleware"
	"github.com/noah-isme/evalstar-go-api/internal/models"
	"github.com/noah-isme/evalstar-go-api/internal/observability"
	"github.com/noah-isme/evalstar-go-api/internal/repository"
	"github.com/noah-isme/evalstar-go-api/internal/router"
	"github.com/noah-isme/evalstar-go-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && level != zerolog.NoLevel {
		logger = logger.Level(level)
	}

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.TracingServiceName, cfg.TracingEndpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise tracing")
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL, database.PoolOptions{
		MaxOpenConns: cfg.DatabaseMaxOpenConns,
		MaxIdleConns: cfg.DatabaseMaxIdleConns,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisClient == nil {
		logger.Warn().Msg("redis disabled, ranking cache and redis events are off")
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	studentTaskRepo := repository.NewStudentTaskRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	rankingService := service.NewRankingService(studentRepo, redisClient, cfg.RankingCacheTTL, logger)
	studentTaskService := service.NewStudentTaskService(studentRepo, taskRepo, studentTaskRepo, logger)
	submissionService := service.NewSubmissionService(service.SubmissionDependencies{
		Students:     studentRepo,
		Tasks:        taskRepo,
		StudentTasks: studentTaskRepo,
		Submissions:  submissionRepo,
		Ranking:      rankingService,
		Activity:     activityService,
		Events:       service.NewCompletionPublisher(redisClient, natsConn, cfg.EventsChannel, logger),
	}, validate, logger)

	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		probes["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.AllowOrigins,
		AccessLog:    !cfg.IsProduction(),
	})
	router.Register(app, cfg, router.Dependencies{
		StudentTaskHandler: handler.NewStudentTaskHandler(studentTaskService, submissionService, logger),
		RankingHandler:     handler.NewRankingHandler(rankingService, logger),
		ActivityHandler:    handler.NewActivityHandler(activityService, logger),
		HealthProbes:       probes,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
		SubmissionLimiter:  middleware.RateLimit("submit", cfg.SubmissionRateLimit, cfg.SubmissionRateWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			logger.Warn().Err(err).Msg("failed to drain nats connection")
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracer(flushCtx); err != nil {
		logger.Warn().Err(err).Msg("failed to flush traces")
	}
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
