package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CDP-2025/course-service/internal/auth"
	"github.com/CDP-2025/course-service/internal/cache"
	"github.com/CDP-2025/course-service/internal/config"
	"github.com/CDP-2025/course-service/internal/handlers"
	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/repositories/postgres"
	"github.com/CDP-2025/course-service/internal/services"
	"github.com/CDP-2025/course-service/internal/utils"
	"github.com/CDP-2025/course-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserRole{},
		&models.Course{},
		&models.Section{},
		&models.Material{},
		&models.Enrollment{},
		&models.Quiz{},
		&models.Assignment{},
		&models.Submission{},
		&models.DeadlineOverride{},
		&models.AttemptGrant{},
		&models.ProgressRecord{},
		&models.Certificate{},
	); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Redis is optional: without it role lookups just skip the cache.
	var roleCache cache.RoleCache = cache.NoopRoleCache{}
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("redis unavailable, role caching disabled", "error", err)
	} else {
		roleCache = cache.NewRedisRoleCache(redisClient, logger)
		defer redisClient.Close()
	}

	publisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		logger.Error("event publisher setup failed", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTPreviousSecrets...)
	if err != nil {
		logger.Error("token service setup failed", "error", err)
		os.Exit(1)
	}

	repo := postgres.NewRepository(db)
	identity := auth.NewRepositoryIdentityStore(repo.User(), roleCache)
	gate := auth.NewGate(identity)
	validator := utils.NewValidator()

	serviceManager := services.NewServiceManager(repo, tokens, identity, publisher, logger, validator)
	handlerManager := handlers.NewHandlerManager(serviceManager, tokens, gate, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.LoggerMiddleware(logger), gin.Recovery())
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}
