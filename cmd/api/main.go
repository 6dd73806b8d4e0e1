package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gearvault/internal/app"
	"gearvault/internal/config"
	"gearvault/internal/database"
	"gearvault/internal/modules/auth"
	"gearvault/internal/modules/events"
	"gearvault/internal/modules/maintenance"
	"gearvault/internal/pkg/jwt"
	"gearvault/internal/pkg/logger"
	"gearvault/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}
	store := repository.NewStore(db)

	var limiter auth.AttemptLimiter
	if cfg.RedisAddress != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			zl.Fatal("redis connection failed", zap.Error(err), zap.String("address", cfg.RedisAddress))
		}
		limiter = auth.NewRedisLimiter(redisClient, cfg.LoginMaxAttempts, cfg.LoginLockout)
		zl.Info("login throttling backed by redis", zap.String("address", cfg.RedisAddress))
	} else {
		limiter = auth.NewMemoryLimiter(cfg.LoginMaxAttempts, cfg.LoginLockout)
		zl.Warn("REDIS_ADDRESS not set, login throttling is per process")
	}

	hub := events.NewHub(zl.Named("hub"))
	defer hub.Close()

	a := app.New(app.Deps{
		Config:  cfg,
		Store:   store,
		Tokens:  jwt.New(cfg.JWTSecret, cfg.JWTAccessTTL),
		Limiter: limiter,
		Hub:     hub,
		Log:     zl,
	})

	scheduler, err := maintenance.StartCron(cfg.ReminderCron, a.Reminders, zl.Named("cron"))
	if err != nil {
		zl.Fatal("reminder schedule", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("server starting", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zl.Info("server stopped")
}
