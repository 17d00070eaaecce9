package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-dashboard/api/swagger"
	"github.com/noah-isme/sma-dashboard/internal/handler"
	"github.com/noah-isme/sma-dashboard/internal/models"
	"github.com/noah-isme/sma-dashboard/internal/repository"
	"github.com/noah-isme/sma-dashboard/internal/service"
	"github.com/noah-isme/sma-dashboard/pkg/cache"
	"github.com/noah-isme/sma-dashboard/pkg/config"
	"github.com/noah-isme/sma-dashboard/pkg/database"
	"github.com/noah-isme/sma-dashboard/pkg/logger"
)

// @title School Dashboard API
// @version 1.0.0
// @description Resource endpoints consumed by the school dashboard
// @BasePath /
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("failed to migrate database", zap.Error(err))
	}

	metrics := service.NewMetricsService()
	checks := map[string]handler.Pinger{
		"postgres": func(ctx context.Context) error { return repository.Ping(ctx, db) },
	}

	var redisClient *redis.Client
	if cfg.ListCache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("list cache disabled, redis unavailable", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	if redisClient != nil {
		checks["redis"] = cacheRepo.Ping
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.ListCache.TTL, logr, cfg.ListCache.Enabled && redisClient != nil)

	tokens := service.NewTokenService(cfg.JWT)
	devTokens := cfg.Env != config.EnvProduction && cfg.JWT.DevIssueToken
	if devTokens {
		token, expires, err := tokens.Issue(models.IssueTokenRequest{Subject: "dev", Name: "Development"})
		if err == nil {
			logr.Info("development token issued", zap.String("token", token), zap.Time("expires_at", expires))
		}
	}

	deps := handler.RouterDeps{
		DB:             db,
		Cache:          cacheSvc,
		Tokens:         tokens,
		Logger:         logr,
		Checks:         checks,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		APIPrefix:      cfg.APIPrefix,
		DevTokens:      devTokens,
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics
	}
	r := handler.NewRouter(deps)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
