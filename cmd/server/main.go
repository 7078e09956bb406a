package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/blog-rbac/config"
	"github.com/d60-Lab/blog-rbac/internal/api"
	"github.com/d60-Lab/blog-rbac/internal/api/handler"
	"github.com/d60-Lab/blog-rbac/internal/auth"
	"github.com/d60-Lab/blog-rbac/internal/repository"
	"github.com/d60-Lab/blog-rbac/internal/service"
	"github.com/d60-Lab/blog-rbac/pkg/database"
	"github.com/d60-Lab/blog-rbac/pkg/logger"
	"github.com/d60-Lab/blog-rbac/pkg/tracing"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

// @title blog-rbac API
// @version 1.0
// @description 角色权限控制的博客服务
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := must(config.Load())
	if err := logger.Init(cfg.Log.Level); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	shutdownTracing := must(tracing.Init(ctx, cfg))
	defer func() { _ = shutdownTracing(ctx) }()

	db := must(database.InitDB(cfg))
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, logout revocation disabled", zap.Error(err))
		rdb = nil
	}

	// repositories & services
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL, rdb)
	authSvc := service.NewAuthService(userRepo, tokens)
	postSvc := service.NewPostService(postRepo)
	userSvc := service.NewUserService(userRepo)

	h := handler.New(authSvc, postSvc, userSvc)
	router := api.NewRouter(cfg, h, tokens, userRepo)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
