// Command api runs the TaskFlow HTTP server.
//
// @title                       TaskFlow API
// @version                     1.0
// @description                 Task and project management API with stateless bearer-token authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskflow/taskflow-api/internal/api"
	"github.com/taskflow/taskflow-api/internal/api/handler"
	"github.com/taskflow/taskflow-api/internal/api/middleware"
	"github.com/taskflow/taskflow-api/internal/core/service"
	"github.com/taskflow/taskflow-api/internal/infrastructure/config"
	"github.com/taskflow/taskflow-api/internal/infrastructure/db/mongo"
	"github.com/taskflow/taskflow-api/internal/infrastructure/db/redis"
	"github.com/taskflow/taskflow-api/internal/infrastructure/hashing"
	"github.com/taskflow/taskflow-api/internal/infrastructure/token"
	"github.com/taskflow/taskflow-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "taskflow-api",
	})

	key, err := token.NewSigningKey(cfg.Auth.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid JWT_SECRET")
	}
	tokens := token.NewService(key, cfg.Auth.TokenTTL)

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connection established")

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connection established")

	users := mongo.NewUserRepository(db)
	projects := mongo.NewProjectRepository(db)
	tasks := mongo.NewTaskRepository(db)
	if err := mongo.EnsureIndexes(ctx, users, tasks); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	pool := hashing.NewPool(cfg.Auth.HashWorkers, cfg.Auth.BcryptCost, logger.Component(log, "hashing"))
	// Workers stop after the HTTP server drains.
	poolCtx, stopPool := context.WithCancel(context.Background())
	defer stopPool()
	pool.Start(poolCtx)

	userService := service.NewUserService(users, pool, logger.Component(log, "users"))
	if err := userService.EnsureAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap admin account")
	}

	e := api.NewRouter(api.Deps{
		Auth:     service.NewAuthService(users, pool, tokens, logger.Component(log, "auth")),
		Users:    userService,
		Projects: service.NewProjectService(projects, tasks, logger.Component(log, "projects")),
		Tasks: service.NewTaskService(
			tasks, users, projects,
			mongo.NewActivityRepository(db),
			redis.NewIdempotencyStore(rdb),
			logger.Component(log, "tasks"),
		),
		Tokens: tokens,
		Policy: middleware.NewAccessPolicy(cfg.Auth.PublicPaths...),
		Health: []handler.Pinger{mongo.Pinger{DB: db}, redis.Pinger{Client: rdb}},
		Logger: log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Dur("token_ttl", tokens.TTL()).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	stopPool()
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongodb disconnect")
	}
	log.Info().Msg("server stopped")
}
