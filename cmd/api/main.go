// @title                       Identity System API
// @version                     1.0
// @description                 User registration, bearer-token authentication and role administration.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/99minutos/identity-system/internal/api"
	"github.com/99minutos/identity-system/internal/api/handler"
	"github.com/99minutos/identity-system/internal/core/service"
	"github.com/99minutos/identity-system/internal/core/token"
	"github.com/99minutos/identity-system/internal/infrastructure/crypto"
	"github.com/99minutos/identity-system/internal/infrastructure/db/mongo"
	"github.com/99minutos/identity-system/internal/infrastructure/db/redis"
	"github.com/99minutos/identity-system/internal/infrastructure/queue"
	"github.com/99minutos/identity-system/internal/pkg/config"
	"github.com/99minutos/identity-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "identity-system",
		Env:     cfg.Env,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure mongo indexes")
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}()

	// --- Core ---
	codec, err := token.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token codec")
	}
	hasher := crypto.NewBcryptHasher(cfg.Auth.BcryptCost)

	users := redis.NewCachedUserRepository(mongo.NewUserRepository(db), rdb, cfg.Redis.UserCacheTTL, logger.Component(log, "user_cache"))
	store := service.NewCredentialStore(users, mongo.NewRoleRepository(db))

	auditService := service.NewAuditService(mongo.NewEventRepository(db), logger.Component(log, "audit"))
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditService, logger.Component(log, "audit_dispatcher"))

	authService := service.NewAuthService(
		store,
		hasher,
		service.NewPasswordAuthenticator(store, hasher),
		codec,
		dispatcher,
		logger.Component(log, "auth"),
	)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Log:          logger.Component(log, "http"),
		AuthService:  authService,
		AuditService: auditService,
		Codec:        codec,
		Production:   cfg.IsProduction(),
		Checks: map[string]handler.DependencyCheck{
			"mongodb": handler.MongoCheck(db),
			"redis":   handler.RedisCheck(rdb),
		},
	})

	g, gctx := errgroup.WithContext(ctx)

	// Audit workers stop only after the HTTP server has drained.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := e.Shutdown(shutdownCtx)

		stopWorkers()
		dispatcher.Wait()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
