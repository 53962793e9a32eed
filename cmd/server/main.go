// @title         copsboot API
// @version       1.0
// @description   User registry backend: users keyed by generated UUID identifiers.
// @BasePath      /api/v1
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token: "Bearer <JWT>" or "<JWT>".
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	swagger "github.com/gofiber/swagger"
	"github.com/rs/zerolog"

	// internal imports
	"github.com/artem13815/copsboot/api/http"
	"github.com/artem13815/copsboot/api/http/handlers"
	_ "github.com/artem13815/copsboot/docs"
	"github.com/artem13815/copsboot/pkg/config"
	"github.com/artem13815/copsboot/pkg/entity"
	"github.com/artem13815/copsboot/pkg/health"
	"github.com/artem13815/copsboot/pkg/health/checkers"
	"github.com/artem13815/copsboot/pkg/logging"
	"github.com/artem13815/copsboot/pkg/repository/memory"
	pgrepo "github.com/artem13815/copsboot/pkg/repository/postgres"
	sqliterepo "github.com/artem13815/copsboot/pkg/repository/sqlite"
	"github.com/artem13815/copsboot/pkg/security/jwt"
	"github.com/artem13815/copsboot/pkg/storage/postgres"
	"github.com/artem13815/copsboot/pkg/storage/sqlite"
	"github.com/artem13815/copsboot/pkg/users"
)

func main() {
	// Load configuration from env/.env
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One generator for the whole process.
	generator, err := entity.NewGenerator(cfg.IDGenerator)
	if err != nil {
		log.Fatal().Err(err).Msg("init id generator")
	}
	ids := users.NewIDSource(generator)

	repo, checks, closeStore, err := openRepository(ctx, cfg, ids)
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.Storage).Msg("open storage")
	}
	defer closeStore()

	usersUC := users.NewService(repo, log)
	usersHandler := handlers.NewUsersHandler(usersUC)

	// Health service: compose checkers
	readiness := health.NewService(checks...)
	healthHandler := handlers.NewHealthHandler(readiness)

	// JWT auth middleware for protected routes
	authMW := jwt.NewAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer)
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; /users routes are not protected")
	}

	app := http.NewApp(log)
	http.Register(app, healthHandler, usersHandler, authMW)

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("storage", cfg.Storage).
		Str("id_generator", cfg.IDGenerator).
		Msg("HTTP server listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// openRepository connects the configured storage and applies its migrations.
func openRepository(ctx context.Context, cfg config.Config, ids users.IDSource) (users.Repository, []health.Checker, func(), error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return pgrepo.NewUserRepository(pool, ids), []health.Checker{checkers.NewPostgresChecker(pool)}, pool.Close, nil
	case config.StorageSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return sqliterepo.NewUserRepository(db, ids), []health.Checker{checkers.NewSQLChecker("sqlite", db)}, func() { _ = db.Close() }, nil
	case config.StorageMemory:
		return memory.NewUserRepository(ids), nil, func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}
