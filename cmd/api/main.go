package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/chirpy/internal/api/http"
	"github.com/spec-kit/chirpy/internal/api/http/handlers"
	"github.com/spec-kit/chirpy/internal/auth"
	"github.com/spec-kit/chirpy/internal/config"
	"github.com/spec-kit/chirpy/internal/events"
	"github.com/spec-kit/chirpy/internal/observability"
	"github.com/spec-kit/chirpy/internal/persistence"
	"github.com/spec-kit/chirpy/internal/repository"
	"github.com/spec-kit/chirpy/internal/service"
	"github.com/spec-kit/chirpy/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	db, err := persistence.NewGorm(pg.PoolHandle(), logger)
	if err != nil {
		logger.Fatal("failed to init gorm", zap.Error(err))
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var hits observability.HitCounter = observability.NewMemoryHitCounter()
	dependencies := map[string]handlers.Pinger{"postgres": pg}
	if redis.Enabled() {
		hits = observability.NewRedisHitCounter(redis.Client, cfg.Redis.HitsKey)
		dependencies["redis"] = redis
	}

	userRepo := repository.NewUserRepository(db)
	chirpRepo := repository.NewChirpRepository(db)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartActivityWorker(service.NewActivityService(dispatcher, logger, cfg.Activity))

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	chirpService := service.NewChirpService(service.ChirpDependencies{
		ChirpRepo:  chirpRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), cfg.Auth.JWTSecret, userRepo)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Users:          handlers.NewUsersHandler(authService),
		Chirps:         handlers.NewChirpsHandler(chirpService),
		Admin:          handlers.NewAdminHandler(hits, userRepo, cfg.Admin.AllowDataReset, logger),
		AuthMiddleware: authMiddleware,
		StaticDir:      cfg.App.StaticDir,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
