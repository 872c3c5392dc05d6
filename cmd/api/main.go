package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/cache"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if err := persistence.RunMigrations(ctx, cfg.Postgres, pg.PoolHandle(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	complaintRepo := repository.NewComplaintRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	leaderboardCache := cache.NewRedisLeaderboardCache(redis.Client)

	gamificationService := service.NewGamificationService(service.GamificationDependencies{
		UserRepo:   userRepo,
		Cache:      leaderboardCache,
		Dispatcher: dispatcher,
		Logger:     logger,
		CacheTTL:   cfg.SLA.LeaderboardCacheTTL(),
	})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaintRepo,
		UserRepo:      userRepo,
		Gamification:  gamificationService,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokenManager,
		Logger:     logger,
		BcryptCost: cfg.Auth.BcryptCost,
	})

	notificationService := service.NewNotificationService(
		service.NewLogSink(logger), cfg.Notification, logger)
	notificationService.RegisterHandlers(dispatcher)

	slaMonitor := worker.NewSLAMonitor(worker.SLAMonitorDependencies{
		ComplaintRepo: complaintRepo,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
		WarningWindow: cfg.SLA.WarningWindow(),
	})
	slaMonitor.Start(ctx, cfg.SLA.ScanInterval())
	defer slaMonitor.Stop()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:       handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:        handlers.NewUsersHandler(authService),
		Complaints:   handlers.NewComplaintsHandler(complaintService, cfg.SLA),
		Gamification: handlers.NewGamificationHandler(gamificationService),
		SLA:          handlers.NewSLAHandler(slaMonitor),
		Tokens:       tokenManager,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
