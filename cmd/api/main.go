package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/nexiq/storefront-api/internal/api/http"
	"github.com/nexiq/storefront-api/internal/api/http/handlers"
	"github.com/nexiq/storefront-api/internal/auth"
	"github.com/nexiq/storefront-api/internal/config"
	"github.com/nexiq/storefront-api/internal/events"
	"github.com/nexiq/storefront-api/internal/observability"
	"github.com/nexiq/storefront-api/internal/payment"
	"github.com/nexiq/storefront-api/internal/persistence"
	"github.com/nexiq/storefront-api/internal/repository"
	"github.com/nexiq/storefront-api/internal/service"
	"github.com/nexiq/storefront-api/internal/worker"
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	productRepo, err := repository.NewDocumentRepository(pool, repository.CollectionProducts)
	if err != nil {
		logger.Fatal("failed to init product repository", zap.Error(err))
	}
	reviewRepo, err := repository.NewDocumentRepository(pool, repository.CollectionReviews)
	if err != nil {
		logger.Fatal("failed to init review repository", zap.Error(err))
	}

	notifier := worker.NewNotificationWorker(events.NewInMemoryDispatcher(), logger, 256)
	service.NewNotificationService(notifier, logger, cfg.Notification).RegisterHandlers()
	notifier.Start()

	tokens := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL())
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokens,
		Dispatcher: notifier,
		Logger:     logger,
	})
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:   orderRepo,
		PaymentRepo: paymentRepo,
		Users:       userRepo,
		Dispatcher:  notifier,
		Logger:      logger,
	})
	catalogService := service.NewCatalogService(productRepo, reviewRepo)

	var gateway payment.Gateway
	if stripeGateway, err := payment.NewStripeGateway(cfg.Payment.StripeSecretKey); err != nil {
		logger.Warn("payments disabled", zap.Error(err))
	} else {
		gateway = stripeGateway
	}
	paymentService := service.NewPaymentService(gateway, cfg.Payment.Currency, logger)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		Immutable:    true,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:        cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.App.AllowedOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Users:    handlers.NewUsersHandler(authService),
		Catalog:  handlers.NewCatalogHandler(catalogService),
		Orders:   handlers.NewOrdersHandler(orderService),
		Payments: handlers.NewPaymentsHandler(paymentService, metrics),
		Gate:     auth.NewGate(tokens, userRepo),
		Metrics:  metrics.Handler(),
		Idempotency: httptransport.Idempotency(httptransport.IdempotencyConfig{
			Store:   redis.Client,
			TTL:     cfg.Payment.IdempotencyTTL(),
			Logger:  logger,
			Metrics: metrics,
		}),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := notifier.Stop(shutdownCtx); err != nil {
		logger.Warn("notification worker shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
