package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"lendingledger/internal/auth"
	"lendingledger/internal/config"
	"lendingledger/internal/handler"
	"lendingledger/internal/infra/postgresql"
	"lendingledger/internal/infra/postgresql/migrations"
	"lendingledger/internal/observability"
	"lendingledger/internal/queue"
	"lendingledger/internal/repository"
	"lendingledger/internal/service"
	"lendingledger/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel, "api")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	publisher := queue.NewRabbitMQPublisher(rabbit)
	defer publisher.Close()

	borrowRepo := repository.NewGormBorrowRepo(db)
	outboxRepo := repository.NewGormOutboxRepo(db)
	attemptRepo := repository.NewGormAttemptRepo(db)
	catalogRepo := repository.NewGormCatalogRepo(db)

	enqueuer, err := service.NewOutboxEnqueuer(outboxRepo, publisher, logger)
	if err != nil {
		logger.Fatal("enqueuer initialization failed", zap.Error(err))
	}

	ledgerService, err := service.NewLedgerService(borrowRepo, catalogRepo, enqueuer, logger)
	if err != nil {
		logger.Fatal("ledger service initialization failed", zap.Error(err))
	}

	catalogService, err := service.NewCatalogService(catalogRepo)
	if err != nil {
		logger.Fatal("catalog service initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	ledgerService.SetMetrics(metrics)

	app := fiber.New(fiber.Config{
		AppName:      "lending-ledger-api",
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	v1 := app.Group("/v1", auth.Middleware(cfg.AuthSecret))
	handler.NewBorrowHandler(ledgerService).RegisterRoutes(v1)
	handler.NewCatalogHandler(catalogService).RegisterRoutes(v1)
	handler.NewNotificationHandler(outboxRepo, attemptRepo).RegisterRoutes(v1)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("shutting down api")
		if err := app.Shutdown(); err != nil {
			logger.Error("api shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("lending-ledger api started", zap.Int("port", cfg.APIPort))
	if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
		logger.Fatal("api server stopped unexpectedly", zap.Error(err))
	}
}
