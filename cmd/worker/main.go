package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lendingledger/internal/config"
	"lendingledger/internal/infra/postgresql"
	infraredis "lendingledger/internal/infra/redis"
	"lendingledger/internal/mailer"
	"lendingledger/internal/observability"
	"lendingledger/internal/queue"
	"lendingledger/internal/repository"
	"lendingledger/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel, "worker")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	consumer := queue.NewRabbitMQConsumer(rabbit, cfg.WorkerConcurrency, logger)
	defer consumer.Close()
	publisher := queue.NewRabbitMQPublisher(rabbit)

	mail, err := mailer.NewHTTPMailer(cfg.MailAPIURL, cfg.MailFrom)
	if err != nil {
		logger.Fatal("mailer initialization failed", zap.Error(err))
	}

	limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.RateLimitPerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	outboxRepo := repository.NewGormOutboxRepo(db)
	attemptRepo := repository.NewGormAttemptRepo(db)

	worker, err := service.NewWorkerService(
		outboxRepo,
		attemptRepo,
		consumer,
		mail,
		limiter,
		cfg.WorkerConcurrency,
		logger,
	)
	if err != nil {
		logger.Fatal("worker initialization failed", zap.Error(err))
	}
	worker.SetMetrics(observability.NewMetrics())

	scanInterval := time.Duration(cfg.OutboxScanInterval) * time.Second
	scanner, err := service.NewOutboxScanner(outboxRepo, publisher, scanInterval, logger)
	if err != nil {
		logger.Fatal("outbox scanner initialization failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("lending-ledger worker started",
		zap.Int("concurrency", cfg.WorkerConcurrency),
		zap.Duration("scanInterval", scanInterval),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return worker.Start(gctx) })
	g.Go(func() error { return scanner.Start(gctx) })

	if err := g.Wait(); err != nil {
		logger.Fatal("worker stopped unexpectedly", zap.Error(err))
	}
	logger.Info("worker shut down")
}
