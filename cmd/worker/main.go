package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/compasso-erp/compasso-erp/internal/app"
	"github.com/compasso-erp/compasso-erp/internal/companies"
	"github.com/compasso-erp/compasso-erp/internal/credit"
	"github.com/compasso-erp/compasso-erp/internal/platform/cache"
	"github.com/compasso-erp/compasso-erp/internal/platform/db"
	"github.com/compasso-erp/compasso-erp/internal/shared"
	"github.com/compasso-erp/compasso-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	changes := shared.NewChangeBroker(redisClient)
	companiesService := companies.NewService(companies.NewRepository(pool))
	creditService := credit.NewService(credit.NewRepository(pool), changes, redisClient, cfg.CreditCacheTTL, logger)

	snapshotJob := jobs.NewPortfolioSnapshotJob(creditService, companiesService, logger)

	snapshotTask, err := jobs.NewPortfolioSnapshotTask("active")
	if err != nil {
		logger.Error("build snapshot task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPortfolioSnapshot, Handler: snapshotJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: snapshotTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
