package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/compasso-erp/compasso-erp/internal/app"
	"github.com/compasso-erp/compasso-erp/internal/companies"
	"github.com/compasso-erp/compasso-erp/internal/credit"
	"github.com/compasso-erp/compasso-erp/internal/participants"
	"github.com/compasso-erp/compasso-erp/internal/platform/cache"
	"github.com/compasso-erp/compasso-erp/internal/platform/db"
	"github.com/compasso-erp/compasso-erp/internal/rates"
	"github.com/compasso-erp/compasso-erp/internal/salesrows"
	"github.com/compasso-erp/compasso-erp/internal/settlement"
	"github.com/compasso-erp/compasso-erp/internal/shared"
	"github.com/compasso-erp/compasso-erp/internal/vouchers"
	"github.com/compasso-erp/compasso-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Warn("redis unavailable, running without cache or cross-process change events", slog.Any("error", err))
		redisClient = nil
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	changes := shared.NewChangeBroker(redisClient)
	changes.Listen(ctx)
	auditLogger := shared.NewAuditLogger(pool)

	companiesService := companies.NewService(companies.NewRepository(pool))
	salesRowsService := salesrows.NewService(salesrows.NewRepository(pool), changes)
	participantsService := participants.NewService(participants.NewRepository(pool))
	settlementEngine := settlement.NewEngine(settlement.NewRepository(pool), auditLogger, changes, logger)
	creditService := credit.NewService(credit.NewRepository(pool), changes, redisClient, cfg.CreditCacheTTL, logger)
	vouchersService := vouchers.NewService(vouchers.NewRepository(pool), changes)
	ratesService := rates.NewService(rates.NewRepository(pool))

	var jobsHandler *jobs.Handler
	if redisClient != nil {
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		jobsHandler = jobs.NewHandler(inspector, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger: logger,
		Config: cfg,

		CompaniesHandler:    companies.NewHandler(logger, companiesService),
		SalesRowsHandler:    salesrows.NewHandler(logger, salesRowsService),
		ParticipantsHandler: participants.NewHandler(logger, participantsService),
		SettlementHandler:   settlement.NewHandler(logger, settlementEngine),
		CreditHandler:       credit.NewHandler(logger, creditService),
		VouchersHandler:     vouchers.NewHandler(logger, vouchersService),
		RatesHandler:        rates.NewHandler(logger, ratesService),
		JobsHandler:         jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
