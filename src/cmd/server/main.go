package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/adapter/alerts"
	"github.com/api-sage/expense-limit-service/src/internal/adapter/http/controller"
	"github.com/api-sage/expense-limit-service/src/internal/adapter/http/middleware"
	"github.com/api-sage/expense-limit-service/src/internal/adapter/http/router"
	"github.com/api-sage/expense-limit-service/src/internal/adapter/ratesapi"
	"github.com/api-sage/expense-limit-service/src/internal/adapter/repository/memory"
	"github.com/api-sage/expense-limit-service/src/internal/adapter/repository/postgres"
	"github.com/api-sage/expense-limit-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/expense-limit-service/src/internal/config"
	"github.com/api-sage/expense-limit-service/src/internal/logger"
	"github.com/api-sage/expense-limit-service/src/internal/usecase/service_interfaces"
	"github.com/api-sage/expense-limit-service/src/internal/usecase/services"
	"golang.org/x/sync/errgroup"
)

type repositories struct {
	limits       repo_interfaces.LimitRepository
	transactions repo_interfaces.TransactionRepository
	rates        repo_interfaces.ExchangeRateRepository
	db           *sql.DB
}

type alertSink interface {
	service_interfaces.AlertPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.SetLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		logger.SetJSON()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("server exited with error", err, nil)
		os.Exit(1)
	}
	logger.Info("server stopped gracefully", nil)
}

func run(ctx context.Context, cfg config.Config) error {
	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	if repos.db != nil {
		defer repos.db.Close()
	}

	publisher, err := openAlerts(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	clock := services.SystemClock(cfg.Location)

	var supplier service_interfaces.RateSupplier
	if cfg.RatesAPIURL != "" {
		supplier = ratesapi.NewClient(cfg.RatesAPIURL, cfg.ReferenceCurrency, cfg.RatesAPITimeout)
	}

	rateService := services.NewRateService(repos.rates, supplier, cfg.RatesCacheTTL, clock)
	limitService := services.NewLimitService(repos.limits, cfg.LimitDefaults(), clock)
	evaluator := services.NewLimitEvaluator(services.NewSpendingAggregator(repos.transactions), limitService, rateService, clock)
	bankService := services.NewBankService(repos.transactions, evaluator, publisher, clock)
	clientService := services.NewClientService(limitService, repos.limits, repos.transactions, cfg.Location)

	var pinger controller.Pinger
	if repos.db != nil {
		pinger = repos.db
	}

	mux := router.New(
		controller.NewBankController(bankService),
		controller.NewClientController(clientService),
		controller.NewRateController(rateService),
		controller.NewHealthController(pinger, cfg.DataBackend),
		middleware.Chain(middleware.RequestID, middleware.Recover),
	)

	srv := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        mux,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting expense limit server", logger.Fields{
			"addr":    cfg.HTTPAddr,
			"backend": cfg.DataBackend,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if supplier != nil {
		refresher := services.NewRateRefresher(rateService.RefreshRates, cfg.RatesRefreshInterval)
		g.Go(func() error {
			return refresher.Run(gctx)
		})
	}

	return g.Wait()
}

func openRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	if cfg.DataBackend == config.BackendMemory {
		limits := memory.NewLimitRepository()
		logger.Info("initialized memory backend", nil)
		return repositories{
			limits:       limits,
			transactions: memory.NewTransactionRepository(limits),
			rates:        memory.NewExchangeRateRepository(memory.DefaultRateSnapshot(time.Now().In(cfg.Location))),
		}, nil
	}

	if err := postgres.RunMigrations(cfg.DatabaseDSN); err != nil {
		return repositories{}, err
	}

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := postgres.Open(openCtx, cfg.DatabaseDSN)
	if err != nil {
		return repositories{}, err
	}

	logger.Info("initialized postgres backend", nil)
	return repositories{
		limits:       postgres.NewLimitRepository(db),
		transactions: postgres.NewTransactionRepository(db),
		rates:        postgres.NewExchangeRateRepository(db),
		db:           db,
	}, nil
}

func openAlerts(cfg config.Config) (alertSink, error) {
	if cfg.AMQPURL == "" {
		return alerts.Noop{}, nil
	}

	publisher, err := alerts.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, err
	}
	logger.Info("limit exceeded alerts publishing to broker", logger.Fields{
		"exchange": cfg.AMQPExchange,
		"queue":    cfg.AMQPQueue,
	})
	return publisher, nil
}
