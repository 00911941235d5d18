package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	amqpadapter "github.com/gestiongastos/backend/internal/adapter/amqp"
	grpcadapter "github.com/gestiongastos/backend/internal/adapter/grpc"
	"github.com/gestiongastos/backend/internal/adapter/repository/memory"
	"github.com/gestiongastos/backend/internal/adapter/repository/postgres"
	"github.com/gestiongastos/backend/internal/config"
	"github.com/gestiongastos/backend/internal/domain"
	"github.com/gestiongastos/backend/internal/logger"
	"github.com/gestiongastos/backend/internal/metrics"
	"github.com/gestiongastos/backend/internal/usecase/alerting"
	"github.com/gestiongastos/backend/internal/usecase/category"
	"github.com/gestiongastos/backend/internal/usecase/dashboard"
	"github.com/gestiongastos/backend/internal/usecase/expense"
	"github.com/gestiongastos/backend/internal/usecase/ledger"
	"github.com/gestiongastos/backend/internal/usecase/seeder"
)

const shutdownTimeout = 10 * time.Second

// repositories groups the storage backends selected by GASTOS_STORAGE
type repositories struct {
	persons    domain.PersonRepository
	categories domain.CategoryRepository
	ledgers    domain.LedgerRepository
	alerts     domain.AlertRepository
	close      func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "gastos",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error().Err(err).Msg("server stopped unexpectedly")
		os.Exit(1)
	}
	logg.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logg zerolog.Logger) error {
	// 1. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// 2. Storage
	repos, err := openRepositories(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := repos.close(); err != nil {
			logg.Error().Err(err).Msg("error closing storage")
		}
	}()

	// Seed default categories
	if err := seeder.NewSystemSeeder(repos.categories).Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed default categories: %w", err)
	}
	logg.Info().Msg("default categories seeded")

	// 3. Initialize Services (Use Cases)
	weeks, err := alerting.WeekNumberingForLocale(cfg.Alerts.WeekLocale)
	if err != nil {
		return err
	}

	categoryService := category.NewCategoryService(repos.categories, logg)
	alertingService := alerting.NewAlertingService(
		repos.alerts,
		repos.ledgers,
		categoryService,
		weeks,
		m,
		logg,
		alerting.WithHistoryLimit(cfg.Alerts.HistoryLimit),
	)
	ledgerService := ledger.NewLedgerService(repos.persons, repos.ledgers, m, logg)
	expenseService := expense.NewExpenseService(repos.ledgers, categoryService, alertingService, m, logg)
	dashboardService := dashboard.NewDashboardService(repos.ledgers)

	// 4. Notification fan-out
	if cfg.AMQP.Enabled() {
		publisher, err := amqpadapter.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey, logg)
		if err != nil {
			return err
		}
		defer publisher.Close()
		alertingService.Subscribe(amqpadapter.ListenerID, publisher)
		logg.Info().Str("exchange", cfg.AMQP.Exchange).Msg("publishing alert notifications")
	}

	// 5. gRPC and metrics servers
	grpcServer := grpcadapter.NewGRPCServer(
		grpcadapter.NewServer(ledgerService, expenseService, categoryService, alertingService, dashboardService),
		cfg.App.APIToken,
		logg,
	)

	lis, err := net.Listen("tcp", cfg.App.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.App.GRPCAddr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:              cfg.App.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logg.Info().Str("addr", cfg.App.GRPCAddr).Msg("gRPC server listening")
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		logg.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logg.Info().Msg("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		grpcServer.GracefulStop()
		return metricsServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openRepositories builds the repositories for the configured storage backend
func openRepositories(ctx context.Context, cfg *config.Config, logg zerolog.Logger) (*repositories, error) {
	if cfg.Storage == config.StorageMemory {
		store := memory.New()
		logg.Info().Msg("using in-memory storage")
		return &repositories{
			persons:    store.Persons,
			categories: store.Categories,
			ledgers:    store.Ledgers,
			alerts:     store.Alerts,
			close:      func() error { return nil },
		}, nil
	}

	db, err := postgres.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := postgres.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	logg.Info().Msg("using postgres storage")

	return &repositories{
		persons:    postgres.NewPersonRepository(db),
		categories: postgres.NewCategoryRepository(db),
		ledgers:    postgres.NewLedgerRepository(db),
		alerts:     postgres.NewAlertRepository(db),
		close:      db.Close,
	}, nil
}
