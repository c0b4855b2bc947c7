package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/taxfolio/backend/internal/adapter/httpapi"
	"github.com/taxfolio/backend/internal/adapter/repository/memory"
	"github.com/taxfolio/backend/internal/adapter/repository/postgres"
	"github.com/taxfolio/backend/internal/config"
	"github.com/taxfolio/backend/internal/usecase/auditrisk"
	"github.com/taxfolio/backend/internal/usecase/investment"
	"github.com/taxfolio/backend/internal/usecase/liability"
	"github.com/taxfolio/backend/internal/usecase/seeder"
	"github.com/taxfolio/backend/internal/usecase/summary"
	"github.com/taxfolio/backend/internal/usecase/taxcalc"
	"github.com/taxfolio/backend/internal/usecase/taxconfig"
	"github.com/taxfolio/backend/internal/usecase/valuation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	// 1. Persistence: Postgres when configured, in-memory otherwise
	var repos httpapi.Repositories
	if cfg.DatabaseURL != "" {
		db, err := postgres.NewDB(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		repos = httpapi.Repositories{
			Entities:     postgres.NewEntityRepository(db),
			Assets:       postgres.NewAssetRepository(db),
			Liabilities:  postgres.NewLiabilityRepository(db),
			Incomes:      postgres.NewIncomeRepository(db),
			Certificates: postgres.NewCertificateRepository(db),
		}
		logger.Info("using postgres store")
	} else {
		store := memory.New()
		repos = httpapi.Repositories{
			Entities:     store.Entities(),
			Assets:       store.Assets(),
			Liabilities:  store.Liabilities(),
			Incomes:      store.Incomes(),
			Certificates: store.Certificates(),
		}
		logger.Info("using in-memory store")
	}

	// 2. Tax configuration, with optional overlay file
	resolver := taxconfig.NewResolver()
	if cfg.TaxTableFile != "" {
		if err := resolver.ApplyFile(cfg.TaxTableFile); err != nil {
			logger.Fatal("failed to load tax table file", zap.Error(err), zap.String("file", cfg.TaxTableFile))
		}
		logger.Info("applied tax table overlay", zap.String("file", cfg.TaxTableFile))
	}

	// 3. Usecases
	deriver := investment.NewDeriver()
	normalizer := valuation.NewNormalizer(repos.Assets, resolver, logger)
	calc := taxcalc.NewCalculator(resolver, deriver)
	riskEngine := auditrisk.NewEngine(resolver, deriver, calc)
	summarySvc := summary.NewSummaryService(repos.Assets, repos.Liabilities, normalizer)
	liabilitySvc := liability.NewLiabilityService(repos.Liabilities)

	ctx := context.Background()
	if cfg.DevSeed {
		demoSeeder := seeder.NewDemoSeeder(repos.Entities, repos.Assets, repos.Liabilities, repos.Incomes, repos.Certificates)
		if err := demoSeeder.Seed(ctx); err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
		logger.Info("demo data seeded")
	}

	// 4. HTTP server
	server := httpapi.New(repos, calc, riskEngine, deriver, normalizer, summarySvc, liabilitySvc, cfg.APIToken, logger)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	waitForShutdown(httpServer, logger)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(httpServer *http.Server, logger *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("shutting down", zap.Stringer("signal", sig))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("http server stopped")
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
