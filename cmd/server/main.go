package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/mamadbah2/kitstock/internal/config"
	"github.com/mamadbah2/kitstock/internal/repository/mongodb"
	"github.com/mamadbah2/kitstock/internal/repository/sheets"
	"github.com/mamadbah2/kitstock/internal/scheduler"
	"github.com/mamadbah2/kitstock/internal/server/handlers"
	"github.com/mamadbah2/kitstock/internal/server/router"
	cataloguesvc "github.com/mamadbah2/kitstock/internal/service/catalogue"
	customersvc "github.com/mamadbah2/kitstock/internal/service/customers"
	exportsvc "github.com/mamadbah2/kitstock/internal/service/export"
	reportingsvc "github.com/mamadbah2/kitstock/internal/service/reporting"
	salesvc "github.com/mamadbah2/kitstock/internal/service/sales"
	whatsappclient "github.com/mamadbah2/kitstock/pkg/clients/whatsapp"
	"github.com/mamadbah2/kitstock/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store := openStore(cfg, baseLogger)

	customerSvc := customersvc.NewService(store, logger.Named(baseLogger, "svc.customers"))
	saleSvc := salesvc.NewService(store, customerSvc, cfg.Sales.DiscountMode, logger.Named(baseLogger, "svc.sales"))
	reportingSvc := reportingsvc.NewService(store, cfg.Reporting.LowStockThreshold, logger.Named(baseLogger, "svc.reporting"))
	catalogueSvc := cataloguesvc.NewService(store, logger.Named(baseLogger, "svc.catalogue"))
	exportSvc := exportsvc.NewService(store, logger.Named(baseLogger, "svc.export"))

	deps := handlers.Dependencies{
		Dashboard:      reportingSvc,
		Catalogue:      catalogueSvc,
		Sales:          saleSvc,
		Customers:      customerSvc,
		Export:         exportSvc,
		Store:          store,
		MaskedSheetKey: cfg.Sheets.MaskedKey(),
	}
	schedOpts := scheduler.Options{}

	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Error("mongodb unavailable, snapshot history disabled", zap.Error(err))
		} else {
			defer func() {
				if err := mongoRepo.Close(context.Background()); err != nil {
					baseLogger.Error("failed to close mongodb connection", zap.Error(err))
				}
			}()
			deps.Snapshots = mongoRepo
			schedOpts.Snapshots = mongoRepo
			baseLogger.Info("snapshot history enabled", zap.String("db", cfg.MongoDB.DBName))
		}
	}

	if cfg.WhatsApp.Enabled() {
		schedOpts.Notifier = whatsappclient.NewClient(cfg.WhatsApp)
		schedOpts.AlertTo = cfg.WhatsApp.AlertTo
		baseLogger.Info("whatsapp low stock alerts enabled")
	} else {
		baseLogger.Warn("whatsapp credentials missing, low stock alerts disabled")
	}

	webHandler := handlers.New(deps, logger.Named(baseLogger, "handlers"))
	engine := router.New(webHandler, cfg.Server, logger.Named(baseLogger, "router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, schedOpts, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore builds the configured store. A store that cannot be built is replaced
// by one that fails every call, so /health keeps answering and /debug/sheet can
// report the problem.
func openStore(cfg *config.Config, base *zap.Logger) sheets.Repository {
	log := logger.Named(base, "repo.sheets")

	if cfg.Sheets.Driver == config.DriverMemory {
		log.Warn("using in-memory store, data is lost on restart")
		return sheets.NewMemoryRepository()
	}

	written, err := cfg.Sheets.MaterializeCredentials()
	if err != nil {
		log.Error("failed to write credentials from GOOGLE_CREDS_JSON", zap.Error(err))
	} else if written {
		log.Info("credentials written from environment", zap.String("path", cfg.Sheets.CredentialsPath))
	}

	// The client keeps this context for token refreshes, so it must outlive startup.
	repo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, log)
	if err != nil {
		log.Error("spreadsheet store unavailable", zap.Error(err), zap.String("sheet_key", cfg.Sheets.MaskedKey()))
		return sheets.NewUnavailable(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := repo.Ping(ctx); err != nil {
		log.Warn("spreadsheet not reachable yet", zap.Error(err), zap.String("sheet_key", cfg.Sheets.MaskedKey()))
	} else {
		log.Info("spreadsheet connected", zap.String("sheet_key", cfg.Sheets.MaskedKey()))
	}
	return repo
}
