package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/payroll-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository"
	payrollService "github.com/cmlabs-hris/payroll-backend-go/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := appHTTP.NewLogger(cfg.SlogLevel(), cfg.App.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := repository.Open(ctx, cfg.Store, cfg.DatabaseURL())
	if err != nil {
		logger.Error("Error opening store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer repos.Close()

	payrollSvc := payrollService.NewPayrollService(
		repos.Payroll,
		repos.Employees,
		repos.Attendance,
		cfg.Payroll.Rates(),
		cfg.Payroll.Workers,
		logger,
	)

	if cfg.Payroll.BackfillOnStart {
		result, err := payrollSvc.GenerateForAllHistoricalPeriods(ctx)
		if err != nil {
			logger.Error("Startup payroll backfill failed", "error", err)
		} else {
			logger.Info("Startup payroll backfill done", "periods", len(result.Periods), "generated", result.Generated, "failed", result.Failed)
		}
	}

	scheduler := cron.NewScheduler(logger)
	cron.NewPayrollJobs(payrollSvc, cfg.Payroll.ScheduleInterval, nil, logger).RegisterJobs(scheduler)
	scheduler.Start()

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
		LogLevel:       cfg.SlogLevel(),
	}, payrollHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server running", "addr", srv.Addr, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	scheduler.Stop()
	logger.Info("Server stopped")
}
