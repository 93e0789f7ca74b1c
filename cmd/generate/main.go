// Command generate runs payroll generation once, for a single period or for
// every period that has attendance.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository"
	payrollService "github.com/cmlabs-hris/payroll-backend-go/internal/service/payroll"
)

func main() {
	previous := period.Of(time.Now().UTC()).Previous()
	month := flag.Int("month", previous.Month, "payroll month (1-12)")
	year := flag.Int("year", previous.Year, "payroll year")
	all := flag.Bool("all", false, "generate every period that has attendance")
	flag.Parse()

	os.Exit(run(*month, *year, *all))
}

func run(month, year int, all bool) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := repository.Open(ctx, cfg.Store, cfg.DatabaseURL())
	if err != nil {
		logger.Error("Error opening store", "driver", cfg.Store.Driver, "error", err)
		return 1
	}
	defer repos.Close()

	svc := payrollService.NewPayrollService(
		repos.Payroll,
		repos.Employees,
		repos.Attendance,
		cfg.Payroll.Rates(),
		cfg.Payroll.Workers,
		logger,
	)

	var result interface{}
	if all {
		result, err = svc.GenerateForAllHistoricalPeriods(ctx)
	} else {
		result, err = svc.GenerateForPeriod(ctx, month, year)
	}
	if err != nil {
		logger.Error("Payroll generation failed", "error", err)
		if errors.Is(err, payroll.ErrInvalidPeriod) {
			return 2
		}
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("Failed to print result", "error", err)
		return 1
	}
	return 0
}
