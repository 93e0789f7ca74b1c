package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
)

const GenerateMonthlyPayrollJob = "generate_monthly_payroll"

// PayrollJobs contains payroll-related cron jobs
type PayrollJobs struct {
	payrollService payroll.PayrollService
	interval       time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// NewPayrollJobs creates payroll cron jobs. now defaults to time.Now.
func NewPayrollJobs(payrollService payroll.PayrollService, interval time.Duration, now func() time.Time, logger *slog.Logger) *PayrollJobs {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollJobs{
		payrollService: payrollService,
		interval:       interval,
		now:            now,
		logger:         logger,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	// Runs after the first one in a month write nothing.
	scheduler.AddJob(GenerateMonthlyPayrollJob, j.interval, j.GenerateMonthlyPayroll)
}

// GenerateMonthlyPayroll generates payroll for the calendar month before
// the current one.
func (j *PayrollJobs) GenerateMonthlyPayroll(ctx context.Context) error {
	p := period.Of(j.now().UTC()).Previous()

	result, err := j.payrollService.GenerateForPeriod(ctx, p.Month, p.Year)
	if err != nil {
		return fmt.Errorf("failed to generate payroll for %s: %w", p, err)
	}

	if result.Generated > 0 || result.Failed > 0 {
		j.logger.Info("Cron: monthly payroll generated",
			"period", p.String(),
			"generated", result.Generated,
			"failed", result.Failed,
		)
	}
	return nil
}
