package payroll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/export"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkers = 4
	defaultPage    = 1
	defaultLimit   = 20
)

type PayrollServiceImpl struct {
	payrollRepo    payroll.PayrollRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	rates          payroll.Rates
	workers        int
	logger         *slog.Logger
}

// NewPayrollService wires the generator. workers bounds how many employees
// are processed at once; values below 1 fall back to a default. A nil logger
// uses slog.Default().
func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	rates payroll.Rates,
	workers int,
	logger *slog.Logger,
) payroll.PayrollService {
	if workers < 1 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollServiceImpl{
		payrollRepo:    payrollRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		rates:          rates,
		workers:        workers,
		logger:         logger,
	}
}

// ========== GENERATION ==========

func (s *PayrollServiceImpl) GenerateForPeriod(ctx context.Context, month, year int) (payroll.GenerateResult, error) {
	p, err := period.New(month, year)
	if err != nil {
		return payroll.GenerateResult{}, payroll.InvalidPeriodError(strconv.Itoa(month), strconv.Itoa(year))
	}
	return s.generate(ctx, p)
}

func (s *PayrollServiceImpl) GenerateForAllHistoricalPeriods(ctx context.Context) (payroll.BackfillResult, error) {
	periods, err := s.attendanceRepo.ListDistinctPeriods(ctx)
	if err != nil {
		return payroll.BackfillResult{}, fmt.Errorf("failed to list attendance periods: %w", err)
	}

	s.logger.Info("Payroll backfill started", "periods", len(periods))

	result := payroll.BackfillResult{Periods: make([]payroll.GenerateResult, 0, len(periods))}
	for _, p := range periods {
		if err := p.Validate(); err != nil {
			s.logger.Warn("Skipping invalid attendance period", "period", p.String(), "error", err)
			continue
		}

		periodResult, err := s.generate(ctx, p)
		if err != nil {
			return result, err
		}
		result.Periods = append(result.Periods, periodResult)
		result.Generated += periodResult.Generated
		result.Failed += periodResult.Failed
	}

	s.logger.Info("Payroll backfill completed",
		"periods", len(result.Periods),
		"generated", result.Generated,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *PayrollServiceImpl) generate(ctx context.Context, p period.Period) (payroll.GenerateResult, error) {
	start := time.Now()

	employees, err := s.employeeRepo.ListActive(ctx)
	malformed, ok := employee.MalformedRows(err)
	if !ok {
		return payroll.GenerateResult{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	var generated, failed atomic.Int64
	var mu sync.Mutex
	var failures []payroll.EmployeeFailureResponse

	for _, row := range malformed {
		s.logger.Error("Skipping malformed employee row",
			"employee_id", row.EmployeeID,
			"period", p.String(),
			"error", row.Err,
		)
		failed.Add(1)
		failures = append(failures, payroll.EmployeeFailureResponse{EmployeeID: row.EmployeeID, Error: row.Error()})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, emp := range employees {
		emp := emp
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			created, err := s.generateForEmployee(gctx, emp, p)
			if err == nil {
				if created {
					generated.Add(1)
				}
				return nil
			}
			if isFatal(err) {
				return err
			}

			failure := &payroll.EmployeeFailure{EmployeeID: emp.ID, Period: p, Err: err}
			s.logger.Error("Payroll generation failed for employee",
				"employee_id", emp.ID,
				"period", p.String(),
				"error", failure,
			)
			failed.Add(1)
			mu.Lock()
			failures = append(failures, payroll.EmployeeFailureResponse{EmployeeID: emp.ID, Error: err.Error()})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return payroll.GenerateResult{}, fmt.Errorf("payroll generation for %s aborted: %w", p, err)
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].EmployeeID < failures[j].EmployeeID })

	result := payroll.GenerateResult{
		Month:     p.Month,
		Year:      p.Year,
		Generated: int(generated.Load()),
		Failed:    int(failed.Load()),
		Failures:  failures,
	}
	s.logger.Info("Payroll generated",
		"period", p.String(),
		"employees", len(employees)+len(malformed),
		"generated", result.Generated,
		"failed", result.Failed,
		"duration", time.Since(start),
	)
	return result, nil
}

// generateForEmployee reports whether a new record was written. An existing
// record, found up front or raced in by a concurrent run, is not an error.
func (s *PayrollServiceImpl) generateForEmployee(ctx context.Context, emp employee.Employee, p period.Period) (bool, error) {
	exists, err := s.payrollRepo.Exists(ctx, emp.ID, p)
	if err != nil {
		return false, fmt.Errorf("failed to check payroll record: %w", err)
	}
	if exists {
		return false, nil
	}

	counts, err := s.attendanceRepo.CountByStatus(ctx, emp.ID, p)
	if err != nil {
		return false, fmt.Errorf("failed to count attendance: %w", err)
	}

	tally := payroll.Tally(counts)
	if len(tally.Ignored) > 0 {
		s.logger.Warn("Ignoring unknown attendance statuses",
			"employee_id", emp.ID,
			"period", p.String(),
			"statuses", tally.Ignored,
		)
	}

	record := payroll.Compute(emp, p, tally, s.rates)
	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("failed to generate payroll id: %w", err)
	}
	record.ID = id.String()

	if _, err := s.payrollRepo.Create(ctx, record); err != nil {
		if errors.Is(err, payroll.ErrPayrollRecordAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create payroll record: %w", err)
	}
	return true, nil
}

// isFatal reports errors that abort a whole generation run.
func isFatal(err error) bool {
	return errors.Is(err, payroll.ErrUpstreamUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// ========== LEDGER READS ==========

func (s *PayrollServiceImpl) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}
	if filter.Page <= 0 {
		filter.Page = defaultPage
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}

	records, total, err := s.payrollRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, fmt.Errorf("failed to list payroll records: %w", err)
	}

	return payroll.ListPayrollRecordResponse{
		Data:       toResponses(records),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) GetPayrollSummary(ctx context.Context, month, year int) (payroll.PayrollSummaryResponse, error) {
	p, err := period.New(month, year)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, payroll.InvalidPeriodError(strconv.Itoa(month), strconv.Itoa(year))
	}

	summary, err := s.payrollRepo.Summary(ctx, p)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, fmt.Errorf("failed to get payroll summary: %w", err)
	}
	return summary, nil
}

func (s *PayrollServiceImpl) GetDepartmentSummary(ctx context.Context, month, year int) ([]payroll.DepartmentSummaryResponse, error) {
	p, err := period.New(month, year)
	if err != nil {
		return nil, payroll.InvalidPeriodError(strconv.Itoa(month), strconv.Itoa(year))
	}

	summaries, err := s.payrollRepo.SummaryByDepartment(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to get department payroll summary: %w", err)
	}
	if summaries == nil {
		summaries = []payroll.DepartmentSummaryResponse{}
	}
	return summaries, nil
}

// ExportPayroll writes every record matching filter, ignoring pagination.
func (s *PayrollServiceImpl) ExportPayroll(ctx context.Context, filter payroll.PayrollFilter, w io.Writer) error {
	if err := filter.Validate(); err != nil {
		return err
	}
	filter.Page, filter.Limit = 0, 0

	records, _, err := s.payrollRepo.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list payroll records: %w", err)
	}

	return export.WritePayrollWorkbook(w, toResponses(records))
}

func toResponses(records []payroll.PayrollRecord) []payroll.PayrollRecordResponse {
	responses := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, rec := range records {
		resp := payroll.PayrollRecordResponse{
			ID:              rec.ID,
			EmployeeID:      rec.EmployeeID,
			PeriodMonth:     rec.PeriodMonth,
			PeriodYear:      rec.PeriodYear,
			BaseSalary:      rec.BaseSalary,
			TotalDays:       rec.TotalDays,
			PresentDays:     rec.PresentDays,
			LateDays:        rec.LateDays,
			AbsentDays:      rec.AbsentDays,
			LateDeduction:   rec.LateDeduction,
			AbsentDeduction: rec.AbsentDeduction,
			TotalDeduction:  rec.TotalDeduction,
			NetSalary:       rec.NetSalary,
			CreatedAt:       rec.CreatedAt.Format(time.RFC3339),
		}
		if rec.EmployeeName != nil {
			resp.EmployeeName = *rec.EmployeeName
		}
		if rec.Department != nil {
			resp.Department = *rec.Department
		}
		if rec.Designation != nil {
			resp.Designation = *rec.Designation
		}
		responses = append(responses, resp)
	}
	return responses
}
