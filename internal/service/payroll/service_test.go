package payroll

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// ===== FAKES =====

type fakeEmployeeRepo struct {
	employee.EmployeeRepository
	calls     atomic.Int32
	err       error
	malformed []string
}

func (r *fakeEmployeeRepo) ListActive(ctx context.Context) ([]employee.Employee, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	employees, err := r.EmployeeRepository.ListActive(ctx)
	if err != nil || len(r.malformed) == 0 {
		return employees, err
	}

	rowErrs := make([]error, 0, len(r.malformed))
	for _, id := range r.malformed {
		rowErrs = append(rowErrs, &employee.MalformedRowError{EmployeeID: id, Err: errors.New("can't convert abc to decimal")})
	}
	return employees, errors.Join(rowErrs...)
}

type fakeAttendanceRepo struct {
	attendance.AttendanceRepository
	countCalls  atomic.Int32
	periodCalls atomic.Int32
	countErrs   map[string]error
	periodsErr  error
}

func (r *fakeAttendanceRepo) CountByStatus(ctx context.Context, employeeID string, p period.Period) ([]attendance.StatusCount, error) {
	r.countCalls.Add(1)
	if err, ok := r.countErrs[employeeID]; ok {
		return nil, err
	}
	return r.AttendanceRepository.CountByStatus(ctx, employeeID, p)
}

func (r *fakeAttendanceRepo) ListDistinctPeriods(ctx context.Context) ([]period.Period, error) {
	r.periodCalls.Add(1)
	if r.periodsErr != nil {
		return nil, r.periodsErr
	}
	return r.AttendanceRepository.ListDistinctPeriods(ctx)
}

type fakePayrollRepo struct {
	payroll.PayrollRepository
	existsCalls atomic.Int32
	createCalls atomic.Int32
	conflicts   atomic.Int32

	// staleExists makes Exists always answer false so that concurrent
	// runs reach Create and rely on the store's uniqueness.
	staleExists bool
}

func (r *fakePayrollRepo) Exists(ctx context.Context, employeeID string, p period.Period) (bool, error) {
	r.existsCalls.Add(1)
	if r.staleExists {
		return false, nil
	}
	return r.PayrollRepository.Exists(ctx, employeeID, p)
}

func (r *fakePayrollRepo) Create(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	r.createCalls.Add(1)
	created, err := r.PayrollRepository.Create(ctx, record)
	if errors.Is(err, payroll.ErrPayrollRecordAlreadyExists) {
		r.conflicts.Add(1)
	}
	return created, err
}

type testEnv struct {
	store       *memory.Store
	employees   *fakeEmployeeRepo
	attendances *fakeAttendanceRepo
	payrolls    *fakePayrollRepo
	service     payroll.PayrollService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	env := &testEnv{
		store:       store,
		employees:   &fakeEmployeeRepo{EmployeeRepository: memory.NewEmployeeRepository(store)},
		attendances: &fakeAttendanceRepo{AttendanceRepository: memory.NewAttendanceRepository(store), countErrs: map[string]error{}},
		payrolls:    &fakePayrollRepo{PayrollRepository: memory.NewPayrollRepository(store)},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.service = NewPayrollService(env.payrolls, env.employees, env.attendances, payroll.DefaultRates(), 4, logger)
	return env
}

func (e *testEnv) addEmployee(t *testing.T, id string, baseSalary int64, active bool) {
	t.Helper()
	_, err := e.employees.Create(context.Background(), employee.Employee{
		ID:         id,
		FirstName:  "Employee",
		LastName:   id,
		BaseSalary: decimal.NewFromInt(baseSalary),
		IsActive:   active,
	})
	require.NoError(t, err)
}

// addAttendance records n consecutive days starting at day firstDay of the
// given month.
func (e *testEnv) addAttendance(t *testing.T, employeeID string, year, month, firstDay, n int, status attendance.Status) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := e.attendances.Create(context.Background(), attendance.Attendance{
			EmployeeID: employeeID,
			Date:       time.Date(year, time.Month(month), firstDay+i, 0, 0, 0, 0, time.UTC),
			Status:     status,
		})
		require.NoError(t, err)
	}
}

func (e *testEnv) records(t *testing.T, month, year int) []payroll.PayrollRecord {
	t.Helper()
	records, _, err := e.payrolls.List(context.Background(), payroll.PayrollFilter{PeriodMonth: &month, PeriodYear: &year})
	require.NoError(t, err)
	return records
}

// ===== GENERATION TESTS =====

func TestGenerateForPeriod_AggregatesAttendance(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addEmployee(t, "EMP001", 10000, true)
	env.addAttendance(t, "EMP001", 2026, 3, 1, 18, attendance.StatusPresent)
	env.addAttendance(t, "EMP001", 2026, 3, 19, 2, attendance.StatusLate)
	env.addAttendance(t, "EMP001", 2026, 3, 21, 1, attendance.StatusAbsent)
	// Outside the period
	env.addAttendance(t, "EMP001", 2026, 4, 1, 3, attendance.StatusAbsent)

	// Act
	result, err := env.service.GenerateForPeriod(ctx, 3, 2026)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, payroll.GenerateResult{Month: 3, Year: 2026, Generated: 1, Failed: 0}, result)

	records := env.records(t, 3, 2026)
	require.Len(t, records, 1)
	rec := records[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, 21, rec.TotalDays)
	assert.Equal(t, 18, rec.PresentDays)
	assert.Equal(t, 2, rec.LateDays)
	assert.Equal(t, 1, rec.AbsentDays)
	assert.True(t, decimal.NewFromInt(400).Equal(rec.LateDeduction))
	assert.True(t, decimal.NewFromInt(500).Equal(rec.AbsentDeduction))
	assert.True(t, decimal.NewFromInt(900).Equal(rec.TotalDeduction))
	assert.True(t, decimal.NewFromInt(9100).Equal(rec.NetSalary))
	assert.True(t, decimal.NewFromInt(10000).Equal(rec.BaseSalary))
}

func TestGenerateForPeriod_ZeroAttendance(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addEmployee(t, "EMP001", 7500, true)

	result, err := env.service.GenerateForPeriod(ctx, 2, 2026)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Generated)

	records := env.records(t, 2, 2026)
	require.Len(t, records, 1)
	assert.Equal(t, 0, records[0].TotalDays)
	assert.True(t, records[0].TotalDeduction.IsZero())
	assert.True(t, decimal.NewFromInt(7500).Equal(records[0].NetSalary))
}

func TestGenerateForPeriod_NegativeNetSalaryIsStored(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addEmployee(t, "EMP001", 1000, true)
	env.addAttendance(t, "EMP001", 2026, 3, 2, 6, attendance.StatusAbsent)

	_, err := env.service.GenerateForPeriod(ctx, 3, 2026)
	require.NoError(t, err)

	records := env.records(t, 3, 2026)
	require.Len(t, records, 1)
	assert.True(t, decimal.NewFromInt(3000).Equal(records[0].AbsentDeduction))
	assert.True(t, decimal.NewFromInt(-2000).Equal(records[0].NetSalary))
}

func TestGenerateForPeriod_IgnoresUnknownStatuses(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addEmployee(t, "EMP001", 5000, true)
	env.addAttendance(t, "EMP001", 2026, 3, 1, 2, attendance.StatusPresent)
	env.addAttendance(t, "EMP001", 2026, 3, 3, 3, attendance.Status("Sick"))

	_, err := env.service.GenerateForPeriod(ctx, 3, 2026)
	require.NoError(t, err)

	records := env.records(t, 3, 2026)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].TotalDays)
	assert.Equal(t, 2, records[0].PresentDays)
	assert.True(t, records[0].TotalDeduction.IsZero())
}

func TestGenerateForPeriod_SkipsInactiveEmployees(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addEmployee(t, "EMP001", 5000, true)
	env.addEmployee(t, "EMP002", 5000, false)
	env.addAttendance(t, "EMP002", 2026, 3, 1, 5, attendance.StatusLate)

	result, err := env.service.GenerateForPeriod(ctx, 3, 2026)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Generated)
	records := env.records(t, 3, 2026)
	require.Len(t, records, 1)
	assert.Equal(t, "EMP001", records[0].EmployeeID)
}

func TestGenerateForPeriod_Idempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	for i := 1; i <= 5; i++ {
		env.addEmployee(t, fmt.Sprintf("EMP%03d", i), 5000, true)
	}
	env.addAttendance(t, "EMP001", 2026, 3, 1, 2, attendance.StatusLate)

	first, err := env.service.GenerateForPeriod(ctx, 3, 2026)
	require.NoError(t, err)
	before := env.records(t, 3, 2026)

	second, err := env.service.GenerateForPeriod(ctx, 3, 2026)
	require.NoError(t, err)
	after := env.records(t, 3, 2026)

	assert.Equal(t, 5, first.Generated)
	assert.Equal(t, 0, second.Generated)
	assert.Equal(t, 0, second.Failed)
	assert.Equal(t, before, after)
	assert.Equal(t, 5, env.store.PayrollCount())
}

func TestGenerateForPeriod_ConcurrentRunsWriteOneRecordPerEmployee(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.payrolls.staleExists = true
	const employees = 20
	for i := 1; i <= employees; i++ {
		env.addEmployee(t, fmt.Sprintf("EMP%03d", i), 5000, true)
	}

	var wg sync.WaitGroup
	results := make([]payroll.GenerateResult, 2)
	errs := make([]error, 2)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = env.service.GenerateForPeriod(ctx, 3, 2026)
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, employees, results[0].Generated+results[1].Generated)
	assert.Equal(t, 0, results[0].Failed+results[1].Failed)
	assert.Equal(t, employees, env.store.PayrollCount())
	assert.Equal(t, int32(employees), env.payrolls.conflicts.Load())
}

func TestGenerateForPeriod_ConflictOnCreateIsNotAFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addEmployee(t, "EMP001", 5000, true)

	_, err := env.service.GenerateForPeriod(ctx, 3, 2026)
	require.NoError(t, err)

	env.payrolls.staleExists = true
	result, err := env.service.GenerateForPeriod(ctx, 3, 2026)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Generated)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, int32(1), env.payrolls.conflicts.Load())
}

func TestGenerateForPeriod_InvalidPeriod(t *testing.T) {
	tests := []struct {
		name   string
		month  int
		year   int
		fields []string
	}{
		{name: "month above range", month: 13, year: 2026, fields: []string{"month"}},
		{name: "month zero", month: 0, year: 2026, fields: []string{"month"}},
		{name: "year zero", month: 1, year: 0, fields: []string{"year"}},
		{name: "both invalid", month: -1, year: -5, fields: []string{"month", "year"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.addEmployee(t, "EMP001", 5000, true)

			_, err := env.service.GenerateForPeriod(context.Background(), tt.month, tt.year)

			require.Error(t, err)
			assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
			var validationErrs validator.ValidationErrors
			require.ErrorAs(t, err, &validationErrs)
			details := validationErrs.ToMap()
			for _, field := range tt.fields {
				assert.Contains(t, details, field)
			}

			assert.Zero(t, env.employees.calls.Load())
			assert.Zero(t, env.attendances.countCalls.Load())
			assert.Zero(t, env.payrolls.existsCalls.Load())
			assert.Zero(t, env.payrolls.createCalls.Load())
			assert.Zero(t, env.store.PayrollCount())
		})
	}
}

func TestGenerateForPeriod_DirectoryUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.employees.err = fmt.Errorf("failed to list active employees: %w: dial tcp: connection refused", payroll.ErrUpstreamUnavailable)

	_, err := env.service.GenerateForPeriod(context.Background(), 3, 2026)

	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrUpstreamUnavailable)
	assert.Zero(t, env.payrolls.existsCalls.Load())
}

func TestGenerateForPeriod_DirectoryErrorIsNotAnOutage(t *testing.T) {
	env := newTestEnv(t)
	env.employees.err = errors.New("syntax error at or near \"FORM\"")

	_, err := env.service.GenerateForPeriod(context.Background(), 3, 2026)

	require.Error(t, err)
	assert.NotErrorIs(t, err, payroll.ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "failed to list active employees")
	assert.Zero(t, env.payrolls.existsCalls.Load())
}

func TestGenerateForPeriod_MalformedEmployeeRowIsAFailure(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(t, "E1", 5000, true)
	env.addEmployee(t, "E3", 4000, true)
	env.employees.malformed = []string{"E2"}

	result, err := env.service.GenerateForPeriod(context.Background(), 1, 2026)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Generated)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "E2", result.Failures[0].EmployeeID)
	assert.Contains(t, result.Failures[0].Error, "can't convert abc to decimal")

	exists, err := env.payrolls.Exists(context.Background(), "E1", period.Period{Month: 1, Year: 2026})
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 2, env.store.PayrollCount())
}

func TestGenerateForPeriod_MalformedRowInSQLiteStore(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewSQLiteDB(ctx, filepath.Join(t.TempDir(), "payroll.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(ctx, db))

	employees := sqlite.NewEmployeeRepository(db)
	payrolls := sqlite.NewPayrollRepository(db)
	_, err = employees.Create(ctx, employee.Employee{ID: "E1", FirstName: "Good", BaseSalary: decimal.NewFromInt(5000), IsActive: true})
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `
		INSERT INTO employees (id, first_name, last_name, base_salary, is_active, created_at)
		VALUES ('E2', 'Bad', 'Row', 'abc', 1, '2026-01-01T00:00:00Z')
	`)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewPayrollService(payrolls, employees, sqlite.NewAttendanceRepository(db), payroll.DefaultRates(), 2, logger)

	result, err := svc.GenerateForPeriod(ctx, 1, 2026)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Generated)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "E2", result.Failures[0].EmployeeID)

	exists, err := payrolls.Exists(ctx, "E1", period.Period{Month: 1, Year: 2026})
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGenerateForPeriod_UpstreamFailureAborts(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(t, "EMP001", 5000, true)
	env.addEmployee(t, "EMP002", 5000, true)
	env.attendances.countErrs["EMP002"] = fmt.Errorf("%w: pool closed", payroll.ErrUpstreamUnavailable)

	_, err := env.service.GenerateForPeriod(context.Background(), 3, 2026)

	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrUpstreamUnavailable)
}

func TestGenerateForPeriod_EmployeeFailureContinues(t *testing.T) {
	env := newTestEnv(t)
	for i := 1; i <= 3; i++ {
		env.addEmployee(t, fmt.Sprintf("EMP%03d", i), 5000, true)
	}
	env.attendances.countErrs["EMP002"] = errors.New("malformed attendance row")

	result, err := env.service.GenerateForPeriod(context.Background(), 3, 2026)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Generated)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "EMP002", result.Failures[0].EmployeeID)
	assert.Contains(t, result.Failures[0].Error, "malformed attendance row")
	assert.Equal(t, 2, env.store.PayrollCount())

	// A later run picks up the employee that failed.
	delete(env.attendances.countErrs, "EMP002")
	retry, err := env.service.GenerateForPeriod(context.Background(), 3, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, retry.Generated)
	assert.Equal(t, 3, env.store.PayrollCount())
}

func TestGenerateForPeriod_CanceledContext(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(t, "EMP001", 5000, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.service.GenerateForPeriod(ctx, 3, 2026)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, env.store.PayrollCount())
}

// ===== BACKFILL TESTS =====

func TestGenerateForAllHistoricalPeriods(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(t, "EMP001", 5000, true)
	env.addEmployee(t, "EMP002", 6000, true)
	env.addAttendance(t, "EMP001", 2025, 12, 1, 1, attendance.StatusPresent)
	env.addAttendance(t, "EMP001", 2026, 3, 1, 1, attendance.StatusLate)
	env.addAttendance(t, "EMP002", 2026, 1, 5, 2, attendance.StatusAbsent)

	result, err := env.service.GenerateForAllHistoricalPeriods(context.Background())

	require.NoError(t, err)
	require.Len(t, result.Periods, 3)
	assert.Equal(t, [2]int{3, 2026}, [2]int{result.Periods[0].Month, result.Periods[0].Year})
	assert.Equal(t, [2]int{1, 2026}, [2]int{result.Periods[1].Month, result.Periods[1].Year})
	assert.Equal(t, [2]int{12, 2025}, [2]int{result.Periods[2].Month, result.Periods[2].Year})
	assert.Equal(t, 6, result.Generated)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 6, env.store.PayrollCount())

	// Running again writes nothing new.
	again, err := env.service.GenerateForAllHistoricalPeriods(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Generated)
	assert.Equal(t, 6, env.store.PayrollCount())
}

func TestGenerateForAllHistoricalPeriods_NoAttendance(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(t, "EMP001", 5000, true)

	result, err := env.service.GenerateForAllHistoricalPeriods(context.Background())

	require.NoError(t, err)
	assert.Empty(t, result.Periods)
	assert.Zero(t, env.employees.calls.Load())
}

func TestGenerateForAllHistoricalPeriods_LogUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.attendances.periodsErr = fmt.Errorf("%w: i/o timeout", payroll.ErrUpstreamUnavailable)

	_, err := env.service.GenerateForAllHistoricalPeriods(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrUpstreamUnavailable)
}

func TestGenerateForAllHistoricalPeriods_LogErrorIsNotAnOutage(t *testing.T) {
	env := newTestEnv(t)
	env.attendances.periodsErr = errors.New("column \"attendance_date\" does not exist")

	_, err := env.service.GenerateForAllHistoricalPeriods(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, payroll.ErrUpstreamUnavailable)
	assert.Zero(t, env.employees.calls.Load())
}

func TestGenerateForAllHistoricalPeriods_AbortsOnStructuralFailure(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(t, "EMP001", 5000, true)
	env.addAttendance(t, "EMP001", 2026, 1, 1, 1, attendance.StatusPresent)
	env.addAttendance(t, "EMP001", 2026, 2, 1, 1, attendance.StatusPresent)
	env.attendances.countErrs["EMP001"] = fmt.Errorf("%w: server closed the connection", payroll.ErrUpstreamUnavailable)

	result, err := env.service.GenerateForAllHistoricalPeriods(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrUpstreamUnavailable)
	assert.Empty(t, result.Periods)
	assert.Zero(t, env.store.PayrollCount())
}

// ===== READ SIDE TESTS =====

func TestListPayrollRecords_DefaultsAndOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addEmployee(t, "EMP002", 5000, true)
	env.addEmployee(t, "EMP001", 5000, true)
	_, err := env.service.GenerateForPeriod(ctx, 1, 2026)
	require.NoError(t, err)
	_, err = env.service.GenerateForPeriod(ctx, 2, 2026)
	require.NoError(t, err)

	result, err := env.service.ListPayrollRecords(ctx, payroll.PayrollFilter{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 20, result.Limit)
	assert.Equal(t, int64(4), result.TotalCount)
	require.Len(t, result.Data, 4)
	assert.Equal(t, 2, result.Data[0].PeriodMonth)
	assert.Equal(t, "EMP001", result.Data[0].EmployeeID)
	assert.Equal(t, "Employee EMP001", result.Data[0].EmployeeName)
	assert.Equal(t, "EMP002", result.Data[1].EmployeeID)
	assert.Equal(t, 1, result.Data[2].PeriodMonth)
}

func TestListPayrollRecords_Pagination(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	for i := 1; i <= 5; i++ {
		env.addEmployee(t, fmt.Sprintf("EMP%03d", i), 5000, true)
	}
	_, err := env.service.GenerateForPeriod(ctx, 3, 2026)
	require.NoError(t, err)

	employeeID := "EMP004"
	filtered, err := env.service.ListPayrollRecords(ctx, payroll.PayrollFilter{EmployeeID: &employeeID})
	require.NoError(t, err)
	require.Len(t, filtered.Data, 1)

	page, err := env.service.ListPayrollRecords(ctx, payroll.PayrollFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalCount)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "EMP003", page.Data[0].EmployeeID)
	assert.Equal(t, "EMP004", page.Data[1].EmployeeID)
}

func TestListPayrollRecords_InvalidFilter(t *testing.T) {
	env := newTestEnv(t)
	month := 14

	_, err := env.service.ListPayrollRecords(context.Background(), payroll.PayrollFilter{PeriodMonth: &month})

	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.Contains(t, validationErrs.ToMap(), "month")
}

func TestGetPayrollSummary(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addEmployee(t, "EMP001", 10000, true)
	env.addEmployee(t, "EMP002", 1000, true)
	env.addAttendance(t, "EMP001", 2026, 3, 1, 2, attendance.StatusLate)
	env.addAttendance(t, "EMP001", 2026, 3, 3, 1, attendance.StatusAbsent)
	env.addAttendance(t, "EMP002", 2026, 3, 1, 6, attendance.StatusAbsent)
	_, err := env.service.GenerateForPeriod(ctx, 3, 2026)
	require.NoError(t, err)

	summary, err := env.service.GetPayrollSummary(ctx, 3, 2026)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalEmployees)
	assert.True(t, decimal.NewFromInt(11000).Equal(summary.TotalBaseSalary))
	assert.True(t, decimal.NewFromInt(400).Equal(summary.TotalLateDeduction))
	assert.True(t, decimal.NewFromInt(3500).Equal(summary.TotalAbsentDeduction))
	assert.True(t, decimal.NewFromInt(3900).Equal(summary.TotalDeduction))
	assert.True(t, decimal.NewFromInt(7100).Equal(summary.TotalNetSalary))

	_, err = env.service.GetPayrollSummary(ctx, 13, 2026)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestGetDepartmentSummary(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	for _, e := range []employee.Employee{
		{ID: "EMP001", FirstName: "Ana", Department: "Finance", BaseSalary: decimal.NewFromInt(10000), IsActive: true},
		{ID: "EMP002", FirstName: "Budi", Department: "Engineering", BaseSalary: decimal.NewFromInt(8000), IsActive: true},
		{ID: "EMP003", FirstName: "Citra", Department: "Engineering", BaseSalary: decimal.NewFromInt(1000), IsActive: true},
	} {
		_, err := env.employees.Create(ctx, e)
		require.NoError(t, err)
	}
	env.addAttendance(t, "EMP002", 2026, 3, 1, 2, attendance.StatusLate)
	env.addAttendance(t, "EMP003", 2026, 3, 1, 6, attendance.StatusAbsent)
	_, err := env.service.GenerateForPeriod(ctx, 3, 2026)
	require.NoError(t, err)

	summaries, err := env.service.GetDepartmentSummary(ctx, 3, 2026)

	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Engineering", summaries[0].Department)
	assert.Equal(t, 2, summaries[0].TotalEmployees)
	assert.True(t, decimal.NewFromInt(9000).Equal(summaries[0].TotalBaseSalary))
	assert.True(t, decimal.NewFromInt(3400).Equal(summaries[0].TotalDeduction))
	assert.True(t, decimal.NewFromInt(5600).Equal(summaries[0].TotalNetSalary))
	assert.Equal(t, "Finance", summaries[1].Department)
	assert.True(t, decimal.NewFromInt(10000).Equal(summaries[1].TotalNetSalary))

	list, err := env.service.ListPayrollRecords(ctx, payroll.PayrollFilter{})
	require.NoError(t, err)
	require.Len(t, list.Data, 3)
	assert.Equal(t, "Finance", list.Data[0].Department)

	empty, err := env.service.GetDepartmentSummary(ctx, 4, 2026)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = env.service.GetDepartmentSummary(ctx, 0, 2026)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestExportPayroll(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	for i := 1; i <= 25; i++ {
		env.addEmployee(t, fmt.Sprintf("EMP%03d", i), 5000, true)
	}
	_, err := env.service.GenerateForPeriod(ctx, 3, 2026)
	require.NoError(t, err)

	var buf bytes.Buffer
	month, year := 3, 2026
	err = env.service.ExportPayroll(ctx, payroll.PayrollFilter{PeriodMonth: &month, PeriodYear: &year, Limit: 5}, &buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Payroll")
	require.NoError(t, err)
	// Header, every record regardless of limit, totals.
	assert.Len(t, rows, 27)
}
