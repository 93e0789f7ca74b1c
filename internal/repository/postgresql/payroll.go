package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/jackc/pgx/v5"
)

const payrollPeriodConstraint = "uk_payroll_employee_period"

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

func (r *payrollRepository) Exists(ctx context.Context, employeeID string, p period.Period) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS (SELECT 1 FROM payroll WHERE employee_id = $1 AND month = $2 AND year = $3)`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, p.Month, p.Year).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check payroll record: %w", classify(err))
	}
	return exists, nil
}

func (r *payrollRepository) Create(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	// DO NOTHING returns no row when a concurrent writer won the race.
	query := `
		INSERT INTO payroll (
			id, employee_id, month, year, base_salary,
			total_days, present_days, late_days, absent_days,
			late_deduction, absent_deduction, total_deduction, net_salary
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT ON CONSTRAINT uk_payroll_employee_period DO NOTHING
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		record.ID, record.EmployeeID, record.PeriodMonth, record.PeriodYear, record.BaseSalary,
		record.TotalDays, record.PresentDays, record.LateDays, record.AbsentDays,
		record.LateDeduction, record.AbsentDeduction, record.TotalDeduction, record.NetSalary,
	).Scan(&record.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err, payrollPeriodConstraint) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", classify(err))
	}

	return record, nil
}

func (r *payrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM payroll p
		JOIN employees e ON p.employee_id = e.id
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if filter.PeriodMonth != nil {
		baseQuery += fmt.Sprintf(" AND p.month = $%d", argIdx)
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		baseQuery += fmt.Sprintf(" AND p.year = $%d", argIdx)
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND p.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Count query
	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", classify(err))
	}

	selectQuery := `
		SELECT p.id, p.employee_id, p.month, p.year, p.base_salary,
			   p.total_days, p.present_days, p.late_days, p.absent_days,
			   p.late_deduction, p.absent_deduction, p.total_deduction, p.net_salary,
			   p.created_at, TRIM(e.first_name || ' ' || e.last_name) AS employee_name,
			   e.department, e.designation
	` + baseQuery + `
		ORDER BY p.year DESC, p.month DESC, p.employee_id ASC
	`

	// Pagination
	if filter.Limit > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		selectQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", classify(err))
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		var rec payroll.PayrollRecord
		if err := rows.Scan(
			&rec.ID, &rec.EmployeeID, &rec.PeriodMonth, &rec.PeriodYear, &rec.BaseSalary,
			&rec.TotalDays, &rec.PresentDays, &rec.LateDays, &rec.AbsentDays,
			&rec.LateDeduction, &rec.AbsentDeduction, &rec.TotalDeduction, &rec.NetSalary,
			&rec.CreatedAt, &rec.EmployeeName, &rec.Department, &rec.Designation,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll records: %w", classify(err))
	}

	return records, totalCount, nil
}

func (r *payrollRepository) Summary(ctx context.Context, p period.Period) (payroll.PayrollSummaryResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) AS total_employees,
			COALESCE(SUM(base_salary), 0) AS total_base_salary,
			COALESCE(SUM(late_deduction), 0) AS total_late_deduction,
			COALESCE(SUM(absent_deduction), 0) AS total_absent_deduction,
			COALESCE(SUM(total_deduction), 0) AS total_deduction,
			COALESCE(SUM(net_salary), 0) AS total_net_salary
		FROM payroll
		WHERE month = $1 AND year = $2
	`

	var summary payroll.PayrollSummaryResponse
	err := q.QueryRow(ctx, query, p.Month, p.Year).Scan(
		&summary.TotalEmployees, &summary.TotalBaseSalary, &summary.TotalLateDeduction,
		&summary.TotalAbsentDeduction, &summary.TotalDeduction, &summary.TotalNetSalary,
	)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, fmt.Errorf("failed to get payroll summary: %w", classify(err))
	}

	summary.PeriodMonth = p.Month
	summary.PeriodYear = p.Year

	return summary, nil
}

func (r *payrollRepository) SummaryByDepartment(ctx context.Context, p period.Period) ([]payroll.DepartmentSummaryResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			e.department,
			COUNT(*) AS total_employees,
			COALESCE(SUM(p.base_salary), 0) AS total_base_salary,
			COALESCE(SUM(p.late_deduction), 0) AS total_late_deduction,
			COALESCE(SUM(p.absent_deduction), 0) AS total_absent_deduction,
			COALESCE(SUM(p.total_deduction), 0) AS total_deduction,
			COALESCE(SUM(p.net_salary), 0) AS total_net_salary
		FROM payroll p
		JOIN employees e ON p.employee_id = e.id
		WHERE p.month = $1 AND p.year = $2
		GROUP BY e.department
		ORDER BY e.department
	`

	rows, err := q.Query(ctx, query, p.Month, p.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to get department payroll summary: %w", classify(err))
	}
	defer rows.Close()

	var summaries []payroll.DepartmentSummaryResponse
	for rows.Next() {
		summary := payroll.DepartmentSummaryResponse{PeriodMonth: p.Month, PeriodYear: p.Year}
		if err := rows.Scan(
			&summary.Department, &summary.TotalEmployees, &summary.TotalBaseSalary, &summary.TotalLateDeduction,
			&summary.TotalAbsentDeduction, &summary.TotalDeduction, &summary.TotalNetSalary,
		); err != nil {
			return nil, fmt.Errorf("failed to scan department payroll summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate department payroll summary: %w", classify(err))
	}

	return summaries, nil
}
