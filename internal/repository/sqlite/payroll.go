package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	db *sql.DB
}

func NewPayrollRepository(db *sql.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

func (r *payrollRepository) Exists(ctx context.Context, employeeID string, p period.Period) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payroll WHERE employee_id = ? AND month = ? AND year = ?)`,
		employeeID, p.Month, p.Year,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check payroll record: %w", classify(err))
	}
	return exists, nil
}

func (r *payrollRepository) Create(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	record.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO payroll (
			id, employee_id, month, year, base_salary,
			total_days, present_days, late_days, absent_days,
			late_deduction, absent_deduction, total_deduction, net_salary, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_id, month, year) DO NOTHING
	`,
		record.ID, record.EmployeeID, record.PeriodMonth, record.PeriodYear, record.BaseSalary.String(),
		record.TotalDays, record.PresentDays, record.LateDays, record.AbsentDays,
		record.LateDeduction.String(), record.AbsentDeduction.String(), record.TotalDeduction.String(),
		record.NetSalary.String(), formatTime(record.CreatedAt),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", classify(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", classify(err))
	}
	if affected == 0 {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
	}

	return record, nil
}

func (r *payrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.PeriodMonth != nil {
		where = append(where, "p.month = ?")
		args = append(args, *filter.PeriodMonth)
	}
	if filter.PeriodYear != nil {
		where = append(where, "p.year = ?")
		args = append(args, *filter.PeriodYear)
	}
	if filter.EmployeeID != nil {
		where = append(where, "p.employee_id = ?")
		args = append(args, *filter.EmployeeID)
	}

	baseQuery := `
		FROM payroll p
		JOIN employees e ON p.employee_id = e.id
		WHERE ` + strings.Join(where, " AND ")

	var totalCount int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", classify(err))
	}

	selectQuery := `
		SELECT p.id, p.employee_id, p.month, p.year, p.base_salary,
			   p.total_days, p.present_days, p.late_days, p.absent_days,
			   p.late_deduction, p.absent_deduction, p.total_deduction, p.net_salary,
			   p.created_at, TRIM(e.first_name || ' ' || e.last_name), e.department, e.designation
	` + baseQuery + `
		ORDER BY p.year DESC, p.month DESC, p.employee_id ASC
	`
	if filter.Limit > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		selectQuery += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", classify(err))
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll records: %w", classify(err))
	}

	return records, totalCount, nil
}

// Summary sums in Go; SQLite SUM over text would go through float64.
func (r *payrollRepository) Summary(ctx context.Context, p period.Period) (payroll.PayrollSummaryResponse, error) {
	month, year := p.Month, p.Year
	records, _, err := r.List(ctx, payroll.PayrollFilter{PeriodMonth: &month, PeriodYear: &year})
	if err != nil {
		return payroll.PayrollSummaryResponse{}, fmt.Errorf("failed to get payroll summary: %w", err)
	}

	summary := payroll.PayrollSummaryResponse{
		PeriodMonth:          p.Month,
		PeriodYear:           p.Year,
		TotalEmployees:       len(records),
		TotalBaseSalary:      decimal.Zero,
		TotalLateDeduction:   decimal.Zero,
		TotalAbsentDeduction: decimal.Zero,
		TotalDeduction:       decimal.Zero,
		TotalNetSalary:       decimal.Zero,
	}
	for _, rec := range records {
		summary.TotalBaseSalary = summary.TotalBaseSalary.Add(rec.BaseSalary)
		summary.TotalLateDeduction = summary.TotalLateDeduction.Add(rec.LateDeduction)
		summary.TotalAbsentDeduction = summary.TotalAbsentDeduction.Add(rec.AbsentDeduction)
		summary.TotalDeduction = summary.TotalDeduction.Add(rec.TotalDeduction)
		summary.TotalNetSalary = summary.TotalNetSalary.Add(rec.NetSalary)
	}

	return summary, nil
}

// SummaryByDepartment groups in Go for the same reason as Summary.
func (r *payrollRepository) SummaryByDepartment(ctx context.Context, p period.Period) ([]payroll.DepartmentSummaryResponse, error) {
	month, year := p.Month, p.Year
	records, _, err := r.List(ctx, payroll.PayrollFilter{PeriodMonth: &month, PeriodYear: &year})
	if err != nil {
		return nil, fmt.Errorf("failed to get department payroll summary: %w", err)
	}

	var summaries []payroll.DepartmentSummaryResponse
	index := make(map[string]int)
	for _, rec := range records {
		var department string
		if rec.Department != nil {
			department = *rec.Department
		}
		i, ok := index[department]
		if !ok {
			i = len(summaries)
			index[department] = i
			summaries = append(summaries, payroll.DepartmentSummaryResponse{
				Department:           department,
				PeriodMonth:          p.Month,
				PeriodYear:           p.Year,
				TotalBaseSalary:      decimal.Zero,
				TotalLateDeduction:   decimal.Zero,
				TotalAbsentDeduction: decimal.Zero,
				TotalDeduction:       decimal.Zero,
				TotalNetSalary:       decimal.Zero,
			})
		}
		s := &summaries[i]
		s.TotalEmployees++
		s.TotalBaseSalary = s.TotalBaseSalary.Add(rec.BaseSalary)
		s.TotalLateDeduction = s.TotalLateDeduction.Add(rec.LateDeduction)
		s.TotalAbsentDeduction = s.TotalAbsentDeduction.Add(rec.AbsentDeduction)
		s.TotalDeduction = s.TotalDeduction.Add(rec.TotalDeduction)
		s.TotalNetSalary = s.TotalNetSalary.Add(rec.NetSalary)
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Department < summaries[j].Department })
	return summaries, nil
}

func scanPayrollRecord(rows *sql.Rows) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	var createdAt string
	var employeeName, department, designation sql.NullString
	if err := rows.Scan(
		&rec.ID, &rec.EmployeeID, &rec.PeriodMonth, &rec.PeriodYear, &rec.BaseSalary,
		&rec.TotalDays, &rec.PresentDays, &rec.LateDays, &rec.AbsentDays,
		&rec.LateDeduction, &rec.AbsentDeduction, &rec.TotalDeduction, &rec.NetSalary,
		&createdAt, &employeeName, &department, &designation,
	); err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to scan payroll record: %w", err)
	}
	rec.CreatedAt = parseTime(createdAt)
	if employeeName.Valid {
		rec.EmployeeName = &employeeName.String
	}
	if department.Valid {
		rec.Department = &department.String
	}
	if designation.Valid {
		rec.Designation = &designation.String
	}
	return rec, nil
}
