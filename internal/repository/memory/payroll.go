package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	store *Store
}

func NewPayrollRepository(store *Store) payroll.PayrollRepository {
	return &payrollRepository{store: store}
}

func (r *payrollRepository) Exists(_ context.Context, employeeID string, p period.Period) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.payroll[payrollKey{EmployeeID: employeeID, Month: p.Month, Year: p.Year}]
	return ok, nil
}

// Create checks and inserts under one write lock, which gives the same
// guarantee as a unique index.
func (r *payrollRepository) Create(_ context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	k := payrollKey{EmployeeID: record.EmployeeID, Month: record.PeriodMonth, Year: record.PeriodYear}
	if _, ok := r.store.payroll[k]; ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
	}
	record.CreatedAt = r.store.now()
	record.EmployeeName, record.Department, record.Designation = nil, nil, nil
	r.store.payroll[k] = record
	return record, nil
}

func (r *payrollRepository) List(_ context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []payroll.PayrollRecord
	for _, rec := range r.store.payroll {
		if filter.PeriodMonth != nil && rec.PeriodMonth != *filter.PeriodMonth {
			continue
		}
		if filter.PeriodYear != nil && rec.PeriodYear != *filter.PeriodYear {
			continue
		}
		if filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		if emp, ok := r.store.employees[rec.EmployeeID]; ok {
			name, department, designation := emp.FullName(), emp.Department, emp.Designation
			rec.EmployeeName = &name
			rec.Department = &department
			rec.Designation = &designation
		}
		matched = append(matched, rec)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.PeriodYear != b.PeriodYear {
			return a.PeriodYear > b.PeriodYear
		}
		if a.PeriodMonth != b.PeriodMonth {
			return a.PeriodMonth > b.PeriodMonth
		}
		return a.EmployeeID < b.EmployeeID
	})

	total := int64(len(matched))
	if filter.Limit <= 0 {
		return matched, total, nil
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * filter.Limit
	if start >= len(matched) {
		return []payroll.PayrollRecord{}, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *payrollRepository) Summary(_ context.Context, p period.Period) (payroll.PayrollSummaryResponse, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	summary := payroll.PayrollSummaryResponse{
		PeriodMonth:          p.Month,
		PeriodYear:           p.Year,
		TotalBaseSalary:      decimal.Zero,
		TotalLateDeduction:   decimal.Zero,
		TotalAbsentDeduction: decimal.Zero,
		TotalDeduction:       decimal.Zero,
		TotalNetSalary:       decimal.Zero,
	}
	for k, rec := range r.store.payroll {
		if k.Month != p.Month || k.Year != p.Year {
			continue
		}
		summary.TotalEmployees++
		summary.TotalBaseSalary = summary.TotalBaseSalary.Add(rec.BaseSalary)
		summary.TotalLateDeduction = summary.TotalLateDeduction.Add(rec.LateDeduction)
		summary.TotalAbsentDeduction = summary.TotalAbsentDeduction.Add(rec.AbsentDeduction)
		summary.TotalDeduction = summary.TotalDeduction.Add(rec.TotalDeduction)
		summary.TotalNetSalary = summary.TotalNetSalary.Add(rec.NetSalary)
	}
	return summary, nil
}

func (r *payrollRepository) SummaryByDepartment(_ context.Context, p period.Period) ([]payroll.DepartmentSummaryResponse, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byDepartment := make(map[string]*payroll.DepartmentSummaryResponse)
	for k, rec := range r.store.payroll {
		if k.Month != p.Month || k.Year != p.Year {
			continue
		}
		department := r.store.employees[rec.EmployeeID].Department
		summary, ok := byDepartment[department]
		if !ok {
			summary = &payroll.DepartmentSummaryResponse{
				Department:           department,
				PeriodMonth:          p.Month,
				PeriodYear:           p.Year,
				TotalBaseSalary:      decimal.Zero,
				TotalLateDeduction:   decimal.Zero,
				TotalAbsentDeduction: decimal.Zero,
				TotalDeduction:       decimal.Zero,
				TotalNetSalary:       decimal.Zero,
			}
			byDepartment[department] = summary
		}
		summary.TotalEmployees++
		summary.TotalBaseSalary = summary.TotalBaseSalary.Add(rec.BaseSalary)
		summary.TotalLateDeduction = summary.TotalLateDeduction.Add(rec.LateDeduction)
		summary.TotalAbsentDeduction = summary.TotalAbsentDeduction.Add(rec.AbsentDeduction)
		summary.TotalDeduction = summary.TotalDeduction.Add(rec.TotalDeduction)
		summary.TotalNetSalary = summary.TotalNetSalary.Add(rec.NetSalary)
	}

	summaries := make([]payroll.DepartmentSummaryResponse, 0, len(byDepartment))
	for _, summary := range byDepartment {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Department < summaries[j].Department })
	return summaries, nil
}
