package payroll

import (
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== GENERATION DTOs ==========

// GeneratePayrollRequest accepts month and year as JSON numbers or numeric
// strings.
type GeneratePayrollRequest struct {
	Month json.Number `json:"month"`
	Year  json.Number `json:"year"`
}

// Period parses and validates the request. Failures wrap ErrInvalidPeriod.
func (r *GeneratePayrollRequest) Period() (period.Period, error) {
	p, err := period.Parse(r.Month.String(), r.Year.String())
	if err != nil {
		return period.Period{}, InvalidPeriodError(r.Month.String(), r.Year.String())
	}
	return p, nil
}

// InvalidPeriodError describes which half of a period failed validation.
// The result matches both ErrInvalidPeriod and validator.ValidationErrors.
func InvalidPeriodError(month, year string) error {
	var errs validator.ValidationErrors

	if m, ok := validator.ParseInt(month); !ok || m < 1 || m > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be an integer between 1 and 12"})
	}
	if y, ok := validator.ParseInt(year); !ok || y < 1 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be a positive integer"})
	}
	if len(errs) == 0 {
		return ErrInvalidPeriod
	}
	return fmt.Errorf("%w: %w", ErrInvalidPeriod, errs)
}

type EmployeeFailureResponse struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

// GenerateResult reports one period's generation. Employees that already
// had a record are neither generated nor failed.
type GenerateResult struct {
	Month     int                       `json:"month"`
	Year      int                       `json:"year"`
	Generated int                       `json:"generated"`
	Failed    int                       `json:"failed"`
	Failures  []EmployeeFailureResponse `json:"failures,omitempty"`
}

type BackfillResult struct {
	Periods   []GenerateResult `json:"periods"`
	Generated int              `json:"generated"`
	Failed    int              `json:"failed"`
}

// ========== PAYROLL RECORD DTOs ==========

type PayrollRecordResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    string          `json:"employee_name"`
	Department      string          `json:"department"`
	Designation     string          `json:"designation"`
	PeriodMonth     int             `json:"period_month"`
	PeriodYear      int             `json:"period_year"`
	BaseSalary      decimal.Decimal `json:"base_salary"`
	TotalDays       int             `json:"total_days"`
	PresentDays     int             `json:"present_days"`
	LateDays        int             `json:"late_days"`
	AbsentDays      int             `json:"absent_days"`
	LateDeduction   decimal.Decimal `json:"late_deduction"`
	AbsentDeduction decimal.Decimal `json:"absent_deduction"`
	TotalDeduction  decimal.Decimal `json:"total_deduction"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	CreatedAt       string          `json:"created_at"`
}

type PayrollFilter struct {
	PeriodMonth *int    `json:"period_month,omitempty"`
	PeriodYear  *int    `json:"period_year,omitempty"`
	EmployeeID  *string `json:"employee_id,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
}

func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.PeriodMonth != nil && (*f.PeriodMonth < 1 || *f.PeriodMonth > 12) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if f.PeriodYear != nil && *f.PeriodYear < 1 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be a positive integer"})
	}
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "must be non-negative"})
	}
	if f.Limit < 0 || f.Limit > 500 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "must be between 0 and 500"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListPayrollRecordResponse struct {
	Data       []PayrollRecordResponse `json:"data"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
}

type PayrollSummaryResponse struct {
	PeriodMonth          int             `json:"period_month"`
	PeriodYear           int             `json:"period_year"`
	TotalEmployees       int             `json:"total_employees"`
	TotalBaseSalary      decimal.Decimal `json:"total_base_salary"`
	TotalLateDeduction   decimal.Decimal `json:"total_late_deduction"`
	TotalAbsentDeduction decimal.Decimal `json:"total_absent_deduction"`
	TotalDeduction       decimal.Decimal `json:"total_deduction"`
	TotalNetSalary       decimal.Decimal `json:"total_net_salary"`
}

// DepartmentSummaryResponse totals one period's records per department of
// the employee at read time.
type DepartmentSummaryResponse struct {
	Department           string          `json:"department"`
	PeriodMonth          int             `json:"period_month"`
	PeriodYear           int             `json:"period_year"`
	TotalEmployees       int             `json:"total_employees"`
	TotalBaseSalary      decimal.Decimal `json:"total_base_salary"`
	TotalLateDeduction   decimal.Decimal `json:"total_late_deduction"`
	TotalAbsentDeduction decimal.Decimal `json:"total_absent_deduction"`
	TotalDeduction       decimal.Decimal `json:"total_deduction"`
	TotalNetSalary       decimal.Decimal `json:"total_net_salary"`
}
