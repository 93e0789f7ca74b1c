package payroll

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
)

var (
	ErrInvalidPeriod              = errors.New("invalid payroll period")
	ErrUpstreamUnavailable        = errors.New("payroll data source unavailable")
	ErrPayrollRecordAlreadyExists = errors.New("payroll record already exists for this period")
	ErrInvalidRates               = errors.New("deduction rates must be non-negative")
)

// EmployeeFailure is a non-fatal error scoped to one employee in one period.
type EmployeeFailure struct {
	EmployeeID string
	Period     period.Period
	Err        error
}

func (e *EmployeeFailure) Error() string {
	return fmt.Sprintf("payroll for employee %s in %s: %v", e.EmployeeID, e.Period, e.Err)
}

func (e *EmployeeFailure) Unwrap() error {
	return e.Err
}
