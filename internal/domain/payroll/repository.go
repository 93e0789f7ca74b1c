package payroll

import (
	"context"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
)

// PayrollRepository is the payroll ledger. Implementations must enforce
// uniqueness of (employee_id, month, year) themselves; Exists is only a
// shortcut for callers.
type PayrollRepository interface {
	Exists(ctx context.Context, employeeID string, p period.Period) (bool, error)

	// Create inserts a new record. A record for the same employee and period
	// fails with ErrPayrollRecordAlreadyExists and leaves the stored one
	// untouched.
	Create(ctx context.Context, record PayrollRecord) (PayrollRecord, error)

	// List applies filter; a non-positive Limit returns every match.
	List(ctx context.Context, filter PayrollFilter) ([]PayrollRecord, int64, error)
	Summary(ctx context.Context, p period.Period) (PayrollSummaryResponse, error)

	// SummaryByDepartment groups p's records by the employee's current
	// department, ordered by department name.
	SummaryByDepartment(ctx context.Context, p period.Period) ([]DepartmentSummaryResponse, error)
}
