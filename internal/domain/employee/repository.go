package employee

import "context"

// EmployeeRepository is the employee directory as seen by payroll.
type EmployeeRepository interface {
	// ListActive returns every readable employee with IsActive set, ordered
	// by ID. Rows that cannot be read are skipped and reported through err as
	// *MalformedRowError values joined with errors.Join; the readable
	// employees are still returned alongside. Any other error means the
	// listing as a whole failed.
	ListActive(ctx context.Context) ([]Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
}
