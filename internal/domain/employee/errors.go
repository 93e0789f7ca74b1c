package employee

import (
	"errors"
	"fmt"
)

var (
	ErrEmployeeIDRequired = errors.New("employee id is required")
	ErrEmployeeIDExists   = errors.New("employee id already exists")
	ErrNegativeBaseSalary = errors.New("base salary must be non-negative")
)

// MalformedRowError is a directory row that could not be read as an
// Employee. EmployeeID is empty when even the id was unreadable.
type MalformedRowError struct {
	EmployeeID string
	Err        error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed employee row %q: %v", e.EmployeeID, e.Err)
}

func (e *MalformedRowError) Unwrap() error {
	return e.Err
}

// MalformedRows splits an error returned by ListActive. ok is false when err
// carries anything other than *MalformedRowError values; a nil err yields no
// rows and ok true.
func MalformedRows(err error) (rows []*MalformedRowError, ok bool) {
	if err == nil {
		return nil, true
	}

	errs := []error{err}
	if joined, isJoined := err.(interface{ Unwrap() []error }); isJoined {
		errs = joined.Unwrap()
	}

	for _, e := range errs {
		var rowErr *MalformedRowError
		if !errors.As(e, &rowErr) {
			return nil, false
		}
		rows = append(rows, rowErr)
	}
	return rows, true
}
