// Package memory keeps employees, attendance and payroll records in process
// memory. It backs tests and the "memory" store driver.
package memory

import (
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
)

type attendanceKey struct {
	EmployeeID string
	Date       string
}

type payrollKey struct {
	EmployeeID string
	Month      int
	Year       int
}

// Store is shared by the three repositories so that joins (employee names on
// payroll records) see a consistent view.
type Store struct {
	mu         sync.RWMutex
	employees  map[string]employee.Employee
	attendance map[attendanceKey]attendance.Attendance
	payroll    map[payrollKey]payroll.PayrollRecord
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		employees:  make(map[string]employee.Employee),
		attendance: make(map[attendanceKey]attendance.Attendance),
		payroll:    make(map[payrollKey]payroll.PayrollRecord),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// PayrollCount returns the number of stored payroll records.
func (s *Store) PayrollCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payroll)
}
