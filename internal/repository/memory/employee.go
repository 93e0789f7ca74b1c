package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
)

type employeeRepository struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepository{store: store}
}

func (r *employeeRepository) ListActive(_ context.Context) ([]employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var employees []employee.Employee
	var malformed []*employee.MalformedRowError
	for _, emp := range r.store.employees {
		if !emp.IsActive {
			continue
		}
		if err := emp.Validate(); err != nil {
			malformed = append(malformed, &employee.MalformedRowError{EmployeeID: emp.ID, Err: err})
			continue
		}
		employees = append(employees, emp)
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })
	sort.Slice(malformed, func(i, j int) bool { return malformed[i].EmployeeID < malformed[j].EmployeeID })

	errs := make([]error, 0, len(malformed))
	for _, m := range malformed {
		errs = append(errs, m)
	}
	return employees, errors.Join(errs...)
}

func (r *employeeRepository) Create(_ context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	if err := newEmployee.Validate(); err != nil {
		return employee.Employee{}, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.employees[newEmployee.ID]; ok {
		return employee.Employee{}, employee.ErrEmployeeIDExists
	}
	newEmployee.CreatedAt = r.store.now()
	r.store.employees[newEmployee.ID] = newEmployee
	return newEmployee, nil
}
