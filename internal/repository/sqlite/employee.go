package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/shopspring/decimal"
)

type employeeRepositoryImpl struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func (r *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, department, designation, base_salary, is_active, created_at
		FROM employees
		WHERE is_active = 1
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", classify(err))
	}
	defer rows.Close()

	var employees []employee.Employee
	var malformed []error
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			malformed = append(malformed, &employee.MalformedRowError{EmployeeID: e.ID, Err: err})
			continue
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", classify(err))
	}

	return employees, errors.Join(malformed...)
}

// scanEmployee reads one row. Salary is scanned as text and parsed here so
// that a bad value fails this row only.
func scanEmployee(rows *sql.Rows) (employee.Employee, error) {
	var e employee.Employee
	var baseSalary, createdAt string
	if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Department, &e.Designation,
		&baseSalary, &e.IsActive, &createdAt); err != nil {
		return e, fmt.Errorf("failed to scan employee: %w", err)
	}

	salary, err := decimal.NewFromString(baseSalary)
	if err != nil {
		return e, fmt.Errorf("invalid base salary %q: %w", baseSalary, err)
	}
	e.BaseSalary = salary
	e.CreatedAt = parseTime(createdAt)

	if err := e.Validate(); err != nil {
		return e, err
	}
	return e, nil
}

func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	if err := newEmployee.Validate(); err != nil {
		return employee.Employee{}, err
	}

	newEmployee.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO employees (id, first_name, last_name, department, designation, base_salary, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, newEmployee.ID, newEmployee.FirstName, newEmployee.LastName, newEmployee.Department, newEmployee.Designation,
		newEmployee.BaseSalary.String(), newEmployee.IsActive, formatTime(newEmployee.CreatedAt))
	if err != nil {
		if isConstraintViolation(err) {
			return employee.Employee{}, employee.ErrEmployeeIDExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", classify(err))
	}

	return newEmployee, nil
}
