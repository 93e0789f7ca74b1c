package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func (r *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	// base_salary comes back as text: pgx closes the result set on a scan
	// error, so conversion happens per row in Go.
	query := `
		SELECT id, first_name, last_name, department, designation, base_salary::text, is_active, created_at
		FROM employees
		WHERE is_active = TRUE
		ORDER BY id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", classify(err))
	}
	defer rows.Close()

	var employees []employee.Employee
	var malformed []error
	for rows.Next() {
		var e employee.Employee
		var baseSalary string
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Department, &e.Designation,
			&baseSalary, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}

		salary, err := decimal.NewFromString(baseSalary)
		if err != nil {
			malformed = append(malformed, &employee.MalformedRowError{EmployeeID: e.ID, Err: err})
			continue
		}
		e.BaseSalary = salary
		if err := e.Validate(); err != nil {
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

func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	if err := newEmployee.Validate(); err != nil {
		return employee.Employee{}, err
	}

	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (id, first_name, last_name, department, designation, base_salary, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, first_name, last_name, department, designation, base_salary, is_active, created_at
	`

	var e employee.Employee
	err := q.QueryRow(ctx, query,
		newEmployee.ID, newEmployee.FirstName, newEmployee.LastName, newEmployee.Department, newEmployee.Designation,
		newEmployee.BaseSalary, newEmployee.IsActive,
	).Scan(&e.ID, &e.FirstName, &e.LastName, &e.Department, &e.Designation, &e.BaseSalary, &e.IsActive, &e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "employees_pkey") {
			return employee.Employee{}, employee.ErrEmployeeIDExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", classify(err))
	}

	return e, nil
}
