package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
)

// The unique constraints are what make generation idempotent under
// concurrency; the application-level existence check only saves work.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id          TEXT PRIMARY KEY,
		first_name  TEXT NOT NULL,
		last_name   TEXT NOT NULL DEFAULT '',
		department  TEXT NOT NULL DEFAULT '',
		designation TEXT NOT NULL DEFAULT '',
		base_salary NUMERIC(12, 2) NOT NULL CHECK (base_salary >= 0),
		is_active   BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE employees ADD COLUMN IF NOT EXISTS department TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE employees ADD COLUMN IF NOT EXISTS designation TEXT NOT NULL DEFAULT ''`,
	`CREATE INDEX IF NOT EXISTS idx_employees_department ON employees (department)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id              TEXT PRIMARY KEY,
		employee_id     TEXT NOT NULL REFERENCES employees (id),
		attendance_date DATE NOT NULL,
		status          TEXT NOT NULL,
		check_in_time   TIMESTAMPTZ,
		check_out_time  TIMESTAMPTZ,
		remarks         TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uk_attendance_employee_date UNIQUE (employee_id, attendance_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance (attendance_date)`,
	`CREATE TABLE IF NOT EXISTS payroll (
		id               TEXT PRIMARY KEY,
		employee_id      TEXT NOT NULL REFERENCES employees (id),
		month            SMALLINT NOT NULL CHECK (month BETWEEN 1 AND 12),
		year             INTEGER NOT NULL CHECK (year > 0),
		base_salary      NUMERIC(12, 2) NOT NULL,
		total_days       INTEGER NOT NULL DEFAULT 0,
		present_days     INTEGER NOT NULL DEFAULT 0,
		late_days        INTEGER NOT NULL DEFAULT 0,
		absent_days      INTEGER NOT NULL DEFAULT 0,
		late_deduction   NUMERIC(12, 2) NOT NULL DEFAULT 0,
		absent_deduction NUMERIC(12, 2) NOT NULL DEFAULT 0,
		total_deduction  NUMERIC(12, 2) NOT NULL DEFAULT 0,
		net_salary       NUMERIC(12, 2) NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uk_payroll_employee_period UNIQUE (employee_id, month, year)
	)`,
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *database.DB) error {
	return WithTransaction(ctx, db, func(ctx context.Context) error {
		q := GetQuerier(ctx, db)
		for _, stmt := range schemaStatements {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", classify(err))
			}
		}
		return nil
	})
}
