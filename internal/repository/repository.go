// Package repository opens the store selected by configuration.
package repository

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/sqlite"
)

type Repositories struct {
	Employees  employee.EmployeeRepository
	Attendance attendance.AttendanceRepository
	Payroll    payroll.PayrollRepository

	close func()
}

// Close releases the underlying connections. Safe to call on a memory store.
func (r *Repositories) Close() {
	if r.close != nil {
		r.close()
	}
}

// Open connects to the configured store and applies its schema.
func Open(ctx context.Context, cfg config.StoreConfig, databaseURL string) (*Repositories, error) {
	switch cfg.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, databaseURL, database.DefaultPoolOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := postgresql.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &Repositories{
			Employees:  postgresql.NewEmployeeRepository(db),
			Attendance: postgresql.NewAttendanceRepository(db),
			Payroll:    postgresql.NewPayrollRepository(db),
			close:      db.Close,
		}, nil

	case config.StoreDriverSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := sqlite.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &Repositories{
			Employees:  sqlite.NewEmployeeRepository(db),
			Attendance: sqlite.NewAttendanceRepository(db),
			Payroll:    sqlite.NewPayrollRepository(db),
			close:      func() { db.Close() },
		}, nil

	case config.StoreDriverMemory:
		store := memory.NewStore()
		return &Repositories{
			Employees:  memory.NewEmployeeRepository(store),
			Attendance: memory.NewAttendanceRepository(store),
			Payroll:    memory.NewPayrollRepository(store),
		}, nil
	}

	return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
}
