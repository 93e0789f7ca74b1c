// Command seed loads sample employees and weekday attendance for the last
// few months. It can be re-run; existing rows are left alone.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository"
	"github.com/shopspring/decimal"
)

var sampleEmployees = []employee.Employee{
	{ID: "EMP001", FirstName: "Budi", LastName: "Santoso", Department: "Engineering", Designation: "Backend Engineer", BaseSalary: decimal.NewFromInt(8500000), IsActive: true},
	{ID: "EMP002", FirstName: "Siti", LastName: "Aminah", Department: "Finance", Designation: "Accountant", BaseSalary: decimal.NewFromInt(7200000), IsActive: true},
	{ID: "EMP003", FirstName: "Agus", LastName: "Pratama", Department: "Operations", Designation: "Support Officer", BaseSalary: decimal.NewFromInt(6400000), IsActive: true},
	{ID: "EMP004", FirstName: "Dewi", LastName: "Lestari", Department: "Engineering", Designation: "Engineering Manager", BaseSalary: decimal.NewFromInt(9100000), IsActive: true},
	{ID: "EMP005", FirstName: "Rudi", LastName: "Hartono", Department: "Finance", Designation: "Clerk", BaseSalary: decimal.NewFromInt(5800000), IsActive: false},
}

func main() {
	months := flag.Int("months", 3, "number of past months to fill with attendance")
	flag.Parse()

	if err := run(*months); err != nil {
		fmt.Fprintln(os.Stderr, "seed failed:", err)
		os.Exit(1)
	}
}

func run(months int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()

	repos, err := repository.Open(ctx, cfg.Store, cfg.DatabaseURL())
	if err != nil {
		return err
	}
	defer repos.Close()

	for _, emp := range sampleEmployees {
		if _, err := repos.Employees.Create(ctx, emp); err != nil && !errors.Is(err, employee.ErrEmployeeIDExists) {
			return fmt.Errorf("failed to create employee %s: %w", emp.ID, err)
		}
	}

	p := period.Of(time.Now().UTC())
	created := 0
	for m := 0; m < months; m++ {
		p = p.Previous()
		for day := p.Start(); day.Before(p.End()); day = day.AddDate(0, 0, 1) {
			if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
				continue
			}
			for i, emp := range sampleEmployees {
				_, err := repos.Attendance.Create(ctx, attendance.Attendance{
					EmployeeID: emp.ID,
					Date:       day,
					Status:     sampleStatus(i, day),
				})
				if errors.Is(err, attendance.ErrAttendanceAlreadyRecorded) {
					continue
				}
				if err != nil {
					return fmt.Errorf("failed to record attendance for %s on %s: %w", emp.ID, day.Format("2006-01-02"), err)
				}
				created++
			}
		}
	}

	slog.Info("Seed completed", "employees", len(sampleEmployees), "attendance_created", created, "months", months)
	return nil
}

// sampleStatus spreads Late and Absent days deterministically so repeated
// seeds produce the same payroll.
func sampleStatus(employeeIndex int, day time.Time) attendance.Status {
	switch (day.YearDay() + employeeIndex*7) % 20 {
	case 0:
		return attendance.StatusAbsent
	case 1, 2:
		return attendance.StatusLate
	default:
		return attendance.StatusPresent
	}
}
