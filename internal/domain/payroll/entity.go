package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/shopspring/decimal"
)

// PayrollRecord - Generated payroll for one employee and one period.
// Records are written once and never updated.
type PayrollRecord struct {
	ID              string
	EmployeeID      string
	PeriodMonth     int
	PeriodYear      int
	BaseSalary      decimal.Decimal
	TotalDays       int
	PresentDays     int
	LateDays        int
	AbsentDays      int
	LateDeduction   decimal.Decimal
	AbsentDeduction decimal.Decimal
	TotalDeduction  decimal.Decimal
	NetSalary       decimal.Decimal
	CreatedAt       time.Time

	// Joined fields
	EmployeeName *string
	Department   *string
	Designation  *string
}

func (r PayrollRecord) Period() period.Period {
	return period.Period{Month: r.PeriodMonth, Year: r.PeriodYear}
}

// Rates - Fixed penalty per Late and per Absent day, in the same unit as
// the base salary.
type Rates struct {
	Late   decimal.Decimal
	Absent decimal.Decimal
}

func DefaultRates() Rates {
	return Rates{
		Late:   decimal.NewFromInt(200),
		Absent: decimal.NewFromInt(500),
	}
}

func (r Rates) Validate() error {
	if r.Late.IsNegative() || r.Absent.IsNegative() {
		return ErrInvalidRates
	}
	return nil
}

// AttendanceTally - Day counts for one employee in one period.
type AttendanceTally struct {
	Present int
	Late    int
	Absent  int

	// Ignored holds counts for statuses outside Present/Late/Absent.
	// They feed no counter and no deduction.
	Ignored map[attendance.Status]int
}

func (t AttendanceTally) TotalDays() int {
	return t.Present + t.Late + t.Absent
}
