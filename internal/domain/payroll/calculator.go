package payroll

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/shopspring/decimal"
)

// Tally folds grouped status counts into day counters. Repeated rows for
// the same status are summed.
func Tally(counts []attendance.StatusCount) AttendanceTally {
	var t AttendanceTally
	for _, c := range counts {
		switch c.Status {
		case attendance.StatusPresent:
			t.Present += c.Count
		case attendance.StatusLate:
			t.Late += c.Count
		case attendance.StatusAbsent:
			t.Absent += c.Count
		default:
			if t.Ignored == nil {
				t.Ignored = make(map[attendance.Status]int)
			}
			t.Ignored[c.Status] += c.Count
		}
	}
	return t
}

// Compute derives the payroll record for emp in p. It is the only place the
// deduction formula lives. Net salary is not clamped and may be negative.
func Compute(emp employee.Employee, p period.Period, tally AttendanceTally, rates Rates) PayrollRecord {
	lateDeduction := decimal.NewFromInt(int64(tally.Late)).Mul(rates.Late)
	absentDeduction := decimal.NewFromInt(int64(tally.Absent)).Mul(rates.Absent)
	totalDeduction := lateDeduction.Add(absentDeduction)

	return PayrollRecord{
		EmployeeID:      emp.ID,
		PeriodMonth:     p.Month,
		PeriodYear:      p.Year,
		BaseSalary:      emp.BaseSalary,
		TotalDays:       tally.TotalDays(),
		PresentDays:     tally.Present,
		LateDays:        tally.Late,
		AbsentDays:      tally.Absent,
		LateDeduction:   lateDeduction,
		AbsentDeduction: absentDeduction,
		TotalDeduction:  totalDeduction,
		NetSalary:       emp.BaseSalary.Sub(totalDeduction),
	}
}
