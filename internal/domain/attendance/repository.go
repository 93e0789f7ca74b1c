package attendance

import (
	"context"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
)

// AttendanceRepository is the attendance log as seen by payroll.
type AttendanceRepository interface {
	// Create records one day. A second record for the same employee and date
	// fails with ErrAttendanceAlreadyRecorded.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// CountByStatus groups the employee's records inside p by status.
	// Statuses with no records are omitted.
	CountByStatus(ctx context.Context, employeeID string, p period.Period) ([]StatusCount, error)

	// ListDistinctPeriods returns every period that has at least one record,
	// newest first (year desc, month desc).
	ListDistinctPeriods(ctx context.Context) ([]period.Period, error)
}
