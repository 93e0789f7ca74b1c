package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/google/uuid"
)

type attendanceRepositoryImpl struct {
	db *sql.DB
}

func NewAttendanceRepository(db *sql.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

func (r *attendanceRepositoryImpl) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if a.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
		}
		a.ID = id.String()
	}
	a.CreatedAt = time.Now().UTC()

	var remarks sql.NullString
	if a.Remarks != nil {
		remarks = sql.NullString{String: *a.Remarks, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (id, employee_id, attendance_date, status, check_in_time, check_out_time, remarks, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.EmployeeID, a.Date.Format(dateLayout), string(a.Status),
		nullableTime(a.CheckIn), nullableTime(a.CheckOut), remarks, formatTime(a.CreatedAt))
	if err != nil {
		if isConstraintViolation(err) {
			return attendance.Attendance{}, attendance.ErrAttendanceAlreadyRecorded
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", classify(err))
	}

	return a, nil
}

func (r *attendanceRepositoryImpl) CountByStatus(ctx context.Context, employeeID string, p period.Period) ([]attendance.StatusCount, error) {
	// YYYY-MM-DD text compares chronologically.
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM attendance
		WHERE employee_id = ?
			AND attendance_date >= ?
			AND attendance_date < ?
		GROUP BY status
	`, employeeID, p.Start().Format(dateLayout), p.End().Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to count attendance: %w", classify(err))
	}
	defer rows.Close()

	var counts []attendance.StatusCount
	for rows.Next() {
		var c attendance.StatusCount
		var status string
		if err := rows.Scan(&status, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan attendance count: %w", err)
		}
		c.Status = attendance.Status(status)
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance counts: %w", classify(err))
	}

	return counts, nil
}

func (r *attendanceRepositoryImpl) ListDistinctPeriods(ctx context.Context) ([]period.Period, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT
			CAST(strftime('%m', attendance_date) AS INTEGER) AS month,
			CAST(strftime('%Y', attendance_date) AS INTEGER) AS year
		FROM attendance
		ORDER BY year DESC, month DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance periods: %w", classify(err))
	}
	defer rows.Close()

	var periods []period.Period
	for rows.Next() {
		var p period.Period
		if err := rows.Scan(&p.Month, &p.Year); err != nil {
			return nil, fmt.Errorf("failed to scan attendance period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance periods: %w", classify(err))
	}

	return periods, nil
}
