package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/google/uuid"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

func (r *attendanceRepositoryImpl) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	if a.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
		}
		a.ID = id.String()
	}

	query := `
		INSERT INTO attendance (id, employee_id, attendance_date, status, check_in_time, check_out_time, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, employee_id, attendance_date, status, check_in_time, check_out_time, remarks, created_at
	`

	var created attendance.Attendance
	err := q.QueryRow(ctx, query,
		a.ID, a.EmployeeID, a.Date, a.Status, a.CheckIn, a.CheckOut, a.Remarks,
	).Scan(
		&created.ID, &created.EmployeeID, &created.Date, &created.Status,
		&created.CheckIn, &created.CheckOut, &created.Remarks, &created.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "uk_attendance_employee_date") {
			return attendance.Attendance{}, attendance.ErrAttendanceAlreadyRecorded
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", classify(err))
	}

	return created, nil
}

func (r *attendanceRepositoryImpl) CountByStatus(ctx context.Context, employeeID string, p period.Period) ([]attendance.StatusCount, error) {
	q := GetQuerier(ctx, r.db)

	// Half-open date range keeps idx_attendance_date usable.
	query := `
		SELECT status, COUNT(*) AS count
		FROM attendance
		WHERE employee_id = $1
			AND attendance_date >= $2
			AND attendance_date < $3
		GROUP BY status
	`

	rows, err := q.Query(ctx, query, employeeID, p.Start(), p.End())
	if err != nil {
		return nil, fmt.Errorf("failed to count attendance: %w", classify(err))
	}
	defer rows.Close()

	var counts []attendance.StatusCount
	for rows.Next() {
		var c attendance.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan attendance count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance counts: %w", classify(err))
	}

	return counts, nil
}

func (r *attendanceRepositoryImpl) ListDistinctPeriods(ctx context.Context) ([]period.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT
			EXTRACT(MONTH FROM attendance_date)::int AS month,
			EXTRACT(YEAR FROM attendance_date)::int AS year
		FROM attendance
		ORDER BY year DESC, month DESC
	`

	rows, err := q.Query(ctx, query)
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
