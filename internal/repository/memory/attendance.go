package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/period"
	"github.com/google/uuid"
)

type attendanceRepository struct {
	store *Store
}

func NewAttendanceRepository(store *Store) attendance.AttendanceRepository {
	return &attendanceRepository{store: store}
}

func (r *attendanceRepository) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if a.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
		}
		a.ID = id.String()
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	k := attendanceKey{EmployeeID: a.EmployeeID, Date: a.Date.Format("2006-01-02")}
	if _, ok := r.store.attendance[k]; ok {
		return attendance.Attendance{}, attendance.ErrAttendanceAlreadyRecorded
	}
	a.CreatedAt = r.store.now()
	r.store.attendance[k] = a
	return a, nil
}

func (r *attendanceRepository) CountByStatus(_ context.Context, employeeID string, p period.Period) ([]attendance.StatusCount, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byStatus := make(map[attendance.Status]int)
	for k, a := range r.store.attendance {
		if k.EmployeeID == employeeID && p.Contains(a.Date) {
			byStatus[a.Status]++
		}
	}

	counts := make([]attendance.StatusCount, 0, len(byStatus))
	for status, n := range byStatus {
		counts = append(counts, attendance.StatusCount{Status: status, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Status < counts[j].Status })
	return counts, nil
}

func (r *attendanceRepository) ListDistinctPeriods(_ context.Context) ([]period.Period, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	seen := make(map[period.Period]struct{})
	for _, a := range r.store.attendance {
		seen[period.Of(a.Date)] = struct{}{}
	}

	periods := make([]period.Period, 0, len(seen))
	for p := range seen {
		periods = append(periods, p)
	}
	// Newest first.
	sort.Slice(periods, func(i, j int) bool { return periods[j].Before(periods[i]) })
	return periods, nil
}
