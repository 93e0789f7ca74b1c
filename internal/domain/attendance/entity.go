package attendance

import (
	"time"
)

// Status is the outcome recorded for an employee on one calendar day.
type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
	StatusAbsent  Status = "Absent"
)

type Attendance struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Status     Status
	CheckIn    *time.Time
	CheckOut   *time.Time
	Remarks    *string
	CreatedAt  time.Time
}

// StatusCount is one row of a GROUP BY status aggregation.
type StatusCount struct {
	Status Status
	Count  int
}
