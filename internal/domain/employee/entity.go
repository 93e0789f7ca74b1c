package employee

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID          string
	FirstName   string
	LastName    string
	Department  string
	Designation string
	BaseSalary  decimal.Decimal
	IsActive    bool
	CreatedAt   time.Time
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Validate checks the fields every store requires before insert.
func (e Employee) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmployeeIDRequired
	}
	if e.BaseSalary.IsNegative() {
		return ErrNegativeBaseSalary
	}
	return nil
}
