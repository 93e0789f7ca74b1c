// Package period models a payroll cycle as a calendar (month, year) pair.
package period

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalid = errors.New("invalid period")

type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func New(month, year int) (Period, error) {
	p := Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Parse reads caller-supplied month and year strings. Anything that is not a
// base-10 integer is rejected.
func Parse(month, year string) (Period, error) {
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil {
		return Period{}, fmt.Errorf("%w: month %q is not an integer", ErrInvalid, month)
	}
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return Period{}, fmt.Errorf("%w: year %q is not an integer", ErrInvalid, year)
	}
	return New(m, y)
}

func Of(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12, got %d", ErrInvalid, p.Month)
	}
	if p.Year < 1 {
		return fmt.Errorf("%w: year must be positive, got %d", ErrInvalid, p.Year)
	}
	return nil
}

// Start returns midnight UTC on the first day of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant after the period (exclusive bound).
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Month: 12, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

// Before orders periods chronologically.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
