// Package sqlite implements the payroll repositories on an embedded SQLite
// database. Dates are stored as YYYY-MM-DD text, timestamps as RFC3339 text
// and money as decimal strings so no precision is lost to REAL affinity.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/mattn/go-sqlite3"
)

const dateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS employees (
	id          TEXT PRIMARY KEY,
	first_name  TEXT NOT NULL,
	last_name   TEXT NOT NULL DEFAULT '',
	department  TEXT NOT NULL DEFAULT '',
	designation TEXT NOT NULL DEFAULT '',
	base_salary TEXT NOT NULL,
	is_active   BOOLEAN NOT NULL DEFAULT 1,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS attendance (
	id              TEXT PRIMARY KEY,
	employee_id     TEXT NOT NULL REFERENCES employees (id),
	attendance_date TEXT NOT NULL,
	status          TEXT NOT NULL,
	check_in_time   TEXT,
	check_out_time  TEXT,
	remarks         TEXT,
	created_at      TEXT NOT NULL,
	UNIQUE (employee_id, attendance_date)
);

CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance (attendance_date);

CREATE TABLE IF NOT EXISTS payroll (
	id               TEXT PRIMARY KEY,
	employee_id      TEXT NOT NULL REFERENCES employees (id),
	month            INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
	year             INTEGER NOT NULL CHECK (year > 0),
	base_salary      TEXT NOT NULL,
	total_days       INTEGER NOT NULL DEFAULT 0,
	present_days     INTEGER NOT NULL DEFAULT 0,
	late_days        INTEGER NOT NULL DEFAULT 0,
	absent_days      INTEGER NOT NULL DEFAULT 0,
	late_deduction   TEXT NOT NULL,
	absent_deduction TEXT NOT NULL,
	total_deduction  TEXT NOT NULL,
	net_salary       TEXT NOT NULL,
	created_at       TEXT NOT NULL,
	UNIQUE (employee_id, month, year)
);
`

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", classify(err))
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrCantOpen, sqlite3.ErrIoErr, sqlite3.ErrCorrupt, sqlite3.ErrNotADB, sqlite3.ErrBusy, sqlite3.ErrLocked:
			return true
		}
	}

	return strings.Contains(err.Error(), "database is closed")
}

// classify tags storage failures with payroll.ErrUpstreamUnavailable.
func classify(err error) error {
	if err == nil || !isUnavailable(err) {
		return err
	}
	return fmt.Errorf("%w: %w", payroll.ErrUpstreamUnavailable, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
