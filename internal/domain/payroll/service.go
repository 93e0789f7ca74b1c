package payroll

import (
	"context"
	"io"
)

type PayrollService interface {
	// Generation
	GenerateForPeriod(ctx context.Context, month, year int) (GenerateResult, error)
	GenerateForAllHistoricalPeriods(ctx context.Context) (BackfillResult, error)

	// Ledger reads
	ListPayrollRecords(ctx context.Context, filter PayrollFilter) (ListPayrollRecordResponse, error)
	GetPayrollSummary(ctx context.Context, month, year int) (PayrollSummaryResponse, error)
	GetDepartmentSummary(ctx context.Context, month, year int) ([]DepartmentSummaryResponse, error)
	ExportPayroll(ctx context.Context, filter PayrollFilter, w io.Writer) error
}
