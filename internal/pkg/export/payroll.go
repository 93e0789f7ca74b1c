// Package export renders payroll records as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const payrollSheet = "Payroll"

var payrollHeader = []interface{}{
	"Employee ID", "Employee Name", "Month", "Year", "Base Salary",
	"Total Days", "Present Days", "Late Days", "Absent Days",
	"Late Deduction", "Absent Deduction", "Total Deduction", "Net Salary",
}

// WritePayrollWorkbook writes one row per record followed by a totals row.
func WritePayrollWorkbook(w io.Writer, records []payroll.PayrollRecordResponse) error {
	f, err := BuildPayrollWorkbook(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write payroll workbook: %w", err)
	}
	return nil
}

func BuildPayrollWorkbook(records []payroll.PayrollRecordResponse) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", payrollSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name payroll sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(payrollSheet, "A1", &payrollHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	totalBase, totalLate, totalAbsent, totalDeduction, totalNet :=
		decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero

	for i, rec := range records {
		row := []interface{}{
			rec.EmployeeID, rec.EmployeeName, rec.PeriodMonth, rec.PeriodYear, rec.BaseSalary.InexactFloat64(),
			rec.TotalDays, rec.PresentDays, rec.LateDays, rec.AbsentDays,
			rec.LateDeduction.InexactFloat64(), rec.AbsentDeduction.InexactFloat64(),
			rec.TotalDeduction.InexactFloat64(), rec.NetSalary.InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(payrollSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write payroll row: %w", err)
		}

		totalBase = totalBase.Add(rec.BaseSalary)
		totalLate = totalLate.Add(rec.LateDeduction)
		totalAbsent = totalAbsent.Add(rec.AbsentDeduction)
		totalDeduction = totalDeduction.Add(rec.TotalDeduction)
		totalNet = totalNet.Add(rec.NetSalary)
	}

	totalsRow := len(records) + 2
	totals := []interface{}{
		"TOTAL", fmt.Sprintf("%d employees", len(records)), nil, nil, totalBase.InexactFloat64(),
		nil, nil, nil, nil,
		totalLate.InexactFloat64(), totalAbsent.InexactFloat64(),
		totalDeduction.InexactFloat64(), totalNet.InexactFloat64(),
	}
	cell, err := excelize.CoordinatesToCellName(1, totalsRow)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(payrollSheet, cell, &totals); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write totals row: %w", err)
	}

	if err := f.SetRowStyle(payrollSheet, 1, 1, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetRowStyle(payrollSheet, totalsRow, totalsRow, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style totals row: %w", err)
	}

	return f, nil
}
