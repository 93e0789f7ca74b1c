package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PayrollHandler interface {
	// Generation
	GeneratePayroll(w http.ResponseWriter, r *http.Request)
	BackfillPayroll(w http.ResponseWriter, r *http.Request)

	// Payroll Records
	ListPayrollRecords(w http.ResponseWriter, r *http.Request)
	GetPayrollSummary(w http.ResponseWriter, r *http.Request)
	GetDepartmentSummary(w http.ResponseWriter, r *http.Request)
	ExportPayroll(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== GENERATION ==========

func (h *payrollHandlerImpl) GeneratePayroll(w http.ResponseWriter, r *http.Request) {
	var req payroll.GeneratePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	p, err := req.Period()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.GenerateForPeriod(r.Context(), p.Month, p.Year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll generated successfully", result)
}

func (h *payrollHandlerImpl) BackfillPayroll(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GenerateForAllHistoricalPeriods(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll backfill completed", result)
}

// ========== PAYROLL RECORDS ==========

func (h *payrollHandlerImpl) ListPayrollRecords(w http.ResponseWriter, r *http.Request) {
	filter, err := parsePayrollFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.ListPayrollRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: int(math.Ceil(float64(result.TotalCount) / float64(result.Limit))),
	})
}

func (h *payrollHandlerImpl) GetPayrollSummary(w http.ResponseWriter, r *http.Request) {
	month, year, err := parsePeriodQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.GetPayrollSummary(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetDepartmentSummary(w http.ResponseWriter, r *http.Request) {
	month, year, err := parsePeriodQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.GetDepartmentSummary(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ExportPayroll(w http.ResponseWriter, r *http.Request) {
	filter, err := parsePayrollFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// Buffer the workbook so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.payrollService.ExportPayroll(r.Context(), filter, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(filter)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// parsePeriodQuery reads the required month and year query parameters.
func parsePeriodQuery(r *http.Request) (int, int, error) {
	monthStr := r.URL.Query().Get("month")
	yearStr := r.URL.Query().Get("year")

	month, monthOK := validator.ParseInt(monthStr)
	year, yearOK := validator.ParseInt(yearStr)
	if !monthOK || !yearOK {
		return 0, 0, payroll.InvalidPeriodError(monthStr, yearStr)
	}
	return month, year, nil
}

func parsePayrollFilter(r *http.Request) (payroll.PayrollFilter, error) {
	query := r.URL.Query()
	var filter payroll.PayrollFilter
	var errs validator.ValidationErrors

	intParam := func(name string) (int, bool) {
		raw := query.Get(name)
		if raw == "" {
			return 0, false
		}
		v, ok := validator.ParseInt(raw)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: name, Message: "must be an integer"})
			return 0, false
		}
		return v, true
	}

	if month, ok := intParam("month"); ok {
		filter.PeriodMonth = &month
	}
	if year, ok := intParam("year"); ok {
		filter.PeriodYear = &year
	}
	if page, ok := intParam("page"); ok {
		filter.Page = page
	}
	if limit, ok := intParam("limit"); ok {
		filter.Limit = limit
	}
	if employeeID := strings.TrimSpace(query.Get("employee_id")); employeeID != "" {
		filter.EmployeeID = &employeeID
	}

	if len(errs) > 0 {
		return payroll.PayrollFilter{}, errs
	}
	if err := filter.Validate(); err != nil {
		return payroll.PayrollFilter{}, err
	}
	return filter, nil
}

func exportFilename(filter payroll.PayrollFilter) string {
	name := "payroll"
	if filter.PeriodYear != nil {
		name += fmt.Sprintf("-%04d", *filter.PeriodYear)
		if filter.PeriodMonth != nil {
			name += fmt.Sprintf("-%02d", *filter.PeriodMonth)
		}
	}
	return name + ".xlsx"
}
