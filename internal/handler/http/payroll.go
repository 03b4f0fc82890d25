package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/construtek/nomina-backend-go/internal/domain/payroll"
	"github.com/construtek/nomina-backend-go/internal/handler/http/response"
	"github.com/construtek/nomina-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Records
	UpsertRecord(w http.ResponseWriter, r *http.Request)
	GetRecord(w http.ResponseWriter, r *http.Request)
	ListRecords(w http.ResponseWriter, r *http.Request)
	Snapshot(w http.ResponseWriter, r *http.Request)
	WeekTotals(w http.ResponseWriter, r *http.Request)

	// Payments
	MarkPaid(w http.ResponseWriter, r *http.Request)
	RegisterPartialPayment(w http.ResponseWriter, r *http.Request)
	ChangeState(w http.ResponseWriter, r *http.Request)

	// Debts
	ListDebts(w http.ResponseWriter, r *http.Request)
	SettleDebt(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== RECORDS ==========

func (h *payrollHandlerImpl) UpsertRecord(w http.ResponseWriter, r *http.Request) {
	var req payroll.UpsertRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.UpsertRecord(r.Context(), req, actorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	result, err := h.payrollService.GetRecord(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	var filter payroll.RecordFilter

	if weekID := r.URL.Query().Get("week_id"); weekID != "" {
		filter.WeekID = &weekID
	}
	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if state := r.URL.Query().Get("state"); state != "" {
		if !validator.IsInSlice(state, payroll.PaymentStateNames()) {
			response.BadRequest(w, "Unknown payment state filter", nil)
			return
		}
		filter.State = &state
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.payrollService.ListRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := int(result.TotalCount) / result.Limit
	if int(result.TotalCount)%result.Limit > 0 {
		totalPages++
	}
	response.SuccessWithMeta(w, result.Data, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}

func (h *payrollHandlerImpl) Snapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	result, err := h.payrollService.Snapshot(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) WeekTotals(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Week ID is required", nil)
		return
	}

	result, err := h.payrollService.WeekTotals(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== PAYMENTS ==========

func (h *payrollHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	result, err := h.payrollService.MarkPaid(r.Context(), id, actorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Record paid in full", result)
}

func (h *payrollHandlerImpl) RegisterPartialPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	var req payroll.PartialPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.RecordID = id

	result, err := h.payrollService.RegisterPartialPayment(r.Context(), req, actorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Partial payment registered", result)
}

func (h *payrollHandlerImpl) ChangeState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Record ID is required", nil)
		return
	}

	var req payroll.ChangeStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.RecordID = id

	result, err := h.payrollService.ChangeState(r.Context(), req, actorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== DEBTS ==========

func (h *payrollHandlerImpl) ListDebts(w http.ResponseWriter, r *http.Request) {
	var filter payroll.DebtFilter

	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if state := r.URL.Query().Get("state"); state != "" {
		if !validator.IsInSlice(state, payroll.DebtStateNames()) {
			response.BadRequest(w, "Unknown debt state filter", nil)
			return
		}
		filter.State = &state
	}

	result, err := h.payrollService.ListDebts(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) SettleDebt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Debt ID is required", nil)
		return
	}

	var req payroll.SettleDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.DebtID = id

	result, err := h.payrollService.SettleDebt(r.Context(), req, actorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Debt payment applied", result)
}
