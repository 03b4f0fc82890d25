package http

import (
	"net/http"

	"github.com/construtek/nomina-backend-go/internal/domain/reconcile"
	"github.com/construtek/nomina-backend-go/internal/handler/http/response"
)

type ReconcileHandler interface {
	Audit(w http.ResponseWriter, r *http.Request)
	Repair(w http.ResponseWriter, r *http.Request)
	Dedupe(w http.ResponseWriter, r *http.Request)
	Run(w http.ResponseWriter, r *http.Request)
}

type reconcileHandlerImpl struct {
	reconcileService reconcile.ReconcileService
}

func NewReconcileHandler(reconcileService reconcile.ReconcileService) ReconcileHandler {
	return &reconcileHandlerImpl{reconcileService: reconcileService}
}

func (h *reconcileHandlerImpl) Audit(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconcileService.AuditWeeks(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, report)
}

func (h *reconcileHandlerImpl) Repair(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconcileService.RepairWeeks(r.Context(), actorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Repair pass finished", report)
}

func (h *reconcileHandlerImpl) Dedupe(w http.ResponseWriter, r *http.Request) {
	weekReport, err := h.reconcileService.DeduplicateWeeks(r.Context(), actorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	recordReport, err := h.reconcileService.DeduplicateRecords(r.Context(), actorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	weekReport.RecordsDeduped = recordReport.RecordsDeduped
	weekReport.Failures = append(weekReport.Failures, recordReport.Failures...)
	weekReport.FinishedAt = recordReport.FinishedAt

	response.SuccessWithMessage(w, "Dedupe pass finished", weekReport)
}

func (h *reconcileHandlerImpl) Run(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconcileService.Run(r.Context(), actorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Reconciliation pass finished", report)
}
