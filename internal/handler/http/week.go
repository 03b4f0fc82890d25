package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/construtek/nomina-backend-go/internal/domain/audit"
	"github.com/construtek/nomina-backend-go/internal/domain/week"
	"github.com/construtek/nomina-backend-go/internal/handler/http/response"
	"github.com/construtek/nomina-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// actorID identifies who performed a change for the audit trail.
// Authentication happens upstream; the gateway forwards the actor here.
func actorID(r *http.Request) string {
	if actor := r.Header.Get("X-Actor-Id"); actor != "" {
		return actor
	}
	return audit.SystemActor
}

type WeekHandler interface {
	Resolve(w http.ResponseWriter, r *http.Request)
	SeedYear(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Current(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Transition(w http.ResponseWriter, r *http.Request)
}

type weekHandlerImpl struct {
	weekService week.WeekService
}

func NewWeekHandler(weekService week.WeekService) WeekHandler {
	return &weekHandlerImpl{weekService: weekService}
}

func (h *weekHandlerImpl) Resolve(w http.ResponseWriter, r *http.Request) {
	var req week.ResolveWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.weekService.Resolve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *weekHandlerImpl) SeedYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		response.BadRequest(w, "Year must be a number", nil)
		return
	}

	result, err := h.weekService.SeedYear(r.Context(), year, actorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Year seeded", result)
}

func (h *weekHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Week ID is required", nil)
		return
	}

	result, err := h.weekService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *weekHandlerImpl) Current(w http.ResponseWriter, r *http.Request) {
	result, err := h.weekService.Current(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *weekHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter week.WeekFilter

	if yearStr := r.URL.Query().Get("iso_year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(w, "iso_year must be a number", nil)
			return
		}
		filter.ISOYear = &year
	}
	if state := r.URL.Query().Get("state"); state != "" {
		if !validator.IsInSlice(state, week.StateNames()) {
			response.BadRequest(w, "Unknown week state filter", nil)
			return
		}
		filter.State = &state
	}

	result, err := h.weekService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *weekHandlerImpl) Transition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Week ID is required", nil)
		return
	}

	var req week.TransitionWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.weekService.Transition(r.Context(), req, actorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
