package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/construtek/nomina-backend-go/internal/domain/audit"
	"github.com/construtek/nomina-backend-go/internal/handler/http/response"
)

type AuditHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type auditHandlerImpl struct {
	auditRepo audit.AuditRepository
}

func NewAuditHandler(auditRepo audit.AuditRepository) AuditHandler {
	return &auditHandlerImpl{auditRepo: auditRepo}
}

func (h *auditHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter audit.Filter

	if entityType := r.URL.Query().Get("entity_type"); entityType != "" {
		filter.EntityType = &entityType
	}
	if entityID := r.URL.Query().Get("entity_id"); entityID != "" {
		filter.EntityID = &entityID
	}
	if action := r.URL.Query().Get("action"); action != "" {
		filter.Action = &action
	}
	if actor := r.URL.Query().Get("actor_id"); actor != "" {
		filter.ActorID = &actor
	}
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.auditRepo.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	responses := make([]audit.EntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, audit.EntryResponse{
			ID:         e.ID,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Action:     e.Action,
			ActorID:    e.ActorID,
			Before:     e.Before,
			After:      e.After,
			CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	response.Success(w, responses)
}
