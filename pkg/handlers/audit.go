package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/auth"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/services"
)

// AuditHandler exposes the mutation audit trail for a single entity.
type AuditHandler struct {
	auditService services.AuditService
	logger       *zap.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(auditService services.AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// RegisterRoutes registers the audit handler's routes on the given mux.
func (h *AuditHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/audit/{entity}/{id}", authMiddleware.RequireAuth(h.GetByEntity))
}

// GetByEntity handles GET /api/audit/{entity}/{id}.
func (h *AuditHandler) GetByEntity(w http.ResponseWriter, r *http.Request) {
	entity := r.PathValue("entity")
	switch entity {
	case models.AuditEntityLead, models.AuditEntityDeal, models.AuditEntityProperty:
	default:
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_entity", "Unknown audit entity"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid entity id"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	entries, err := h.auditService.GetByEntity(r.Context(), entity, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if entries == nil {
		entries = []*models.AuditLogEntry{}
	}
	if err := WriteJSON(w, http.StatusOK, entries); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
