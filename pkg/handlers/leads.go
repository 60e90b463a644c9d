package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/auth"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/services"
)

// CreateLeadRequest is the JSON body for POST /api/leads.
type CreateLeadRequest struct {
	Name        string          `json:"name"`
	Email       *string         `json:"email,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	BudgetMin   *int64          `json:"budget_min,omitempty"`
	BudgetMax   *int64          `json:"budget_max,omitempty"`
	Preferences models.JSONBMap `json:"preferences,omitempty"`
}

// SetStageRequest is the JSON body for PATCH /api/leads/{id}/stage.
type SetStageRequest struct {
	Stage models.LeadStage `json:"stage"`
}

// LeadsHandler handles lead HTTP requests, including the stage mutation
// used by the kanban board.
type LeadsHandler struct {
	leadService services.LeadService
	dealService services.DealService
	logger      *zap.Logger
}

// NewLeadsHandler creates a new leads handler.
func NewLeadsHandler(leadService services.LeadService, dealService services.DealService, logger *zap.Logger) *LeadsHandler {
	return &LeadsHandler{
		leadService: leadService,
		dealService: dealService,
		logger:      logger,
	}
}

// RegisterRoutes registers the leads handler's routes on the given mux.
func (h *LeadsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/leads", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/leads", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/leads/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PATCH /api/leads/{id}/stage", authMiddleware.RequireAuth(h.SetStage))
	mux.HandleFunc("GET /api/leads/{id}/deals", authMiddleware.RequireAuth(h.ListDeals))
}

// Create handles POST /api/leads.
func (h *LeadsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	lead, err := h.leadService.CreateLead(r.Context(), services.CreateLeadInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		Preferences: req.Preferences,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, lead); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/leads. The board client groups the result into
// stage columns locally.
func (h *LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.leadService.ListLeads(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if leads == nil {
		leads = []*models.Lead{}
	}
	if err := WriteJSON(w, http.StatusOK, leads); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/leads/{id}.
func (h *LeadsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	lead, err := h.leadService.GetLead(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, lead); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// SetStage handles PATCH /api/leads/{id}/stage.
func (h *LeadsHandler) SetStage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req SetStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	lead, err := h.leadService.SetStage(r.Context(), id, req.Stage)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, lead); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListDeals handles GET /api/leads/{id}/deals.
func (h *LeadsHandler) ListDeals(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	deals, err := h.dealService.ListByLead(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if deals == nil {
		deals = []*models.Deal{}
	}
	if err := WriteJSON(w, http.StatusOK, deals); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *LeadsHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid lead id"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}
