package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/auth"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/services"
)

// dateLayout is the wire format for transaction dates.
const dateLayout = "2006-01-02"

// CreateDealRequest is the JSON body for POST /api/deals.
// duration_months is virtual: it feeds the transaction_end_date
// computation for RENT deals and is never stored.
type CreateDealRequest struct {
	LeadID           string           `json:"lead_id"`
	PropertyID       string           `json:"property_id"`
	DealType         string           `json:"deal_type"`
	Status           string           `json:"status,omitempty"`
	CommissionAmount *decimal.Decimal `json:"commission_amount,omitempty"`
	TransactionDate  string           `json:"transaction_date,omitempty"`
	DurationMonths   *int             `json:"duration_months,omitempty"`
}

// UpdateDealRequest is the JSON body for PATCH /api/deals/{id}. Omitted
// and empty-string fields keep their stored values.
type UpdateDealRequest struct {
	DealType         string           `json:"deal_type,omitempty"`
	Status           string           `json:"status,omitempty"`
	PropertyID       string           `json:"property_id,omitempty"`
	CommissionAmount *decimal.Decimal `json:"commission_amount,omitempty"`
	TransactionDate  string           `json:"transaction_date,omitempty"`
	DurationMonths   *int             `json:"duration_months,omitempty"`
}

// DealsHandler handles deal lifecycle HTTP requests.
type DealsHandler struct {
	dealService services.DealService
	logger      *zap.Logger
}

// NewDealsHandler creates a new deals handler.
func NewDealsHandler(dealService services.DealService, logger *zap.Logger) *DealsHandler {
	return &DealsHandler{
		dealService: dealService,
		logger:      logger,
	}
}

// RegisterRoutes registers the deals handler's routes on the given mux.
func (h *DealsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/deals", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("PATCH /api/deals/{id}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE /api/deals/{id}", authMiddleware.RequireAuth(h.Delete))
}

// Create handles POST /api/deals.
func (h *DealsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid_body", "Invalid JSON body")
		return
	}

	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		h.badRequest(w, "invalid_lead_id", "lead_id must be a UUID")
		return
	}
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		h.badRequest(w, "invalid_property_id", "property_id must be a UUID")
		return
	}
	txDate, ok := h.parseDate(w, req.TransactionDate)
	if !ok {
		return
	}

	deal, err := h.dealService.CreateDeal(r.Context(), services.CreateDealInput{
		LeadID:           leadID,
		PropertyID:       propertyID,
		DealType:         models.DealType(req.DealType),
		Status:           models.DealStatus(req.Status),
		CommissionAmount: req.CommissionAmount,
		TransactionDate:  txDate,
		DurationMonths:   req.DurationMonths,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, deal); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PATCH /api/deals/{id}.
func (h *DealsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.badRequest(w, "invalid_id", "Invalid deal id")
		return
	}

	var req UpdateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid_body", "Invalid JSON body")
		return
	}

	input := services.UpdateDealInput{
		CommissionAmount: req.CommissionAmount,
		DurationMonths:   req.DurationMonths,
	}
	if req.DealType != "" {
		dealType := models.DealType(req.DealType)
		input.DealType = &dealType
	}
	if req.Status != "" {
		status := models.DealStatus(req.Status)
		input.Status = &status
	}
	if req.PropertyID != "" {
		propertyID, err := uuid.Parse(req.PropertyID)
		if err != nil {
			h.badRequest(w, "invalid_property_id", "property_id must be a UUID")
			return
		}
		input.PropertyID = &propertyID
	}
	txDate, ok := h.parseDate(w, req.TransactionDate)
	if !ok {
		return
	}
	input.TransactionDate = txDate

	deal, err := h.dealService.UpdateDeal(r.Context(), id, input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, deal); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/deals/{id}?lead_id={lead_id}.
func (h *DealsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.badRequest(w, "invalid_id", "Invalid deal id")
		return
	}
	leadID, err := uuid.Parse(r.URL.Query().Get("lead_id"))
	if err != nil {
		h.badRequest(w, "invalid_lead_id", "lead_id query parameter must be a UUID")
		return
	}

	if err := h.dealService.DeleteDeal(r.Context(), id, leadID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"success": true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// parseDate parses an optional YYYY-MM-DD field; an empty string is
// treated as omitted.
func (h *DealsHandler) parseDate(w http.ResponseWriter, value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		h.badRequest(w, "invalid_date", "transaction_date must be YYYY-MM-DD")
		return nil, false
	}
	return &parsed, true
}

func (h *DealsHandler) badRequest(w http.ResponseWriter, code, message string) {
	if err := ErrorResponse(w, http.StatusBadRequest, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
