package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/auth"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/services"
)

// CreatePropertyRequest is the JSON body for POST /api/properties.
type CreatePropertyRequest struct {
	Title string           `json:"title"`
	City  *string          `json:"city,omitempty"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

// SetPropertyStatusRequest is the JSON body for
// PATCH /api/properties/{id}/status. Only manually-owned statuses are
// accepted; SOLD and RENTED belong to the projector.
type SetPropertyStatusRequest struct {
	Status models.PropertyStatus `json:"status"`
}

// PropertiesHandler handles property HTTP requests.
type PropertiesHandler struct {
	propertyService services.PropertyService
	logger          *zap.Logger
}

// NewPropertiesHandler creates a new properties handler.
func NewPropertiesHandler(propertyService services.PropertyService, logger *zap.Logger) *PropertiesHandler {
	return &PropertiesHandler{
		propertyService: propertyService,
		logger:          logger,
	}
}

// RegisterRoutes registers the properties handler's routes on the given mux.
func (h *PropertiesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/properties", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/properties/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PATCH /api/properties/{id}/status", authMiddleware.RequireAuth(h.SetStatus))
}

// Create handles POST /api/properties.
func (h *PropertiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	property, err := h.propertyService.CreateProperty(r.Context(), services.CreatePropertyInput{
		Title: req.Title,
		City:  req.City,
		Price: req.Price,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, property); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/properties/{id}.
func (h *PropertiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	property, err := h.propertyService.GetProperty(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, property); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// SetStatus handles PATCH /api/properties/{id}/status.
func (h *PropertiesHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req SetPropertyStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	property, err := h.propertyService.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, property); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *PropertiesHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid property id"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}
