package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/apperrors"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/services"
)

func leadsMux(leadSvc services.LeadService, dealSvc services.DealService) *http.ServeMux {
	mux := http.NewServeMux()
	NewLeadsHandler(leadSvc, dealSvc, zap.NewNop()).RegisterRoutes(mux, testMiddleware())
	return mux
}

func TestLeadsCreate(t *testing.T) {
	leadSvc := &mockLeadService{
		createFn: func(_ context.Context, input services.CreateLeadInput) (*models.Lead, error) {
			return &models.Lead{ID: uuid.New(), Name: input.Name, Stage: models.StageNew}, nil
		},
	}
	mux := leadsMux(leadSvc, &mockDealService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/leads", CreateLeadRequest{Name: "Ana Costa"}))

	require.Equal(t, http.StatusCreated, rec.Code)
	var lead models.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	assert.Equal(t, "Ana Costa", lead.Name)
	assert.Equal(t, models.StageNew, lead.Stage)
}

func TestLeadsCreate_ValidationError(t *testing.T) {
	leadSvc := &mockLeadService{
		createFn: func(context.Context, services.CreateLeadInput) (*models.Lead, error) {
			return nil, apperrors.Validationf("lead name is required")
		},
	}
	mux := leadsMux(leadSvc, &mockDealService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/leads", CreateLeadRequest{}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_failed")
}

func TestLeadsCreate_StoreFailureIsOpaque500(t *testing.T) {
	leadSvc := &mockLeadService{
		createFn: func(context.Context, services.CreateLeadInput) (*models.Lead, error) {
			return nil, apperrors.Persistencef("create lead", errors.New("connection refused"))
		},
	}
	mux := leadsMux(leadSvc, &mockDealService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/leads", CreateLeadRequest{Name: "Ana Costa"}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "persistence_failure")
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestLeadsCreate_RequiresToken(t *testing.T) {
	mux := leadsMux(&mockLeadService{}, &mockDealService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/leads", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLeadsList_EmptyIsArray(t *testing.T) {
	leadSvc := &mockLeadService{
		listFn: func(context.Context) ([]*models.Lead, error) { return nil, nil },
	}
	mux := leadsMux(leadSvc, &mockDealService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/leads", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestLeadsSetStage(t *testing.T) {
	leadID := uuid.New()
	var gotStage models.LeadStage
	leadSvc := &mockLeadService{
		setStageFn: func(_ context.Context, id uuid.UUID, stage models.LeadStage) (*models.Lead, error) {
			assert.Equal(t, leadID, id)
			gotStage = stage
			return &models.Lead{ID: id, Name: "Ana", Stage: stage}, nil
		},
	}
	mux := leadsMux(leadSvc, &mockDealService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(t, http.MethodPatch, "/api/leads/"+leadID.String()+"/stage",
		SetStageRequest{Stage: models.StageViewed}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StageViewed, gotStage)
}

func TestLeadsSetStage_InvalidStage(t *testing.T) {
	leadSvc := &mockLeadService{
		setStageFn: func(_ context.Context, _ uuid.UUID, stage models.LeadStage) (*models.Lead, error) {
			return nil, apperrors.Validationf("invalid stage: %s", stage)
		},
	}
	mux := leadsMux(leadSvc, &mockDealService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(t, http.MethodPatch, "/api/leads/"+uuid.NewString()+"/stage",
		SetStageRequest{Stage: "ARCHIVED"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeadsSetStage_UnknownLead(t *testing.T) {
	leadSvc := &mockLeadService{
		setStageFn: func(context.Context, uuid.UUID, models.LeadStage) (*models.Lead, error) {
			return nil, apperrors.ErrNotFound
		},
	}
	mux := leadsMux(leadSvc, &mockDealService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(t, http.MethodPatch, "/api/leads/"+uuid.NewString()+"/stage",
		SetStageRequest{Stage: models.StageViewed}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeadsSetStage_MalformedID(t *testing.T) {
	mux := leadsMux(&mockLeadService{}, &mockDealService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(t, http.MethodPatch, "/api/leads/not-a-uuid/stage",
		SetStageRequest{Stage: models.StageViewed}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeadsListDeals(t *testing.T) {
	leadID := uuid.New()
	dealSvc := &mockDealService{
		listByLeadFn: func(_ context.Context, id uuid.UUID) ([]*models.Deal, error) {
			assert.Equal(t, leadID, id)
			return []*models.Deal{{ID: uuid.New(), LeadID: id, DealType: models.DealTypeSale}}, nil
		},
	}
	mux := leadsMux(&mockLeadService{}, dealSvc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/leads/"+leadID.String()+"/deals", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var deals []models.Deal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deals))
	assert.Len(t, deals, 1)
}
