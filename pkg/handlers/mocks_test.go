package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/auth"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/services"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/testhelpers"
)

// authedRequest builds a request carrying a valid staff token.
func authedRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+testhelpers.SignTestToken(t, uuid.New(), auth.RoleAgent))
	return req
}

func testMiddleware() *auth.Middleware {
	return auth.NewMiddleware(testhelpers.TestSecret, zap.NewNop())
}

type mockLeadService struct {
	createFn   func(ctx context.Context, input services.CreateLeadInput) (*models.Lead, error)
	getFn      func(ctx context.Context, id uuid.UUID) (*models.Lead, error)
	listFn     func(ctx context.Context) ([]*models.Lead, error)
	setStageFn func(ctx context.Context, leadID uuid.UUID, stage models.LeadStage) (*models.Lead, error)
}

func (m *mockLeadService) CreateLead(ctx context.Context, input services.CreateLeadInput) (*models.Lead, error) {
	return m.createFn(ctx, input)
}

func (m *mockLeadService) GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	return m.getFn(ctx, id)
}

func (m *mockLeadService) ListLeads(ctx context.Context) ([]*models.Lead, error) {
	return m.listFn(ctx)
}

func (m *mockLeadService) SetStage(ctx context.Context, leadID uuid.UUID, stage models.LeadStage) (*models.Lead, error) {
	return m.setStageFn(ctx, leadID, stage)
}

type mockDealService struct {
	createFn     func(ctx context.Context, input services.CreateDealInput) (*models.Deal, error)
	updateFn     func(ctx context.Context, dealID uuid.UUID, input services.UpdateDealInput) (*models.Deal, error)
	deleteFn     func(ctx context.Context, dealID, leadID uuid.UUID) error
	listByLeadFn func(ctx context.Context, leadID uuid.UUID) ([]*models.Deal, error)
}

func (m *mockDealService) CreateDeal(ctx context.Context, input services.CreateDealInput) (*models.Deal, error) {
	return m.createFn(ctx, input)
}

func (m *mockDealService) UpdateDeal(ctx context.Context, dealID uuid.UUID, input services.UpdateDealInput) (*models.Deal, error) {
	return m.updateFn(ctx, dealID, input)
}

func (m *mockDealService) DeleteDeal(ctx context.Context, dealID, leadID uuid.UUID) error {
	return m.deleteFn(ctx, dealID, leadID)
}

func (m *mockDealService) ListByLead(ctx context.Context, leadID uuid.UUID) ([]*models.Deal, error) {
	return m.listByLeadFn(ctx, leadID)
}

type mockPropertyService struct {
	createFn    func(ctx context.Context, input services.CreatePropertyInput) (*models.Property, error)
	getFn       func(ctx context.Context, id uuid.UUID) (*models.Property, error)
	setStatusFn func(ctx context.Context, id uuid.UUID, status models.PropertyStatus) (*models.Property, error)
}

func (m *mockPropertyService) CreateProperty(ctx context.Context, input services.CreatePropertyInput) (*models.Property, error) {
	return m.createFn(ctx, input)
}

func (m *mockPropertyService) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return m.getFn(ctx, id)
}

func (m *mockPropertyService) SetStatus(ctx context.Context, id uuid.UUID, status models.PropertyStatus) (*models.Property, error) {
	return m.setStatusFn(ctx, id, status)
}

type mockAuditService struct {
	getByEntityFn func(ctx context.Context, entity string, entityID uuid.UUID) ([]*models.AuditLogEntry, error)
}

func (m *mockAuditService) Record(context.Context, uuid.UUID, string, string, *uuid.UUID, models.JSONBMap) error {
	return nil
}

func (m *mockAuditService) GetByEntity(ctx context.Context, entity string, entityID uuid.UUID) ([]*models.AuditLogEntry, error) {
	return m.getByEntityFn(ctx, entity, entityID)
}
