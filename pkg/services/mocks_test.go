package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/apperrors"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/auth"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
)

// staffContext returns a context authenticated as an agent.
func staffContext() context.Context {
	return auth.SetIdentity(context.Background(), auth.Identity{
		UserID: uuid.New(),
		Role:   auth.RoleAgent,
	})
}

type mockLeadRepository struct {
	mu    sync.Mutex
	leads map[uuid.UUID]*models.Lead

	createErr      error
	getErr         error
	updateStageErr error
	stageCalls     int
}

func newMockLeadRepository() *mockLeadRepository {
	return &mockLeadRepository{leads: make(map[uuid.UUID]*models.Lead)}
}

func (m *mockLeadRepository) Create(_ context.Context, lead *models.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	lead.ID = uuid.New()
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = lead.CreatedAt
	cp := *lead
	m.leads[lead.ID] = &cp
	return nil
}

func (m *mockLeadRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	lead, ok := m.leads[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *lead
	return &cp, nil
}

func (m *mockLeadRepository) List(_ context.Context) ([]*models.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Lead, 0, len(m.leads))
	for _, lead := range m.leads {
		cp := *lead
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockLeadRepository) UpdateStage(_ context.Context, id uuid.UUID, stage models.LeadStage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stageCalls++
	if m.updateStageErr != nil {
		return m.updateStageErr
	}
	lead, ok := m.leads[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	lead.Stage = stage
	lead.UpdatedAt = time.Now()
	return nil
}

type mockDealRepository struct {
	mu    sync.Mutex
	deals map[uuid.UUID]*models.Deal

	createErr        error
	updateErr        error
	deleteErr        error
	latestErr        error
	latestCalls      []uuid.UUID
	createdAtCounter int
}

func newMockDealRepository() *mockDealRepository {
	return &mockDealRepository{deals: make(map[uuid.UUID]*models.Deal)}
}

func (m *mockDealRepository) Create(_ context.Context, deal *models.Deal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	deal.ID = uuid.New()
	m.createdAtCounter++
	deal.CreatedAt = time.Unix(int64(m.createdAtCounter), 0)
	cp := *deal
	m.deals[deal.ID] = &cp
	return nil
}

func (m *mockDealRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deal, ok := m.deals[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *deal
	return &cp, nil
}

func (m *mockDealRepository) ListByLead(_ context.Context, leadID uuid.UUID) ([]*models.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Deal, 0)
	for _, deal := range m.deals {
		if deal.LeadID == leadID {
			cp := *deal
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockDealRepository) Update(_ context.Context, deal *models.Deal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.deals[deal.ID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := *deal
	cp.CreatedAt = m.deals[deal.ID].CreatedAt
	m.deals[deal.ID] = &cp
	return nil
}

func (m *mockDealRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.deals[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.deals, id)
	return nil
}

func (m *mockDealRepository) LatestClosedWin(_ context.Context, propertyID uuid.UUID) (*models.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latestCalls = append(m.latestCalls, propertyID)
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	var winner *models.Deal
	for _, deal := range m.deals {
		if deal.PropertyID != propertyID || deal.Status != models.DealStatusClosedWin {
			continue
		}
		if winner == nil ||
			deal.CreatedAt.After(winner.CreatedAt) ||
			(deal.CreatedAt.Equal(winner.CreatedAt) && deal.ID.String() > winner.ID.String()) {
			winner = deal
		}
	}
	if winner == nil {
		return nil, nil
	}
	cp := *winner
	return &cp, nil
}

type mockPropertyRepository struct {
	mu         sync.Mutex
	properties map[uuid.UUID]*models.Property

	getErr          error
	updateStatusErr error
	statusWrites    []models.PropertyStatus
}

func newMockPropertyRepository() *mockPropertyRepository {
	return &mockPropertyRepository{properties: make(map[uuid.UUID]*models.Property)}
}

func (m *mockPropertyRepository) Create(_ context.Context, property *models.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	property.ID = uuid.New()
	property.CreatedAt = time.Now()
	property.UpdatedAt = property.CreatedAt
	cp := *property
	m.properties[property.ID] = &cp
	return nil
}

func (m *mockPropertyRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	property, ok := m.properties[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *property
	return &cp, nil
}

func (m *mockPropertyRepository) UpdateStatus(_ context.Context, id uuid.UUID, status models.PropertyStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusWrites = append(m.statusWrites, status)
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	property, ok := m.properties[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	property.Status = status
	property.UpdatedAt = time.Now()
	return nil
}

func (m *mockPropertyRepository) statusOf(id uuid.UUID) models.PropertyStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.properties[id].Status
}

type mockAuditRepository struct {
	mu      sync.Mutex
	entries []*models.AuditLogEntry

	createErr error
}

func (m *mockAuditRepository) Create(_ context.Context, entry *models.AuditLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockAuditRepository) GetByEntity(_ context.Context, entity string, entityID uuid.UUID) ([]*models.AuditLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.AuditLogEntry, 0)
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.Entity == entity && e.EntityID != nil && *e.EntityID == entityID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockAuditRepository) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

type mockNotifier struct {
	mu     sync.Mutex
	events []MutationEvent
}

func (m *mockNotifier) Publish(_ context.Context, event MutationEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *mockNotifier) published() []MutationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MutationEvent(nil), m.events...)
}

// mockProjector records Recompute calls and optionally fails them.
type mockProjector struct {
	mu    sync.Mutex
	calls []uuid.UUID
	err   error
}

func (m *mockProjector) Recompute(_ context.Context, propertyID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, propertyID)
	return m.err
}

func (m *mockProjector) recomputed() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID(nil), m.calls...)
}
