package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/apperrors"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/auth"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/repositories"
)

// CreateLeadInput carries the fields accepted when registering a lead.
type CreateLeadInput struct {
	Name        string
	Email       *string
	Phone       *string
	BudgetMin   *int64
	BudgetMax   *int64
	Preferences models.JSONBMap
}

// LeadService provides lead operations, including the stage engine used
// by both the detail view and the kanban board.
type LeadService interface {
	CreateLead(ctx context.Context, input CreateLeadInput) (*models.Lead, error)
	GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error)
	ListLeads(ctx context.Context) ([]*models.Lead, error)

	// SetStage moves a lead to the given pipeline stage. Any stage may
	// follow any other, including a no-op; a stage change never touches
	// deal or property state.
	SetStage(ctx context.Context, leadID uuid.UUID, stage models.LeadStage) (*models.Lead, error)
}

type leadService struct {
	repo     repositories.LeadRepository
	audit    AuditService
	notifier Notifier
	logger   *zap.Logger
}

// NewLeadService creates a new LeadService.
func NewLeadService(repo repositories.LeadRepository, audit AuditService, notifier Notifier, logger *zap.Logger) LeadService {
	return &leadService{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
		logger:   logger.Named("lead-service"),
	}
}

var _ LeadService = (*leadService)(nil)

func (s *leadService) CreateLead(ctx context.Context, input CreateLeadInput) (*models.Lead, error) {
	identity, err := auth.RequireStaff(ctx)
	if err != nil {
		return nil, err
	}

	if input.Name == "" {
		return nil, apperrors.Validationf("lead name is required")
	}
	if input.BudgetMin != nil && input.BudgetMax != nil && *input.BudgetMin > *input.BudgetMax {
		return nil, apperrors.Validationf("budget_min exceeds budget_max")
	}

	lead := &models.Lead{
		Name:        input.Name,
		Email:       stripEmpty(input.Email),
		Phone:       stripEmpty(input.Phone),
		Stage:       models.StageNew,
		BudgetMin:   input.BudgetMin,
		BudgetMax:   input.BudgetMax,
		Preferences: input.Preferences,
		CreatedBy:   identity.UserID,
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		s.logger.Error("Failed to create lead", zap.Error(err))
		return nil, err
	}

	if err := s.audit.Record(ctx, identity.UserID, models.AuditActionCreateLead, models.AuditEntityLead, &lead.ID, models.JSONBMap{
		"name": lead.Name,
	}); err != nil {
		s.logger.Warn("Audit record failed after lead create", zap.Error(err))
	}
	s.notifier.Publish(ctx, MutationEvent{
		Action:   models.AuditActionCreateLead,
		Entity:   models.AuditEntityLead,
		EntityID: lead.ID,
	})

	return lead, nil
}

func (s *leadService) GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *leadService) ListLeads(ctx context.Context) ([]*models.Lead, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

func (s *leadService) SetStage(ctx context.Context, leadID uuid.UUID, stage models.LeadStage) (*models.Lead, error) {
	identity, err := auth.RequireStaff(ctx)
	if err != nil {
		return nil, err
	}

	if !models.ValidLeadStage(stage) {
		return nil, apperrors.Validationf("invalid stage: %s", stage)
	}

	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	previous := lead.Stage
	if err := s.repo.UpdateStage(ctx, leadID, stage); err != nil {
		s.logger.Error("Failed to update lead stage",
			zap.String("lead_id", leadID.String()),
			zap.Error(err))
		return nil, err
	}
	lead.Stage = stage

	if err := s.audit.Record(ctx, identity.UserID, models.AuditActionSetLeadStage, models.AuditEntityLead, &leadID, models.JSONBMap{
		"from": string(previous),
		"to":   string(stage),
	}); err != nil {
		s.logger.Warn("Audit record failed after stage change", zap.Error(err))
	}
	s.notifier.Publish(ctx, MutationEvent{
		Action:   models.AuditActionSetLeadStage,
		Entity:   models.AuditEntityLead,
		EntityID: leadID,
	})

	return lead, nil
}

// stripEmpty converts empty-string optionals to nil so they are stored
// as NULL rather than empty strings.
func stripEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
