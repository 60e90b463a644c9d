package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/apperrors"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/auth"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/repositories"
)

// CreatePropertyInput carries the fields accepted when listing a
// property.
type CreatePropertyInput struct {
	Title string
	City  *string
	Price *decimal.Decimal
}

// PropertyService provides the manual side of property management.
// SOLD and RENTED are owned by the projector and rejected here.
type PropertyService interface {
	CreateProperty(ctx context.Context, input CreatePropertyInput) (*models.Property, error)
	GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.PropertyStatus) (*models.Property, error)
}

type propertyService struct {
	repo     repositories.PropertyRepository
	audit    AuditService
	notifier Notifier
	logger   *zap.Logger
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(repo repositories.PropertyRepository, audit AuditService, notifier Notifier, logger *zap.Logger) PropertyService {
	return &propertyService{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
		logger:   logger.Named("property-service"),
	}
}

var _ PropertyService = (*propertyService)(nil)

func (s *propertyService) CreateProperty(ctx context.Context, input CreatePropertyInput) (*models.Property, error) {
	identity, err := auth.RequireStaff(ctx)
	if err != nil {
		return nil, err
	}

	if input.Title == "" {
		return nil, apperrors.Validationf("property title is required")
	}

	property := &models.Property{
		Title:     input.Title,
		City:      stripEmpty(input.City),
		Price:     input.Price,
		Status:    models.PropertyStatusDraft,
		CreatedBy: identity.UserID,
	}

	if err := s.repo.Create(ctx, property); err != nil {
		s.logger.Error("Failed to create property", zap.Error(err))
		return nil, err
	}

	if err := s.audit.Record(ctx, identity.UserID, models.AuditActionCreateProperty, models.AuditEntityProperty, &property.ID, models.JSONBMap{
		"title": property.Title,
	}); err != nil {
		s.logger.Warn("Audit record failed after property create", zap.Error(err))
	}
	s.notifier.Publish(ctx, MutationEvent{
		Action:   models.AuditActionCreateProperty,
		Entity:   models.AuditEntityProperty,
		EntityID: property.ID,
	})

	return property, nil
}

func (s *propertyService) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *propertyService) SetStatus(ctx context.Context, id uuid.UUID, status models.PropertyStatus) (*models.Property, error) {
	identity, err := auth.RequireStaff(ctx)
	if err != nil {
		return nil, err
	}

	if !models.ManualPropertyStatus(status) {
		return nil, apperrors.Validationf("status %s is derived from deals and cannot be set manually", status)
	}

	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := property.Status
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		s.logger.Error("Failed to set property status",
			zap.String("property_id", id.String()),
			zap.Error(err))
		return nil, err
	}
	property.Status = status

	if err := s.audit.Record(ctx, identity.UserID, models.AuditActionSetPropertyStatus, models.AuditEntityProperty, &id, models.JSONBMap{
		"from": string(previous),
		"to":   string(status),
	}); err != nil {
		s.logger.Warn("Audit record failed after property status change", zap.Error(err))
	}
	s.notifier.Publish(ctx, MutationEvent{
		Action:   models.AuditActionSetPropertyStatus,
		Entity:   models.AuditEntityProperty,
		EntityID: id,
	})

	return property, nil
}
