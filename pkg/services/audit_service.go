// Package services contains the pipeline engine's business logic: the
// deal lifecycle, the lead stage engine, and the property status
// projector.
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/repositories"
)

// AuditService records one entry per successful mutation. Audit logging
// must never break the primary operation; callers log failures and
// carry on.
type AuditService interface {
	// Record writes an audit entry tagged with the action name, the
	// entity, and a metadata snapshot of the input.
	Record(ctx context.Context, actorID uuid.UUID, action, entity string, entityID *uuid.UUID, metadata models.JSONBMap) error

	// GetByEntity returns the audit trail for a specific entity.
	GetByEntity(ctx context.Context, entity string, entityID uuid.UUID) ([]*models.AuditLogEntry, error)
}

type auditService struct {
	repo   repositories.AuditRepository
	logger *zap.Logger
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo repositories.AuditRepository, logger *zap.Logger) AuditService {
	return &auditService{
		repo:   repo,
		logger: logger.Named("audit-service"),
	}
}

var _ AuditService = (*auditService)(nil)

func (s *auditService) Record(ctx context.Context, actorID uuid.UUID, action, entity string, entityID *uuid.UUID, metadata models.JSONBMap) error {
	entry := &models.AuditLogEntry{
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		ActorID:  actorID,
		Metadata: metadata,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to create audit log entry",
			zap.String("action", action),
			zap.String("entity", entity),
			zap.Error(err))
		return fmt.Errorf("create audit log entry: %w", err)
	}

	return nil
}

func (s *auditService) GetByEntity(ctx context.Context, entity string, entityID uuid.UUID) ([]*models.AuditLogEntry, error) {
	entries, err := s.repo.GetByEntity(ctx, entity, entityID)
	if err != nil {
		s.logger.Error("Failed to read audit trail",
			zap.String("entity", entity),
			zap.String("entity_id", entityID.String()),
			zap.Error(err))
		return nil, err
	}
	return entries, nil
}
