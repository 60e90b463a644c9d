package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/repositories"
)

// PropertyProjector derives a property's commercial status from its
// deal history.
type PropertyProjector interface {
	// Recompute re-reads the property's winning deals and writes the
	// derived status. Idempotent and safe to call redundantly. On read
	// error it aborts without writing; a write error is returned for
	// the caller to log, never to roll back the primary mutation.
	Recompute(ctx context.Context, propertyID uuid.UUID) error
}

type propertyProjector struct {
	deals      repositories.DealRepository
	properties repositories.PropertyRepository
	logger     *zap.Logger
}

// NewPropertyProjector creates a new PropertyProjector.
func NewPropertyProjector(deals repositories.DealRepository, properties repositories.PropertyRepository, logger *zap.Logger) PropertyProjector {
	return &propertyProjector{
		deals:      deals,
		properties: properties,
		logger:     logger.Named("status-projector"),
	}
}

var _ PropertyProjector = (*propertyProjector)(nil)

func (p *propertyProjector) Recompute(ctx context.Context, propertyID uuid.UUID) error {
	winning, err := p.deals.LatestClosedWin(ctx, propertyID)
	if err != nil {
		return fmt.Errorf("failed to read winning deals: %w", err)
	}

	status := models.PropertyStatusActive
	if winning != nil {
		status = models.StatusForWonDeal(winning.DealType)
	}

	if err := p.properties.UpdateStatus(ctx, propertyID, status); err != nil {
		return fmt.Errorf("failed to write projected status: %w", err)
	}

	p.logger.Debug("Projected property status",
		zap.String("property_id", propertyID.String()),
		zap.String("status", string(status)))
	return nil
}
