package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/apperrors"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/auth"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/repositories"
)

// CreateDealInput carries the fields accepted when recording a deal.
// DurationMonths is virtual: it only feeds the transaction_end_date
// computation for RENT deals and is never persisted.
type CreateDealInput struct {
	LeadID           uuid.UUID
	PropertyID       uuid.UUID
	DealType         models.DealType
	Status           models.DealStatus
	CommissionAmount *decimal.Decimal
	TransactionDate  *time.Time
	DurationMonths   *int
}

// UpdateDealInput carries a partial update. Nil fields keep their
// stored values; an omitted status or property must never be treated as
// clearing them.
type UpdateDealInput struct {
	DealType         *models.DealType
	Status           *models.DealStatus
	PropertyID       *uuid.UUID
	CommissionAmount *decimal.Decimal
	TransactionDate  *time.Time
	DurationMonths   *int
}

// DealService manages the deal lifecycle. Whenever a transition could
// change which deal wins for a property, the affected properties are
// re-projected; a projection failure after a successful primary
// mutation is logged and swallowed (the projection lags correctness and
// self-heals on the next mutation against that property).
type DealService interface {
	CreateDeal(ctx context.Context, input CreateDealInput) (*models.Deal, error)
	UpdateDeal(ctx context.Context, dealID uuid.UUID, input UpdateDealInput) (*models.Deal, error)
	DeleteDeal(ctx context.Context, dealID, leadID uuid.UUID) error
	ListByLead(ctx context.Context, leadID uuid.UUID) ([]*models.Deal, error)
}

type dealService struct {
	deals     repositories.DealRepository
	leads     repositories.LeadRepository
	props     repositories.PropertyRepository
	projector PropertyProjector
	audit     AuditService
	notifier  Notifier
	logger    *zap.Logger
}

// NewDealService creates a new DealService.
func NewDealService(
	deals repositories.DealRepository,
	leads repositories.LeadRepository,
	props repositories.PropertyRepository,
	projector PropertyProjector,
	audit AuditService,
	notifier Notifier,
	logger *zap.Logger,
) DealService {
	return &dealService{
		deals:     deals,
		leads:     leads,
		props:     props,
		projector: projector,
		audit:     audit,
		notifier:  notifier,
		logger:    logger.Named("deal-service"),
	}
}

var _ DealService = (*dealService)(nil)

func (s *dealService) CreateDeal(ctx context.Context, input CreateDealInput) (*models.Deal, error) {
	identity, err := auth.RequireStaff(ctx)
	if err != nil {
		return nil, err
	}

	if input.LeadID == uuid.Nil {
		return nil, apperrors.Validationf("lead_id is required")
	}
	if input.PropertyID == uuid.Nil {
		return nil, apperrors.Validationf("property_id is required")
	}
	if !models.ValidDealType(input.DealType) {
		return nil, apperrors.Validationf("invalid deal_type: %s", input.DealType)
	}
	status := input.Status
	if status == "" {
		status = models.DealStatusNegotiating
	}
	if !models.ValidDealStatus(status) {
		return nil, apperrors.Validationf("invalid status: %s", status)
	}

	if _, err := s.leads.GetByID(ctx, input.LeadID); err != nil {
		return nil, err
	}
	if _, err := s.props.GetByID(ctx, input.PropertyID); err != nil {
		return nil, err
	}

	deal := &models.Deal{
		LeadID:           input.LeadID,
		PropertyID:       input.PropertyID,
		DealType:         input.DealType,
		Status:           status,
		CommissionAmount: input.CommissionAmount,
		TransactionDate:  input.TransactionDate,
		CreatedBy:        identity.UserID,
	}
	deal.TransactionEndDate = rentalEnd(deal.DealType, deal.TransactionDate, input.DurationMonths, nil)

	if err := s.deals.Create(ctx, deal); err != nil {
		s.logger.Error("Failed to create deal", zap.Error(err))
		return nil, err
	}

	s.recordAudit(ctx, identity.UserID, models.AuditActionCreateDeal, deal.ID, models.JSONBMap{
		"lead_id":     deal.LeadID.String(),
		"property_id": deal.PropertyID.String(),
		"deal_type":   string(deal.DealType),
		"status":      string(deal.Status),
	})

	if deal.Status == models.DealStatusClosedWin {
		s.project(ctx, deal.PropertyID)
	}

	return deal, nil
}

func (s *dealService) UpdateDeal(ctx context.Context, dealID uuid.UUID, input UpdateDealInput) (*models.Deal, error) {
	identity, err := auth.RequireStaff(ctx)
	if err != nil {
		return nil, err
	}

	// Load the current record first: a partial update may omit status,
	// property, or type, and omission must fall back to stored values.
	current, err := s.deals.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	prevStatus := current.Status
	prevProperty := current.PropertyID

	if input.DealType != nil {
		if !models.ValidDealType(*input.DealType) {
			return nil, apperrors.Validationf("invalid deal_type: %s", *input.DealType)
		}
		current.DealType = *input.DealType
	}
	if input.Status != nil {
		if !models.ValidDealStatus(*input.Status) {
			return nil, apperrors.Validationf("invalid status: %s", *input.Status)
		}
		current.Status = *input.Status
	}
	if input.PropertyID != nil {
		if *input.PropertyID == uuid.Nil {
			return nil, apperrors.Validationf("property_id must not be empty")
		}
		if *input.PropertyID != prevProperty {
			if _, err := s.props.GetByID(ctx, *input.PropertyID); err != nil {
				return nil, err
			}
		}
		current.PropertyID = *input.PropertyID
	}
	if input.CommissionAmount != nil {
		current.CommissionAmount = input.CommissionAmount
	}
	if input.TransactionDate != nil {
		current.TransactionDate = input.TransactionDate
	}
	current.TransactionEndDate = rentalEnd(current.DealType, current.TransactionDate, input.DurationMonths, current.TransactionEndDate)

	if err := s.deals.Update(ctx, current); err != nil {
		s.logger.Error("Failed to update deal",
			zap.String("deal_id", dealID.String()),
			zap.Error(err))
		return nil, err
	}

	s.recordAudit(ctx, identity.UserID, models.AuditActionUpdateDeal, dealID, models.JSONBMap{
		"status":      string(current.Status),
		"property_id": current.PropertyID.String(),
		"deal_type":   string(current.DealType),
	})

	// The gained side: the deal just saved is a winning candidate for
	// its (possibly new) property.
	if current.Status == models.DealStatusClosedWin {
		s.project(ctx, current.PropertyID)
	}
	// The lost side: another winning deal may still apply to the
	// previous property, or it must fall back to ACTIVE.
	if prevStatus == models.DealStatusClosedWin &&
		(current.Status != models.DealStatusClosedWin || current.PropertyID != prevProperty) {
		s.project(ctx, prevProperty)
	}

	return current, nil
}

func (s *dealService) DeleteDeal(ctx context.Context, dealID, leadID uuid.UUID) error {
	identity, err := auth.RequireStaff(ctx)
	if err != nil {
		return err
	}

	// Capture prior status and property before the row disappears.
	deal, err := s.deals.GetByID(ctx, dealID)
	if err != nil {
		return err
	}
	if deal.LeadID != leadID {
		return apperrors.ErrNotFound
	}

	if err := s.deals.Delete(ctx, dealID); err != nil {
		s.logger.Error("Failed to delete deal",
			zap.String("deal_id", dealID.String()),
			zap.Error(err))
		return err
	}

	s.recordAudit(ctx, identity.UserID, models.AuditActionDeleteDeal, dealID, models.JSONBMap{
		"lead_id":     leadID.String(),
		"property_id": deal.PropertyID.String(),
		"status":      string(deal.Status),
	})

	if deal.Status == models.DealStatusClosedWin {
		s.project(ctx, deal.PropertyID)
	}

	return nil
}

func (s *dealService) ListByLead(ctx context.Context, leadID uuid.UUID) ([]*models.Deal, error) {
	if _, err := auth.RequireStaff(ctx); err != nil {
		return nil, err
	}
	return s.deals.ListByLead(ctx, leadID)
}

// project runs the status projector for a property after a successful
// primary mutation. Failures are logged, never propagated: the next
// mutation against the property heals the projection.
func (s *dealService) project(ctx context.Context, propertyID uuid.UUID) {
	if err := s.projector.Recompute(ctx, propertyID); err != nil {
		s.logger.Warn("Property status projection failed",
			zap.String("property_id", propertyID.String()),
			zap.Error(err))
	}
}

func (s *dealService) recordAudit(ctx context.Context, actorID uuid.UUID, action string, dealID uuid.UUID, metadata models.JSONBMap) {
	if err := s.audit.Record(ctx, actorID, action, models.AuditEntityDeal, &dealID, metadata); err != nil {
		s.logger.Warn("Audit record failed", zap.String("action", action), zap.Error(err))
	}
	s.notifier.Publish(ctx, MutationEvent{
		Action:   action,
		Entity:   models.AuditEntityDeal,
		EntityID: dealID,
	})
}

// rentalEnd computes the effective transaction_end_date. For RENT deals
// with both a transaction date and a duration the end date is start
// plus duration months; without a new duration the stored end date is
// kept. SALE deals never carry an end date.
func rentalEnd(dealType models.DealType, start *time.Time, durationMonths *int, previous *time.Time) *time.Time {
	if dealType != models.DealTypeRent {
		return nil
	}
	if start == nil || durationMonths == nil {
		return previous
	}
	end := models.RentalEndDate(*start, *durationMonths)
	return &end
}
