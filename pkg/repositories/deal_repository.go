package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/apperrors"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/database"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
)

// DealRepository provides data access for deals.
type DealRepository interface {
	// Create inserts a new deal.
	Create(ctx context.Context, deal *models.Deal) error

	// GetByID returns the deal with the given id, or apperrors.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error)

	// ListByLead returns all deals for a lead, newest first.
	ListByLead(ctx context.Context, leadID uuid.UUID) ([]*models.Deal, error)

	// Update persists the mutable fields of a deal. Returns
	// apperrors.ErrNotFound when the deal does not exist.
	Update(ctx context.Context, deal *models.Deal) error

	// Delete removes a deal permanently. Returns apperrors.ErrNotFound
	// when the deal does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// LatestClosedWin returns the most recent CLOSED_WIN deal for a
	// property (created_at descending, id as deterministic tie-break),
	// or nil when the property has none.
	LatestClosedWin(ctx context.Context, propertyID uuid.UUID) (*models.Deal, error)
}

type dealRepository struct {
	db *database.DB
}

// NewDealRepository creates a new DealRepository.
func NewDealRepository(db *database.DB) DealRepository {
	return &dealRepository{db: db}
}

var _ DealRepository = (*dealRepository)(nil)

const dealColumns = `id, lead_id, property_id, deal_type, status, commission_amount, transaction_date, transaction_end_date, created_by, created_at`

func (r *dealRepository) Create(ctx context.Context, deal *models.Deal) error {
	if deal.ID == uuid.Nil {
		deal.ID = uuid.New()
	}
	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = time.Now()
	}
	if deal.Status == "" {
		deal.Status = models.DealStatusNegotiating
	}

	query := `
		INSERT INTO deals (` + dealColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		deal.ID,
		deal.LeadID,
		deal.PropertyID,
		deal.DealType,
		deal.Status,
		decimalArg(deal.CommissionAmount),
		deal.TransactionDate,
		deal.TransactionEndDate,
		deal.CreatedBy,
		deal.CreatedAt,
	)
	if err != nil {
		return apperrors.Persistencef("create deal", err)
	}

	return nil
}

func (r *dealRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`

	deal, err := scanDeal(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Persistencef("get deal", err)
	}

	return deal, nil
}

func (r *dealRepository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]*models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE lead_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, leadID)
	if err != nil {
		return nil, apperrors.Persistencef("query deals", err)
	}
	defer rows.Close()

	var deals []*models.Deal
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, apperrors.Persistencef("scan deal", err)
		}
		deals = append(deals, deal)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistencef("iterate deals", err)
	}

	return deals, nil
}

func (r *dealRepository) Update(ctx context.Context, deal *models.Deal) error {
	query := `
		UPDATE deals
		SET lead_id = $1, property_id = $2, deal_type = $3, status = $4,
		    commission_amount = $5, transaction_date = $6, transaction_end_date = $7
		WHERE id = $8`

	tag, err := r.db.Exec(ctx, query,
		deal.LeadID,
		deal.PropertyID,
		deal.DealType,
		deal.Status,
		decimalArg(deal.CommissionAmount),
		deal.TransactionDate,
		deal.TransactionEndDate,
		deal.ID,
	)
	if err != nil {
		return apperrors.Persistencef("update deal", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *dealRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM deals WHERE id = $1`, id)
	if err != nil {
		return apperrors.Persistencef("delete deal", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *dealRepository) LatestClosedWin(ctx context.Context, propertyID uuid.UUID) (*models.Deal, error) {
	query := `
		SELECT ` + dealColumns + `
		FROM deals
		WHERE property_id = $1 AND status = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	deal, err := scanDeal(r.db.QueryRow(ctx, query, propertyID, models.DealStatusClosedWin))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Persistencef("query latest winning deal", err)
	}

	return deal, nil
}

func scanDeal(row pgx.Row) (*models.Deal, error) {
	var deal models.Deal
	var commission *string

	err := row.Scan(
		&deal.ID,
		&deal.LeadID,
		&deal.PropertyID,
		&deal.DealType,
		&deal.Status,
		&commission,
		&deal.TransactionDate,
		&deal.TransactionEndDate,
		&deal.CreatedBy,
		&deal.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if commission != nil {
		d, err := decimal.NewFromString(*commission)
		if err != nil {
			return nil, apperrors.Persistencef("parse commission amount", err)
		}
		deal.CommissionAmount = &d
	}

	return &deal, nil
}

// decimalArg converts an optional decimal to a numeric query argument.
func decimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}
