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

// PropertyRepository provides data access for properties. The status
// projector is the only writer of SOLD/RENTED; everything else reaches
// UpdateStatus through the manual listing workflow.
type PropertyRepository interface {
	// Create inserts a new property.
	Create(ctx context.Context, property *models.Property) error

	// GetByID returns the property with the given id, or
	// apperrors.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)

	// UpdateStatus writes a property's status and updated_at. Returns
	// apperrors.ErrNotFound when the property does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PropertyStatus) error
}

type propertyRepository struct {
	db *database.DB
}

// NewPropertyRepository creates a new PropertyRepository.
func NewPropertyRepository(db *database.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

var _ PropertyRepository = (*propertyRepository)(nil)

const propertyColumns = `id, title, city, price, status, created_by, created_at, updated_at`

func (r *propertyRepository) Create(ctx context.Context, property *models.Property) error {
	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}
	now := time.Now()
	property.CreatedAt = now
	property.UpdatedAt = now
	if property.Status == "" {
		property.Status = models.PropertyStatusDraft
	}

	query := `
		INSERT INTO properties (` + propertyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		property.ID,
		property.Title,
		property.City,
		decimalArg(property.Price),
		property.Status,
		property.CreatedBy,
		property.CreatedAt,
		property.UpdatedAt,
	)
	if err != nil {
		return apperrors.Persistencef("create property", err)
	}

	return nil
}

func (r *propertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	var property models.Property
	var price *string

	err := r.db.QueryRow(ctx, query, id).Scan(
		&property.ID,
		&property.Title,
		&property.City,
		&price,
		&property.Status,
		&property.CreatedBy,
		&property.CreatedAt,
		&property.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Persistencef("get property", err)
	}

	if price != nil {
		d, err := decimal.NewFromString(*price)
		if err != nil {
			return nil, apperrors.Persistencef("parse property price", err)
		}
		property.Price = &d
	}

	return &property, nil
}

func (r *propertyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PropertyStatus) error {
	query := `UPDATE properties SET status = $1, updated_at = $2 WHERE id = $3`

	tag, err := r.db.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		return apperrors.Persistencef("update property status", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
