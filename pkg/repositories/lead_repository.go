// Package repositories provides pgx-backed data access for the pipeline
// engine's relational store. Missing rows surface as apperrors.ErrNotFound;
// every other store failure wraps apperrors.ErrPersistence.
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/apperrors"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/database"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
)

// LeadRepository provides data access for leads.
type LeadRepository interface {
	// Create inserts a new lead.
	Create(ctx context.Context, lead *models.Lead) error

	// GetByID returns the lead with the given id, or apperrors.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lead, error)

	// List returns all leads ordered by creation time (newest first).
	List(ctx context.Context) ([]*models.Lead, error)

	// UpdateStage writes a lead's stage and updated_at. Returns
	// apperrors.ErrNotFound when the lead does not exist.
	UpdateStage(ctx context.Context, id uuid.UUID, stage models.LeadStage) error
}

type leadRepository struct {
	db *database.DB
}

// NewLeadRepository creates a new LeadRepository.
func NewLeadRepository(db *database.DB) LeadRepository {
	return &leadRepository{db: db}
}

var _ LeadRepository = (*leadRepository)(nil)

const leadColumns = `id, name, email, phone, stage, budget_min, budget_max, preferences, created_by, created_at, updated_at`

func (r *leadRepository) Create(ctx context.Context, lead *models.Lead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	if lead.Stage == "" {
		lead.Stage = models.StageNew
	}

	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Stage,
		lead.BudgetMin,
		lead.BudgetMax,
		lead.Preferences,
		lead.CreatedBy,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return apperrors.Persistencef("create lead", err)
	}

	return nil
}

func (r *leadRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Persistencef("get lead", err)
	}

	return lead, nil
}

func (r *leadRepository) List(ctx context.Context) ([]*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, apperrors.Persistencef("query leads", err)
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, apperrors.Persistencef("scan lead", err)
		}
		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistencef("iterate leads", err)
	}

	return leads, nil
}

func (r *leadRepository) UpdateStage(ctx context.Context, id uuid.UUID, stage models.LeadStage) error {
	query := `UPDATE leads SET stage = $1, updated_at = $2 WHERE id = $3`

	tag, err := r.db.Exec(ctx, query, stage, time.Now(), id)
	if err != nil {
		return apperrors.Persistencef("update lead stage", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanLead(row pgx.Row) (*models.Lead, error) {
	var lead models.Lead
	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Stage,
		&lead.BudgetMin,
		&lead.BudgetMax,
		&lead.Preferences,
		&lead.CreatedBy,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}
