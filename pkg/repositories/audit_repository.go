package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/apperrors"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/database"
	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
)

// AuditRepository provides data access for the mutation audit log.
type AuditRepository interface {
	// Create inserts a new audit log entry.
	Create(ctx context.Context, entry *models.AuditLogEntry) error

	// GetByEntity returns all audit log entries for a specific entity,
	// newest first.
	GetByEntity(ctx context.Context, entity string, entityID uuid.UUID) ([]*models.AuditLogEntry, error)
}

type auditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *database.DB) AuditRepository {
	return &auditRepository{db: db}
}

var _ AuditRepository = (*auditRepository)(nil)

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()

	var metadataJSON []byte
	var err error
	if len(entry.Metadata) > 0 {
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return apperrors.Persistencef("marshal audit metadata", err)
		}
	}

	query := `
		INSERT INTO crm_audit_log (id, action, entity, entity_id, actor_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.Exec(ctx, query,
		entry.ID,
		entry.Action,
		entry.Entity,
		entry.EntityID,
		entry.ActorID,
		metadataJSON,
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Persistencef("create audit log entry", err)
	}

	return nil
}

func (r *auditRepository) GetByEntity(ctx context.Context, entity string, entityID uuid.UUID) ([]*models.AuditLogEntry, error) {
	query := `
		SELECT id, action, entity, entity_id, actor_id, metadata, created_at
		FROM crm_audit_log
		WHERE entity = $1 AND entity_id = $2
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, entity, entityID)
	if err != nil {
		return nil, apperrors.Persistencef("query audit log", err)
	}
	defer rows.Close()

	var entries []*models.AuditLogEntry
	for rows.Next() {
		entry, err := scanAuditLogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistencef("iterate audit log entries", err)
	}

	return entries, nil
}

func scanAuditLogEntry(row pgx.Row) (*models.AuditLogEntry, error) {
	var entry models.AuditLogEntry
	var metadataJSON []byte

	err := row.Scan(
		&entry.ID,
		&entry.Action,
		&entry.Entity,
		&entry.EntityID,
		&entry.ActorID,
		&metadataJSON,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.Persistencef("scan audit log entry", err)
	}

	if len(metadataJSON) > 0 && string(metadataJSON) != "null" {
		if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			return nil, apperrors.Persistencef("unmarshal audit metadata", err)
		}
	}

	return &entry, nil
}
