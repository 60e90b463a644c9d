package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntityType identifies the kind of record an audit entry refers to.
const (
	AuditEntityLead     = "lead"
	AuditEntityDeal     = "deal"
	AuditEntityProperty = "property"
)

// Audit action names. One entry is written per successful mutation.
const (
	AuditActionCreateDeal        = "create_deal"
	AuditActionUpdateDeal        = "update_deal"
	AuditActionDeleteDeal        = "delete_deal"
	AuditActionSetLeadStage      = "set_lead_stage"
	AuditActionCreateLead        = "create_lead"
	AuditActionSetPropertyStatus = "set_property_status"
	AuditActionCreateProperty    = "create_property"
)

// AuditLogEntry represents a single entry in the mutation audit log.
// Stored in the crm_audit_log table. The engine writes these but never
// reads them back outside of the audit trail endpoint.
type AuditLogEntry struct {
	ID       uuid.UUID  `json:"id"`
	Action   string     `json:"action"`
	Entity   string     `json:"entity"`
	EntityID *uuid.UUID `json:"entity_id,omitempty"`
	ActorID  uuid.UUID  `json:"actor_id"`
	Metadata JSONBMap   `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
