package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyStatus represents a listing's public commercial status.
//
// SOLD and RENTED are derived from deal history by the status projector.
// The remaining statuses are set manually by listing workflows; the
// projector only ever writes ACTIVE, SOLD, or RENTED.
type PropertyStatus string

const (
	PropertyStatusDraft      PropertyStatus = "DRAFT"
	PropertyStatusActive     PropertyStatus = "ACTIVE"
	PropertyStatusUnderOffer PropertyStatus = "UNDER_OFFER"
	PropertyStatusReserved   PropertyStatus = "RESERVED"
	PropertyStatusSold       PropertyStatus = "SOLD"
	PropertyStatusRented     PropertyStatus = "RENTED"
	PropertyStatusArchived   PropertyStatus = "ARCHIVED"
)

// ValidPropertyStatus reports whether s is a known property status.
func ValidPropertyStatus(s PropertyStatus) bool {
	switch s {
	case PropertyStatusDraft, PropertyStatusActive, PropertyStatusUnderOffer,
		PropertyStatusReserved, PropertyStatusSold, PropertyStatusRented,
		PropertyStatusArchived:
		return true
	}
	return false
}

// ManualPropertyStatus reports whether s may be set through the manual
// status endpoint. SOLD and RENTED are projector-owned and rejected.
func ManualPropertyStatus(s PropertyStatus) bool {
	switch s {
	case PropertyStatusDraft, PropertyStatusActive, PropertyStatusUnderOffer,
		PropertyStatusReserved, PropertyStatusArchived:
		return true
	}
	return false
}

// StatusForWonDeal maps a winning deal's type to the derived property
// status.
func StatusForWonDeal(t DealType) PropertyStatus {
	if t == DealTypeRent {
		return PropertyStatusRented
	}
	return PropertyStatusSold
}

// Property represents a listed asset. Only the fields relevant to the
// pipeline engine are modeled here.
type Property struct {
	ID        uuid.UUID        `json:"id"`
	Title     string           `json:"title"`
	City      *string          `json:"city,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Status    PropertyStatus   `json:"status"`
	CreatedBy uuid.UUID        `json:"created_by"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
