package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DealType distinguishes a sale from a rental.
type DealType string

const (
	DealTypeSale DealType = "SALE"
	DealTypeRent DealType = "RENT"
)

// ValidDealType reports whether t is a known deal type.
func ValidDealType(t DealType) bool {
	return t == DealTypeSale || t == DealTypeRent
}

// DealStatus represents a deal's commercial lifecycle state.
//
// Transitions are deliberately unconstrained: any status may follow any
// other (a closed-won deal can be reopened, a cancelled one revived).
type DealStatus string

const (
	DealStatusNegotiating DealStatus = "NEGOTIATING"
	DealStatusSigned      DealStatus = "SIGNED"
	DealStatusClosedWin   DealStatus = "CLOSED_WIN"
	DealStatusClosedLoss  DealStatus = "CLOSED_LOSS"
	DealStatusCancelled   DealStatus = "CANCELLED"
)

// ValidDealStatus reports whether s is a known deal status.
func ValidDealStatus(s DealStatus) bool {
	switch s {
	case DealStatusNegotiating, DealStatusSigned, DealStatusClosedWin,
		DealStatusClosedLoss, DealStatusCancelled:
		return true
	}
	return false
}

// Deal represents a negotiation between a lead and a property.
//
// TransactionEndDate is only meaningful for RENT deals; it is derived
// from TransactionDate plus a rental duration at write time.
type Deal struct {
	ID                 uuid.UUID        `json:"id"`
	LeadID             uuid.UUID        `json:"lead_id"`
	PropertyID         uuid.UUID        `json:"property_id"`
	DealType           DealType         `json:"deal_type"`
	Status             DealStatus       `json:"status"`
	CommissionAmount   *decimal.Decimal `json:"commission_amount,omitempty"`
	TransactionDate    *time.Time       `json:"transaction_date,omitempty"`
	TransactionEndDate *time.Time       `json:"transaction_end_date,omitempty"`
	CreatedBy          uuid.UUID        `json:"created_by"`
	CreatedAt          time.Time        `json:"created_at"`
}

// RentalEndDate computes the end date of a rental running for
// durationMonths from start. Uses calendar-month arithmetic.
func RentalEndDate(start time.Time, durationMonths int) time.Time {
	return start.AddDate(0, durationMonths, 0)
}
