// Package models contains domain types for the brokerage pipeline engine.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LeadStage represents a lead's position in the sales pipeline.
type LeadStage string

// Pipeline stages. The ordering shown on the kanban board is purely
// visual; any stage may transition to any other stage.
const (
	StageNew         LeadStage = "NEW"
	StageContacted   LeadStage = "CONTACTED"
	StageViewed      LeadStage = "VIEWED"
	StageNegotiating LeadStage = "NEGOTIATING"
	StageClosed      LeadStage = "CLOSED"
)

// AllStages lists the pipeline stages in board column order.
var AllStages = []LeadStage{
	StageNew,
	StageContacted,
	StageViewed,
	StageNegotiating,
	StageClosed,
}

// ValidLeadStage reports whether s is one of the five pipeline stages.
func ValidLeadStage(s LeadStage) bool {
	switch s {
	case StageNew, StageContacted, StageViewed, StageNegotiating, StageClosed:
		return true
	}
	return false
}

// Lead represents a prospective customer tracked through the pipeline.
type Lead struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Stage       LeadStage `json:"stage"`
	BudgetMin   *int64    `json:"budget_min,omitempty"`
	BudgetMax   *int64    `json:"budget_max,omitempty"`
	Preferences JSONBMap  `json:"preferences,omitempty"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// JSONBMap is a map type that handles PostgreSQL JSONB serialization.
type JSONBMap map[string]interface{}

// Value implements driver.Valuer for database serialization.
func (j JSONBMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for database deserialization.
func (j *JSONBMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONBMap", value)
	}

	return json.Unmarshal(bytes, j)
}
