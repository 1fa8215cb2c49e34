// internal/compliance/decision.go
package compliance

import (
	"time"

	"github.com/permitdesk/permit-backend/internal/models"
)

// ReasonCode is the machine-readable code attached to every blocked
// operation. Callers translate these into HTTP error payloads.
type ReasonCode string

const (
	ReasonQualifierCapacityExceeded ReasonCode = "QUALIFIER_CAPACITY_EXCEEDED"
	ReasonQualifierCutoffExceeded   ReasonCode = "QUALIFIER_CUTOFF_EXCEEDED"
	ReasonNoValidQualifier          ReasonCode = "NO_VALID_QUALIFIER"
	ReasonOversightMinimumNotMet    ReasonCode = "OVERSIGHT_MINIMUM_NOT_MET"
	ReasonProjectQualifierAbsent    ReasonCode = "PROJECT_QUALIFIER_ABSENT"
	ReasonInvalidJustification      ReasonCode = "INVALID_JUSTIFICATION"
)

// CapacityResult is the capacity validator's verdict. AtCapacity is a
// legitimate blocking result, not an error.
type CapacityResult struct {
	CurrentCount int  `json:"current_count"`
	AtCapacity   bool `json:"at_capacity"`
}

// CutoffResult is the cutoff validator's verdict. WithinWindow is false both
// when the action falls past a cutoff and when no assignment covers the
// action date at all; CutoffDate is nil in the latter case.
type CutoffResult struct {
	WithinWindow bool       `json:"within_window"`
	CutoffDate   *time.Time `json:"cutoff_date,omitempty"`
}

// OversightResult is the oversight minimum evaluator's verdict.
type OversightResult struct {
	Satisfied    bool                     `json:"satisfied"`
	ValidActions []models.OversightAction `json:"valid_actions"`
}
