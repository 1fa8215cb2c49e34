// internal/services/errors.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/permitdesk/permit-backend/internal/compliance"
)

// ComplianceError is a BLOCK decision surfaced to the caller. Validators
// themselves never return errors for expected rule failures; the orchestrator
// is the only layer that converts a blocking verdict into one of these.
type ComplianceError struct {
	Code       compliance.ReasonCode  `json:"code"`
	Message    string                 `json:"message"`
	EntityType string                 `json:"entity_type,omitempty"`
	EntityID   uuid.UUID              `json:"entity_id,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

func (e *ComplianceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewBlockError(code compliance.ReasonCode, message, entityType string, entityID uuid.UUID) *ComplianceError {
	return &ComplianceError{
		Code:       code,
		Message:    message,
		EntityType: entityType,
		EntityID:   entityID,
	}
}

func (e *ComplianceError) WithDetail(key string, value interface{}) *ComplianceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// AsComplianceError unwraps err into a *ComplianceError if it is one.
func AsComplianceError(err error) (*ComplianceError, bool) {
	var ce *ComplianceError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// InfrastructureError wraps unexpected failures (store connectivity, broken
// invariants) so callers can distinguish them from rule blocks. These are
// always surfaced, never retried silently: a misleading ALLOW in a compliance
// system is worse than a visible failure.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

func newInfraError(op string, err error) *InfrastructureError {
	return &InfrastructureError{Op: op, Err: err}
}
