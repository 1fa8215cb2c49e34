// internal/models/justification.go
package models

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplianceJustification is the immutable audit record created whenever a
// soft compliance rule is overridden. Rows are append-only: the hooks below
// reject updates and deletes so the trail can answer "was this override
// accountable?" at any future time.
type ComplianceJustification struct {
	BaseModel
	ActionType    OverrideActionType `json:"action_type" gorm:"type:varchar(50);not null;index"`
	EntityType    string             `json:"entity_type" gorm:"size:50;not null;index:idx_justifications_entity"`
	EntityID      uuid.UUID          `json:"entity_id" gorm:"type:uuid;not null;index:idx_justifications_entity"`
	Justification string             `json:"justification" gorm:"type:text;not null"`
	ApproverID    uuid.UUID          `json:"approver_id" gorm:"type:uuid;not null;index"`
	ReferenceCode string             `json:"reference_code" gorm:"uniqueIndex;size:40;not null"`

	// Relationships
	Approver User `json:"approver,omitempty" gorm:"foreignKey:ApproverID"`
}

var ErrJustificationImmutable = errors.New("compliance justifications are append-only")

func (ComplianceJustification) BeforeUpdate(tx *gorm.DB) error {
	return ErrJustificationImmutable
}

func (ComplianceJustification) BeforeDelete(tx *gorm.DB) error {
	return ErrJustificationImmutable
}
