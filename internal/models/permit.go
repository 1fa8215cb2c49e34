// internal/models/permit.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Permit is a regulated work scope under a project. LicensedBusinessID is
// denormalized from the project for audit clarity. A permit cannot close
// unless the oversight minimum is satisfied or an override justification
// exists.
type Permit struct {
	BaseModel
	ProjectID          uuid.UUID    `json:"project_id" gorm:"type:uuid;not null;index"`
	LicensedBusinessID uuid.UUID    `json:"licensed_business_id" gorm:"type:uuid;not null;index"`
	PermitNumber       string       `json:"permit_number" gorm:"uniqueIndex;size:50;not null"`
	WorkDescription    string       `json:"work_description" gorm:"type:text"`
	IssuanceDate       time.Time    `json:"issuance_date" gorm:"not null"`
	FinalizationDate   *time.Time   `json:"finalization_date"`
	ExpirationDate     *time.Time   `json:"expiration_date"`
	CancellationDate   *time.Time   `json:"cancellation_date"`
	Status             PermitStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`

	// Relationships
	Project          Project           `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	LicensedBusiness LicensedBusiness  `json:"licensed_business,omitempty" gorm:"foreignKey:LicensedBusinessID"`
	OversightActions []OversightAction `json:"oversight_actions,omitempty" gorm:"foreignKey:PermitID"`
}

// OversightWindowEnd returns the exclusive end of the permit's valid oversight
// window: finalization, else expiration, else cancellation, else nil (open).
func (p *Permit) OversightWindowEnd() *time.Time {
	if p.FinalizationDate != nil {
		return p.FinalizationDate
	}
	if p.ExpirationDate != nil {
		return p.ExpirationDate
	}
	return p.CancellationDate
}

// OversightAction is documented evidence of qualifier supervision over a
// permit: a site visit, plan review, permit review, or client meeting.
type OversightAction struct {
	BaseModel
	PermitID    uuid.UUID           `json:"permit_id" gorm:"type:uuid;not null;index"`
	QualifierID uuid.UUID           `json:"qualifier_id" gorm:"type:uuid;not null;index"`
	ActionType  OversightActionType `json:"action_type" gorm:"type:varchar(20);not null"`
	ActionDate  time.Time           `json:"action_date" gorm:"not null;index"`
	Notes       string              `json:"notes" gorm:"type:text"`

	// Relationships
	Permit    Permit    `json:"permit,omitempty" gorm:"foreignKey:PermitID"`
	Qualifier Qualifier `json:"qualifier,omitempty" gorm:"foreignKey:QualifierID"`
}
