// internal/models/project.go
package models

import (
	"github.com/google/uuid"
)

// Project is a unit of construction work. Business and qualifier are fixed at
// creation; there is no mid-project reassignment. QualifierAbsent is a
// read-only marker set when the governing qualifier exits the business:
// compliance-critical operations on a flagged project require a justification,
// administrative edits remain allowed.
type Project struct {
	BaseModel
	LicensedBusinessID uuid.UUID     `json:"licensed_business_id" gorm:"type:uuid;not null;index"`
	QualifierID        uuid.UUID     `json:"qualifier_id" gorm:"type:uuid;not null;index"`
	Name               string        `json:"name" gorm:"size:255;not null"`
	SiteAddress        string        `json:"site_address" gorm:"type:text"`
	Status             ProjectStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	QualifierAbsent    bool          `json:"qualifier_absent" gorm:"default:false;index"`

	// Relationships
	LicensedBusiness LicensedBusiness `json:"licensed_business,omitempty" gorm:"foreignKey:LicensedBusinessID"`
	Qualifier        Qualifier        `json:"qualifier,omitempty" gorm:"foreignKey:QualifierID"`
	Permits          []Permit         `json:"permits,omitempty" gorm:"foreignKey:ProjectID"`
}
