// internal/models/business.go
package models

import (
	"time"

	"github.com/lib/pq"
)

// LicensedBusiness is an entity holding a regulatory license to perform
// contracting work. Businesses are soft-deactivated, never hard-deleted,
// so the audit trail stays intact.
type LicensedBusiness struct {
	BaseModel
	EntityName       string         `json:"entity_name" gorm:"size:255;not null"`
	LicenseNumber    string         `json:"license_number" gorm:"uniqueIndex;size:50;not null"`
	LicenseExpiresAt time.Time      `json:"license_expires_at" gorm:"not null"`
	Classifications  pq.StringArray `json:"classifications" gorm:"type:text[]"`
	IsActive         bool           `json:"is_active" gorm:"default:true;index"`

	// Relationships
	Assignments []LicensedBusinessQualifierAssignment `json:"assignments,omitempty" gorm:"foreignKey:LicensedBusinessID"`
	Projects    []Project                             `json:"projects,omitempty" gorm:"foreignKey:LicensedBusinessID"`
}
