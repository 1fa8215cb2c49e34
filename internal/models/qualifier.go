// internal/models/qualifier.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Qualifier is an individual whose license backs a business's authority to
// pull permits. A qualifier may back at most two businesses at any instant;
// the limit itself lives in config and is enforced by the compliance layer.
type Qualifier struct {
	BaseModel
	UserID                uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	PersonalLicenseNumber *string   `json:"personal_license_number,omitempty" gorm:"size:50"`
	IsActive              bool      `json:"is_active" gorm:"default:true;index"`

	// Relationships
	User        User                                  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Assignments []LicensedBusinessQualifierAssignment `json:"assignments,omitempty" gorm:"foreignKey:QualifierID"`
}

// LicensedBusinessQualifierAssignment is the time-bound relationship between
// one business and one qualifier. EndDate == nil means the assignment is
// active. CutoffTimestamp, when set, is the hard end of the qualifier's
// authority for this business regardless of EndDate.
type LicensedBusinessQualifierAssignment struct {
	BaseModel
	LicensedBusinessID uuid.UUID  `json:"licensed_business_id" gorm:"type:uuid;not null;index:idx_assignments_pair"`
	QualifierID        uuid.UUID  `json:"qualifier_id" gorm:"type:uuid;not null;index;index:idx_assignments_pair"`
	StartDate          time.Time  `json:"start_date" gorm:"not null"`
	EndDate            *time.Time `json:"end_date"`
	CutoffTimestamp    *time.Time `json:"cutoff_timestamp"`

	// Relationships
	LicensedBusiness LicensedBusiness `json:"licensed_business,omitempty" gorm:"foreignKey:LicensedBusinessID"`
	Qualifier        Qualifier        `json:"qualifier,omitempty" gorm:"foreignKey:QualifierID"`
}

func (LicensedBusinessQualifierAssignment) TableName() string {
	return "business_qualifier_assignments"
}

// ActiveAt reports whether the assignment covers the given instant:
// started on or before it and not yet ended.
func (a *LicensedBusinessQualifierAssignment) ActiveAt(t time.Time) bool {
	if a.StartDate.After(t) {
		return false
	}
	return a.EndDate == nil || a.EndDate.After(t)
}

// WithinAuthority reports whether an action at the given instant falls inside
// the assignment's window and before its cutoff, if one is set.
func (a *LicensedBusinessQualifierAssignment) WithinAuthority(t time.Time) bool {
	if !a.ActiveAt(t) {
		return false
	}
	return a.CutoffTimestamp == nil || !t.After(*a.CutoffTimestamp)
}
