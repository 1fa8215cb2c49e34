// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns ids application-side so the same models migrate on
// both postgres and the sqlite test dialect.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeAdmin     UserType = "admin"
	UserTypeStaff     UserType = "staff"
	UserTypeQualifier UserType = "qualifier"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

type PermitStatus string

const (
	PermitStatusDraft       PermitStatus = "draft"
	PermitStatusSubmitted   PermitStatus = "submitted"
	PermitStatusUnderReview PermitStatus = "under_review"
	PermitStatusApproved    PermitStatus = "approved"
	PermitStatusIssued      PermitStatus = "issued"
	PermitStatusClosed      PermitStatus = "closed"
	PermitStatusExpired     PermitStatus = "expired"
	PermitStatusRejected    PermitStatus = "rejected"
)

type OversightActionType string

const (
	OversightActionSiteVisit     OversightActionType = "site_visit"
	OversightActionPlanReview    OversightActionType = "plan_review"
	OversightActionPermitReview  OversightActionType = "permit_review"
	OversightActionClientMeeting OversightActionType = "client_meeting"
)

// OverrideActionType labels the compliance rule a justification overrode.
type OverrideActionType string

const (
	OverrideOversightMinimum OverrideActionType = "OVERSIGHT_MINIMUM_OVERRIDE"
	OverrideQualifierAbsent  OverrideActionType = "QUALIFIER_ABSENT_OVERRIDE"
)

// Entity type labels used by ComplianceJustification and AuditLog rows.
const (
	EntityTypeLicensedBusiness = "licensed_business"
	EntityTypeQualifier        = "qualifier"
	EntityTypeAssignment       = "assignment"
	EntityTypeProject          = "project"
	EntityTypePermit           = "permit"
	EntityTypeOversightAction  = "oversight_action"
)
