// internal/services/qualifier_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/permitdesk/permit-backend/internal/models"
	"github.com/permitdesk/permit-backend/internal/utils"
)

type QualifierService struct {
	db *gorm.DB
}

type RegisterQualifierRequest struct {
	UserID                uuid.UUID `json:"user_id" validate:"required"`
	PersonalLicenseNumber *string   `json:"personal_license_number,omitempty" validate:"omitempty,license_number"`
}

func NewQualifierService(db *gorm.DB) *QualifierService {
	return &QualifierService{db: db}
}

// RegisterQualifier links a user identity to a qualifier record; the link is
// one-to-one.
func (s *QualifierService) RegisterQualifier(req *RegisterQualifierRequest) (*models.Qualifier, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user.Status != models.UserStatusActive {
		return nil, errors.New("user account is not active")
	}

	var existing models.Qualifier
	if err := s.db.Where("user_id = ?", req.UserID).First(&existing).Error; err == nil {
		return nil, errors.New("user is already registered as a qualifier")
	}

	qualifier := &models.Qualifier{
		UserID:                req.UserID,
		PersonalLicenseNumber: req.PersonalLicenseNumber,
		IsActive:              true,
	}

	if err := s.db.Create(qualifier).Error; err != nil {
		return nil, fmt.Errorf("failed to register qualifier: %w", err)
	}

	return qualifier, nil
}

func (s *QualifierService) GetQualifier(id uuid.UUID) (*models.Qualifier, error) {
	var qualifier models.Qualifier
	if err := s.db.Preload("User").Preload("Assignments").First(&qualifier, id).Error; err != nil {
		return nil, err
	}
	return &qualifier, nil
}

func (s *QualifierService) DeactivateQualifier(id uuid.UUID) (*models.Qualifier, error) {
	var qualifier models.Qualifier
	if err := s.db.First(&qualifier, id).Error; err != nil {
		return nil, err
	}
	if !qualifier.IsActive {
		return nil, errors.New("qualifier is already deactivated")
	}

	if err := s.db.Model(&qualifier).Update("is_active", false).Error; err != nil {
		return nil, fmt.Errorf("failed to deactivate qualifier: %w", err)
	}
	qualifier.IsActive = false

	return &qualifier, nil
}

// ListAssignments returns the qualifier's assignments, optionally narrowed to
// those active as of a date. The asOf filter matches the capacity validator's
// definition of active: started on or before the date and not yet ended.
func (s *QualifierService) ListAssignments(qualifierID uuid.UUID, asOf *time.Time) ([]models.LicensedBusinessQualifierAssignment, error) {
	query := s.db.Where("qualifier_id = ?", qualifierID)
	if asOf != nil {
		query = query.Where("start_date <= ? AND (end_date IS NULL OR end_date > ?)", *asOf, *asOf)
	}

	var assignments []models.LicensedBusinessQualifierAssignment
	if err := query.Preload("LicensedBusiness").Order("start_date DESC").Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	return assignments, nil
}

func (s *QualifierService) SearchQualifiers(params utils.PaginationParams) ([]models.Qualifier, int64, error) {
	query := s.db.Model(&models.Qualifier{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count qualifiers: %w", err)
	}

	var qualifiers []models.Qualifier
	query = utils.ApplySort(query, params, []string{"created_at"})
	if err := utils.ApplyPagination(query, params).Preload("User").Find(&qualifiers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search qualifiers: %w", err)
	}

	return qualifiers, total, nil
}
