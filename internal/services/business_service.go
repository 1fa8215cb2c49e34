// internal/services/business_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/permitdesk/permit-backend/internal/models"
	"github.com/permitdesk/permit-backend/internal/utils"
)

type BusinessService struct {
	db *gorm.DB
}

type CreateBusinessRequest struct {
	EntityName       string    `json:"entity_name" validate:"required,max=255"`
	LicenseNumber    string    `json:"license_number" validate:"required,license_number"`
	LicenseExpiresAt time.Time `json:"license_expires_at" validate:"required"`
	Classifications  []string  `json:"classifications,omitempty"`
}

type UpdateBusinessRequest struct {
	EntityName       *string    `json:"entity_name,omitempty" validate:"omitempty,max=255"`
	LicenseExpiresAt *time.Time `json:"license_expires_at,omitempty"`
	Classifications  []string   `json:"classifications,omitempty"`
}

type BusinessSearchParams struct {
	utils.PaginationParams
	IsActive *bool `json:"is_active,omitempty"`
}

func NewBusinessService(db *gorm.DB) *BusinessService {
	return &BusinessService{db: db}
}

func (s *BusinessService) CreateBusiness(req *CreateBusinessRequest) (*models.LicensedBusiness, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var existing models.LicensedBusiness
	if err := s.db.Where("license_number = ?", req.LicenseNumber).First(&existing).Error; err == nil {
		return nil, errors.New("a business with this license number already exists")
	}

	business := &models.LicensedBusiness{
		EntityName:       req.EntityName,
		LicenseNumber:    req.LicenseNumber,
		LicenseExpiresAt: req.LicenseExpiresAt,
		Classifications:  pq.StringArray(req.Classifications),
		IsActive:         true,
	}

	if err := s.db.Create(business).Error; err != nil {
		return nil, fmt.Errorf("failed to create licensed business: %w", err)
	}

	return business, nil
}

func (s *BusinessService) UpdateBusiness(id uuid.UUID, req *UpdateBusinessRequest) (*models.LicensedBusiness, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var business models.LicensedBusiness
	if err := s.db.First(&business, id).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.EntityName != nil {
		updates["entity_name"] = *req.EntityName
	}
	if req.LicenseExpiresAt != nil {
		updates["license_expires_at"] = *req.LicenseExpiresAt
	}
	if req.Classifications != nil {
		updates["classifications"] = pq.StringArray(req.Classifications)
	}

	if len(updates) > 0 {
		if err := s.db.Model(&business).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update licensed business: %w", err)
		}
	}

	return &business, nil
}

// DeactivateBusiness soft-deactivates: businesses are never hard-deleted so
// the audit trail stays complete.
func (s *BusinessService) DeactivateBusiness(id uuid.UUID) (*models.LicensedBusiness, error) {
	var business models.LicensedBusiness
	if err := s.db.First(&business, id).Error; err != nil {
		return nil, err
	}

	if !business.IsActive {
		return nil, errors.New("licensed business is already deactivated")
	}

	if err := s.db.Model(&business).Update("is_active", false).Error; err != nil {
		return nil, fmt.Errorf("failed to deactivate licensed business: %w", err)
	}
	business.IsActive = false

	return &business, nil
}

func (s *BusinessService) GetBusiness(id uuid.UUID) (*models.LicensedBusiness, error) {
	var business models.LicensedBusiness
	if err := s.db.Preload("Assignments").First(&business, id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (s *BusinessService) SearchBusinesses(params BusinessSearchParams) ([]models.LicensedBusiness, int64, error) {
	query := s.db.Model(&models.LicensedBusiness{})

	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	}
	if params.Search != "" {
		query = query.Where("entity_name ILIKE ? OR license_number = ?", "%"+params.Search+"%", params.Search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count businesses: %w", err)
	}

	var businesses []models.LicensedBusiness
	query = utils.ApplySort(query, params.PaginationParams, []string{"created_at", "entity_name", "license_expires_at"})
	if err := utils.ApplyPagination(query, params.PaginationParams).Find(&businesses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search businesses: %w", err)
	}

	return businesses, total, nil
}
