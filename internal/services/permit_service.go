// internal/services/permit_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/permitdesk/permit-backend/internal/models"
	"github.com/permitdesk/permit-backend/internal/utils"
)

// PermitService covers permit reads and the review workflow up to issuance.
// Creation and finalization carry compliance rules and live in the
// orchestrator.
type PermitService struct {
	db *gorm.DB
}

type PermitSearchParams struct {
	utils.PaginationParams
	ProjectID          *uuid.UUID           `json:"project_id,omitempty"`
	LicensedBusinessID *uuid.UUID           `json:"licensed_business_id,omitempty"`
	Status             *models.PermitStatus `json:"status,omitempty"`
}

// permitTransitions lists the legal review-workflow moves. Issued and closed
// are absent on purpose: issuance goes through IssuePermit and its
// qualifier-absent check, closing through FinalizePermit and its oversight
// check.
var permitTransitions = map[models.PermitStatus][]models.PermitStatus{
	models.PermitStatusDraft:       {models.PermitStatusSubmitted},
	models.PermitStatusSubmitted:   {models.PermitStatusUnderReview, models.PermitStatusRejected},
	models.PermitStatusUnderReview: {models.PermitStatusApproved, models.PermitStatusRejected},
	models.PermitStatusIssued:      {models.PermitStatusExpired},
}

func NewPermitService(db *gorm.DB) *PermitService {
	return &PermitService{db: db}
}

func (s *PermitService) GetPermit(id uuid.UUID) (*models.Permit, error) {
	var permit models.Permit
	if err := s.db.Preload("Project").Preload("LicensedBusiness").Preload("OversightActions").
		First(&permit, id).Error; err != nil {
		return nil, err
	}
	return &permit, nil
}

// TransitionPermit moves a permit through the review workflow.
func (s *PermitService) TransitionPermit(id uuid.UUID, target models.PermitStatus) (*models.Permit, error) {
	var permit models.Permit
	if err := s.db.First(&permit, id).Error; err != nil {
		return nil, err
	}

	if target == models.PermitStatusClosed {
		return nil, errors.New("closing a permit requires finalization with an oversight check")
	}
	if target == models.PermitStatusIssued {
		return nil, errors.New("issuing a permit requires a qualifier-absent check on its project")
	}

	allowed := false
	for _, next := range permitTransitions[permit.Status] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("permit cannot move from %s to %s", permit.Status, target)
	}

	if err := s.db.Model(&permit).Update("status", target).Error; err != nil {
		return nil, fmt.Errorf("failed to transition permit: %w", err)
	}
	permit.Status = target

	return &permit, nil
}

func (s *PermitService) ListOversightActions(permitID uuid.UUID) ([]models.OversightAction, error) {
	var actions []models.OversightAction
	if err := s.db.Where("permit_id = ?", permitID).
		Preload("Qualifier").
		Order("action_date ASC").
		Find(&actions).Error; err != nil {
		return nil, fmt.Errorf("failed to list oversight actions: %w", err)
	}
	return actions, nil
}

func (s *PermitService) SearchPermits(params PermitSearchParams) ([]models.Permit, int64, error) {
	query := s.db.Model(&models.Permit{})

	if params.ProjectID != nil {
		query = query.Where("project_id = ?", *params.ProjectID)
	}
	if params.LicensedBusinessID != nil {
		query = query.Where("licensed_business_id = ?", *params.LicensedBusinessID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Search != "" {
		query = query.Where("permit_number = ?", params.Search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count permits: %w", err)
	}

	var permits []models.Permit
	query = utils.ApplySort(query, params.PaginationParams, []string{"created_at", "issuance_date", "status"})
	if err := utils.ApplyPagination(query, params.PaginationParams).
		Preload("Project").
		Find(&permits).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search permits: %w", err)
	}

	return permits, total, nil
}
