// internal/services/project_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/permitdesk/permit-backend/internal/models"
	"github.com/permitdesk/permit-backend/internal/utils"
)

// ProjectService covers project reads and the administrative edits that stay
// allowed even on a qualifier-absent project. Creation goes through the
// compliance orchestrator; business and qualifier are immutable afterwards.
type ProjectService struct {
	db *gorm.DB
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=255"`
	SiteAddress *string `json:"site_address,omitempty"`
}

type ProjectSearchParams struct {
	utils.PaginationParams
	LicensedBusinessID *uuid.UUID            `json:"licensed_business_id,omitempty"`
	QualifierID        *uuid.UUID            `json:"qualifier_id,omitempty"`
	Status             *models.ProjectStatus `json:"status,omitempty"`
	QualifierAbsent    *bool                 `json:"qualifier_absent,omitempty"`
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

func (s *ProjectService) GetProject(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("LicensedBusiness").Preload("Qualifier").Preload("Permits").
		First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject applies administrative edits only. The qualifier-absent flag
// does not block these; it gates compliance-critical operations.
func (s *ProjectService) UpdateProject(id uuid.UUID, req *UpdateProjectRequest) (*models.Project, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.SiteAddress != nil {
		updates["site_address"] = *req.SiteAddress
	}

	if len(updates) > 0 {
		if err := s.db.Model(&project).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update project: %w", err)
		}
	}

	return &project, nil
}

// ArchiveProject marks a project archived. Permits under it are kept, not
// cascaded: policy archives permits, never deletes them.
func (s *ProjectService) ArchiveProject(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&project).Update("status", models.ProjectStatusArchived).Error; err != nil {
		return nil, fmt.Errorf("failed to archive project: %w", err)
	}
	project.Status = models.ProjectStatusArchived

	return &project, nil
}

func (s *ProjectService) SearchProjects(params ProjectSearchParams) ([]models.Project, int64, error) {
	query := s.db.Model(&models.Project{})

	if params.LicensedBusinessID != nil {
		query = query.Where("licensed_business_id = ?", *params.LicensedBusinessID)
	}
	if params.QualifierID != nil {
		query = query.Where("qualifier_id = ?", *params.QualifierID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.QualifierAbsent != nil {
		query = query.Where("qualifier_absent = ?", *params.QualifierAbsent)
	}
	if params.Search != "" {
		query = query.Where("name ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	var projects []models.Project
	query = utils.ApplySort(query, params.PaginationParams, []string{"created_at", "name", "status"})
	if err := utils.ApplyPagination(query, params.PaginationParams).
		Preload("LicensedBusiness").
		Find(&projects).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search projects: %w", err)
	}

	return projects, total, nil
}
