// internal/handlers/project.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/permitdesk/permit-backend/internal/i18n"
	"github.com/permitdesk/permit-backend/internal/models"
	"github.com/permitdesk/permit-backend/internal/services"
	"github.com/permitdesk/permit-backend/internal/utils"
)

type ProjectHandler struct {
	projectService    *services.ProjectService
	complianceService *services.ComplianceService
}

func NewProjectHandler(projectService *services.ProjectService, complianceService *services.ComplianceService) *ProjectHandler {
	return &ProjectHandler{
		projectService:    projectService,
		complianceService: complianceService,
	}
}

// POST /projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	project, err := h.complianceService.CreateProject(&req)
	if err != nil {
		respondServiceError(c, err, "project")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProjectCreated),
		"project": project,
	})
}

// GET /projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	project, err := h.projectService.GetProject(id)
	if err != nil {
		respondServiceError(c, err, "project")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"project": project,
	})
}

// GET /projects
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	params := services.ProjectSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if businessIDStr := c.Query("licensed_business_id"); businessIDStr != "" {
		if businessID, err := uuid.Parse(businessIDStr); err == nil {
			params.LicensedBusinessID = &businessID
		}
	}
	if qualifierIDStr := c.Query("qualifier_id"); qualifierIDStr != "" {
		if qualifierID, err := uuid.Parse(qualifierIDStr); err == nil {
			params.QualifierID = &qualifierID
		}
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.ProjectStatus(statusStr)
		params.Status = &status
	}
	if absentStr := c.Query("qualifier_absent"); absentStr != "" {
		absent := absentStr == "true"
		params.QualifierAbsent = &absent
	}

	projects, total, err := h.projectService.SearchProjects(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(projects, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// PUT /projects/:id handles administrative edits; allowed even when the
// project is flagged qualifier-absent.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	project, err := h.projectService.UpdateProject(id, &req)
	if err != nil {
		respondServiceError(c, err, "project")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProjectUpdated),
		"project": project,
	})
}

// POST /projects/:id/archive
func (h *ProjectHandler) ArchiveProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	project, err := h.projectService.ArchiveProject(id)
	if err != nil {
		respondServiceError(c, err, "project")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"project": project,
	})
}
