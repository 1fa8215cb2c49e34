// internal/handlers/permit.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/permitdesk/permit-backend/internal/i18n"
	"github.com/permitdesk/permit-backend/internal/models"
	"github.com/permitdesk/permit-backend/internal/services"
	"github.com/permitdesk/permit-backend/internal/utils"
)

type PermitHandler struct {
	permitService     *services.PermitService
	complianceService *services.ComplianceService
}

func NewPermitHandler(permitService *services.PermitService, complianceService *services.ComplianceService) *PermitHandler {
	return &PermitHandler{
		permitService:     permitService,
		complianceService: complianceService,
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// POST /permits
func (h *PermitHandler) CreatePermit(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	approverID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreatePermitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	permit, err := h.complianceService.CreatePermit(&req, approverID)
	if err != nil {
		respondServiceError(c, err, "permit")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPermitCreated),
		"permit":  permit,
	})
}

// GET /permits/:id
func (h *PermitHandler) GetPermit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid permit ID", nil)
		return
	}

	permit, err := h.permitService.GetPermit(id)
	if err != nil {
		respondServiceError(c, err, "permit")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"permit": permit,
	})
}

// GET /permits
func (h *PermitHandler) GetPermits(c *gin.Context) {
	params := services.PermitSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if projectIDStr := c.Query("project_id"); projectIDStr != "" {
		if projectID, err := uuid.Parse(projectIDStr); err == nil {
			params.ProjectID = &projectID
		}
	}
	if businessIDStr := c.Query("licensed_business_id"); businessIDStr != "" {
		if businessID, err := uuid.Parse(businessIDStr); err == nil {
			params.LicensedBusinessID = &businessID
		}
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.PermitStatus(statusStr)
		params.Status = &status
	}

	permits, total, err := h.permitService.SearchPermits(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(permits, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// PUT /permits/:id/status
func (h *PermitHandler) TransitionPermit(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid permit ID", nil)
		return
	}

	var req struct {
		Status        models.PermitStatus `json:"status" binding:"required"`
		Justification string              `json:"justification,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Issuance is compliance-checked against the governing project; the
	// other workflow moves are plain transitions.
	var permit *models.Permit
	if req.Status == models.PermitStatusIssued {
		approverID, ok := currentUserID(c)
		if !ok {
			utils.UnauthorizedResponse(c, "")
			return
		}
		permit, err = h.complianceService.IssuePermit(id, req.Justification, approverID)
	} else {
		permit, err = h.permitService.TransitionPermit(id, req.Status)
	}
	if err != nil {
		respondServiceError(c, err, "permit")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"permit": permit,
	})
}

// POST /permits/:id/finalize
func (h *PermitHandler) FinalizePermit(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	approverID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid permit ID", nil)
		return
	}

	var req services.FinalizePermitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
			return
		}
	}

	permit, justification, err := h.complianceService.FinalizePermit(id, &req, approverID)
	if err != nil {
		respondServiceError(c, err, "permit")
		return
	}

	response := gin.H{
		"message": i18n.T(lang, i18n.KeyPermitFinalized),
		"permit":  permit,
	}
	if justification != nil {
		response["justification_id"] = justification.ID
		response["justification_reference"] = justification.ReferenceCode
	}

	utils.SuccessResponse(c, response)
}

// POST /permits/:id/oversight-actions
func (h *PermitHandler) RecordOversightAction(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	approverID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid permit ID", nil)
		return
	}

	var req services.RecordOversightActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	req.PermitID = id

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	action, err := h.complianceService.RecordOversightAction(&req, approverID)
	if err != nil {
		respondServiceError(c, err, "permit")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":          i18n.T(lang, i18n.KeyOversightRecorded),
		"oversight_action": action,
	})
}

// GET /permits/:id/oversight-actions
func (h *PermitHandler) GetOversightActions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid permit ID", nil)
		return
	}

	actions, err := h.permitService.ListOversightActions(id)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"oversight_actions": actions,
	})
}

// GET /permits/:id/oversight runs the read-only oversight minimum evaluation;
// repeated calls over unchanged data return identical results.
func (h *PermitHandler) EvaluateOversight(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid permit ID", nil)
		return
	}

	result, err := h.complianceService.EvaluatePermitOversight(id)
	if err != nil {
		respondServiceError(c, err, "permit")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"oversight": result,
	})
}
