// internal/handlers/qualifier.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/permitdesk/permit-backend/internal/i18n"
	"github.com/permitdesk/permit-backend/internal/services"
	"github.com/permitdesk/permit-backend/internal/utils"
)

type QualifierHandler struct {
	qualifierService  *services.QualifierService
	complianceService *services.ComplianceService
}

func NewQualifierHandler(qualifierService *services.QualifierService, complianceService *services.ComplianceService) *QualifierHandler {
	return &QualifierHandler{
		qualifierService:  qualifierService,
		complianceService: complianceService,
	}
}

// POST /qualifiers
func (h *QualifierHandler) RegisterQualifier(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.RegisterQualifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	qualifier, err := h.qualifierService.RegisterQualifier(&req)
	if err != nil {
		respondServiceError(c, err, "qualifier")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyQualifierRegistered),
		"qualifier": qualifier,
	})
}

// GET /qualifiers/:id
func (h *QualifierHandler) GetQualifier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid qualifier ID", nil)
		return
	}

	qualifier, err := h.qualifierService.GetQualifier(id)
	if err != nil {
		respondServiceError(c, err, "qualifier")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"qualifier": qualifier,
	})
}

// GET /qualifiers
func (h *QualifierHandler) GetQualifiers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	qualifiers, total, err := h.qualifierService.SearchQualifiers(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(qualifiers, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /qualifiers/:id/assignments?as_of=2025-01-15T00:00:00Z
func (h *QualifierHandler) GetAssignments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid qualifier ID", nil)
		return
	}

	var asOf *time.Time
	if asOfStr := c.Query("as_of"); asOfStr != "" {
		parsed, err := time.Parse(time.RFC3339, asOfStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid as_of date; expected RFC3339", nil)
			return
		}
		asOf = &parsed
	}

	assignments, err := h.qualifierService.ListAssignments(id, asOf)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"assignments": assignments,
	})
}

// GET /qualifiers/:id/capacity?as_of=2025-01-15T00:00:00Z
func (h *QualifierHandler) CheckCapacity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid qualifier ID", nil)
		return
	}

	asOf := time.Now()
	if asOfStr := c.Query("as_of"); asOfStr != "" {
		parsed, err := time.Parse(time.RFC3339, asOfStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid as_of date; expected RFC3339", nil)
			return
		}
		asOf = parsed
	}

	result, err := h.complianceService.CheckQualifierCapacity(id, asOf)
	if err != nil {
		respondServiceError(c, err, "qualifier")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"capacity": result,
	})
}

// POST /assignments
func (h *QualifierHandler) AssignQualifier(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.AssignQualifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	assignment, err := h.complianceService.AssignQualifier(&req)
	if err != nil {
		respondServiceError(c, err, "assignment")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyQualifierAssigned),
		"assignment": assignment,
	})
}

// POST /assignments/:id/exit
func (h *QualifierHandler) QualifierExit(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid assignment ID", nil)
		return
	}

	var req services.QualifierExitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	req.AssignmentID = id

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	assignment, err := h.complianceService.QualifierExit(&req)
	if err != nil {
		respondServiceError(c, err, "assignment")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyQualifierExited),
		"assignment": assignment,
	})
}
