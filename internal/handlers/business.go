// internal/handlers/business.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/permitdesk/permit-backend/internal/i18n"
	"github.com/permitdesk/permit-backend/internal/services"
	"github.com/permitdesk/permit-backend/internal/utils"
)

type BusinessHandler struct {
	businessService *services.BusinessService
}

func NewBusinessHandler(businessService *services.BusinessService) *BusinessHandler {
	return &BusinessHandler{
		businessService: businessService,
	}
}

// POST /businesses
func (h *BusinessHandler) CreateBusiness(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	business, err := h.businessService.CreateBusiness(&req)
	if err != nil {
		respondServiceError(c, err, "licensed_business")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":           i18n.T(lang, i18n.KeyBusinessCreated),
		"licensed_business": business,
	})
}

// GET /businesses/:id
func (h *BusinessHandler) GetBusiness(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid licensed business ID", nil)
		return
	}

	business, err := h.businessService.GetBusiness(id)
	if err != nil {
		respondServiceError(c, err, "licensed_business")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"licensed_business": business,
	})
}

// GET /businesses
func (h *BusinessHandler) GetBusinesses(c *gin.Context) {
	params := services.BusinessSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if activeStr := c.Query("is_active"); activeStr != "" {
		active := activeStr == "true"
		params.IsActive = &active
	}

	businesses, total, err := h.businessService.SearchBusinesses(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(businesses, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// PUT /businesses/:id
func (h *BusinessHandler) UpdateBusiness(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid licensed business ID", nil)
		return
	}

	var req services.UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	business, err := h.businessService.UpdateBusiness(id, &req)
	if err != nil {
		respondServiceError(c, err, "licensed_business")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":           i18n.T(lang, i18n.KeyBusinessUpdated),
		"licensed_business": business,
	})
}

// POST /businesses/:id/deactivate (soft deactivation; businesses are never hard-deleted)
func (h *BusinessHandler) DeactivateBusiness(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid licensed business ID", nil)
		return
	}

	business, err := h.businessService.DeactivateBusiness(id)
	if err != nil {
		respondServiceError(c, err, "licensed_business")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":           i18n.T(lang, i18n.KeyBusinessDeactivated),
		"licensed_business": business,
	})
}
