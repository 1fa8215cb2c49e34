// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/permitdesk/permit-backend/internal/services"
	"github.com/permitdesk/permit-backend/internal/utils"
)

type AdminHandler struct {
	auditService *services.AuditService
}

func NewAdminHandler(auditService *services.AuditService) *AdminHandler {
	return &AdminHandler{
		auditService: auditService,
	}
}

// GET /admin/audit-logs
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	params := services.AuditSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if userIDStr := c.Query("user_id"); userIDStr != "" {
		if userID, err := uuid.Parse(userIDStr); err == nil {
			params.UserID = &userID
		}
	}
	if resourceType := c.Query("resource_type"); resourceType != "" {
		params.ResourceType = &resourceType
	}
	if resourceIDStr := c.Query("resource_id"); resourceIDStr != "" {
		if resourceID, err := uuid.Parse(resourceIDStr); err == nil {
			params.ResourceID = &resourceID
		}
	}

	logs, total, err := h.auditService.SearchAuditLogs(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(logs, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}
