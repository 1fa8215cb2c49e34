// internal/handlers/justification.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/permitdesk/permit-backend/internal/services"
	"github.com/permitdesk/permit-backend/internal/utils"
)

type JustificationHandler struct {
	justificationService *services.JustificationService
}

func NewJustificationHandler(justificationService *services.JustificationService) *JustificationHandler {
	return &JustificationHandler{
		justificationService: justificationService,
	}
}

// GET /justifications/:id
func (h *JustificationHandler) GetJustification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid justification ID", nil)
		return
	}

	justification, err := h.justificationService.GetJustification(id)
	if err != nil {
		respondServiceError(c, err, "justification")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"justification": justification,
	})
}

// GET /justifications?entity_type=permit&entity_id=...
func (h *JustificationHandler) GetJustifications(c *gin.Context) {
	entityType := c.Query("entity_type")
	entityIDStr := c.Query("entity_id")

	if entityType != "" && entityIDStr != "" {
		entityID, err := uuid.Parse(entityIDStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid entity ID", nil)
			return
		}

		justifications, err := h.justificationService.ListJustificationsForEntity(entityType, entityID)
		if err != nil {
			utils.InternalErrorResponse(c, err.Error())
			return
		}

		utils.SuccessResponse(c, gin.H{
			"justifications": justifications,
		})
		return
	}

	params := utils.GetPaginationParams(c)
	justifications, total, err := h.justificationService.SearchJustifications(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(justifications, total, params)
	utils.PaginatedResponse(c, result)
}
