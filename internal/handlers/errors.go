// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/permitdesk/permit-backend/internal/compliance"
	"github.com/permitdesk/permit-backend/internal/services"
	"github.com/permitdesk/permit-backend/internal/utils"
)

// blockStatus maps orchestrator reason codes onto HTTP statuses. Every block
// response carries the machine-readable code plus the affected entity ids so
// callers can render a precise message, never a generic failure.
var blockStatus = map[compliance.ReasonCode]int{
	compliance.ReasonQualifierCapacityExceeded: http.StatusConflict,
	compliance.ReasonQualifierCutoffExceeded:   http.StatusForbidden,
	compliance.ReasonNoValidQualifier:          http.StatusBadRequest,
	compliance.ReasonOversightMinimumNotMet:    http.StatusBadRequest,
	compliance.ReasonProjectQualifierAbsent:    http.StatusConflict,
	compliance.ReasonInvalidJustification:      http.StatusBadRequest,
}

// respondServiceError translates a service-layer failure into the API error
// envelope. notFoundResource names the i18n key prefix used when the
// underlying record does not exist.
func respondServiceError(c *gin.Context, err error, notFoundResource string) {
	if block, ok := services.AsComplianceError(err); ok {
		status, known := blockStatus[block.Code]
		if !known {
			status = http.StatusConflict
		}

		details := gin.H{}
		for k, v := range block.Details {
			details[k] = v
		}
		if block.EntityType != "" {
			details["entity_type"] = block.EntityType
			details["entity_id"] = block.EntityID
		}

		utils.ErrorResponse(c, status, string(block.Code), block.Message, details)
		return
	}

	var infra *services.InfrastructureError
	if errors.As(err, &infra) {
		utils.InternalErrorResponse(c, "")
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.NotFoundResponse(c, notFoundResource)
		return
	}

	utils.BadRequestResponse(c, err.Error(), nil)
}
