// internal/compliance/oversight.go
package compliance

import (
	"strings"

	"github.com/google/uuid"

	"github.com/permitdesk/permit-backend/internal/models"
)

// EvaluateOversight decides whether a permit's oversight minimum is met: at
// least one oversight action inside the permit's valid window, performed
// while the acting qualifier still had authority over the permit's business.
// All four action types weigh equally. A plan review with empty notes is
// inadmissible evidence: stored, but excluded from the valid set.
//
// assignmentsByQualifier maps each acting qualifier to its assignment
// snapshot. Pure and read-only: repeated calls over the same data yield
// identical results.
func EvaluateOversight(
	permit *models.Permit,
	actions []models.OversightAction,
	assignmentsByQualifier map[uuid.UUID][]models.LicensedBusinessQualifierAssignment,
) OversightResult {
	windowEnd := permit.OversightWindowEnd()

	valid := make([]models.OversightAction, 0, len(actions))
	for _, action := range actions {
		if action.ActionDate.Before(permit.IssuanceDate) {
			continue
		}
		if windowEnd != nil && !action.ActionDate.Before(*windowEnd) {
			continue
		}
		if action.ActionType == models.OversightActionPlanReview && strings.TrimSpace(action.Notes) == "" {
			continue
		}

		cutoff := CheckCutoff(assignmentsByQualifier[action.QualifierID], permit.LicensedBusinessID, action.ActionDate)
		if !cutoff.WithinWindow {
			continue
		}

		valid = append(valid, action)
	}

	return OversightResult{
		Satisfied:    len(valid) >= 1,
		ValidActions: valid,
	}
}
