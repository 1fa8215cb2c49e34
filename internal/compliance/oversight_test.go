// internal/compliance/oversight_test.go
package compliance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permitdesk/permit-backend/internal/models"
)

func TestEvaluateOversight(t *testing.T) {
	bizID := uuid.New()
	qualifierID := uuid.New()

	openAssignment := map[uuid.UUID][]models.LicensedBusinessQualifierAssignment{
		qualifierID: {
			{LicensedBusinessID: bizID, QualifierID: qualifierID, StartDate: date(2024, 1, 1)},
		},
	}

	permit := func(finalization *time.Time) *models.Permit {
		return &models.Permit{
			LicensedBusinessID: bizID,
			IssuanceDate:       date(2025, 1, 1),
			FinalizationDate:   finalization,
		}
	}

	action := func(actionType models.OversightActionType, day time.Time, notes string) models.OversightAction {
		return models.OversightAction{
			QualifierID: qualifierID,
			ActionType:  actionType,
			ActionDate:  day,
			Notes:       notes,
		}
	}

	t.Run("no actions means not satisfied", func(t *testing.T) {
		result := EvaluateOversight(permit(nil), nil, openAssignment)
		assert.False(t, result.Satisfied)
		assert.Empty(t, result.ValidActions)
	})

	t.Run("one site visit satisfies the minimum", func(t *testing.T) {
		actions := []models.OversightAction{
			action(models.OversightActionSiteVisit, date(2025, 3, 1), ""),
		}
		result := EvaluateOversight(permit(nil), actions, openAssignment)
		assert.True(t, result.Satisfied)
		assert.Len(t, result.ValidActions, 1)
	})

	t.Run("all four action types weigh equally", func(t *testing.T) {
		actions := []models.OversightAction{
			action(models.OversightActionSiteVisit, date(2025, 2, 1), ""),
			action(models.OversightActionPlanReview, date(2025, 3, 1), "reviewed structural sheets"),
			action(models.OversightActionPermitReview, date(2025, 4, 1), ""),
			action(models.OversightActionClientMeeting, date(2025, 5, 1), ""),
		}
		result := EvaluateOversight(permit(nil), actions, openAssignment)
		assert.True(t, result.Satisfied)
		assert.Len(t, result.ValidActions, 4)
	})

	t.Run("action before issuance is excluded", func(t *testing.T) {
		actions := []models.OversightAction{
			action(models.OversightActionSiteVisit, date(2024, 12, 15), ""),
		}
		result := EvaluateOversight(permit(nil), actions, openAssignment)
		assert.False(t, result.Satisfied)
	})

	t.Run("action at the window end is excluded", func(t *testing.T) {
		finalized := date(2025, 6, 1)
		actions := []models.OversightAction{
			action(models.OversightActionSiteVisit, finalized, ""),
		}
		result := EvaluateOversight(permit(&finalized), actions, openAssignment)
		assert.False(t, result.Satisfied)
	})

	t.Run("action just inside the window counts", func(t *testing.T) {
		finalized := date(2025, 6, 1)
		actions := []models.OversightAction{
			action(models.OversightActionSiteVisit, date(2025, 5, 31), ""),
		}
		result := EvaluateOversight(permit(&finalized), actions, openAssignment)
		assert.True(t, result.Satisfied)
	})

	t.Run("plan review with blank notes is inadmissible", func(t *testing.T) {
		actions := []models.OversightAction{
			action(models.OversightActionPlanReview, date(2025, 3, 1), "   "),
		}
		result := EvaluateOversight(permit(nil), actions, openAssignment)
		assert.False(t, result.Satisfied)
		assert.Empty(t, result.ValidActions)
	})

	t.Run("blank notes only disqualify plan reviews", func(t *testing.T) {
		actions := []models.OversightAction{
			action(models.OversightActionSiteVisit, date(2025, 3, 1), ""),
		}
		result := EvaluateOversight(permit(nil), actions, openAssignment)
		assert.True(t, result.Satisfied)
	})

	t.Run("action outside the qualifier's authority is excluded", func(t *testing.T) {
		cutoff := date(2025, 2, 1)
		end := date(2025, 2, 1)
		cutOffAssignment := map[uuid.UUID][]models.LicensedBusinessQualifierAssignment{
			qualifierID: {
				{LicensedBusinessID: bizID, QualifierID: qualifierID, StartDate: date(2024, 1, 1), EndDate: &end, CutoffTimestamp: &cutoff},
			},
		}

		actions := []models.OversightAction{
			action(models.OversightActionSiteVisit, date(2025, 3, 1), ""),
		}
		result := EvaluateOversight(permit(nil), actions, cutOffAssignment)
		assert.False(t, result.Satisfied)
	})

	t.Run("action while authority held stays valid after exit", func(t *testing.T) {
		cutoff := date(2025, 4, 1)
		end := date(2025, 4, 1)
		exitedAssignment := map[uuid.UUID][]models.LicensedBusinessQualifierAssignment{
			qualifierID: {
				{LicensedBusinessID: bizID, QualifierID: qualifierID, StartDate: date(2024, 1, 1), EndDate: &end, CutoffTimestamp: &cutoff},
			},
		}

		actions := []models.OversightAction{
			action(models.OversightActionSiteVisit, date(2025, 2, 1), ""),
		}
		result := EvaluateOversight(permit(nil), actions, exitedAssignment)
		assert.True(t, result.Satisfied)
	})

	t.Run("mixed valid and invalid actions", func(t *testing.T) {
		finalized := date(2025, 6, 1)
		actions := []models.OversightAction{
			action(models.OversightActionSiteVisit, date(2024, 6, 1), ""),       // before issuance
			action(models.OversightActionPlanReview, date(2025, 2, 1), ""),      // blank notes
			action(models.OversightActionPermitReview, date(2025, 3, 1), ""),    // valid
			action(models.OversightActionClientMeeting, date(2025, 7, 1), ""),   // after finalization
		}
		result := EvaluateOversight(permit(&finalized), actions, openAssignment)
		assert.True(t, result.Satisfied)
		require.Len(t, result.ValidActions, 1)
		assert.Equal(t, models.OversightActionPermitReview, result.ValidActions[0].ActionType)
	})

	t.Run("repeated evaluation is deterministic", func(t *testing.T) {
		actions := []models.OversightAction{
			action(models.OversightActionSiteVisit, date(2025, 3, 1), ""),
		}
		p := permit(nil)
		first := EvaluateOversight(p, actions, openAssignment)
		second := EvaluateOversight(p, actions, openAssignment)
		assert.Equal(t, first, second)
	})
}
