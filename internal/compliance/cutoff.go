// internal/compliance/cutoff.go
package compliance

import (
	"time"

	"github.com/google/uuid"

	"github.com/permitdesk/permit-backend/internal/models"
)

// CheckCutoff decides whether an action at actionDate falls inside the
// qualifier's authority window for the given business. The verdict is
// historically correct: it is computed against the action's own date, never
// the wall clock, so reprocessing past actions yields the same answer
// regardless of when the check runs.
//
// Assignments not matching the business are ignored, so callers may pass the
// qualifier's full assignment snapshot.
func CheckCutoff(assignments []models.LicensedBusinessQualifierAssignment, businessID uuid.UUID, actionDate time.Time) CutoffResult {
	for i := range assignments {
		a := &assignments[i]
		if a.LicensedBusinessID != businessID {
			continue
		}
		if !a.ActiveAt(actionDate) {
			continue
		}
		if a.CutoffTimestamp != nil && actionDate.After(*a.CutoffTimestamp) {
			return CutoffResult{WithinWindow: false, CutoffDate: a.CutoffTimestamp}
		}
		return CutoffResult{WithinWindow: true, CutoffDate: a.CutoffTimestamp}
	}

	// No assignment covers the action date. If one started before the action
	// but was cut off earlier, surface its cutoff so the caller can report
	// when authority ended; otherwise there was no authority at this time.
	for i := range assignments {
		a := &assignments[i]
		if a.LicensedBusinessID != businessID || a.StartDate.After(actionDate) {
			continue
		}
		if a.CutoffTimestamp != nil && actionDate.After(*a.CutoffTimestamp) {
			return CutoffResult{WithinWindow: false, CutoffDate: a.CutoffTimestamp}
		}
	}
	return CutoffResult{WithinWindow: false, CutoffDate: nil}
}
