// internal/compliance/capacity.go
package compliance

import (
	"time"

	"github.com/permitdesk/permit-backend/internal/models"
)

// DefaultCapacityLimit is the regulatory ceiling on concurrently qualified
// businesses per qualifier.
const DefaultCapacityLimit = 2

// CheckCapacity counts the qualifier's assignments active as of the given
// date and reports whether the qualifier is at the limit. Pure function over
// the snapshot: the caller decides whether asOf is "now" or a historical date
// for audit recomputation.
func CheckCapacity(assignments []models.LicensedBusinessQualifierAssignment, asOf time.Time, limit int) CapacityResult {
	if limit <= 0 {
		limit = DefaultCapacityLimit
	}

	count := 0
	for i := range assignments {
		if assignments[i].ActiveAt(asOf) {
			count++
		}
	}

	return CapacityResult{
		CurrentCount: count,
		AtCapacity:   count >= limit,
	}
}
