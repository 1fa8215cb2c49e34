// internal/compliance/capacity_test.go
package compliance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/permitdesk/permit-backend/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func assignment(businessID uuid.UUID, start time.Time, end *time.Time) models.LicensedBusinessQualifierAssignment {
	return models.LicensedBusinessQualifierAssignment{
		LicensedBusinessID: businessID,
		QualifierID:        uuid.New(),
		StartDate:          start,
		EndDate:            end,
	}
}

func TestCheckCapacity(t *testing.T) {
	bizA := uuid.New()
	bizB := uuid.New()
	bizC := uuid.New()
	asOf := date(2025, 6, 1)

	t.Run("no assignments", func(t *testing.T) {
		result := CheckCapacity(nil, asOf, 2)
		assert.Equal(t, 0, result.CurrentCount)
		assert.False(t, result.AtCapacity)
	})

	t.Run("one active assignment leaves room", func(t *testing.T) {
		assignments := []models.LicensedBusinessQualifierAssignment{
			assignment(bizA, date(2025, 1, 1), nil),
		}
		result := CheckCapacity(assignments, asOf, 2)
		assert.Equal(t, 1, result.CurrentCount)
		assert.False(t, result.AtCapacity)
	})

	t.Run("two active assignments reach the limit", func(t *testing.T) {
		assignments := []models.LicensedBusinessQualifierAssignment{
			assignment(bizA, date(2025, 1, 1), nil),
			assignment(bizB, date(2025, 3, 1), nil),
		}
		result := CheckCapacity(assignments, asOf, 2)
		assert.Equal(t, 2, result.CurrentCount)
		assert.True(t, result.AtCapacity)
	})

	t.Run("ended assignments do not count", func(t *testing.T) {
		ended := date(2025, 2, 1)
		assignments := []models.LicensedBusinessQualifierAssignment{
			assignment(bizA, date(2024, 1, 1), &ended),
			assignment(bizB, date(2025, 3, 1), nil),
			assignment(bizC, date(2025, 4, 1), nil),
		}
		result := CheckCapacity(assignments, asOf, 2)
		assert.Equal(t, 2, result.CurrentCount)
		assert.True(t, result.AtCapacity)
	})

	t.Run("future assignments do not count", func(t *testing.T) {
		assignments := []models.LicensedBusinessQualifierAssignment{
			assignment(bizA, date(2025, 1, 1), nil),
			assignment(bizB, date(2025, 9, 1), nil),
		}
		result := CheckCapacity(assignments, asOf, 2)
		assert.Equal(t, 1, result.CurrentCount)
		assert.False(t, result.AtCapacity)
	})

	t.Run("assignment ending exactly at asOf is inactive", func(t *testing.T) {
		end := asOf
		assignments := []models.LicensedBusinessQualifierAssignment{
			assignment(bizA, date(2025, 1, 1), &end),
		}
		result := CheckCapacity(assignments, asOf, 2)
		assert.Equal(t, 0, result.CurrentCount)
	})

	t.Run("historical recomputation is stable", func(t *testing.T) {
		ended := date(2025, 2, 1)
		assignments := []models.LicensedBusinessQualifierAssignment{
			assignment(bizA, date(2024, 1, 1), &ended),
			assignment(bizB, date(2024, 6, 1), nil),
		}

		// As of January both assignments were active.
		past := CheckCapacity(assignments, date(2025, 1, 15), 2)
		assert.Equal(t, 2, past.CurrentCount)
		assert.True(t, past.AtCapacity)

		// Today only one remains.
		now := CheckCapacity(assignments, asOf, 2)
		assert.Equal(t, 1, now.CurrentCount)
		assert.False(t, now.AtCapacity)
	})

	t.Run("non-positive limit falls back to the default", func(t *testing.T) {
		assignments := []models.LicensedBusinessQualifierAssignment{
			assignment(bizA, date(2025, 1, 1), nil),
			assignment(bizB, date(2025, 1, 1), nil),
		}
		result := CheckCapacity(assignments, asOf, 0)
		assert.Equal(t, DefaultCapacityLimit, 2)
		assert.True(t, result.AtCapacity)
	})
}
