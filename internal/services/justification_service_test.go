// internal/services/justification_service_test.go
package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/permitdesk/permit-backend/internal/compliance"
	"github.com/permitdesk/permit-backend/internal/models"
)

func newJustificationTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ComplianceJustification{}))
	return db
}

func TestLogJustification(t *testing.T) {
	db := newJustificationTestDB(t)
	service := NewJustificationService(db)
	approverID := uuid.New()
	entityID := uuid.New()

	t.Run("records an override with a reference code", func(t *testing.T) {
		justification, err := service.LogJustification(
			models.OverrideOversightMinimum, models.EntityTypePermit, entityID,
			"  Qualifier unavailable; closure reviewed by board staff  ", approverID)
		require.NoError(t, err)

		assert.Equal(t, models.OverrideOversightMinimum, justification.ActionType)
		assert.Equal(t, models.EntityTypePermit, justification.EntityType)
		assert.Equal(t, entityID, justification.EntityID)
		assert.Equal(t, approverID, justification.ApproverID)
		// Text is stored trimmed.
		assert.Equal(t, "Qualifier unavailable; closure reviewed by board staff", justification.Justification)
		assert.True(t, strings.HasPrefix(justification.ReferenceCode, "CJ-"))
	})

	t.Run("rejects empty text", func(t *testing.T) {
		for _, text := range []string{"", "   ", "\t\n"} {
			_, err := service.LogJustification(
				models.OverrideQualifierAbsent, models.EntityTypeProject, entityID, text, approverID)
			require.Error(t, err)

			ce, ok := AsComplianceError(err)
			require.True(t, ok)
			assert.Equal(t, compliance.ReasonInvalidJustification, ce.Code)
		}
	})
}

func TestJustificationsAreAppendOnly(t *testing.T) {
	db := newJustificationTestDB(t)
	service := NewJustificationService(db)

	justification, err := service.LogJustification(
		models.OverrideOversightMinimum, models.EntityTypePermit, uuid.New(),
		"original text", uuid.New())
	require.NoError(t, err)

	err = db.Model(justification).Update("justification", "revised text").Error
	assert.ErrorIs(t, err, models.ErrJustificationImmutable)

	err = db.Delete(justification).Error
	assert.ErrorIs(t, err, models.ErrJustificationImmutable)

	// The stored row is unchanged.
	var reloaded models.ComplianceJustification
	require.NoError(t, db.First(&reloaded, justification.ID).Error)
	assert.Equal(t, "original text", reloaded.Justification)
}

func TestListJustificationsForEntity(t *testing.T) {
	db := newJustificationTestDB(t)
	service := NewJustificationService(db)
	approverID := uuid.New()
	permitID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := service.LogJustification(
			models.OverrideOversightMinimum, models.EntityTypePermit, permitID,
			fmt.Sprintf("override %d", i), approverID)
		require.NoError(t, err)
	}
	_, err := service.LogJustification(
		models.OverrideQualifierAbsent, models.EntityTypeProject, uuid.New(),
		"unrelated project override", approverID)
	require.NoError(t, err)

	justifications, err := service.ListJustificationsForEntity(models.EntityTypePermit, permitID)
	require.NoError(t, err)
	assert.Len(t, justifications, 3)
	for _, j := range justifications {
		assert.Equal(t, permitID, j.EntityID)
	}
}
