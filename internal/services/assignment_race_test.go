// internal/services/assignment_race_test.go
package services

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/permitdesk/permit-backend/internal/config"
	"github.com/permitdesk/permit-backend/internal/models"
)

// raceAssignments fires one AssignQualifier per business concurrently against
// a single qualifier and reports how many committed. The caller asserts on
// the count; this helper only checks the invariant that holds on any
// database: committed rows match successful calls and never exceed the limit.
func raceAssignments(t *testing.T, db *gorm.DB, limit, workers int) int {
	t.Helper()

	service := NewComplianceService(db, config.ComplianceConfig{QualifierCapacityLimit: limit}, NewJustificationService(db))

	name := "racer-" + uuid.NewString()[:8]
	user := &models.User{
		Username: name,
		Email:    name + "@permitdesk.local",
		UserType: models.UserTypeQualifier,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("Sup3rv!sion"))
	require.NoError(t, db.Create(user).Error)

	qualifier := &models.Qualifier{UserID: user.ID, IsActive: true}
	require.NoError(t, db.Create(qualifier).Error)

	businesses := make([]*models.LicensedBusiness, workers)
	for i := range businesses {
		businesses[i] = &models.LicensedBusiness{
			EntityName:       fmt.Sprintf("Race Business %d %s", i, uuid.NewString()[:8]),
			LicenseNumber:    "LB-" + uuid.NewString(),
			LicenseExpiresAt: time.Now().AddDate(2, 0, 0),
			IsActive:         true,
		}
		require.NoError(t, db.Create(businesses[i]).Error)
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.AssignQualifier(&AssignQualifierRequest{
				QualifierID:        qualifier.ID,
				LicensedBusinessID: businesses[i].ID,
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}

	var open int64
	require.NoError(t, db.Model(&models.LicensedBusinessQualifierAssignment{}).
		Where("qualifier_id = ? AND end_date IS NULL", qualifier.ID).
		Count(&open).Error)
	require.Equal(t, int64(successes), open)
	require.LessOrEqual(t, open, int64(limit))

	return successes
}

// The sqlite test dialect serializes writers, so contention here surfaces as
// rejected transactions rather than interleaved counts. The committed total
// still must not pass the limit.
func TestAssignQualifierCapacityUnderContention(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Qualifier{},
		&models.LicensedBusiness{},
		&models.LicensedBusinessQualifierAssignment{},
		&models.ComplianceJustification{},
	))

	raceAssignments(t, db, 2, 8)
}

// Exercises the SELECT ... FOR UPDATE path, which no sqlite run can. With row
// locks held across the count-then-insert, every racer past the limit must
// observe the committed count and block, so exactly limit calls succeed.
func TestAssignQualifierCapacityUnderContentionPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Qualifier{},
		&models.LicensedBusiness{},
		&models.LicensedBusinessQualifierAssignment{},
		&models.ComplianceJustification{},
	))

	limit := 2
	successes := raceAssignments(t, db, limit, 8)
	require.Equal(t, limit, successes)
}
