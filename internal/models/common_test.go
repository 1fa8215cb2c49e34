// internal/models/common_test.go
package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The full schema has to migrate on the sqlite test dialect, which cannot
// parse postgres column defaults like gen_random_uuid(). Ids come from the
// BeforeCreate hook on either database.
func TestSchemaMigratesOnSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&User{},
		&LicensedBusiness{},
		&Qualifier{},
		&LicensedBusinessQualifierAssignment{},
		&Project{},
		&Permit{},
		&OversightAction{},
		&ComplianceJustification{},
		&AuditLog{},
	))

	business := &LicensedBusiness{
		EntityName:       "Coastal Builders",
		LicenseNumber:    "LB-90001",
		LicenseExpiresAt: time.Now().AddDate(2, 0, 0),
		IsActive:         true,
	}
	require.NoError(t, db.Create(business).Error)
	require.NotEqual(t, uuid.Nil, business.ID)
}

func TestBaseModelKeepsPresetID(t *testing.T) {
	preset := uuid.New()
	base := BaseModel{ID: preset}
	require.NoError(t, base.BeforeCreate(nil))
	require.Equal(t, preset, base.ID)

	var blank BaseModel
	require.NoError(t, blank.BeforeCreate(nil))
	require.NotEqual(t, uuid.Nil, blank.ID)
}
