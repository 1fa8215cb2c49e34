// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/permitdesk/permit-backend/internal/config"
	"github.com/permitdesk/permit-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB, storageGuards bool) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.LicensedBusiness{},
		&models.Qualifier{},
		&models.LicensedBusinessQualifierAssignment{},
		&models.Project{},
		&models.Permit{},
		&models.OversightAction{},
		&models.ComplianceJustification{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	if storageGuards {
		if err := createStorageGuards(db); err != nil {
			return fmt.Errorf("failed to create storage guards: %w", err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_type_status ON users(user_type, status)",

		// Licensed business indexes
		"CREATE INDEX IF NOT EXISTS idx_businesses_license_number ON licensed_businesses(license_number)",
		"CREATE INDEX IF NOT EXISTS idx_businesses_active ON licensed_businesses(is_active, license_expires_at)",

		// Assignment indexes
		"CREATE INDEX IF NOT EXISTS idx_assignments_qualifier_window ON business_qualifier_assignments(qualifier_id, start_date, end_date)",
		"CREATE INDEX IF NOT EXISTS idx_assignments_business ON business_qualifier_assignments(licensed_business_id)",

		// Project / permit indexes
		"CREATE INDEX IF NOT EXISTS idx_projects_pair ON projects(licensed_business_id, qualifier_id)",
		"CREATE INDEX IF NOT EXISTS idx_permits_project ON permits(project_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_oversight_actions_permit_date ON oversight_actions(permit_id, action_date)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_justifications_entity ON compliance_justifications(entity_type, entity_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// createStorageGuards mirrors the hard compliance invariants at the storage
// layer as a second line of defense against writes that bypass the
// orchestrator: no overlapping open assignment per (business, qualifier)
// pair, and a trigger re-counting active assignments per qualifier.
func createStorageGuards(db *gorm.DB) error {
	guards := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uidx_assignments_open_pair
			ON business_qualifier_assignments(licensed_business_id, qualifier_id)
			WHERE end_date IS NULL AND deleted_at IS NULL`,

		`CREATE OR REPLACE FUNCTION enforce_qualifier_capacity() RETURNS trigger AS $$
		DECLARE
			active_count integer;
		BEGIN
			SELECT COUNT(*) INTO active_count
			FROM business_qualifier_assignments
			WHERE qualifier_id = NEW.qualifier_id
			  AND deleted_at IS NULL
			  AND start_date <= NOW()
			  AND (end_date IS NULL OR end_date > NOW());
			IF active_count > 2 THEN
				RAISE EXCEPTION 'qualifier capacity exceeded for qualifier %', NEW.qualifier_id;
			END IF;
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql`,

		`DROP TRIGGER IF EXISTS trg_qualifier_capacity ON business_qualifier_assignments`,

		`CREATE CONSTRAINT TRIGGER trg_qualifier_capacity
			AFTER INSERT OR UPDATE ON business_qualifier_assignments
			DEFERRABLE INITIALLY DEFERRED
			FOR EACH ROW EXECUTE FUNCTION enforce_qualifier_capacity()`,
	}

	for _, guard := range guards {
		if err := db.Exec(guard).Error; err != nil {
			return err
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	var adminCount int64
	db.Model(&models.User{}).Where("user_type = ?", models.UserTypeAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Username: "admin",
			Email:    "admin@permitdesk.local",
			UserType: models.UserTypeAdmin,
			Status:   models.UserStatusActive,
			ProfileData: models.JSONB{
				"first_name": "System",
				"last_name":  "Administrator",
				"role":       "compliance_admin",
			},
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("Default admin user created successfully")
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// LockForUpdate adds a row-level lock on the postgres dialect. The sqlite
// test dialect has no FOR UPDATE; its single-writer lock already serializes
// transactions.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
