package main

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/listing-studio/engine/internal/models"
)

// registerModels returns all models that need migration
func registerModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Project{},
		&models.GeneratedImage{},
		&models.Landing{},
		&models.Order{},
	}
}

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(registerModels()...); err != nil {
		return err
	}
	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		addLandingStatusIndex,
	}

	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}

	return nil
}

// addLandingStatusIndex speeds up the per-project listing of finished pages.
func addLandingStatusIndex(db *gorm.DB) error {
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_landings_project_status
		ON landings(project_id, status)
	`).Error
}

// seedDefaults makes sure the fallback user and project exist. Requests that
// omit userId or projectId are attributed to them.
func seedDefaults(db *gorm.DB, userID, projectID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		user := models.User{ID: userID, Name: "Default user", TokenBalance: 100000}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
			return err
		}
		project := models.Project{ID: projectID, UserID: userID, Name: "Default project"}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&project).Error
	})
}
