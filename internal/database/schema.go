package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"storerate/internal/models"
)

// Migrate creates or updates the users, stores and ratings tables together
// with their unique, check and foreign key constraints.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Store{}, &models.Rating{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Schema drops and recreates the application tables.
type Schema struct {
	db *gorm.DB
}

// NewSchema creates a Schema bound to db.
func NewSchema(db *gorm.DB) *Schema {
	return &Schema{db: db}
}

// Reset drops every application table and migrates them again.
func (s *Schema) Reset(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.Migrator().DropTable(&models.Rating{}, &models.Store{}, &models.User{}); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return Migrate(db)
}
