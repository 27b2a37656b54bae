package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storerate/internal/config"
	"storerate/internal/database"
	"storerate/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		DBMaxOpenConns: 1,
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.NewString(), Name: name, Email: email, PasswordHash: "hash", Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedStore(t *testing.T, db *gorm.DB, owner *models.User, name, address, category string) *models.Store {
	t.Helper()
	s := &models.Store{ID: uuid.NewString(), Name: name, Address: address, Category: category, OwnerID: owner.ID, ImageURL: models.DefaultStoreImage}
	require.NoError(t, db.Create(s).Error)
	// distinct created_at values keep time-ordered assertions stable
	time.Sleep(2 * time.Millisecond)
	return s
}

func ctx() context.Context {
	return context.Background()
}
