package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hazemkhaled/digimarket/internal/models"
	"github.com/hazemkhaled/digimarket/pkg/crypto"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func TestAutoMigrateCreatesSchema(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"users", "sessions", "products", "orders", "order_items", "password_reset_codes"} {
		require.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}
}

func TestSeedDataCreatesAdminOnce(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	seed := SeedConfig{
		AdminUsername: "admin",
		AdminEmail:    "Admin@Example.com",
		AdminPassword: "change-me-now",
	}

	require.NoError(t, SeedData(db, seed))
	require.NoError(t, SeedData(db, seed)) // idempotent

	var admins []models.User
	require.NoError(t, db.Where("is_admin = ?", true).Find(&admins).Error)
	require.Len(t, admins, 1)
	require.Equal(t, "admin@example.com", admins[0].Email)
	require.True(t, crypto.VerifyPassword(admins[0].Password, "change-me-now"))
}

func TestSeedDataSkipsWithoutEmail(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	require.NoError(t, SeedData(db, SeedConfig{}))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestSeedDataRequiresPassword(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	err := SeedData(db, SeedConfig{AdminEmail: "admin@example.com"})
	require.Error(t, err)
}
