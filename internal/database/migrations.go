package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/hazemkhaled/digimarket/internal/models"
	"github.com/hazemkhaled/digimarket/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.PasswordResetCode{},
	)
}

// SeedConfig describes the bootstrap admin account created on first start.
type SeedConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// SeedData provisions the bootstrap admin account when one does not exist.
// An empty SeedConfig skips seeding entirely.
func SeedData(db *gorm.DB, seed SeedConfig) error {
	email := strings.ToLower(strings.TrimSpace(seed.AdminEmail))
	if email == "" {
		return nil
	}

	username := strings.TrimSpace(seed.AdminUsername)
	if username == "" {
		username = "admin"
	}
	if strings.TrimSpace(seed.AdminPassword) == "" {
		return errors.New("seed: admin password is required when admin email is set")
	}

	var existing models.User
	err := db.Where("LOWER(email) = ?", email).Take(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := crypto.HashPassword(seed.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		Username: username,
		Email:    email,
		Password: hashed,
		IsAdmin:  true,
		IsActive: true,
	}

	return db.Create(&admin).Error
}
