package configs

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
)

// SeedAdmin creates the first admin account from ADMIN_EMAIL/ADMIN_PASSWORD.
func SeedAdmin(ctx context.Context, db *gorm.DB, cfg *Config, log logger.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		log.Infof(ctx, "skip seeding admin: ADMIN_EMAIL/ADMIN_PASSWORD not set")
		return nil
	}

	var existing entity.Profile
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Infof(ctx, "admin already exists: %s", email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := entity.Profile{
		Email:    email,
		Password: string(hash),
		FullName: "Admin",
		Role:     entity.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}
	log.Infof(ctx, "seeded admin %s", email)
	return nil
}
