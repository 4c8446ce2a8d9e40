package db

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consultorio-api/internal/logging"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

// EnsureAdmin creates the first administrator when none exists yet.
func EnsureAdmin(
	ctx context.Context,
	db *gorm.DB,
	username string,
	password string,
	logger *logging.Logger,
) error {
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		logger.Warn("no administrator exists and ADMIN_PASSWORD is empty, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         models.RoleAdmin,
		FullName:     "Administrador",
		Active:       true,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	logger.Info("administrator created", "usuario", username)
	return nil
}
