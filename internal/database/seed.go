package database

import (
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/emreakdogan/auth-service/internal/config"
	"github.com/emreakdogan/auth-service/internal/models"
)

var adminPermissions = []string{
	"roles:create",
	"roles:read",
	"roles:update",
	"roles:delete",
	"roles:assign",
	"users:create",
	"users:read",
	"users:update",
	"users:delete",
	models.PermissionSystemAdmin,
}

// Seed creates the default roles and the admin account. Every step is
// idempotent so the seed can run on each startup.
func Seed(cfg *config.Config) error {
	adminRole, err := upsertRole(models.RoleAdmin, "Administrator role with full system access", adminPermissions)
	if err != nil {
		return err
	}

	if _, err := upsertRole("user", "Standard user role", nil); err != nil {
		return err
	}
	if _, err := upsertRole("moderator", "Moderator role with limited admin permissions", []string{"users:read", "users:update"}); err != nil {
		return err
	}

	if cfg.AdminPassword == "" {
		slog.Warn("ADMIN_PASSWORD not set, skipping admin user seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), 12)
	if err != nil {
		return err
	}

	var admin models.User
	err = DB.Where("email = ?", cfg.AdminEmail).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		admin = models.User{
			Email:        cfg.AdminEmail,
			PasswordHash: string(hash),
			Name:         cfg.AdminName,
			Provider:     models.ProviderEmail,
		}
		if err := DB.Create(&admin).Error; err != nil {
			return err
		}
		slog.Info("admin user created", "email", cfg.AdminEmail)
	case err != nil:
		return err
	}

	var link models.UserRole
	err = DB.Where("user_id = ? AND role_id = ?", admin.ID, adminRole.ID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		link = models.UserRole{UserID: admin.ID, RoleID: adminRole.ID}
		if err := DB.Create(&link).Error; err != nil {
			return err
		}
		slog.Info("admin role assigned", "email", cfg.AdminEmail)
		return nil
	}
	return err
}

func upsertRole(name, description string, permissions []string) (*models.Role, error) {
	var role models.Role
	err := DB.Where("name = ?", name).First(&role).Error
	if err == nil {
		return &role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role = models.Role{
		Name:        name,
		Description: description,
		Permissions: datatypes.NewJSONSlice(permissions),
	}
	if err := DB.Create(&role).Error; err != nil {
		return nil, err
	}
	slog.Info("role seeded", "role", name)
	return &role, nil
}
