package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emreakdogan/auth-service/internal/apperrors"
	"github.com/emreakdogan/auth-service/internal/models"
)

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *models.Role) error {
	if err := r.db.WithContext(ctx).Create(role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("role with this name already exists")
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (r *roleRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("role not found")
		}
		return nil, apperrors.Internal(err)
	}
	return &role, nil
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).First(&role, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("role not found")
		}
		return nil, apperrors.Internal(err)
	}
	return &role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]RoleWithUsage, error) {
	var roles []models.Role
	if err := r.db.WithContext(ctx).Order("name asc").Find(&roles).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	type roleCount struct {
		RoleID uuid.UUID
		Count  int64
	}
	var counts []roleCount
	err := r.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Select("role_id, count(*) as count").
		Group("role_id").
		Scan(&counts).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	byRole := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		byRole[c.RoleID] = c.Count
	}

	out := make([]RoleWithUsage, 0, len(roles))
	for _, role := range roles {
		out = append(out, RoleWithUsage{Role: role, AssignmentCount: byRole[role.ID]})
	}
	return out, nil
}

func (r *roleRepository) Update(ctx context.Context, role *models.Role) error {
	if err := r.db.WithContext(ctx).Save(role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("role with this name already exists")
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (r *roleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.Role{}, "id = ?", id).Error; err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (r *roleRepository) CountAssignments(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("role_id = ?", roleID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return count, nil
}

func (r *roleRepository) UsersForRole(ctx context.Context, roleID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Where("user_roles.role_id = ?", roleID).
		Find(&users).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return users, nil
}

func (r *roleRepository) RolesForUser(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Find(&roles).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return roles, nil
}

func (r *roleRepository) CreateAssignment(ctx context.Context, link *models.UserRole) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("user already has this role")
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (r *roleRepository) DeleteAssignment(ctx context.Context, userID, roleID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.UserRole{}).Error
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (r *roleRepository) FindAssignment(ctx context.Context, userID, roleID uuid.UUID) (*models.UserRole, error) {
	var link models.UserRole
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user does not have this role")
		}
		return nil, apperrors.Internal(err)
	}
	return &link, nil
}
