package services

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/emreakdogan/auth-service/internal/apperrors"
	"github.com/emreakdogan/auth-service/internal/models"
	"github.com/emreakdogan/auth-service/internal/repository"
)

// IsAdmin is the single admin-bypass predicate: the sentinel permission
// or the literal admin role name grants every check. All call sites go
// through here so the precedence cannot drift.
func IsAdmin(permissions []string, roleNames []string) bool {
	for _, p := range permissions {
		if p == models.PermissionSystemAdmin {
			return true
		}
	}
	for _, r := range roleNames {
		if r == models.RoleAdmin {
			return true
		}
	}
	return false
}

// RoleUpdate carries the mutable role fields; nil means unchanged.
type RoleUpdate struct {
	Name        *string
	Description *string
	Permissions *[]string
}

// RoleService is the permission resolution engine plus role
// administration. Effective permissions are the set union across every
// assigned role.
type RoleService struct {
	roles repository.RoleRepository
	users repository.UserRepository
}

func NewRoleService(roles repository.RoleRepository, users repository.UserRepository) *RoleService {
	return &RoleService{roles: roles, users: users}
}

func (s *RoleService) CreateRole(ctx context.Context, name, description string, permissions []string) (*models.Role, error) {
	if _, err := s.roles.FindByName(ctx, name); err == nil {
		return nil, apperrors.Conflict("role with this name already exists")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	role := &models.Role{
		Name:        name,
		Description: description,
		Permissions: datatypes.NewJSONSlice(permissions),
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RoleService) ListRoles(ctx context.Context) ([]repository.RoleWithUsage, error) {
	return s.roles.List(ctx)
}

func (s *RoleService) GetRole(ctx context.Context, id uuid.UUID) (*models.Role, []models.User, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	users, err := s.roles.UsersForRole(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return role, users, nil
}

func (s *RoleService) UpdateRole(ctx context.Context, id uuid.UUID, update RoleUpdate) (*models.Role, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil && *update.Name != role.Name {
		if _, err := s.roles.FindByName(ctx, *update.Name); err == nil {
			return nil, apperrors.Conflict("role with this name already exists")
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		role.Name = *update.Name
	}
	if update.Description != nil {
		role.Description = *update.Description
	}
	if update.Permissions != nil {
		role.Permissions = datatypes.NewJSONSlice(*update.Permissions)
	}

	if err := s.roles.Update(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// DeleteRole refuses to delete a role that is still assigned. The guard
// blocks rather than cascades.
func (s *RoleService) DeleteRole(ctx context.Context, id uuid.UUID) error {
	if _, err := s.roles.FindByID(ctx, id); err != nil {
		return err
	}

	count, err := s.roles.CountAssignments(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Conflict("cannot delete role that is assigned to users; remove all user assignments first")
	}
	return s.roles.Delete(ctx, id)
}

func (s *RoleService) AssignRole(ctx context.Context, userID, roleID uuid.UUID) (*models.UserRole, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.roles.FindByID(ctx, roleID); err != nil {
		return nil, err
	}

	if _, err := s.roles.FindAssignment(ctx, userID, roleID); err == nil {
		return nil, apperrors.Conflict("user already has this role")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	link := &models.UserRole{UserID: userID, RoleID: roleID}
	if err := s.roles.CreateAssignment(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *RoleService) RemoveRole(ctx context.Context, userID, roleID uuid.UUID) error {
	if _, err := s.roles.FindAssignment(ctx, userID, roleID); err != nil {
		return err
	}
	return s.roles.DeleteAssignment(ctx, userID, roleID)
}

// GetUserRoles returns every role assigned to the user. Unknown users
// are an error, not an empty result.
func (s *RoleService) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.roles.RolesForUser(ctx, userID)
}

// GetUserPermissions unions the permission sets of every assigned role,
// duplicates collapsed, sorted for stable output.
func (s *RoleService) GetUserPermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	roles, err := s.GetUserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	permissions := make([]string, 0)
	for _, role := range roles {
		for _, p := range role.Permissions {
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				permissions = append(permissions, p)
			}
		}
	}
	sort.Strings(permissions)
	return permissions, nil
}

// UserHasRole reports whether the user holds a role with the given name.
func (s *RoleService) UserHasRole(ctx context.Context, userID uuid.UUID, name string) (bool, error) {
	roles, err := s.GetUserRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if role.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// UserHasPermission checks the effective permission set. The
// system:admin sentinel short-circuits before the literal membership
// check.
func (s *RoleService) UserHasPermission(ctx context.Context, userID uuid.UUID, permission string) (bool, error) {
	permissions, err := s.GetUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range permissions {
		if p == models.PermissionSystemAdmin {
			return true, nil
		}
	}
	for _, p := range permissions {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}
