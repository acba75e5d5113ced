package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/emreakdogan/auth-service/internal/models"
)

type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Permissions []string `json:"permissions" validate:"dive,required"`
}

// UpdateRoleRequest uses pointers so absent fields are left untouched.
type UpdateRoleRequest struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string   `json:"description" validate:"omitempty,max=500"`
	Permissions *[]string `json:"permissions" validate:"omitempty,dive,required"`
}

type AssignRoleRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
	RoleID uuid.UUID `json:"roleId" validate:"required"`
}

type RoleResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Permissions     []string  `json:"permissions"`
	AssignmentCount int64     `json:"assignment_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewRoleResponse(r *models.Role, assignments int64) RoleResponse {
	perms := []string(r.Permissions)
	if perms == nil {
		perms = []string{}
	}
	return RoleResponse{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		Permissions:     perms,
		AssignmentCount: assignments,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// RoleDetailResponse includes the users holding the role.
type RoleDetailResponse struct {
	RoleResponse
	Users []UserResponse `json:"users"`
}

type UserRolesResponse struct {
	UserID uuid.UUID      `json:"userId"`
	Roles  []RoleResponse `json:"roles"`
}

type PermissionsResponse struct {
	UserID      uuid.UUID `json:"userId"`
	Permissions []string  `json:"permissions"`
}
