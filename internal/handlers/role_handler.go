package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/emreakdogan/auth-service/internal/apperrors"
	"github.com/emreakdogan/auth-service/internal/dto"
	"github.com/emreakdogan/auth-service/internal/middleware"
	"github.com/emreakdogan/auth-service/internal/services"
	"github.com/emreakdogan/auth-service/internal/validation"
)

type RoleHandler struct {
	roles *services.RoleService
}

func NewRoleHandler(roles *services.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

func (h *RoleHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	role, err := h.roles.CreateRole(c.Context(), req.Name, req.Description, req.Permissions)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OK(dto.NewRoleResponse(role, 0), "role created"))
}

func (h *RoleHandler) List(c *fiber.Ctx) error {
	roles, err := h.roles.ListRoles(c.Context())
	if err != nil {
		return err
	}

	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		role := r.Role
		out = append(out, dto.NewRoleResponse(&role, r.AssignmentCount))
	}
	return c.JSON(dto.OK(out, "roles listed"))
}

func (h *RoleHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	role, users, err := h.roles.GetRole(c.Context(), id)
	if err != nil {
		return err
	}

	detail := dto.RoleDetailResponse{
		RoleResponse: dto.NewRoleResponse(role, int64(len(users))),
		Users:        make([]dto.UserResponse, 0, len(users)),
	}
	for i := range users {
		detail.Users = append(detail.Users, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(dto.OK(detail, "role retrieved"))
}

func (h *RoleHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	role, err := h.roles.UpdateRole(c.Context(), id, services.RoleUpdate{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}

	return c.JSON(dto.OK(dto.NewRoleResponse(role, 0), "role updated"))
}

func (h *RoleHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.roles.DeleteRole(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(dto.OK(nil, "role deleted"))
}

func (h *RoleHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	if _, err := h.roles.AssignRole(c.Context(), req.UserID, req.RoleID); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(nil, "role assigned"))
}

func (h *RoleHandler) Remove(c *fiber.Ctx) error {
	var req dto.AssignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	if err := h.roles.RemoveRole(c.Context(), req.UserID, req.RoleID); err != nil {
		return err
	}
	return c.JSON(dto.OK(nil, "role removed"))
}

func (h *RoleHandler) UserRoles(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}

	roles, err := h.roles.GetUserRoles(c.Context(), userID)
	if err != nil {
		return err
	}

	out := dto.UserRolesResponse{UserID: userID, Roles: make([]dto.RoleResponse, 0, len(roles))}
	for i := range roles {
		out.Roles = append(out.Roles, dto.NewRoleResponse(&roles[i], 0))
	}
	return c.JSON(dto.OK(out, "user roles retrieved"))
}

func (h *RoleHandler) UserPermissions(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}
	return h.permissionsFor(c, userID)
}

// MyPermissions resolves the caller's own effective permission set. It
// needs authentication only, no roles:read permission.
func (h *RoleHandler) MyPermissions(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("authentication required")
	}
	return h.permissionsFor(c, user.ID)
}

func (h *RoleHandler) permissionsFor(c *fiber.Ctx, userID uuid.UUID) error {
	permissions, err := h.roles.GetUserPermissions(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.PermissionsResponse{UserID: userID, Permissions: permissions}, "permissions retrieved"))
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid " + param + " parameter, expected a UUID")
	}
	return id, nil
}
