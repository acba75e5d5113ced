package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/emreakdogan/auth-service/internal/apperrors"
	"github.com/emreakdogan/auth-service/internal/services"
)

// The authorization gate wraps handlers with a required permission or
// role. A missing identity is an authentication failure (401); an
// authenticated identity lacking the right is an authorization failure
// (403) naming what was required. Admin bypass goes through the single
// services.IsAdmin predicate.

func RequirePermission(roles *services.RoleService, permission string) fiber.Handler {
	return requireAnyPermission(roles, "access denied. Required permission: "+permission, permission)
}

func RequireAnyPermission(roles *services.RoleService, permissions ...string) fiber.Handler {
	return requireAnyPermission(roles, "access denied. Required one of: "+strings.Join(permissions, ", "), permissions...)
}

func RequireRole(roles *services.RoleService, roleName string) fiber.Handler {
	return requireAnyRole(roles, "access denied. Required role: "+roleName, roleName)
}

func RequireAnyRole(roles *services.RoleService, roleNames ...string) fiber.Handler {
	return requireAnyRole(roles, "access denied. Required one of: "+strings.Join(roleNames, ", "), roleNames...)
}

func requireAnyPermission(roles *services.RoleService, denied string, permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return unauthorized(c, "authentication required")
		}

		admin, err := isAdmin(c, roles, user.ID)
		if err != nil {
			return err
		}
		if admin {
			return c.Next()
		}

		for _, p := range permissions {
			allowed, err := roles.UserHasPermission(c.Context(), user.ID, p)
			if err != nil {
				return err
			}
			if allowed {
				return c.Next()
			}
		}
		return apperrors.Forbidden(denied)
	}
}

func requireAnyRole(roles *services.RoleService, denied string, roleNames ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return unauthorized(c, "authentication required")
		}

		admin, err := isAdmin(c, roles, user.ID)
		if err != nil {
			return err
		}
		if admin {
			return c.Next()
		}

		for _, name := range roleNames {
			allowed, err := roles.UserHasRole(c.Context(), user.ID, name)
			if err != nil {
				return err
			}
			if allowed {
				return c.Next()
			}
		}
		return apperrors.Forbidden(denied)
	}
}

func isAdmin(c *fiber.Ctx, roles *services.RoleService, userID uuid.UUID) (bool, error) {
	permissions, err := roles.GetUserPermissions(c.Context(), userID)
	if err != nil {
		return false, err
	}
	userRoles, err := roles.GetUserRoles(c.Context(), userID)
	if err != nil {
		return false, err
	}
	names := make([]string, 0, len(userRoles))
	for _, r := range userRoles {
		names = append(names, r.Name)
	}
	return services.IsAdmin(permissions, names), nil
}
