package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	jwtware "github.com/gofiber/contrib/jwt"

	"github.com/emreakdogan/auth-service/internal/config"
	"github.com/emreakdogan/auth-service/internal/dto"
	"github.com/emreakdogan/auth-service/internal/models"
	"github.com/emreakdogan/auth-service/internal/services"
	"github.com/emreakdogan/auth-service/internal/session"
)

// Auth types attached to the request context alongside the resolved
// identity.
const (
	AuthTypeJWT     = "jwt"
	AuthTypeSession = "session"
)

const (
	localUserKey     = "currentUser"
	localAuthTypeKey = "authType"
)

// CurrentUser returns the identity attached by one of the gates.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(localUserKey).(*models.User)
	return user, ok
}

// AuthType returns how the current request authenticated ("jwt" or
// "session"), or an empty string for unauthenticated requests.
func AuthType(c *fiber.Ctx) string {
	t, _ := c.Locals(localAuthTypeKey).(string)
	return t
}

func attach(c *fiber.Ctx, user *models.User, authType string) {
	c.Locals(localUserKey, user)
	c.Locals(localAuthTypeKey, authType)
}

// RequireJWT admits only bearer-token requests. The error message
// distinguishes a missing token from a failed verification.
func RequireJWT(cfg *config.Config, auth *services.AuthService) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTAccessSecret)},
		SuccessHandler: func(c *fiber.Ctx) error {
			user, err := resolveTokenUser(c, auth)
			if err != nil {
				return unauthorized(c, "user not found")
			}
			attach(c, user, AuthTypeJWT)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if err == jwtware.ErrJWTMissingOrMalformed {
				return unauthorized(c, "no token provided. Please include a Bearer token in the Authorization header.")
			}
			return unauthorized(c, "invalid or expired token")
		},
	})
}

// RequireSession admits only cookie-session requests.
func RequireSession(store *session.Store, auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := store.UserID(c)
		if !ok {
			return unauthorized(c, "not authenticated. Please log in.")
		}
		user, err := auth.GetUserByID(c.Context(), userID)
		if err != nil {
			return unauthorized(c, "not authenticated. Please log in.")
		}
		attach(c, user, AuthTypeSession)
		return c.Next()
	}
}

// RequireAuth accepts either credential mechanism. The bearer token is
// tried first; any token failure falls through silently to the session
// check, so a request carrying both a valid token and a valid cookie
// resolves to the token's user.
func RequireAuth(cfg *config.Config, auth *services.AuthService, store *session.Store) fiber.Handler {
	sessionFallback := func(c *fiber.Ctx) error {
		userID, ok := store.UserID(c)
		if !ok {
			return unauthorized(c, "not authenticated. Please provide a valid token or log in.")
		}
		user, err := auth.GetUserByID(c.Context(), userID)
		if err != nil {
			return unauthorized(c, "not authenticated. Please provide a valid token or log in.")
		}
		attach(c, user, AuthTypeSession)
		return c.Next()
	}

	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTAccessSecret)},
		SuccessHandler: func(c *fiber.Ctx) error {
			user, err := resolveTokenUser(c, auth)
			if err != nil {
				return sessionFallback(c)
			}
			attach(c, user, AuthTypeJWT)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return sessionFallback(c)
		},
	})
}

// resolveTokenUser loads the full user for the verified token jwtware
// left in the context.
func resolveTokenUser(c *fiber.Ctx, auth *services.AuthService) (*models.User, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	raw, _ := claims["userId"].(string)
	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.ErrUnauthorized
	}
	return auth.GetUserByID(c.Context(), userID)
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail(message))
}
