package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/emreakdogan/auth-service/internal/apperrors"
	"github.com/emreakdogan/auth-service/internal/dto"
	"github.com/emreakdogan/auth-service/internal/middleware"
	"github.com/emreakdogan/auth-service/internal/models"
	"github.com/emreakdogan/auth-service/internal/oauth"
	"github.com/emreakdogan/auth-service/internal/services"
	"github.com/emreakdogan/auth-service/internal/session"
	"github.com/emreakdogan/auth-service/internal/validation"
)

type AuthHandler struct {
	auth     *services.AuthService
	tokens   *services.TokenService
	sessions *session.Store
	registry *oauth.Registry
}

func NewAuthHandler(auth *services.AuthService, tokens *services.TokenService, sessions *session.Store, registry *oauth.Registry) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens, sessions: sessions, registry: registry}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OK(dto.NewUserResponse(user), "registration successful"))
}

// Login authenticates with email and password, issues a token pair and
// establishes a cookie session, so browser clients leave with both
// credentials.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	user, err := h.loginUser(c)
	if err != nil {
		return err
	}

	if err := h.sessions.Login(c, user.ID); err != nil {
		return apperrors.Internal(err)
	}

	return h.respondTokens(c, user)
}

// LoginJWT is the token-only variant. No session cookie is set.
func (h *AuthHandler) LoginJWT(c *fiber.Ctx) error {
	user, err := h.loginUser(c)
	if err != nil {
		return err
	}

	return h.respondTokens(c, user)
}

func (h *AuthHandler) loginUser(c *fiber.Ctx) (*models.User, error) {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.Validation("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	return h.auth.Login(c.Context(), req.Email, req.Password)
}

func (h *AuthHandler) respondTokens(c *fiber.Ctx, user *models.User) error {
	pair, err := h.tokens.IssuePair(c.Context(), user.ID, h.auth.LoginRefreshExpiry())
	if err != nil {
		return err
	}

	return c.JSON(dto.OK(dto.AuthResponse{
		User:         dto.NewUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "login successful"))
}

// LoginSession authenticates with email and password and establishes a
// cookie session instead of issuing tokens.
func (h *AuthHandler) LoginSession(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	user, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	if err := h.sessions.Login(c, user.ID); err != nil {
		return apperrors.Internal(err)
	}

	return c.JSON(dto.OK(dto.NewUserResponse(user), "login successful"))
}

// Refresh exchanges a live refresh token for a new pair, rotating the
// stored session row.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	user, pair, err := h.auth.RefreshTokens(c.Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(dto.OK(dto.AuthResponse{
		User:         dto.NewUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "token refreshed"))
}

// Logout revokes the caller's credentials. Session callers have their
// cookie session destroyed; token callers have the presented refresh
// token revoked, or every refresh token when none is presented. The
// operation is idempotent.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("authentication required")
	}

	var req dto.LogoutRequest
	// The body is optional; a missing or malformed body means a full
	// token logout.
	_ = c.BodyParser(&req)

	if middleware.AuthType(c) == middleware.AuthTypeSession {
		if err := h.sessions.Destroy(c); err != nil {
			return apperrors.Internal(err)
		}
	}
	if middleware.AuthType(c) == middleware.AuthTypeJWT || req.RefreshToken != "" {
		if err := h.auth.Logout(c.Context(), user.ID, req.RefreshToken); err != nil {
			return err
		}
	}

	return c.JSON(dto.OK(nil, "logged out successfully"))
}

// Me returns the authenticated caller plus the credential type that was
// accepted.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperrors.Unauthorized("authentication required")
	}

	return c.JSON(dto.OK(fiber.Map{
		"user":     dto.NewUserResponse(user),
		"authType": middleware.AuthType(c),
	}, "authenticated"))
}

// Providers lists the OAuth providers enabled by configuration.
func (h *AuthHandler) Providers(c *fiber.Ctx) error {
	return c.JSON(dto.OK(dto.ProvidersResponse{Providers: h.registry.Enabled()}, "enabled oauth providers"))
}
