package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/emreakdogan/auth-service/internal/apperrors"
	"github.com/emreakdogan/auth-service/internal/dto"
	"github.com/emreakdogan/auth-service/internal/models"
	"github.com/emreakdogan/auth-service/internal/oauth"
	"github.com/emreakdogan/auth-service/internal/services"
	"github.com/emreakdogan/auth-service/internal/session"
)

// OAuthHandler drives the redirect and callback legs of the OAuth code
// flow. Callbacks come in two flavors: token issuing and cookie-session
// establishing.
type OAuthHandler struct {
	auth     *services.AuthService
	tokens   *services.TokenService
	sessions *session.Store
	registry *oauth.Registry
}

func NewOAuthHandler(auth *services.AuthService, tokens *services.TokenService, sessions *session.Store, registry *oauth.Registry) *OAuthHandler {
	return &OAuthHandler{auth: auth, tokens: tokens, sessions: sessions, registry: registry}
}

// Redirect sends the browser to the provider's authorization page with
// a signed state parameter. Unconfigured providers answer 503.
func (h *OAuthHandler) Redirect(c *fiber.Ctx) error {
	provider, err := h.provider(c)
	if err != nil {
		return err
	}

	state, err := h.registry.State().Issue()
	if err != nil {
		return apperrors.Internal(err)
	}

	return c.Redirect(provider.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

// Callback completes the code flow and issues a token pair.
func (h *OAuthHandler) Callback(c *fiber.Ctx) error {
	user, err := h.resolveCallback(c)
	if err != nil {
		return err
	}

	pair, err := h.tokens.IssuePair(c.Context(), user.ID, h.auth.OAuthRefreshExpiry())
	if err != nil {
		return err
	}

	return c.JSON(dto.OK(dto.AuthResponse{
		User:         dto.NewUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "login successful"))
}

// CallbackSession completes the code flow and establishes a cookie
// session instead of issuing tokens.
func (h *OAuthHandler) CallbackSession(c *fiber.Ctx) error {
	user, err := h.resolveCallback(c)
	if err != nil {
		return err
	}

	if err := h.sessions.Login(c, user.ID); err != nil {
		return apperrors.Internal(err)
	}

	return c.JSON(dto.OK(dto.NewUserResponse(user), "login successful"))
}

func (h *OAuthHandler) provider(c *fiber.Ctx) (oauth.Provider, error) {
	name := c.Params("provider")
	provider, ok := h.registry.Get(name)
	if !ok {
		return nil, &apperrors.AppError{
			Code:    "PROVIDER_UNAVAILABLE",
			Message: name + " login is not configured",
			Status:  fiber.StatusServiceUnavailable,
		}
	}
	return provider, nil
}

func (h *OAuthHandler) resolveCallback(c *fiber.Ctx) (*models.User, error) {
	provider, err := h.provider(c)
	if err != nil {
		return nil, err
	}

	if errParam := c.Query("error"); errParam != "" {
		return nil, apperrors.Unauthorized("oauth login was denied: " + errParam)
	}

	if err := h.registry.State().Verify(c.Query("state")); err != nil {
		return nil, apperrors.Unauthorized("invalid oauth state")
	}

	code := c.Query("code")
	if code == "" {
		return nil, apperrors.Validation("missing authorization code")
	}

	profile, err := provider.FetchProfile(c.Context(), code)
	if err != nil {
		slog.Warn("oauth profile fetch failed", "provider", provider.Name(), "error", err)
		return nil, apperrors.Unauthorized("oauth login failed")
	}

	return h.auth.ResolveOAuthProfile(c.Context(), *profile)
}
