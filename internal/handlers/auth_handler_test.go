package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/emreakdogan/auth-service/internal/config"
	"github.com/emreakdogan/auth-service/internal/middleware"
	"github.com/emreakdogan/auth-service/internal/models"
	"github.com/emreakdogan/auth-service/internal/oauth"
	"github.com/emreakdogan/auth-service/internal/services"
	"github.com/emreakdogan/auth-service/internal/session"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTAccessSecret:    "access-secret-for-tests",
		JWTRefreshSecret:   "refresh-secret-for-tests",
		JWTAccessExpiry:    15 * time.Minute,
		JWTRefreshExpiry:   168 * time.Hour,
		OAuthRefreshExpiry: 720 * time.Hour,
		SessionCookieName:  "auth_session",
		SessionExpiry:      time.Hour,
		OAuthStateSecret:   "state-secret-for-tests",
		GitHub: config.OAuthProviderConfig{
			ClientID:     "gh-id",
			ClientSecret: "gh-secret",
			RedirectURL:  "http://localhost:8080/api/auth/github/callback",
		},
	}
}

type handlerFixture struct {
	cfg      *config.Config
	users    *mockUserRepository
	sessions *mockSessionRepository
	registry *oauth.Registry
	store    *session.Store
	auth     *services.AuthService
	tokens   *services.TokenService
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	cfg := testConfig()
	users := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	tokens := services.NewTokenService(cfg, sessionRepo)
	registry, err := oauth.NewRegistry(context.Background(), cfg)
	require.NoError(t, err)
	return &handlerFixture{
		cfg:      cfg,
		users:    users,
		sessions: sessionRepo,
		registry: registry,
		store:    session.NewStore(cfg),
		auth:     services.NewAuthService(users, sessionRepo, tokens, cfg),
		tokens:   tokens,
	}
}

func (f *handlerFixture) authHandler() *AuthHandler {
	return NewAuthHandler(f.auth, f.tokens, f.store, f.registry)
}

func (f *handlerFixture) oauthHandler() *OAuthHandler {
	return NewOAuthHandler(f.auth, f.tokens, f.store, f.registry)
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func jsonRequest(method, target, payload string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sessionCookieFrom(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// hashForTest creates a bcrypt hash with cost 4 for fast tests.
func hashForTest(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), 4)
	require.NoError(t, err)
	return string(h)
}

func (f *handlerFixture) seedLocalUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test User",
		Provider:     models.ProviderEmail,
		PasswordHash: hashForTest(t, password),
	}
	f.users.On("FindByEmail", mock.Anything, email).Return(user, nil)
	f.sessions.On("Create", mock.Anything, mock.AnythingOfType("*models.Session")).Return(nil)
	return user
}

func TestLogin_ReturnsTokensAndSetsSessionCookie(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedLocalUser(t, "dual@example.com", "S3curePassword")

	app := newTestApp()
	app.Post("/api/auth/login", f.authHandler().Login)

	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/auth/login",
		`{"email":"dual@example.com","password":"S3curePassword"}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	b := body(t, resp)
	assert.Contains(t, b, "accessToken")
	assert.Contains(t, b, "refreshToken")

	// Browser clients leave with the cookie session as well.
	cookie := sessionCookieFrom(resp, f.cfg.SessionCookieName)
	require.NotNil(t, cookie, "login did not set the session cookie")
	assert.NotEmpty(t, cookie.Value)
}

func TestLogin_SessionCookieIsUsable(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedLocalUser(t, "dual@example.com", "S3curePassword")

	app := newTestApp()
	app.Post("/api/auth/login", f.authHandler().Login)
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id, ok := f.store.UserID(c)
		if !ok {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(id.String())
	})

	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/auth/login",
		`{"email":"dual@example.com","password":"S3curePassword"}`))
	require.NoError(t, err)
	cookie := sessionCookieFrom(resp, f.cfg.SessionCookieName)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLoginJWT_DoesNotSetSessionCookie(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedLocalUser(t, "api@example.com", "S3curePassword")

	app := newTestApp()
	app.Post("/api/auth/login/jwt", f.authHandler().LoginJWT)

	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/auth/login/jwt",
		`{"email":"api@example.com","password":"S3curePassword"}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "accessToken")
	assert.Nil(t, sessionCookieFrom(resp, f.cfg.SessionCookieName))
}

func TestLogin_BadCredentials(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedLocalUser(t, "dual@example.com", "S3curePassword")

	app := newTestApp()
	app.Post("/api/auth/login", f.authHandler().Login)

	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/auth/login",
		`{"email":"dual@example.com","password":"wrong-password"}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body(t, resp), "invalid email or password")
	assert.Nil(t, sessionCookieFrom(resp, f.cfg.SessionCookieName))
}
