package routes

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/emreakdogan/auth-service/internal/config"
	"github.com/emreakdogan/auth-service/internal/handlers"
	"github.com/emreakdogan/auth-service/internal/middleware"
	"github.com/emreakdogan/auth-service/internal/models"
	"github.com/emreakdogan/auth-service/internal/oauth"
	"github.com/emreakdogan/auth-service/internal/repository"
	"github.com/emreakdogan/auth-service/internal/services"
	"github.com/emreakdogan/auth-service/internal/session"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmailOrProviderID(ctx context.Context, email, provider, providerID string) (*models.User, error) {
	args := m.Called(ctx, email, provider, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type mockRoleRepository struct {
	mock.Mock
}

func (m *mockRoleRepository) Create(ctx context.Context, role *models.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *mockRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *mockRoleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *mockRoleRepository) List(ctx context.Context) ([]repository.RoleWithUsage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.RoleWithUsage), args.Error(1)
}

func (m *mockRoleRepository) Update(ctx context.Context, role *models.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *mockRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRoleRepository) CountAssignments(ctx context.Context, roleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, roleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRoleRepository) UsersForRole(ctx context.Context, roleID uuid.UUID) ([]models.User, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *mockRoleRepository) RolesForUser(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Role), args.Error(1)
}

func (m *mockRoleRepository) CreateAssignment(ctx context.Context, link *models.UserRole) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *mockRoleRepository) DeleteAssignment(ctx context.Context, userID, roleID uuid.UUID) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

func (m *mockRoleRepository) FindAssignment(ctx context.Context, userID, roleID uuid.UUID) (*models.UserRole, error) {
	args := m.Called(ctx, userID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserRole), args.Error(1)
}

type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockSessionRepository) DeleteByTokenHash(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	args := m.Called(ctx, userID, tokenHash)
	return args.Error(0)
}

func (m *mockSessionRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID, sessionType string) error {
	args := m.Called(ctx, userID, sessionType)
	return args.Error(0)
}

type routesFixture struct {
	app    *fiber.App
	users  *mockUserRepository
	roles  *mockRoleRepository
	tokens *services.TokenService
}

func newRoutesFixture(t *testing.T) *routesFixture {
	t.Helper()
	cfg := &config.Config{
		JWTAccessSecret:    "access-secret-for-tests",
		JWTRefreshSecret:   "refresh-secret-for-tests",
		JWTAccessExpiry:    15 * time.Minute,
		JWTRefreshExpiry:   168 * time.Hour,
		OAuthRefreshExpiry: 720 * time.Hour,
		SessionCookieName:  "auth_session",
		SessionExpiry:      time.Hour,
		OAuthStateSecret:   "state-secret-for-tests",
	}

	users := new(mockUserRepository)
	roleRepo := new(mockRoleRepository)
	sessionRepo := new(mockSessionRepository)

	tokens := services.NewTokenService(cfg, sessionRepo)
	authService := services.NewAuthService(users, sessionRepo, tokens, cfg)
	roleService := services.NewRoleService(roleRepo, users)
	sessions := session.NewStore(cfg)
	registry, err := oauth.NewRegistry(context.Background(), cfg)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	Setup(app, cfg, authService, roleService, sessions,
		handlers.NewAuthHandler(authService, tokens, sessions, registry),
		handlers.NewOAuthHandler(authService, tokens, sessions, registry),
		handlers.NewRoleHandler(roleService),
		handlers.NewUserHandler(authService),
		handlers.NewHealthHandler(nil))

	return &routesFixture{app: app, users: users, roles: roleRepo, tokens: tokens}
}

func (f *routesFixture) bearerFor(t *testing.T, user *models.User) string {
	t.Helper()
	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	token, err := f.tokens.GenerateAccessToken(user.ID)
	require.NoError(t, err)
	return "Bearer " + token
}

// Any authenticated caller may look up a user's permissions; mutating
// and listing role routes still require an explicit grant.
func TestRoutes_UserPermissionsNeedsNoGrant(t *testing.T) {
	f := newRoutesFixture(t)

	caller := &models.User{ID: uuid.New(), Email: "caller@example.com"}
	target := &models.User{ID: uuid.New(), Email: "target@example.com"}
	bearer := f.bearerFor(t, caller)

	f.users.On("FindByID", mock.Anything, target.ID).Return(target, nil)
	f.roles.On("RolesForUser", mock.Anything, target.ID).Return([]models.Role{{
		ID:          uuid.New(),
		Name:        "viewer",
		Permissions: datatypes.NewJSONSlice([]string{"posts:read"}),
	}}, nil)

	req := httptest.NewRequest(fiber.MethodGet, "/api/roles/user/"+target.ID.String()+"/permissions", nil)
	req.Header.Set("Authorization", bearer)
	resp, err := f.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "posts:read")
}

func TestRoutes_UserRolesStillNeedsGrant(t *testing.T) {
	f := newRoutesFixture(t)

	caller := &models.User{ID: uuid.New(), Email: "caller@example.com"}
	target := &models.User{ID: uuid.New(), Email: "target@example.com"}
	bearer := f.bearerFor(t, caller)

	// The caller holds no roles, so the roles:read guard denies.
	f.roles.On("RolesForUser", mock.Anything, caller.ID).Return([]models.Role{}, nil)

	req := httptest.NewRequest(fiber.MethodGet, "/api/roles/user/"+target.ID.String(), nil)
	req.Header.Set("Authorization", bearer)
	resp, err := f.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
