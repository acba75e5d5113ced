package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/emreakdogan/auth-service/internal/config"
	"github.com/emreakdogan/auth-service/internal/handlers"
	"github.com/emreakdogan/auth-service/internal/middleware"
	"github.com/emreakdogan/auth-service/internal/services"
	"github.com/emreakdogan/auth-service/internal/session"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authService *services.AuthService,
	roleService *services.RoleService,
	sessions *session.Store,
	authHandler *handlers.AuthHandler,
	oauthHandler *handlers.OAuthHandler,
	roleHandler *handlers.RoleHandler,
	userHandler *handlers.UserHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	requireAuth := middleware.RequireAuth(cfg, authService, sessions)

	// Auth routes are public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/login/jwt", authHandler.LoginJWT)
	auth.Post("/login/session", authHandler.LoginSession)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Get("/oauth/providers", authHandler.Providers)

	// Either credential type is accepted on these two. They register
	// before the :provider wildcard so it cannot shadow them.
	api.Post("/auth/logout", requireAuth, authHandler.Logout)
	api.Get("/auth/me", requireAuth, authHandler.Me)

	// OAuth code flow.
	auth.Get("/:provider", oauthHandler.Redirect)
	auth.Get("/:provider/callback", oauthHandler.Callback)
	auth.Get("/:provider/callback/session", oauthHandler.CallbackSession)

	api.Get("/users/:id", requireAuth, userHandler.Get)

	roles := api.Group("/roles", requireAuth)
	roles.Post("/", middleware.RequirePermission(roleService, "roles:create"), roleHandler.Create)
	roles.Get("/", middleware.RequirePermission(roleService, "roles:read"), roleHandler.List)
	roles.Get("/me/permissions", roleHandler.MyPermissions)
	roles.Post("/assign", middleware.RequirePermission(roleService, "roles:assign"), roleHandler.Assign)
	roles.Post("/remove", middleware.RequirePermission(roleService, "roles:assign"), roleHandler.Remove)
	roles.Get("/user/:userId", middleware.RequirePermission(roleService, "roles:read"), roleHandler.UserRoles)
	roles.Get("/user/:userId/permissions", roleHandler.UserPermissions)
	roles.Get("/:id", middleware.RequirePermission(roleService, "roles:read"), roleHandler.Get)
	roles.Put("/:id", middleware.RequirePermission(roleService, "roles:update"), roleHandler.Update)
	roles.Delete("/:id", middleware.RequirePermission(roleService, "roles:delete"), roleHandler.Delete)
}
