package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/emreakdogan/auth-service/internal/config"
	"github.com/emreakdogan/auth-service/internal/database"
	"github.com/emreakdogan/auth-service/internal/handlers"
	"github.com/emreakdogan/auth-service/internal/logging"
	"github.com/emreakdogan/auth-service/internal/middleware"
	"github.com/emreakdogan/auth-service/internal/oauth"
	"github.com/emreakdogan/auth-service/internal/repository"
	"github.com/emreakdogan/auth-service/internal/routes"
	"github.com/emreakdogan/auth-service/internal/services"
	"github.com/emreakdogan/auth-service/internal/session"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTAccessSecret == "" {
		slog.Error("JWT_ACCESS_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.JWTRefreshSecret == "" {
		slog.Error("JWT_REFRESH_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	if cfg.SeedDatabase {
		if err := database.Seed(cfg); err != nil {
			slog.Error("seed failed", "error", err)
			os.Exit(1)
		}
	}

	// OAuth provider registry, built once from config. Google needs OIDC
	// discovery, so this can fail at startup.
	registry, err := oauth.NewRegistry(context.Background(), cfg)
	if err != nil {
		slog.Error("oauth registry init failed", "error", err)
		os.Exit(1)
	}
	slog.Info("oauth providers configured", "providers", registry.Enabled())

	// Repositories and services
	userRepo := repository.NewUserRepository(database.DB)
	roleRepo := repository.NewRoleRepository(database.DB)
	sessionRepo := repository.NewSessionRepository(database.DB)

	tokenService := services.NewTokenService(cfg, sessionRepo)
	authService := services.NewAuthService(userRepo, sessionRepo, tokenService, cfg)
	roleService := services.NewRoleService(roleRepo, userRepo)

	sessions := session.NewStore(cfg)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, tokenService, sessions, registry)
	oauthHandler := handlers.NewOAuthHandler(authService, tokenService, sessions, registry)
	roleHandler := handlers.NewRoleHandler(roleService)
	userHandler := handlers.NewUserHandler(authService)
	healthHandler := handlers.NewHealthHandler(sessions.Redis())

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, authService, roleService, sessions, authHandler, oauthHandler, roleHandler, userHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if redis := sessions.Redis(); redis != nil {
		if err := redis.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}
