package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/emreakdogan/auth-service/internal/database"
	"github.com/emreakdogan/auth-service/internal/dto"
	"github.com/emreakdogan/auth-service/internal/session"
)

type HealthHandler struct {
	redis *session.RedisStorage
}

// NewHealthHandler takes the redis storage when sessions run on redis,
// nil otherwise.
func NewHealthHandler(redis *session.RedisStorage) *HealthHandler {
	return &HealthHandler{redis: redis}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	redisStatus := "memory"
	if h.redis != nil {
		redisStatus = "ok"
		if err := h.redis.Ping(c.Context()); err != nil {
			redisStatus = "unhealthy: " + err.Error()
		}
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Sessions:  redisStatus,
	})
}
