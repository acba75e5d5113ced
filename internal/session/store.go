// Package session wraps fiber's cookie-session middleware. Only the
// user id is serialized into the session; the full user is resolved on
// each request through the identity engine's lookup-by-id.
package session

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"

	"github.com/emreakdogan/auth-service/internal/config"
)

const userIDKey = "user_id"

type Store struct {
	store *session.Store
	redis *RedisStorage
}

// NewStore builds the session store. With REDIS_ADDR set, sessions are
// persisted in redis; otherwise fiber's in-memory storage backs them.
func NewStore(cfg *config.Config) *Store {
	sessionCfg := session.Config{
		Expiration:     cfg.SessionExpiry,
		KeyLookup:      "cookie:" + cfg.SessionCookieName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	}
	var redis *RedisStorage
	if cfg.RedisAddr != "" {
		redis = NewRedisStorage(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		sessionCfg.Storage = redis
	}
	return &Store{store: session.New(sessionCfg), redis: redis}
}

// Redis exposes the backing redis storage, nil when sessions are held
// in memory.
func (s *Store) Redis() *RedisStorage {
	return s.redis
}

// Login binds the user id to the caller's session cookie.
func (s *Store) Login(c *fiber.Ctx, userID uuid.UUID) error {
	sess, err := s.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(userIDKey, userID.String())
	return sess.Save()
}

// UserID returns the authenticated user id bound to the session, if any.
func (s *Store) UserID(c *fiber.Ctx) (uuid.UUID, bool) {
	sess, err := s.store.Get(c)
	if err != nil {
		return uuid.Nil, false
	}
	raw, ok := sess.Get(userIDKey).(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Destroy removes the server-side session entry and expires the cookie.
// Destroying a session that does not exist is a no-op.
func (s *Store) Destroy(c *fiber.Ctx) error {
	sess, err := s.store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}
