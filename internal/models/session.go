package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionTypeJWT marks sessions that anchor a refresh token. Cookie
// sessions live in the HTTP session store, not in this table.
const SessionTypeJWT = "jwt"

// Session is one issued refresh token. The token itself is stored as a
// SHA-256 hash; revocation matches by recomputing the hash of the
// presented token. Rows are created on token-issuing logins and deleted
// on logout, never updated.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenHash string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	Type      string    `gorm:"size:20;not null;default:'jwt'" json:"type"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
