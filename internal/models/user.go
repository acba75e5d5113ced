package models

import (
	"time"

	"github.com/google/uuid"
)

// Supported identity providers.
const (
	ProviderEmail    = "email"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
	ProviderGitHub   = "github"
)

// User is the canonical identity record. A user created by local
// registration carries a bcrypt password hash; a user created through an
// OAuth callback carries a provider/provider-id pair and no hash.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Provider     string    `gorm:"size:50;not null;default:'email';uniqueIndex:idx_users_provider_identity" json:"provider"`
	ProviderID   *string   `gorm:"size:255;uniqueIndex:idx_users_provider_identity" json:"provider_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPassword reports whether the account can authenticate with a local
// password. False for OAuth-only accounts.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
