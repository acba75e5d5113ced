package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/emreakdogan/auth-service/internal/apperrors"
	"github.com/emreakdogan/auth-service/internal/config"
	"github.com/emreakdogan/auth-service/internal/dto"
	"github.com/emreakdogan/auth-service/internal/models"
	"github.com/emreakdogan/auth-service/internal/repository"
)

const bcryptCost = 12

// OAuthProfile is an externally verified identity returned by a
// provider adapter. Email is mandatory by the time it reaches the
// resolution engine; the GitHub adapter synthesizes a placeholder when
// the provider omits it.
type OAuthProfile struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
}

// AuthService is the identity resolution engine: local registration and
// login, OAuth profile resolution, and logout-driven refresh revocation.
type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   *TokenService

	// Distinct refresh lifetimes per login path, kept as two knobs.
	loginRefreshExpiry time.Duration
	oauthRefreshExpiry time.Duration
}

func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, tokens *TokenService, cfg *config.Config) *AuthService {
	return &AuthService{
		users:              users,
		sessions:           sessions,
		tokens:             tokens,
		loginRefreshExpiry: cfg.JWTRefreshExpiry,
		oauthRefreshExpiry: cfg.OAuthRefreshExpiry,
	}
}

// LoginRefreshExpiry is the refresh lifetime for password logins.
func (s *AuthService) LoginRefreshExpiry() time.Duration { return s.loginRefreshExpiry }

// OAuthRefreshExpiry is the refresh lifetime for OAuth callbacks.
func (s *AuthService) OAuthRefreshExpiry() time.Duration { return s.oauthRefreshExpiry }

// Register creates a local account. The duplicate-email pre-check and
// the store's unique constraint both surface as the same conflict; the
// constraint wins any race between two simultaneous registrations.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("user with this email already exists")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Provider:     models.ProviderEmail,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies a local credential pair. OAuth-only accounts get a
// dedicated message so the client can steer the user to OAuth.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, err
	}

	if !user.HasPassword() {
		return nil, apperrors.Unauthorized("account registered via OAuth. Please use OAuth to login.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	return user, nil
}

// ResolveOAuthProfile produces or updates the canonical user for an
// externally verified profile. The lookup matches the email OR the
// (provider, providerId) pair in one query; on a match with a different
// provider identity, provider, providerId and name are overwritten while
// the stored email and user id stay fixed. A previously local account is
// thereby claimed by the OAuth login.
func (s *AuthService) ResolveOAuthProfile(ctx context.Context, profile OAuthProfile) (*models.User, error) {
	if profile.Email == "" {
		return nil, apperrors.Validation("no email found in " + profile.Provider + " profile")
	}
	if profile.ProviderID == "" {
		return nil, apperrors.Validation("no subject id found in " + profile.Provider + " profile")
	}

	user, err := s.users.FindByEmailOrProviderID(ctx, profile.Email, profile.Provider, profile.ProviderID)
	if errors.Is(err, apperrors.ErrNotFound) {
		user = &models.User{
			Email:      profile.Email,
			Name:       profile.Name,
			Provider:   profile.Provider,
			ProviderID: &profile.ProviderID,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if err != nil {
		return nil, err
	}

	if user.Provider != profile.Provider || user.ProviderID == nil || *user.ProviderID != profile.ProviderID {
		user.Provider = profile.Provider
		user.ProviderID = &profile.ProviderID
		user.Name = profile.Name
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// GetUserByID resolves an id to a user, used by both gates and by
// session deserialization.
func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// Logout revokes refresh sessions. With a token it deletes the exact
// matching row; without one it deletes every jwt session of the user.
// Both variants are idempotent: revoking nothing is a no-op.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	if refreshToken != "" {
		return s.sessions.DeleteByTokenHash(ctx, userID, hashToken(refreshToken))
	}
	return s.sessions.DeleteAllForUser(ctx, userID, models.SessionTypeJWT)
}

// RefreshTokens exchanges a live refresh token for a new pair. The used
// session row is deleted before the new one is issued (rotation), so a
// replayed refresh token fails.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*models.User, *dto.TokenPair, error) {
	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.sessions.FindByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.InvalidToken("refresh token has been revoked")
		}
		return nil, nil, err
	}
	if session.UserID != userID || time.Now().After(session.ExpiresAt) {
		return nil, nil, apperrors.InvalidToken("invalid or expired refresh token")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.sessions.DeleteByTokenHash(ctx, userID, session.TokenHash); err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.IssuePair(ctx, userID, s.loginRefreshExpiry)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}
