package services

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/emreakdogan/auth-service/internal/apperrors"
	"github.com/emreakdogan/auth-service/internal/config"
	"github.com/emreakdogan/auth-service/internal/dto"
	"github.com/emreakdogan/auth-service/internal/models"
	"github.com/emreakdogan/auth-service/internal/repository"
)

// tokenClaims is the payload of both token families: only the user id
// beside the registered claims.
type tokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the two token families. Access and
// refresh tokens use distinct secrets; refresh tokens are additionally
// anchored to a Session row so they can be revoked server side. Access
// tokens are not persisted: after logout they stay cryptographically
// valid until natural expiry.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	sessions      repository.SessionRepository
}

func NewTokenService(cfg *config.Config, sessions repository.SessionRepository) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.JWTAccessSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessExpiry:  cfg.JWTAccessExpiry,
		sessions:      sessions,
	}
}

func (s *TokenService) GenerateAccessToken(userID uuid.UUID) (string, error) {
	return signToken(userID, s.accessSecret, s.accessExpiry)
}

func (s *TokenService) GenerateRefreshToken(userID uuid.UUID, expiry time.Duration) (string, error) {
	return signToken(userID, s.refreshSecret, expiry)
}

// VerifyAccessToken checks signature and expiry and returns the user id
// carried by the token.
func (s *TokenService) VerifyAccessToken(token string) (uuid.UUID, error) {
	return verifyToken(token, s.accessSecret)
}

func (s *TokenService) VerifyRefreshToken(token string) (uuid.UUID, error) {
	return verifyToken(token, s.refreshSecret)
}

// IssuePair signs an access/refresh pair and persists the refresh token
// as a Session row. The refresh expiry differs per call site (password
// login vs OAuth callback).
func (s *TokenService) IssuePair(ctx context.Context, userID uuid.UUID, refreshExpiry time.Duration) (*dto.TokenPair, error) {
	accessToken, err := s.GenerateAccessToken(userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	refreshToken, err := s.GenerateRefreshToken(userID, refreshExpiry)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	session := &models.Session{
		UserID:    userID,
		TokenHash: hashToken(refreshToken),
		Type:      models.SessionTypeJWT,
		ExpiresAt: time.Now().Add(refreshExpiry),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &dto.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func signToken(userID uuid.UUID, secret []byte, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func verifyToken(tokenString string, secret []byte) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, apperrors.InvalidToken("token expired")
		}
		return uuid.Nil, apperrors.InvalidToken("invalid token")
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return uuid.Nil, apperrors.InvalidToken("invalid token")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, apperrors.InvalidToken("invalid token")
	}
	return userID, nil
}

// hashToken returns the hex SHA-256 of a refresh token. Only the hash
// is stored; revocation recomputes it from the presented token.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
