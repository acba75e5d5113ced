package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/emreakdogan/auth-service/internal/config"
	"github.com/emreakdogan/auth-service/internal/models"
	"github.com/emreakdogan/auth-service/internal/services"
)

const googleIssuer = "https://accounts.google.com"

// googleProvider verifies identity through the id_token issued by
// Google's OIDC endpoint rather than a userinfo fetch.
type googleProvider struct {
	cfg      oauth2.Config
	verifier *oidc.IDTokenVerifier
}

func newGoogleProvider(ctx context.Context, cc config.OAuthProviderConfig) (Provider, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("google oidc discovery: %w", err)
	}

	return &googleProvider{
		cfg: oauth2.Config{
			ClientID:     cc.ClientID,
			ClientSecret: cc.ClientSecret,
			RedirectURL:  cc.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cc.ClientID}),
	}, nil
}

func (p *googleProvider) Name() string { return models.ProviderGoogle }

func (p *googleProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

func (p *googleProvider) FetchProfile(ctx context.Context, code string) (*services.OAuthProfile, error) {
	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("no id_token in google token response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("google id_token verification: %w", err)
	}

	var claims struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("google id_token claims: %w", err)
	}

	name := claims.Name
	if name == "" {
		name = "User"
	}
	return &services.OAuthProfile{
		Provider:   models.ProviderGoogle,
		ProviderID: claims.Sub,
		Email:      claims.Email,
		Name:       name,
	}, nil
}
