package oauth

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/emreakdogan/auth-service/internal/config"
	"github.com/emreakdogan/auth-service/internal/models"
	"github.com/emreakdogan/auth-service/internal/services"
)

const githubUserInfoURL = "https://api.github.com/user"

// githubEmailDomain is appended to the username when GitHub returns no
// public email, so the identity engine always sees an email.
const githubEmailDomain = "@github.user"

type githubProvider struct {
	cfg oauth2.Config
}

func newGitHubProvider(cc config.OAuthProviderConfig) Provider {
	return &githubProvider{
		cfg: oauth2.Config{
			ClientID:     cc.ClientID,
			ClientSecret: cc.ClientSecret,
			RedirectURL:  cc.RedirectURL,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"user:email"},
		},
	}
}

func (p *githubProvider) Name() string { return models.ProviderGitHub }

func (p *githubProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

func (p *githubProvider) FetchProfile(ctx context.Context, code string) (*services.OAuthProfile, error) {
	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github code exchange: %w", err)
	}

	var info struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := fetchJSON(ctx, p.cfg.Client(ctx, token), githubUserInfoURL, &info); err != nil {
		return nil, fmt.Errorf("github user info: %w", err)
	}

	email := info.Email
	if email == "" && info.Login != "" {
		email = info.Login + githubEmailDomain
	}
	name := info.Name
	if name == "" {
		name = info.Login
	}
	if name == "" {
		name = "User"
	}

	return &services.OAuthProfile{
		Provider:   models.ProviderGitHub,
		ProviderID: strconv.FormatInt(info.ID, 10),
		Email:      email,
		Name:       name,
	}, nil
}
