package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	"github.com/emreakdogan/auth-service/internal/config"
	"github.com/emreakdogan/auth-service/internal/models"
	"github.com/emreakdogan/auth-service/internal/services"
)

const facebookUserInfoURL = "https://graph.facebook.com/me?fields=id,name,email"

type facebookProvider struct {
	cfg oauth2.Config
}

func newFacebookProvider(cc config.OAuthProviderConfig) Provider {
	return &facebookProvider{
		cfg: oauth2.Config{
			ClientID:     cc.ClientID,
			ClientSecret: cc.ClientSecret,
			RedirectURL:  cc.RedirectURL,
			Endpoint:     facebook.Endpoint,
			Scopes:       []string{"email", "public_profile"},
		},
	}
}

func (p *facebookProvider) Name() string { return models.ProviderFacebook }

func (p *facebookProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

func (p *facebookProvider) FetchProfile(ctx context.Context, code string) (*services.OAuthProfile, error) {
	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("facebook code exchange: %w", err)
	}

	var info struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := fetchJSON(ctx, p.cfg.Client(ctx, token), facebookUserInfoURL, &info); err != nil {
		return nil, fmt.Errorf("facebook user info: %w", err)
	}

	name := info.Name
	if name == "" {
		name = "User"
	}
	return &services.OAuthProfile{
		Provider:   models.ProviderFacebook,
		ProviderID: info.ID,
		Email:      info.Email,
		Name:       name,
	}, nil
}

// fetchJSON GETs a provider endpoint with the token-bearing client and
// decodes the JSON body.
func fetchJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
