// Package oauth implements the external identity provider flows. The
// registry is built once from configuration: a provider exists iff its
// client credentials are present, and the resulting set is immutable
// for the life of the process.
package oauth

import (
	"context"
	"sort"

	"github.com/emreakdogan/auth-service/internal/config"
	"github.com/emreakdogan/auth-service/internal/services"
)

// Provider is one configured external identity provider.
type Provider interface {
	Name() string
	// AuthCodeURL returns the provider's authorization redirect target.
	AuthCodeURL(state string) string
	// FetchProfile exchanges the callback code and returns the verified
	// profile.
	FetchProfile(ctx context.Context, code string) (*services.OAuthProfile, error)
}

type Registry struct {
	providers map[string]Provider
	state     *StateSigner
}

// NewRegistry constructs every configured provider. Google requires
// OIDC discovery against accounts.google.com, so construction can fail
// when that endpoint is unreachable.
func NewRegistry(ctx context.Context, cfg *config.Config) (*Registry, error) {
	r := &Registry{
		providers: make(map[string]Provider),
		state:     NewStateSigner(cfg.OAuthStateSecret),
	}

	if cfg.Google.Enabled() {
		p, err := newGoogleProvider(ctx, cfg.Google)
		if err != nil {
			return nil, err
		}
		r.providers[p.Name()] = p
	}
	if cfg.Facebook.Enabled() {
		r.providers["facebook"] = newFacebookProvider(cfg.Facebook)
	}
	if cfg.GitHub.Enabled() {
		r.providers["github"] = newGitHubProvider(cfg.GitHub)
	}
	return r, nil
}

// Get returns the named provider, or false when it is not configured.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Enabled lists the configured provider names in stable order.
func (r *Registry) Enabled() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// State returns the signer used for the OAuth state parameter.
func (r *Registry) State() *StateSigner {
	return r.state
}
