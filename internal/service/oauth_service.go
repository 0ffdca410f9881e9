package service

import (
	"context"
	"errors"
	"sort"

	"github.com/campushack/portal/internal/oauth"
	"github.com/campushack/portal/pkg/apperror"
)

// OAuthService drives the initiate -> callback flow for every registered
// provider and hands the normalized profile to the identity service.
type OAuthService interface {
	Providers() []string
	LoginURL(ctx context.Context, provider string) (string, error)
	HandleCallback(ctx context.Context, provider, state, code string) (string, error)
}

type oauthService struct {
	providers map[string]oauth.Provider
	states    oauth.StateStore
	identity  IdentityService
	tokens    TokenService
}

func NewOAuthService(
	providers []oauth.Provider,
	states oauth.StateStore,
	identity IdentityService,
	tokens TokenService,
) OAuthService {
	byName := make(map[string]oauth.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}

	return &oauthService{
		providers: byName,
		states:    states,
		identity:  identity,
		tokens:    tokens,
	}
}

func (s *oauthService) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *oauthService) LoginURL(ctx context.Context, provider string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", apperror.NotFound("unsupported provider")
	}

	state, err := s.states.Issue(ctx)
	if err != nil {
		return "", err
	}

	return p.AuthCodeURL(state), nil
}

// HandleCallback verifies and consumes the state nonce, exchanges the code,
// resolves the canonical account and returns a signed session token.
func (s *oauthService) HandleCallback(ctx context.Context, provider, state, code string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", apperror.NotFound("unsupported provider")
	}

	if err := s.states.Consume(ctx, state); err != nil {
		if errors.Is(err, oauth.ErrBadState) {
			return "", apperror.New(401, "invalid oauth state", apperror.ErrUnauthorized)
		}
		return "", err
	}

	profile, err := p.FetchProfile(ctx, code)
	if err != nil {
		return "", apperror.New(502, "provider callback failed", errors.Join(apperror.ErrUpstream, err))
	}

	account, err := s.identity.Resolve(ctx, AuthEvent{
		Provider:   profile.Provider,
		SubjectID:  profile.SubjectID,
		Email:      profile.Email,
		Name:       profile.DisplayName,
		PictureURL: profile.PictureURL,
	})
	if err != nil {
		return "", err
	}

	token, _, err := s.tokens.Issue(account)
	if err != nil {
		return "", err
	}

	return token, nil
}
