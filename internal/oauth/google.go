package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type googleProvider struct {
	conf       *oauth2.Config
	profileURL string
}

func NewGoogle(clientID, clientSecret, redirectURL string) Provider {
	return &googleProvider{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		profileURL: "https://www.googleapis.com/oauth2/v2/userinfo",
	}
}

func (p *googleProvider) Name() string { return "google" }

func (p *googleProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p *googleProvider) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	client, err := exchangeClient(ctx, p.conf, code)
	if err != nil {
		return nil, err
	}

	var raw struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := fetchJSON(ctx, client, p.profileURL, &raw); err != nil {
		return nil, err
	}

	if raw.Email == "" {
		return nil, fmt.Errorf("google profile has no email")
	}

	return &Profile{
		Provider:    p.Name(),
		SubjectID:   raw.ID,
		Email:       raw.Email,
		DisplayName: raw.Name,
		PictureURL:  raw.Picture,
	}, nil
}
