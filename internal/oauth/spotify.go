package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/spotify"
)

type spotifyProvider struct {
	conf       *oauth2.Config
	profileURL string
}

func NewSpotify(clientID, clientSecret, redirectURL string) Provider {
	return &spotifyProvider{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"user-read-email"},
			Endpoint:     spotify.Endpoint,
		},
		profileURL: "https://api.spotify.com/v1/me",
	}
}

func (p *spotifyProvider) Name() string { return "spotify" }

func (p *spotifyProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

func (p *spotifyProvider) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	client, err := exchangeClient(ctx, p.conf, code)
	if err != nil {
		return nil, err
	}

	var raw struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
		Images      []struct {
			URL string `json:"url"`
		} `json:"images"`
	}
	if err := fetchJSON(ctx, client, p.profileURL, &raw); err != nil {
		return nil, err
	}

	if raw.Email == "" {
		return nil, fmt.Errorf("spotify profile has no email")
	}

	var picture string
	if len(raw.Images) > 0 {
		picture = raw.Images[0].URL
	}

	return &Profile{
		Provider:    p.Name(),
		SubjectID:   raw.ID,
		Email:       raw.Email,
		DisplayName: raw.DisplayName,
		PictureURL:  picture,
	}, nil
}
