package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

type facebookProvider struct {
	conf       *oauth2.Config
	profileURL string
}

func NewFacebook(clientID, clientSecret, redirectURL string) Provider {
	return &facebookProvider{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"email"},
			Endpoint:     facebook.Endpoint,
		},
		profileURL: "https://graph.facebook.com/me?fields=id,name,email,picture",
	}
}

func (p *facebookProvider) Name() string { return "facebook" }

func (p *facebookProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

func (p *facebookProvider) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	client, err := exchangeClient(ctx, p.conf, code)
	if err != nil {
		return nil, err
	}

	var raw struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := fetchJSON(ctx, client, p.profileURL, &raw); err != nil {
		return nil, err
	}

	if raw.Email == "" {
		return nil, fmt.Errorf("facebook profile has no email")
	}

	return &Profile{
		Provider:    p.Name(),
		SubjectID:   raw.ID,
		Email:       raw.Email,
		DisplayName: raw.Name,
		PictureURL:  raw.Picture.Data.URL,
	}, nil
}
