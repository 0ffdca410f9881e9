package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

type githubProvider struct {
	conf      *oauth2.Config
	userURL   string
	emailsURL string
}

func NewGitHub(clientID, clientSecret, redirectURL string) Provider {
	return &githubProvider{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		userURL:   "https://api.github.com/user",
		emailsURL: "https://api.github.com/user/emails",
	}
}

func (p *githubProvider) Name() string { return "github" }

func (p *githubProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

func (p *githubProvider) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	client, err := exchangeClient(ctx, p.conf, code)
	if err != nil {
		return nil, err
	}

	var raw struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := fetchJSON(ctx, client, p.userURL, &raw); err != nil {
		return nil, err
	}

	email := raw.Email
	if email == "" {
		// The profile email is often hidden; the emails endpoint still
		// returns the verified primary under the user:email scope.
		email, err = p.primaryEmail(ctx, client)
		if err != nil {
			return nil, err
		}
	}

	name := raw.Name
	if name == "" {
		name = raw.Login
	}

	return &Profile{
		Provider:    p.Name(),
		SubjectID:   strconv.FormatInt(raw.ID, 10),
		Email:       email,
		DisplayName: name,
		PictureURL:  raw.AvatarURL,
	}, nil
}

func (p *githubProvider) primaryEmail(ctx context.Context, client *http.Client) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := fetchJSON(ctx, client, p.emailsURL, &emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}

	return "", fmt.Errorf("github profile has no verified primary email")
}
