package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

type microsoftProvider struct {
	conf       *oauth2.Config
	profileURL string
}

func NewMicrosoft(clientID, clientSecret, redirectURL string) Provider {
	return &microsoftProvider{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"User.Read"},
			Endpoint:     microsoft.AzureADEndpoint("common"),
		},
		profileURL: "https://graph.microsoft.com/v1.0/me",
	}
}

func (p *microsoftProvider) Name() string { return "microsoft" }

func (p *microsoftProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

func (p *microsoftProvider) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	client, err := exchangeClient(ctx, p.conf, code)
	if err != nil {
		return nil, err
	}

	var raw struct {
		ID                string `json:"id"`
		DisplayName       string `json:"displayName"`
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := fetchJSON(ctx, client, p.profileURL, &raw); err != nil {
		return nil, err
	}

	// Personal accounts often have no Mail attribute; the UPN is the
	// sign-in address and serves as the email in that case.
	email := raw.Mail
	if email == "" {
		email = raw.UserPrincipalName
	}
	if email == "" {
		return nil, fmt.Errorf("microsoft profile has no email")
	}

	return &Profile{
		Provider:    p.Name(),
		SubjectID:   raw.ID,
		Email:       email,
		DisplayName: raw.DisplayName,
	}, nil
}
