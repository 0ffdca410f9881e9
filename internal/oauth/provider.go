package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// Profile is the normalized shape every provider adapter produces. The
// identity service depends only on this, never on provider payloads.
type Profile struct {
	Provider    string
	SubjectID   string
	Email       string
	DisplayName string
	PictureURL  string
}

// Provider adapts one OAuth provider: it builds the consent URL and turns
// an authorization code into a normalized Profile.
type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*Profile, error)
}

// exchangeClient runs the code exchange and returns an authorized client.
func exchangeClient(ctx context.Context, conf *oauth2.Config, code string) (*http.Client, error) {
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	return conf.Client(ctx, token), nil
}

func fetchJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("profile endpoint returned %d: %s", resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
