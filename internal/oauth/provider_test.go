package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeProviderServer serves a token endpoint plus arbitrary profile routes.
func fakeProviderServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fake-access-token","token_type":"bearer"}`))
	})
	for path, body := range routes {
		payload := body
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(payload))
		})
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testConf(serverURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:  serverURL + "/authorize",
			TokenURL: serverURL + "/token",
		},
	}
}

func TestGoogleProvider_FetchProfile(t *testing.T) {
	server := fakeProviderServer(t, map[string]string{
		"/userinfo": `{"id":"10769150350006150715113082367","email":"alice@gmail.com","name":"Alice","picture":"https://lh3.example.com/photo.jpg"}`,
	})

	p := &googleProvider{
		conf:       testConf(server.URL),
		profileURL: server.URL + "/userinfo",
	}

	profile, err := p.FetchProfile(context.Background(), "auth-code")
	require.NoError(t, err)

	assert.Equal(t, "google", profile.Provider)
	assert.Equal(t, "10769150350006150715113082367", profile.SubjectID)
	assert.Equal(t, "alice@gmail.com", profile.Email)
	assert.Equal(t, "Alice", profile.DisplayName)
	assert.Equal(t, "https://lh3.example.com/photo.jpg", profile.PictureURL)
}

func TestGoogleProvider_MissingEmail(t *testing.T) {
	server := fakeProviderServer(t, map[string]string{
		"/userinfo": `{"id":"123","name":"Alice"}`,
	})

	p := &googleProvider{
		conf:       testConf(server.URL),
		profileURL: server.URL + "/userinfo",
	}

	_, err := p.FetchProfile(context.Background(), "auth-code")
	assert.Error(t, err)
}

func TestGitHubProvider_FetchProfile(t *testing.T) {
	server := fakeProviderServer(t, map[string]string{
		"/user": `{"id":583231,"login":"octocat","name":"The Octocat","email":"octocat@github.com","avatar_url":"https://avatars.example.com/u/583231"}`,
	})

	p := &githubProvider{
		conf:      testConf(server.URL),
		userURL:   server.URL + "/user",
		emailsURL: server.URL + "/user/emails",
	}

	profile, err := p.FetchProfile(context.Background(), "auth-code")
	require.NoError(t, err)

	assert.Equal(t, "github", profile.Provider)
	assert.Equal(t, "583231", profile.SubjectID)
	assert.Equal(t, "octocat@github.com", profile.Email)
	assert.Equal(t, "The Octocat", profile.DisplayName)
}

func TestGitHubProvider_HiddenEmailFallsBackToEmailsEndpoint(t *testing.T) {
	server := fakeProviderServer(t, map[string]string{
		"/user":        `{"id":583231,"login":"octocat","name":"","email":"","avatar_url":""}`,
		"/user/emails": `[{"email":"secondary@example.com","primary":false,"verified":true},{"email":"octocat@github.com","primary":true,"verified":true}]`,
	})

	p := &githubProvider{
		conf:      testConf(server.URL),
		userURL:   server.URL + "/user",
		emailsURL: server.URL + "/user/emails",
	}

	profile, err := p.FetchProfile(context.Background(), "auth-code")
	require.NoError(t, err)

	assert.Equal(t, "octocat@github.com", profile.Email)
	// Login stands in when the display name is unset.
	assert.Equal(t, "octocat", profile.DisplayName)
}

func TestGitHubProvider_NoVerifiedPrimaryEmail(t *testing.T) {
	server := fakeProviderServer(t, map[string]string{
		"/user":        `{"id":583231,"login":"octocat","email":""}`,
		"/user/emails": `[{"email":"unverified@example.com","primary":true,"verified":false}]`,
	})

	p := &githubProvider{
		conf:      testConf(server.URL),
		userURL:   server.URL + "/user",
		emailsURL: server.URL + "/user/emails",
	}

	_, err := p.FetchProfile(context.Background(), "auth-code")
	assert.Error(t, err)
}

func TestFetchJSON_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	var out map[string]any
	err := fetchJSON(context.Background(), server.Client(), server.URL, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
