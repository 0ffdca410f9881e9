package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campushack/portal/internal/config"
	"github.com/campushack/portal/internal/middleware"
	"github.com/campushack/portal/internal/model"
	"github.com/campushack/portal/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testTokens() service.TokenService {
	return service.NewTokenService(&config.Config{
		JWTSecret: "test-secret",
		JWTTTL:    time.Hour,
	})
}

func testRouter(tokens service.TokenService) *gin.Engine {
	m := middleware.NewAuthMiddleware(tokens)

	router := gin.New()

	router.GET("/protected", m.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"account_id": c.GetString("account_id"),
			"email":      c.GetString("email"),
			"role":       c.GetString("role"),
		})
	})

	router.GET("/organizer", m.RequireAuth(), m.RequireRole(model.RoleJudge, model.RoleAdministrator), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return router
}

func issueToken(t *testing.T, tokens service.TokenService, role string) (string, uuid.UUID) {
	t.Helper()

	account := &model.Account{ID: uuid.New(), Email: "alice@example.com", Role: role}
	token, _, err := tokens.Issue(account)
	require.NoError(t, err)
	return token, account.ID
}

func TestRequireAuth_MissingToken(t *testing.T) {
	router := testRouter(testTokens())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	router := testRouter(testTokens())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_BearerToken(t *testing.T) {
	tokens := testTokens()
	router := testRouter(tokens)

	token, accountID := issueToken(t, tokens, model.RoleParticipant)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), accountID.String())
	assert.Contains(t, w.Body.String(), "alice@example.com")
}

func TestRequireAuth_QueryTokenFallback(t *testing.T) {
	tokens := testTokens()
	router := testRouter(tokens)

	token, _ := issueToken(t, tokens, model.RoleParticipant)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_Forbidden(t *testing.T) {
	tokens := testTokens()
	router := testRouter(tokens)

	token, _ := issueToken(t, tokens, model.RoleParticipant)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/organizer", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_Allowed(t *testing.T) {
	tokens := testTokens()
	router := testRouter(tokens)

	for _, role := range []string{model.RoleJudge, model.RoleAdministrator} {
		token, _ := issueToken(t, tokens, role)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/organizer", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, role)
	}
}
