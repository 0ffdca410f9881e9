package handler

import (
	"fmt"
	"log"
	"net/http"

	"github.com/campushack/portal/internal/service"
	"github.com/gin-gonic/gin"
)

type OAuthHandler struct {
	oauthService service.OAuthService
	frontendURL  string
}

func NewOAuthHandler(oauthService service.OAuthService, frontendURL string) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthService,
		frontendURL:  frontendURL,
	}
}

// Login redirects the browser to the provider consent page.
func (h *OAuthHandler) Login(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		url, err := h.oauthService.LoginURL(c.Request.Context(), provider)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "unsupported provider"})
			return
		}

		c.Redirect(http.StatusTemporaryRedirect, url)
	}
}

// Callback finishes the flow and hands the token to the front-end via a
// query parameter; no server-side session cookie is involved. Any failure
// sends the user back to the front-end retry entry point.
func (h *OAuthHandler) Callback(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := h.oauthService.HandleCallback(
			c.Request.Context(),
			provider,
			c.Query("state"),
			c.Query("code"),
		)
		if err != nil {
			log.Printf("%s oauth callback failed: %v", provider, err)
			c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?error=oauth_failed")
			return
		}

		c.Redirect(http.StatusTemporaryRedirect, fmt.Sprintf("%s/user?token=%s", h.frontendURL, token))
	}
}
