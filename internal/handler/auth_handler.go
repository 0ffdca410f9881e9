package handler

import (
	"net/http"

	"github.com/campushack/portal/internal/service"
	"github.com/campushack/portal/pkg/response"
	"github.com/campushack/portal/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	res, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input service.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	res, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Verify(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	account, err := h.authService.Verify(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": account})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var input service.ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), input.Email); err != nil {
		response.Error(c, err)
		return
	}

	// Same body whether or not the email exists.
	c.JSON(http.StatusOK, gin.H{"success": true, "data": "If the email exists, a reset link has been sent"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var input service.ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	res, err := h.authService.ResetPassword(c.Request.Context(), c.Param("resettoken"), input.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": res.Token, "user": res.User})
}
