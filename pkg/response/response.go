package response

import (
	"log"
	"net/http"

	"github.com/campushack/portal/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetAccountID retrieves the authenticated account ID from the context
func GetAccountID(c *gin.Context) (uuid.UUID, error) {
	idStr, exists := c.Get("account_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	accountID, err := uuid.Parse(idStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return accountID, nil
}

// Error standardized error response
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, gin.H{"message": err.Error()})
}
