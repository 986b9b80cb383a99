package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/middleware"
	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorMeta tags mutating responses with the authenticated user so audit
// trails in clients can show who performed the change.
func actorMeta(c *gin.Context) map[string]interface{} {
	claims := claimsFromContext(c)
	if claims == nil {
		return nil
	}
	return map[string]interface{}{
		"performed_by": claims.FullName,
		"user_id":      claims.UserID,
	}
}
