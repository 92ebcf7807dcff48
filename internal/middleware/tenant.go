package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appErrors "github.com/elimu-sms/elimu-api/pkg/errors"
	"github.com/elimu-sms/elimu-api/pkg/response"
)

const (
	// SchoolIDKey is the gin context key holding the authenticated school scope.
	SchoolIDKey = "school_id"
	// UserIDKey is the gin context key holding the acting user.
	UserIDKey = "user_id"
)

// Tenant resolves the school scope for every request and rejects requests
// without a valid one. Identity arrives via headers from the gateway that
// terminates authentication.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		schoolID := c.GetHeader("X-School-ID")
		if schoolID == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "no school scope on request"))
			c.Abort()
			return
		}
		if _, err := uuid.Parse(schoolID); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "invalid school id"))
			c.Abort()
			return
		}
		c.Set(SchoolIDKey, schoolID)

		if userID := c.GetHeader("X-User-ID"); userID != "" {
			if _, err := uuid.Parse(userID); err != nil {
				response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "invalid user id"))
				c.Abort()
				return
			}
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

// SchoolID reads the tenant scope the middleware stored on the context.
func SchoolID(c *gin.Context) string {
	return c.GetString(SchoolIDKey)
}

// UserID reads the acting user id, empty when the gateway sent none.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
