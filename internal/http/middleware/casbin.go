package middleware

import (
	"net/http"

	"github.com/Sasmit28/CivicApp/domain"
	"github.com/gin-gonic/gin"
)

// CasbinMiddleware authorizes the request path and method for the caller's role
type CasbinMiddleware interface {
	Enforce() gin.HandlerFunc
}

// CasbinMW checks role permissions through the policy service
type CasbinMW struct {
	policies domain.PolicyService
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(policies domain.PolicyService) *CasbinMW {
	return &CasbinMW{policies: policies}
}

// Enforce returns the casbin authorization middleware
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		_, userExists := c.Get("user_id")
		role, roleExists := c.Get("user_role")
		if !userExists || !roleExists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID or role not found in token"})
			c.Abort()
			return
		}

		// Convert role to Casbin format (prefix with "role_")
		casbinRole := "role_" + role.(string)
		allowed, err := mw.policies.CheckPermission(casbinRole, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authorization check failed"})
			c.Abort()
			return
		}

		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access Denied"})
			c.Abort()
			return
		}

		c.Next()
	})
}

var _ CasbinMiddleware = (*CasbinMW)(nil)
