package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Sasmit28/CivicApp/domain"
	"github.com/gin-gonic/gin"
)

// authenticate checks the bearer token against the device and its active
// session. On failure it returns the message to send with a 401.
func authenticate(c *gin.Context, tokenSvc domain.TokenService, sessions SessionLookup) (*domain.TokenClaims, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, "Authorization header required"
	}

	tokenParts := strings.SplitN(authHeader, " ", 2)
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return nil, "Invalid authorization header format"
	}

	claims, err := tokenSvc.ValidateAccessToken(tokenParts[1])
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenExpired):
			return nil, "Token expired"
		case errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrTokenMalformed):
			return nil, "Invalid token"
		default:
			return nil, "Token validation failed"
		}
	}

	// tokens are bound to the device that logged in
	deviceID := DeviceFromContext(c)
	if deviceID == "" || claims.DeviceID != deviceID {
		return nil, "Token issued for another device"
	}

	// a logout on the device invalidates its tokens
	session := sessions.ActiveSession(c.Request.Context(), deviceID)
	if session == nil {
		return nil, "Session invalid or expired"
	}
	if session.ID != claims.UserID {
		return nil, "Session user mismatch"
	}
	return claims, ""
}

// AuthMiddleware creates authentication middleware. It must run after DeviceID.
func AuthMiddleware(tokenSvc domain.TokenService, sessions SessionLookup) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		claims, msg := authenticate(c, tokenSvc, sessions)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)

		c.Next()
	})
}

// OptionalAuthMiddleware sets user_id and user_role when the request carries a
// valid token for the device, and lets every request through.
func OptionalAuthMiddleware(tokenSvc domain.TokenService, sessions SessionLookup) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		if claims, _ := authenticate(c, tokenSvc, sessions); claims != nil {
			c.Set("user_id", claims.UserID)
			c.Set("user_role", claims.Role)
		}
		c.Next()
	})
}
