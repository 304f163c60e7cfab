package middleware

import (
	"context"

	"github.com/Sasmit28/CivicApp/domain"
	"github.com/gin-gonic/gin"
)

// SessionLookup returns the active session of a device, or nil
type SessionLookup interface {
	ActiveSession(ctx context.Context, deviceID string) *domain.Session
}

// AuthMW wraps the token service and session lookup for middleware
type AuthMW struct {
	tokenSvc domain.TokenService
	sessions SessionLookup
}

// NewAuthMW creates new auth middleware wrapper
func NewAuthMW(tokenSvc domain.TokenService, sessions SessionLookup) *AuthMW {
	return &AuthMW{
		tokenSvc: tokenSvc,
		sessions: sessions,
	}
}

// WithJWT returns the JWT middleware function
func (mw *AuthMW) WithJWT() gin.HandlerFunc {
	return AuthMiddleware(mw.tokenSvc, mw.sessions)
}

// WithOptionalJWT returns the middleware that identifies callers without requiring a token
func (mw *AuthMW) WithOptionalJWT() gin.HandlerFunc {
	return OptionalAuthMiddleware(mw.tokenSvc, mw.sessions)
}
