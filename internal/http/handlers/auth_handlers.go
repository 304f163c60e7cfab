package handlers

import (
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/Sasmit28/CivicApp/domain"
	"github.com/Sasmit28/CivicApp/internal/http/middleware"
	"github.com/Sasmit28/CivicApp/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandlers exposes the per-device login flow
type AuthHandlers struct {
	registry *services.DeviceRegistry
	tokenSvc domain.TokenService
	citizens domain.CitizenRepository
	logger   *zap.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(registry *services.DeviceRegistry, tokenSvc domain.TokenService, citizens domain.CitizenRepository, logger *zap.Logger) *AuthHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandlers{
		registry: registry,
		tokenSvc: tokenSvc,
		citizens: citizens,
		logger:   logger,
	}
}

// PhoneRequest represents the phone entry form
type PhoneRequest struct {
	Phone string `json:"phone"`
}

// DigitRequest sets one OTP box. An empty digit clears the box.
type DigitRequest struct {
	Position *int   `json:"position" binding:"required"`
	Digit    string `json:"digit"`
}

// VerifyRequest optionally carries the whole code
type VerifyRequest struct {
	Code string `json:"code"`
}

func (h *AuthHandlers) authenticator(c *gin.Context) *services.SessionAuthenticator {
	return h.registry.Authenticator(c.Request.Context(), middleware.DeviceFromContext(c))
}

// SubmitPhone handles POST /auth/phone
func (h *AuthHandlers) SubmitPhone(c *gin.Context) {
	var req PhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	challenge, err := h.authenticator(c).SubmitPhoneNumber(c.Request.Context(), req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, challenge)
}

// EnterDigit handles POST /auth/otp/digit
func (h *AuthHandlers) EnterDigit(c *gin.Context) {
	var req DigitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var digit rune
	if req.Digit != "" {
		if utf8.RuneCountInString(req.Digit) != 1 {
			respondError(c, &domain.ValidationError{Field: "digit", Err: domain.ErrInvalidDigit})
			return
		}
		digit, _ = utf8.DecodeRuneInString(req.Digit)
	}

	auth := h.authenticator(c)
	session, err := auth.EnterDigit(c.Request.Context(), *req.Position, digit)
	if err != nil {
		respondError(c, err)
		return
	}
	if session != nil {
		h.respondSession(c, session)
		return
	}
	respondData(c, http.StatusOK, gin.H{"state": auth.State(), "challenge": auth.Challenge()})
}

// Verify handles POST /auth/otp/verify
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req VerifyRequest
	// the body is optional
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.authenticator(c).Verify(c.Request.Context(), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondSession(c, session)
}

// Resend handles POST /auth/otp/resend
func (h *AuthHandlers) Resend(c *gin.Context) {
	challenge, err := h.authenticator(c).ResendCode(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, challenge)
}

// Challenge handles GET /auth/otp
func (h *AuthHandlers) Challenge(c *gin.Context) {
	challenge := h.authenticator(c).Challenge()
	if challenge == nil {
		respondError(c, domain.ErrNoActiveChallenge)
		return
	}
	respondData(c, http.StatusOK, challenge)
}

// Session handles GET /auth/session. Only a caller whose token already proves
// the device's session gets it back with a fresh token; everyone else sees
// the login state alone.
func (h *AuthHandlers) Session(c *gin.Context) {
	auth := h.authenticator(c)
	session := auth.Session()
	if session == nil || c.GetString("user_id") != session.ID {
		respondData(c, http.StatusOK, gin.H{"authenticated": false, "state": auth.State()})
		return
	}
	h.respondSession(c, session)
}

// Logout handles POST /auth/logout
func (h *AuthHandlers) Logout(c *gin.Context) {
	if err := h.authenticator(c).Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandlers) respondSession(c *gin.Context, session *domain.Session) {
	role := services.RoleCitizen
	if h.citizens != nil {
		citizen, err := h.citizens.FindByID(c.Request.Context(), session.ID)
		switch {
		case err == nil && citizen.Role != "":
			role = citizen.Role
		case err != nil && !errors.Is(err, domain.ErrCitizenNotFound):
			h.logger.Warn("citizen lookup failed, issuing citizen role", zap.String("user_id", session.ID), zap.Error(err))
		}
	}

	token, err := h.tokenSvc.GenerateAccessToken(session, middleware.DeviceFromContext(c), role)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"authenticated": true,
		"session":       session,
		"access_token":  token,
		"token_type":    "Bearer",
		"role":          role,
	})
}
