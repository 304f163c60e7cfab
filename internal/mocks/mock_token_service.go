package mocks

import (
	"strings"

	"github.com/Sasmit28/CivicApp/domain"
)

// MockTokenService implements domain.TokenService interface for testing
type MockTokenService struct {
	GenerateAccessTokenFunc func(session *domain.Session, deviceID, role string) (string, error)
	ValidateAccessTokenFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// GenerateAccessToken returns "token:<user>:<device>:<role>" by default
func (m *MockTokenService) GenerateAccessToken(session *domain.Session, deviceID, role string) (string, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(session, deviceID, role)
	}
	return "token:" + session.ID + ":" + deviceID + ":" + role, nil
}

// ValidateAccessToken parses tokens produced by the default GenerateAccessToken
func (m *MockTokenService) ValidateAccessToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateAccessTokenFunc != nil {
		return m.ValidateAccessTokenFunc(token)
	}
	parts := strings.Split(token, ":")
	if len(parts) != 4 || parts[0] != "token" {
		return nil, domain.ErrTokenInvalid
	}
	return &domain.TokenClaims{UserID: parts[1], DeviceID: parts[2], Role: parts[3]}, nil
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
