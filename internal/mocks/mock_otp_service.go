package mocks

import (
	"context"
	"sync"

	"github.com/Sasmit28/CivicApp/domain"
)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	SendFunc   func(ctx context.Context, phone string) error
	VerifyFunc func(ctx context.Context, phone, code string) (bool, error)

	mu        sync.Mutex
	SendCalls []string
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Send records the phone number; default behavior succeeds
func (m *MockOTPService) Send(ctx context.Context, phone string) error {
	m.mu.Lock()
	m.SendCalls = append(m.SendCalls, phone)
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(ctx, phone)
	}
	return nil
}

// Verify verifies an OTP code for the given phone number
func (m *MockOTPService) Verify(ctx context.Context, phone, code string) (bool, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, phone, code)
	}
	// Default behavior: accept "123456" as valid OTP
	return code == "123456", nil
}

// SendCount returns how many codes were sent
func (m *MockOTPService) SendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendCalls)
}

// Compile-time interface compliance verification
var _ domain.OTPService = (*MockOTPService)(nil)
