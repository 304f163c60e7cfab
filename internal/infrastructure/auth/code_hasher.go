package auth

import (
	"github.com/Sasmit28/CivicApp/domain"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher implements domain.CodeHasher
type BcryptHasher struct {
	cost int
}

// NewCodeHasher creates a bcrypt hasher; a cost outside bcrypt's range uses the default
func NewCodeHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash implements domain.CodeHasher
func (h *BcryptHasher) Hash(code string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(code), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// Verify implements domain.CodeHasher
func (h *BcryptHasher) Verify(hashed, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(code)) == nil
}

var _ domain.CodeHasher = (*BcryptHasher)(nil)
