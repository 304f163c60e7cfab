package mocks

import (
	"context"
	"sync"

	"github.com/Sasmit28/CivicApp/domain"
)

// MockCitizenRepository implements domain.CitizenRepository interface for testing.
// Without Func overrides it behaves as an in-memory directory.
type MockCitizenRepository struct {
	CreateFunc      func(ctx context.Context, citizen *domain.Citizen) error
	FindByPhoneFunc func(ctx context.Context, phone string) (*domain.Citizen, error)
	FindByIDFunc    func(ctx context.Context, id string) (*domain.Citizen, error)

	mu       sync.Mutex
	citizens map[string]*domain.Citizen
}

// NewMockCitizenRepository creates a new MockCitizenRepository with default behaviors
func NewMockCitizenRepository() *MockCitizenRepository {
	return &MockCitizenRepository{citizens: make(map[string]*domain.Citizen)}
}

// Create stores the citizen
func (m *MockCitizenRepository) Create(ctx context.Context, citizen *domain.Citizen) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, citizen)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *citizen
	m.citizens[c.ID] = &c
	return nil
}

// FindByPhone finds a citizen by phone number
func (m *MockCitizenRepository) FindByPhone(ctx context.Context, phone string) (*domain.Citizen, error) {
	if m.FindByPhoneFunc != nil {
		return m.FindByPhoneFunc(ctx, phone)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.citizens {
		if c.PhoneNumber == phone {
			out := *c
			return &out, nil
		}
	}
	return nil, domain.ErrCitizenNotFound
}

// FindByID finds a citizen by ID
func (m *MockCitizenRepository) FindByID(ctx context.Context, id string) (*domain.Citizen, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.citizens[id]; ok {
		out := *c
		return &out, nil
	}
	return nil, domain.ErrCitizenNotFound
}

// AddCitizen seeds a citizen (test helper)
func (m *MockCitizenRepository) AddCitizen(c domain.Citizen) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.citizens[c.ID] = &c
}

// Compile-time interface compliance verification
var _ domain.CitizenRepository = (*MockCitizenRepository)(nil)
