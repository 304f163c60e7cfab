package mocks

import (
	"context"
	"sync"

	"github.com/Sasmit28/CivicApp/domain"
)

// MockReportRepository implements domain.ReportRepository interface for testing
type MockReportRepository struct {
	SaveFunc func(ctx context.Context, report *domain.Report) error
	ListFunc func(ctx context.Context) ([]domain.Report, error)

	mu      sync.Mutex
	Reports []domain.Report
}

func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{}
}

func (m *MockReportRepository) Save(ctx context.Context, report *domain.Report) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, report)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reports = append(m.Reports, *report)
	return nil
}

func (m *MockReportRepository) List(ctx context.Context) ([]domain.Report, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Report(nil), m.Reports...), nil
}

// Compile-time interface compliance verification
var _ domain.ReportRepository = (*MockReportRepository)(nil)
