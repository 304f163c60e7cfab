package mocks

import (
	"context"
	"sync"

	"github.com/Sasmit28/CivicApp/domain"
)

// PublishedEvent records one call to MockEventPublisher.Publish
type PublishedEvent struct {
	Subject string
	Event   *domain.Event
}

// MockEventPublisher implements domain.EventPublisher interface for testing
type MockEventPublisher struct {
	PublishFunc func(ctx context.Context, subject string, event *domain.Event) error

	mu     sync.Mutex
	events []PublishedEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, event *domain.Event) error {
	m.mu.Lock()
	m.events = append(m.events, PublishedEvent{Subject: subject, Event: event})
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, subject, event)
	}
	return nil
}

// Subjects lists published subjects in order (test helper)
func (m *MockEventPublisher) Subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Subject)
	}
	return out
}

// Events returns a copy of everything published (test helper)
func (m *MockEventPublisher) Events() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishedEvent(nil), m.events...)
}

// Compile-time interface compliance verification
var _ domain.EventPublisher = (*MockEventPublisher)(nil)
