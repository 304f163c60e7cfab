package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Sasmit28/CivicApp/domain"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSPublisher implements domain.EventPublisher on a NATS connection
type NATSPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// NewNATSPublisher connects to the NATS server at url
func NewNATSPublisher(url string, logger *zap.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := nats.Connect(url, nats.Name("civicsvc"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, logger: logger}, nil
}

// Publish implements domain.EventPublisher
func (p *NATSPublisher) Publish(ctx context.Context, subject string, event *domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	p.logger.Debug("publishing event", zap.String("subject", subject), zap.ByteString("data", payload))

	return p.conn.Publish(subject, payload)
}

// Close drains pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

var _ domain.EventPublisher = (*NATSPublisher)(nil)
