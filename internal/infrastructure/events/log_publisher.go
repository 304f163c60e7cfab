package events

import (
	"context"

	"github.com/Sasmit28/CivicApp/domain"
	"go.uber.org/zap"
)

// LogPublisher writes events to the log; used when no NATS url is configured
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, subject string, event *domain.Event) error {
	p.logger.Info("event",
		zap.String("subject", subject),
		zap.String("event_type", string(event.EventType)),
		zap.String("device_id", event.DeviceID),
		zap.String("user_id", event.UserID),
		zap.String("report_id", event.ReportID))
	return nil
}

var _ domain.EventPublisher = (*LogPublisher)(nil)
