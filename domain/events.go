package domain

import (
	"time"
)

// Event subjects
const (
	SubjectSessionCreated  = "civic.session.created"
	SubjectSessionEnded    = "civic.session.ended"
	SubjectOTPRequested    = "civic.otp.requested"
	SubjectReportSubmitted = "civic.report.submitted"
)

// EventType defines the type of domain event
type EventType string

const (
	SessionCreatedEvent  EventType = "SESSION_CREATED"
	SessionEndedEvent    EventType = "SESSION_ENDED"
	OTPRequestedEvent    EventType = "OTP_REQUESTED"
	ReportSubmittedEvent EventType = "REPORT_SUBMITTED"
)

// Event represents a business event that occurred in the system
type Event struct {
	EventType EventType              `json:"event_type"`
	DeviceID  string                 `json:"device_id,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	Phone     string                 `json:"phone,omitempty"`
	ReportID  string                 `json:"report_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent creates a new event with common fields populated
func NewEvent(eventType EventType) *Event {
	return &Event{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]interface{}),
	}
}

// WithDevice sets the device id
func (e *Event) WithDevice(deviceID string) *Event {
	e.DeviceID = deviceID
	return e
}

// WithUser sets the user id
func (e *Event) WithUser(userID string) *Event {
	e.UserID = userID
	return e
}

// WithPhone sets the phone field
func (e *Event) WithPhone(phone string) *Event {
	e.Phone = phone
	return e
}

// WithReport sets the report id
func (e *Event) WithReport(reportID string) *Event {
	e.ReportID = reportID
	return e
}

// WithMetadata adds metadata to the event
func (e *Event) WithMetadata(key string, value interface{}) *Event {
	e.Metadata[key] = value
	return e
}
