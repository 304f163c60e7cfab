package domain

import (
	"context"
	"io"
)

// KeyValueStore is the durable per-device storage holding the session record
type KeyValueStore interface {
	// Get returns ok=false when the key is absent
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// OTPService issues and checks one-time codes for a phone number
type OTPService interface {
	Send(ctx context.Context, phone string) error
	Verify(ctx context.Context, phone, code string) (bool, error)
}

// CodeHasher protects OTP codes at rest
type CodeHasher interface {
	Hash(code string) (string, error)
	Verify(hashed, code string) bool
}

// NotificationService defines notification operations
type NotificationService interface {
	SendSMS(to, message string) error
}

// CitizenRepository defines citizen directory access
type CitizenRepository interface {
	Create(ctx context.Context, citizen *Citizen) error
	FindByPhone(ctx context.Context, phone string) (*Citizen, error)
	FindByID(ctx context.Context, id string) (*Citizen, error)
}

// ReportRepository persists submitted reports
type ReportRepository interface {
	Save(ctx context.Context, report *Report) error
	List(ctx context.Context) ([]Report, error)
}

// Geolocator is the device location capability
type Geolocator interface {
	RequestPermission(ctx context.Context) (bool, error)
	CurrentFix(ctx context.Context) (Coordinates, error)
}

// ReverseGeocoder turns coordinates into address candidates
type ReverseGeocoder interface {
	Resolve(ctx context.Context, at Coordinates) ([]Placemark, error)
}

// Camera is the device capture capability. Capture returns "" when the user cancels.
type Camera interface {
	RequestPermission(ctx context.Context) (bool, error)
	Capture(ctx context.Context) (string, error)
}

// PhotoStore keeps captured images and returns an opaque reference
type PhotoStore interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

// EventPublisher fans domain events out to other services
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event *Event) error
}

// TokenService issues bearer tokens for authenticated devices
type TokenService interface {
	GenerateAccessToken(session *Session, deviceID, role string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// PolicyService defines authorization policy operations
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}
