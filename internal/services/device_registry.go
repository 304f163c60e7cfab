package services

import (
	"context"
	"sync"
	"time"

	"github.com/Sasmit28/CivicApp/domain"
	"go.uber.org/zap"
)

// StoreFactory returns the durable storage of one device
type StoreFactory func(deviceID string) domain.KeyValueStore

// DefaultDeviceIdleTimeout is how long an unused device stays in memory.
// It outlives the OTP TTL so an evicted challenge has already expired.
const DefaultDeviceIdleTimeout = 15 * time.Minute

type deviceEntry struct {
	auth     *SessionAuthenticator
	lastSeen time.Time
}

// DeviceRegistry keeps one SessionAuthenticator per device. An authenticator
// restores its persisted session once, when it is first requested. Devices
// idle for longer than the idle timeout are dropped by Sweep; the next
// request restores them from storage again.
type DeviceRegistry struct {
	mu      sync.Mutex
	devices map[string]*deviceEntry

	stores      StoreFactory
	otpSvc      domain.OTPService
	citizens    domain.CitizenRepository
	publisher   domain.EventPublisher
	clock       Clock
	cfg         AuthenticatorConfig
	logger      *zap.Logger
	idleTimeout time.Duration
	now         func() time.Time
}

// NewDeviceRegistry creates an empty registry
func NewDeviceRegistry(
	stores StoreFactory,
	otpSvc domain.OTPService,
	citizens domain.CitizenRepository,
	publisher domain.EventPublisher,
	clock Clock,
	cfg AuthenticatorConfig,
	logger *zap.Logger,
) *DeviceRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceRegistry{
		devices:     make(map[string]*deviceEntry),
		stores:      stores,
		otpSvc:      otpSvc,
		citizens:    citizens,
		publisher:   publisher,
		clock:       clock,
		cfg:         cfg,
		logger:      logger,
		idleTimeout: DefaultDeviceIdleTimeout,
		now:         time.Now,
	}
}

// SetIdleTimeout changes how long an unused device is kept; d <= 0 is ignored
func (r *DeviceRegistry) SetIdleTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	r.mu.Lock()
	r.idleTimeout = d
	r.mu.Unlock()
}

// Authenticator returns the device's authenticator, creating and restoring it on first use
func (r *DeviceRegistry) Authenticator(ctx context.Context, deviceID string) *SessionAuthenticator {
	if a := r.lookup(deviceID); a != nil {
		return a
	}

	// storage is read without holding the registry lock
	a := NewSessionAuthenticator(deviceID, r.stores(deviceID), r.otpSvc, r.citizens, r.publisher, r.clock, r.cfg, r.logger)
	restored := a.RestoreSession(ctx)

	r.mu.Lock()
	if e, ok := r.devices[deviceID]; ok {
		e.lastSeen = r.now()
		r.mu.Unlock()
		a.Close()
		return e.auth
	}
	r.devices[deviceID] = &deviceEntry{auth: a, lastSeen: r.now()}
	r.mu.Unlock()

	if restored != nil {
		r.logger.Info("session restored", zap.String("device_id", deviceID), zap.String("user_id", restored.ID))
	}
	return a
}

func (r *DeviceRegistry) lookup(deviceID string) *SessionAuthenticator {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.devices[deviceID]
	if !ok {
		return nil
	}
	e.lastSeen = r.now()
	return e.auth
}

// Len returns the number of devices held in memory
func (r *DeviceRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}

// Sweep releases every device idle for at least the idle timeout and
// returns how many were released.
func (r *DeviceRegistry) Sweep() int {
	r.mu.Lock()
	cutoff := r.now().Add(-r.idleTimeout)
	var idle []*SessionAuthenticator
	for id, e := range r.devices {
		if !e.lastSeen.After(cutoff) {
			idle = append(idle, e.auth)
			delete(r.devices, id)
		}
	}
	r.mu.Unlock()

	for _, a := range idle {
		a.Close()
	}
	if len(idle) > 0 {
		r.logger.Debug("released idle devices", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// RunSweeper calls Sweep every interval until ctx is done
func (r *DeviceRegistry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// ActiveSession returns the device's session, or nil when it is not authenticated
func (r *DeviceRegistry) ActiveSession(ctx context.Context, deviceID string) *domain.Session {
	return r.Authenticator(ctx, deviceID).Session()
}

// Release closes and forgets a device's authenticator
func (r *DeviceRegistry) Release(deviceID string) {
	r.mu.Lock()
	e, ok := r.devices[deviceID]
	delete(r.devices, deviceID)
	r.mu.Unlock()
	if ok {
		e.auth.Close()
	}
}

// Close releases every device
func (r *DeviceRegistry) Close() {
	r.mu.Lock()
	devices := r.devices
	r.devices = make(map[string]*deviceEntry)
	r.mu.Unlock()
	for _, e := range devices {
		e.auth.Close()
	}
}
