package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Sasmit28/CivicApp/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthenticatorConfig holds the tunables of the login flow
type AuthenticatorConfig struct {
	CountryCode        string
	CountdownSeconds   int
	StorageKey         string
	DefaultDisplayName string
}

// DefaultAuthenticatorConfig returns the production login settings
func DefaultAuthenticatorConfig() AuthenticatorConfig {
	return AuthenticatorConfig{
		CountryCode:        domain.DefaultCountryCode,
		CountdownSeconds:   domain.OTPCountdownSeconds,
		StorageKey:         domain.SessionStorageKey,
		DefaultDisplayName: "Citizen",
	}
}

type challenge struct {
	phone    string
	digits   [domain.OTPCodeLength]string
	issuedAt time.Time
}

func (c *challenge) complete() bool {
	for _, d := range c.digits {
		if d == "" {
			return false
		}
	}
	return true
}

func (c *challenge) code() string {
	return strings.Join(c.digits[:], "")
}

// SessionAuthenticator drives one device through
// Unauthenticated -> PhoneEntered -> OtpPending -> Authenticated.
// It owns the device's OTP countdown and its persisted session record.
type SessionAuthenticator struct {
	mu sync.Mutex

	deviceID  string
	store     domain.KeyValueStore
	otpSvc    domain.OTPService
	citizens  domain.CitizenRepository
	publisher domain.EventPublisher
	clock     Clock
	cfg       AuthenticatorConfig
	logger    *zap.Logger
	now       func() time.Time

	state     domain.AuthState
	challenge *challenge
	countdown *Countdown
	session   *domain.Session
}

// NewSessionAuthenticator creates an authenticator in the Unauthenticated state.
// citizens and publisher are optional. A nil clock disables autonomous ticking;
// the owner then drives the countdown through Tick.
func NewSessionAuthenticator(
	deviceID string,
	store domain.KeyValueStore,
	otpSvc domain.OTPService,
	citizens domain.CitizenRepository,
	publisher domain.EventPublisher,
	clock Clock,
	cfg AuthenticatorConfig,
	logger *zap.Logger,
) *SessionAuthenticator {
	if cfg.CountdownSeconds <= 0 {
		cfg.CountdownSeconds = domain.OTPCountdownSeconds
	}
	if cfg.StorageKey == "" {
		cfg.StorageKey = domain.SessionStorageKey
	}
	if cfg.DefaultDisplayName == "" {
		cfg.DefaultDisplayName = "Citizen"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionAuthenticator{
		deviceID:  deviceID,
		store:     store,
		otpSvc:    otpSvc,
		citizens:  citizens,
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
		logger:    logger.With(zap.String("device_id", deviceID)),
		now:       time.Now,
		state:     domain.StateUnauthenticated,
	}
}

// State returns the current login state
func (a *SessionAuthenticator) State() domain.AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Session returns a copy of the active session, or nil
func (a *SessionAuthenticator) Session() *domain.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil
	}
	s := *a.session
	return &s
}

// Challenge returns a snapshot of the pending challenge, or nil
func (a *SessionAuthenticator) Challenge() *domain.OTPChallenge {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// SubmitPhoneNumber validates a 10-digit mobile number, sends a code and
// opens a fresh challenge.
func (a *SessionAuthenticator) SubmitPhoneNumber(ctx context.Context, raw string) (*domain.OTPChallenge, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == domain.StateAuthenticated {
		return nil, &domain.AuthError{Op: "submit phone", Err: domain.ErrAlreadyAuthenticated}
	}

	// a new submission abandons whatever challenge was open
	a.dropChallengeLocked()
	a.state = domain.StatePhoneEntered

	number := strings.TrimSpace(raw)
	if !domain.IsValidMobileNumber(number) {
		a.logger.Info("rejected phone number", zap.Int("length", len(number)))
		return nil, &domain.ValidationError{Field: "phoneNumber", Err: domain.ErrInvalidPhoneFormat}
	}

	phone := a.cfg.CountryCode + number
	if err := a.otpSvc.Send(ctx, phone); err != nil {
		return nil, fmt.Errorf("failed to send otp: %w", err)
	}

	a.openChallengeLocked(phone)
	a.state = domain.StateOTPPending
	a.logger.Info("otp challenge opened", zap.String("phone", phone))
	a.publish(ctx, domain.SubjectOTPRequested, domain.NewEvent(domain.OTPRequestedEvent).WithPhone(phone))

	return a.snapshotLocked(), nil
}

// EnterDigit stores one digit (digit 0 clears the position). Filling the last
// position while all others are set triggers Verify; the resulting session is
// returned in that case.
func (a *SessionAuthenticator) EnterDigit(ctx context.Context, position int, digit rune) (*domain.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != domain.StateOTPPending || a.challenge == nil {
		return nil, &domain.AuthError{Op: "enter digit", Err: domain.ErrNoActiveChallenge}
	}
	if position < 0 || position >= domain.OTPCodeLength {
		return nil, &domain.ValidationError{Field: "position", Err: domain.ErrInvalidDigitPosition}
	}

	value := ""
	if digit != 0 {
		if digit < '0' || digit > '9' {
			return nil, &domain.ValidationError{Field: "digit", Err: domain.ErrInvalidDigit}
		}
		value = string(digit)
	}
	a.challenge.digits[position] = value

	if position == domain.OTPCodeLength-1 && a.challenge.complete() {
		return a.verifyLocked(ctx, "")
	}
	return nil, nil
}

// Verify checks code, or the stored digits when code is empty.
func (a *SessionAuthenticator) Verify(ctx context.Context, code string) (*domain.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.verifyLocked(ctx, code)
}

func (a *SessionAuthenticator) verifyLocked(ctx context.Context, code string) (*domain.Session, error) {
	if a.state != domain.StateOTPPending || a.challenge == nil {
		return nil, &domain.AuthError{Op: "verify", Err: domain.ErrNoActiveChallenge}
	}

	if code == "" {
		if !a.challenge.complete() {
			return nil, &domain.AuthError{Op: "verify", Err: domain.ErrIncompleteCode}
		}
		code = a.challenge.code()
	} else if !domain.IsCompleteCode(code) {
		return nil, &domain.AuthError{Op: "verify", Err: domain.ErrIncompleteCode}
	}

	phone := a.challenge.phone
	ok, err := a.otpSvc.Verify(ctx, phone, code)
	if err != nil {
		a.logger.Info("otp verification failed", zap.Error(err))
		return nil, &domain.AuthError{Op: "verify", Err: err}
	}
	if !ok {
		a.logger.Info("otp verification rejected")
		return nil, &domain.AuthError{Op: "verify", Err: domain.ErrOTPInvalid}
	}

	session, err := a.buildSession(ctx, phone)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := a.store.Set(ctx, a.cfg.StorageKey, string(payload)); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	a.dropChallengeLocked()
	a.session = session
	a.state = domain.StateAuthenticated
	a.logger.Info("session created", zap.String("user_id", session.ID))
	a.publish(ctx, domain.SubjectSessionCreated,
		domain.NewEvent(domain.SessionCreatedEvent).WithUser(session.ID).WithPhone(phone))

	s := *session
	return &s, nil
}

func (a *SessionAuthenticator) buildSession(ctx context.Context, phone string) (*domain.Session, error) {
	session := &domain.Session{
		PhoneNumber: phone,
		Name:        a.cfg.DefaultDisplayName,
		CreatedAt:   a.now().UTC(),
	}
	if a.citizens == nil {
		session.ID = uuid.NewString()
		return session, nil
	}

	citizen, err := a.citizens.FindByPhone(ctx, phone)
	if errors.Is(err, domain.ErrCitizenNotFound) {
		citizen = &domain.Citizen{
			ID:          uuid.NewString(),
			PhoneNumber: phone,
			DisplayName: a.cfg.DefaultDisplayName,
			Role:        RoleCitizen,
		}
		if err := a.citizens.Create(ctx, citizen); err != nil {
			return nil, fmt.Errorf("failed to register citizen: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up citizen: %w", err)
	}

	session.ID = citizen.ID
	if citizen.DisplayName != "" {
		session.Name = citizen.DisplayName
	}
	return session, nil
}

// ResendCode issues a new code once the countdown has reached zero. Digits
// are cleared and the countdown restarts in the same critical section.
func (a *SessionAuthenticator) ResendCode(ctx context.Context) (*domain.OTPChallenge, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != domain.StateOTPPending || a.challenge == nil {
		return nil, &domain.AuthError{Op: "resend", Err: domain.ErrNoActiveChallenge}
	}
	if !a.countdown.Expired() {
		return nil, &domain.AuthError{Op: "resend", Err: domain.ErrCooldownActive}
	}

	phone := a.challenge.phone
	if err := a.otpSvc.Send(ctx, phone); err != nil {
		return nil, fmt.Errorf("failed to resend otp: %w", err)
	}

	a.dropChallengeLocked()
	a.openChallengeLocked(phone)
	a.logger.Info("otp resent", zap.String("phone", phone))
	a.publish(ctx, domain.SubjectOTPRequested,
		domain.NewEvent(domain.OTPRequestedEvent).WithPhone(phone).WithMetadata("resend", true))

	return a.snapshotLocked(), nil
}

// Tick advances the countdown by one second and returns the seconds left
func (a *SessionAuthenticator) Tick() int {
	a.mu.Lock()
	cd := a.countdown
	a.mu.Unlock()
	if cd == nil {
		return 0
	}
	return cd.Tick()
}

// RestoreSession loads the persisted session. Missing or unreadable records
// leave the device Unauthenticated; unreadable ones are cleared.
func (a *SessionAuthenticator) RestoreSession(ctx context.Context) *domain.Session {
	a.mu.Lock()
	defer a.mu.Unlock()

	raw, ok, err := a.store.Get(ctx, a.cfg.StorageKey)
	if err != nil {
		a.logger.Warn("session storage unreadable", zap.Error(err))
		a.resetLocked()
		return nil
	}
	if !ok || raw == "" {
		a.resetLocked()
		return nil
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil || session.ID == "" {
		a.logger.Warn("discarding corrupt session record", zap.Error(err))
		if rmErr := a.store.Remove(ctx, a.cfg.StorageKey); rmErr != nil {
			a.logger.Warn("failed to clear corrupt session record", zap.Error(rmErr))
		}
		a.resetLocked()
		return nil
	}

	a.dropChallengeLocked()
	a.session = &session
	a.state = domain.StateAuthenticated
	s := session
	return &s
}

// Logout removes the persisted session and returns to Unauthenticated
func (a *SessionAuthenticator) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Remove(ctx, a.cfg.StorageKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	userID := ""
	if a.session != nil {
		userID = a.session.ID
	}
	a.resetLocked()
	a.logger.Info("session ended", zap.String("user_id", userID))
	a.publish(ctx, domain.SubjectSessionEnded, domain.NewEvent(domain.SessionEndedEvent).WithUser(userID))
	return nil
}

// AbandonChallenge discards the pending challenge, as when the OTP screen is left
func (a *SessionAuthenticator) AbandonChallenge() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == domain.StateAuthenticated {
		return
	}
	a.resetLocked()
}

// Close cancels the countdown; the authenticator must not be used afterwards
func (a *SessionAuthenticator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.countdown != nil {
		a.countdown.Cancel()
	}
}

func (a *SessionAuthenticator) openChallengeLocked(phone string) {
	a.challenge = &challenge{phone: phone, issuedAt: a.now().UTC()}
	a.countdown = NewCountdown(a.cfg.CountdownSeconds)
	a.countdown.Start(a.clock)
}

func (a *SessionAuthenticator) dropChallengeLocked() {
	if a.countdown != nil {
		a.countdown.Cancel()
	}
	a.countdown = nil
	a.challenge = nil
}

func (a *SessionAuthenticator) resetLocked() {
	a.dropChallengeLocked()
	a.session = nil
	a.state = domain.StateUnauthenticated
}

func (a *SessionAuthenticator) snapshotLocked() *domain.OTPChallenge {
	if a.challenge == nil {
		return nil
	}
	remaining := 0
	if a.countdown != nil {
		remaining = a.countdown.Remaining()
	}
	digits := make([]string, domain.OTPCodeLength)
	copy(digits, a.challenge.digits[:])
	return &domain.OTPChallenge{
		TargetPhoneNumber: a.challenge.phone,
		DisplayPhone:      domain.FormatPhoneNumber(a.challenge.phone),
		CodeLength:        domain.OTPCodeLength,
		EnteredDigits:     digits,
		SecondsRemaining:  remaining,
		CanResend:         remaining == 0,
		IssuedAt:          a.challenge.issuedAt,
	}
}

func (a *SessionAuthenticator) publish(ctx context.Context, subject string, event *domain.Event) {
	if a.publisher == nil {
		return
	}
	event.WithDevice(a.deviceID)
	if err := a.publisher.Publish(ctx, subject, event); err != nil {
		a.logger.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
