package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Sasmit28/CivicApp/domain"
	"github.com/Sasmit28/CivicApp/internal/mocks"
)

type authFixture struct {
	auth      *SessionAuthenticator
	store     *mocks.MockKeyValueStore
	otp       *mocks.MockOTPService
	citizens  *mocks.MockCitizenRepository
	publisher *mocks.MockEventPublisher
}

// newAuthFixture builds an authenticator without a clock; tests drive the countdown with Tick
func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		store:     mocks.NewMockKeyValueStore(),
		otp:       mocks.NewMockOTPService(),
		citizens:  mocks.NewMockCitizenRepository(),
		publisher: mocks.NewMockEventPublisher(),
	}
	f.auth = NewSessionAuthenticator("device-1", f.store, f.otp, f.citizens, f.publisher, nil, DefaultAuthenticatorConfig(), nil)
	t.Cleanup(f.auth.Close)
	return f
}

func (f *authFixture) pending(t *testing.T) {
	t.Helper()
	if _, err := f.auth.SubmitPhoneNumber(context.Background(), "9876543210"); err != nil {
		t.Fatalf("SubmitPhoneNumber() error = %v", err)
	}
}

func (f *authFixture) enterCode(t *testing.T, code string) (*domain.Session, error) {
	t.Helper()
	var (
		session *domain.Session
		err     error
	)
	for i, r := range code {
		session, err = f.auth.EnterDigit(context.Background(), i, r)
	}
	return session, err
}

func TestSessionAuthenticator_SubmitPhoneNumber(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedState domain.AuthState
		expectedErr   error
		expectSend    bool
	}{
		{"valid number", "9876543210", domain.StateOTPPending, nil, true},
		{"surrounding whitespace is trimmed", "  6000000000 ", domain.StateOTPPending, nil, true},
		{"nine digits", "987654321", domain.StatePhoneEntered, domain.ErrInvalidPhoneFormat, false},
		{"eleven digits", "98765432101", domain.StatePhoneEntered, domain.ErrInvalidPhoneFormat, false},
		{"leading five", "5876543210", domain.StatePhoneEntered, domain.ErrInvalidPhoneFormat, false},
		{"letters", "98765abcde", domain.StatePhoneEntered, domain.ErrInvalidPhoneFormat, false},
		{"country code included", "+919876543210", domain.StatePhoneEntered, domain.ErrInvalidPhoneFormat, false},
		{"empty", "", domain.StatePhoneEntered, domain.ErrInvalidPhoneFormat, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)

			challenge, err := f.auth.SubmitPhoneNumber(context.Background(), tt.input)
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("SubmitPhoneNumber() error = %v, want %v", err, tt.expectedErr)
			}
			if got := f.auth.State(); got != tt.expectedState {
				t.Errorf("State() = %s, want %s", got, tt.expectedState)
			}
			if sent := f.otp.SendCount() == 1; sent != tt.expectSend {
				t.Errorf("code sent = %v, want %v", sent, tt.expectSend)
			}

			if tt.expectedErr != nil {
				var vErr *domain.ValidationError
				if !errors.As(err, &vErr) || vErr.Field != "phoneNumber" {
					t.Errorf("expected ValidationError on phoneNumber, got %v", err)
				}
				return
			}

			if challenge.TargetPhoneNumber[:3] != "+91" || len(challenge.TargetPhoneNumber) != 13 {
				t.Errorf("TargetPhoneNumber = %q", challenge.TargetPhoneNumber)
			}
			if challenge.SecondsRemaining != 30 || challenge.CanResend {
				t.Errorf("countdown = %d (canResend %v), want 30 and false", challenge.SecondsRemaining, challenge.CanResend)
			}
			for i, d := range challenge.EnteredDigits {
				if d != "" {
					t.Errorf("digit %d = %q, want empty", i, d)
				}
			}
		})
	}
}

func TestSessionAuthenticator_InvalidResubmitDropsChallenge(t *testing.T) {
	f := newAuthFixture(t)
	f.pending(t)

	if _, err := f.auth.SubmitPhoneNumber(context.Background(), "123"); err == nil {
		t.Fatal("expected validation error")
	}
	if f.auth.Challenge() != nil {
		t.Error("challenge should be discarded after an invalid resubmission")
	}
	if _, err := f.auth.EnterDigit(context.Background(), 0, '1'); !errors.Is(err, domain.ErrNoActiveChallenge) {
		t.Errorf("EnterDigit() error = %v, want ErrNoActiveChallenge", err)
	}
}

func TestSessionAuthenticator_SendFailureLeavesPhoneEntered(t *testing.T) {
	f := newAuthFixture(t)
	f.otp.SendFunc = func(ctx context.Context, phone string) error {
		return errors.New("sms gateway down")
	}

	if _, err := f.auth.SubmitPhoneNumber(context.Background(), "9876543210"); err == nil {
		t.Fatal("expected error")
	}
	if got := f.auth.State(); got != domain.StatePhoneEntered {
		t.Errorf("State() = %s, want %s", got, domain.StatePhoneEntered)
	}
}

func TestSessionAuthenticator_EnterDigit(t *testing.T) {
	t.Run("rejects out of range positions and non digits", func(t *testing.T) {
		f := newAuthFixture(t)
		f.pending(t)

		cases := []struct {
			pos   int
			digit rune
			want  error
		}{
			{-1, '1', domain.ErrInvalidDigitPosition},
			{6, '1', domain.ErrInvalidDigitPosition},
			{2, 'a', domain.ErrInvalidDigit},
			{2, '٣', domain.ErrInvalidDigit},
		}
		for _, c := range cases {
			if _, err := f.auth.EnterDigit(context.Background(), c.pos, c.digit); !errors.Is(err, c.want) {
				t.Errorf("EnterDigit(%d, %q) error = %v, want %v", c.pos, c.digit, err, c.want)
			}
		}
	})

	t.Run("zero rune clears a position", func(t *testing.T) {
		f := newAuthFixture(t)
		f.pending(t)

		f.auth.EnterDigit(context.Background(), 1, '7')
		f.auth.EnterDigit(context.Background(), 1, 0)

		if got := f.auth.Challenge().EnteredDigits[1]; got != "" {
			t.Errorf("digit 1 = %q, want empty", got)
		}
	})

	t.Run("last digit auto verifies exactly once", func(t *testing.T) {
		f := newAuthFixture(t)
		f.pending(t)
		verifyCalls := 0
		f.otp.VerifyFunc = func(ctx context.Context, phone, code string) (bool, error) {
			verifyCalls++
			return code == "123456", nil
		}

		var session *domain.Session
		for i, r := range "123456" {
			var err error
			session, err = f.auth.EnterDigit(context.Background(), i, r)
			if err != nil {
				t.Fatalf("EnterDigit(%d) error = %v", i, err)
			}
			want := 0
			if i == domain.OTPCodeLength-1 {
				want = 1
			}
			if verifyCalls != want {
				t.Fatalf("after digit %d Verify called %d times, want %d", i, verifyCalls, want)
			}
		}
		if session == nil {
			t.Fatal("expected session from auto verification")
		}
		if got := f.auth.State(); got != domain.StateAuthenticated {
			t.Errorf("State() = %s, want %s", got, domain.StateAuthenticated)
		}
	})

	t.Run("last digit with a gap does not verify", func(t *testing.T) {
		f := newAuthFixture(t)
		f.pending(t)
		verifyCalls := 0
		f.otp.VerifyFunc = func(ctx context.Context, phone, code string) (bool, error) {
			verifyCalls++
			return true, nil
		}

		for _, pos := range []int{0, 1, 3, 4, 5} {
			if _, err := f.auth.EnterDigit(context.Background(), pos, '1'); err != nil {
				t.Fatalf("EnterDigit(%d) error = %v", pos, err)
			}
		}
		if verifyCalls != 0 {
			t.Errorf("Verify called %d times, want 0", verifyCalls)
		}
		if got := f.auth.State(); got != domain.StateOTPPending {
			t.Errorf("State() = %s, want %s", got, domain.StateOTPPending)
		}
	})

	t.Run("requires a pending challenge", func(t *testing.T) {
		f := newAuthFixture(t)
		if _, err := f.auth.EnterDigit(context.Background(), 0, '1'); !errors.Is(err, domain.ErrNoActiveChallenge) {
			t.Errorf("EnterDigit() error = %v, want ErrNoActiveChallenge", err)
		}
	})
}

func TestSessionAuthenticator_Verify(t *testing.T) {
	t.Run("incomplete code", func(t *testing.T) {
		f := newAuthFixture(t)
		f.pending(t)
		f.auth.EnterDigit(context.Background(), 0, '1')

		if _, err := f.auth.Verify(context.Background(), ""); !errors.Is(err, domain.ErrIncompleteCode) {
			t.Errorf("Verify() error = %v, want ErrIncompleteCode", err)
		}
		if got := f.auth.State(); got != domain.StateOTPPending {
			t.Errorf("State() = %s, want %s", got, domain.StateOTPPending)
		}
	})

	t.Run("rejected code keeps digits", func(t *testing.T) {
		f := newAuthFixture(t)
		f.pending(t)

		_, err := f.enterCode(t, "654321")
		var authErr *domain.AuthError
		if !errors.As(err, &authErr) || !errors.Is(err, domain.ErrOTPInvalid) {
			t.Fatalf("error = %v, want AuthError wrapping ErrOTPInvalid", err)
		}
		if got := f.auth.Challenge().EnteredDigits; got[0] != "6" || got[5] != "1" {
			t.Errorf("digits = %v, want them preserved", got)
		}
		if got := f.auth.State(); got != domain.StateOTPPending {
			t.Errorf("State() = %s, want %s", got, domain.StateOTPPending)
		}
	})

	t.Run("partial explicit code is incomplete", func(t *testing.T) {
		f := newAuthFixture(t)
		f.pending(t)
		verifyCalls := 0
		f.otp.VerifyFunc = func(ctx context.Context, phone, code string) (bool, error) {
			verifyCalls++
			return code == "123456", nil
		}
		// last box first so the full code is stored without auto verification
		f.auth.EnterDigit(context.Background(), 5, '6')
		for i, r := range "12345" {
			f.auth.EnterDigit(context.Background(), i, r)
		}

		if _, err := f.auth.Verify(context.Background(), "12"); !errors.Is(err, domain.ErrIncompleteCode) {
			t.Fatalf("Verify(\"12\") error = %v, want ErrIncompleteCode", err)
		}
		if verifyCalls != 0 {
			t.Errorf("Verify called %d times, want 0", verifyCalls)
		}
		if _, err := f.auth.Verify(context.Background(), ""); err != nil {
			t.Fatalf("Verify(\"\") with stored digits error = %v", err)
		}
	})

	t.Run("explicit code overrides stored digits", func(t *testing.T) {
		f := newAuthFixture(t)
		f.pending(t)
		f.auth.EnterDigit(context.Background(), 0, '9')

		session, err := f.auth.Verify(context.Background(), "123456")
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if session.PhoneNumber != "+919876543210" {
			t.Errorf("PhoneNumber = %q", session.PhoneNumber)
		}
	})

	t.Run("service error is wrapped", func(t *testing.T) {
		f := newAuthFixture(t)
		f.pending(t)
		f.otp.VerifyFunc = func(ctx context.Context, phone, code string) (bool, error) {
			return false, domain.ErrOTPMaxAttempts
		}

		if _, err := f.auth.Verify(context.Background(), "123456"); !errors.Is(err, domain.ErrOTPMaxAttempts) {
			t.Errorf("Verify() error = %v, want ErrOTPMaxAttempts", err)
		}
	})
}

func TestSessionAuthenticator_SuccessfulLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.pending(t)

	session, err := f.auth.Verify(context.Background(), "123456")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if session.ID == "" {
		t.Error("session ID is empty")
	}
	if session.Name != "Citizen" {
		t.Errorf("Name = %q, want Citizen", session.Name)
	}
	if f.auth.Challenge() != nil {
		t.Error("challenge should be cleared after login")
	}

	raw, ok := f.store.Raw(domain.SessionStorageKey)
	if !ok {
		t.Fatal("session not persisted")
	}
	var stored domain.Session
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("stored session is not JSON: %v", err)
	}
	if stored.ID != session.ID || stored.PhoneNumber != "+919876543210" {
		t.Errorf("stored session = %+v", stored)
	}

	citizen, err := f.citizens.FindByPhone(context.Background(), "+919876543210")
	if err != nil {
		t.Fatalf("citizen not registered: %v", err)
	}
	if citizen.ID != session.ID || citizen.Role != RoleCitizen {
		t.Errorf("citizen = %+v", citizen)
	}

	subjects := f.publisher.Subjects()
	if len(subjects) != 2 || subjects[0] != domain.SubjectOTPRequested || subjects[1] != domain.SubjectSessionCreated {
		t.Errorf("published subjects = %v", subjects)
	}
}

func TestSessionAuthenticator_KnownCitizenKeepsIdentity(t *testing.T) {
	f := newAuthFixture(t)
	f.citizens.AddCitizen(domain.Citizen{ID: "citizen-7", PhoneNumber: "+919876543210", DisplayName: "Asha", Role: RoleAdmin})
	f.pending(t)

	session, err := f.auth.Verify(context.Background(), "123456")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if session.ID != "citizen-7" || session.Name != "Asha" {
		t.Errorf("session = %+v", session)
	}
}

func TestSessionAuthenticator_PersistFailureStaysPending(t *testing.T) {
	f := newAuthFixture(t)
	f.store.SetFunc = func(ctx context.Context, key, value string) error {
		return errors.New("disk full")
	}
	f.pending(t)

	if _, err := f.auth.Verify(context.Background(), "123456"); err == nil {
		t.Fatal("expected error")
	}
	if got := f.auth.State(); got != domain.StateOTPPending {
		t.Errorf("State() = %s, want %s", got, domain.StateOTPPending)
	}
}

func TestSessionAuthenticator_SubmitWhileAuthenticated(t *testing.T) {
	f := newAuthFixture(t)
	f.pending(t)
	f.auth.Verify(context.Background(), "123456")

	if _, err := f.auth.SubmitPhoneNumber(context.Background(), "9876543210"); !errors.Is(err, domain.ErrAlreadyAuthenticated) {
		t.Errorf("error = %v, want ErrAlreadyAuthenticated", err)
	}
}

func TestSessionAuthenticator_ResendCode(t *testing.T) {
	f := newAuthFixture(t)
	f.pending(t)
	f.auth.EnterDigit(context.Background(), 0, '4')

	for i := 0; i < 29; i++ {
		f.auth.Tick()
	}
	if _, err := f.auth.ResendCode(context.Background()); !errors.Is(err, domain.ErrCooldownActive) {
		t.Fatalf("ResendCode() at 1s error = %v, want ErrCooldownActive", err)
	}
	early := f.auth.Challenge()
	if early.EnteredDigits[0] != "4" {
		t.Errorf("early resend changed digits: %v", early.EnteredDigits)
	}
	if early.SecondsRemaining != 1 {
		t.Errorf("SecondsRemaining after early resend = %d, want 1", early.SecondsRemaining)
	}
	if got := f.otp.SendCount(); got != 1 {
		t.Errorf("codes sent after early resend = %d, want 1", got)
	}

	if got := f.auth.Tick(); got != 0 {
		t.Fatalf("Tick() = %d, want 0", got)
	}
	if got := f.auth.Tick(); got != 0 {
		t.Errorf("Tick() past zero = %d, want 0", got)
	}
	if !f.auth.Challenge().CanResend {
		t.Error("CanResend = false at zero")
	}

	challenge, err := f.auth.ResendCode(context.Background())
	if err != nil {
		t.Fatalf("ResendCode() error = %v", err)
	}
	if challenge.SecondsRemaining != 30 {
		t.Errorf("SecondsRemaining = %d, want 30", challenge.SecondsRemaining)
	}
	if challenge.EnteredDigits[0] != "" {
		t.Errorf("digits not cleared: %v", challenge.EnteredDigits)
	}
	if got := f.otp.SendCount(); got != 2 {
		t.Errorf("codes sent = %d, want 2", got)
	}
}

func TestSessionAuthenticator_ResendWithoutChallenge(t *testing.T) {
	f := newAuthFixture(t)
	if _, err := f.auth.ResendCode(context.Background()); !errors.Is(err, domain.ErrNoActiveChallenge) {
		t.Errorf("ResendCode() error = %v, want ErrNoActiveChallenge", err)
	}
}

func TestSessionAuthenticator_RestoreSession(t *testing.T) {
	valid, _ := json.Marshal(domain.Session{ID: "u-1", PhoneNumber: "+919876543210", Name: "Citizen", CreatedAt: time.Now()})

	tests := []struct {
		name          string
		seed          func(*mocks.MockKeyValueStore)
		expectSession bool
		expectRemoved bool
	}{
		{
			name:          "valid record",
			seed:          func(s *mocks.MockKeyValueStore) { s.Put(domain.SessionStorageKey, string(valid)) },
			expectSession: true,
		},
		{
			name: "absent record",
			seed: func(s *mocks.MockKeyValueStore) {},
		},
		{
			name:          "corrupt record is cleared",
			seed:          func(s *mocks.MockKeyValueStore) { s.Put(domain.SessionStorageKey, "{not json") },
			expectRemoved: true,
		},
		{
			name:          "record without id is cleared",
			seed:          func(s *mocks.MockKeyValueStore) { s.Put(domain.SessionStorageKey, `{"phoneNumber":"+919876543210"}`) },
			expectRemoved: true,
		},
		{
			name: "storage failure",
			seed: func(s *mocks.MockKeyValueStore) {
				s.GetFunc = func(ctx context.Context, key string) (string, bool, error) {
					return "", false, errors.New("unreachable")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			tt.seed(f.store)

			session := f.auth.RestoreSession(context.Background())
			if (session != nil) != tt.expectSession {
				t.Fatalf("RestoreSession() = %+v, want session %v", session, tt.expectSession)
			}

			wantState := domain.StateUnauthenticated
			if tt.expectSession {
				wantState = domain.StateAuthenticated
				if session.ID != "u-1" {
					t.Errorf("session ID = %q", session.ID)
				}
			}
			if got := f.auth.State(); got != wantState {
				t.Errorf("State() = %s, want %s", got, wantState)
			}

			if tt.expectRemoved {
				if _, ok := f.store.Raw(domain.SessionStorageKey); ok {
					t.Error("corrupt record still stored")
				}
			}
		})
	}
}

func TestSessionAuthenticator_Logout(t *testing.T) {
	t.Run("clears session and storage", func(t *testing.T) {
		f := newAuthFixture(t)
		f.pending(t)
		f.auth.Verify(context.Background(), "123456")

		if err := f.auth.Logout(context.Background()); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		if f.auth.Session() != nil || f.auth.State() != domain.StateUnauthenticated {
			t.Error("authenticator not reset")
		}
		if _, ok := f.store.Raw(domain.SessionStorageKey); ok {
			t.Error("session record still stored")
		}
		if f.auth.RestoreSession(context.Background()) != nil {
			t.Error("RestoreSession() after Logout returned a session")
		}
	})

	t.Run("storage failure keeps the session", func(t *testing.T) {
		f := newAuthFixture(t)
		f.pending(t)
		f.auth.Verify(context.Background(), "123456")
		f.store.RemoveFunc = func(ctx context.Context, key string) error {
			return errors.New("unreachable")
		}

		if err := f.auth.Logout(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if got := f.auth.State(); got != domain.StateAuthenticated {
			t.Errorf("State() = %s, want %s", got, domain.StateAuthenticated)
		}
	})
}

func TestSessionAuthenticator_AbandonChallenge(t *testing.T) {
	f := newAuthFixture(t)
	f.pending(t)

	f.auth.AbandonChallenge()

	if f.auth.State() != domain.StateUnauthenticated || f.auth.Challenge() != nil {
		t.Error("challenge not abandoned")
	}
}

func TestSessionAuthenticator_CountdownRunsOnClock(t *testing.T) {
	clock := &manualClock{}
	store := mocks.NewMockKeyValueStore()
	auth := NewSessionAuthenticator("device-1", store, mocks.NewMockOTPService(), nil, nil, clock, DefaultAuthenticatorConfig(), nil)
	defer auth.Close()

	if _, err := auth.SubmitPhoneNumber(context.Background(), "9876543210"); err != nil {
		t.Fatalf("SubmitPhoneNumber() error = %v", err)
	}
	first := clock.latest(t)
	first.fire(t)
	waitFor(t, func() bool { return auth.Challenge().SecondsRemaining == 29 })

	// leaving the screen cancels the countdown
	auth.AbandonChallenge()
	select {
	case <-first.stopped:
	case <-time.After(time.Second):
		t.Fatal("countdown ticker still running after abandon")
	}
}
