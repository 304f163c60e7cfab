package domain

import "errors"

// Validation errors
var (
	ErrInvalidPhoneFormat   = errors.New("invalid phone number format")
	ErrInvalidDigitPosition = errors.New("otp digit position out of range")
	ErrInvalidDigit         = errors.New("otp digit must be 0-9")
)

// OTP and authentication errors
var (
	ErrIncompleteCode       = errors.New("otp code is incomplete")
	ErrCooldownActive       = errors.New("otp resend cooldown is active")
	ErrNoActiveChallenge    = errors.New("no otp challenge is pending")
	ErrAlreadyAuthenticated = errors.New("device is already authenticated")
	ErrOTPInvalid           = errors.New("invalid otp code")
	ErrOTPNotFound          = errors.New("otp not found")
	ErrOTPMaxAttempts       = errors.New("maximum otp attempts exceeded")
)

// Location and capture errors
var (
	ErrLocationPermissionDenied = errors.New("location permission denied")
	ErrLocationUnavailable      = errors.New("location unavailable")
	ErrCameraPermissionDenied   = errors.New("camera permission denied")
)

// Submission errors, checked in this order
var (
	ErrMissingIssueType   = errors.New("issue type is required")
	ErrMissingDescription = errors.New("description is required")
	ErrMissingLocation    = errors.New("location is required")
)

// Directory errors
var (
	ErrCitizenNotFound = errors.New("citizen not found")
	ErrReportNotFound  = errors.New("report not found")
)

// Session and token errors
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenMalformed   = errors.New("malformed token")
	ErrDeviceIDRequired = errors.New("device id header is required")
)

// Authorization errors
var (
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrInsufficientRole = errors.New("insufficient role permissions")
)

// ValidationError reports malformed user input for a named field
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// AuthError reports an OTP operation that was incomplete, premature or rejected
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *AuthError) Unwrap() error { return e.Err }

// LocationError reports a failed device fix
type LocationError struct {
	Err   error
	Cause error
}

func (e *LocationError) Error() string {
	if e.Cause != nil {
		return e.Err.Error() + ": " + e.Cause.Error()
	}
	return e.Err.Error()
}

// Unwrap exposes both the taxonomy sentinel and the underlying cause
func (e *LocationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// SubmissionError reports the first missing field of a report
type SubmissionError struct {
	Field string
	Err   error
}

func (e *SubmissionError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *SubmissionError) Unwrap() error { return e.Err }
