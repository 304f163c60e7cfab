package domain

import (
	"math"
	"regexp"
	"strings"
	"time"
)

// AuthState is the position of a device in the login flow
type AuthState string

const (
	StateUnauthenticated AuthState = "UNAUTHENTICATED"
	StatePhoneEntered    AuthState = "PHONE_ENTERED"
	StateOTPPending      AuthState = "OTP_PENDING"
	StateAuthenticated   AuthState = "AUTHENTICATED"
)

const (
	// OTPCodeLength is the number of digit positions in a challenge
	OTPCodeLength = 6
	// OTPCountdownSeconds is the resend cooldown of a fresh challenge
	OTPCountdownSeconds = 30
	// SessionStorageKey is the fixed key of the persisted session record
	SessionStorageKey = "userAuth"
	// DefaultCountryCode is prefixed to validated 10-digit mobile numbers
	DefaultCountryCode = "+91"
)

// Session represents an authenticated citizen on one device.
// The JSON layout is the persisted record: { id, phoneNumber, name, createdAt }.
type Session struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phoneNumber"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OTPChallenge is a read-only snapshot of the pending OTP step
type OTPChallenge struct {
	TargetPhoneNumber string    `json:"target_phone_number"`
	DisplayPhone      string    `json:"display_phone"`
	CodeLength        int       `json:"code_length"`
	EnteredDigits     []string  `json:"entered_digits"`
	SecondsRemaining  int       `json:"seconds_remaining"`
	CanResend         bool      `json:"can_resend"`
	IssuedAt          time.Time `json:"issued_at"`
}

// Complete reports whether every digit position is filled
func (c *OTPChallenge) Complete() bool {
	if len(c.EnteredDigits) != c.CodeLength {
		return false
	}
	for _, d := range c.EnteredDigits {
		if d == "" {
			return false
		}
	}
	return true
}

// Code joins the entered digits
func (c *OTPChallenge) Code() string {
	return strings.Join(c.EnteredDigits, "")
}

var mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// IsValidMobileNumber checks a raw 10-digit mobile number (first digit 6-9)
func IsValidMobileNumber(raw string) bool {
	return mobilePattern.MatchString(raw)
}

var displayPattern = regexp.MustCompile(`^(\+\d{2})(\d{5})(\d{5})$`)

// FormatPhoneNumber renders "+919876543210" as "+91 98765 43210".
// Numbers that do not fit the pattern are returned unchanged.
func FormatPhoneNumber(phone string) string {
	return displayPattern.ReplaceAllString(phone, "$1 $2 $3")
}

// IsCompleteCode reports whether code is exactly OTPCodeLength ASCII digits
func IsCompleteCode(code string) bool {
	if len(code) != OTPCodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Citizen is a directory entry for a verified phone number
type Citizen struct {
	ID          string
	PhoneNumber string
	DisplayName string
	Role        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Coordinates is a latitude/longitude pair in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Rounded returns the coordinates rounded to 6 decimal places
func (c Coordinates) Rounded() Coordinates {
	return Coordinates{
		Latitude:  math.Round(c.Latitude*1e6) / 1e6,
		Longitude: math.Round(c.Longitude*1e6) / 1e6,
	}
}

// InRange reports whether both values are valid decimal degrees
func (c Coordinates) InRange() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// IsZero reports whether no fix was recorded
func (c Coordinates) IsZero() bool {
	return c == Coordinates{}
}

// Placemark is one reverse-geocoding candidate
type Placemark struct {
	Name   string
	Street string
	City   string
	Region string
}

// ResolvedLocation is a device fix plus its best-effort address
type ResolvedLocation struct {
	Coordinates
	Address string `json:"address"`
}

// ReportInput carries the fields of the report form
type ReportInput struct {
	IssueType   IssueType
	Description string
	PhotoRef    string
	Location    *ResolvedLocation
	ReporterID  string
}

// Report represents a submitted civic issue
type Report struct {
	ID          string           `json:"id"`
	IssueType   IssueType        `json:"issue_type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	PhotoRef    string           `json:"photo_ref,omitempty"`
	Location    ResolvedLocation `json:"location"`
	Status      Status           `json:"status"`
	ReporterID  string           `json:"reporter_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// MapMarker is the projection of a report rendered on the map view
type MapMarker struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Status    Status  `json:"status"`
}

// StatusCounts holds the summary tiles: Pending, InProgress and Completed
type StatusCounts map[Status]int

// Total sums the counted statuses
func (s StatusCounts) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID    string `json:"user_id"`
	DeviceID  string `json:"device_id"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
