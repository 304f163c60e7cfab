package handlers

import (
	"errors"
	"net/http"

	"github.com/Sasmit28/CivicApp/domain"
	"github.com/gin-gonic/gin"
)

type errorStatus struct {
	err    error
	status int
}

// statusTable is checked in order; the first match wins
var statusTable = []errorStatus{
	{domain.ErrInvalidPhoneFormat, http.StatusBadRequest},
	{domain.ErrInvalidDigitPosition, http.StatusBadRequest},
	{domain.ErrInvalidDigit, http.StatusBadRequest},
	{domain.ErrIncompleteCode, http.StatusBadRequest},
	{domain.ErrMissingIssueType, http.StatusBadRequest},
	{domain.ErrMissingDescription, http.StatusBadRequest},
	{domain.ErrMissingLocation, http.StatusBadRequest},
	{domain.ErrDeviceIDRequired, http.StatusBadRequest},
	{domain.ErrOTPInvalid, http.StatusUnauthorized},
	{domain.ErrOTPNotFound, http.StatusUnauthorized},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrSessionNotFound, http.StatusUnauthorized},
	{domain.ErrLocationPermissionDenied, http.StatusForbidden},
	{domain.ErrCameraPermissionDenied, http.StatusForbidden},
	{domain.ErrInsufficientRole, http.StatusForbidden},
	{domain.ErrNoActiveChallenge, http.StatusConflict},
	{domain.ErrAlreadyAuthenticated, http.StatusConflict},
	{domain.ErrCooldownActive, http.StatusTooManyRequests},
	{domain.ErrOTPMaxAttempts, http.StatusTooManyRequests},
	{domain.ErrLocationUnavailable, http.StatusServiceUnavailable},
	{domain.ErrCitizenNotFound, http.StatusNotFound},
	{domain.ErrReportNotFound, http.StatusNotFound},
}

// StatusFor maps a domain error to an HTTP status
func StatusFor(err error) int {
	for _, e := range statusTable {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes the error envelope. Unmapped errors are not echoed to the client.
func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	_ = c.Error(err)

	body := gin.H{"error": err.Error()}
	if status == http.StatusInternalServerError {
		body["error"] = "Internal server error"
	}

	var vErr *domain.ValidationError
	var sErr *domain.SubmissionError
	switch {
	case errors.As(err, &vErr):
		body["field"] = vErr.Field
	case errors.As(err, &sErr):
		body["field"] = sErr.Field
	}

	c.JSON(status, body)
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}
