package middleware

import (
	"net/http"
	"strings"

	"github.com/Sasmit28/CivicApp/domain"
	"github.com/gin-gonic/gin"
)

const (
	DeviceIDHeader = "X-Device-ID"
	maxDeviceIDLen = 128
)

// DeviceID requires the X-Device-ID header and stores it as "device_id"
func DeviceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(DeviceIDHeader))
		if id == "" || len(id) > maxDeviceIDLen {
			c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrDeviceIDRequired.Error()})
			c.Abort()
			return
		}
		c.Set("device_id", id)
		c.Next()
	}
}

// DeviceFromContext returns the id stored by DeviceID
func DeviceFromContext(c *gin.Context) string {
	return c.GetString("device_id")
}
