package httpx

import (
	"time"

	"github.com/Sasmit28/CivicApp/internal/http/handlers"
	"github.com/Sasmit28/CivicApp/internal/http/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups everything BuildRouter mounts
type Handlers struct {
	Auth    *handlers.AuthHandlers
	Reports *handlers.ReportHandlers
	Policy  *handlers.PolicyHandlers
}

// BuildRouter wires the handlers and middleware into a gin engine. Every
// route except /health requires the device header.
func BuildRouter(h Handlers, jwtmw *middleware.AuthMW, cb middleware.CasbinMiddleware, limiter *middleware.DeviceRateLimiter, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.DeviceIDHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	device := r.Group("/", middleware.DeviceID())

	auth := device.Group("/auth")
	auth.POST("/phone", limiter.Limit(), h.Auth.SubmitPhone)
	auth.POST("/otp/resend", limiter.Limit(), h.Auth.Resend)
	auth.POST("/otp/digit", h.Auth.EnterDigit)
	auth.POST("/otp/verify", h.Auth.Verify)
	auth.GET("/otp", h.Auth.Challenge)
	auth.GET("/session", jwtmw.WithOptionalJWT(), h.Auth.Session)

	v := device.Group("/").Use(jwtmw.WithJWT(), cb.Enforce())
	v.POST("/auth/logout", h.Auth.Logout)
	v.POST("/reports", h.Reports.Submit)
	v.GET("/reports", h.Reports.List)
	v.POST("/reports/location", h.Reports.ResolveLocation)
	v.POST("/reports/photo", h.Reports.UploadPhoto)
	v.GET("/reports/markers", h.Reports.Markers)
	v.GET("/reports/counts", h.Reports.Counts)
	v.POST("/reports/filter/toggle", h.Reports.ToggleFilter)

	adm := device.Group("/admin").Use(jwtmw.WithJWT(), cb.Enforce())
	adm.GET("/policies", h.Policy.List)
	adm.POST("/policies", h.Policy.Add)
	adm.DELETE("/policies", h.Policy.Remove)

	return r
}
