package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Sasmit28/CivicApp/domain"
	"github.com/Sasmit28/CivicApp/internal/config"
	"github.com/Sasmit28/CivicApp/internal/http/middleware"
	"github.com/Sasmit28/CivicApp/internal/infrastructure/auth"
	"github.com/Sasmit28/CivicApp/internal/infrastructure/database"
	"github.com/Sasmit28/CivicApp/internal/infrastructure/events"
	"github.com/Sasmit28/CivicApp/internal/infrastructure/geo"
	"github.com/Sasmit28/CivicApp/internal/infrastructure/notifications"
	"github.com/Sasmit28/CivicApp/internal/infrastructure/photos"
	"github.com/Sasmit28/CivicApp/internal/infrastructure/repositories"
	"github.com/Sasmit28/CivicApp/internal/infrastructure/storage"
	"github.com/Sasmit28/CivicApp/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Casbin      *auth.CasbinService
	nats        *events.NATSPublisher

	// Repositories
	CitizenRepo domain.CitizenRepository
	ReportRepo  domain.ReportRepository

	// Services
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	OTPSvc          domain.OTPService
	PolicySvc       *services.PolicyServiceImpl
	Publisher       domain.EventPublisher
	PhotoStore      domain.PhotoStore
	Catalog         *services.ReportCatalog
	Registry        *services.DeviceRegistry
	Limiter         *middleware.DeviceRateLimiter
}

// NewContainer creates and initializes all dependencies
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"database", c.initDatabase},
		{"redis", c.initRedis},
		{"policies", c.initPolicies},
		{"events", c.initEvents},
		{"services", c.initServices},
		{"reports", c.initReports},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("init %s: %w", step.name, err)
		}
	}

	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	db, err := database.Open(c.Config.DBDriver, c.Config.DSN)
	if err != nil {
		return err
	}
	c.DB = db
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	c.CitizenRepo = repositories.NewCitizenRepository(db)
	c.ReportRepo = repositories.NewReportRepository(db)
	return nil
}

func (c *Container) initRedis(ctx context.Context) error {
	rdb := database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
	c.RedisClient = rdb.Client
	return rdb.Ping(ctx)
}

func (c *Container) initPolicies(ctx context.Context) error {
	cas, err := auth.NewCasbinService(c.DB, c.Config.CasbinModelPath)
	if err != nil {
		return err
	}
	c.Casbin = cas
	c.PolicySvc = services.NewPolicyService(cas.E)

	seeded, err := c.PolicySvc.SeedDefaults()
	if err != nil {
		return err
	}
	if seeded {
		c.Logger.Info("casbin: seeded default policies", zap.Int("count", len(services.DefaultPolicies)))
	}
	return nil
}

func (c *Container) initEvents(ctx context.Context) error {
	if c.Config.NATSURL == "" {
		c.Publisher = events.NewLogPublisher(c.Logger)
		return nil
	}
	pub, err := events.NewNATSPublisher(c.Config.NATSURL, c.Logger)
	if err != nil {
		return err
	}
	c.nats = pub
	c.Publisher = pub
	return nil
}

func (c *Container) initServices(ctx context.Context) error {
	c.TokenSvc = auth.NewJWTService(c.Config.JWTSecret, c.Config.JWTIssuer, c.Config.AccessTTL)
	c.NotificationSvc = notifications.NewTwilioService(
		c.Config.TwilioSID,
		c.Config.TwilioToken,
		c.Config.TwilioFrom,
		c.Logger,
	)

	if c.Config.OTP_AcceptAnyCode {
		c.Logger.Warn("otp: accepting any complete code, do not use in production")
		c.OTPSvc = services.NewAcceptAnyCodeService(c.Logger)
	} else {
		c.OTPSvc = services.NewOTPService(
			c.NotificationSvc,
			auth.NewCodeHasher(c.Config.OTP_HashCost),
			c.RedisClient,
			services.OTPConfig{
				Length:      c.Config.OTP_Length,
				TTL:         c.Config.OTP_TTL,
				MaxAttempts: c.Config.OTP_MaxAttempts,
			},
			c.Logger,
		)
	}

	authCfg := services.DefaultAuthenticatorConfig()
	authCfg.CountryCode = c.Config.CountryCode
	authCfg.CountdownSeconds = c.Config.OTP_Countdown

	rdb := c.RedisClient
	c.Registry = services.NewDeviceRegistry(
		func(deviceID string) domain.KeyValueStore { return storage.NewRedisStore(rdb, deviceID) },
		c.OTPSvc,
		c.CitizenRepo,
		c.Publisher,
		services.SystemClock(),
		authCfg,
		c.Logger,
	)
	c.Limiter = middleware.NewDeviceRateLimiter(c.Config.RatePerMinute, c.Config.RateBurst)
	return nil
}

func (c *Container) initReports(ctx context.Context) error {
	if c.Config.CloudinaryName != "" {
		store, err := photos.NewCloudinaryStore(
			c.Config.CloudinaryName,
			c.Config.CloudinaryKey,
			c.Config.CloudinarySecret,
			c.Config.CloudinaryFolder,
		)
		if err != nil {
			return err
		}
		c.PhotoStore = store
	} else {
		c.Logger.Info("photo uploads disabled: no cloudinary credentials")
	}

	var geocoder domain.ReverseGeocoder
	if c.Config.GeocoderURL != "" {
		geocoder = geo.NewNominatimGeocoder(c.Config.GeocoderURL, c.Config.GeocoderUserAgent, c.Config.GeocoderTimeout)
	}

	c.Catalog = services.NewReportCatalog(c.ReportRepo, c.Publisher, services.NewLocationResolver(geocoder, c.Logger), c.Logger)
	return c.Catalog.Load(ctx)
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Registry != nil {
		c.Registry.Close()
	}
	if c.nats != nil {
		if err := c.nats.Close(); err != nil {
			c.Logger.Warn("nats drain failed", zap.Error(err))
		}
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
