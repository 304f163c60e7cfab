package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yml"

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
	Env     string `yaml:"env"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret"`
	Issuer    string `yaml:"issuer"`
	AccessTTL string `yaml:"access_ttl"`
}

type OTPConfig struct {
	TTL           string `yaml:"ttl"`
	Length        int    `yaml:"length"`
	Countdown     int    `yaml:"countdown"`
	MaxAttempts   int    `yaml:"max_attempts"`
	AcceptAnyCode bool   `yaml:"accept_any_code"`
	HashCost      int    `yaml:"hash_cost"`
	CountryCode   string `yaml:"country_code"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type CloudinaryConfig struct {
	CloudName string `yaml:"cloud_name"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Folder    string `yaml:"folder"`
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type GeocoderConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
	Timeout   string `yaml:"timeout"`
}

type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute"`
	Burst     int `yaml:"burst"`
}

type ConfigFile struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	JWT        JWTConfig        `yaml:"jwt"`
	OTP        OTPConfig        `yaml:"otp"`
	Twilio     TwilioConfig     `yaml:"twilio"`
	Casbin     CasbinConfig     `yaml:"casbin"`
	Cloudinary CloudinaryConfig `yaml:"cloudinary"`
	NATS       NATSConfig       `yaml:"nats"`
	Geocoder   GeocoderConfig   `yaml:"geocoder"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

type Config struct {
	Port    string
	GinMode string
	Env     string

	DBDriver string
	DSN      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTIssuer string
	AccessTTL time.Duration

	OTP_TTL           time.Duration
	OTP_Length        int
	OTP_Countdown     int
	OTP_MaxAttempts   int
	OTP_AcceptAnyCode bool
	OTP_HashCost      int
	CountryCode       string

	TwilioSID   string
	TwilioToken string
	TwilioFrom  string

	CasbinModelPath string

	CloudinaryName   string
	CloudinaryKey    string
	CloudinarySecret string
	CloudinaryFolder string

	NATSURL string

	GeocoderURL       string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration

	RatePerMinute int
	RateBurst     int
}

// defaults are used for any value neither the file nor the environment sets
func defaults() ConfigFile {
	return ConfigFile{
		App:      AppConfig{Port: 8080, GinMode: "debug", Env: "development"},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "civic.db"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		JWT:      JWTConfig{Secret: "change", Issuer: "civicsvc", AccessTTL: "24h"},
		OTP: OTPConfig{
			TTL:           "5m",
			Length:        6,
			Countdown:     30,
			MaxAttempts:   5,
			AcceptAnyCode: true,
			HashCost:      10,
			CountryCode:   "+91",
		},
		Casbin:    CasbinConfig{ModelPath: "config/rbac_model.conf"},
		Geocoder:  GeocoderConfig{BaseURL: "https://nominatim.openstreetmap.org", UserAgent: "civicsvc/1.0", Timeout: "5s"},
		RateLimit: RateLimitConfig{PerMinute: 10, Burst: 3},
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Load reads DefaultPath; see LoadFrom
func Load() (*Config, error) {
	return LoadFrom(DefaultPath)
}

// LoadFrom reads an optional .env, then the yaml file at path, then lets
// environment variables override individual values. A missing file leaves
// the defaults in place.
func LoadFrom(path string) (*Config, error) {
	_ = godotenv.Load()

	file := defaults()
	if err := loadConfigFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	accTTL, err := time.ParseDuration(env("JWT_ACCESS_TTL", file.JWT.AccessTTL))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}

	otpTTL, err := time.ParseDuration(env("OTP_TTL", file.OTP.TTL))
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}

	geoTimeout, err := time.ParseDuration(env("GEOCODER_TIMEOUT", file.Geocoder.Timeout))
	if err != nil {
		return nil, fmt.Errorf("invalid geocoder timeout: %w", err)
	}

	cfg := &Config{
		Port:    env("PORT", strconv.Itoa(file.App.Port)),
		GinMode: env("GIN_MODE", file.App.GinMode),
		Env:     env("APP_ENV", file.App.Env),

		DBDriver: env("DATABASE_DRIVER", file.Database.Driver),
		DSN:      env("DATABASE_DSN", file.Database.DSN),

		RedisAddr:     env("REDIS_ADDR", file.Redis.Addr),
		RedisPassword: env("REDIS_PASSWORD", file.Redis.Password),
		RedisDB:       envInt("REDIS_DB", file.Redis.DB),

		JWTSecret: env("JWT_SECRET", file.JWT.Secret),
		JWTIssuer: env("JWT_ISSUER", file.JWT.Issuer),
		AccessTTL: accTTL,

		OTP_TTL:           otpTTL,
		OTP_Length:        envInt("OTP_LENGTH", file.OTP.Length),
		OTP_Countdown:     envInt("OTP_COUNTDOWN", file.OTP.Countdown),
		OTP_MaxAttempts:   envInt("OTP_MAX_ATTEMPTS", file.OTP.MaxAttempts),
		OTP_AcceptAnyCode: envBool("OTP_ACCEPT_ANY_CODE", file.OTP.AcceptAnyCode),
		OTP_HashCost:      envInt("OTP_HASH_COST", file.OTP.HashCost),
		CountryCode:       env("COUNTRY_CODE", file.OTP.CountryCode),

		TwilioSID:   env("TWILIO_ACCOUNT_SID", file.Twilio.AccountSID),
		TwilioToken: env("TWILIO_AUTH_TOKEN", file.Twilio.AuthToken),
		TwilioFrom:  env("TWILIO_FROM_NUMBER", file.Twilio.FromNumber),

		CasbinModelPath: env("CASBIN_MODEL_PATH", file.Casbin.ModelPath),

		CloudinaryName:   env("CLOUDINARY_CLOUD_NAME", file.Cloudinary.CloudName),
		CloudinaryKey:    env("CLOUDINARY_API_KEY", file.Cloudinary.APIKey),
		CloudinarySecret: env("CLOUDINARY_API_SECRET", file.Cloudinary.APISecret),
		CloudinaryFolder: env("CLOUDINARY_FOLDER", file.Cloudinary.Folder),

		NATSURL: env("NATS_URL", file.NATS.URL),

		GeocoderURL:       env("GEOCODER_BASE_URL", file.Geocoder.BaseURL),
		GeocoderUserAgent: env("GEOCODER_USER_AGENT", file.Geocoder.UserAgent),
		GeocoderTimeout:   geoTimeout,

		RatePerMinute: envInt("RATE_LIMIT_PER_MINUTE", file.RateLimit.PerMinute),
		RateBurst:     envInt("RATE_LIMIT_BURST", file.RateLimit.Burst),
	}

	if cfg.OTP_Length != 6 {
		return nil, fmt.Errorf("invalid OTP length %d: codes are 6 digits", cfg.OTP_Length)
	}
	if cfg.OTP_Countdown <= 0 {
		return nil, fmt.Errorf("invalid OTP countdown %d", cfg.OTP_Countdown)
	}

	return cfg, nil
}

// loadConfigFile decodes path over the values already in out
func loadConfigFile(path string, out *ConfigFile) error {
	bytes, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(bytes, out); err != nil {
		return fmt.Errorf("could not parse config yaml: %w", err)
	}

	return nil
}
