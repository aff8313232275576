package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is built once at startup and passed to every component. Nothing
// outside this package reads the process environment.
type Config struct {
	Port        string
	GinMode     string
	Environment string
	LogLevel    string
	LogFormat   string

	ChannelAccessToken string
	LineAPIBaseURL     string
	LinePushTimeout    time.Duration
	RequestTimeout     time.Duration

	MongoURI          string
	DatabaseName      string
	InquiryCollection string

	SentryDSN string

	AllowedOrigins []string
	TrustedProxies []string
	MaxBodyBytes   int64

	RateLimitMax    int
	RateLimitWindow time.Duration
	RedisURL        string

	BusinessTimezone string
	Location         *time.Location
	DateLayout       string
	DateTimeLayout   string

	LIFFChannelID     string
	LIFFChannelSecret string
	LIFFJWKSURL       string

	Archive ArchiveConfig

	DotEnvLoaded bool
}

// ArchiveConfig points at an S3 compatible bucket (Cloudflare R2 in production).
type ArchiveConfig struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

var ErrMissingChannelToken = errors.New("CHANNEL_ACCESS_TOKEN is not set")

// Load reads an optional .env file and then the environment. DotEnvLoaded
// on the result reports whether the file was found.
func Load() (*Config, error) {
	dotEnvErr := godotenv.Load()
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.DotEnvLoaded = dotEnvErr == nil
	return cfg, nil
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:        v.GetString("PORT"),
		GinMode:     v.GetString("GIN_MODE"),
		Environment: v.GetString("APP_ENVIRONMENT"),
		LogLevel:    strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:   strings.ToLower(v.GetString("LOG_FORMAT")),

		ChannelAccessToken: strings.TrimSpace(v.GetString("CHANNEL_ACCESS_TOKEN")),
		LineAPIBaseURL:     strings.TrimRight(v.GetString("LINE_API_BASE_URL"), "/"),
		LinePushTimeout:    v.GetDuration("LINE_PUSH_TIMEOUT"),
		RequestTimeout:     v.GetDuration("REQUEST_TIMEOUT"),

		MongoURI:          strings.TrimSpace(v.GetString("MONGODB_URI")),
		DatabaseName:      v.GetString("DATABASE_NAME"),
		InquiryCollection: v.GetString("INQUIRY_COLLECTION"),

		SentryDSN: strings.TrimSpace(v.GetString("SENTRY_DSN")),

		AllowedOrigins: splitCSV(v.GetString("ALLOWED_ORIGINS")),
		TrustedProxies: splitCSV(v.GetString("TRUSTED_PROXIES")),
		MaxBodyBytes:   v.GetInt64("MAX_BODY_BYTES"),

		RateLimitMax:    v.GetInt("RATE_LIMIT_MAX"),
		RateLimitWindow: v.GetDuration("RATE_LIMIT_WINDOW"),
		RedisURL:        strings.TrimSpace(v.GetString("REDIS_URL")),

		BusinessTimezone: v.GetString("BUSINESS_TIMEZONE"),
		DateLayout:       v.GetString("DATE_LAYOUT"),
		DateTimeLayout:   v.GetString("DATETIME_LAYOUT"),

		LIFFChannelID:     strings.TrimSpace(v.GetString("LIFF_CHANNEL_ID")),
		LIFFChannelSecret: strings.TrimSpace(v.GetString("LIFF_CHANNEL_SECRET")),
		LIFFJWKSURL:       strings.TrimSpace(v.GetString("LIFF_JWKS_URL")),

		Archive: ArchiveConfig{
			Bucket:          v.GetString("ARCHIVE_BUCKET"),
			Endpoint:        v.GetString("ARCHIVE_ENDPOINT"),
			Region:          v.GetString("ARCHIVE_REGION"),
			AccessKeyID:     v.GetString("ARCHIVE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("ARCHIVE_SECRET_ACCESS_KEY"),
		},
	}

	loc, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.BusinessTimezone, err)
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LINE_API_BASE_URL", "https://api.line.me")
	v.SetDefault("LINE_PUSH_TIMEOUT", "5s")
	v.SetDefault("REQUEST_TIMEOUT", "15s")
	v.SetDefault("DATABASE_NAME", "gmf")
	v.SetDefault("INQUIRY_COLLECTION", "inquiries")
	v.SetDefault("MAX_BODY_BYTES", 64<<10)
	v.SetDefault("RATE_LIMIT_MAX", 5)
	v.SetDefault("RATE_LIMIT_WINDOW", "15m")
	v.SetDefault("BUSINESS_TIMEZONE", "Asia/Bangkok")
	v.SetDefault("DATE_LAYOUT", "January 2, 2006")
	v.SetDefault("DATETIME_LAYOUT", "January 2, 2006, 15:04")
	v.SetDefault("ARCHIVE_REGION", "auto")
	v.SetDefault("LIFF_JWKS_URL", "https://api.line.me/oauth2/v2.1/certs")
}

// Validate reports configuration the service cannot run without.
func (c *Config) Validate() error {
	if c.ChannelAccessToken == "" {
		return ErrMissingChannelToken
	}
	if c.LinePushTimeout <= 0 {
		return fmt.Errorf("LINE_PUSH_TIMEOUT must be positive")
	}
	if c.RequestTimeout <= c.LinePushTimeout {
		return fmt.Errorf("REQUEST_TIMEOUT (%s) must exceed LINE_PUSH_TIMEOUT (%s)", c.RequestTimeout, c.LinePushTimeout)
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit must be positive (max=%d window=%s)", c.RateLimitMax, c.RateLimitWindow)
	}
	return nil
}

func (c *Config) PersistenceEnabled() bool { return c.MongoURI != "" }

func (c *Config) MonitoringEnabled() bool { return c.SentryDSN != "" }

// LIFFAuthEnabled reports whether ID tokens are required. The channel secret
// only adds HS256 support on top of the JWKS-backed ES256 check.
func (c *Config) LIFFAuthEnabled() bool { return c.LIFFChannelID != "" }

func (c *Config) ArchiveEnabled() bool {
	a := c.Archive
	return a.Bucket != "" && a.Endpoint != "" && a.AccessKeyID != "" && a.SecretAccessKey != ""
}

func splitCSV(raw string) []string {
	out := []string{}
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
