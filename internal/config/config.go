// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for our application
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Security  SecurityConfig
	Upstream  UpstreamConfig
	Geocoding GeocodingConfig
	Shipping  ShippingConfig
	Session   SessionConfig
	Company   CompanyConfig
	Email     EmailConfig
	Logging   LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// JWTConfig contains bearer token inspection settings. The tokens are issued
// by the commerce API; Secret is only needed when signatures must be verified
// locally.
type JWTConfig struct {
	Secret    string
	ClockSkew time.Duration
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
}

// UpstreamConfig describes the remote commerce REST API
type UpstreamConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryMin   time.Duration
	RetryMax   time.Duration
}

// GeocodingConfig contains coordinate resolution settings
type GeocodingConfig struct {
	Strategy          string // "table" or "osm"
	NominatimURL      string
	UserAgent         string
	RequestsPerSecond float64
	Timeout           time.Duration
	CacheTTL          time.Duration
}

// ShippingConfig contains shipping fee settings
type ShippingConfig struct {
	StoreLatitude  float64
	StoreLongitude float64
	FallbackFee    int64
}

// SessionConfig contains per-session cart store settings
type SessionConfig struct {
	IdleTTL         time.Duration
	ConfirmationTTL time.Duration
}

// CompanyConfig is printed on order receipts
type CompanyConfig struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
}

// EmailConfig contains order confirmation mail settings. Provider "none"
// disables sending.
type EmailConfig struct {
	Provider     string
	FromEmail    string
	FromName     string
	ReplyTo      string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
	APIKey       string
	APIURL       string
	Timeout      time.Duration
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Storefront BFF"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "storefront_db"),
			User:         getEnv("DB_USER", "storefront_user"),
			Password:     getEnv("DB_PASSWORD", "storefront_password"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
		},
		JWT: JWTConfig{
			Secret:    getEnv("JWT_SECRET", ""),
			ClockSkew: getEnvAsDuration("JWT_CLOCK_SKEW", 30*time.Second),
		},
		Security: SecurityConfig{
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},
		Upstream: UpstreamConfig{
			BaseURL:    getEnv("UPSTREAM_BASE_URL", "http://localhost:5000/api"),
			Timeout:    getEnvAsDuration("UPSTREAM_TIMEOUT", 15*time.Second),
			MaxRetries: getEnvAsInt("UPSTREAM_MAX_RETRIES", 2),
			RetryMin:   getEnvAsDuration("UPSTREAM_RETRY_MIN", 200*time.Millisecond),
			RetryMax:   getEnvAsDuration("UPSTREAM_RETRY_MAX", 2*time.Second),
		},
		Geocoding: GeocodingConfig{
			Strategy:          getEnv("GEOCODER", "table"),
			NominatimURL:      getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
			UserAgent:         getEnv("NOMINATIM_USER_AGENT", "storefront-bff/1.0 (shipping fee calculator)"),
			RequestsPerSecond: getEnvAsFloat("NOMINATIM_RPS", 1),
			Timeout:           getEnvAsDuration("NOMINATIM_TIMEOUT", 10*time.Second),
			CacheTTL:          getEnvAsDuration("GEOCODE_CACHE_TTL", 7*24*time.Hour),
		},
		Shipping: ShippingConfig{
			StoreLatitude:  getEnvAsFloat("STORE_LATITUDE", 21.0285),
			StoreLongitude: getEnvAsFloat("STORE_LONGITUDE", 105.8542),
			FallbackFee:    getEnvAsInt64("SHIPPING_FALLBACK_FEE", 20000),
		},
		Session: SessionConfig{
			IdleTTL:         getEnvAsDuration("SESSION_IDLE_TTL", 2*time.Hour),
			ConfirmationTTL: getEnvAsDuration("CONFIRMATION_TTL", 24*time.Hour),
		},
		Company: CompanyConfig{
			Name:    getEnv("COMPANY_NAME", "Storefront"),
			Address: getEnv("COMPANY_ADDRESS", "Hà Nội, Việt Nam"),
			Phone:   getEnv("COMPANY_PHONE", ""),
			Email:   getEnv("COMPANY_EMAIL", "support@example.com"),
			Website: getEnv("COMPANY_WEBSITE", ""),
		},
		Email: EmailConfig{
			Provider:     getEnv("EMAIL_PROVIDER", "none"),
			FromEmail:    getEnv("EMAIL_FROM", "no-reply@example.com"),
			FromName:     getEnv("EMAIL_FROM_NAME", "Storefront"),
			ReplyTo:      getEnv("EMAIL_REPLY_TO", ""),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			SMTPUseTLS:   getEnvAsBool("SMTP_USE_TLS", false),
			APIKey:       getEnv("EMAIL_API_KEY", ""),
			APIURL:       getEnv("EMAIL_API_URL", ""),
			Timeout:      getEnvAsDuration("EMAIL_TIMEOUT", 15*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret != "" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL is required")
	}

	switch c.Geocoding.Strategy {
	case "table", "osm":
	default:
		return fmt.Errorf("GEOCODER must be \"table\" or \"osm\", got %q", c.Geocoding.Strategy)
	}
	switch c.Email.Provider {
	case "none", "smtp", "resend", "sendgrid":
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be one of none, smtp, resend, sendgrid, got %q", c.Email.Provider)
	}

	if c.Geocoding.RequestsPerSecond <= 0 {
		return fmt.Errorf("NOMINATIM_RPS must be positive")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
