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

// Config holds all configuration for the storefront backend
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Security SecurityConfig
	Storage  StorageConfig
	Upload   UploadConfig
	Chat     ChatConfig
	Logging  LoggingConfig
	Invoice  InvoiceConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
	FrontendURL string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	URL          string
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	AutoMigrate  bool
	Seed         bool
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

// JWTConfig contains JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	BcryptCost         int
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
	AdminPhones        []string
}

// StorageConfig contains file storage configuration
type StorageConfig struct {
	Provider    string
	LocalPath   string
	PublicPath  string
	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	CDNBaseURL  string
}

// UploadConfig contains media upload configuration
type UploadConfig struct {
	MaxSize          int64
	MaxFiles         int
	AllowedMimeTypes []string
}

// ChatConfig tunes the websocket relay
type ChatConfig struct {
	SendBuffer       int
	MaxMessageBytes  int64
	WriteWait        time.Duration
	PongWait         time.Duration
	InboundPerSecond float64
	InboundBurst     int
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// InvoiceConfig carries the seller details printed on invoices
type InvoiceConfig struct {
	CompanyName    string
	CompanyAddress string
	CompanyPhone   string
	CompanyEmail   string
	Currency       string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Tech Nexus Storefront"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "3001"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
			MaxBodyBytes:    getEnvAsInt64("SERVER_MAX_BODY_BYTES", 60<<20),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:          getEnv("DATABASE_URL", ""),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "tanzania_tech_nexus"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
			AutoMigrate:  getEnvAsBool("DB_AUTO_MIGRATE", true),
			Seed:         getEnvAsBool("DB_SEED", false),
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
			Secret:            getEnv("JWT_SECRET", "change-this-secret-before-going-to-production"),
			AccessTokenExpiry: getEnvAsDuration("JWT_EXPIRES_IN", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			BcryptCost:         getEnvAsInt("BCRYPT_COST", 10),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 300),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
			AdminPhones:        getEnvAsSlice("ADMIN_PHONES", []string{"255684868946"}),
		},
		Storage: StorageConfig{
			Provider:    getEnv("STORAGE_PROVIDER", "local"),
			LocalPath:   getEnv("STORAGE_LOCAL_PATH", "./uploads"),
			PublicPath:  getEnv("STORAGE_PUBLIC_PATH", "/uploads"),
			S3Bucket:    getEnv("S3_BUCKET", ""),
			S3Region:    getEnv("S3_REGION", "us-east-1"),
			S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey: getEnv("S3_SECRET_KEY", ""),
			CDNBaseURL:  getEnv("CDN_BASE_URL", ""),
		},
		Upload: UploadConfig{
			MaxSize:  getEnvAsInt64("UPLOAD_MAX_SIZE", 50<<20), // 50MB
			MaxFiles: getEnvAsInt("UPLOAD_MAX_FILES", 10),
			AllowedMimeTypes: getEnvAsSlice("UPLOAD_ALLOWED_MIME_TYPES", []string{
				"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif",
				"video/mp4", "video/webm", "video/quicktime",
			}),
		},
		Chat: ChatConfig{
			SendBuffer:       getEnvAsInt("CHAT_SEND_BUFFER", 32),
			MaxMessageBytes:  getEnvAsInt64("CHAT_MAX_MESSAGE_BYTES", 4096),
			WriteWait:        getEnvAsDuration("CHAT_WRITE_WAIT", 10*time.Second),
			PongWait:         getEnvAsDuration("CHAT_PONG_WAIT", 60*time.Second),
			InboundPerSecond: getEnvAsFloat("CHAT_INBOUND_PER_SECOND", 10),
			InboundBurst:     getEnvAsInt("CHAT_INBOUND_BURST", 20),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Invoice: InvoiceConfig{
			CompanyName:    getEnv("COMPANY_NAME", "Tanzania Tech Nexus"),
			CompanyAddress: getEnv("COMPANY_ADDRESS", "Dar es Salaam, Tanzania"),
			CompanyPhone:   getEnv("COMPANY_PHONE", "+255684868946"),
			CompanyEmail:   getEnv("COMPANY_EMAIL", "sales@technexus.co.tz"),
			Currency:       getEnv("CURRENCY", "TZS"),
		},
	}

	if len(config.Security.CORSAllowedOrigins) == 0 {
		config.Security.CORSAllowedOrigins = []string{config.App.FrontendURL}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.Database.URL == "" {
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("DB_USER is required")
		}
	}

	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Storage.Provider {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_PROVIDER=s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_PROVIDER %q", c.Storage.Provider)
	}

	if c.Chat.SendBuffer <= 0 {
		return fmt.Errorf("CHAT_SEND_BUFFER must be positive")
	}
	// The ping interval is 9/10 of the pong wait and must not round to zero.
	if c.Chat.PongWait*9/10 <= 0 {
		return fmt.Errorf("CHAT_PONG_WAIT must be positive")
	}
	if c.Chat.WriteWait <= 0 {
		return fmt.Errorf("CHAT_WRITE_WAIT must be positive")
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
	if c.Database.URL != "" {
		return c.Database.URL
	}
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

// lookup parses the variable with parse, falling back to def when it is unset,
// empty or malformed
func lookup[T any](key string, def T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func getEnv(key, def string) string {
	return lookup(key, def, func(s string) (string, error) { return s, nil })
}

func getEnvAsInt(key string, def int) int { return lookup(key, def, strconv.Atoi) }

func getEnvAsInt64(key string, def int64) int64 {
	return lookup(key, def, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

func getEnvAsFloat(key string, def float64) float64 {
	return lookup(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func getEnvAsBool(key string, def bool) bool { return lookup(key, def, strconv.ParseBool) }

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	return lookup(key, def, time.ParseDuration)
}

// getEnvAsSlice reads a comma separated list, dropping blank entries
func getEnvAsSlice(key string, def []string) []string {
	return lookup(key, def, func(s string) ([]string, error) {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	})
}
