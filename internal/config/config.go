package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the Listing Shield server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Platform PlatformConfig
	Cache    CacheConfig
}

type ServerConfig struct {
	Port               int
	Env                string
	RateLimitPerMinute int
	CORSAllowedOrigins []string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// PlatformConfig points at the managed backend that owns auth and remote functions.
// Keys are optional at load time; the functions that need them report their absence.
type PlatformConfig struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
	JWTSecret      string
	Timeout        time.Duration
}

type CacheConfig struct {
	TTL time.Duration
}

// HasClientKeys reports whether the endpoint URL and anonymous key are set.
func (p PlatformConfig) HasClientKeys() bool {
	return p.URL != "" && p.AnonKey != ""
}

// HasServiceKeys reports whether the endpoint URL and service-role key are set.
func (p PlatformConfig) HasServiceKeys() bool {
	return p.URL != "" && p.ServiceRoleKey != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := load()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase reads the same environment as Load but only requires the
// database settings. Used by the operator CLI.
func LoadDatabase() (*Config, error) {
	cfg := load()
	if err := cfg.validateDatabase(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               envInt("LISTINGSHIELD_PORT", 8080),
			Env:                envString("LISTINGSHIELD_ENV", "development"),
			RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
			CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Platform: PlatformConfig{
			URL:            strings.TrimRight(os.Getenv("PLATFORM_URL"), "/"),
			AnonKey:        os.Getenv("PLATFORM_ANON_KEY"),
			ServiceRoleKey: os.Getenv("PLATFORM_SERVICE_ROLE_KEY"),
			JWTSecret:      os.Getenv("PLATFORM_JWT_SECRET"),
			Timeout:        envDuration("PLATFORM_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			TTL: envDuration("CACHE_TTL", 24*time.Hour),
		},
	}
}

func (c *Config) validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Platform.URL != "" &&
		!strings.HasPrefix(c.Platform.URL, "http://") && !strings.HasPrefix(c.Platform.URL, "https://") {
		return fmt.Errorf("PLATFORM_URL must start with http:// or https://, got %q", c.Platform.URL)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.Cache.TTL)
	}

	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// envList splits a comma-separated variable, dropping empty items.
func envList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
