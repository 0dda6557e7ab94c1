package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/yukikurage/task-hierarchy-api/internal/constants"
)

type Config struct {
	DBDriver             string
	DBHost               string
	DBPort               string
	DBUser               string
	DBPassword           string
	DBName               string
	SQLitePath           string
	RedisHost            string
	RedisPort            string
	SessionSecret        string
	SessionStore         string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	JWTSecret            string
	GinMode              string
	HTTPAddr             string
	OpenAIAPIKey         string
	SeedDefaults         bool
	SeedFile             string
}

const (
	defaultSessionSecret = "default-secret-key-change-me"
	defaultJWTSecret     = "default-jwt-secret-change-me"
)

// SetDefaults registers every configuration key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "taskuser")
	v.SetDefault("DB_PASSWORD", "taskpassword")
	v.SetDefault("DB_NAME", "task_hierarchy")
	v.SetDefault("SQLITE_PATH", "task_hierarchy.db")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("SESSION_STORE", "memory")
	v.SetDefault("SESSION_TTL", constants.DefaultSessionTTL)
	v.SetDefault("SESSION_SWEEP_INTERVAL", constants.DefaultSessionSweepInterval)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("SEED_DEFAULTS", true)
	v.SetDefault("SEED_FILE", "")
}

// Load reads configuration from the environment (and an optional config file
// already set on v) into a Config.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		DBDriver:             strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:               v.GetString("DB_HOST"),
		DBPort:               v.GetString("DB_PORT"),
		DBUser:               v.GetString("DB_USER"),
		DBPassword:           v.GetString("DB_PASSWORD"),
		DBName:               v.GetString("DB_NAME"),
		SQLitePath:           v.GetString("SQLITE_PATH"),
		RedisHost:            v.GetString("REDIS_HOST"),
		RedisPort:            v.GetString("REDIS_PORT"),
		SessionSecret:        v.GetString("SESSION_SECRET"),
		SessionStore:         strings.ToLower(v.GetString("SESSION_STORE")),
		SessionTTL:           v.GetDuration("SESSION_TTL"),
		SessionSweepInterval: v.GetDuration("SESSION_SWEEP_INTERVAL"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		GinMode:              v.GetString("GIN_MODE"),
		HTTPAddr:             v.GetString("HTTP_ADDR"),
		OpenAIAPIKey:         v.GetString("OPENAI_API_KEY"),
		SeedDefaults:         v.GetBool("SEED_DEFAULTS"),
		SeedFile:             v.GetString("SEED_FILE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the config is usable.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("config.DB_DRIVER must be one of mysql, postgres, sqlite (got %q)", c.DBDriver)
	}
	switch c.SessionStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("config.SESSION_STORE must be memory or redis (got %q)", c.SessionStore)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config.SESSION_TTL must be positive")
	}
	if c.SessionStore == "memory" && c.SessionSweepInterval <= 0 {
		return fmt.Errorf("config.SESSION_SWEEP_INTERVAL must be positive")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("config.JWT_SECRET is required")
	}
	if c.IsProduction() {
		if c.SessionSecret == defaultSessionSecret || c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("default secrets are not allowed in release mode")
		}
	}
	return nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// RedisAddr returns host:port for the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}
