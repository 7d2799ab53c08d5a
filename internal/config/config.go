package config

import (
	"os"
	"strconv"
	"time"

	"goeda/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Cache    CacheConfig    `yaml:"cache"`
	Admin    AdminConfig    `yaml:"admin"`
	Data     DataConfig     `yaml:"data"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string `yaml:"port"`
	GinMode     string `yaml:"gin_mode"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// MaxUploadBytes returns the upload limit in bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// DatabaseConfig holds database connection settings. Driver is sqlite,
// postgres or memory.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

// StorageConfig holds file system paths
type StorageConfig struct {
	UploadDir string `yaml:"upload_dir"`
}

// CacheConfig holds frame and report cache settings
type CacheConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

// AdminConfig holds the metrics/pprof listener settings
type AdminConfig struct {
	Port      string `yaml:"port"`
	Enabled   bool   `yaml:"enabled"`
	RateLimit int    `yaml:"rate_limit"` // requests per minute per client
}

// DataConfig holds data processing settings
type DataConfig struct {
	LenientNumbers bool   `yaml:"lenient_numbers"`
	Sheet          string `yaml:"sheet"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8501",
			GinMode:     "release",
			MaxUploadMB: 50,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			URL:    "file:goeda.db?_pragma=busy_timeout(5000)",
		},
		Storage: StorageConfig{UploadDir: "./data/uploads"},
		Cache:   CacheConfig{TTL: 30 * time.Minute},
		Admin: AdminConfig{
			Port:      "6060",
			Enabled:   true,
			RateLimit: 120,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration: defaults, then the YAML file named by CONFIG_FILE
// (if any), then environment variables, and validates the result.
func Load() (*Config, error) {
	config := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	applyEnv(config)

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadFile(path string, config *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(raw, config); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "failed to parse config file %s", path))
	}
	return nil
}

func applyEnv(c *Config) {
	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Server.GinMode = getEnvOrDefault("GIN_MODE", c.Server.GinMode)
	c.Server.MaxUploadMB = getEnvIntOrDefault("MAX_UPLOAD_MB", c.Server.MaxUploadMB)

	c.Database.Driver = getEnvOrDefault("DATABASE_DRIVER", c.Database.Driver)
	c.Database.URL = getEnvOrDefault("DATABASE_URL", c.Database.URL)

	c.Storage.UploadDir = getEnvOrDefault("UPLOAD_DIR", c.Storage.UploadDir)

	c.Cache.TTL = getEnvDurationOrDefault("CACHE_TTL", c.Cache.TTL)
	c.Cache.RedisAddr = getEnvOrDefault("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = getEnvOrDefault("REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = getEnvIntOrDefault("REDIS_DB", c.Cache.RedisDB)

	c.Admin.Port = getEnvOrDefault("ADMIN_PORT", c.Admin.Port)
	c.Admin.Enabled = getEnvBoolOrDefault("ADMIN_ENABLED", c.Admin.Enabled)
	c.Admin.RateLimit = getEnvIntOrDefault("ADMIN_RATE_LIMIT", c.Admin.RateLimit)

	c.Data.LenientNumbers = getEnvBoolOrDefault("LENIENT_NUMBERS", c.Data.LenientNumbers)
	c.Data.Sheet = getEnvOrDefault("EXCEL_SHEET", c.Data.Sheet)

	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Pretty = getEnvBoolOrDefault("LOG_PRETTY", c.Log.Pretty)
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	switch config.Database.Driver {
	case "memory":
	case "sqlite", "postgres":
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the " + config.Database.Driver + " driver")
		}
	default:
		return errors.ConfigInvalid("DATABASE_DRIVER must be sqlite, postgres or memory")
	}
	if config.Storage.UploadDir == "" {
		return errors.ConfigInvalid("upload directory is required")
	}
	if config.Cache.TTL < 0 {
		return errors.ConfigInvalid("CACHE_TTL cannot be negative")
	}
	if config.Admin.Enabled && config.Admin.Port == "" {
		return errors.ConfigInvalid("ADMIN_PORT is required when the admin listener is enabled")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
