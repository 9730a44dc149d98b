package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all client configuration.
type Config struct {
	API      APIConfig
	Session  SessionConfig
	Log      LogConfig
	Lookup   LookupConfig
	Selector SelectorConfig
	Archive  ArchiveConfig
	Fake     FakeServerConfig
}

// APIConfig holds the repository endpoint settings.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig selects where the bearer token is kept.
type SessionConfig struct {
	Backend  string `mapstructure:"backend"`
	FilePath string `mapstructure:"file_path"`
	RedisURL string `mapstructure:"redis_url"`
	Key      string `mapstructure:"key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LookupConfig bounds the per-row version size fan-out.
type LookupConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// SelectorConfig holds combo-box timing.
type SelectorConfig struct {
	BlurDelay time.Duration `mapstructure:"blur_delay"`
}

// ArchiveConfig holds the S3 archive target.
type ArchiveConfig struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// FakeServerConfig holds settings for the local fake backend.
type FakeServerConfig struct {
	Port      string `mapstructure:"port"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Session backends.
const (
	SessionBackendFile   = "file"
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Load reads configuration from environment variables with the DOCREPO_
// prefix, layered over an optional config file named by DOCREPO_CONFIG.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCREPO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.base_url", "http://127.0.0.1:8000")
	v.SetDefault("api.timeout", "30s")

	v.SetDefault("session.backend", SessionBackendFile)
	v.SetDefault("session.file_path", defaultTokenPath())
	v.SetDefault("session.redis_url", "redis://localhost:6379/0")
	v.SetDefault("session.key", "default")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("lookup.concurrency", 4)
	v.SetDefault("selector.blur_delay", "100ms")

	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.prefix", "docrepo")

	v.SetDefault("fake.port", ":8000")
	v.SetDefault("fake.jwt_secret", "change-me-in-production")

	envBindings := map[string]string{
		"api.base_url":        "DOCREPO_API_BASE_URL",
		"api.timeout":         "DOCREPO_API_TIMEOUT",
		"session.backend":     "DOCREPO_SESSION_BACKEND",
		"session.file_path":   "DOCREPO_SESSION_FILE_PATH",
		"session.redis_url":   "DOCREPO_SESSION_REDIS_URL",
		"session.key":         "DOCREPO_SESSION_KEY",
		"log.level":           "DOCREPO_LOG_LEVEL",
		"log.format":          "DOCREPO_LOG_FORMAT",
		"lookup.concurrency":  "DOCREPO_LOOKUP_CONCURRENCY",
		"selector.blur_delay": "DOCREPO_SELECTOR_BLUR_DELAY",
		"archive.region":      "DOCREPO_ARCHIVE_REGION",
		"archive.bucket":      "DOCREPO_ARCHIVE_BUCKET",
		"archive.endpoint":    "DOCREPO_ARCHIVE_ENDPOINT",
		"archive.access_key":  "DOCREPO_ARCHIVE_ACCESS_KEY",
		"archive.secret_key":  "DOCREPO_ARCHIVE_SECRET_KEY",
		"archive.prefix":      "DOCREPO_ARCHIVE_PREFIX",
		"fake.port":           "DOCREPO_FAKE_PORT",
		"fake.jwt_secret":     "DOCREPO_FAKE_JWT_SECRET",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if path := os.Getenv("DOCREPO_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL: strings.TrimRight(v.GetString("api.base_url"), "/"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Session: SessionConfig{
			Backend:  strings.ToLower(v.GetString("session.backend")),
			FilePath: v.GetString("session.file_path"),
			RedisURL: v.GetString("session.redis_url"),
			Key:      v.GetString("session.key"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Lookup: LookupConfig{
			Concurrency: v.GetInt("lookup.concurrency"),
		},
		Selector: SelectorConfig{
			BlurDelay: v.GetDuration("selector.blur_delay"),
		},
		Archive: ArchiveConfig{
			Region:    v.GetString("archive.region"),
			Bucket:    v.GetString("archive.bucket"),
			Endpoint:  v.GetString("archive.endpoint"),
			AccessKey: v.GetString("archive.access_key"),
			SecretKey: v.GetString("archive.secret_key"),
			Prefix:    strings.Trim(v.GetString("archive.prefix"), "/"),
		},
		Fake: FakeServerConfig{
			Port:      v.GetString("fake.port"),
			JWTSecret: v.GetString("fake.jwt_secret"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Backend {
	case SessionBackendFile, SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.Lookup.Concurrency < 1 {
		c.Lookup.Concurrency = 1
	}
	return nil
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".docrepo", "token")
	}
	return filepath.Join(home, ".docrepo", "token")
}
