package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable that points at an optional
// YAML config file.
const ConfigFileEnv = "CAMPUSBOARD_CONFIG"

type Config struct {
	// Server
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// Profile storage
	DatabasePath string `yaml:"database_path"`

	// Auth
	BcryptCost int `yaml:"bcrypt_cost"`

	// Rate Limiting
	LoginRateLimit   int           `yaml:"login_rate_limit"`   // per window
	PostRateLimit    int           `yaml:"post_rate_limit"`    // per window
	CommentRateLimit int           `yaml:"comment_rate_limit"` // per window
	RateLimitWindow  time.Duration `yaml:"rate_limit_window"`

	// Notifications
	ToastTTL      time.Duration `yaml:"toast_ttl"`
	ToastCapacity int           `yaml:"toast_capacity"`

	// Logging
	LogLevel       string `yaml:"log_level"`
	LogDevelopment bool   `yaml:"log_development"`
}

func Default() *Config {
	return &Config{
		Port:             8080,
		Host:             "127.0.0.1",
		DatabasePath:     "campusboard.db",
		BcryptCost:       10,
		LoginRateLimit:   10,
		PostRateLimit:    20,
		CommentRateLimit: 60,
		RateLimitWindow:  time.Hour,
		ToastTTL:         10 * time.Second,
		ToastCapacity:    20,
		LogLevel:         "info",
	}
}

// Load builds the configuration from defaults, a .env file in the working
// directory, the YAML file named by CAMPUSBOARD_CONFIG, and finally the
// process environment. Later sources win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv(ConfigFileEnv)); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnvInt("PORT", cfg.Port)
	cfg.Host = getEnv("HOST", cfg.Host)
	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", cfg.BcryptCost)
	cfg.LoginRateLimit = getEnvInt("LOGIN_RATE_LIMIT", cfg.LoginRateLimit)
	cfg.PostRateLimit = getEnvInt("POST_RATE_LIMIT", cfg.PostRateLimit)
	cfg.CommentRateLimit = getEnvInt("COMMENT_RATE_LIMIT", cfg.CommentRateLimit)
	cfg.RateLimitWindow = getEnvDuration("RATE_LIMIT_WINDOW", cfg.RateLimitWindow)
	cfg.ToastTTL = getEnvDuration("TOAST_TTL", cfg.ToastTTL)
	cfg.ToastCapacity = getEnvInt("TOAST_CAPACITY", cfg.ToastCapacity)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogDevelopment = getEnvBool("LOG_DEVELOPMENT", cfg.LogDevelopment)

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
