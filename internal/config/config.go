package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEmailUser = "default@example.com"
	defaultEmailPass = "default_password"
)

type Config struct {
	AppName  string
	LogLevel string
	Server   ServerConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	JWT      JWTConfig
	OTP      OTPConfig
}

type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	URL         string
	MaxConns    int32
	AutoMigrate bool
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

type JWTConfig struct {
	SecretKey string
}

type OTPConfig struct {
	Expiry time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppName:  getEnv("APP_NAME", "X-ERP"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Addr:         getEnv("SERVER_ADDR", "localhost:3100"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			URL:         getEnv("DATABASE_URL", ""),
			MaxConns:    int32(getEnvAsInt("DB_MAX_CONNS", 5)),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			User:     getEnv("EMAIL_USER", defaultEmailUser),
			Password: getEnv("EMAIL_PASS", defaultEmailPass),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", ""),
		},
		OTP: OTPConfig{
			Expiry: getEnvAsDuration("OTP_EXPIRY", time.Minute),
		},
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if cfg.Database.MaxConns < 1 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be at least 1")
	}

	// An empty secret leaves the auth middleware in pass-through mode.
	if cfg.JWT.SecretKey != "" && len(cfg.JWT.SecretKey) < 32 {
		return nil, fmt.Errorf("JWT_SECRET_KEY must be at least 32 bytes (256 bits)")
	}

	return cfg, nil
}

// Warnings lists settings that fell back to placeholder values unsuitable for
// production.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.SMTP.User == defaultEmailUser {
		warnings = append(warnings, "EMAIL_USER is not set, using placeholder sender address")
	}
	if c.SMTP.Password == defaultEmailPass {
		warnings = append(warnings, "EMAIL_PASS is not set, using placeholder password")
	}
	if c.JWT.SecretKey == "" {
		warnings = append(warnings, "JWT_SECRET_KEY is not set, admin routes are not access controlled")
	}
	return warnings
}

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
