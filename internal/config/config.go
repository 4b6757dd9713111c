// config.go
//
// Growth tracking for small software products: apps, metric history, action plans and AI suggestions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of traction-tracker.
// traction-tracker is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// traction-tracker is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with traction-tracker.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Auth modes
const (
	AuthModeAuthorizer = "authorizer"
	AuthModeJWT        = "jwt"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType                  string // mysql, postgres, sqlite, sqlite-pure, sqlserver
	DBHost                  string
	DBPort                  string
	DBDatabase              string
	DBAppUser               string
	DBAppPassword           string
	DBAppConnectionLimit    int
	DBPublicUser            string
	DBPublicPassword        string
	DBPublicConnectionLimit int
	DBLogLevel              string

	// Authentication
	AuthMode      string
	AuthzURL      string
	AuthzClientID string
	AuthJWTSecret string

	// AI text generation
	AIBaseURL string
	AIAPIKey  string
	AIModel   string
	AITimeout time.Duration

	// Public projection cache
	CacheDriver   string // none, memory, redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Domain events
	AMQPURL        string
	EventsExchange string

	// Suggestion rate limiting, per user
	SuggestionsRate  float64
	SuggestionsBurst int

	// Forces isPublic=true on every app update
	ForcePublicOnUpdate bool

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables, after applying an
// optional .env file named by ENV_FILE (or ./.env when present).
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                    getEnv("PORT", "3000"),
		DBType:                  getEnv("DB_TYPE", "mysql"),
		DBHost:                  getEnv("DB_HOST", "localhost"),
		DBPort:                  getEnv("DB_PORT", "3306"),
		DBDatabase:              getEnv("DB_DATABASE", ""),
		DBAppUser:               getEnv("DB_APP_USER", ""),
		DBAppPassword:           getEnv("DB_APP_PASSWORD", ""),
		DBAppConnectionLimit:    getEnvAsInt("DB_APP_CONNECTION_LIMIT", 10),
		DBPublicUser:            getEnv("DB_PUBLIC_USER", ""),
		DBPublicPassword:        getEnv("DB_PUBLIC_PASSWORD", ""),
		DBPublicConnectionLimit: getEnvAsInt("DB_PUBLIC_CONNECTION_LIMIT", 5),
		DBLogLevel:              getEnv("DB_LOG_LEVEL", "warn"),
		AuthMode:                strings.ToLower(getEnv("AUTH_MODE", AuthModeAuthorizer)),
		AuthzURL:                getEnv("AUTHZ_URL", ""),
		AuthzClientID:           getEnv("AUTHZ_CLIENT_ID", ""),
		AuthJWTSecret:           getEnv("AUTH_JWT_SECRET", ""),
		AIBaseURL:               strings.TrimSuffix(getEnv("AI_BASE_URL", "https://api.openai.com/v1"), "/"),
		AIAPIKey:                getEnv("AI_API_KEY", ""),
		AIModel:                 getEnv("AI_MODEL", "gpt-4o-mini"),
		AITimeout:               getEnvAsDuration("AI_TIMEOUT", 30*time.Second),
		CacheDriver:             strings.ToLower(getEnv("CACHE_DRIVER", "none")),
		RedisAddr:               getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		RedisDB:                 getEnvAsInt("REDIS_DB", 0),
		CacheTTL:                getEnvAsDuration("CACHE_TTL", 30*time.Second),
		AMQPURL:                 getEnv("AMQP_URL", ""),
		EventsExchange:          getEnv("EVENTS_EXCHANGE", "traction.events"),
		SuggestionsRate:         getEnvAsFloat("SUGGESTIONS_RATE", 0.2),
		SuggestionsBurst:        getEnvAsInt("SUGGESTIONS_BURST", 3),
		ForcePublicOnUpdate:     getEnvAsBool("FORCE_PUBLIC_ON_UPDATE", true),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields
func (cfg *Config) Validate() error {
	if cfg.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.DBAppUser == "" && !cfg.IsSQLite() {
		return fmt.Errorf("DB_APP_USER is required")
	}

	switch cfg.AuthMode {
	case AuthModeAuthorizer:
		if cfg.AuthzURL == "" {
			return fmt.Errorf("AUTHZ_URL is required")
		}
		if cfg.AuthzClientID == "" {
			return fmt.Errorf("AUTHZ_CLIENT_ID is required")
		}
	case AuthModeJWT:
		if cfg.AuthJWTSecret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is required when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("unsupported AUTH_MODE: %s", cfg.AuthMode)
	}

	switch cfg.CacheDriver {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("unsupported CACHE_DRIVER: %s", cfg.CacheDriver)
	}

	return nil
}

// IsSQLite reports whether the configured database is a SQLite file
func (cfg *Config) IsSQLite() bool {
	return cfg.DBType == "sqlite" || cfg.DBType == "sqlite-pure"
}

// PublicCredentials returns the credentials for the read-only public pool,
// falling back to the app credentials.
func (cfg *Config) PublicCredentials() (user, password string) {
	if cfg.DBPublicUser == "" {
		return cfg.DBAppUser, cfg.DBAppPassword
	}
	return cfg.DBPublicUser, cfg.DBPublicPassword
}

func loadEnvFile() error {
	if name := os.Getenv("ENV_FILE"); name != "" {
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("failed to load ENV_FILE %s: %w", name, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
