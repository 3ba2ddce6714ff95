package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration values from environment variables.
// A .env file in the working directory is loaded first if present, without
// overriding variables already set in the process environment.
//
// Recognized variables:
//
//	ADDRESS               HTTP bind address (e.g. ":8080")
//	DATABASE_DSN          PostgreSQL DSN
//	SECRET_KEY            JWT HMAC secret
//	TOKEN_VALIDITY        token lifetime (time.ParseDuration format, e.g. "10h")
//	BCRYPT_COST           bcrypt work factor
//	CORS_ALLOWED_ORIGINS  comma-separated origins
//	GIN_MODE              gin run mode
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("ADDRESS"); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("TOKEN_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.TokenValidityDuration = d
		}
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.BcryptCost = n
		}
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		config.CORSAllowedOrigins = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		config.GinMode = v
	}
}
