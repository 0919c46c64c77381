package config

import (
	"os"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from environment variables, loading a local
// .env file first when one exists. Variables:
//
//	PORT          HTTP port (bound on all interfaces)
//	DATABASE_DSN  PostgreSQL DSN
//	JWT_SECRET    token signing secret
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if port := os.Getenv("PORT"); port != "" {
		config.EndpointAddr = ":" + port
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		config.DatabaseDSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.SecretKey = secret
	}
}
