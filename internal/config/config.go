package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the server and console. Values come from
// the environment, with an optional .env file loaded first. Flags passed on
// the command line take precedence over both.
type Config struct {
	DBPath    string
	Addr      string
	JWTSecret string
}

// Load reads .env (if present) and the environment. A missing .env file is
// not an error, the environment alone is enough.
func Load() *Config {
	godotenv.Load()

	return &Config{
		DBPath:    getEnv("APPLIANCETRACK_DB", "appliancetrack.db"),
		Addr:      getEnv("APPLIANCETRACK_ADDR", ":8080"),
		JWTSecret: getEnv("APPLIANCETRACK_JWT_SECRET", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
