package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration, populated from the environment
type Config struct {
	Env  string `envconfig:"APP_ENV" default:"local"`
	Port int    `envconfig:"PORT" default:"8080"`

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"127.0.0.1"`
		Port     int    `envconfig:"DB_PORT" default:"3306"`
		User     string `envconfig:"DB_USER" default:"jnucsu"`
		Password string `envconfig:"DB_PASSWORD"`
		Name     string `envconfig:"DB_NAME" default:"jnucsu"`
	}

	Redis struct {
		Host     string `envconfig:"REDIS_HOST" default:"127.0.0.1"`
		Port     int    `envconfig:"REDIS_PORT" default:"6379"`
		Password string `envconfig:"REDIS_PASSWORD"`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
		PoolSize int    `envconfig:"REDIS_POOL_SIZE" default:"10"`
	}

	JWT struct {
		Secret      string `envconfig:"JWT_SECRET" required:"true"`
		ExpiryHours int    `envconfig:"JWT_EXPIRY_HOURS" default:"24"`
	}

	CORS struct {
		AllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000"`
	}

	// IntegrityScanMinutes is the interval of the orphaned-version scan;
	// 0 disables it.
	IntegrityScanMinutes int `envconfig:"INTEGRITY_SCAN_MINUTES" default:"15"`
}

// LoadDotEnv loads .env files with priority: .env.local > .env
// godotenv.Load does NOT overwrite already-set env vars,
// so OS env vars always win, .env.local wins over .env.
// Returns list of files actually loaded.
func LoadDotEnv() []string {
	candidates := []string{".env.local", ".env"}
	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
