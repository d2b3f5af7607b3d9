package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	JWTSecret   string        `env:"JWT_SECRET, required"`
	TokenTTL    time.Duration `env:"JWT_TTL,      default=24h"`
	BcryptCost  int           `env:"BCRYPT_COST,  default=12"`
	HashWorkers int           `env:"HASH_WORKERS, default=0"`
	// PublicPaths extends the built-in public routes, e.g. "/status,/docs/*".
	PublicPaths []string `env:"AUTH_PUBLIC_PATHS"`

	// Bootstrap admin, created at startup when both are set.
	AdminName     string `env:"ADMIN_NAME, default=Administrator"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=taskflow"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
// A .env file in the working directory is applied first when present;
// variables already set in the environment take precedence over it.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return process(ctx, envconfig.OsLookuper())
}

func process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}
