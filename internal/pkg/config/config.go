package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the portal API server's configuration.
type Config struct {
	Port          string        `env:"PORT,            default=8080"`
	Env           string        `env:"ENV,             default=development"`
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,       default=24h"`
	LogLevel      string        `env:"LOG_LEVEL,       default=info"`
	AuthRateLimit float64       `env:"AUTH_RATE_LIMIT, default=5"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=rental_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

// ClientConfig configures the command-line client's session.
type ClientConfig struct {
	LogLevel string `env:"LOG_LEVEL, default=warn"`

	// Store is where the session record lives: file, memory or redis.
	Store   string `env:"SESSION_STORE,   default=file"`
	File    string `env:"SESSION_FILE"`
	Key     string `env:"SESSION_KEY,     default=user"`
	Profile string `env:"SESSION_PROFILE, default=default"`

	// Backend is the authority sessions come from: simulated or http.
	Backend          string        `env:"SESSION_BACKEND,        default=simulated"`
	APIURL           string        `env:"PORTAL_API_URL,         default=http://localhost:8080"`
	JWTSecret        string        `env:"JWT_SECRET,             default=simulated-secret"`
	AuthDelay        time.Duration `env:"SIMULATED_AUTH_DELAY,   default=1s"`
	UpdateDelay      time.Duration `env:"SIMULATED_UPDATE_DELAY, default=500ms"`
	OperationTimeout time.Duration `env:"SESSION_OP_TIMEOUT,     default=30s"`
	Revalidate       bool          `env:"SESSION_REVALIDATE,     default=false"`

	Redis RedisConfig
}

// Load reads the server configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads the server configuration through l.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.JWTSecret == "" && cfg.Env != "development" {
		return nil, errors.New("config: JWT_SECRET is required outside development")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "development-secret"
	}
	return &cfg, nil
}

// LoadClient reads the client configuration from environment variables.
func LoadClient(ctx context.Context) (*ClientConfig, error) {
	return LoadClientFrom(ctx, envconfig.OsLookuper())
}

// LoadClientFrom reads the client configuration through l.
func LoadClientFrom(ctx context.Context, l envconfig.Lookuper) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch cfg.Store {
	case "file", "memory", "redis":
	default:
		return nil, fmt.Errorf("config: unknown SESSION_STORE %q", cfg.Store)
	}
	switch cfg.Backend {
	case "simulated", "http":
	default:
		return nil, fmt.Errorf("config: unknown SESSION_BACKEND %q", cfg.Backend)
	}
	if cfg.Store == "file" && cfg.File == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("config: SESSION_FILE unset and no user config dir: %w", err)
		}
		cfg.File = filepath.Join(dir, "rental-portal", cfg.Profile+".json")
	}
	return &cfg, nil
}
