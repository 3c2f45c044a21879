// internal/config/config.go
//
// Typed process configuration.
// Sources, lowest to highest precedence:
//   - env-default tags below
//   - the optional YAML file passed with --config
//   - environment variables (a .env file in the working directory is loaded first)

package config

import (
	"fmt"
	"net"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Store backends accepted in STORE.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

type Config struct {
	LogLevel       string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	AppEnv         string        `yaml:"app-env" env:"APP_ENV" env-default:"development"`
	Port           string        `yaml:"port" env:"PORT" env-default:"5175"`
	ClientOrigin   string        `yaml:"client-origin" env:"CLIENT_ORIGIN" env-default:"http://localhost:5173"`
	RequestTimeout time.Duration `yaml:"request-timeout" env:"REQUEST_TIMEOUT" env-default:"15s"`

	Store      string        `yaml:"store" env:"STORE" env-default:"memory"`
	SQLitePath string        `yaml:"sqlite-path" env:"SQLITE_PATH" env-default:"data/helper.db"`
	Redis      Redis         `yaml:"redis"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"SESSION_TTL" env-default:"168h"`

	JWTSecret  string `yaml:"jwt-secret" env:"JWT_SECRET" env-default:"dev_secret_change_me"`
	CookieName string `yaml:"cookie-name" env:"COOKIE_NAME" env-default:"helper_session"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Addr returns host:port for the Redis client.
func (that *Redis) Addr() string {
	return net.JoinHostPort(that.Host, that.Port)
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// Load reads the configuration. path may be empty to use env only.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	switch cfg.Store {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return nil, fmt.Errorf("unknown store %q (want memory, sqlite or redis)", cfg.Store)
	}
	return cfg, nil
}
