package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
)

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Gin     GinConfig
	Session SessionConfig
	Refresh RefreshConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

// GinConfig holds the upstream API location and the service account.
type GinConfig struct {
	URL      string        `env:"GIN_API_URL,     default=http://localhost:9000/v1" validate:"required,url"`
	Timeout  time.Duration `env:"GIN_API_TIMEOUT, default=30s"                      validate:"gt=0"`
	Email    string        `env:"GIN_USER_EMAIL"`
	Password string        `env:"GIN_USER_PASSWORD"`
	Name     string        `env:"GIN_USER_NAME"`
	AutoAuth bool          `env:"AUTO_AUTH,       default=true"`
}

// Credentials returns the service account as a domain value.
func (g GinConfig) Credentials() domain.Credentials {
	return domain.Credentials{Identifier: g.Email, Password: g.Password, Name: g.Name}
}

type SessionConfig struct {
	AuthTimeout  time.Duration `env:"AUTH_TIMEOUT,          default=15s"`
	TokenStore   string        `env:"TOKEN_STORE,           default=redis"            validate:"oneof=redis memory"`
	TokenTTL     time.Duration `env:"TOKEN_TTL,             default=1h"`
	TokenKey     string        `env:"TOKEN_CACHE_KEY,       default=gin_access_token"`
	ProfileStore string        `env:"PROFILE_STORE,         default=mongo"            validate:"oneof=mongo memory"`
	ExpiryPolicy string        `env:"SESSION_EXPIRY_POLICY, default=presence"         validate:"oneof=presence jwt_exp"`

	// RequireClient puts dashboard, proxy and service session routes behind
	// the caller's own bearer token, checked against the Gin API.
	RequireClient   bool          `env:"REQUIRE_CLIENT_SESSION, default=false"`
	ClientVerifyTTL time.Duration `env:"CLIENT_VERIFY_TTL,      default=1m"`
}

type RefreshConfig struct {
	SnapshotTTL time.Duration `env:"SNAPSHOT_TTL,     default=5m"`
	Interval    time.Duration `env:"REFRESH_INTERVAL, default=0s"`
	Workers     int           `env:"REFRESH_WORKERS,  default=4"  validate:"gte=0"`
	Idsatker    int           `env:"REFRESH_IDSATKER, default=0"  validate:"gte=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=dashboard_gateway"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// NeedsRedis reports whether any component is configured to use Redis.
func (c *Config) NeedsRedis() bool {
	return c.Session.TokenStore == StoreRedis || c.Refresh.SnapshotTTL > 0
}

// NeedsMongo reports whether the profile repository lives in MongoDB.
func (c *Config) NeedsMongo() bool {
	return c.Session.ProfileStore == StoreMongo
}

// Validate checks value constraints that envconfig cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration from lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
