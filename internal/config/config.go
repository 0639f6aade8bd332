package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env      string `env:"ENV" env-required:"true"`
	HTTP     HTTPConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	JWT      JWTConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER" env-default:"postgres"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST" env-default:"localhost"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME" env-default:"postgres"`
	Password       string        `env:"POSTGRES_PASSWORD" env-default:""`
	Database       string        `env:"POSTGRES_DATABASE" env-default:"taskmanager"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

// RedisConfig is optional. An empty address disables both
// the task-list cache and the auth rate limiter.
type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR" env-default:""`
	Password       string        `env:"REDIS_PASSWORD" env-default:""`
	DB             int           `env:"REDIS_DB" env-default:"0"`
	CacheTTL       time.Duration `env:"REDIS_CACHE_TTL" env-default:"30s"`
	AuthRateLimit  int           `env:"AUTH_RATE_LIMIT" env-default:"10"`
	AuthRateWindow time.Duration `env:"AUTH_RATE_WINDOW" env-default:"1m"`
}

type JWTConfig struct {
	Issuer       string        `env:"JWT_ISSUER" env-default:"go-task-manager"`
	SigningKey   string        `env:"JWT_SIGNING_KEY" env-required:"true"`
	TokenTTL     time.Duration `env:"JWT_TOKEN_TTL" env-default:"24h"`
	RequireToken bool          `env:"AUTH_REQUIRE_TOKEN" env-default:"false"`
}
