package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config drives the auth API server.
type Config struct {
	Port      string `env:"PORT,       default=5000"`
	Env       string `env:"ENV,        default=development"`
	JWTSecret string `env:"JWT_SECRET, required"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	Auth   AuthConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Events EventsConfig
}

type AuthConfig struct {
	TokenTTL      time.Duration `env:"JWT_EXPIRE,            default=24h"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL,       default=10m"`
	ResetURL      string        `env:"RESET_PASSWORD_URL,    default=http://localhost:3000/reset-password"`
	RateLimit     float64       `env:"AUTH_RATE_LIMIT,       default=5"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=lms"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// KafkaConfig is optional; without brokers auth events are only logged.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"KAFKA_AUTH_TOPIC, default=lms.auth.events"`
}

type EventsConfig struct {
	Workers int `env:"EVENT_WORKERS, default=4"`
}

// PortalConfig drives the lmsctl portal client.
type PortalConfig struct {
	APIURL         string        `env:"LMS_API_URL,        default=http://localhost:5000/api"`
	TokenStore     string        `env:"LMS_TOKEN_STORE,    default=file"`
	TokenPath      string        `env:"LMS_TOKEN_PATH"`
	RedisAddr      string        `env:"LMS_REDIS_ADDR,     default=localhost:6379"`
	RequestTimeout time.Duration `env:"LMS_REQUEST_TIMEOUT, default=15s"`
	LogLevel       string        `env:"LOG_LEVEL,          default=warn"`
}

// Load reads server configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// LoadPortal reads the portal client configuration.
func LoadPortal(ctx context.Context) (*PortalConfig, error) {
	var cfg PortalConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
