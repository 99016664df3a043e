package config

import (
	"errors"

	configs "github.com/kicklink/kicklink-services/configs"
)

type Config struct {
	Port        string   `env:"SOCKET_SERVICE_PORT" envDefault:"4200"`
	RateLimit   int      `env:"RATE_LIMIT" envDefault:"100"`
	NatsURL     string   `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NatsToken   string   `env:"NATS_TOKEN"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

func Load() (Config, error) {
	var cfg Config
	if err := configs.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit <= 0 {
		return Config{}, errors.New("RATE_LIMIT must be positive")
	}
	return cfg, nil
}
