package config

import (
	"errors"
	"net/url"
	"time"

	configs "github.com/kicklink/kicklink-services/configs"
)

type Config struct {
	DBUrl            string        `env:"DATABASE_URL,required,notEmpty"`
	Port             string        `env:"NOTIFY_SERVICE_PORT" envDefault:"4100"`
	RateLimit        int           `env:"RATE_LIMIT" envDefault:"100"`
	ServiceJWTSecret string        `env:"SERVICE_JWT_SECRET,required,notEmpty"`
	ExpoURL          url.URL       `env:"EXPO_PUSH_URL" envDefault:"https://exp.host/--/api/v2/push/send"`
	ExpoAccessToken  string        `env:"EXPO_ACCESS_TOKEN"`
	PushTimeout      time.Duration `env:"PUSH_TIMEOUT" envDefault:"5s"`
	StoreTimeout     time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	MongoURI         string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017/kicklink"`
	ReceiptTTL       time.Duration `env:"RECEIPT_TTL" envDefault:"720h"`
	NatsURL          string        `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NatsToken        string        `env:"NATS_TOKEN"`
}

func Load() (Config, error) {
	var cfg Config
	if err := configs.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if err := configs.ValidateBaseURL("EXPO_PUSH_URL", c.ExpoURL); err != nil {
		errs = append(errs, err)
	}
	if c.RateLimit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT must be positive"))
	}
	if len(c.ServiceJWTSecret) < 32 {
		errs = append(errs, errors.New("SERVICE_JWT_SECRET must be at least 32 bytes"))
	}
	if c.PushTimeout <= 0 || c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("PUSH_TIMEOUT and STORE_TIMEOUT must be positive"))
	}
	if c.ReceiptTTL <= 0 {
		errs = append(errs, errors.New("RECEIPT_TTL must be positive"))
	}
	return errors.Join(errs...)
}
