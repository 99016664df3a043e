package sweepsvc

import (
	"errors"
	"net/url"
	"time"

	configs "github.com/kicklink/kicklink-services/configs"
)

type Config struct {
	DBUrl            string        `env:"DATABASE_URL,required,notEmpty"`
	NotifierURL      url.URL       `env:"NOTIFIER_URL,required"`
	ServiceJWTSecret string        `env:"SERVICE_JWT_SECRET,required,notEmpty"`
	Interval         time.Duration `env:"SWEEP_INTERVAL" envDefault:"30s"`
	Batch            int           `env:"SWEEP_BATCH" envDefault:"20"`
	Grace            time.Duration `env:"SWEEP_GRACE" envDefault:"30s"`
	ReclaimAfter     time.Duration `env:"SWEEP_RECLAIM_AFTER" envDefault:"2m"`
	StoreTimeout     time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	NotifierTimeout  time.Duration `env:"NOTIFIER_TIMEOUT" envDefault:"20s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := configs.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	var errs []error
	if err := configs.ValidateBaseURL("NOTIFIER_URL", cfg.NotifierURL); err != nil {
		errs = append(errs, err)
	}
	if cfg.Interval <= 0 || cfg.Batch <= 0 {
		errs = append(errs, errors.New("SWEEP_INTERVAL and SWEEP_BATCH must be positive"))
	}
	// a claim must not expire while its notifier call is still running
	if cfg.NotifierTimeout <= 0 || cfg.NotifierTimeout >= cfg.ReclaimAfter {
		errs = append(errs, errors.New("NOTIFIER_TIMEOUT must be positive and shorter than SWEEP_RECLAIM_AFTER"))
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Options() Options {
	return Options{
		Batch:        c.Batch,
		Grace:        c.Grace,
		ReclaimAfter: c.ReclaimAfter,
		StoreTimeout: c.StoreTimeout,
	}
}
