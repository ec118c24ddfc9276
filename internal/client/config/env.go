package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "postboard"

type envConfig struct {
	ServerURL      string        `envconfig:"SERVER_URL"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT"`
	DatabaseDSN    string        `envconfig:"DATABASE_DSN"`
	LogLevel       string        `envconfig:"LOG_LEVEL"`
}

// parseEnv loads dotenv (if the file exists) into the process environment
// without overriding variables already set, then overlays cfg with the
// POSTBOARD_* variables. Unset variables keep the current values.
func parseEnv(cfg *Config, dotenv string) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	ec := envConfig{
		ServerURL:      cfg.ServerURL,
		RequestTimeout: cfg.RequestTimeout,
		DatabaseDSN:    cfg.DatabaseDSN,
		LogLevel:       cfg.LogLevel,
	}
	if err := envconfig.Process(envPrefix, &ec); err != nil {
		panic(err)
	}

	cfg.ServerURL = ec.ServerURL
	cfg.RequestTimeout = ec.RequestTimeout
	cfg.DatabaseDSN = ec.DatabaseDSN
	cfg.LogLevel = ec.LogLevel
}
