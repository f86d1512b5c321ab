package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config contains runtime configuration read from the environment. The input
// file stays a positional command-line argument; only ambient concerns live
// here.
type Config struct {
	// LogLevel sets the diagnostic verbosity on stderr.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// KafkaBrokers enables the Kafka notification sink when non-empty.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// KafkaTopic is the topic rejected-event and frozen-account
	// notifications are published to.
	KafkaTopic string `env:"KAFKA_TOPIC" envDefault:"settlement.notifications"`
}

// Load reads Config from environment variables, honoring a .env file in the
// working directory when one exists.
func Load() (Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
