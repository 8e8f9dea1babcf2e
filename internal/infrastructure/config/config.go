package config

import (
	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// Storage
	DataFile string `env:"BANKBOOK_DATA_FILE" envDefault:"bank_data.json"`

	// First account number allocated when the ledger is empty.
	AccountSeed uint64 `env:"BANKBOOK_ACCOUNT_SEED" envDefault:"100001"`

	// Logging
	LogLevel  string `env:"BANKBOOK_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"BANKBOOK_LOG_FORMAT" envDefault:"console"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
