package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration, parsed from environment variables.
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	DBPath     string `env:"DB_PATH" envDefault:"cryptofolio.db"`

	StaticDir     string `env:"STATIC_DIR" envDefault:"./web"`
	BootstrapPath string `env:"BOOTSTRAP_PATH" envDefault:"./web/cp.json"`

	CoinGeckoURL    string        `env:"COINGECKO_URL" envDefault:"https://api.coingecko.com/api/v3"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"5m"`
	SearchDebounce  time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"400ms"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
