// Package config содержит логику чтения конфигурации сервиса учёта смен.
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	defaultRunAddress    = "localhost:8080"
	defaultLocation      = "America/Bogota"
	defaultReportWorkers = 4
)

// Config содержит параметры конфигурации сервиса учёта смен.
type Config struct {
	RunAddress          string   `env:"RUN_ADDRESS"`
	DatabaseURI         string   `env:"DATABASE_URI"`
	ExchangeRateAddress string   `env:"EXCHANGE_RATE_ADDRESS"`
	Location            string   `env:"LOCATION"`
	AllowedOrigins      []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	ReportWorkers       int      `env:"REPORT_WORKERS"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Значения из окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envExchangeAddress := cfg.ExchangeRateAddress
	envLocation := cfg.Location
	envOrigins := cfg.AllowedOrigins
	envReportWorkers := cfg.ReportWorkers

	var origins string

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.ExchangeRateAddress, "r", "", "exchange rate service address")
	flag.StringVar(&cfg.Location, "l", defaultLocation, "time zone of schedule start times")
	flag.StringVar(&origins, "o", "", "comma separated list of allowed CORS origins")
	flag.IntVar(&cfg.ReportWorkers, "w", defaultReportWorkers, "workers evaluated in parallel by agency reports")

	flag.Parse()

	cfg.AllowedOrigins = splitOrigins(origins)

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envExchangeAddress != "" {
		cfg.ExchangeRateAddress = envExchangeAddress
	}
	if envLocation != "" {
		cfg.Location = envLocation
	}
	if len(envOrigins) > 0 {
		cfg.AllowedOrigins = envOrigins
	}
	if envReportWorkers > 0 {
		cfg.ReportWorkers = envReportWorkers
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.Location == "" {
		cfg.Location = defaultLocation
	}
	if cfg.ReportWorkers <= 0 {
		cfg.ReportWorkers = defaultReportWorkers
	}

	return cfg, nil
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
