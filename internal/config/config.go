package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	// prometheus
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// tracing
	TracingEnabled bool `toml:"tracing_enabled"`
	// classifier
	ClassifierBaseURL string `toml:"classifier_base_url"`
	// outcome resolution
	OutcomeOverrideConfidence float64 `toml:"outcome_override_confidence"`
	OutcomeMinAgeHours        int     `toml:"outcome_min_age_hours"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var cfgToml Toml
	if _, err := toml.DecodeFile(path, &cfgToml); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := cfgToml.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env %s not found in %s", env, path)
	}

	cfg.Environment = env
	return cfg, nil
}
