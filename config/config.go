package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres" validate:"required"`
	NATS          NATSConfig          `yaml:"nats"`
	List          ListConfig          `yaml:"list" validate:"required"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn" validate:"required"`
}

// NATSConfig holds NATS configuration. An empty URL selects the in-process
// event bus, which is what tests and single-node deployments use.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// ListConfig holds the list parameters the scoring engine depends on.
type ListConfig struct {
	// ScoredWindow is the number of list positions on which partial
	// progress still awards points. Full completions award points at
	// any position.
	ScoredWindow int `yaml:"scored_window" validate:"gt=0"`
	// MaxPoints is the score of a 100% record on position 1.
	MaxPoints float64 `yaml:"max_points" validate:"gt=0"`
	// PositionDecay is the exponential decay rate applied per position.
	PositionDecay float64 `yaml:"position_decay" validate:"gt=0"`
	// PartialBase and PartialDivisor shape how partial progress ramps up
	// between a demon's requirement and 100%.
	PartialBase    float64 `yaml:"partial_base" validate:"gt=0"`
	PartialDivisor float64 `yaml:"partial_divisor" validate:"gt=0"`
}

// ObservabilityConfig holds configuration for metrics and health endpoints.
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
}

// LoadConfig loads the configuration from a YAML file, falling back to
// environment variables when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadConfigFromEnv() (*Config, error) {
	cfg := Config{
		Postgres: PostgresConfig{DSN: os.Getenv("POSTGRES_DSN")},
		NATS:     NATSConfig{URL: os.Getenv("NATS_URL")},
		Observability: ObservabilityConfig{
			MetricsAddress: os.Getenv("METRICS_ADDRESS"),
			Environment:    os.Getenv("APP_ENV"),
		},
	}

	if v := os.Getenv("LIST_SCORED_WINDOW"); v != "" {
		window, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LIST_SCORED_WINDOW %q: %w", v, err)
		}
		cfg.List.ScoredWindow = window
	}
	for _, f := range []struct {
		env  string
		dest *float64
	}{
		{"LIST_MAX_POINTS", &cfg.List.MaxPoints},
		{"LIST_POSITION_DECAY", &cfg.List.PositionDecay},
		{"LIST_PARTIAL_BASE", &cfg.List.PartialBase},
		{"LIST_PARTIAL_DIVISOR", &cfg.List.PartialDivisor},
	} {
		v := os.Getenv(f.env)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", f.env, v, err)
		}
		*f.dest = parsed
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.List.ScoredWindow == 0 {
		c.List.ScoredWindow = 75
	}
	if c.List.MaxPoints == 0 {
		c.List.MaxPoints = 350.0
	}
	if c.List.PositionDecay == 0 {
		c.List.PositionDecay = 0.035
	}
	if c.List.PartialBase == 0 {
		c.List.PartialBase = 5.0
	}
	if c.List.PartialDivisor == 0 {
		c.List.PartialDivisor = 10.0
	}
	if c.Observability.MetricsAddress == "" {
		c.Observability.MetricsAddress = ":9090"
	}
}

// Validate checks the configuration for missing or out-of-range values.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
