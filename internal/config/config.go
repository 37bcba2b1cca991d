package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/box-packer/internal/optimizer"
	"github.com/eugenenazirov/box-packer/internal/storage"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50

	// Container defaults match the front-end's initial form values: a 12x12x12
	// box with a 50-unit weight capacity.
	defaultContainerLength = 12.0
	defaultContainerWidth  = 12.0
	defaultContainerHeight = 12.0
	defaultMaxWeight       = 50.0

	defaultMaxOrderings    = 32
	defaultOptimizeTimeout = 2 * time.Second
)

// Container holds the default container used when a request does not supply
// its own dimensions. MaxWeight <= 0 means unbounded.
type Container struct {
	Length    float64 `yaml:"length"`
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	MaxWeight float64 `yaml:"max_weight"`
}

// Optimizer holds the strategy-search tuning knobs.
type Optimizer struct {
	Workers                int               `yaml:"workers"`
	MaxOrderings           int               `yaml:"max_orderings"`
	Seed                   int64             `yaml:"seed"`
	AllowContainerRotation bool              `yaml:"allow_container_rotation"`
	Timeout                time.Duration     `yaml:"-"`
	Weights                optimizer.Weights `yaml:"weights"`
}

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string             `yaml:"port"`
	Container            Container          `yaml:"container"`
	Optimizer            Optimizer          `yaml:"optimizer"`
	InitialItems         []storage.ItemSpec `yaml:"items"`
	ShutdownGracePeriod  time.Duration      `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    time.Duration      `yaml:"read_header_timeout"`
	WriteTimeout         time.Duration      `yaml:"write_timeout"`
	IdleTimeout          time.Duration      `yaml:"idle_timeout"`
	EnableRequestLogging bool               `yaml:"enable_request_logging"`
	RateLimitRPS         float64            `yaml:"-"`
	RateLimitBurst       int                `yaml:"-"`
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string             `yaml:"port"`
	Container            *Container         `yaml:"container"`
	Optimizer            *yamlOptimizer     `yaml:"optimizer"`
	Items                []storage.ItemSpec `yaml:"items"`
	ShutdownGracePeriod  string             `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string             `yaml:"read_header_timeout"`
	WriteTimeout         string             `yaml:"write_timeout"`
	IdleTimeout          string             `yaml:"idle_timeout"`
	EnableRequestLogging bool               `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit      `yaml:"rate_limit"`
}

// yamlOptimizer represents the optimizer section in YAML.
type yamlOptimizer struct {
	Workers                int               `yaml:"workers"`
	MaxOrderings           int               `yaml:"max_orderings"`
	Seed                   int64             `yaml:"seed"`
	AllowContainerRotation bool              `yaml:"allow_container_rotation"`
	Timeout                string            `yaml:"timeout"`
	Weights                optimizer.Weights `yaml:"weights"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	ContainerStr   *string
	MaxWeight      *float64
	Workers        *int
	MaxOrderings   *int
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
	}

	applyEnvConfig(&cfg)

	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port: defaultPort,
		Container: Container{
			Length:    defaultContainerLength,
			Width:     defaultContainerWidth,
			Height:    defaultContainerHeight,
			MaxWeight: defaultMaxWeight,
		},
		Optimizer: Optimizer{
			MaxOrderings: defaultMaxOrderings,
			Timeout:      defaultOptimizeTimeout,
			Weights:      optimizer.DefaultWeights(),
		},
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.Container != nil {
		cfg.Container = *yamlCfg.Container
	}

	if yamlCfg.Optimizer != nil {
		if yamlCfg.Optimizer.Workers > 0 {
			cfg.Optimizer.Workers = yamlCfg.Optimizer.Workers
		}
		if yamlCfg.Optimizer.MaxOrderings > 0 {
			cfg.Optimizer.MaxOrderings = yamlCfg.Optimizer.MaxOrderings
		}
		if yamlCfg.Optimizer.Seed != 0 {
			cfg.Optimizer.Seed = yamlCfg.Optimizer.Seed
		}
		cfg.Optimizer.AllowContainerRotation = yamlCfg.Optimizer.AllowContainerRotation
		if yamlCfg.Optimizer.Timeout != "" {
			if d, err := time.ParseDuration(yamlCfg.Optimizer.Timeout); err == nil {
				cfg.Optimizer.Timeout = d
			}
		}
		if yamlCfg.Optimizer.Weights != (optimizer.Weights{}) {
			cfg.Optimizer.Weights = yamlCfg.Optimizer.Weights
		}
	}

	if len(yamlCfg.Items) > 0 {
		cfg.InitialItems = yamlCfg.Items
	}

	if yamlCfg.ShutdownGracePeriod != "" {
		if d, err := time.ParseDuration(yamlCfg.ShutdownGracePeriod); err == nil {
			cfg.ShutdownGracePeriod = d
		}
	}

	if yamlCfg.ReadHeaderTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.ReadHeaderTimeout); err == nil {
			cfg.ReadHeaderTimeout = d
		}
	}

	if yamlCfg.WriteTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.WriteTimeout); err == nil {
			cfg.WriteTimeout = d
		}
	}

	if yamlCfg.IdleTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.IdleTimeout); err == nil {
			cfg.IdleTimeout = d
		}
	}

	cfg.EnableRequestLogging = yamlCfg.EnableRequestLogging

	if yamlCfg.RateLimit.RPS >= 0 {
		cfg.RateLimitRPS = yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst >= 0 {
		cfg.RateLimitBurst = yamlCfg.RateLimit.Burst
	}
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if rawDims := strings.TrimSpace(os.Getenv("CONTAINER_DIMS")); rawDims != "" {
		if c, err := parseContainerDims(rawDims); err == nil {
			c.MaxWeight = cfg.Container.MaxWeight
			cfg.Container = c
		}
	}

	if workers := strings.TrimSpace(os.Getenv("OPTIMIZER_WORKERS")); workers != "" {
		if value, err := strconv.Atoi(workers); err == nil && value > 0 {
			cfg.Optimizer.Workers = value
		}
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.ContainerStr != nil && *overrides.ContainerStr != "" {
		c, err := parseContainerDims(*overrides.ContainerStr)
		if err != nil {
			return fmt.Errorf("parse container dimensions: %w", err)
		}
		c.MaxWeight = cfg.Container.MaxWeight
		cfg.Container = c
	}

	if overrides.MaxWeight != nil && *overrides.MaxWeight >= 0 {
		cfg.Container.MaxWeight = *overrides.MaxWeight
	}

	if overrides.Workers != nil && *overrides.Workers > 0 {
		cfg.Optimizer.Workers = *overrides.Workers
	}

	if overrides.MaxOrderings != nil && *overrides.MaxOrderings > 0 {
		cfg.Optimizer.MaxOrderings = *overrides.MaxOrderings
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.Container.Length <= 0 || cfg.Container.Width <= 0 || cfg.Container.Height <= 0 {
		return fmt.Errorf("container dimensions must be positive")
	}
	if cfg.Optimizer.MaxOrderings <= 0 {
		return fmt.Errorf("optimizer max orderings must be positive")
	}
	return nil
}

// parseContainerDims parses an "LxWxH" string, e.g. "12x12x12" or "8.25x6.38x3.75".
func parseContainerDims(raw string) (Container, error) {
	parts := strings.Split(strings.ToLower(raw), "x")
	if len(parts) != 3 {
		return Container{}, fmt.Errorf("expected LxWxH, got %q", raw)
	}
	values := make([]float64, 3)
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Container{}, fmt.Errorf("invalid dimension %q", part)
		}
		if value <= 0 {
			return Container{}, fmt.Errorf("dimension must be positive, got %g", value)
		}
		values[i] = value
	}
	return Container{Length: values[0], Width: values[1], Height: values[2]}, nil
}
