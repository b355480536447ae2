package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Campus struct {
		Timezone  string `yaml:"timezone"`
		OpenTime  string `yaml:"open_time"`
		CloseTime string `yaml:"close_time"`
	} `yaml:"campus"`

	Penalty struct {
		NoShowLimit int `yaml:"no_show_limit"`
		BlockDays   int `yaml:"block_days"`
	} `yaml:"penalty"`

	Notify struct {
		RatePerSecond float64 `yaml:"rate_per_second"`
		Burst         int     `yaml:"burst"`
		QueueSize     int     `yaml:"queue_size"`
	} `yaml:"notify"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/booking.db"
	}
	if cfg.Campus.Timezone == "" {
		cfg.Campus.Timezone = "UTC"
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// NoShowLimit returns the configured no-show threshold, defaulting to 4.
func (c *Config) NoShowLimit() int {
	if c.Penalty.NoShowLimit <= 0 {
		return 4
	}
	return c.Penalty.NoShowLimit
}

// BlockDuration returns the penalty block length, defaulting to 30 days.
func (c *Config) BlockDuration() time.Duration {
	if c.Penalty.BlockDays <= 0 {
		return 30 * 24 * time.Hour
	}
	return time.Duration(c.Penalty.BlockDays) * 24 * time.Hour
}

// CacheTTL returns the availability cache TTL, defaulting to 60 seconds.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}
