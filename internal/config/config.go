package config

import "indexnow-go/pkg/logger"

type Config struct {
	Submit    SubmitConfig    `mapstructure:"submit"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Keys      KeysConfig      `mapstructure:"keys"`
	Logger    logger.Config   `mapstructure:"logger"`
}

type SubmitConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	BatchSize   int `mapstructure:"batch_size"`
	PacingMs    int `mapstructure:"pacing_ms"`
	TimeoutSec  int `mapstructure:"timeout_sec"`
}

type DiscoveryConfig struct {
	TimeoutSec int `mapstructure:"timeout_sec"`
}

type KeysConfig struct {
	// StorePath overrides the default per-user key store location.
	StorePath string `mapstructure:"store_path"`
}

type Manager interface {
	Load(configPath string) (*Config, error)
	Reload() (*Config, error)
	GetConfig() *Config
}

// MaxBatchSize is the protocol-mandated ceiling for URLs per submission.
const MaxBatchSize = 10000

func Default() *Config {
	return &Config{
		Submit: SubmitConfig{
			Concurrency: 3,
			BatchSize:   MaxBatchSize,
			PacingMs:    1000,
			TimeoutSec:  60,
		},
		Discovery: DiscoveryConfig{
			TimeoutSec: 30,
		},
		Logger: logger.Config{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}
