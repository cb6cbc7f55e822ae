package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type manager struct {
	mu         sync.RWMutex
	config     *Config
	configPath string
	viper      *viper.Viper
}

func NewManager() Manager {
	return &manager{
		viper: viper.New(),
	}
}

// Load reads the optional config file and environment overrides. A missing
// file is not an error; defaults apply.
func (m *manager) Load(configPath string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.viper.SetEnvPrefix("INDEXNOW")
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()

	config := Default()

	if configPath != "" {
		m.viper.SetConfigFile(configPath)
		if err := m.viper.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := m.viper.Unmarshal(config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := m.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	m.config = config
	m.configPath = configPath
	return config, nil
}

// Reload re-reads the file supplied to the last Load call.
func (m *manager) Reload() (*Config, error) {
	m.mu.RLock()
	path := m.configPath
	m.mu.RUnlock()
	return m.Load(path)
}

func (m *manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *manager) validateConfig(config *Config) error {
	if config.Submit.Concurrency <= 0 {
		return fmt.Errorf("submit.concurrency must be positive")
	}

	if config.Submit.BatchSize <= 0 {
		return fmt.Errorf("submit.batch_size must be positive")
	}

	// Protocol ceiling wins over any configured value.
	if config.Submit.BatchSize > MaxBatchSize {
		config.Submit.BatchSize = MaxBatchSize
	}

	if config.Submit.TimeoutSec <= 0 {
		return fmt.Errorf("submit.timeout_sec must be positive")
	}

	return nil
}
