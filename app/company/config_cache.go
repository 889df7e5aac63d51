package company

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type ConfigCache struct {
	companiesDir string
	cache        map[string]*Config
	mu           sync.RWMutex
}

func NewConfigCache(companiesDir string) *ConfigCache {
	return &ConfigCache{
		companiesDir: companiesDir,
		cache:        make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.companiesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.companiesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		fileName := filepath.Base(file)
		slug := strings.TrimSuffix(fileName, ".yml")

		config, err := cc.LoadConfig(slug)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Company configuration loaded", "company", slug,
			"enabled", config.Settings.Enabled, "primary", config.Primary,
			"refresh_interval", config.Settings.RefreshInterval)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(slug string) (*Config, error) {
	configFile := cc.getConfigFilePath(slug)
	config, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	config.Slug = slug

	if err := cc.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[config.Slug] = config

	return config, nil
}

func (cc *ConfigCache) GetConfig(slug string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[slug]
	if !ok {
		return nil, fmt.Errorf("company config with slug '%s' not found", slug)
	}
	return config, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabledConfigs := make(map[string]*Config)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabledConfigs[k] = v
		}
	}
	return enabledConfigs
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Settings.RefreshInterval == 0 {
		config.Settings.RefreshInterval = 21600 // 6 hours
	}
	if config.Settings.PageStride == 0 {
		config.Settings.PageStride = 1
	}

	return &config, nil
}

func (cc *ConfigCache) validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	requiredFields := map[string]string{
		"company slug": config.Slug,
		"company URL":  config.URL,
		"company name": config.Name,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	if u, err := url.Parse(config.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("company URL must be absolute: %s", config.URL)
	}

	nonNegativeFields := map[string]int{
		"refresh interval": config.Settings.RefreshInterval,
		"page stride":      config.Settings.PageStride,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if config.Settings.MaxPages != nil && *config.Settings.MaxPages < 0 {
		return fmt.Errorf("max pages must be non-negative")
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(slug string) string {
	return filepath.Join(cc.companiesDir, slug+".yml")
}
