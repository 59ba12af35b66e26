package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Storage struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"storage"`
	Scraper struct {
		Strategy              string `yaml:"strategy"`
		PageDelayMs           int    `yaml:"page_delay_ms"`
		ZoneDelaySeconds      int    `yaml:"zone_delay_seconds"`
		RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
		CountWorkers          int    `yaml:"count_workers"`
	} `yaml:"scraper"`
}

func defaultConfig() *Config {
	config := &Config{}
	config.Storage.DataDir = "data"
	config.Scraper.Strategy = "mobile"
	config.Scraper.PageDelayMs = 50
	config.Scraper.RequestTimeoutSeconds = 30
	config.Scraper.CountWorkers = 4
	return config
}

// newConfig reads the YAML config file; a missing file yields the defaults so
// the job runs out of the box against ./data.
func newConfig(configPath string) (*Config, error) {
	config := defaultConfig()

	file, err := os.Open(configPath)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't open config file: %w", err)
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(config); err != nil {
		return nil, fmt.Errorf("can't parse config file: %w", err)
	}

	return config, nil
}
