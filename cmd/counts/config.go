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
		RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
		CountWorkers          int `yaml:"count_workers"`
	} `yaml:"scraper"`
	Sheets struct {
		CredentialsFile string `yaml:"credentials_file"`
		SpreadsheetID   string `yaml:"spreadsheet_id"`
		DataRange       string `yaml:"data_range"`
	} `yaml:"sheets"`
}

func defaultConfig() *Config {
	config := &Config{}
	config.Storage.DataDir = "data"
	config.Scraper.RequestTimeoutSeconds = 30
	config.Scraper.CountWorkers = 4
	config.Sheets.DataRange = "Counts!A:H"
	return config
}

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
