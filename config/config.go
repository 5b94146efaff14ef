package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// GeneralConfig holds the top-level service settings
type GeneralConfig struct {
	BaseURL                 string `toml:"BaseURL"`
	HistoryFile             string `toml:"HistoryFile"`
	CompaniesHistoryFile    string `toml:"CompaniesHistoryFile"`
	OutputDir               string `toml:"OutputDir"`
	MaxHistoryPoints        int    `toml:"MaxHistoryPoints"`
	UpdateIntervalInSeconds uint32 `toml:"UpdateIntervalInSeconds"`
	RequestTimeoutInSeconds uint32 `toml:"RequestTimeoutInSeconds"`
}

// RateLimitConfig holds the per-credential quota settings
type RateLimitConfig struct {
	WindowInSeconds      uint32 `toml:"WindowInSeconds"`
	QuotaPerWindow       int    `toml:"QuotaPerWindow"`
	SafetyMarginInMillis uint32 `toml:"SafetyMarginInMillis"`
}

// BatchConfig holds the batched request settings
type BatchConfig struct {
	MaxWidth   int `toml:"MaxWidth"`
	NumWorkers int `toml:"NumWorkers"`
}

// CleanerConfig holds the spike cleaner tuning values
type CleanerConfig struct {
	ThresholdMultiplier float64 `toml:"ThresholdMultiplier"`
	GlobalCoefMin       float64 `toml:"GlobalCoefMin"`
	GlobalCoefThresh    float64 `toml:"GlobalCoefThresh"`
	FallbackMinValue    float64 `toml:"FallbackMinValue"`
	FallbackThreshold   float64 `toml:"FallbackThreshold"`
	MaxPasses           int     `toml:"MaxPasses"`
}

// ApiConfig holds the artifact-serving web server settings
type ApiConfig struct {
	Enabled       bool   `toml:"Enabled"`
	ListenAddress string `toml:"ListenAddress"`
}

// StorageConfig holds the run log database settings
type StorageConfig struct {
	DBPath           string `toml:"DBPath"`
	RetentionSeconds int    `toml:"RetentionSeconds"`
}

// ItemConfig describes one tracked item
type ItemConfig struct {
	Code       string `toml:"Code"`
	PrettyName string `toml:"PrettyName"`
	ShortName  string `toml:"ShortName"`
	Color      string `toml:"Color"`
}

// ProductionLineConfig groups items under one production building
type ProductionLineConfig struct {
	Name  string   `toml:"Name"`
	Items []string `toml:"Items"`
}

// Config maps to the config.toml file
type Config struct {
	General         GeneralConfig          `toml:"General"`
	RateLimit       RateLimitConfig        `toml:"RateLimit"`
	Batch           BatchConfig            `toml:"Batch"`
	Cleaner         CleanerConfig          `toml:"Cleaner"`
	Api             ApiConfig              `toml:"Api"`
	Storage         StorageConfig          `toml:"Storage"`
	Items           []ItemConfig           `toml:"Items"`
	ProductionLines []ProductionLineConfig `toml:"ProductionLines"`
}

// LoadConfig parses a TOML file into the Config struct
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filepath, err)
	}

	var cfg Config
	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &cfg, nil
}

// ItemCodes returns the codes of all tracked items, in the configured order
func (cfg *Config) ItemCodes() []string {
	codes := make([]string, 0, len(cfg.Items))
	for _, item := range cfg.Items {
		codes = append(codes, item.Code)
	}

	return codes
}

// PrettyNames returns the item code -> display name mapping
func (cfg *Config) PrettyNames() map[string]string {
	names := make(map[string]string, len(cfg.Items))
	for _, item := range cfg.Items {
		names[item.Code] = item.PrettyName
	}

	return names
}

// ShortNames returns the item code -> abbreviated name mapping for items that define one
func (cfg *Config) ShortNames() map[string]string {
	names := make(map[string]string)
	for _, item := range cfg.Items {
		if len(item.ShortName) > 0 {
			names[item.Code] = item.ShortName
		}
	}

	return names
}

// Colors returns the item code -> chart color mapping
func (cfg *Config) Colors() map[string]string {
	colors := make(map[string]string, len(cfg.Items))
	for _, item := range cfg.Items {
		colors[item.Code] = item.Color
	}

	return colors
}

// Lines returns the production line name -> item codes mapping
func (cfg *Config) Lines() map[string][]string {
	lines := make(map[string][]string, len(cfg.ProductionLines))
	for _, line := range cfg.ProductionLines {
		lines[line.Name] = line.Items
	}

	return lines
}
