package config

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
)

func TestConfig(t *testing.T) {
	t.Parallel()

	testString := `
[General]
    BaseURL = "https://api.example.com/trpc"
    HistoryFile = "history.json"
    CompaniesHistoryFile = "history_companies.json"
    OutputDir = "out"
    MaxHistoryPoints = 2016
    UpdateIntervalInSeconds = 300
    RequestTimeoutInSeconds = 30

[RateLimit]
    WindowInSeconds = 60
    QuotaPerWindow = 200
    SafetyMarginInMillis = 250

[Batch]
    MaxWidth = 10
    NumWorkers = 4

[Cleaner]
    ThresholdMultiplier = 1.3
    GlobalCoefMin = 0.45
    GlobalCoefThresh = 1.35
    FallbackMinValue = 0.05
    FallbackThreshold = 0.15
    MaxPasses = 64

[Api]
    Enabled = true
    ListenAddress = ":8080"

[Storage]
    DBPath = "db/runs.db"
    RetentionSeconds = 2592000

[[Items]]
    Code = "fish"
    PrettyName = "Fish"
    Color = "#3182ce"

[[Items]]
    Code = "cookedFish"
    PrettyName = "Cooked Fish"
    ShortName = "C. Fish"
    Color = "#63b3ed"

[[ProductionLines]]
    Name = "Fishery"
    Items = ["fish", "cookedFish"]
`

	expectedCfg := Config{
		General: GeneralConfig{
			BaseURL:                 "https://api.example.com/trpc",
			HistoryFile:             "history.json",
			CompaniesHistoryFile:    "history_companies.json",
			OutputDir:               "out",
			MaxHistoryPoints:        2016,
			UpdateIntervalInSeconds: 300,
			RequestTimeoutInSeconds: 30,
		},
		RateLimit: RateLimitConfig{
			WindowInSeconds:      60,
			QuotaPerWindow:       200,
			SafetyMarginInMillis: 250,
		},
		Batch: BatchConfig{
			MaxWidth:   10,
			NumWorkers: 4,
		},
		Cleaner: CleanerConfig{
			ThresholdMultiplier: 1.3,
			GlobalCoefMin:       0.45,
			GlobalCoefThresh:    1.35,
			FallbackMinValue:    0.05,
			FallbackThreshold:   0.15,
			MaxPasses:           64,
		},
		Api: ApiConfig{
			Enabled:       true,
			ListenAddress: ":8080",
		},
		Storage: StorageConfig{
			DBPath:           "db/runs.db",
			RetentionSeconds: 2592000,
		},
		Items: []ItemConfig{
			{
				Code:       "fish",
				PrettyName: "Fish",
				Color:      "#3182ce",
			},
			{
				Code:       "cookedFish",
				PrettyName: "Cooked Fish",
				ShortName:  "C. Fish",
				Color:      "#63b3ed",
			},
		},
		ProductionLines: []ProductionLineConfig{
			{
				Name:  "Fishery",
				Items: []string{"fish", "cookedFish"},
			},
		},
	}

	cfg := Config{}

	err := toml.Unmarshal([]byte(testString), &cfg)
	assert.Nil(t, err)
	assert.Equal(t, expectedCfg, cfg)
}

func TestConfig_Accessors(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Items: []ItemConfig{
			{Code: "fish", PrettyName: "Fish", Color: "#3182ce"},
			{Code: "cookedFish", PrettyName: "Cooked Fish", ShortName: "C. Fish", Color: "#63b3ed"},
		},
		ProductionLines: []ProductionLineConfig{
			{Name: "Fishery", Items: []string{"fish", "cookedFish"}},
		},
	}

	assert.Equal(t, []string{"fish", "cookedFish"}, cfg.ItemCodes())
	assert.Equal(t, map[string]string{"fish": "Fish", "cookedFish": "Cooked Fish"}, cfg.PrettyNames())
	assert.Equal(t, map[string]string{"cookedFish": "C. Fish"}, cfg.ShortNames())
	assert.Equal(t, map[string]string{"fish": "#3182ce", "cookedFish": "#63b3ed"}, cfg.Colors())
	assert.Equal(t, map[string][]string{"Fishery": {"fish", "cookedFish"}}, cfg.Lines())
}
