package factory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wealthrate/wealthrate-analytics/config"
	"github.com/wealthrate/wealthrate-analytics/history"
)

func createTestConfig(t *testing.T, baseURL string) *config.Config {
	workDir := t.TempDir()

	return &config.Config{
		General: config.GeneralConfig{
			BaseURL:                 baseURL,
			HistoryFile:             filepath.Join(workDir, "history.json"),
			CompaniesHistoryFile:    filepath.Join(workDir, "history_companies.json"),
			OutputDir:               filepath.Join(workDir, "out"),
			MaxHistoryPoints:        100,
			UpdateIntervalInSeconds: 300,
			RequestTimeoutInSeconds: 5,
		},
		RateLimit: config.RateLimitConfig{
			WindowInSeconds:      60,
			QuotaPerWindow:       1000,
			SafetyMarginInMillis: 10,
		},
		Batch: config.BatchConfig{
			MaxWidth:   10,
			NumWorkers: 2,
		},
		Cleaner: config.CleanerConfig{
			ThresholdMultiplier: 1.3,
			GlobalCoefMin:       0.45,
			GlobalCoefThresh:    1.35,
			FallbackMinValue:    0.05,
			FallbackThreshold:   0.15,
			MaxPasses:           64,
		},
		Storage: config.StorageConfig{
			DBPath: filepath.Join(workDir, "db", "runs.db"),
		},
		Items: []config.ItemConfig{
			{Code: "fish", PrettyName: "Fish", Color: "#3182ce"},
		},
	}
}

func TestNewComponentsHandler(t *testing.T) {
	t.Parallel()

	t.Run("invalid rate limit config should error", func(t *testing.T) {
		t.Parallel()

		cfg := createTestConfig(t, "http://localhost")
		cfg.RateLimit.QuotaPerWindow = 0

		handler, err := NewComponentsHandler(ArgsComponentsHandler{
			Config:        cfg,
			ApiKeys:       []string{"key1"},
			ServiceKeyApi: "service-key",
		})
		assert.Nil(t, handler)
		assert.NotNil(t, err)
	})
	t.Run("no api keys should error", func(t *testing.T) {
		t.Parallel()

		handler, err := NewComponentsHandler(ArgsComponentsHandler{
			Config:        createTestConfig(t, "http://localhost"),
			ServiceKeyApi: "service-key",
		})
		assert.Nil(t, handler)
		assert.NotNil(t, err)
	})
	t.Run("api enabled with an empty service key should error", func(t *testing.T) {
		t.Parallel()

		cfg := createTestConfig(t, "http://localhost")
		cfg.Api.Enabled = true
		cfg.Api.ListenAddress = "127.0.0.1:0"

		handler, err := NewComponentsHandler(ArgsComponentsHandler{
			Config:  cfg,
			ApiKeys: []string{"key1"},
		})
		assert.Nil(t, handler)
		assert.NotNil(t, err)
	})
	t.Run("should work", func(t *testing.T) {
		t.Parallel()

		handler, err := NewComponentsHandler(ArgsComponentsHandler{
			Config:        createTestConfig(t, "http://localhost"),
			ApiKeys:       []string{"key1"},
			ServiceKeyApi: "service-key",
		})
		require.Nil(t, err)
		require.NotNil(t, handler)
		assert.NotNil(t, handler.GetEngine())

		err = handler.Close()
		assert.Nil(t, err)
	})
}

func TestComponentsHandler_RunOnce(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	cfg := createTestConfig(t, upstream.URL)
	handler, err := NewComponentsHandler(ArgsComponentsHandler{
		Config:        cfg,
		ApiKeys:       []string{"key1"},
		ServiceKeyApi: "service-key",
	})
	require.Nil(t, err)
	defer func() {
		_ = handler.Close()
	}()

	err = handler.RunOnce(context.Background())
	require.Nil(t, err)

	// an empty upstream still produces one labeled history point and the report file
	data, err := os.ReadFile(cfg.General.HistoryFile)
	require.Nil(t, err)

	doc := &history.Document{}
	err = json.Unmarshal(data, doc)
	require.Nil(t, err)
	assert.Len(t, doc.Labels, 1)

	_, err = os.Stat(filepath.Join(cfg.General.OutputDir, "index.html"))
	assert.Nil(t, err)
}
