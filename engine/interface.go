package engine

import (
	"context"

	"github.com/wealthrate/wealthrate-analytics/analyzer"
	"github.com/wealthrate/wealthrate-analytics/history"
	"github.com/wealthrate/wealthrate-analytics/storage"
)

// MarketAnalyzer defines the component able to compute the per-item market snapshot
type MarketAnalyzer interface {
	Snapshot(ctx context.Context) (map[string]*analyzer.ItemSnapshot, error)
	IsInterfaceNil() bool
}

// CompanyAnalyzer defines the component able to aggregate company basing statistics
type CompanyAnalyzer interface {
	CollectStats(ctx context.Context, items []string) (map[string]*analyzer.CompanyStats, error)
	IsInterfaceNil() bool
}

// HistoryStore defines the persistence behavior of one history document
type HistoryStore interface {
	Load() *history.Document
	Save(doc *history.Document) error
	Append(doc *history.Document, snapshot map[string]map[string]float64, metricKeys []string, timestamp int64)
	IsInterfaceNil() bool
}

// SeriesCleaner defines the component able to smooth a whole history document
type SeriesCleaner interface {
	CleanHistory(doc *history.Document) int
	IsInterfaceNil() bool
}

// ReportGenerator defines the component able to render the report artifact
type ReportGenerator interface {
	Generate(profitHistory *history.Document, compHistory *history.Document, snapshot map[string]*analyzer.ItemSnapshot) error
	IsInterfaceNil() bool
}

// RunLog defines the component recording completed update runs
type RunLog interface {
	SaveRun(ctx context.Context, record storage.RunRecord) error
	IsInterfaceNil() bool
}
