package testsCommon

import (
	"context"

	"github.com/wealthrate/wealthrate-analytics/analyzer"
	"github.com/wealthrate/wealthrate-analytics/history"
	"github.com/wealthrate/wealthrate-analytics/storage"
)

// MarketAnalyzerStub -
type MarketAnalyzerStub struct {
	SnapshotHandler func(ctx context.Context) (map[string]*analyzer.ItemSnapshot, error)
}

// Snapshot -
func (stub *MarketAnalyzerStub) Snapshot(ctx context.Context) (map[string]*analyzer.ItemSnapshot, error) {
	if stub.SnapshotHandler != nil {
		return stub.SnapshotHandler(ctx)
	}

	return map[string]*analyzer.ItemSnapshot{}, nil
}

// IsInterfaceNil -
func (stub *MarketAnalyzerStub) IsInterfaceNil() bool {
	return stub == nil
}

// CompanyAnalyzerStub -
type CompanyAnalyzerStub struct {
	CollectStatsHandler func(ctx context.Context, items []string) (map[string]*analyzer.CompanyStats, error)
}

// CollectStats -
func (stub *CompanyAnalyzerStub) CollectStats(ctx context.Context, items []string) (map[string]*analyzer.CompanyStats, error) {
	if stub.CollectStatsHandler != nil {
		return stub.CollectStatsHandler(ctx, items)
	}

	return map[string]*analyzer.CompanyStats{}, nil
}

// IsInterfaceNil -
func (stub *CompanyAnalyzerStub) IsInterfaceNil() bool {
	return stub == nil
}

// HistoryStoreStub -
type HistoryStoreStub struct {
	LoadHandler   func() *history.Document
	SaveHandler   func(doc *history.Document) error
	AppendHandler func(doc *history.Document, snapshot map[string]map[string]float64, metricKeys []string, timestamp int64)
}

// Load -
func (stub *HistoryStoreStub) Load() *history.Document {
	if stub.LoadHandler != nil {
		return stub.LoadHandler()
	}

	return history.NewDocument()
}

// Save -
func (stub *HistoryStoreStub) Save(doc *history.Document) error {
	if stub.SaveHandler != nil {
		return stub.SaveHandler(doc)
	}

	return nil
}

// Append -
func (stub *HistoryStoreStub) Append(doc *history.Document, snapshot map[string]map[string]float64, metricKeys []string, timestamp int64) {
	if stub.AppendHandler != nil {
		stub.AppendHandler(doc, snapshot, metricKeys, timestamp)
	}
}

// IsInterfaceNil -
func (stub *HistoryStoreStub) IsInterfaceNil() bool {
	return stub == nil
}

// SeriesCleanerStub -
type SeriesCleanerStub struct {
	CleanHistoryHandler func(doc *history.Document) int
}

// CleanHistory -
func (stub *SeriesCleanerStub) CleanHistory(doc *history.Document) int {
	if stub.CleanHistoryHandler != nil {
		return stub.CleanHistoryHandler(doc)
	}

	return 0
}

// IsInterfaceNil -
func (stub *SeriesCleanerStub) IsInterfaceNil() bool {
	return stub == nil
}

// ReportGeneratorStub -
type ReportGeneratorStub struct {
	GenerateHandler func(profitHistory *history.Document, compHistory *history.Document, snapshot map[string]*analyzer.ItemSnapshot) error
}

// Generate -
func (stub *ReportGeneratorStub) Generate(profitHistory *history.Document, compHistory *history.Document, snapshot map[string]*analyzer.ItemSnapshot) error {
	if stub.GenerateHandler != nil {
		return stub.GenerateHandler(profitHistory, compHistory, snapshot)
	}

	return nil
}

// IsInterfaceNil -
func (stub *ReportGeneratorStub) IsInterfaceNil() bool {
	return stub == nil
}

// RunLogStub -
type RunLogStub struct {
	SaveRunHandler    func(ctx context.Context, record storage.RunRecord) error
	LatestRunsHandler func(ctx context.Context, limit int) ([]storage.RunRecord, error)
}

// SaveRun -
func (stub *RunLogStub) SaveRun(ctx context.Context, record storage.RunRecord) error {
	if stub.SaveRunHandler != nil {
		return stub.SaveRunHandler(ctx, record)
	}

	return nil
}

// LatestRuns -
func (stub *RunLogStub) LatestRuns(ctx context.Context, limit int) ([]storage.RunRecord, error) {
	if stub.LatestRunsHandler != nil {
		return stub.LatestRunsHandler(ctx, limit)
	}

	return nil, nil
}

// IsInterfaceNil -
func (stub *RunLogStub) IsInterfaceNil() bool {
	return stub == nil
}

// HistoryLoaderStub -
type HistoryLoaderStub struct {
	LoadHandler func() *history.Document
}

// Load -
func (stub *HistoryLoaderStub) Load() *history.Document {
	if stub.LoadHandler != nil {
		return stub.LoadHandler()
	}

	return history.NewDocument()
}

// IsInterfaceNil -
func (stub *HistoryLoaderStub) IsInterfaceNil() bool {
	return stub == nil
}
