package engine

import (
	"context"
	"errors"
	"time"

	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/wealthrate/wealthrate-analytics/analyzer"
	"github.com/wealthrate/wealthrate-analytics/storage"
)

var log = logger.GetOrCreate("engine")

// ArgsUpdateEngine is the DTO used to create a new update engine
type ArgsUpdateEngine struct {
	Items            []string
	MarketAnalyzer   MarketAnalyzer
	CompanyAnalyzer  CompanyAnalyzer
	History          HistoryStore
	CompaniesHistory HistoryStore
	Cleaner          SeriesCleaner
	Report           ReportGenerator
	RunLog           RunLog
}

// updateEngine orchestrates one full analytics update run
type updateEngine struct {
	items            []string
	marketAnalyzer   MarketAnalyzer
	companyAnalyzer  CompanyAnalyzer
	history          HistoryStore
	companiesHistory HistoryStore
	cleaner          SeriesCleaner
	report           ReportGenerator
	runLog           RunLog
}

// NewUpdateEngine creates a new update engine
func NewUpdateEngine(args ArgsUpdateEngine) (*updateEngine, error) {
	if check.IfNil(args.MarketAnalyzer) {
		return nil, errors.New("nil market analyzer")
	}
	if check.IfNil(args.CompanyAnalyzer) {
		return nil, errors.New("nil company analyzer")
	}
	if check.IfNil(args.History) {
		return nil, errors.New("nil history store")
	}
	if check.IfNil(args.CompaniesHistory) {
		return nil, errors.New("nil companies history store")
	}
	if check.IfNil(args.Cleaner) {
		return nil, errors.New("nil series cleaner")
	}
	if check.IfNil(args.Report) {
		return nil, errors.New("nil report generator")
	}
	if check.IfNil(args.RunLog) {
		return nil, errors.New("nil run log")
	}

	return &updateEngine{
		items:            args.Items,
		marketAnalyzer:   args.MarketAnalyzer,
		companyAnalyzer:  args.CompanyAnalyzer,
		history:          args.History,
		companiesHistory: args.CompaniesHistory,
		cleaner:          args.Cleaner,
		report:           args.Report,
		runLog:           args.RunLog,
	}, nil
}

// Process executes one full update run: company stats, market snapshot, history
// maintenance and report generation. A company stats failure degrades the run; a market
// snapshot or persistence failure aborts it.
func (e *updateEngine) Process(ctx context.Context) error {
	start := time.Now()
	record := storage.RunRecord{
		StartedAt: start.UTC().Unix(),
		Status:    storage.RunStatusOK,
	}

	log.Info("starting analytics update run", "items", len(e.items))

	companyStats, err := e.companyAnalyzer.CollectStats(ctx, e.items)
	if err != nil {
		log.Error("failed to collect company stats, proceeding with market data only", "error", err)
		companyStats = map[string]*analyzer.CompanyStats{}
		record.Status = storage.RunStatusPartial
	}

	snapshot, err := e.marketAnalyzer.Snapshot(ctx)
	if err != nil {
		log.Error("failed to compute the market snapshot, aborting run", "error", err)
		e.finishRun(ctx, record, start, storage.RunStatusFailed)
		return err
	}
	record.ItemsCount = len(snapshot)

	for item, stats := range companyStats {
		snap, tracked := snapshot[item]
		if tracked {
			snap.Company = stats
		}
	}

	timestamp := time.Now().UTC().Unix()

	doc := e.history.Load()
	e.history.Append(doc, analyzer.ProfitabilityMetrics(snapshot), analyzer.ProfitabilityMetricKeys, timestamp)
	fixes := e.cleaner.CleanHistory(doc)
	record.FixesCount = fixes
	if fixes > 0 {
		log.Info("spike cleaner corrected anomalies", "fixes", fixes)
	}
	err = e.history.Save(doc)
	if err != nil {
		log.Error("failed to save the profitability history", "error", err)
		e.finishRun(ctx, record, start, storage.RunStatusFailed)
		return err
	}

	compDoc := e.companiesHistory.Load()
	e.companiesHistory.Append(compDoc, analyzer.CompanyMetrics(companyStats), analyzer.CompanyMetricKeys, timestamp)
	err = e.companiesHistory.Save(compDoc)
	if err != nil {
		log.Error("failed to save the companies history", "error", err)
		e.finishRun(ctx, record, start, storage.RunStatusFailed)
		return err
	}

	err = e.report.Generate(doc, compDoc, snapshot)
	if err != nil {
		log.Error("failed to generate the report", "error", err)
		e.finishRun(ctx, record, start, storage.RunStatusFailed)
		return err
	}

	e.finishRun(ctx, record, start, record.Status)
	log.Info("analytics update run complete", "duration", time.Since(start), "fixes", fixes)

	return nil
}

func (e *updateEngine) finishRun(ctx context.Context, record storage.RunRecord, start time.Time, status string) {
	record.Status = status
	record.DurationMillis = time.Since(start).Milliseconds()

	err := e.runLog.SaveRun(ctx, record)
	if err != nil {
		log.Warn("failed to record the run", "error", err)
	}
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *updateEngine) IsInterfaceNil() bool {
	return e == nil
}
