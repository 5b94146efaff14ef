package factory

import (
	"context"
	"sync"
	"time"

	"github.com/multiversx/mx-chain-core-go/core/check"
	"github.com/wealthrate/wealthrate-analytics/analyzer"
	"github.com/wealthrate/wealthrate-analytics/api"
	"github.com/wealthrate/wealthrate-analytics/client"
	"github.com/wealthrate/wealthrate-analytics/common"
	"github.com/wealthrate/wealthrate-analytics/config"
	"github.com/wealthrate/wealthrate-analytics/crawler"
	"github.com/wealthrate/wealthrate-analytics/engine"
	"github.com/wealthrate/wealthrate-analytics/history"
	"github.com/wealthrate/wealthrate-analytics/report"
	"github.com/wealthrate/wealthrate-analytics/storage"
)

// metric display names injected into the report
var metricLabels = map[string]string{
	"min_pp": "Min Profit/PP",
	"avg_pp": "Avg Profit/PP",
	"max_pp": "Max Profit/PP",
}

// ArgsComponentsHandler is the DTO used to create the components handler
type ArgsComponentsHandler struct {
	Config        *config.Config
	ApiKeys       []string
	ServiceKeyApi string
}

type componentsHandler struct {
	engine         Engine
	webServer      WebServer
	runLog         RunLogHandler
	mutCancel      sync.Mutex
	cancel         func()
	updateInterval time.Duration
}

// NewComponentsHandler wires all components together
func NewComponentsHandler(args ArgsComponentsHandler) (*componentsHandler, error) {
	cfg := args.Config

	pool, err := client.NewCredentialPool(client.ArgsCredentialPool{
		Keys:         args.ApiKeys,
		Quota:        cfg.RateLimit.QuotaPerWindow,
		Window:       time.Duration(cfg.RateLimit.WindowInSeconds) * time.Second,
		SafetyMargin: time.Duration(cfg.RateLimit.SafetyMarginInMillis) * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}

	trpcClient, err := client.NewTRPCClient(client.ArgsTRPCClient{
		BaseURL: cfg.General.BaseURL,
		Pool:    pool,
		Timeout: time.Duration(cfg.General.RequestTimeoutInSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	dispatcher, err := client.NewBatchDispatcher(client.ArgsBatchDispatcher{
		Caller:     trpcClient,
		MaxWidth:   cfg.Batch.MaxWidth,
		NumWorkers: cfg.Batch.NumWorkers,
	})
	if err != nil {
		return nil, err
	}

	paginationCrawler, err := crawler.NewPaginationCrawler(dispatcher)
	if err != nil {
		return nil, err
	}

	marketAnalyzer, err := analyzer.NewMarketAnalyzer(trpcClient, dispatcher)
	if err != nil {
		return nil, err
	}

	companyAnalyzer, err := analyzer.NewCompanyAnalyzer(trpcClient, dispatcher, paginationCrawler)
	if err != nil {
		return nil, err
	}

	historyStore, err := history.NewJSONStore(cfg.General.HistoryFile, cfg.General.MaxHistoryPoints)
	if err != nil {
		return nil, err
	}

	companiesStore, err := history.NewJSONStore(cfg.General.CompaniesHistoryFile, cfg.General.MaxHistoryPoints)
	if err != nil {
		return nil, err
	}

	cleaner, err := history.NewSeriesCleaner(history.ArgsSeriesCleaner{
		ThresholdMultiplier: cfg.Cleaner.ThresholdMultiplier,
		CoefMin:             cfg.Cleaner.GlobalCoefMin,
		CoefThresh:          cfg.Cleaner.GlobalCoefThresh,
		FallbackMin:         cfg.Cleaner.FallbackMinValue,
		FallbackThresh:      cfg.Cleaner.FallbackThreshold,
		MaxPasses:           cfg.Cleaner.MaxPasses,
	})
	if err != nil {
		return nil, err
	}

	reportGenerator, err := report.NewHTMLReportGenerator(report.ArgsHTMLReportGenerator{
		OutputDir:       cfg.General.OutputDir,
		PrettyNames:     cfg.PrettyNames(),
		ShortNames:      cfg.ShortNames(),
		Colors:          cfg.Colors(),
		MetricLabels:    metricLabels,
		ProductionLines: cfg.Lines(),
	})
	if err != nil {
		return nil, err
	}

	runLog, err := storage.NewSQLiteRunLog(cfg.Storage.DBPath, cfg.Storage.RetentionSeconds)
	if err != nil {
		return nil, err
	}

	updateEngine, err := engine.NewUpdateEngine(engine.ArgsUpdateEngine{
		Items:            cfg.ItemCodes(),
		MarketAnalyzer:   marketAnalyzer,
		CompanyAnalyzer:  companyAnalyzer,
		History:          historyStore,
		CompaniesHistory: companiesStore,
		Cleaner:          cleaner,
		Report:           reportGenerator,
		RunLog:           runLog,
	})
	if err != nil {
		_ = runLog.Close()
		return nil, err
	}

	handler := &componentsHandler{
		engine:         updateEngine,
		runLog:         runLog,
		updateInterval: time.Duration(cfg.General.UpdateIntervalInSeconds) * time.Second,
	}

	if cfg.Api.Enabled {
		webServer, err := api.NewServer(api.ArgsWebServer{
			ListenAddress: cfg.Api.ListenAddress,
			ServiceKeyApi: args.ServiceKeyApi,
			ReportDir:     cfg.General.OutputDir,
			History:       historyStore,
			Companies:     companiesStore,
			RunLog:        runLog,
		})
		if err != nil {
			_ = runLog.Close()
			return nil, err
		}
		handler.webServer = webServer
	}

	return handler, nil
}

// GetEngine returns the engine component
func (ch *componentsHandler) GetEngine() Engine {
	return ch.engine
}

// RunOnce executes a single update run
func (ch *componentsHandler) RunOnce(ctx context.Context) error {
	return ch.engine.Process(ctx)
}

// Start starts the periodic update job and, when configured, the web server
func (ch *componentsHandler) Start() {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel != nil {
		return
	}

	var ctx context.Context
	ctx, ch.cancel = context.WithCancel(context.Background())

	common.CronJobStarter(ctx, func(ctx context.Context) {
		_ = ch.engine.Process(ctx)
	}, ch.updateInterval)

	if !check.IfNil(ch.webServer) {
		ch.webServer.Start()
	}
}

// Close closes the inner components
func (ch *componentsHandler) Close() error {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel != nil {
		ch.cancel()
		ch.cancel = nil
	}

	if !check.IfNil(ch.webServer) {
		err := ch.webServer.Close()
		if err != nil {
			return err
		}
	}

	return ch.runLog.Close()
}
