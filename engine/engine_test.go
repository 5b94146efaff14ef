package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wealthrate/wealthrate-analytics/analyzer"
	"github.com/wealthrate/wealthrate-analytics/history"
	"github.com/wealthrate/wealthrate-analytics/storage"
	"github.com/wealthrate/wealthrate-analytics/testsCommon"
)

func createTestEngineArgs() ArgsUpdateEngine {
	return ArgsUpdateEngine{
		Items:            []string{"fish"},
		MarketAnalyzer:   &testsCommon.MarketAnalyzerStub{},
		CompanyAnalyzer:  &testsCommon.CompanyAnalyzerStub{},
		History:          &testsCommon.HistoryStoreStub{},
		CompaniesHistory: &testsCommon.HistoryStoreStub{},
		Cleaner:          &testsCommon.SeriesCleanerStub{},
		Report:           &testsCommon.ReportGeneratorStub{},
		RunLog:           &testsCommon.RunLogStub{},
	}
}

func TestNewUpdateEngine(t *testing.T) {
	t.Parallel()

	t.Run("nil components should error", func(t *testing.T) {
		t.Parallel()

		args := createTestEngineArgs()
		args.MarketAnalyzer = nil
		e, err := NewUpdateEngine(args)
		assert.Nil(t, e)
		assert.NotNil(t, err)

		args = createTestEngineArgs()
		args.CompanyAnalyzer = nil
		e, err = NewUpdateEngine(args)
		assert.Nil(t, e)
		assert.NotNil(t, err)

		args = createTestEngineArgs()
		args.History = nil
		e, err = NewUpdateEngine(args)
		assert.Nil(t, e)
		assert.NotNil(t, err)

		args = createTestEngineArgs()
		args.CompaniesHistory = nil
		e, err = NewUpdateEngine(args)
		assert.Nil(t, e)
		assert.NotNil(t, err)

		args = createTestEngineArgs()
		args.Cleaner = nil
		e, err = NewUpdateEngine(args)
		assert.Nil(t, e)
		assert.NotNil(t, err)

		args = createTestEngineArgs()
		args.Report = nil
		e, err = NewUpdateEngine(args)
		assert.Nil(t, e)
		assert.NotNil(t, err)

		args = createTestEngineArgs()
		args.RunLog = nil
		e, err = NewUpdateEngine(args)
		assert.Nil(t, e)
		assert.NotNil(t, err)
	})
	t.Run("should work", func(t *testing.T) {
		t.Parallel()

		e, err := NewUpdateEngine(createTestEngineArgs())
		assert.Nil(t, err)
		assert.NotNil(t, e)
		assert.False(t, e.IsInterfaceNil())
	})
}

func TestUpdateEngine_Process(t *testing.T) {
	t.Parallel()

	t.Run("successful run should record an ok status", func(t *testing.T) {
		t.Parallel()

		args := createTestEngineArgs()
		args.MarketAnalyzer = &testsCommon.MarketAnalyzerStub{
			SnapshotHandler: func(_ context.Context) (map[string]*analyzer.ItemSnapshot, error) {
				return map[string]*analyzer.ItemSnapshot{
					"fish": {AvgPP: 1.5},
				}, nil
			},
		}
		args.CompanyAnalyzer = &testsCommon.CompanyAnalyzerStub{
			CollectStatsHandler: func(_ context.Context, items []string) (map[string]*analyzer.CompanyStats, error) {
				return map[string]*analyzer.CompanyStats{
					"fish": {TotalCount: 7},
				}, nil
			},
		}
		args.Cleaner = &testsCommon.SeriesCleanerStub{
			CleanHistoryHandler: func(_ *history.Document) int {
				return 3
			},
		}

		numProfitSaves := 0
		args.History = &testsCommon.HistoryStoreStub{
			SaveHandler: func(_ *history.Document) error {
				numProfitSaves++
				return nil
			},
		}

		var generatedSnapshot map[string]*analyzer.ItemSnapshot
		args.Report = &testsCommon.ReportGeneratorStub{
			GenerateHandler: func(_ *history.Document, _ *history.Document, snapshot map[string]*analyzer.ItemSnapshot) error {
				generatedSnapshot = snapshot
				return nil
			},
		}

		var savedRecord storage.RunRecord
		args.RunLog = &testsCommon.RunLogStub{
			SaveRunHandler: func(_ context.Context, record storage.RunRecord) error {
				savedRecord = record
				return nil
			},
		}

		e, err := NewUpdateEngine(args)
		require.Nil(t, err)

		err = e.Process(context.Background())
		require.Nil(t, err)

		assert.Equal(t, 1, numProfitSaves)
		assert.Equal(t, storage.RunStatusOK, savedRecord.Status)
		assert.Equal(t, 1, savedRecord.ItemsCount)
		assert.Equal(t, 3, savedRecord.FixesCount)

		// company stats are merged into the report snapshot
		require.NotNil(t, generatedSnapshot["fish"])
		require.NotNil(t, generatedSnapshot["fish"].Company)
		assert.Equal(t, 7, generatedSnapshot["fish"].Company.TotalCount)
	})
	t.Run("company stats failure should degrade the run, not abort it", func(t *testing.T) {
		t.Parallel()

		args := createTestEngineArgs()
		args.CompanyAnalyzer = &testsCommon.CompanyAnalyzerStub{
			CollectStatsHandler: func(_ context.Context, _ []string) (map[string]*analyzer.CompanyStats, error) {
				return nil, errors.New("expected error")
			},
		}

		var savedRecord storage.RunRecord
		args.RunLog = &testsCommon.RunLogStub{
			SaveRunHandler: func(_ context.Context, record storage.RunRecord) error {
				savedRecord = record
				return nil
			},
		}

		e, err := NewUpdateEngine(args)
		require.Nil(t, err)

		err = e.Process(context.Background())
		assert.Nil(t, err)
		assert.Equal(t, storage.RunStatusPartial, savedRecord.Status)
	})
	t.Run("market snapshot failure should abort the run", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("expected error")
		args := createTestEngineArgs()
		args.MarketAnalyzer = &testsCommon.MarketAnalyzerStub{
			SnapshotHandler: func(_ context.Context) (map[string]*analyzer.ItemSnapshot, error) {
				return nil, expectedErr
			},
		}

		numSaves := 0
		args.History = &testsCommon.HistoryStoreStub{
			SaveHandler: func(_ *history.Document) error {
				numSaves++
				return nil
			},
		}

		var savedRecord storage.RunRecord
		args.RunLog = &testsCommon.RunLogStub{
			SaveRunHandler: func(_ context.Context, record storage.RunRecord) error {
				savedRecord = record
				return nil
			},
		}

		e, err := NewUpdateEngine(args)
		require.Nil(t, err)

		err = e.Process(context.Background())
		assert.Equal(t, expectedErr, err)
		assert.Equal(t, 0, numSaves)
		assert.Equal(t, storage.RunStatusFailed, savedRecord.Status)
	})
	t.Run("history save failure should abort the run", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("expected error")
		args := createTestEngineArgs()
		args.History = &testsCommon.HistoryStoreStub{
			SaveHandler: func(_ *history.Document) error {
				return expectedErr
			},
		}

		numReports := 0
		args.Report = &testsCommon.ReportGeneratorStub{
			GenerateHandler: func(_ *history.Document, _ *history.Document, _ map[string]*analyzer.ItemSnapshot) error {
				numReports++
				return nil
			},
		}

		e, err := NewUpdateEngine(args)
		require.Nil(t, err)

		err = e.Process(context.Background())
		assert.Equal(t, expectedErr, err)
		assert.Equal(t, 0, numReports)
	})
	t.Run("report failure should abort the run", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("expected error")
		args := createTestEngineArgs()
		args.Report = &testsCommon.ReportGeneratorStub{
			GenerateHandler: func(_ *history.Document, _ *history.Document, _ map[string]*analyzer.ItemSnapshot) error {
				return expectedErr
			},
		}

		var savedRecord storage.RunRecord
		args.RunLog = &testsCommon.RunLogStub{
			SaveRunHandler: func(_ context.Context, record storage.RunRecord) error {
				savedRecord = record
				return nil
			},
		}

		e, err := NewUpdateEngine(args)
		require.Nil(t, err)

		err = e.Process(context.Background())
		assert.Equal(t, expectedErr, err)
		assert.Equal(t, storage.RunStatusFailed, savedRecord.Status)
	})
}
