package analyzer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/wealthrate/wealthrate-analytics/analyzer"
	"github.com/wealthrate/wealthrate-analytics/client"
	"github.com/wealthrate/wealthrate-analytics/crawler"
	"github.com/wealthrate/wealthrate-analytics/testsCommon"
)

func createCompanyGatewayStub() *testsCommon.GameGatewayStub {
	return &testsCommon.GameGatewayStub{
		CountriesHandler: func(_ context.Context) ([]gjson.Result, error) {
			return gjson.Parse(`[{"_id":"c1","name":"Nigeria"}]`).Array(), nil
		},
		RegionsHandler: func(_ context.Context) (map[string]gjson.Result, error) {
			return gjson.Parse(`{"r1":{"country":"c1"},"r2":{"country":"c1"},"r3":{"country":"c2"}}`).Map(), nil
		},
		RecommendedRegionsHandler: func(_ context.Context, itemCode string) ([]gjson.Result, error) {
			if itemCode != "fish" {
				return nil, nil
			}
			return gjson.Parse(`[{"regionId":"r1","bonus":25},{"regionId":"r2","bonus":15}]`).Array(), nil
		},
	}
}

func companiesByID(companies map[string]string) *testsCommon.DispatcherStub {
	return &testsCommon.DispatcherStub{
		BatchHandler: func(_ context.Context, calls []client.LogicalCall, _ bool) ([]client.BatchResult, error) {
			results := make([]client.BatchResult, len(calls))
			for i, call := range calls {
				companyID := call.Params["companyId"].(string)
				payload, ok := companies[companyID]
				if !ok {
					continue
				}
				results[i] = client.NewDataResult(gjson.Parse(payload))
			}

			return results, nil
		},
	}
}

func crawlerReturning(userIDs []string, companyIDs []string) *testsCommon.CrawlerStub {
	return &testsCommon.CrawlerStub{
		CrawlHandler: func(_ context.Context, seedKeys []string, build crawler.RequestBuilder, _ bool) (map[string]struct{}, error) {
			set := make(map[string]struct{})
			if len(seedKeys) == 0 {
				return set, nil
			}

			call := build(seedKeys[0], "")
			if call.Method == "user.getUsersByCountry" {
				for _, id := range userIDs {
					set[id] = struct{}{}
				}
				return set, nil
			}

			for _, id := range companyIDs {
				set[id] = struct{}{}
			}
			return set, nil
		},
	}
}

func TestNewCompanyAnalyzer(t *testing.T) {
	t.Parallel()

	t.Run("nil gateway should error", func(t *testing.T) {
		t.Parallel()

		ca, err := analyzer.NewCompanyAnalyzer(nil, &testsCommon.DispatcherStub{}, &testsCommon.CrawlerStub{})
		assert.Nil(t, ca)
		assert.NotNil(t, err)
	})
	t.Run("nil dispatcher should error", func(t *testing.T) {
		t.Parallel()

		ca, err := analyzer.NewCompanyAnalyzer(&testsCommon.GameGatewayStub{}, nil, &testsCommon.CrawlerStub{})
		assert.Nil(t, ca)
		assert.NotNil(t, err)
	})
	t.Run("nil crawler should error", func(t *testing.T) {
		t.Parallel()

		ca, err := analyzer.NewCompanyAnalyzer(&testsCommon.GameGatewayStub{}, &testsCommon.DispatcherStub{}, nil)
		assert.Nil(t, ca)
		assert.NotNil(t, err)
	})
	t.Run("should work", func(t *testing.T) {
		t.Parallel()

		ca, err := analyzer.NewCompanyAnalyzer(&testsCommon.GameGatewayStub{}, &testsCommon.DispatcherStub{}, &testsCommon.CrawlerStub{})
		assert.Nil(t, err)
		assert.NotNil(t, ca)
		assert.False(t, ca.IsInterfaceNil())
	})
}

func TestCompanyAnalyzer_CollectStats(t *testing.T) {
	t.Parallel()

	t.Run("should split companies by best region", func(t *testing.T) {
		t.Parallel()

		companies := map[string]string{
			"comp1": `{"itemCode":"fish","region":"r1","workerCount":5,"activeUpgradeLevels":{"automatedEngine":2}}`,
			"comp2": `{"itemCode":"fish","region":"r2","workerCount":3,"activeUpgradeLevels":{"automatedEngine":1}}`,
			"comp3": `{"json":{"itemCode":"fish","region":"r1","workerCount":1}}`,
			"comp4": `{"itemCode":"iron","region":"r1","workerCount":9}`,
			"comp5": `{"itemCode":"fish","region":"r1","workerCount":7,"disabledAt":"2026-01-01"}`,
		}

		ca, err := analyzer.NewCompanyAnalyzer(
			createCompanyGatewayStub(),
			companiesByID(companies),
			crawlerReturning([]string{"user1"}, []string{"comp1", "comp2", "comp3", "comp4", "comp5"}),
		)
		require.Nil(t, err)

		stats, err := ca.CollectStats(context.Background(), []string{"fish"})
		require.Nil(t, err)
		require.NotNil(t, stats["fish"])

		// comp4 tracks another item, comp5 is disabled
		expected := &analyzer.CompanyStats{
			BestCount:        2,
			BestWorkers:      6,
			BestAE:           2,
			OthersCount:      1,
			OthersWorkers:    3,
			OthersAE:         1,
			TotalCount:       3,
			TotalWorkers:     9,
			TotalAE:          3,
			BestRegionsCount: 1,
		}
		assert.Equal(t, expected, stats["fish"])
	})
	t.Run("full tie without deposits should expand to the whole country", func(t *testing.T) {
		t.Parallel()

		gateway := createCompanyGatewayStub()
		gateway.RecommendedRegionsHandler = func(_ context.Context, itemCode string) ([]gjson.Result, error) {
			recs := `[
				{"regionId":"r1","bonus":20},
				{"regionId":"r2","bonus":20},
				{"regionId":"r3","bonus":20,"depositBonus":5},
				{"regionId":"r1","bonus":20},
				{"regionId":"r2","bonus":20}
			]`
			return gjson.Parse(recs).Array(), nil
		}

		companies := map[string]string{
			"comp1": `{"itemCode":"fish","region":"r2","workerCount":1}`,
			"comp2": `{"itemCode":"fish","region":"r3","workerCount":1}`,
		}

		ca, err := analyzer.NewCompanyAnalyzer(
			gateway,
			companiesByID(companies),
			crawlerReturning([]string{"user1"}, []string{"comp1", "comp2"}),
		)
		require.Nil(t, err)

		stats, err := ca.CollectStats(context.Background(), []string{"fish"})
		require.Nil(t, err)

		// r1 and r2 expand to all of c1's regions, r3 counts by its deposit
		assert.Equal(t, 3, stats["fish"].BestRegionsCount)
		assert.Equal(t, 2, stats["fish"].BestCount)
		assert.Equal(t, 0, stats["fish"].OthersCount)
	})
	t.Run("untracked item should still report its best regions count", func(t *testing.T) {
		t.Parallel()

		ca, err := analyzer.NewCompanyAnalyzer(
			createCompanyGatewayStub(),
			companiesByID(map[string]string{}),
			crawlerReturning(nil, nil),
		)
		require.Nil(t, err)

		stats, err := ca.CollectStats(context.Background(), []string{"fish", "iron"})
		require.Nil(t, err)

		assert.Equal(t, &analyzer.CompanyStats{BestRegionsCount: 1}, stats["fish"])
		assert.Equal(t, &analyzer.CompanyStats{}, stats["iron"])
	})
}
