package crawler_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/wealthrate/wealthrate-analytics/client"
	"github.com/wealthrate/wealthrate-analytics/crawler"
	"github.com/wealthrate/wealthrate-analytics/testsCommon"
)

func usersRequestBuilder(key string, cursor string) client.LogicalCall {
	params := map[string]interface{}{"countryId": key}
	if len(cursor) > 0 {
		params["cursor"] = cursor
	}

	return client.LogicalCall{
		Method: "user.getUsersByCountry",
		Params: params,
	}
}

func TestNewPaginationCrawler(t *testing.T) {
	t.Parallel()

	t.Run("nil dispatcher should error", func(t *testing.T) {
		t.Parallel()

		pc, err := crawler.NewPaginationCrawler(nil)
		assert.Nil(t, pc)
		assert.NotNil(t, err)
	})
	t.Run("should work", func(t *testing.T) {
		t.Parallel()

		pc, err := crawler.NewPaginationCrawler(&testsCommon.DispatcherStub{})
		assert.Nil(t, err)
		assert.NotNil(t, pc)
		assert.False(t, pc.IsInterfaceNil())
	})
}

func TestPaginationCrawler_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("nil request builder should error", func(t *testing.T) {
		t.Parallel()

		pc, err := crawler.NewPaginationCrawler(&testsCommon.DispatcherStub{})
		require.Nil(t, err)

		discovered, err := pc.Crawl(context.Background(), []string{"country1"}, nil, true)
		assert.Nil(t, discovered)
		assert.NotNil(t, err)
	})
	t.Run("should follow cursors until the collections drain", func(t *testing.T) {
		t.Parallel()

		dispatcher := &testsCommon.DispatcherStub{
			BatchHandler: func(_ context.Context, calls []client.LogicalCall, _ bool) ([]client.BatchResult, error) {
				results := make([]client.BatchResult, 0, len(calls))
				for _, call := range calls {
					countryID := call.Params["countryId"].(string)
					cursor, _ := call.Params["cursor"].(string)

					var payload string
					if len(cursor) == 0 {
						payload = fmt.Sprintf(`{"items":[{"_id":"%s-user1"},{"_id":"%s-user2"}],"nextCursor":"page2"}`, countryID, countryID)
					} else {
						payload = fmt.Sprintf(`{"items":[{"_id":"%s-user3"}]}`, countryID)
					}
					results = append(results, client.NewDataResult(gjson.Parse(payload)))
				}

				return results, nil
			},
		}

		pc, err := crawler.NewPaginationCrawler(dispatcher)
		require.Nil(t, err)

		discovered, err := pc.Crawl(context.Background(), []string{"c1", "c2"}, usersRequestBuilder, true)
		require.Nil(t, err)

		expected := map[string]struct{}{
			"c1-user1": {}, "c1-user2": {}, "c1-user3": {},
			"c2-user1": {}, "c2-user2": {}, "c2-user3": {},
		}
		assert.Equal(t, expected, discovered)
	})
	t.Run("should unwrap the superjson envelope and accept plain string items", func(t *testing.T) {
		t.Parallel()

		dispatcher := &testsCommon.DispatcherStub{
			BatchHandler: func(_ context.Context, calls []client.LogicalCall, _ bool) ([]client.BatchResult, error) {
				payload := `{"json":{"items":["user1","user2"]}}`
				return []client.BatchResult{client.NewDataResult(gjson.Parse(payload))}, nil
			},
		}

		pc, err := crawler.NewPaginationCrawler(dispatcher)
		require.Nil(t, err)

		discovered, err := pc.Crawl(context.Background(), []string{"c1"}, usersRequestBuilder, true)
		require.Nil(t, err)
		assert.Equal(t, map[string]struct{}{"user1": {}, "user2": {}}, discovered)
	})
	t.Run("item-level error should drop that branch only", func(t *testing.T) {
		t.Parallel()

		dispatcher := &testsCommon.DispatcherStub{
			BatchHandler: func(_ context.Context, calls []client.LogicalCall, _ bool) ([]client.BatchResult, error) {
				results := make([]client.BatchResult, 0, len(calls))
				for _, call := range calls {
					if call.Params["countryId"] == "bad" {
						results = append(results, client.NewItemErrorResult(gjson.Parse(`{"json":{"message":"NOT_FOUND"}}`)))
						continue
					}
					results = append(results, client.NewDataResult(gjson.Parse(`{"items":[{"_id":"user1"}]}`)))
				}

				return results, nil
			},
		}

		pc, err := crawler.NewPaginationCrawler(dispatcher)
		require.Nil(t, err)

		discovered, err := pc.Crawl(context.Background(), []string{"bad", "good"}, usersRequestBuilder, false)
		require.Nil(t, err)
		assert.Equal(t, map[string]struct{}{"user1": {}}, discovered)
	})
	t.Run("empty placeholder should be skipped without re-enqueueing", func(t *testing.T) {
		t.Parallel()

		numRounds := 0
		dispatcher := &testsCommon.DispatcherStub{
			BatchHandler: func(_ context.Context, calls []client.LogicalCall, _ bool) ([]client.BatchResult, error) {
				numRounds++
				return make([]client.BatchResult, len(calls)), nil
			},
		}

		pc, err := crawler.NewPaginationCrawler(dispatcher)
		require.Nil(t, err)

		discovered, err := pc.Crawl(context.Background(), []string{"c1", "c2"}, usersRequestBuilder, false)
		require.Nil(t, err)
		assert.Empty(t, discovered)
		assert.Equal(t, 1, numRounds)
	})
	t.Run("dispatcher failure should propagate", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("expected error")
		dispatcher := &testsCommon.DispatcherStub{
			BatchHandler: func(_ context.Context, _ []client.LogicalCall, _ bool) ([]client.BatchResult, error) {
				return nil, expectedErr
			},
		}

		pc, err := crawler.NewPaginationCrawler(dispatcher)
		require.Nil(t, err)

		discovered, err := pc.Crawl(context.Background(), []string{"c1"}, usersRequestBuilder, true)
		assert.Nil(t, discovered)
		assert.Equal(t, expectedErr, err)
	})
}
