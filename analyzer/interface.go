package analyzer

import (
	"context"

	"github.com/tidwall/gjson"
	"github.com/wealthrate/wealthrate-analytics/client"
	"github.com/wealthrate/wealthrate-analytics/crawler"
)

// GameGateway groups the typed upstream endpoints used by the analyzers
type GameGateway interface {
	Countries(ctx context.Context) ([]gjson.Result, error)
	Regions(ctx context.Context) (map[string]gjson.Result, error)
	ItemPrices(ctx context.Context) (gjson.Result, error)
	RecommendedRegions(ctx context.Context, itemCode string) ([]gjson.Result, error)
	ProductionInfo(ctx context.Context, itemCode string) (client.ProductionInfo, error)
	IsInterfaceNil() bool
}

// Dispatcher defines the component able to dispatch a sequence of logical calls as
// batched requests, one result per call, index-for-index
type Dispatcher interface {
	Batch(ctx context.Context, calls []client.LogicalCall, raiseOnError bool) ([]client.BatchResult, error)
	IsInterfaceNil() bool
}

// Crawler defines the component able to drain paginated collections into an id set
type Crawler interface {
	Crawl(ctx context.Context, seedKeys []string, build crawler.RequestBuilder, raiseOnError bool) (map[string]struct{}, error)
	IsInterfaceNil() bool
}
