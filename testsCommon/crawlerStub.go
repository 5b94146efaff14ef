package testsCommon

import (
	"context"

	"github.com/wealthrate/wealthrate-analytics/crawler"
)

// CrawlerStub -
type CrawlerStub struct {
	CrawlHandler func(ctx context.Context, seedKeys []string, build crawler.RequestBuilder, raiseOnError bool) (map[string]struct{}, error)
}

// Crawl -
func (stub *CrawlerStub) Crawl(ctx context.Context, seedKeys []string, build crawler.RequestBuilder, raiseOnError bool) (map[string]struct{}, error) {
	if stub.CrawlHandler != nil {
		return stub.CrawlHandler(ctx, seedKeys, build, raiseOnError)
	}

	return map[string]struct{}{}, nil
}

// IsInterfaceNil -
func (stub *CrawlerStub) IsInterfaceNil() bool {
	return stub == nil
}
