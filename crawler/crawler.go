package crawler

import (
	"context"

	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
	"github.com/wealthrate/wealthrate-analytics/client"
)

var log = logger.GetOrCreate("crawler")

// RequestBuilder creates the logical call for one frontier entry, injecting the
// continuation cursor when one is present (cursor is empty on the first round)
type RequestBuilder func(key string, cursor string) client.LogicalCall

type frontierEntry struct {
	key    string
	cursor string
}

// paginationCrawler drains cursor-based collections across a frontier of parent keys,
// one round at a time, deduplicating the discovered identifiers into a set
type paginationCrawler struct {
	dispatcher Dispatcher
}

// NewPaginationCrawler creates a new pagination crawler
func NewPaginationCrawler(dispatcher Dispatcher) (*paginationCrawler, error) {
	if check.IfNil(dispatcher) {
		return nil, errNilDispatcher
	}

	return &paginationCrawler{
		dispatcher: dispatcher,
	}, nil
}

// Crawl repeats rounds until the frontier is empty: every entry of the current frontier
// is dispatched as one batch, identifiers are absorbed into the result set and entries
// with a continuation cursor are re-enqueued for the next round. An item-level error
// drops that branch only; sibling branches continue.
func (pc *paginationCrawler) Crawl(ctx context.Context, seedKeys []string, build RequestBuilder, raiseOnError bool) (map[string]struct{}, error) {
	if build == nil {
		return nil, errNilRequestBuilder
	}

	discovered := make(map[string]struct{})

	frontier := make([]frontierEntry, 0, len(seedKeys))
	for _, key := range seedKeys {
		frontier = append(frontier, frontierEntry{key: key})
	}

	for round := 0; len(frontier) > 0; round++ {
		calls := make([]client.LogicalCall, 0, len(frontier))
		for _, entry := range frontier {
			calls = append(calls, build(entry.key, entry.cursor))
		}

		results, err := pc.dispatcher.Batch(ctx, calls, raiseOnError)
		if err != nil {
			return nil, err
		}

		next := make([]frontierEntry, 0)
		for i, res := range results {
			if res.HasError() {
				log.Debug("branch returned an item-level error, dropping",
					"key", frontier[i].key, "error", res.ItemError().String())
				continue
			}
			if res.IsEmpty() {
				continue
			}

			payload := unwrapPayload(res.Data())
			for _, item := range payload.Get("items").Array() {
				id := itemID(item)
				if len(id) > 0 {
					discovered[id] = struct{}{}
				}
			}

			cursor := payload.Get("nextCursor").String()
			if len(cursor) > 0 {
				next = append(next, frontierEntry{key: frontier[i].key, cursor: cursor})
			}
		}

		log.Trace("crawl round done", "round", round, "discovered", len(discovered), "next frontier", len(next))
		frontier = next
	}

	return discovered, nil
}

// the upstream wraps some payloads in a superjson envelope under a "json" key
func unwrapPayload(data gjson.Result) gjson.Result {
	inner := data.Get("json")
	if inner.Exists() {
		return inner
	}

	return data
}

func itemID(item gjson.Result) string {
	if item.IsObject() {
		return item.Get("_id").String()
	}

	return item.String()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (pc *paginationCrawler) IsInterfaceNil() bool {
	return pc == nil
}
