package crawler

import (
	"context"

	"github.com/wealthrate/wealthrate-analytics/client"
)

// Dispatcher defines the component able to dispatch a sequence of logical calls as
// batched requests, one result per call, index-for-index
type Dispatcher interface {
	Batch(ctx context.Context, calls []client.LogicalCall, raiseOnError bool) ([]client.BatchResult, error)
	IsInterfaceNil() bool
}
