package testsCommon

import (
	"context"

	"github.com/wealthrate/wealthrate-analytics/client"
)

// DispatcherStub -
type DispatcherStub struct {
	BatchHandler func(ctx context.Context, calls []client.LogicalCall, raiseOnError bool) ([]client.BatchResult, error)
}

// Batch -
func (stub *DispatcherStub) Batch(ctx context.Context, calls []client.LogicalCall, raiseOnError bool) ([]client.BatchResult, error) {
	if stub.BatchHandler != nil {
		return stub.BatchHandler(ctx, calls, raiseOnError)
	}

	return make([]client.BatchResult, len(calls)), nil
}

// IsInterfaceNil -
func (stub *DispatcherStub) IsInterfaceNil() bool {
	return stub == nil
}
