package testsCommon

import (
	"context"

	"github.com/tidwall/gjson"
	"github.com/wealthrate/wealthrate-analytics/client"
)

// CredentialProviderStub -
type CredentialProviderStub struct {
	AcquireHandler func(ctx context.Context) (string, error)
}

// Acquire -
func (stub *CredentialProviderStub) Acquire(ctx context.Context) (string, error) {
	if stub.AcquireHandler != nil {
		return stub.AcquireHandler(ctx)
	}

	return "test-key", nil
}

// IsInterfaceNil -
func (stub *CredentialProviderStub) IsInterfaceNil() bool {
	return stub == nil
}

// BatchCallerStub -
type BatchCallerStub struct {
	CallBatchHandler func(ctx context.Context, calls []client.LogicalCall) (gjson.Result, error)
}

// CallBatch -
func (stub *BatchCallerStub) CallBatch(ctx context.Context, calls []client.LogicalCall) (gjson.Result, error) {
	if stub.CallBatchHandler != nil {
		return stub.CallBatchHandler(ctx, calls)
	}

	return gjson.Parse("[]"), nil
}

// IsInterfaceNil -
func (stub *BatchCallerStub) IsInterfaceNil() bool {
	return stub == nil
}
