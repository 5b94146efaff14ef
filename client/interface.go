package client

import (
	"context"

	"github.com/tidwall/gjson"
)

// CredentialProvider defines the component able to hand out an API key that is allowed
// to issue a call right now
type CredentialProvider interface {
	// Acquire blocks until a credential becomes eligible under its rate quota and
	// returns its key. The returned error can only be the context's error.
	Acquire(ctx context.Context) (string, error)

	IsInterfaceNil() bool
}

// BatchCaller defines the component able to issue one physical batched request
type BatchCaller interface {
	// CallBatch sends all provided logical calls as a single batched request and
	// returns the decoded top-level response
	CallBatch(ctx context.Context, calls []LogicalCall) (gjson.Result, error)

	IsInterfaceNil() bool
}
