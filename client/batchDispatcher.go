package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/multiversx/mx-chain-core-go/core/check"
	"github.com/tidwall/gjson"
)

// LogicalCall describes one logical remote call: a method identifier plus its
// parameter mapping. Immutable once constructed.
type LogicalCall struct {
	Method string
	Params map[string]interface{}
}

type resultKind int

const (
	// the zero value is the empty placeholder substituted on transport failures
	resultEmpty resultKind = iota
	resultData
	resultError
)

// BatchResult is the per-call outcome of a batched request: either the data payload,
// the item-level error carried inside a successful envelope, or the empty placeholder
// left behind by a transport failure in non-raising mode
type BatchResult struct {
	data    gjson.Result
	itemErr gjson.Result
	kind    resultKind
}

// NewDataResult creates a successful batch result
func NewDataResult(data gjson.Result) BatchResult {
	return BatchResult{data: data, kind: resultData}
}

// NewItemErrorResult creates a batch result carrying an item-level error
func NewItemErrorResult(itemErr gjson.Result) BatchResult {
	return BatchResult{itemErr: itemErr, kind: resultError}
}

// IsEmpty returns true for the transport-failure placeholder
func (r BatchResult) IsEmpty() bool {
	return r.kind == resultEmpty
}

// HasError returns true when the slot carries an item-level error
func (r BatchResult) HasError() bool {
	return r.kind == resultError
}

// ItemError returns the item-level error payload, verbatim as received
func (r BatchResult) ItemError() gjson.Result {
	return r.itemErr
}

// Data returns the payload nested under result.data of the success envelope
func (r BatchResult) Data() gjson.Result {
	return r.data
}

// ArgsBatchDispatcher is the DTO used to create a new batch dispatcher
type ArgsBatchDispatcher struct {
	Caller     BatchCaller
	MaxWidth   int
	NumWorkers int
}

// batchDispatcher splits logical calls into consecutive chunks no wider than MaxWidth
// and dispatches the chunks over a bounded worker pool, writing results back by
// original position
type batchDispatcher struct {
	caller     BatchCaller
	maxWidth   int
	numWorkers int
}

// NewBatchDispatcher creates a new batch dispatcher
func NewBatchDispatcher(args ArgsBatchDispatcher) (*batchDispatcher, error) {
	if check.IfNil(args.Caller) {
		return nil, errNilBatchCaller
	}
	if args.MaxWidth <= 0 {
		return nil, errInvalidMaxWidth
	}
	if args.NumWorkers <= 0 {
		return nil, errInvalidNumWorkers
	}

	return &batchDispatcher{
		caller:     args.Caller,
		maxWidth:   args.MaxWidth,
		numWorkers: args.NumWorkers,
	}, nil
}

// Batch dispatches all logical calls and returns one result per call, index-for-index.
// In raising mode the first chunk-level transport failure fails the whole batch; in
// non-raising mode the affected slots keep their empty placeholders.
func (bd *batchDispatcher) Batch(ctx context.Context, calls []LogicalCall, raiseOnError bool) ([]BatchResult, error) {
	results := make([]BatchResult, len(calls))
	if len(calls) == 0 {
		return results, nil
	}

	type chunkBounds struct {
		start int
		end   int
	}

	numChunks := (len(calls) + bd.maxWidth - 1) / bd.maxWidth
	jobs := make(chan chunkBounds, numChunks)

	numWorkers := bd.numWorkers
	if numWorkers > numChunks {
		numWorkers = numChunks
	}

	var wg sync.WaitGroup
	var mutErr sync.Mutex
	var firstErr error

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()

			for job := range jobs {
				err := bd.processChunk(ctx, calls[job.start:job.end], results[job.start:job.end])
				if err == nil {
					continue
				}

				mutErr.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mutErr.Unlock()
			}
		}()
	}

	for start := 0; start < len(calls); start += bd.maxWidth {
		end := start + bd.maxWidth
		if end > len(calls) {
			end = len(calls)
		}
		jobs <- chunkBounds{start: start, end: end}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		if raiseOnError {
			return nil, firstErr
		}
		log.Debug("batched chunk failed, affected slots left empty", "error", firstErr)
	}

	return results, nil
}

// processChunk issues one physical batched request and decodes it into the provided
// result slots. A malformed top-level response is a transport failure: the slots keep
// their empty placeholders.
func (bd *batchDispatcher) processChunk(ctx context.Context, chunk []LogicalCall, slots []BatchResult) error {
	resp, err := bd.caller.CallBatch(ctx, chunk)
	if err != nil {
		return err
	}

	if !resp.IsArray() {
		return errNotArray
	}
	elements := resp.Array()
	if len(elements) != len(chunk) {
		return fmt.Errorf("%w: got %d, expected %d", errBatchLengthMismatch, len(elements), len(chunk))
	}

	for i, element := range elements {
		itemErr := element.Get("error")
		if itemErr.Exists() {
			slots[i] = NewItemErrorResult(itemErr)
			continue
		}

		slots[i] = NewDataResult(element.Get("result.data"))
	}

	return nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (bd *batchDispatcher) IsInterfaceNil() bool {
	return bd == nil
}
