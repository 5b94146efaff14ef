package crawler

import "errors"

var (
	errNilDispatcher     = errors.New("nil dispatcher")
	errNilRequestBuilder = errors.New("nil request builder")
)
