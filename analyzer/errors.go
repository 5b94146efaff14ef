package analyzer

import "errors"

var (
	errNilGateway    = errors.New("nil game gateway")
	errNilDispatcher = errors.New("nil dispatcher")
	errNilCrawler    = errors.New("nil crawler")
)
