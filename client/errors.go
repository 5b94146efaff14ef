package client

import (
	"errors"
	"net/http"
)

var (
	errNoCredentials       = errors.New("no API credentials provided")
	errInvalidQuota        = errors.New("quota per window must be positive")
	errInvalidWindow       = errors.New("window duration must be positive")
	errNilCredentialPool   = errors.New("nil credential pool")
	errNilBatchCaller      = errors.New("nil batch caller")
	errInvalidMaxWidth     = errors.New("max batch width must be positive")
	errInvalidNumWorkers   = errors.New("number of workers must be positive")
	errEmptyBaseURL        = errors.New("empty base URL")
	errNotArray            = errors.New("batched response is not a JSON array")
	errBatchLengthMismatch = errors.New("batched response length does not match the request")
	errInvalidJSONResponse = errors.New("response body is not valid JSON")
)

type errStatusNotOK int

func (e errStatusNotOK) Error() string {
	return "non-2xx HTTP status code: " + http.StatusText(int(e))
}
