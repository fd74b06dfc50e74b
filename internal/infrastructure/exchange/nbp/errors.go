package nbp

import "errors"

var (
	ErrRetryableRequest = errors.New("retryable NBP API request failed")
	ErrNonRetryable     = errors.New("non-retryable NBP API error")
	ErrInvalidPayload   = errors.New("invalid NBP payload")
)
