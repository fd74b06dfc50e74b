package domain

import "errors"

// Errores de dominio compartidos por el resolver, el scheduler y los handlers
var (
	ErrUpstreamUnavailable = errors.New("upstream exchange-rate API unavailable")
	ErrNoDataForRange      = errors.New("no data for requested range")
	ErrFutureDate          = errors.New("requested date is in the future")
	ErrInvalidRange        = errors.New("invalid date range")
	ErrRangeTooLong        = errors.New("date range too long")
	ErrInvalidCurrency     = errors.New("invalid currency code")
	ErrUnknownCurrency     = errors.New("currency not present in rates table")
	ErrUnknownJob          = errors.New("unknown warming job")
	ErrUnknownCache        = errors.New("unknown cache name")
	ErrJobFailed           = errors.New("warming job failed")
)
