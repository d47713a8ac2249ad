package inspect

import "errors"

var (
	ErrServerAlreadyRunning = errors.New("inspector server is already running")
	ErrMissingAddress       = errors.New("inspector address is required")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrLoadRateExceeded     = errors.New("too many load requests")
)
