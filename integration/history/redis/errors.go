package redis

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")

	ErrNilClient      = errors.New("redis client is nil")
	ErrEmptySession   = errors.New("history session key is empty")
	ErrCorruptedEntry = errors.New("stored history entry cannot be decoded")
	ErrBackendFailure = errors.New("redis history operation failed")
)
