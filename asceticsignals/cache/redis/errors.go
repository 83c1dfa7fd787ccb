package redis

import "github.com/pkg/errors"

var (
	ErrFailedToParseRedisConnString = errors.New("redis: failed to parse connection string")
	ErrRedisNotReady                = errors.New("redis: not ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("redis: empty connection url")
	ErrHealthcheckFailed            = errors.New("redis: healthcheck failed")
)
