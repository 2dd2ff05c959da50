package coingecko

import "errors"

var (
	ErrNotFound    = errors.New("resource not found")
	ErrRateLimited = errors.New("rate limited by provider")
	ErrInvalidID   = errors.New("invalid coin id")
)
