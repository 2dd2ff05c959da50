package market

import "errors"

var (
	// ErrUnavailable — провайдер не ответил или ответил мусором: «нет данных»
	ErrUnavailable = errors.New("market data unavailable")
	ErrNotFound    = errors.New("market data not found")
)
