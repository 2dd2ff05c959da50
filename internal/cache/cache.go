package cache

import (
	"context"
	"strings"
	"time"
)

// Cache — хранилище ответов провайдера со сроком жизни.
// Get возвращает ok=false, если ключа нет или он протух.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key собирает ключ вида resource:param1:param2
func Key(resource string, params ...string) string {
	parts := append([]string{resource}, params...)
	return strings.Join(parts, ":")
}
