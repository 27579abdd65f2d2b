package cache

import (
	"context"
	"time"
)

// Store is the key-value surface used for derived-view caching. Values are
// serialized by callers; a miss is (_, false, nil).
type Store interface {
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}
