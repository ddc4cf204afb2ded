// Package metadata is the local key-value table backing durable client
// state (session token, cached board data, flags).
package metadata

import (
	"context"
)

// Repository stores string values by key. A missing key is not an error:
// Get reports it with ok == false.
type Repository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context, prefix string) (map[string]string, error)
	Clear(ctx context.Context, prefix string) error
}
