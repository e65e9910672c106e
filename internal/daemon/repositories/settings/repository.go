// Package settings persists daemon config key/value pairs.
package settings

import "context"

// Repository stores config entries. Get returns common.ErrorNotFound
// for unknown keys.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
