package cart

import (
	"context"
	"errors"
)

// Storage mirrors a cart's line collection to a durable key-value slot.
// Consumers define this interface, not the Redis implementation.
type Storage interface {
	Load(ctx context.Context, key string) ([]Line, error)
	Save(ctx context.Context, key string, lines []Line) error
	Delete(ctx context.Context, key string) error
}

// ErrNotFound is returned by Load when no cart is stored under the key.
// Callers treat it as an empty cart.
var ErrNotFound = errors.New("cart not found")
