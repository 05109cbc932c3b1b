package cache

import (
	"context"
	"errors"

	"github.com/Skotchmaster/store_api/internal/transport"
)

// CartCache is a read-through cache of rendered carts. Readers take Version
// before loading from the store and pass it to Set; Delete bumps the version,
// so a view loaded before an invalidation is never stored.
type CartCache interface {
	Get(ctx context.Context, userID uint) (*transport.CartView, error)
	Version(ctx context.Context, userID uint) (int64, error)
	Set(ctx context.Context, userID uint, version int64, cart *transport.CartView) error
	Delete(ctx context.Context, userIDs ...uint) error
}

var ErrCacheMiss = errors.New("cache miss")

// Nop is used when no Redis is configured; every Get misses.
type Nop struct{}

func (Nop) Get(context.Context, uint) (*transport.CartView, error) { return nil, ErrCacheMiss }

func (Nop) Version(context.Context, uint) (int64, error) { return 0, nil }

func (Nop) Set(context.Context, uint, int64, *transport.CartView) error { return nil }

func (Nop) Delete(context.Context, ...uint) error { return nil }
