package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// MenuCache keeps the last menu snapshot fetched from the backend.
type MenuCache interface {
	Get(ctx context.Context) ([]domain.MenuItem, error)
	Set(ctx context.Context, items []domain.MenuItem) error
	Delete(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")

// Noop never stores anything; used when no Redis is configured.
type Noop struct{}

func (Noop) Get(context.Context) ([]domain.MenuItem, error) {
	return nil, ErrCacheMiss
}

func (Noop) Set(context.Context, []domain.MenuItem) error {
	return nil
}

func (Noop) Delete(context.Context) error {
	return nil
}
