package menu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var ErrItemNotFound = errors.New("pizza not on the menu")

// Source is the backend side of the menu.
type Source interface {
	FetchMenu(ctx context.Context) ([]domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, item domain.NewMenuItem) error
}

type Service struct {
	source Source
	cache  cache.MenuCache
	log    *zap.Logger
	sfg    singleflight.Group // collapses concurrent fetches on a cache miss

	mu       sync.RWMutex
	snapshot []domain.MenuItem // last menu served; prices are captured from it
}

func NewService(source Source, menuCache cache.MenuCache, log *zap.Logger) *Service {
	if menuCache == nil {
		menuCache = cache.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		source: source,
		cache:  menuCache,
		log:    log,
	}
}

// Menu returns the cached snapshot or fetches a fresh one. Fetch errors
// are returned as is; the caller shows "no menu available".
func (s *Service) Menu(ctx context.Context) ([]domain.MenuItem, error) {
	items, err := s.cache.Get(ctx)
	if err == nil {
		s.remember(items)
		return items, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("menu cache get failed", zap.Error(err))
	}
	return s.fetch(ctx)
}

// Refresh drops the cached snapshot and fetches the menu again.
func (s *Service) Refresh(ctx context.Context) ([]domain.MenuItem, error) {
	s.invalidate()
	return s.fetch(ctx)
}

// Lookup finds a pizza by id in the menu last shown to shoppers. The
// backend is only asked when no menu has been loaded yet, so prices do not
// change between viewing the menu and adding to the cart.
func (s *Service) Lookup(ctx context.Context, id string) (domain.MenuItem, error) {
	items, ok := s.lastMenu()
	if !ok {
		var err error
		items, err = s.Menu(ctx)
		if err != nil {
			return domain.MenuItem{}, err
		}
	}
	for _, item := range items {
		if item.ID.String() == id {
			return item, nil
		}
	}
	return domain.MenuItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// SeedSamples creates the sample pizzas on the backend concurrently and
// then reloads the menu.
func (s *Service) SeedSamples(ctx context.Context) ([]domain.MenuItem, error) {
	g, gctx := errgroup.WithContext(ctx)
	for _, sample := range Samples {
		sample := sample
		g.Go(func() error {
			return s.source.CreateMenuItem(gctx, sample)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to add sample pizzas: %w", err)
	}
	return s.Refresh(ctx)
}

func (s *Service) fetch(ctx context.Context) ([]domain.MenuItem, error) {
	v, err, _ := s.sfg.Do("menu", func() (interface{}, error) {
		items, err := s.source.FetchMenu(ctx)
		if err != nil {
			return nil, err
		}
		s.remember(items)

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(setCtx, items); err != nil {
				s.log.Warn("menu cache set failed", zap.Error(err))
			}
		}()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.MenuItem), nil
}

func (s *Service) invalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx); err != nil {
		s.log.Warn("menu cache invalidate failed", zap.Error(err))
	}
}

func (s *Service) remember(items []domain.MenuItem) {
	snapshot := make([]domain.MenuItem, len(items))
	copy(snapshot, items)

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
}

func (s *Service) lastMenu() ([]domain.MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.snapshot != nil
}
