package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/N1femi/Thriva/internal/badge"
)

// BadgeCatalog resolves badge names to stored badges. It caches the badges
// table and reloads it on a miss, at most once per refresh interval, so a
// badge seeded after startup is found without a restart.
type BadgeCatalog struct {
	store   Datastore
	clock   Clock
	refresh time.Duration

	mu       sync.RWMutex
	byName   map[string]badge.Badge
	loadedAt time.Time
}

func NewBadgeCatalog(store Datastore, clock Clock, refresh time.Duration) *BadgeCatalog {
	return &BadgeCatalog{store: store, clock: clock, refresh: refresh}
}

// Lookup returns the badge stored under name. ok is false when the catalog
// does not know the name, which callers treat as a no-op.
func (c *BadgeCatalog) Lookup(ctx context.Context, name string) (badge.Badge, bool, error) {
	c.mu.RLock()
	b, ok := c.byName[name]
	stale := c.byName == nil || c.clock.Now().Sub(c.loadedAt) >= c.refresh
	c.mu.RUnlock()

	if ok || !stale {
		return b, ok, nil
	}

	if err := c.reload(ctx); err != nil {
		return badge.Badge{}, false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok = c.byName[name]
	return b, ok, nil
}

// All returns every catalog badge, reloading the table once the cached copy
// is older than the refresh interval.
func (c *BadgeCatalog) All(ctx context.Context) ([]badge.Badge, error) {
	c.mu.RLock()
	stale := c.byName == nil || c.clock.Now().Sub(c.loadedAt) >= c.refresh
	c.mu.RUnlock()

	if stale {
		if err := c.reload(ctx); err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]badge.Badge, 0, len(c.byName))
	for _, b := range c.byName {
		out = append(out, b)
	}
	return out, nil
}

func (c *BadgeCatalog) reload(ctx context.Context) error {
	badges, err := c.store.ListBadges(ctx)
	if err != nil {
		return fmt.Errorf("failed to load badge catalog: %w", err)
	}

	byName := make(map[string]badge.Badge, len(badges))
	for _, b := range badges {
		byName[b.Name] = b
	}

	c.mu.Lock()
	c.byName = byName
	c.loadedAt = c.clock.Now()
	c.mu.Unlock()
	return nil
}
