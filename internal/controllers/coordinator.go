// Package controllers implements the cache-first collection coordinators.
// Each coordinator makes the local cache the source of truth for immediate
// reads and keeps it eventually consistent with the remote store, at most
// once per session per collection unless explicitly forced.
package controllers

import (
	"context"
	"fmt"
	"sync"

	"github.com/rafag508/mycollection/internal/cache"
	"github.com/rafag508/mycollection/internal/events"
	"github.com/rafag508/mycollection/internal/remote"
	"github.com/sirupsen/logrus"
)

// GetOptions controls a collection read
type GetOptions struct {
	SyncFromCloud bool
}

// coordinator is the generic cache-first pattern instantiated once per
// collection. The snapshot is a map keyed by record id, stored whole under a
// single cache key.
type coordinator[T any] struct {
	key    string
	topic  string
	store  *cache.Store
	remote remote.Store[T]
	keyOf  func(T) string
	guest  func() bool
	bus    *events.Bus
	logger *logrus.Logger

	// reconcile folds a fetched remote snapshot into the cached one. The
	// default replaces the cache outright; progress overrides it with
	// per-record resolution.
	reconcile func(ctx context.Context, local, fetched map[string]T) map[string]T

	// publish overrides the default topic publication of the merged snapshot,
	// for collections whose topic carries a different snapshot shape.
	publish func(snap map[string]T)

	mu         sync.Mutex
	reconciled bool // set before the fetch starts, once per session
}

func newCoordinator[T any](
	key, topic string,
	store *cache.Store,
	rs remote.Store[T],
	keyOf func(T) string,
	guest func() bool,
	bus *events.Bus,
	logger *logrus.Logger,
) *coordinator[T] {
	return &coordinator[T]{
		key:    key,
		topic:  topic,
		store:  store,
		remote: rs,
		keyOf:  keyOf,
		guest:  guest,
		bus:    bus,
		logger: logger,
	}
}

// snapshot returns the current cached collection, never nil
func (c *coordinator[T]) snapshot() map[string]T {
	snap := cache.Get(c.store, c.key, map[string]T(nil))
	if snap == nil {
		snap = make(map[string]T)
	}
	return snap
}

func (c *coordinator[T]) persist(snap map[string]T) bool {
	return cache.Set(c.store, c.key, snap)
}

// GetAll returns the cached snapshot immediately. When opts ask for a cloud
// sync, the session is not a guest session, and this collection has not
// reconciled yet this session, a background fetch refreshes the cache and
// publishes the collection's synced event. Fetch failures are logged only.
func (c *coordinator[T]) GetAll(ctx context.Context, opts GetOptions) map[string]T {
	snap := c.snapshot()

	if opts.SyncFromCloud && !c.guest() && c.claimGuard() {
		go c.reconcileFromRemote(context.WithoutCancel(ctx))
	}

	return snap
}

// claimGuard sets the per-session reconciliation guard and reports whether
// this caller claimed it. The guard is taken before the fetch starts so
// concurrent readers never issue duplicate fetches.
func (c *coordinator[T]) claimGuard() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reconciled {
		return false
	}
	c.reconciled = true
	return true
}

// ResetGuard allows one fresh reconciliation, used when the hosting session
// is explicitly reloaded.
func (c *coordinator[T]) ResetGuard() {
	c.mu.Lock()
	c.reconciled = false
	c.mu.Unlock()
}

func (c *coordinator[T]) reconcileFromRemote(ctx context.Context) {
	fetched, err := c.remote.ListAll(ctx)
	if err != nil {
		if !remote.Silent(err) {
			c.logger.WithError(err).WithField("collection", c.key).Warn("Background sync failed, keeping cache")
		}
		return
	}

	remoteSnap := make(map[string]T, len(fetched))
	for _, v := range fetched {
		remoteSnap[c.keyOf(v)] = v
	}

	var merged map[string]T
	if c.reconcile != nil {
		merged = c.reconcile(ctx, c.snapshot(), remoteSnap)
	} else {
		merged = remoteSnap
	}

	c.persist(merged)
	if c.publish != nil {
		c.publish(merged)
	} else {
		c.bus.Publish(c.topic, merged)
	}

	c.logger.WithFields(logrus.Fields{
		"collection": c.key,
		"count":      len(merged),
	}).Debug("Collection reconciled from cloud")
}

// Put writes the record into the cache synchronously, then issues a
// best-effort remote write. The write only fails when the cache write and an
// immediate remote fallback both fail.
func (c *coordinator[T]) Put(ctx context.Context, value T) error {
	id := c.keyOf(value)
	snap := c.snapshot()
	snap[id] = value
	cached := c.persist(snap)

	if !cached {
		// Cache is unavailable; the remote write is the only copy, so it
		// runs in the foreground and its failure is the caller's failure.
		if err := c.remoteUpsert(ctx, id, value); err != nil {
			return fmt.Errorf("failed to save %s record: %w", c.key, err)
		}
		return nil
	}

	c.bestEffort("upsert", func(ctx context.Context) error {
		return c.remoteUpsert(ctx, id, value)
	})
	return nil
}

// Remove deletes the record from the cache synchronously, then issues a
// best-effort remote delete.
func (c *coordinator[T]) Remove(ctx context.Context, id string) {
	snap := c.snapshot()
	delete(snap, id)
	c.persist(snap)

	c.bestEffort("delete", func(ctx context.Context) error {
		return c.remote.Delete(ctx, id)
	})
}

func (c *coordinator[T]) remoteUpsert(ctx context.Context, id string, value T) error {
	if c.guest() {
		return nil
	}
	return c.remote.Upsert(ctx, id, value)
}

// bestEffort runs a remote operation in the background. Failures never reach
// the caller: permission and authentication errors are silent, everything
// else is logged.
func (c *coordinator[T]) bestEffort(op string, fn func(context.Context) error) {
	if c.guest() {
		return
	}
	go func() {
		if err := fn(context.Background()); err != nil && !remote.Silent(err) {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"collection": c.key,
				"op":         op,
			}).Warn("Best-effort remote write failed")
		}
	}()
}
