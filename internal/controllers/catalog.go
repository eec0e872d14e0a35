package controllers

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rafag508/mycollection/internal/cache"
	"github.com/rafag508/mycollection/internal/events"
	"github.com/rafag508/mycollection/internal/models"
	"github.com/rafag508/mycollection/internal/remote"
	"github.com/rafag508/mycollection/internal/resolve"
	"github.com/sirupsen/logrus"
)

const (
	catalogCacheKey = "catalog.items"
	orderCacheKey   = "catalog.order"
	orderDocID      = "catalog"
)

// CatalogController coordinates the user's collection of movies and series,
// and the user-defined display order over them.
type CatalogController struct {
	items        *coordinator[models.CatalogItem]
	progressCtrl *ProgressController

	store       *cache.Store
	orderRemote remote.Store[models.OrderList]
	guest       func() bool
	bus         *events.Bus
	logger      *logrus.Logger

	orderMu         sync.Mutex
	orderReconciled bool
}

// NewCatalogController creates a new catalog controller. Removing an item
// cascades to its progress record through progressCtrl.
func NewCatalogController(
	store *cache.Store,
	itemsRemote remote.Store[models.CatalogItem],
	orderRemote remote.Store[models.OrderList],
	progressCtrl *ProgressController,
	guest func() bool,
	bus *events.Bus,
	logger *logrus.Logger,
) *CatalogController {
	return &CatalogController{
		items: newCoordinator(
			catalogCacheKey, events.TopicCatalogSynced,
			store, itemsRemote,
			func(i models.CatalogItem) string { return i.ID },
			guest, bus, logger,
		),
		progressCtrl: progressCtrl,
		store:        store,
		orderRemote:  orderRemote,
		guest:        guest,
		bus:          bus,
		logger:       logger,
	}
}

// GetAll returns the cached catalog immediately, triggering the once-per-
// session background reconciliation when requested.
func (c *CatalogController) GetAll(ctx context.Context, opts GetOptions) map[string]models.CatalogItem {
	return c.items.GetAll(ctx, opts)
}

// Get returns one cached item
func (c *CatalogController) Get(ctx context.Context, id string) (models.CatalogItem, bool) {
	item, ok := c.items.snapshot()[id]
	return item, ok
}

// Add inserts a new item: cache first, then best-effort remote
func (c *CatalogController) Add(ctx context.Context, item models.CatalogItem) error {
	return c.items.Put(ctx, item)
}

// Update replaces an existing item: cache first, then best-effort remote
func (c *CatalogController) Update(ctx context.Context, item models.CatalogItem) error {
	return c.items.Put(ctx, item)
}

// Remove deletes an item and cascades to its progress record
func (c *CatalogController) Remove(ctx context.Context, id string) {
	c.items.Remove(ctx, id)
	c.progressCtrl.Delete(ctx, id)
}

// IDs returns the catalog ids in deterministic catalog-iteration order
func (c *CatalogController) IDs() []string {
	snap := c.items.snapshot()
	ids := make([]string, 0, len(snap))
	for id := range snap {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetOrder returns the display order, completed so that every catalog id
// appears exactly once. Ids missing from the stored order are appended in
// catalog-iteration order. The same guarded background sync applies.
func (c *CatalogController) GetOrder(ctx context.Context, opts GetOptions) []string {
	stored := cache.Get(c.store, orderCacheKey, []string(nil))
	completed := resolve.CompleteOrder(stored, c.IDs())

	if len(completed) != len(stored) {
		cache.Set(c.store, orderCacheKey, completed)
	}

	if opts.SyncFromCloud && !c.guest() && c.claimOrderGuard() {
		go c.reconcileOrder(context.WithoutCancel(ctx))
	}

	return completed
}

// SaveOrder persists a new display order: cache first, then best-effort
// remote.
func (c *CatalogController) SaveOrder(ctx context.Context, ids []string) error {
	if !cache.Set(c.store, orderCacheKey, ids) {
		if err := c.orderRemote.Upsert(ctx, orderDocID, models.OrderList{IDs: ids}); err != nil {
			return err
		}
		return nil
	}

	if c.guest() {
		return nil
	}
	go func() {
		if err := c.orderRemote.Upsert(context.Background(), orderDocID, models.OrderList{IDs: ids}); err != nil && !remote.Silent(err) {
			c.logger.WithError(err).Warn("Best-effort order write failed")
		}
	}()
	return nil
}

func (c *CatalogController) claimOrderGuard() bool {
	c.orderMu.Lock()
	defer c.orderMu.Unlock()
	if c.orderReconciled {
		return false
	}
	c.orderReconciled = true
	return true
}

// reconcileOrder merges the remote order with the local one: remote as base
// when non-empty, local-only ids appended. No id is ever dropped.
func (c *CatalogController) reconcileOrder(ctx context.Context) {
	doc, err := c.orderRemote.GetOne(ctx, orderDocID)
	if err != nil {
		if !errors.Is(err, remote.ErrNotFound) && !remote.Silent(err) {
			c.logger.WithError(err).Warn("Order sync failed, keeping cache")
		}
		return
	}

	local := cache.Get(c.store, orderCacheKey, []string(nil))
	merged := resolve.MergeOrder(doc.IDs, local)
	merged = resolve.CompleteOrder(merged, c.IDs())

	cache.Set(c.store, orderCacheKey, merged)
	c.bus.Publish(events.TopicOrderSynced, merged)
}

// ResetGuards clears the session reconciliation guards for items and order
func (c *CatalogController) ResetGuards() {
	c.items.ResetGuard()
	c.orderMu.Lock()
	c.orderReconciled = false
	c.orderMu.Unlock()
}
