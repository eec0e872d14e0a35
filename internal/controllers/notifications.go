package controllers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rafag508/mycollection/internal/cache"
	"github.com/rafag508/mycollection/internal/events"
	"github.com/rafag508/mycollection/internal/models"
	"github.com/rafag508/mycollection/internal/remote"
	"github.com/rafag508/mycollection/internal/retention"
	"github.com/sirupsen/logrus"
)

const notificationsCacheKey = "notifications"

// NotificationController coordinates release notifications, enforcing the
// age and count bounds on every read and every insert.
type NotificationController struct {
	coord  *coordinator[models.Notification]
	policy retention.Policy
	now    func() time.Time
	logger *logrus.Logger
}

// NewNotificationController creates a new notification controller
func NewNotificationController(
	store *cache.Store,
	rs remote.Store[models.Notification],
	policy retention.Policy,
	guest func() bool,
	bus *events.Bus,
	now func() time.Time,
	logger *logrus.Logger,
) *NotificationController {
	c := &NotificationController{
		policy: policy,
		now:    now,
		logger: logger,
		coord: newCoordinator(
			notificationsCacheKey, events.TopicNotificationsUpdated,
			store, rs,
			func(n models.Notification) string { return n.ID },
			guest, bus, logger,
		),
	}
	// The notifications topic always carries the newest-first slice, never the
	// keyed snapshot.
	c.coord.publish = c.publishSnapshot
	return c
}

func (c *NotificationController) publishSnapshot(snap map[string]models.Notification) {
	entries := make([]models.Notification, 0, len(snap))
	for _, n := range snap {
		entries = append(entries, n)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt > entries[j].CreatedAt
	})
	c.coord.bus.Publish(events.TopicNotificationsUpdated, entries)
}

// GetAll returns the surviving notifications newest first, evicting expired
// and excess entries as a side effect. The guarded background sync applies.
func (c *NotificationController) GetAll(ctx context.Context, opts GetOptions) []models.Notification {
	snap := c.coord.GetAll(ctx, opts)
	kept := c.enforceBounds(ctx, snap)

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].CreatedAt > kept[j].CreatedAt
	})
	return kept
}

// Add stamps a fresh id, creation time and unread flag, inserts the entry,
// re-applies both bounds, and publishes the updated snapshot.
func (c *NotificationController) Add(ctx context.Context, n models.Notification) error {
	n.ID = uuid.NewString()
	n.CreatedAt = c.now().UnixMilli()
	n.Read = false

	snap := c.coord.snapshot()
	snap[n.ID] = n
	cached := c.coord.persist(snap)
	kept := c.enforceBounds(ctx, snap)

	if _, survived := c.byID(kept, n.ID); survived {
		if !cached {
			// Cache is unavailable; the remote write is the only copy, so it
			// runs in the foreground and its failure is the caller's failure.
			if err := c.coord.remoteUpsert(ctx, n.ID, n); err != nil {
				return fmt.Errorf("failed to save notification: %w", err)
			}
		} else {
			c.coord.bestEffort("upsert", func(ctx context.Context) error {
				return c.coord.remote.Upsert(ctx, n.ID, n)
			})
		}
	}

	c.coord.bus.Publish(events.TopicNotificationsUpdated, kept)
	return nil
}

// MarkRead flips the read flag, a field-level update that never restamps the
// creation time and never changes eviction order.
func (c *NotificationController) MarkRead(ctx context.Context, id string) error {
	snap := c.coord.snapshot()
	n, ok := snap[id]
	if !ok {
		return nil
	}
	n.Read = true
	return c.coord.Put(ctx, n)
}

// UnreadCount returns the number of unread surviving notifications
func (c *NotificationController) UnreadCount(ctx context.Context) int {
	count := 0
	for _, n := range c.GetAll(ctx, GetOptions{SyncFromCloud: false}) {
		if !n.Read {
			count++
		}
	}
	return count
}

// ClearAll removes every notification, locally at once and remotely
// best-effort per entry; one remote failure never aborts the batch.
func (c *NotificationController) ClearAll(ctx context.Context) {
	snap := c.coord.snapshot()
	c.coord.persist(map[string]models.Notification{})

	for id := range snap {
		id := id
		c.coord.bestEffort("delete", func(ctx context.Context) error {
			return c.coord.remote.Delete(ctx, id)
		})
	}

	c.coord.bus.Publish(events.TopicNotificationsUpdated, []models.Notification{})
}

// enforceBounds applies the retention policy to the snapshot, persists the
// survivors when anything was evicted, and issues best-effort remote deletes
// for the evicted entries.
func (c *NotificationController) enforceBounds(ctx context.Context, snap map[string]models.Notification) []models.Notification {
	entries := make([]models.Notification, 0, len(snap))
	for _, n := range snap {
		entries = append(entries, n)
	}

	kept, evicted := c.policy.Apply(entries, c.now())
	if len(evicted) == 0 {
		return kept
	}

	surviving := make(map[string]models.Notification, len(kept))
	for _, n := range kept {
		surviving[n.ID] = n
	}
	c.coord.persist(surviving)

	for _, n := range evicted {
		id := n.ID
		c.coord.bestEffort("delete", func(ctx context.Context) error {
			return c.coord.remote.Delete(ctx, id)
		})
	}

	c.logger.WithField("count", len(evicted)).Debug("Evicted notifications")
	return kept
}

func (c *NotificationController) byID(entries []models.Notification, id string) (models.Notification, bool) {
	for _, n := range entries {
		if n.ID == id {
			return n, true
		}
	}
	return models.Notification{}, false
}

// ResetGuard clears the session reconciliation guard
func (c *NotificationController) ResetGuard() {
	c.coord.ResetGuard()
}
