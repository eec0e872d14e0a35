package controllers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rafag508/mycollection/internal/cache"
	"github.com/rafag508/mycollection/internal/events"
	"github.com/rafag508/mycollection/internal/models"
	"github.com/rafag508/mycollection/internal/retention"
)

func notifID(n models.Notification) string { return n.ID }

func newNotifController(rs *fakeRemote[models.Notification], now *time.Time) *NotificationController {
	return NewNotificationController(
		testStore(), rs, retention.Default(),
		func() bool { return false }, events.NewBus(),
		func() time.Time { return *now }, testLogger(),
	)
}

func TestAddStampsEntry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctrl := newNotifController(newFakeRemote(notifID), &now)
	ctx := context.Background()

	ctrl.Add(ctx, models.Notification{Kind: models.NotificationMovieRelease, ItemID: "m1", Title: "Heat", Read: true})

	got := ctrl.GetAll(ctx, GetOptions{SyncFromCloud: false})
	if len(got) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(got))
	}
	n := got[0]
	if n.ID == "" {
		t.Error("Insert must stamp a unique id")
	}
	if n.CreatedAt != now.UnixMilli() {
		t.Errorf("Insert must stamp creation time, got %d", n.CreatedAt)
	}
	if n.Read {
		t.Error("Insert must reset the read flag")
	}
}

func TestExpiredEntriesDropOnRead(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctrl := newNotifController(newFakeRemote(notifID), &now)
	ctx := context.Background()

	// Insert at three ages by moving the clock.
	for _, age := range []time.Duration{40 * 24 * time.Hour, 10 * 24 * time.Hour, 0} {
		now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(-age)
		ctrl.Add(ctx, models.Notification{Kind: models.NotificationMovieRelease, ItemID: "m1"})
	}
	now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got := ctrl.GetAll(ctx, GetOptions{SyncFromCloud: false})
	if len(got) != 2 {
		t.Fatalf("Exactly the two non-expired entries must remain, got %d", len(got))
	}
	for _, n := range got {
		if n.CreatedAt < now.AddDate(0, 0, -30).UnixMilli() {
			t.Errorf("Expired entry survived: created at %d", n.CreatedAt)
		}
	}
}

func TestCountBoundOnInsert(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rs := newFakeRemote(notifID)
	ctrl := newNotifController(rs, &now)
	ctx := context.Background()

	base := now
	for i := 0; i < 180; i++ {
		now = base.Add(time.Duration(i) * time.Minute)
		ctrl.Add(ctx, models.Notification{Kind: models.NotificationMovieRelease, ItemID: fmt.Sprintf("m%d", i)})
	}
	now = base.Add(181 * time.Minute)

	got := ctrl.GetAll(ctx, GetOptions{SyncFromCloud: false})
	if len(got) != 150 {
		t.Fatalf("Expected 150 notifications after bound, got %d", len(got))
	}

	// Newest first; the 30 oldest inserts are gone.
	oldestKept := got[len(got)-1]
	if oldestKept.CreatedAt < base.Add(30*time.Minute).UnixMilli() {
		t.Errorf("An entry older than the 150 newest survived: %d", oldestKept.CreatedAt)
	}

	// Evictions propagate as best-effort remote deletes.
	waitUntil(t, func() bool { return rs.deleteCount() >= 30 })
}

func TestMarkReadKeepsEvictionOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctrl := newNotifController(newFakeRemote(notifID), &now)
	ctx := context.Background()

	ctrl.Add(ctx, models.Notification{Kind: models.NotificationMovieRelease, ItemID: "m1"})
	created := ctrl.GetAll(ctx, GetOptions{SyncFromCloud: false})[0]

	now = now.Add(time.Hour)
	ctrl.MarkRead(ctx, created.ID)

	got := ctrl.GetAll(ctx, GetOptions{SyncFromCloud: false})[0]
	if !got.Read {
		t.Fatal("Mark-read did not stick")
	}
	if got.CreatedAt != created.CreatedAt {
		t.Fatal("Mark-read must not restamp the creation time")
	}
}

func TestClearAll(t *testing.T) {
	now := time.Now()
	rs := newFakeRemote(notifID)
	ctrl := newNotifController(rs, &now)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ctrl.Add(ctx, models.Notification{Kind: models.NotificationMovieRelease})
	}
	ctrl.ClearAll(ctx)

	if got := ctrl.GetAll(ctx, GetOptions{SyncFromCloud: false}); len(got) != 0 {
		t.Fatalf("Expected empty collection, got %d", len(got))
	}
	waitUntil(t, func() bool { return rs.deleteCount() >= 3 })
}

func TestReconcilePublishesNotificationSlice(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rs := newFakeRemote(notifID)
	rs.seed(models.Notification{ID: "n1", Kind: models.NotificationMovieRelease, CreatedAt: now.UnixMilli()})

	bus := events.NewBus()
	ctrl := NewNotificationController(testStore(), rs, retention.Default(),
		func() bool { return false }, bus,
		func() time.Time { return now }, testLogger())
	ctx := context.Background()

	var mu sync.Mutex
	var payloads []any
	bus.Subscribe(events.TopicNotificationsUpdated, func(payload any) {
		mu.Lock()
		payloads = append(payloads, payload)
		mu.Unlock()
	})

	ctrl.GetAll(ctx, GetOptions{SyncFromCloud: true})
	waitUntil(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(payloads) > 0
	})

	mu.Lock()
	defer mu.Unlock()
	for _, p := range payloads {
		entries, ok := p.([]models.Notification)
		if !ok {
			t.Fatalf("Background sync published %T, want a notification slice", p)
		}
		if len(entries) != 1 || entries[0].ID != "n1" {
			t.Fatalf("Got %v", entries)
		}
	}
}

// deadBackend refuses every operation, matching a cache whose medium failed
type deadBackend struct{}

func (deadBackend) Get(key string) ([]byte, bool) { return nil, false }

func (deadBackend) Set(key string, value []byte) bool { return false }

func (deadBackend) Remove(key string) {}

func (deadBackend) Clear() {}

func TestAddFallsBackToRemoteWhenCacheFails(t *testing.T) {
	now := time.Now()
	rs := newFakeRemote(notifID)
	store := cache.NewStore(deadBackend{}, deadBackend{}, func() bool { return false }, testLogger())
	ctrl := NewNotificationController(store, rs, retention.Default(),
		func() bool { return false }, events.NewBus(),
		func() time.Time { return now }, testLogger())
	ctx := context.Background()

	// The remote write is the only surviving copy, so it happens before Add
	// returns.
	if err := ctrl.Add(ctx, models.Notification{Kind: models.NotificationMovieRelease, ItemID: "m1"}); err != nil {
		t.Fatalf("Add must succeed through the remote fallback: %v", err)
	}
	if got := rs.upsertCount(); got != 1 {
		t.Fatalf("Expected 1 foreground remote write, got %d", got)
	}

	rs.failAll = true
	if err := ctrl.Add(ctx, models.Notification{Kind: models.NotificationMovieRelease, ItemID: "m2"}); err == nil {
		t.Fatal("Add must fail when the cache and the remote both fail")
	}
}

func TestUnreadCount(t *testing.T) {
	now := time.Now()
	ctrl := newNotifController(newFakeRemote(notifID), &now)
	ctx := context.Background()

	ctrl.Add(ctx, models.Notification{Kind: models.NotificationMovieRelease})
	ctrl.Add(ctx, models.Notification{Kind: models.NotificationMovieRelease})
	first := ctrl.GetAll(ctx, GetOptions{SyncFromCloud: false})[0]
	ctrl.MarkRead(ctx, first.ID)

	if got := ctrl.UnreadCount(ctx); got != 1 {
		t.Fatalf("Expected 1 unread, got %d", got)
	}
}
