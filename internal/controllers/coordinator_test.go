package controllers

import (
	"context"
	"sync"
	"testing"

	"github.com/rafag508/mycollection/internal/events"
	"github.com/rafag508/mycollection/internal/models"
)

func itemID(i models.CatalogItem) string { return i.ID }

func newTestCoordinator(rs *fakeRemote[models.CatalogItem], guest func() bool) *coordinator[models.CatalogItem] {
	if guest == nil {
		guest = func() bool { return false }
	}
	return newCoordinator(
		"test.items", events.TopicCatalogSynced,
		testStore(), rs, itemID, guest, events.NewBus(), testLogger(),
	)
}

func TestCacheFirstReadAfterWrite(t *testing.T) {
	rs := newFakeRemote(itemID)
	rs.failAll = true // remote availability must not matter
	coord := newTestCoordinator(rs, nil)

	item := models.CatalogItem{ID: "m1", Kind: models.ItemKindMovie, Title: "Heat"}
	if err := coord.Put(context.Background(), item); err != nil {
		t.Fatalf("Put must not surface the remote failure: %v", err)
	}

	snap := coord.GetAll(context.Background(), GetOptions{SyncFromCloud: false})
	if got, ok := snap["m1"]; !ok || got.Title != "Heat" {
		t.Fatalf("Read immediately after write must observe the write, got %+v", snap)
	}
}

func TestSingleReconciliationPerSession(t *testing.T) {
	rs := newFakeRemote(itemID)
	rs.listHold = make(chan struct{})
	coord := newTestCoordinator(rs, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			coord.GetAll(context.Background(), GetOptions{SyncFromCloud: true})
		}()
	}
	wg.Wait()
	close(rs.listHold)

	waitUntil(t, func() bool { return rs.listCount() >= 1 })
	if got := rs.listCount(); got != 1 {
		t.Fatalf("Expected exactly 1 remote list under concurrency, got %d", got)
	}

	// Still guarded for the rest of the session.
	coord.GetAll(context.Background(), GetOptions{SyncFromCloud: true})
	if got := rs.listCount(); got != 1 {
		t.Fatalf("Guard must hold for the session, got %d lists", got)
	}

	// An explicit reload allows one fresh reconciliation.
	coord.ResetGuard()
	coord.GetAll(context.Background(), GetOptions{SyncFromCloud: true})
	waitUntil(t, func() bool { return rs.listCount() == 2 })
}

func TestReconcileOverwritesCache(t *testing.T) {
	rs := newFakeRemote(itemID)
	rs.seed(models.CatalogItem{ID: "r1", Kind: models.ItemKindMovie, Title: "Remote"})
	coord := newTestCoordinator(rs, nil)

	// Cache-only local state, written without a remote echo
	coord.persist(map[string]models.CatalogItem{
		"l1": {ID: "l1", Kind: models.ItemKindMovie, Title: "Local"},
	})

	coord.GetAll(context.Background(), GetOptions{SyncFromCloud: true})
	waitUntil(t, func() bool {
		snap := coord.snapshot()
		_, hasRemote := snap["r1"]
		return hasRemote
	})

	snap := coord.snapshot()
	if _, stillLocal := snap["l1"]; stillLocal {
		t.Errorf("Default reconciliation must replace the cache with the remote result")
	}
}

func TestReconcileFailureKeepsCache(t *testing.T) {
	rs := newFakeRemote(itemID)
	rs.failAll = true
	coord := newTestCoordinator(rs, nil)

	coord.Put(context.Background(), models.CatalogItem{ID: "l1", Title: "Local"})
	coord.GetAll(context.Background(), GetOptions{SyncFromCloud: true})
	waitUntil(t, func() bool { return rs.listCount() == 1 })

	if _, ok := coord.snapshot()["l1"]; !ok {
		t.Fatal("A failed background sync must leave the cache untouched")
	}
}

func TestGuestSessionNeverTouchesRemote(t *testing.T) {
	rs := newFakeRemote(itemID)
	coord := newTestCoordinator(rs, func() bool { return true })

	coord.GetAll(context.Background(), GetOptions{SyncFromCloud: true})
	coord.Put(context.Background(), models.CatalogItem{ID: "g1"})
	coord.Remove(context.Background(), "g1")

	if rs.listCount() != 0 || rs.upsertCount() != 0 || rs.deleteCount() != 0 {
		t.Fatalf("Guest sessions must be cache-only: %d/%d/%d",
			rs.listCount(), rs.upsertCount(), rs.deleteCount())
	}
}

func TestBestEffortWriteReachesRemote(t *testing.T) {
	rs := newFakeRemote(itemID)
	coord := newTestCoordinator(rs, nil)

	coord.Put(context.Background(), models.CatalogItem{ID: "m1", Title: "Heat"})
	waitUntil(t, func() bool { return rs.upsertCount() == 1 })

	coord.Remove(context.Background(), "m1")
	waitUntil(t, func() bool { return rs.deleteCount() == 1 })
}
