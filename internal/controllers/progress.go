package controllers

import (
	"context"
	"time"

	"github.com/rafag508/mycollection/internal/cache"
	"github.com/rafag508/mycollection/internal/events"
	"github.com/rafag508/mycollection/internal/models"
	"github.com/rafag508/mycollection/internal/remote"
	"github.com/rafag508/mycollection/internal/resolve"
	"github.com/sirupsen/logrus"
)

const progressCacheKey = "progress"

// ProgressController coordinates per-item watch progress. Reconciliation is
// per record, last-write-wins on the LastUpdated stamp.
type ProgressController struct {
	coord *coordinator[models.ProgressRecord]
	now   func() time.Time
}

// NewProgressController creates a new progress controller
func NewProgressController(
	store *cache.Store,
	rs remote.Store[models.ProgressRecord],
	guest func() bool,
	bus *events.Bus,
	now func() time.Time,
	logger *logrus.Logger,
) *ProgressController {
	c := &ProgressController{
		now: now,
		coord: newCoordinator(
			progressCacheKey, events.TopicProgressSynced,
			store, rs,
			func(p models.ProgressRecord) string { return p.ItemID },
			guest, bus, logger,
		),
	}
	c.coord.reconcile = c.resolveAll
	return c
}

// resolveAll resolves each record independently. When the local copy wins
// over a differing remote one, the winner is pushed back best-effort so both
// sides converge.
func (c *ProgressController) resolveAll(ctx context.Context, local, fetched map[string]models.ProgressRecord) map[string]models.ProgressRecord {
	merged := make(map[string]models.ProgressRecord, len(local)+len(fetched))

	for id, lr := range local {
		lr := lr
		if rr, ok := fetched[id]; ok {
			winner, src := resolve.Progress(&lr, &rr)
			merged[id] = *winner
			if src == resolve.SourceLocal && lr.LastUpdated != rr.LastUpdated {
				rec := lr
				c.coord.bestEffort("upsert", func(ctx context.Context) error {
					return c.coord.remote.Upsert(ctx, id, rec)
				})
			}
		} else {
			merged[id] = lr
		}
	}
	for id, rr := range fetched {
		if _, ok := merged[id]; !ok {
			merged[id] = rr
		}
	}

	return merged
}

// GetAll returns all cached progress records, with the guarded background
// reconciliation when requested.
func (c *ProgressController) GetAll(ctx context.Context, opts GetOptions) map[string]models.ProgressRecord {
	return c.coord.GetAll(ctx, opts)
}

// Get returns the progress record for one item
func (c *ProgressController) Get(ctx context.Context, itemID string) (models.ProgressRecord, bool) {
	rec, ok := c.coord.snapshot()[itemID]
	return rec, ok
}

// SetMovieWatched flips the watched flag for a movie and restamps the record
func (c *ProgressController) SetMovieWatched(ctx context.Context, itemID string, watched bool) error {
	rec, ok := c.coord.snapshot()[itemID]
	if !ok {
		rec = models.ProgressRecord{ItemID: itemID}
	}
	rec.Watched = watched
	rec.LastUpdated = c.now().UnixMilli()
	return c.coord.Put(ctx, rec)
}

// SetEpisodeWatched flips the watched flag for one episode and restamps the
// record.
func (c *ProgressController) SetEpisodeWatched(ctx context.Context, itemID string, season, episode int, watched bool) error {
	rec, ok := c.coord.snapshot()[itemID]
	if !ok {
		rec = models.ProgressRecord{ItemID: itemID}
	}
	if rec.Episodes == nil {
		rec.Episodes = make(map[string]bool)
	}
	rec.Episodes[models.EpisodeKey(season, episode)] = watched
	rec.LastUpdated = c.now().UnixMilli()
	return c.coord.Put(ctx, rec)
}

// Delete removes the progress record for an item, used by the catalog
// removal cascade.
func (c *ProgressController) Delete(ctx context.Context, itemID string) {
	c.coord.Remove(ctx, itemID)
}

// ResetGuard clears the session reconciliation guard
func (c *ProgressController) ResetGuard() {
	c.coord.ResetGuard()
}
