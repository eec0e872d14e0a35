// Package scheduler drives the background metadata refresh: it decides which
// catalog entities are due, in what order, and refreshes them one at a time
// with bounded retry.
package scheduler

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rafag508/mycollection/internal/controllers"
	"github.com/rafag508/mycollection/internal/metadata"
	"github.com/rafag508/mycollection/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Intervals bound how often an entity may be refreshed
type Intervals struct {
	Long         time.Duration // movies and ended series
	Short        time.Duration // active series global throttle
	RequestDelay time.Duration // fixed delay between consecutive refreshes
	RetryBackoff time.Duration // initial backoff between retry attempts
	MaxRetries   uint64        // retries after the first attempt
}

// DefaultIntervals matches the product defaults
func DefaultIntervals() Intervals {
	return Intervals{
		Long:         30 * 24 * time.Hour,
		Short:        24 * time.Hour,
		RequestDelay: 2 * time.Second,
		RetryBackoff: 5 * time.Second,
		MaxRetries:   2,
	}
}

// Scheduler runs the smart sync over the catalog
type Scheduler struct {
	db        *models.Database
	catalog   *controllers.CatalogController
	progress  *controllers.ProgressController
	following *controllers.FollowingController
	lookup    metadata.Lookup
	intervals Intervals
	limiter   *rate.Limiter
	now       func() time.Time
	logger    *logrus.Logger

	// visible reports ids currently in the UI viewport; nil means none
	visible func() map[string]bool

	mu      sync.Mutex
	stopped bool // no new work accepted after Stop
	running bool // one run at a time
}

// New creates a new scheduler
func New(
	db *models.Database,
	catalog *controllers.CatalogController,
	progress *controllers.ProgressController,
	following *controllers.FollowingController,
	lookup metadata.Lookup,
	intervals Intervals,
	visible func() map[string]bool,
	now func() time.Time,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		db:        db,
		catalog:   catalog,
		progress:  progress,
		following: following,
		lookup:    lookup,
		intervals: intervals,
		limiter:   rate.NewLimiter(rate.Every(intervals.RequestDelay), 1),
		visible:   visible,
		now:       now,
		logger:    logger,
	}
}

// candidate is one eligible entity with its computed priority
type candidate struct {
	item  models.CatalogItem
	score int
}

// Run executes one full scheduler pass: gather, filter by eligibility, rank,
// then refresh strictly sequentially. A single entity's terminal failure
// never aborts the batch.
func (s *Scheduler) Run(ctx context.Context) {
	if !s.begin() {
		return
	}
	defer s.end()

	started := s.now()
	items := s.catalog.GetAll(ctx, controllers.GetOptions{SyncFromCloud: false})
	progress := s.progress.GetAll(ctx, controllers.GetOptions{SyncFromCloud: false})

	s.pruneBookkeeping(items)

	candidates, skipped := s.rank(items, progress)
	s.logger.WithFields(logrus.Fields{
		"eligible": len(candidates),
		"skipped":  skipped,
	}).Info("Smart sync run starting")

	run := &models.SyncRun{Skipped: skipped}
	for _, c := range candidates {
		if s.isStopped() {
			break
		}
		if err := s.limiter.Wait(ctx); err != nil {
			break
		}

		if err := s.refresh(ctx, c.item); err != nil {
			run.Errored++
			refreshTotal.WithLabelValues("error").Inc()
			s.logger.WithError(err).WithField("title", c.item.Title).Warn("Refresh failed after retries")
		} else {
			run.Synced++
			refreshTotal.WithLabelValues("success").Inc()
		}
	}

	run.FinishedAt = s.now()
	if err := s.db.SaveSyncRun(run); err != nil {
		s.logger.WithError(err).Warn("Failed to record sync run")
	}

	s.logger.WithFields(logrus.Fields{
		"synced":   run.Synced,
		"skipped":  run.Skipped,
		"errored":  run.Errored,
		"duration": s.now().Sub(started).Round(time.Millisecond),
	}).Info("Smart sync run finished")
}

// pruneBookkeeping drops SyncMeta records for items no longer in the catalog,
// e.g. removed on another device since the last run.
func (s *Scheduler) pruneBookkeeping(items map[string]models.CatalogItem) {
	metas, err := s.db.GetAllSyncMeta()
	if err != nil {
		s.logger.WithError(err).Warn("Failed to list sync bookkeeping")
		return
	}
	for _, meta := range metas {
		if _, ok := items[meta.ItemID]; ok {
			continue
		}
		if err := s.db.DeleteSyncMeta(meta.ItemID); err != nil {
			s.logger.WithError(err).WithField("item", meta.ItemID).Warn("Failed to prune sync bookkeeping")
		}
	}
}

// rank returns eligible entities ordered highest score first, plus the count
// of throttled entities.
func (s *Scheduler) rank(items map[string]models.CatalogItem, progress map[string]models.ProgressRecord) ([]candidate, int) {
	var visible map[string]bool
	if s.visible != nil {
		visible = s.visible()
	}

	skipped := 0
	candidates := make([]candidate, 0, len(items))
	for id, item := range items {
		meta, err := s.db.GetSyncMeta(id)
		if err != nil {
			s.logger.WithError(err).WithField("item", id).Warn("Failed to read sync bookkeeping")
		}

		if !s.eligible(item, meta) {
			skipped++
			continue
		}

		rec := progress[id]
		candidates = append(candidates, candidate{
			item: item,
			score: Score(Input{
				Visible:       visible[id],
				Active:        item.IsSeries() && item.Status == models.SeriesStatusActive,
				ProgressRatio: rec.Ratio(item.EpisodeCount()),
				NeverSynced:   meta.NeverSynced(),
			}),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].item.ID < candidates[j].item.ID
	})
	return candidates, skipped
}

// eligible applies the per-kind throttle window. An entity with no prior
// successful sync is always eligible.
func (s *Scheduler) eligible(item models.CatalogItem, meta *models.SyncMeta) bool {
	if meta.NeverSynced() {
		return true
	}

	window := s.intervals.Long
	if item.IsSeries() && item.Status == models.SeriesStatusActive {
		window = s.intervals.Short
	}
	return s.now().Sub(meta.LastSuccess) >= window
}

// refresh fetches fresh metadata for one entity with bounded retry, persists
// changed fields through the catalog coordinator, and runs release detection.
// The user's own progress data is never touched.
func (s *Scheduler) refresh(ctx context.Context, item models.CatalogItem) error {
	var fresh *models.CatalogItem

	attempt := func() error {
		var err error
		fresh, err = s.lookup.Lookup(ctx, item.Kind, item.TMDBID)
		return err
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.intervals.RetryBackoff
	policy := backoff.WithMaxRetries(expo, s.intervals.MaxRetries)
	err := backoff.Retry(attempt, backoff.WithContext(policy, ctx))

	if recErr := s.db.RecordAttempt(item.ID, s.now(), err == nil); recErr != nil {
		s.logger.WithError(recErr).WithField("item", item.ID).Warn("Failed to record refresh attempt")
	}
	if err != nil {
		return fmt.Errorf("lookup failed for %s: %w", item.ID, err)
	}

	updated, changed := graft(item, *fresh)
	if changed {
		if err := s.catalog.Update(ctx, updated); err != nil {
			return fmt.Errorf("failed to persist refreshed item: %w", err)
		}
	}

	s.following.DetectReleases(ctx, updated)
	return nil
}

// graft applies upstream fields onto the local record, preserving local
// identity, and reports whether anything changed.
func graft(local, fresh models.CatalogItem) (models.CatalogItem, bool) {
	updated := fresh
	updated.ID = local.ID
	updated.Kind = local.Kind
	return updated, !reflect.DeepEqual(local, updated)
}

// Stop flips the no-new-work switch. In-flight refreshes are fire-and-forget
// and their results are dropped by the consuming side going away; they are
// not cancelled.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

func (s *Scheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Scheduler) end() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Scheduler) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
