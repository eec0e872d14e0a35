package controllers

import (
	"context"
	"time"

	"github.com/rafag508/mycollection/internal/cache"
	"github.com/rafag508/mycollection/internal/events"
	"github.com/rafag508/mycollection/internal/models"
	"github.com/rafag508/mycollection/internal/remote"
	"github.com/sirupsen/logrus"
)

const followingCacheKey = "following"

// FollowingController coordinates the entries the user wants release
// notifications for, and runs release detection over them.
type FollowingController struct {
	coord     *coordinator[models.FollowingEntry]
	notifCtrl *NotificationController
	now       func() time.Time
	logger    *logrus.Logger
}

// NewFollowingController creates a new following controller
func NewFollowingController(
	store *cache.Store,
	rs remote.Store[models.FollowingEntry],
	notifCtrl *NotificationController,
	guest func() bool,
	bus *events.Bus,
	now func() time.Time,
	logger *logrus.Logger,
) *FollowingController {
	return &FollowingController{
		notifCtrl: notifCtrl,
		now:       now,
		logger:    logger,
		coord: newCoordinator(
			followingCacheKey, events.TopicFollowingSynced,
			store, rs,
			func(f models.FollowingEntry) string { return f.ItemID },
			guest, bus, logger,
		),
	}
}

// GetAll returns the cached following entries, with the guarded background
// sync when requested.
func (c *FollowingController) GetAll(ctx context.Context, opts GetOptions) map[string]models.FollowingEntry {
	return c.coord.GetAll(ctx, opts)
}

// Follow starts tracking releases for an item
func (c *FollowingController) Follow(ctx context.Context, itemID string) error {
	if _, ok := c.coord.snapshot()[itemID]; ok {
		return nil
	}
	return c.coord.Put(ctx, models.FollowingEntry{ItemID: itemID})
}

// Unfollow stops tracking releases for an item
func (c *FollowingController) Unfollow(ctx context.Context, itemID string) {
	c.coord.Remove(ctx, itemID)
}

// DetectReleases scans the followed items against the given catalog state
// and emits notifications for anything newly released. The notified markers
// on each entry make a second run over the same state produce nothing.
func (c *FollowingController) DetectReleases(ctx context.Context, item models.CatalogItem) {
	entry, ok := c.coord.snapshot()[item.ID]
	if !ok {
		return
	}

	switch item.Kind {
	case models.ItemKindMovie:
		c.detectMovieRelease(ctx, item, entry)
	case models.ItemKindSeries:
		c.detectEpisodeReleases(ctx, item, entry)
	}
}

func (c *FollowingController) detectMovieRelease(ctx context.Context, item models.CatalogItem, entry models.FollowingEntry) {
	if entry.ReleaseNotified || item.ReleaseDate == "" {
		return
	}
	if item.ReleaseDate > c.today() {
		return
	}

	if err := c.notifCtrl.Add(ctx, models.Notification{
		Kind:   models.NotificationMovieRelease,
		ItemID: item.ID,
		Title:  item.Title,
		Poster: item.Poster,
	}); err != nil {
		c.logger.WithError(err).Warn("Failed to add release notification")
		return
	}

	entry.ReleaseNotified = true
	if err := c.coord.Put(ctx, entry); err != nil {
		c.logger.WithError(err).Warn("Failed to mark release as notified")
	}
}

func (c *FollowingController) detectEpisodeReleases(ctx context.Context, item models.CatalogItem, entry models.FollowingEntry) {
	newest := c.newEpisodes(item, entry)
	if len(newest) == 0 {
		return
	}

	n := models.Notification{
		ItemID: item.ID,
		Title:  item.Title,
		Poster: item.Poster,
	}
	last := newest[len(newest)-1]
	if len(newest) == 1 {
		n.Kind = models.NotificationEpisodeRelease
		n.Season = last.season
		n.Episode = last.episode
	} else {
		n.Kind = models.NotificationEpisodeBatch
		n.Season = last.season
		n.Episode = last.episode
		n.EpisodeCount = len(newest)
	}

	if err := c.notifCtrl.Add(ctx, n); err != nil {
		c.logger.WithError(err).Warn("Failed to add episode notification")
		return
	}

	entry.LastSeasonNotified = last.season
	entry.LastEpisodeNotified = last.episode
	if err := c.coord.Put(ctx, entry); err != nil {
		c.logger.WithError(err).Warn("Failed to advance episode marker")
	}
}

type airedEpisode struct {
	season, episode int
}

// newEpisodes lists aired episodes beyond the entry's notified marker, in
// (season, episode) order.
func (c *FollowingController) newEpisodes(item models.CatalogItem, entry models.FollowingEntry) []airedEpisode {
	today := c.today()
	var out []airedEpisode
	for _, s := range item.Seasons {
		for _, e := range s.Episodes {
			if e.AirDate == "" || e.AirDate > today {
				continue
			}
			if s.Number < entry.LastSeasonNotified {
				continue
			}
			if s.Number == entry.LastSeasonNotified && e.Number <= entry.LastEpisodeNotified {
				continue
			}
			out = append(out, airedEpisode{season: s.Number, episode: e.Number})
		}
	}
	return out
}

func (c *FollowingController) today() string {
	return c.now().Format("2006-01-02")
}

// ResetGuard clears the session reconciliation guard
func (c *FollowingController) ResetGuard() {
	c.coord.ResetGuard()
}
