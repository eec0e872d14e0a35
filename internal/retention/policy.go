// Package retention bounds the notification collection by age and by count.
package retention

import (
	"sort"
	"time"

	"github.com/rafag508/mycollection/internal/models"
)

// Policy holds the two independent bounds enforced on every read and insert
type Policy struct {
	MaxAge   time.Duration // entries older than this are dropped
	MaxCount int           // after age filtering, oldest excess entries go
}

// Default matches the product defaults: 30 days, 150 entries
func Default() Policy {
	return Policy{
		MaxAge:   30 * 24 * time.Hour,
		MaxCount: 150,
	}
}

// Apply returns the notifications that survive both bounds and the ones
// evicted. Kept entries preserve their input order; eviction by count removes
// the oldest entries by creation stamp.
func (p Policy) Apply(entries []models.Notification, now time.Time) (kept, evicted []models.Notification) {
	cutoff := now.Add(-p.MaxAge).UnixMilli()

	kept = make([]models.Notification, 0, len(entries))
	for _, n := range entries {
		if n.CreatedAt < cutoff {
			evicted = append(evicted, n)
			continue
		}
		kept = append(kept, n)
	}

	if p.MaxCount <= 0 || len(kept) <= p.MaxCount {
		return kept, evicted
	}

	// Oldest first; everything before the cut line is evicted.
	byAge := make([]models.Notification, len(kept))
	copy(byAge, kept)
	sort.SliceStable(byAge, func(i, j int) bool {
		return byAge[i].CreatedAt < byAge[j].CreatedAt
	})

	cut := len(byAge) - p.MaxCount
	dropIDs := make(map[string]bool, cut)
	for _, n := range byAge[:cut] {
		dropIDs[n.ID] = true
	}
	evicted = append(evicted, byAge[:cut]...)

	surviving := kept[:0]
	for _, n := range kept {
		if !dropIDs[n.ID] {
			surviving = append(surviving, n)
		}
	}
	return surviving, evicted
}
