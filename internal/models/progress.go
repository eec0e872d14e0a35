package models

import "fmt"

// ProgressRecord tracks what the user has watched for one catalog item.
// Movies use the Watched flag; series map an episode key to a watched flag.
// LastUpdated is restamped on every write and is the sole input to conflict
// resolution between devices.
type ProgressRecord struct {
	ItemID      string          `json:"itemId"`
	Watched     bool            `json:"watched,omitempty"`
	Episodes    map[string]bool `json:"episodes,omitempty"`
	LastUpdated int64           `json:"lastUpdated"` // unix milliseconds
}

// EpisodeKey builds the map key for a (season, episode) pair
func EpisodeKey(season, episode int) string {
	return fmt.Sprintf("%d-%d", season, episode)
}

// WatchedCount returns how many episodes are marked watched
func (p *ProgressRecord) WatchedCount() int {
	n := 0
	for _, w := range p.Episodes {
		if w {
			n++
		}
	}
	return n
}

// Ratio returns watched progress in [0,1] for an item with total episodes.
// Movies report 0 or 1 from the Watched flag.
func (p *ProgressRecord) Ratio(totalEpisodes int) float64 {
	if totalEpisodes <= 0 {
		if p.Watched {
			return 1
		}
		return 0
	}
	return float64(p.WatchedCount()) / float64(totalEpisodes)
}
