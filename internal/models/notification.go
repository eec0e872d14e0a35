package models

// Notification represents a release notification shown to the user.
// Created by release detection or the metadata refresh; mutated only by
// mark-read; deleted by age/count eviction or explicit clear.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	CreatedAt int64            `json:"createdAt"` // unix milliseconds
	Read      bool             `json:"read"`

	ItemID string `json:"itemId"`
	Title  string `json:"title"`
	Poster string `json:"poster,omitempty"`

	// Episode payload, series kinds only
	Season       int `json:"season,omitempty"`
	Episode      int `json:"episode,omitempty"`
	EpisodeCount int `json:"episodeCount,omitempty"` // batch kind only
}

// FollowingEntry marks a catalog item the user wants release notifications
// for. The notified markers prevent duplicate notifications across runs.
type FollowingEntry struct {
	ItemID              string `json:"itemId"`
	ReleaseNotified     bool   `json:"releaseNotified"`
	LastSeasonNotified  int    `json:"lastSeasonNotified,omitempty"`
	LastEpisodeNotified int    `json:"lastEpisodeNotified,omitempty"`
}
