package models

// ItemKind represents the kind of a catalog item (movie or series)
type ItemKind string

const (
	ItemKindMovie  ItemKind = "movie"
	ItemKindSeries ItemKind = "series"
)

// SeriesStatus represents the lifecycle state of a series
type SeriesStatus string

const (
	SeriesStatusActive SeriesStatus = "active"
	SeriesStatusEnded  SeriesStatus = "ended"
)

// NotificationKind represents the kind of a release notification
type NotificationKind string

const (
	NotificationMovieRelease   NotificationKind = "movie_release"
	NotificationEpisodeRelease NotificationKind = "series_episode_release"
	NotificationEpisodeBatch   NotificationKind = "series_episode_batch"
)

// SyncStatus represents the outcome of the last refresh attempt for an entity
type SyncStatus string

const (
	SyncStatusNever     SyncStatus = "never"
	SyncStatusSucceeded SyncStatus = "succeeded"
	SyncStatusFailed    SyncStatus = "failed"
)

// Collection names an independent per-user sub-collection in the remote store
type Collection string

const (
	CollectionCatalog       Collection = "catalog"
	CollectionCatalogOrder  Collection = "catalog-order"
	CollectionProgress      Collection = "progress"
	CollectionNotifications Collection = "notifications"
	CollectionFollowing     Collection = "following"
)
