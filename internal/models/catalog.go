package models

// Episode represents a single episode inside a season
type Episode struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	AirDate string `json:"airDate,omitempty"` // YYYY-MM-DD, empty when unannounced
}

// Season represents an ordered list of episodes
type Season struct {
	Number   int       `json:"number"`
	Episodes []Episode `json:"episodes"`
}

// CatalogItem represents an item in the user's collection (movie or series).
// The local ID is distinct from the upstream TMDB id: items keep their identity
// across metadata refreshes.
type CatalogItem struct {
	ID     string   `json:"id"`
	TMDBID int      `json:"tmdbId"`
	Kind   ItemKind `json:"kind"` // "movie" or "series"

	Title    string   `json:"title"`
	Poster   string   `json:"poster"`
	Overview string   `json:"overview,omitempty"`
	Year     int      `json:"year"`
	Genres   []string `json:"genres,omitempty"`
	Rating   float64  `json:"rating"`

	// Movie specific
	ReleaseDate string `json:"releaseDate,omitempty"` // YYYY-MM-DD

	// Series specific
	Status  SeriesStatus `json:"status,omitempty"`
	Seasons []Season     `json:"seasons,omitempty"`
}

// IsSeries reports whether the item carries series fields
func (c *CatalogItem) IsSeries() bool {
	return c.Kind == ItemKindSeries
}

// EpisodeCount returns the total number of episodes across all seasons.
// Always 0 for movies.
func (c *CatalogItem) EpisodeCount() int {
	n := 0
	for _, s := range c.Seasons {
		n += len(s.Episodes)
	}
	return n
}

// LatestAired returns the highest (season, episode) pair whose air date is on
// or before the given date (YYYY-MM-DD). ok is false when nothing has aired.
func (c *CatalogItem) LatestAired(date string) (season, episode int, ok bool) {
	for _, s := range c.Seasons {
		for _, e := range s.Episodes {
			if e.AirDate == "" || e.AirDate > date {
				continue
			}
			if !ok || s.Number > season || (s.Number == season && e.Number > episode) {
				season, episode, ok = s.Number, e.Number, true
			}
		}
	}
	return season, episode, ok
}
