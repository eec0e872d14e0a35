package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rafag508/mycollection/internal/models"
)

// TMDBClient implements Lookup against the TMDB v3 API
type TMDBClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

type tmdbGenre struct {
	Name string `json:"name"`
}

type tmdbMovie struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Overview    string      `json:"overview"`
	PosterPath  string      `json:"poster_path"`
	ReleaseDate string      `json:"release_date"`
	VoteAverage float64     `json:"vote_average"`
	Genres      []tmdbGenre `json:"genres"`
}

type tmdbEpisode struct {
	EpisodeNumber int    `json:"episode_number"`
	Name          string `json:"name"`
	AirDate       string `json:"air_date"`
}

type tmdbSeason struct {
	SeasonNumber int           `json:"season_number"`
	Episodes     []tmdbEpisode `json:"episodes"`
}

type tmdbShow struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	Overview     string      `json:"overview"`
	PosterPath   string      `json:"poster_path"`
	FirstAirDate string      `json:"first_air_date"`
	VoteAverage  float64     `json:"vote_average"`
	Status       string      `json:"status"` // "Returning Series", "Ended", "Canceled"
	Genres       []tmdbGenre `json:"genres"`
	Seasons      []struct {
		SeasonNumber int `json:"season_number"`
	} `json:"seasons"`
}

// NewTMDBClient creates a new TMDB client
func NewTMDBClient(apiKey, baseURL string) *TMDBClient {
	return &TMDBClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Lookup fetches the current movie or series record, including the full
// season/episode structure for series.
func (c *TMDBClient) Lookup(ctx context.Context, kind models.ItemKind, tmdbID int) (*models.CatalogItem, error) {
	switch kind {
	case models.ItemKindMovie:
		return c.lookupMovie(ctx, tmdbID)
	case models.ItemKindSeries:
		return c.lookupSeries(ctx, tmdbID)
	default:
		return nil, fmt.Errorf("unknown item kind %q", kind)
	}
}

func (c *TMDBClient) lookupMovie(ctx context.Context, tmdbID int) (*models.CatalogItem, error) {
	var out tmdbMovie
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", tmdbID), &out); err != nil {
		return nil, err
	}

	return &models.CatalogItem{
		TMDBID:      out.ID,
		Kind:        models.ItemKindMovie,
		Title:       out.Title,
		Poster:      out.PosterPath,
		Overview:    out.Overview,
		Year:        yearOf(out.ReleaseDate),
		Genres:      genreNames(out.Genres),
		Rating:      out.VoteAverage,
		ReleaseDate: out.ReleaseDate,
	}, nil
}

func (c *TMDBClient) lookupSeries(ctx context.Context, tmdbID int) (*models.CatalogItem, error) {
	var show tmdbShow
	if err := c.get(ctx, fmt.Sprintf("/tv/%d", tmdbID), &show); err != nil {
		return nil, err
	}

	item := &models.CatalogItem{
		TMDBID:   show.ID,
		Kind:     models.ItemKindSeries,
		Title:    show.Name,
		Poster:   show.PosterPath,
		Overview: show.Overview,
		Year:     yearOf(show.FirstAirDate),
		Genres:   genreNames(show.Genres),
		Rating:   show.VoteAverage,
		Status:   seriesStatus(show.Status),
	}

	for _, s := range show.Seasons {
		if s.SeasonNumber == 0 {
			continue // specials are not tracked
		}
		var season tmdbSeason
		if err := c.get(ctx, fmt.Sprintf("/tv/%d/season/%d", tmdbID, s.SeasonNumber), &season); err != nil {
			return nil, err
		}
		episodes := make([]models.Episode, 0, len(season.Episodes))
		for _, e := range season.Episodes {
			episodes = append(episodes, models.Episode{
				Number:  e.EpisodeNumber,
				Title:   e.Name,
				AirDate: e.AirDate,
			})
		}
		item.Seasons = append(item.Seasons, models.Season{
			Number:   season.SeasonNumber,
			Episodes: episodes,
		})
	}

	return item, nil
}

func (c *TMDBClient) get(ctx context.Context, path string, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	var y int
	fmt.Sscanf(date[:4], "%d", &y)
	return y
}

func genreNames(genres []tmdbGenre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}

func seriesStatus(s string) models.SeriesStatus {
	switch s {
	case "Ended", "Canceled":
		return models.SeriesStatusEnded
	default:
		return models.SeriesStatusActive
	}
}
