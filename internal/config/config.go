package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Remote document store
	RemoteBaseURL string
	UserID        string
	AuthToken     string
	GuestMode     bool

	// TMDB
	TMDBAPIKey  string
	TMDBBaseURL string

	// Smart sync
	MovieRefreshDays   int    // long throttle window (movies, ended series)
	SeriesRefreshHours int    // short throttle window (active series)
	RequestDelaySecs   int    // fixed delay between consecutive refreshes
	SyncCron           string // cron expression for scheduler runs

	// Notifications
	RetentionDays    int
	MaxNotifications int

	// Server
	ServerPort string

	// Paths
	DatabaseFile string

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"
}

// Intervals returns the smart-sync throttle windows as durations
func (c *Config) Intervals() (long, short, delay time.Duration) {
	return time.Duration(c.MovieRefreshDays) * 24 * time.Hour,
		time.Duration(c.SeriesRefreshHours) * time.Hour,
		time.Duration(c.RequestDelaySecs) * time.Second
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	viper.SetDefault("MOVIE_REFRESH_DAYS", 30)
	viper.SetDefault("SERIES_REFRESH_HOURS", 24)
	viper.SetDefault("REQUEST_DELAY_SECONDS", 2)
	viper.SetDefault("SYNC_CRON", "30 5 * * *")
	viper.SetDefault("RETENTION_DAYS", 30)
	viper.SetDefault("MAX_NOTIFICATIONS", 150)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "mycollection")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		RemoteBaseURL: viper.GetString("REMOTE_BASE_URL"),
		UserID:        viper.GetString("USER_ID"),
		AuthToken:     viper.GetString("AUTH_TOKEN"),
		GuestMode:     viper.GetBool("GUEST_MODE"),

		TMDBAPIKey:  viper.GetString("TMDB_API_KEY"),
		TMDBBaseURL: viper.GetString("TMDB_BASE_URL"),

		MovieRefreshDays:   viper.GetInt("MOVIE_REFRESH_DAYS"),
		SeriesRefreshHours: viper.GetInt("SERIES_REFRESH_HOURS"),
		RequestDelaySecs:   viper.GetInt("REQUEST_DELAY_SECONDS"),
		SyncCron:           viper.GetString("SYNC_CRON"),

		RetentionDays:    viper.GetInt("RETENTION_DAYS"),
		MaxNotifications: viper.GetInt("MAX_NOTIFICATIONS"),

		ServerPort: viper.GetString("SERVER_PORT"),

		DatabaseFile: filepath.Join(configDir, "mycollection.db"),

		LogLevel:  viper.GetString("LOG_LEVEL"),
		LogFormat: viper.GetString("LOG_FORMAT"),
	}

	// Validate required fields
	if config.RemoteBaseURL == "" {
		return nil, fmt.Errorf("REMOTE_BASE_URL is required")
	}
	if config.TMDBAPIKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY is required")
	}

	return config, nil
}
