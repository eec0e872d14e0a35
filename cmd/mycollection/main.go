package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rafag508/mycollection/internal/api"
	"github.com/rafag508/mycollection/internal/cache"
	"github.com/rafag508/mycollection/internal/config"
	"github.com/rafag508/mycollection/internal/controllers"
	"github.com/rafag508/mycollection/internal/events"
	"github.com/rafag508/mycollection/internal/metadata"
	"github.com/rafag508/mycollection/internal/models"
	"github.com/rafag508/mycollection/internal/remote"
	"github.com/rafag508/mycollection/internal/retention"
	"github.com/rafag508/mycollection/internal/scheduler"
	"github.com/rafag508/mycollection/internal/session"
	"github.com/rafag508/mycollection/internal/utils"
)

func main() {
	root := &cobra.Command{
		Use:   "mycollection",
		Short: "Personal media tracker sync engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
		SilenceUsage: true,
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Starting mycollection")

	// 3. Session state
	sess := session.New(cfg.UserID, cfg.AuthToken, cfg.GuestMode)

	// 4. Open the bookkeeping database; the durable cache shares its file
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	durable, err := cache.NewBoltBackend(db.Bolt(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cache bucket: %w", err)
	}
	store := cache.NewStore(durable, cache.NewMemoryBackend(), sess.Guest, logger)

	// 5. Remote document store
	client := remote.NewClient(cfg.RemoteBaseURL, sess.UserID, sess.Token, logger)
	catalogRemote := remote.NewCollection[models.CatalogItem](client, models.CollectionCatalog)
	orderRemote := remote.NewCollection[models.OrderList](client, models.CollectionCatalogOrder)
	progressRemote := remote.NewCollection[models.ProgressRecord](client, models.CollectionProgress)
	notifRemote := remote.NewCollection[models.Notification](client, models.CollectionNotifications)
	followingRemote := remote.NewCollection[models.FollowingEntry](client, models.CollectionFollowing)

	// 6. Event bus and controllers
	bus := events.NewBus()
	policy := retention.Policy{
		MaxAge:   time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		MaxCount: cfg.MaxNotifications,
	}

	progressCtrl := controllers.NewProgressController(store, progressRemote, sess.Guest, bus, time.Now, logger)
	catalogCtrl := controllers.NewCatalogController(store, catalogRemote, orderRemote, progressCtrl, sess.Guest, bus, logger)
	notifCtrl := controllers.NewNotificationController(store, notifRemote, policy, sess.Guest, bus, time.Now, logger)
	followingCtrl := controllers.NewFollowingController(store, followingRemote, notifCtrl, sess.Guest, bus, time.Now, logger)
	ctrls := &controllers.Set{
		Catalog:       catalogCtrl,
		Progress:      progressCtrl,
		Notifications: notifCtrl,
		Following:     followingCtrl,
	}
	logger.Info("Controllers initialized")

	// 7. Smart sync scheduler
	long, short, delay := cfg.Intervals()
	intervals := scheduler.DefaultIntervals()
	intervals.Long = long
	intervals.Short = short
	intervals.RequestDelay = delay

	lookup := metadata.NewTMDBClient(cfg.TMDBAPIKey, cfg.TMDBBaseURL)
	sched := scheduler.New(db, catalogCtrl, progressCtrl, followingCtrl, lookup, intervals, nil, time.Now, logger)
	cronDriver := scheduler.NewCron(sched, cfg.SyncCron, logger)
	if err := cronDriver.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer cronDriver.Stop()

	// 8. Diagnostics HTTP server
	server := api.NewServer(cfg, db, sess, ctrls, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 9. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("mycollection is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("mycollection stopped")
	return nil
}
