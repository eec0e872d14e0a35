package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Cron triggers scheduler runs periodically
type Cron struct {
	cron      *cron.Cron
	scheduler *Scheduler
	spec      string
	logger    *logrus.Logger
}

// NewCron creates the periodic trigger. spec is a cron expression; the
// default daily run keeps request volume inside the short throttle window.
func NewCron(scheduler *Scheduler, spec string, logger *logrus.Logger) *Cron {
	return &Cron{
		cron:      cron.New(),
		scheduler: scheduler,
		spec:      spec,
		logger:    logger,
	}
}

// Start registers the periodic job and kicks off an immediate initial run in
// the background.
func (c *Cron) Start() error {
	c.logger.Info("Starting smart sync scheduler")

	_, err := c.cron.AddFunc(c.spec, func() {
		c.scheduler.Run(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to add smart sync job: %w", err)
	}

	c.cron.Start()

	go c.scheduler.Run(context.Background())
	return nil
}

// Stop stops issuing new runs. An in-flight run finishes on its own; its
// results are dropped if nobody is left to observe them.
func (c *Cron) Stop() {
	c.logger.Info("Stopping smart sync scheduler")
	c.scheduler.Stop()
	c.cron.Stop()
}
