package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/events"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/cheftrack/cheftrack-backend/pkg/metrics"
	"github.com/robfig/cron/v3"
)

const expiryScanJob = "expiry_scan"

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ExpiryNotifier periodically publishes an expiring event for every
// batch in the expiring-soon window. It never changes is_expired.
type ExpiryNotifier struct {
	service   *InventoryService
	publisher *events.InventoryEventPublisher
	schedule  string
	sched     *cron.Cron
	metrics   *metrics.JobMetrics
	logger    *logger.Logger
	cancel    context.CancelFunc
}

// NewExpiryNotifier creates a notifier running on schedule, a cron expression
// or descriptor such as "@every 1h"
func NewExpiryNotifier(svc *InventoryService, publisher *events.InventoryEventPublisher, schedule string, m *metrics.JobMetrics, log *logger.Logger) *ExpiryNotifier {
	return &ExpiryNotifier{
		service:   svc,
		publisher: publisher,
		schedule:  schedule,
		sched:     cron.New(cron.WithLocation(svc.cfg.Location), cron.WithParser(cronParser)),
		metrics:   m,
		logger:    log.WithComponent("expiry-notifier"),
	}
}

// Start registers the job and starts the cron loop
func (n *ExpiryNotifier) Start(ctx context.Context) error {
	ctx, n.cancel = context.WithCancel(ctx)

	_, err := n.sched.AddFunc(n.schedule, func() {
		if _, err := n.RunOnce(ctx); err != nil {
			n.logger.Error().Err(err).Msg("expiry scan failed")
		}
	})
	if err != nil {
		n.cancel()
		return fmt.Errorf("invalid expiry scan schedule %q: %w", n.schedule, err)
	}

	n.sched.Start()
	n.logger.Info().Str("schedule", n.schedule).Msg("expiry notifier started")
	return nil
}

// Stop stops the cron loop and waits for a running scan to finish
func (n *ExpiryNotifier) Stop() {
	if n.cancel != nil {
		n.cancel()
	}
	<-n.sched.Stop().Done()
	n.logger.Info().Msg("expiry notifier stopped")
}

// RunOnce publishes one event per expiring batch and returns how many
// were published
func (n *ExpiryNotifier) RunOnce(ctx context.Context) (published int, err error) {
	start := time.Now()
	defer func() {
		n.metrics.Observe(expiryScanJob, time.Since(start), err)
	}()

	batches, err := n.service.ExpiringSoon(ctx, n.service.DefaultExpiringSoonDays())
	if err != nil {
		return 0, err
	}
	n.service.metrics.SetExpiringSoon(len(batches))

	var failed int
	for _, b := range batches {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}
		if perr := n.publisher.PublishBatchExpiring(ctx, b); perr != nil {
			failed++
			continue
		}
		published++
	}

	n.logger.Info().
		Int("expiring", len(batches)).
		Int("published", published).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("expiry scan completed")

	if failed > 0 {
		return published, fmt.Errorf("%d of %d expiring events not published", failed, len(batches))
	}
	return published, nil
}
