// Package scheduler enqueues scheduled campaigns when their send time
// arrives.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/wacrm/whatsapp-crm-backend/internal/models"
	"github.com/wacrm/whatsapp-crm-backend/internal/queue"
	"github.com/wacrm/whatsapp-crm-backend/internal/repository"
)

// Scheduler periodically checks for due scheduled campaigns and enqueues a
// launch job for each. The dispatcher's compare-and-swap into sending makes a
// duplicate enqueue harmless.
type Scheduler struct {
	campaignRepo repository.CampaignRepository
	queueClient  queue.Client
	interval     time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// New creates a campaign scheduler
func New(campaignRepo repository.CampaignRepository, queueClient queue.Client, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		campaignRepo: campaignRepo,
		queueClient:  queueClient,
		interval:     interval,
		now:          func() time.Time { return time.Now().UTC() },
		logger:       logger,
	}
}

// Run polls until the context is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("campaign scheduler started",
		slog.Duration("interval", s.interval),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("campaign scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one poll: every scheduled campaign whose send time has passed is
// enqueued for launch.
func (s *Scheduler) Tick(ctx context.Context) {
	due, err := s.campaignRepo.ListDue(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to list due campaigns", slog.String("error", err.Error()))
		return
	}

	for _, campaign := range due {
		job := &models.LaunchJob{CampaignID: campaign.ID}
		if err := s.queueClient.Publish(ctx, job); err != nil {
			s.logger.Error("failed to enqueue due campaign",
				slog.String("campaign_id", campaign.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		s.logger.Info("scheduled campaign enqueued",
			slog.String("campaign_id", campaign.ID),
			slog.Time("scheduled_at", *campaign.ScheduledAt),
		)
	}
}
