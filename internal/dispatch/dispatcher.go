package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wacrm/whatsapp-crm-backend/internal/models"
	"github.com/wacrm/whatsapp-crm-backend/internal/repository"
)

var sendOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "campaign_send_outcomes_total",
		Help: "Total campaign send attempts by outcome",
	},
	[]string{"outcome"},
)

// MessageRenderer resolves {placeholder} markers against a contact before send
type MessageRenderer interface {
	Render(content string, contact *models.Contact) string
}

// Dispatcher runs a campaign's send loop: it pulls target contacts, pushes
// sends through the shared Pacer and the MessagingGateway, and records
// per-recipient outcomes.
type Dispatcher struct {
	campaigns   repository.CampaignRepository
	contacts    repository.ContactRepository
	templates   repository.TemplateRepository
	renderer    MessageRenderer
	gateway     MessagingGateway
	pacer       *Pacer
	sendTimeout time.Duration
	logger      *slog.Logger
}

// NewDispatcher creates a campaign dispatcher. The pacer is shared process
// state: pass the same instance to every dispatcher.
func NewDispatcher(
	campaigns repository.CampaignRepository,
	contacts repository.ContactRepository,
	templates repository.TemplateRepository,
	renderer MessageRenderer,
	gateway MessagingGateway,
	pacer *Pacer,
	sendTimeout time.Duration,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		campaigns:   campaigns,
		contacts:    contacts,
		templates:   templates,
		renderer:    renderer,
		gateway:     gateway,
		pacer:       pacer,
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// Launch runs a campaign to completion. It transitions the campaign to
// sending exactly once (concurrent launches of the same campaign lose the
// compare-and-swap and fail with a precondition error), attempts every
// eligible target in list order, and finalizes the status: sent when no
// recipient failed, failed otherwise.
//
// A gateway failure for one recipient never aborts the loop. A storage
// failure while persisting a result aborts the launch and leaves the campaign
// in sending for manual operator intervention.
func (d *Dispatcher) Launch(ctx context.Context, campaignID string) error {
	campaign, err := d.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}

	if campaign.ScheduledAt != nil && campaign.ScheduledAt.After(time.Now()) {
		return models.ErrPreconditionWithMsg(fmt.Sprintf(
			"campaign %s is scheduled for %s and cannot be launched yet",
			campaign.ID, campaign.ScheduledAt.Format(time.RFC3339),
		))
	}

	ok, err := d.campaigns.MarkSending(ctx, campaign.ID)
	if err != nil {
		return models.ErrStorageWithCause("campaign launch", err)
	}
	if !ok {
		return models.ErrPreconditionWithMsg(fmt.Sprintf(
			"campaign with status '%s' cannot be launched", campaign.Status,
		))
	}

	content := campaign.Message
	if campaign.TemplateID != nil {
		template, err := d.templates.GetByID(ctx, *campaign.TemplateID)
		if err != nil {
			return err
		}
		content = template.Content
	}

	d.logger.Info("campaign launch started",
		slog.String("campaign_id", campaign.ID),
		slog.Int("targets", len(campaign.Targets)),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg        sync.WaitGroup
		sent      atomic.Int64
		failed    atomic.Int64
		skipped   int
		fatalOnce sync.Once
		fatalErr  error
	)

	fatal := func(err error) {
		fatalOnce.Do(func() {
			fatalErr = err
			cancel()
		})
	}

	for _, phone := range campaign.Targets {
		if runCtx.Err() != nil {
			break
		}

		// Pause and existence are re-checked at send time, not cached from
		// launch: a pause requested mid-campaign still covers the targets
		// that have not been attempted yet.
		contact, err := d.contacts.GetByPhone(runCtx, phone)
		if errors.Is(err, models.ErrNotFound) {
			skipped++
			continue
		}
		if err != nil {
			fatal(models.ErrStorageWithCause("target lookup", err))
			break
		}
		if contact.IsPaused {
			skipped++
			continue
		}

		release, err := d.pacer.Acquire(runCtx)
		if err != nil {
			break
		}

		wg.Add(1)
		go func(contact *models.Contact) {
			defer wg.Done()
			defer release()
			d.sendOne(runCtx, campaign.ID, content, contact, &sent, &failed, fatal)
		}(contact)
	}

	wg.Wait()

	if fatalErr != nil {
		d.logger.Error("campaign launch aborted, campaign left in sending",
			slog.String("campaign_id", campaign.ID),
			slog.String("error", fatalErr.Error()),
		)
		return fatalErr
	}

	finalStatus := models.FinalStatus(failed.Load())
	if _, err := d.campaigns.Finalize(ctx, campaign.ID, finalStatus); err != nil {
		return models.ErrStorageWithCause("campaign finalize", err)
	}

	d.logger.Info("campaign launch finished",
		slog.String("campaign_id", campaign.ID),
		slog.String("status", finalStatus),
		slog.Int64("sent", sent.Load()),
		slog.Int64("failed", failed.Load()),
		slog.Int("skipped", skipped),
	)

	return nil
}

// sendOne delivers the rendered message to a single contact and records the
// outcome. No automatic retry: a failed recipient is terminal for this
// campaign.
func (d *Dispatcher) sendOne(
	ctx context.Context,
	campaignID, content string,
	contact *models.Contact,
	sent, failed *atomic.Int64,
	fatal func(error),
) {
	message := d.renderer.Render(content, contact)

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	sendErr := d.gateway.Send(sendCtx, contact.PhoneNumber, message)

	if ctx.Err() != nil {
		// The launch was aborted while this send was in flight; do not record
		// a cancellation as a delivery outcome.
		return
	}

	result := &models.DispatchResult{
		CampaignID:  campaignID,
		PhoneNumber: contact.PhoneNumber,
		AttemptedAt: time.Now().UTC(),
	}

	if sendErr != nil {
		errText := sendErr.Error()
		result.Outcome = models.OutcomeFailed
		result.Error = &errText
		failed.Add(1)
		sendOutcomes.WithLabelValues(models.OutcomeFailed).Inc()

		d.logger.Warn("send failed",
			slog.String("campaign_id", campaignID),
			slog.String("phone", contact.PhoneNumber),
			slog.String("error", errText),
		)
	} else {
		result.Outcome = models.OutcomeSent
		sent.Add(1)
		sendOutcomes.WithLabelValues(models.OutcomeSent).Inc()
	}

	if err := d.campaigns.RecordResult(ctx, result); err != nil {
		fatal(models.ErrStorageWithCause("dispatch result", err))
		return
	}

	if sendErr == nil {
		// Outbound delivery counts as an interaction; best effort only.
		if err := d.contacts.TouchLastInteraction(ctx, contact.PhoneNumber, time.Now().UTC()); err != nil {
			d.logger.Warn("failed to touch last interaction",
				slog.String("phone", contact.PhoneNumber),
				slog.String("error", err.Error()),
			)
		}
	}
}
