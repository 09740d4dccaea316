package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wacrm/whatsapp-crm-backend/internal/models"
	"github.com/wacrm/whatsapp-crm-backend/internal/queue"
	"github.com/wacrm/whatsapp-crm-backend/internal/repository"
)

// CampaignService handles campaign business logic
type CampaignService interface {
	Create(ctx context.Context, req *CreateCampaignRequest) (*models.Campaign, error)
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	List(ctx context.Context, filter models.CampaignFilter) (*CampaignListResult, error)

	// Launch verifies the campaign is launchable and enqueues a launch job.
	// The worker-side dispatcher owns the authoritative transition to
	// sending, so a duplicate enqueue can never double-send.
	Launch(ctx context.Context, id string) (*LaunchResult, error)

	Results(ctx context.Context, id string) ([]*models.DispatchResult, error)
}

type campaignService struct {
	campaignRepo repository.CampaignRepository
	templateRepo repository.TemplateRepository
	queueClient  queue.Client
	now          func() time.Time
	logger       *slog.Logger
}

// NewCampaignService creates a new campaign service
func NewCampaignService(
	campaignRepo repository.CampaignRepository,
	templateRepo repository.TemplateRepository,
	queueClient queue.Client,
	logger *slog.Logger,
) CampaignService {
	return &campaignService{
		campaignRepo: campaignRepo,
		templateRepo: templateRepo,
		queueClient:  queueClient,
		now:          func() time.Time { return time.Now().UTC() },
		logger:       logger,
	}
}

// Create creates a new campaign in draft, or scheduled when a send time is
// given
func (s *campaignService) Create(ctx context.Context, req *CreateCampaignRequest) (*models.Campaign, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	targets := models.DedupeTargets(req.Targets)
	if len(targets) == 0 {
		return nil, models.ErrValidationWithMsg("targets contains no valid phone numbers")
	}

	if req.TemplateID != nil {
		if _, err := s.templateRepo.GetByID(ctx, *req.TemplateID); err != nil {
			return nil, err
		}
	}

	if req.ScheduledAt != nil && !req.ScheduledAt.After(s.now()) {
		return nil, models.ErrValidationWithMsg("scheduled_at must be in the future")
	}

	status := models.CampaignStatusDraft
	if req.ScheduledAt != nil {
		status = models.CampaignStatusScheduled
	}

	campaign := &models.Campaign{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Message:     req.Message,
		TemplateID:  req.TemplateID,
		Status:      status,
		ScheduledAt: req.ScheduledAt,
		Targets:     targets,
	}

	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		s.logger.Error("failed to create campaign",
			slog.String("name", req.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	s.logger.Info("campaign created",
		slog.String("campaign_id", campaign.ID),
		slog.String("name", campaign.Name),
		slog.String("status", campaign.Status),
		slog.Int("targets", len(campaign.Targets)),
	)

	return campaign, nil
}

// GetByID retrieves a campaign
func (s *campaignService) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	return s.campaignRepo.GetByID(ctx, id)
}

// List retrieves campaigns with pagination
func (s *campaignService) List(ctx context.Context, filter models.CampaignFilter) (*CampaignListResult, error) {
	campaigns, totalCount, err := s.campaignRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)
	pagination := models.NewPaginationResult(filter.Page, filter.PageSize, totalCount)

	return &CampaignListResult{
		Data:       campaigns,
		Pagination: pagination,
	}, nil
}

// Launch enqueues a campaign for dispatch
func (s *campaignService) Launch(ctx context.Context, id string) (*LaunchResult, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !campaign.CanLaunch() {
		return nil, models.ErrPreconditionWithMsg(fmt.Sprintf(
			"campaign with status '%s' cannot be launched", campaign.Status,
		))
	}

	if campaign.ScheduledAt != nil && campaign.ScheduledAt.After(s.now()) {
		return nil, models.ErrPreconditionWithMsg(fmt.Sprintf(
			"campaign is scheduled for %s", campaign.ScheduledAt.Format(time.RFC3339),
		))
	}

	job := &models.LaunchJob{CampaignID: campaign.ID}
	if err := s.queueClient.Publish(ctx, job); err != nil {
		s.logger.Error("failed to enqueue campaign launch",
			slog.String("campaign_id", campaign.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to enqueue campaign launch: %w", err)
	}

	s.logger.Info("campaign launch enqueued",
		slog.String("campaign_id", campaign.ID),
		slog.Int("targets", len(campaign.Targets)),
	)

	return &LaunchResult{
		CampaignID: campaign.ID,
		Targets:    len(campaign.Targets),
		Status:     campaign.Status,
	}, nil
}

// Results retrieves the per-recipient outcomes recorded for a campaign
func (s *campaignService) Results(ctx context.Context, id string) ([]*models.DispatchResult, error) {
	if _, err := s.campaignRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	return s.campaignRepo.ListResults(ctx, id)
}
