package service

import (
	"context"
	"fmt"

	"github.com/wacrm/whatsapp-crm-backend/internal/repository"
)

// DashboardStats is the read-only rollup backing the operator dashboard
type DashboardStats struct {
	ContactsTotal     int64            `json:"contacts_total"`
	ContactsByStatus  map[string]int64 `json:"contacts_by_status"`
	ContactsPaused    int64            `json:"contacts_paused"`
	CampaignsByStatus map[string]int64 `json:"campaigns_by_status"`
	MessagesSent      int64            `json:"messages_sent"`
	MessagesFailed    int64            `json:"messages_failed"`
}

// StatsService aggregates counts over contacts and campaigns
type StatsService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
}

type statsService struct {
	contactRepo  repository.ContactRepository
	campaignRepo repository.CampaignRepository
}

// NewStatsService creates a new stats service
func NewStatsService(contactRepo repository.ContactRepository, campaignRepo repository.CampaignRepository) StatsService {
	return &statsService{
		contactRepo:  contactRepo,
		campaignRepo: campaignRepo,
	}
}

// Dashboard computes the rollup counts
func (s *statsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	byStatus, err := s.contactRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate contact counts: %w", err)
	}

	var total int64
	for _, count := range byStatus {
		total += count
	}

	paused, err := s.contactRepo.CountPaused(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count paused contacts: %w", err)
	}

	campaignsByStatus, err := s.campaignRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate campaign counts: %w", err)
	}

	sent, failed, err := s.campaignRepo.TotalOutcomes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to total dispatch outcomes: %w", err)
	}

	return &DashboardStats{
		ContactsTotal:     total,
		ContactsByStatus:  byStatus,
		ContactsPaused:    paused,
		CampaignsByStatus: campaignsByStatus,
		MessagesSent:      sent,
		MessagesFailed:    failed,
	}, nil
}
