package models

import (
	"fmt"
	"time"
)

// Campaign status constants
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusSending   = "sending"
	CampaignStatusSent      = "sent"
	CampaignStatusFailed    = "failed"
)

// Dispatch outcome constants
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// Campaign represents a single bulk-send job targeting a deduplicated,
// ordered contact list.
type Campaign struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Message     string     `json:"message"`
	TemplateID  *string    `json:"template_id,omitempty"`
	Status      string     `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	SentCount   int64      `json:"sent_count"`
	FailedCount int64      `json:"failed_count"`
	Targets     []string   `json:"targets"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CampaignFilter holds filtering options for listing campaigns
type CampaignFilter struct {
	Status   string
	Page     int
	PageSize int
}

// DispatchResult is the per-recipient outcome record of a campaign send
// attempt. At most one exists per (campaign, phone number) pair; skipped
// targets get none.
type DispatchResult struct {
	CampaignID  string    `json:"campaign_id"`
	PhoneNumber string    `json:"phone_number"`
	Outcome     string    `json:"outcome"`
	Error       *string   `json:"error,omitempty"`
	AttemptedAt time.Time `json:"attempted_at"`
}

// LaunchJob is the queue payload telling the worker to dispatch a campaign
type LaunchJob struct {
	CampaignID string `json:"campaign_id"`
}

// IsValidCampaignStatus checks if the campaign status is valid
func IsValidCampaignStatus(status string) bool {
	switch status {
	case CampaignStatusDraft, CampaignStatusScheduled, CampaignStatusSending,
		CampaignStatusSent, CampaignStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the campaign has reached a terminal status.
// Terminal campaigns are never re-launched.
func (c *Campaign) IsTerminal() bool {
	return c.Status == CampaignStatusSent || c.Status == CampaignStatusFailed
}

// CanLaunch checks if a campaign can be launched.
// Once a campaign is "sending", "sent", or "failed" it cannot be launched
// again, preventing duplicate sends if the API is called multiple times.
func (c *Campaign) CanLaunch() bool {
	return c.Status == CampaignStatusDraft || c.Status == CampaignStatusScheduled
}

// FinalStatus returns the terminal status for the given failure count. Any
// recipient failure makes the whole campaign "failed" so operators always
// review failures; partial success is observable through sent_count.
func FinalStatus(failedCount int64) string {
	if failedCount > 0 {
		return CampaignStatusFailed
	}
	return CampaignStatusSent
}

// Validate performs validation on campaign data
func (c *Campaign) Validate() error {
	if c.Name == "" {
		return ErrValidationWithMsg("name is required")
	}
	if c.Message == "" && c.TemplateID == nil {
		return ErrValidationWithMsg("message or template_id is required")
	}
	if len(c.Targets) == 0 {
		return ErrValidationWithMsg("targets is required and cannot be empty")
	}
	if c.Status != "" && !IsValidCampaignStatus(c.Status) {
		return ErrValidationWithMsg(fmt.Sprintf("invalid status: %s", c.Status))
	}
	return nil
}

// DedupeTargets normalizes phone numbers and collapses duplicates while
// preserving first-seen order.
func DedupeTargets(targets []string) []string {
	seen := make(map[string]struct{}, len(targets))
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		phone := NormalizePhone(t)
		if phone == "" {
			continue
		}
		if _, ok := seen[phone]; ok {
			continue
		}
		seen[phone] = struct{}{}
		out = append(out, phone)
	}
	return out
}
