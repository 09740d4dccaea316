package service

import (
	"time"

	"github.com/wacrm/whatsapp-crm-backend/internal/models"
)

// CreateCampaignRequest represents a request to create a campaign
type CreateCampaignRequest struct {
	Name        string     `json:"name"`
	Message     string     `json:"message,omitempty"`
	TemplateID  *string    `json:"template_id,omitempty"`
	Targets     []string   `json:"targets"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// Validate performs validation on the create campaign request
func (r *CreateCampaignRequest) Validate() error {
	if r.Name == "" {
		return models.ErrValidationWithMsg("name is required")
	}
	if r.Message == "" && r.TemplateID == nil {
		return models.ErrValidationWithMsg("message or template_id is required")
	}
	if r.Message != "" && r.TemplateID != nil {
		return models.ErrValidationWithMsg("message and template_id are mutually exclusive")
	}
	if len(r.Targets) == 0 {
		return models.ErrValidationWithMsg("targets is required and cannot be empty")
	}
	return nil
}

// LaunchResult represents the result of enqueueing a campaign launch
type LaunchResult struct {
	CampaignID string `json:"campaign_id"`
	Targets    int    `json:"targets"`
	Status     string `json:"status"`
}

// CampaignListResult represents paginated campaign list results
type CampaignListResult struct {
	Data       []*models.Campaign      `json:"data"`
	Pagination models.PaginationResult `json:"pagination"`
}

// ChangeStatusRequest represents a sale-status transition request
type ChangeStatusRequest struct {
	Status          string     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	AppointmentDate *time.Time `json:"appointment_date,omitempty"`
}

// SetPausedRequest toggles a contact's pause flag
type SetPausedRequest struct {
	Paused bool `json:"paused"`
}

// UpdateProfileRequest updates operator-editable contact fields
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// InteractionRequest is the inbound-message upsert payload
type InteractionRequest struct {
	PhoneNumber string `json:"phone_number"`
	PushName    string `json:"push_name,omitempty"`
}

// ConfirmAppointmentRequest carries optional confirmation notes
type ConfirmAppointmentRequest struct {
	Notes string `json:"notes,omitempty"`
}

// TemplateRequest is the create/update template payload
type TemplateRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ContactListResult represents paginated contact list results
type ContactListResult struct {
	Data       []*models.Contact       `json:"data"`
	Pagination models.PaginationResult `json:"pagination"`
}

// TemplateListResult represents paginated template list results
type TemplateListResult struct {
	Data       []*models.Template      `json:"data"`
	Pagination models.PaginationResult `json:"pagination"`
}
