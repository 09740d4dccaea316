package models

import (
	"reflect"
	"testing"
)

func TestDedupeTargets(t *testing.T) {
	tests := []struct {
		name    string
		targets []string
		want    []string
	}{
		{
			name:    "duplicates collapsed, first-seen order kept",
			targets: []string{"5551234567", "5559876543", "5551234567"},
			want:    []string{"5551234567", "5559876543"},
		},
		{
			name:    "same number in different formats is one target",
			targets: []string{"+1 555-123-4567", "15551234567", "(555) 987-6543"},
			want:    []string{"15551234567", "5559876543"},
		},
		{
			name:    "entries with no digits dropped",
			targets: []string{"", "+- ", "5551234567"},
			want:    []string{"5551234567"},
		},
		{
			name:    "empty input",
			targets: []string{},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DedupeTargets(tt.targets)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DedupeTargets(%v) = %v, want %v", tt.targets, got, tt.want)
			}
		})
	}
}

func TestFinalStatus(t *testing.T) {
	if got := FinalStatus(0); got != CampaignStatusSent {
		t.Errorf("FinalStatus(0) = %q, want %q", got, CampaignStatusSent)
	}
	// A single failed recipient makes the whole campaign failed, even when
	// most targets succeeded.
	if got := FinalStatus(1); got != CampaignStatusFailed {
		t.Errorf("FinalStatus(1) = %q, want %q", got, CampaignStatusFailed)
	}
	if got := FinalStatus(99); got != CampaignStatusFailed {
		t.Errorf("FinalStatus(99) = %q, want %q", got, CampaignStatusFailed)
	}
}

func TestCampaign_CanLaunch(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{CampaignStatusDraft, true},
		{CampaignStatusScheduled, true},
		{CampaignStatusSending, false},
		{CampaignStatusSent, false},
		{CampaignStatusFailed, false},
	}

	for _, tt := range tests {
		c := &Campaign{Status: tt.status}
		if got := c.CanLaunch(); got != tt.want {
			t.Errorf("CanLaunch() with status %q = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestCampaign_IsTerminal(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{CampaignStatusDraft, false},
		{CampaignStatusScheduled, false},
		{CampaignStatusSending, false},
		{CampaignStatusSent, true},
		{CampaignStatusFailed, true},
	}

	for _, tt := range tests {
		c := &Campaign{Status: tt.status}
		if got := c.IsTerminal(); got != tt.want {
			t.Errorf("IsTerminal() with status %q = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestCampaign_Validate(t *testing.T) {
	templateID := "6f4e2a1c-0000-0000-0000-000000000000"

	tests := []struct {
		name     string
		campaign Campaign
		wantErr  bool
	}{
		{
			name:     "valid with message",
			campaign: Campaign{Name: "promo", Message: "hi", Targets: []string{"555"}},
			wantErr:  false,
		},
		{
			name:     "valid with template",
			campaign: Campaign{Name: "promo", TemplateID: &templateID, Targets: []string{"555"}},
			wantErr:  false,
		},
		{
			name:     "missing name",
			campaign: Campaign{Message: "hi", Targets: []string{"555"}},
			wantErr:  true,
		},
		{
			name:     "no message and no template",
			campaign: Campaign{Name: "promo", Targets: []string{"555"}},
			wantErr:  true,
		},
		{
			name:     "empty targets",
			campaign: Campaign{Name: "promo", Message: "hi", Targets: []string{}},
			wantErr:  true,
		},
		{
			name:     "invalid status",
			campaign: Campaign{Name: "promo", Message: "hi", Targets: []string{"555"}, Status: "archived"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.campaign.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
