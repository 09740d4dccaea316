package models

import (
	"strings"
	"time"
)

// SaleStatus is a contact's position in the sales funnel. The funnel order is
// advisory: operators may move a contact backward to correct mistakes, so no
// transition table blocks moves between recognized statuses.
type SaleStatus string

const (
	SaleStatusLead                 SaleStatus = "lead"
	SaleStatusInterested           SaleStatus = "interested"
	SaleStatusInfoRequested        SaleStatus = "info_requested"
	SaleStatusPaymentPending       SaleStatus = "payment_pending"
	SaleStatusAppointmentScheduled SaleStatus = "appointment_scheduled"
	SaleStatusAppointmentConfirmed SaleStatus = "appointment_confirmed"
	SaleStatusCompleted            SaleStatus = "completed"

	// SaleStatusUnknown is the fallback for unrecognized stored values so
	// legacy rows do not crash listing or lifecycle logic.
	SaleStatusUnknown SaleStatus = "unknown"
)

// ParseSaleStatus maps a raw string to a recognized SaleStatus, falling back
// to SaleStatusUnknown.
func ParseSaleStatus(raw string) SaleStatus {
	s := SaleStatus(raw)
	if s.IsValid() {
		return s
	}
	return SaleStatusUnknown
}

// IsValid reports whether the status is a recognized funnel value.
// SaleStatusUnknown is readable but never accepted as a transition target.
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusLead, SaleStatusInterested, SaleStatusInfoRequested,
		SaleStatusPaymentPending, SaleStatusAppointmentScheduled,
		SaleStatusAppointmentConfirmed, SaleStatusCompleted:
		return true
	default:
		return false
	}
}

// RequiresAppointment reports whether the status needs an appointment date on
// record.
func (s SaleStatus) RequiresAppointment() bool {
	return s == SaleStatusAppointmentScheduled || s == SaleStatusAppointmentConfirmed
}

// Contact represents a person tracked through the sales funnel. Contacts are
// keyed by normalized phone number and are never hard-deleted.
type Contact struct {
	PhoneNumber       string     `json:"phone_number"`
	Name              string     `json:"name,omitempty"`
	PushName          string     `json:"push_name,omitempty"`
	SaleStatus        SaleStatus `json:"sale_status"`
	SaleStatusNotes   string     `json:"sale_status_notes,omitempty"`
	AppointmentDate   *time.Time `json:"appointment_date,omitempty"`
	AppointmentNotes  string     `json:"appointment_notes,omitempty"`
	IsPaused          bool       `json:"is_paused"`
	LastInteraction   time.Time  `json:"last_interaction"`
	Score             int        `json:"score"`
	InteractionsCount int64      `json:"interactions_count"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ContactFilter holds filtering options for listing contacts
type ContactFilter struct {
	SaleStatus string
	Paused     *bool
	Search     string
	Page       int
	PageSize   int
}

// NormalizePhone reduces a phone number to its digits-only canonical form.
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate performs basic validation on contact data
func (c *Contact) Validate() error {
	if c.PhoneNumber == "" {
		return ErrValidationWithMsg("phone_number is required")
	}
	if c.Score < 0 {
		return ErrValidationWithMsg("score must be non-negative")
	}
	return nil
}
