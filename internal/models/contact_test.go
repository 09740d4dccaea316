package models

import "testing"

func TestParseSaleStatus(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want SaleStatus
	}{
		{"lead", "lead", SaleStatusLead},
		{"interested", "interested", SaleStatusInterested},
		{"info_requested", "info_requested", SaleStatusInfoRequested},
		{"payment_pending", "payment_pending", SaleStatusPaymentPending},
		{"appointment_scheduled", "appointment_scheduled", SaleStatusAppointmentScheduled},
		{"appointment_confirmed", "appointment_confirmed", SaleStatusAppointmentConfirmed},
		{"completed", "completed", SaleStatusCompleted},
		{"legacy value falls back to unknown", "vip", SaleStatusUnknown},
		{"empty string falls back to unknown", "", SaleStatusUnknown},
		{"case sensitive", "Lead", SaleStatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSaleStatus(tt.raw); got != tt.want {
				t.Errorf("ParseSaleStatus(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSaleStatus_IsValid_RejectsUnknown(t *testing.T) {
	// Unknown is readable from storage but never a valid transition target.
	if SaleStatusUnknown.IsValid() {
		t.Error("SaleStatusUnknown.IsValid() = true, want false")
	}
}

func TestSaleStatus_RequiresAppointment(t *testing.T) {
	tests := []struct {
		status SaleStatus
		want   bool
	}{
		{SaleStatusLead, false},
		{SaleStatusInterested, false},
		{SaleStatusInfoRequested, false},
		{SaleStatusPaymentPending, false},
		{SaleStatusAppointmentScheduled, true},
		{SaleStatusAppointmentConfirmed, true},
		{SaleStatusCompleted, false},
	}

	for _, tt := range tests {
		if got := tt.status.RequiresAppointment(); got != tt.want {
			t.Errorf("%s.RequiresAppointment() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"already digits", "5551234567", "5551234567"},
		{"plus prefix stripped", "+15551234567", "15551234567"},
		{"formatting stripped", "(555) 123-4567", "5551234567"},
		{"spaces stripped", "555 123 4567", "5551234567"},
		{"letters stripped", "call555now", "555"},
		{"empty", "", ""},
		{"no digits at all", "+- ()", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.phone); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.phone, got, tt.want)
			}
		})
	}
}

func TestContact_Validate(t *testing.T) {
	c := &Contact{PhoneNumber: "", Score: 0}
	if err := c.Validate(); err == nil {
		t.Error("Validate() with empty phone returned nil, want error")
	}

	c = &Contact{PhoneNumber: "5551234567", Score: -1}
	if err := c.Validate(); err == nil {
		t.Error("Validate() with negative score returned nil, want error")
	}

	c = &Contact{PhoneNumber: "5551234567", Score: 10}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() on valid contact = %v, want nil", err)
	}
}
