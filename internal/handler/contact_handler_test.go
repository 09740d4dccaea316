package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wacrm/whatsapp-crm-backend/internal/models"
	"github.com/wacrm/whatsapp-crm-backend/internal/service"
)

// stubContactService returns canned responses per method
type stubContactService struct {
	contact *models.Contact
	err     error

	gotPhone  string
	gotStatus string
	gotPaused bool
}

func (s *stubContactService) ChangeStatus(ctx context.Context, phone, newStatus, notes string, appointmentDate *time.Time) (*models.Contact, error) {
	s.gotPhone = phone
	s.gotStatus = newStatus
	return s.contact, s.err
}

func (s *stubContactService) ConfirmPayment(ctx context.Context, phone string) (*models.Contact, error) {
	s.gotPhone = phone
	return s.contact, s.err
}

func (s *stubContactService) ConfirmAppointment(ctx context.Context, phone, notes string) (*models.Contact, error) {
	s.gotPhone = phone
	return s.contact, s.err
}

func (s *stubContactService) SetPaused(ctx context.Context, phone string, paused bool) (*models.Contact, error) {
	s.gotPhone = phone
	s.gotPaused = paused
	return s.contact, s.err
}

func (s *stubContactService) UpsertOnInteraction(ctx context.Context, phone, pushName string) (*models.Contact, error) {
	s.gotPhone = phone
	return s.contact, s.err
}

func (s *stubContactService) UpdateProfile(ctx context.Context, phone, name string, score int) (*models.Contact, error) {
	s.gotPhone = phone
	return s.contact, s.err
}

func (s *stubContactService) Get(ctx context.Context, phone string) (*models.Contact, error) {
	s.gotPhone = phone
	return s.contact, s.err
}

func (s *stubContactService) List(ctx context.Context, filter models.ContactFilter) ([]*models.Contact, models.PaginationResult, error) {
	if s.err != nil {
		return nil, models.PaginationResult{}, s.err
	}
	return []*models.Contact{s.contact}, models.PaginationResult{Page: 1, PageSize: 20, TotalCount: 1, TotalPages: 1}, nil
}

func newContactRouter(svc service.ContactService) http.Handler {
	h := NewContactHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Route("/contacts", func(r chi.Router) {
		r.Get("/", h.ListContacts)
		r.Post("/interaction", h.RecordInteraction)
		r.Route("/{phone}", func(r chi.Router) {
			r.Get("/", h.GetContact)
			r.Put("/status", h.ChangeStatus)
			r.Put("/pause", h.SetPaused)
			r.Put("/profile", h.UpdateProfile)
			r.Post("/payment/confirm", h.ConfirmPayment)
			r.Post("/appointment/confirm", h.ConfirmAppointment)
		})
	})
	return r
}

func TestContactHandler_GetContact(t *testing.T) {
	svc := &stubContactService{contact: &models.Contact{
		PhoneNumber: "5551234567",
		SaleStatus:  models.SaleStatusLead,
	}}

	req := httptest.NewRequest(http.MethodGet, "/contacts/5551234567", nil)
	rec := httptest.NewRecorder()
	newContactRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	if svc.gotPhone != "5551234567" {
		t.Errorf("service phone = %q, want URL param passed through", svc.gotPhone)
	}

	var contact models.Contact
	if err := json.Unmarshal(rec.Body.Bytes(), &contact); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if contact.SaleStatus != models.SaleStatusLead {
		t.Errorf("contact.SaleStatus = %q, want lead", contact.SaleStatus)
	}
}

func TestContactHandler_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found -> 404", models.ErrNotFoundWithMsg("contact not found"), http.StatusNotFound, "NOT_FOUND"},
		{"validation -> 400", models.ErrValidationWithMsg("bad status"), http.StatusBadRequest, "VALIDATION"},
		{"precondition -> 409", models.ErrPreconditionWithMsg("wrong state"), http.StatusConflict, "PRECONDITION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubContactService{err: tt.err}

			req := httptest.NewRequest(http.MethodPost, "/contacts/5551234567/payment/confirm", nil)
			rec := httptest.NewRecorder()
			newContactRouter(svc).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid error body: %v", err)
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("error code = %q, want %q", resp.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestContactHandler_ChangeStatus(t *testing.T) {
	svc := &stubContactService{contact: &models.Contact{
		PhoneNumber: "5551234567",
		SaleStatus:  models.SaleStatusPaymentPending,
	}}

	body, _ := json.Marshal(service.ChangeStatusRequest{
		Status: "payment_pending",
		Notes:  "cliente interesado",
	})

	req := httptest.NewRequest(http.MethodPut, "/contacts/5551234567/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	newContactRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.gotStatus != "payment_pending" {
		t.Errorf("service status = %q, want payment_pending", svc.gotStatus)
	}
}

func TestContactHandler_ChangeStatus_InvalidJSON(t *testing.T) {
	svc := &stubContactService{}

	req := httptest.NewRequest(http.MethodPut, "/contacts/5551234567/status", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	newContactRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestContactHandler_SetPaused(t *testing.T) {
	svc := &stubContactService{contact: &models.Contact{PhoneNumber: "5551234567", IsPaused: true}}

	body, _ := json.Marshal(service.SetPausedRequest{Paused: true})
	req := httptest.NewRequest(http.MethodPut, "/contacts/5551234567/pause", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	newContactRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !svc.gotPaused {
		t.Error("service paused = false, want true")
	}
}

func TestContactHandler_ConfirmAppointment_EmptyBodyAllowed(t *testing.T) {
	svc := &stubContactService{contact: &models.Contact{
		PhoneNumber: "5551234567",
		SaleStatus:  models.SaleStatusAppointmentConfirmed,
	}}

	// Confirmation notes are optional; no body at all must work.
	req := httptest.NewRequest(http.MethodPost, "/contacts/5551234567/appointment/confirm", nil)
	rec := httptest.NewRecorder()
	newContactRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
}

func TestContactHandler_ListContacts_BadPausedParam(t *testing.T) {
	svc := &stubContactService{contact: &models.Contact{PhoneNumber: "555"}}

	req := httptest.NewRequest(http.MethodGet, "/contacts?paused=maybe", nil)
	rec := httptest.NewRecorder()
	newContactRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for non-boolean paused", rec.Code)
	}
}
