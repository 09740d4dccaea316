package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wacrm/whatsapp-crm-backend/internal/models"
	"github.com/wacrm/whatsapp-crm-backend/internal/repository"
)

// ContactService handles the contact sales-lifecycle state machine
type ContactService interface {
	// ChangeStatus validates and applies a sale-status transition. Any
	// recognized status may follow any other; the funnel order is advisory
	// so operators can correct mistakes.
	ChangeStatus(ctx context.Context, phone string, newStatus string, notes string, appointmentDate *time.Time) (*models.Contact, error)

	// ConfirmPayment closes the deal: payment_pending -> completed.
	ConfirmPayment(ctx context.Context, phone string) (*models.Contact, error)

	// ConfirmAppointment moves appointment_scheduled -> appointment_confirmed
	// and appends the notes to the appointment record.
	ConfirmAppointment(ctx context.Context, phone string, notes string) (*models.Contact, error)

	// SetPaused toggles the pause flag independent of sale status. Paused
	// contacts are excluded from campaign dispatch and auto-response.
	SetPaused(ctx context.Context, phone string, paused bool) (*models.Contact, error)

	// UpsertOnInteraction is the inbound-message hook: creates the contact as
	// a lead on first contact, otherwise bumps last_interaction and the
	// interaction counter.
	UpsertOnInteraction(ctx context.Context, phone string, pushName string) (*models.Contact, error)

	UpdateProfile(ctx context.Context, phone string, name string, score int) (*models.Contact, error)
	Get(ctx context.Context, phone string) (*models.Contact, error)
	List(ctx context.Context, filter models.ContactFilter) ([]*models.Contact, models.PaginationResult, error)
}

type contactService struct {
	contactRepo repository.ContactRepository
	locks       keyedLocks
	now         func() time.Time
	logger      *slog.Logger
}

// NewContactService creates a new contact service
func NewContactService(contactRepo repository.ContactRepository, logger *slog.Logger) ContactService {
	return &contactService{
		contactRepo: contactRepo,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
}

// ChangeStatus validates and applies a sale-status transition
func (s *contactService) ChangeStatus(ctx context.Context, phone string, newStatus string, notes string, appointmentDate *time.Time) (*models.Contact, error) {
	status := models.SaleStatus(newStatus)
	if !status.IsValid() {
		return nil, models.ErrValidationWithMsg(fmt.Sprintf("unrecognized sale status: %s", newStatus))
	}

	phone = models.NormalizePhone(phone)
	mu := s.locks.lock(phone)
	defer mu.Unlock()

	contact, err := s.contactRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	// An appointment status needs a date, supplied now or already on record.
	if status.RequiresAppointment() && appointmentDate == nil && contact.AppointmentDate == nil {
		return nil, models.ErrValidationWithMsg(
			"appointment_date is required when moving to an appointment status",
		)
	}

	if err := s.contactRepo.UpdateSaleStatus(ctx, phone, status, notes, appointmentDate); err != nil {
		s.logger.Error("failed to change sale status",
			slog.String("phone", phone),
			slog.String("new_status", string(status)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("sale status changed",
		slog.String("phone", phone),
		slog.String("from", string(contact.SaleStatus)),
		slog.String("to", string(status)),
	)

	return s.contactRepo.GetByPhone(ctx, phone)
}

// ConfirmPayment requires payment_pending and closes the deal
func (s *contactService) ConfirmPayment(ctx context.Context, phone string) (*models.Contact, error) {
	phone = models.NormalizePhone(phone)
	mu := s.locks.lock(phone)
	defer mu.Unlock()

	contact, err := s.contactRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	if contact.SaleStatus != models.SaleStatusPaymentPending {
		return nil, models.ErrPreconditionWithMsg(fmt.Sprintf(
			"payment can only be confirmed while payment_pending, contact is %s", contact.SaleStatus,
		))
	}

	notes := fmt.Sprintf("payment confirmed on %s", s.now().Format(time.RFC3339))
	if err := s.contactRepo.UpdateSaleStatus(ctx, phone, models.SaleStatusCompleted, notes, nil); err != nil {
		s.logger.Error("failed to confirm payment",
			slog.String("phone", phone),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("payment confirmed", slog.String("phone", phone))

	return s.contactRepo.GetByPhone(ctx, phone)
}

// ConfirmAppointment requires appointment_scheduled
func (s *contactService) ConfirmAppointment(ctx context.Context, phone string, notes string) (*models.Contact, error) {
	phone = models.NormalizePhone(phone)
	mu := s.locks.lock(phone)
	defer mu.Unlock()

	contact, err := s.contactRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	if contact.SaleStatus != models.SaleStatusAppointmentScheduled {
		return nil, models.ErrPreconditionWithMsg(fmt.Sprintf(
			"appointment can only be confirmed while appointment_scheduled, contact is %s", contact.SaleStatus,
		))
	}

	if err := s.contactRepo.ConfirmAppointment(ctx, phone, notes); err != nil {
		s.logger.Error("failed to confirm appointment",
			slog.String("phone", phone),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("appointment confirmed", slog.String("phone", phone))

	return s.contactRepo.GetByPhone(ctx, phone)
}

// SetPaused toggles the pause flag; repeating the same value is a no-op
func (s *contactService) SetPaused(ctx context.Context, phone string, paused bool) (*models.Contact, error) {
	phone = models.NormalizePhone(phone)
	mu := s.locks.lock(phone)
	defer mu.Unlock()

	if err := s.contactRepo.SetPaused(ctx, phone, paused); err != nil {
		return nil, err
	}

	s.logger.Info("contact pause flag set",
		slog.String("phone", phone),
		slog.Bool("paused", paused),
	)

	return s.contactRepo.GetByPhone(ctx, phone)
}

// UpsertOnInteraction handles an inbound message from a phone number
func (s *contactService) UpsertOnInteraction(ctx context.Context, phone string, pushName string) (*models.Contact, error) {
	phone = models.NormalizePhone(phone)
	if phone == "" {
		return nil, models.ErrValidationWithMsg("phone_number is required")
	}

	mu := s.locks.lock(phone)
	defer mu.Unlock()

	contact, err := s.contactRepo.UpsertOnInteraction(ctx, phone, pushName, s.now())
	if err != nil {
		s.logger.Error("failed to upsert contact on interaction",
			slog.String("phone", phone),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if contact.InteractionsCount == 1 {
		s.logger.Info("new contact created from inbound message",
			slog.String("phone", phone),
			slog.String("push_name", pushName),
		)
	}

	return contact, nil
}

// UpdateProfile updates the operator-editable name and lead score
func (s *contactService) UpdateProfile(ctx context.Context, phone string, name string, score int) (*models.Contact, error) {
	if score < 0 {
		return nil, models.ErrValidationWithMsg("score must be non-negative")
	}

	phone = models.NormalizePhone(phone)
	mu := s.locks.lock(phone)
	defer mu.Unlock()

	if err := s.contactRepo.UpdateProfile(ctx, phone, name, score); err != nil {
		return nil, err
	}

	return s.contactRepo.GetByPhone(ctx, phone)
}

// Get retrieves a contact by phone number
func (s *contactService) Get(ctx context.Context, phone string) (*models.Contact, error) {
	return s.contactRepo.GetByPhone(ctx, models.NormalizePhone(phone))
}

// List retrieves contacts with pagination
func (s *contactService) List(ctx context.Context, filter models.ContactFilter) ([]*models.Contact, models.PaginationResult, error) {
	contacts, totalCount, err := s.contactRepo.List(ctx, filter)
	if err != nil {
		return nil, models.PaginationResult{}, fmt.Errorf("failed to list contacts: %w", err)
	}

	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)
	pagination := models.NewPaginationResult(filter.Page, filter.PageSize, totalCount)

	return contacts, pagination, nil
}
