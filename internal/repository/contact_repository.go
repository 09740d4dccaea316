package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wacrm/whatsapp-crm-backend/internal/models"
)

// ContactRepository defines the interface for contact data access
type ContactRepository interface {
	UpsertOnInteraction(ctx context.Context, phone, pushName string, now time.Time) (*models.Contact, error)
	GetByPhone(ctx context.Context, phone string) (*models.Contact, error)
	List(ctx context.Context, filter models.ContactFilter) ([]*models.Contact, int64, error)
	UpdateSaleStatus(ctx context.Context, phone string, status models.SaleStatus, notes string, appointmentDate *time.Time) error
	ConfirmAppointment(ctx context.Context, phone string, notes string) error
	SetPaused(ctx context.Context, phone string, paused bool) error
	TouchLastInteraction(ctx context.Context, phone string, now time.Time) error
	UpdateProfile(ctx context.Context, phone, name string, score int) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountPaused(ctx context.Context) (int64, error)
}

// contactRepository implements ContactRepository using PostgreSQL
type contactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *sql.DB) ContactRepository {
	return &contactRepository{db: db}
}

const contactColumns = `phone_number, name, push_name, sale_status, sale_status_notes,
	appointment_date, appointment_notes, is_paused, last_interaction, score,
	interactions_count, created_at, updated_at`

// UpsertOnInteraction creates the contact on first inbound message or bumps
// last_interaction and interactions_count on subsequent ones. The push name is
// only overwritten when the source supplied one.
func (r *contactRepository) UpsertOnInteraction(ctx context.Context, phone, pushName string, now time.Time) (*models.Contact, error) {
	query := `
		INSERT INTO contacts (phone_number, push_name, sale_status, last_interaction, interactions_count)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (phone_number) DO UPDATE SET
			push_name = COALESCE(NULLIF(EXCLUDED.push_name, ''), contacts.push_name),
			last_interaction = EXCLUDED.last_interaction,
			interactions_count = contacts.interactions_count + 1,
			updated_at = EXCLUDED.last_interaction
		RETURNING ` + contactColumns

	row := r.db.QueryRowContext(ctx, query, phone, pushName, string(models.SaleStatusLead), now)
	contact, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert contact: %w", err)
	}

	return contact, nil
}

// GetByPhone retrieves a contact by phone number
func (r *contactRepository) GetByPhone(ctx context.Context, phone string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE phone_number = $1`

	contact, err := scanContact(r.db.QueryRowContext(ctx, query, phone))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("contact with phone %s not found", phone))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return contact, nil
}

// List retrieves contacts with pagination and filtering
func (r *contactRepository) List(ctx context.Context, filter models.ContactFilter) ([]*models.Contact, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	query := `SELECT ` + contactColumns + ` FROM contacts WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM contacts WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.SaleStatus != "" {
		query += fmt.Sprintf(" AND sale_status = $%d", argPos)
		countQuery += fmt.Sprintf(" AND sale_status = $%d", argPos)
		args = append(args, filter.SaleStatus)
		argPos++
	}

	if filter.Paused != nil {
		query += fmt.Sprintf(" AND is_paused = $%d", argPos)
		countQuery += fmt.Sprintf(" AND is_paused = $%d", argPos)
		args = append(args, *filter.Paused)
		argPos++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR phone_number LIKE $%d)", argPos, argPos)
		countQuery += fmt.Sprintf(" AND (name ILIKE $%d OR phone_number LIKE $%d)", argPos, argPos)
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}

	var totalCount int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	offset := models.CalculateOffset(filter.Page, filter.PageSize)
	query += fmt.Sprintf(" ORDER BY last_interaction DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []*models.Contact{}
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, totalCount, nil
}

// UpdateSaleStatus writes the new status and notes. A nil appointmentDate
// never clears an existing date, only a new date overwrites it.
func (r *contactRepository) UpdateSaleStatus(ctx context.Context, phone string, status models.SaleStatus, notes string, appointmentDate *time.Time) error {
	query := `
		UPDATE contacts
		SET sale_status = $1,
		    sale_status_notes = $2,
		    appointment_date = COALESCE($3, appointment_date),
		    updated_at = NOW()
		WHERE phone_number = $4`

	result, err := r.db.ExecContext(ctx, query, string(status), notes, appointmentDate, phone)
	if err != nil {
		return fmt.Errorf("failed to update sale status: %w", err)
	}

	return requireRowAffected(result, phone)
}

// ConfirmAppointment moves the contact to appointment_confirmed and appends
// the confirmation notes to any already on record.
func (r *contactRepository) ConfirmAppointment(ctx context.Context, phone string, notes string) error {
	query := `
		UPDATE contacts
		SET sale_status = $1,
		    appointment_notes = CASE
				WHEN $2 = '' THEN appointment_notes
				WHEN appointment_notes = '' THEN $2
				ELSE appointment_notes || E'\n' || $2
			END,
		    updated_at = NOW()
		WHERE phone_number = $3`

	result, err := r.db.ExecContext(ctx, query, string(models.SaleStatusAppointmentConfirmed), notes, phone)
	if err != nil {
		return fmt.Errorf("failed to confirm appointment: %w", err)
	}

	return requireRowAffected(result, phone)
}

// SetPaused toggles the pause flag independent of sale status
func (r *contactRepository) SetPaused(ctx context.Context, phone string, paused bool) error {
	query := `
		UPDATE contacts
		SET is_paused = $1, updated_at = NOW()
		WHERE phone_number = $2`

	result, err := r.db.ExecContext(ctx, query, paused, phone)
	if err != nil {
		return fmt.Errorf("failed to set paused: %w", err)
	}

	return requireRowAffected(result, phone)
}

// TouchLastInteraction stamps the outbound-message timestamp
func (r *contactRepository) TouchLastInteraction(ctx context.Context, phone string, now time.Time) error {
	query := `
		UPDATE contacts
		SET last_interaction = $1, updated_at = $1
		WHERE phone_number = $2`

	result, err := r.db.ExecContext(ctx, query, now, phone)
	if err != nil {
		return fmt.Errorf("failed to touch last interaction: %w", err)
	}

	return requireRowAffected(result, phone)
}

// UpdateProfile updates the operator-editable display name and lead score
func (r *contactRepository) UpdateProfile(ctx context.Context, phone, name string, score int) error {
	query := `
		UPDATE contacts
		SET name = $1, score = $2, updated_at = NOW()
		WHERE phone_number = $3`

	result, err := r.db.ExecContext(ctx, query, name, score, phone)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return requireRowAffected(result, phone)
}

// CountByStatus returns contact counts grouped by sale status
func (r *contactRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	query := `SELECT sale_status, COUNT(*) FROM contacts GROUP BY sale_status`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count contacts by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[string(models.ParseSaleStatus(status))] += count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	return counts, nil
}

// CountPaused returns the number of paused contacts
func (r *contactRepository) CountPaused(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts WHERE is_paused`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count paused contacts: %w", err)
	}
	return count, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	contact := &models.Contact{}
	var rawStatus string

	err := row.Scan(
		&contact.PhoneNumber,
		&contact.Name,
		&contact.PushName,
		&rawStatus,
		&contact.SaleStatusNotes,
		&contact.AppointmentDate,
		&contact.AppointmentNotes,
		&contact.IsPaused,
		&contact.LastInteraction,
		&contact.Score,
		&contact.InteractionsCount,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	contact.SaleStatus = models.ParseSaleStatus(rawStatus)
	return contact, nil
}

func requireRowAffected(result sql.Result, phone string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("contact with phone %s not found", phone))
	}

	return nil
}
