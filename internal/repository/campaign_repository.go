package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/wacrm/whatsapp-crm-backend/internal/models"
)

// CampaignRepository defines the interface for campaign data access
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	List(ctx context.Context, filter models.CampaignFilter) ([]*models.Campaign, int64, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.Campaign, error)

	// MarkSending atomically moves a draft/scheduled campaign to sending.
	// Returns false when the campaign was not in a launchable status, which
	// is the double-launch guard.
	MarkSending(ctx context.Context, id string) (bool, error)

	// Finalize moves a sending campaign to its terminal status exactly once.
	Finalize(ctx context.Context, id string, status string) (bool, error)

	// RecordResult inserts a per-recipient dispatch result and bumps the
	// matching campaign counter in one transaction.
	RecordResult(ctx context.Context, result *models.DispatchResult) error

	ListResults(ctx context.Context, campaignID string) ([]*models.DispatchResult, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	TotalOutcomes(ctx context.Context) (sent int64, failed int64, err error)
}

// campaignRepository implements CampaignRepository using PostgreSQL
type campaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *sql.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

const campaignColumns = `id, name, message, template_id, status, scheduled_at,
	sent_count, failed_count, targets, created_at, updated_at`

// Create inserts a new campaign
func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	query := `
		INSERT INTO campaigns (id, name, message, template_id, status, scheduled_at, targets)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		campaign.ID,
		campaign.Name,
		campaign.Message,
		campaign.TemplateID,
		campaign.Status,
		campaign.ScheduledAt,
		pq.Array(campaign.Targets),
	).Scan(&campaign.CreatedAt, &campaign.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	return nil
}

// GetByID retrieves a campaign by ID
func (r *campaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	campaign, err := scanCampaign(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("campaign with ID %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	return campaign, nil
}

// List retrieves campaigns with pagination and filtering
func (r *campaignRepository) List(ctx context.Context, filter models.CampaignFilter) ([]*models.Campaign, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		countQuery += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filter.Status)
		argPos++
	}

	var totalCount int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count campaigns: %w", err)
	}

	offset := models.CalculateOffset(filter.Page, filter.PageSize)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []*models.Campaign{}
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating campaigns: %w", err)
	}

	return campaigns, totalCount, nil
}

// ListDue retrieves scheduled campaigns whose send time has arrived
func (r *campaignRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE status = $1 AND scheduled_at <= $2
		ORDER BY scheduled_at ASC`

	rows, err := r.db.QueryContext(ctx, query, models.CampaignStatusScheduled, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []*models.Campaign{}
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due campaign: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due campaigns: %w", err)
	}

	return campaigns, nil
}

// MarkSending performs the compare-and-swap into sending
func (r *campaignRepository) MarkSending(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE campaigns
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status IN ($3, $4)`

	result, err := r.db.ExecContext(ctx, query,
		models.CampaignStatusSending, id,
		models.CampaignStatusDraft, models.CampaignStatusScheduled,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark campaign sending: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// Finalize performs the compare-and-swap from sending to a terminal status
func (r *campaignRepository) Finalize(ctx context.Context, id string, status string) (bool, error) {
	query := `
		UPDATE campaigns
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, status, id, models.CampaignStatusSending)
	if err != nil {
		return false, fmt.Errorf("failed to finalize campaign: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// RecordResult inserts the dispatch result and increments sent_count or
// failed_count atomically. The unique (campaign_id, phone_number) constraint
// keeps re-dispatch from merging results.
func (r *campaignRepository) RecordResult(ctx context.Context, result *models.DispatchResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insertQuery := `
		INSERT INTO dispatch_results (campaign_id, phone_number, outcome, error, attempted_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := tx.ExecContext(ctx, insertQuery,
		result.CampaignID,
		result.PhoneNumber,
		result.Outcome,
		result.Error,
		result.AttemptedAt,
	); err != nil {
		return fmt.Errorf("failed to insert dispatch result: %w", err)
	}

	counter := "sent_count"
	if result.Outcome == models.OutcomeFailed {
		counter = "failed_count"
	}

	// Atomic increment, never read-modify-write: sends complete out of order.
	incrementQuery := fmt.Sprintf(
		`UPDATE campaigns SET %s = %s + 1, updated_at = NOW() WHERE id = $1`,
		counter, counter,
	)

	if _, err := tx.ExecContext(ctx, incrementQuery, result.CampaignID); err != nil {
		return fmt.Errorf("failed to increment campaign counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dispatch result: %w", err)
	}

	return nil
}

// ListResults retrieves all dispatch results for a campaign in attempt order
func (r *campaignRepository) ListResults(ctx context.Context, campaignID string) ([]*models.DispatchResult, error) {
	query := `
		SELECT campaign_id, phone_number, outcome, error, attempted_at
		FROM dispatch_results
		WHERE campaign_id = $1
		ORDER BY attempted_at ASC`

	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dispatch results: %w", err)
	}
	defer rows.Close()

	results := []*models.DispatchResult{}
	for rows.Next() {
		result := &models.DispatchResult{}
		err := rows.Scan(
			&result.CampaignID,
			&result.PhoneNumber,
			&result.Outcome,
			&result.Error,
			&result.AttemptedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dispatch result: %w", err)
		}
		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dispatch results: %w", err)
	}

	return results, nil
}

// CountByStatus returns campaign counts grouped by status
func (r *campaignRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	query := `SELECT status, COUNT(*) FROM campaigns GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count campaigns by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan campaign count: %w", err)
		}
		counts[status] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaign counts: %w", err)
	}

	return counts, nil
}

// TotalOutcomes returns the all-time sent and failed delivery totals
func (r *campaignRepository) TotalOutcomes(ctx context.Context) (int64, int64, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE outcome = 'sent'),
			COUNT(*) FILTER (WHERE outcome = 'failed')
		FROM dispatch_results`

	var sent, failed int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&sent, &failed); err != nil {
		return 0, 0, fmt.Errorf("failed to total dispatch outcomes: %w", err)
	}

	return sent, failed, nil
}

func scanCampaign(row rowScanner) (*models.Campaign, error) {
	campaign := &models.Campaign{}
	var targets pq.StringArray

	err := row.Scan(
		&campaign.ID,
		&campaign.Name,
		&campaign.Message,
		&campaign.TemplateID,
		&campaign.Status,
		&campaign.ScheduledAt,
		&campaign.SentCount,
		&campaign.FailedCount,
		&targets,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	campaign.Targets = []string(targets)
	return campaign, nil
}
