package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wacrm/whatsapp-crm-backend/internal/models"
)

// TemplateRepository defines the interface for template data access
type TemplateRepository interface {
	Create(ctx context.Context, template *models.Template) error
	GetByID(ctx context.Context, id string) (*models.Template, error)
	List(ctx context.Context, filter models.TemplateFilter) ([]*models.Template, int64, error)
	Update(ctx context.Context, template *models.Template) error
	Delete(ctx context.Context, id string) error
}

// templateRepository implements TemplateRepository using PostgreSQL
type templateRepository struct {
	db *sql.DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *sql.DB) TemplateRepository {
	return &templateRepository{db: db}
}

// Create inserts a new template
func (r *templateRepository) Create(ctx context.Context, template *models.Template) error {
	query := `
		INSERT INTO templates (id, name, content)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, template.ID, template.Name, template.Content).
		Scan(&template.CreatedAt, &template.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	return nil
}

// GetByID retrieves a template by ID
func (r *templateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	query := `
		SELECT id, name, content, created_at, updated_at
		FROM templates
		WHERE id = $1`

	template := &models.Template{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&template.ID,
		&template.Name,
		&template.Content,
		&template.CreatedAt,
		&template.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("template with ID %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return template, nil
}

// List retrieves templates with pagination and filtering
func (r *templateRepository) List(ctx context.Context, filter models.TemplateFilter) ([]*models.Template, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	query := `
		SELECT id, name, content, created_at, updated_at
		FROM templates
		WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM templates WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.Search != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", argPos)
		countQuery += fmt.Sprintf(" AND name ILIKE $%d", argPos)
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}

	var totalCount int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count templates: %w", err)
	}

	offset := models.CalculateOffset(filter.Page, filter.PageSize)
	query += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	templates := []*models.Template{}
	for rows.Next() {
		template := &models.Template{}
		err := rows.Scan(
			&template.ID,
			&template.Name,
			&template.Content,
			&template.CreatedAt,
			&template.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, template)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating templates: %w", err)
	}

	return templates, totalCount, nil
}

// Update updates an existing template
func (r *templateRepository) Update(ctx context.Context, template *models.Template) error {
	query := `
		UPDATE templates
		SET name = $1, content = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, template.Name, template.Content, template.ID).
		Scan(&template.UpdatedAt)

	if err == sql.ErrNoRows {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("template with ID %s not found", template.ID))
	}
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	return nil
}

// Delete removes a template
func (r *templateRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM templates WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("template with ID %s not found", id))
	}

	return nil
}
