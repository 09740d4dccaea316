package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/wacrm/whatsapp-crm-backend/internal/models"
	"github.com/wacrm/whatsapp-crm-backend/internal/repository"
)

// TemplateService handles reusable message templates and placeholder
// rendering
type TemplateService interface {
	Create(ctx context.Context, name, content string) (*models.Template, error)
	GetByID(ctx context.Context, id string) (*models.Template, error)
	List(ctx context.Context, filter models.TemplateFilter) ([]*models.Template, models.PaginationResult, error)
	Update(ctx context.Context, id, name, content string) (*models.Template, error)
	Delete(ctx context.Context, id string) error

	// Render replaces {placeholder} markers with contact fields. Unknown
	// placeholders render as empty strings.
	Render(content string, contact *models.Contact) string

	// ValidateContent rejects content referencing unknown placeholders.
	ValidateContent(content string) error
}

type templateService struct {
	templateRepo       repository.TemplateRepository
	placeholderPattern *regexp.Regexp
	logger             *slog.Logger
}

// Placeholders resolvable against a contact
var validPlaceholders = map[string]bool{
	"name":      true,
	"push_name": true,
	"phone":     true,
}

// NewTemplateService creates a new template service
func NewTemplateService(templateRepo repository.TemplateRepository, logger *slog.Logger) TemplateService {
	return &templateService{
		templateRepo:       templateRepo,
		placeholderPattern: regexp.MustCompile(`\{([a-z_]+)\}`),
		logger:             logger,
	}
}

// Create validates and persists a new template
func (s *templateService) Create(ctx context.Context, name, content string) (*models.Template, error) {
	template := &models.Template{
		ID:      uuid.NewString(),
		Name:    name,
		Content: content,
	}

	if err := template.Validate(); err != nil {
		return nil, err
	}
	if err := s.ValidateContent(content); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Create(ctx, template); err != nil {
		s.logger.Error("failed to create template",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	s.logger.Info("template created",
		slog.String("template_id", template.ID),
		slog.String("name", template.Name),
	)

	return template, nil
}

// GetByID retrieves a template by ID
func (s *templateService) GetByID(ctx context.Context, id string) (*models.Template, error) {
	return s.templateRepo.GetByID(ctx, id)
}

// List retrieves templates with pagination
func (s *templateService) List(ctx context.Context, filter models.TemplateFilter) ([]*models.Template, models.PaginationResult, error) {
	templates, totalCount, err := s.templateRepo.List(ctx, filter)
	if err != nil {
		return nil, models.PaginationResult{}, fmt.Errorf("failed to list templates: %w", err)
	}

	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)
	pagination := models.NewPaginationResult(filter.Page, filter.PageSize, totalCount)

	return templates, pagination, nil
}

// Update validates and persists template changes
func (s *templateService) Update(ctx context.Context, id, name, content string) (*models.Template, error) {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	template.Name = name
	template.Content = content

	if err := template.Validate(); err != nil {
		return nil, err
	}
	if err := s.ValidateContent(content); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}

	s.logger.Info("template updated", slog.String("template_id", id))

	return template, nil
}

// Delete removes a template
func (s *templateService) Delete(ctx context.Context, id string) error {
	if err := s.templateRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("template deleted", slog.String("template_id", id))
	return nil
}

// Render replaces placeholders in content with contact data.
// Missing fields render as empty strings.
func (s *templateService) Render(content string, contact *models.Contact) string {
	if contact == nil {
		return content
	}

	fieldMap := map[string]string{
		"name":      contact.Name,
		"push_name": contact.PushName,
		"phone":     contact.PhoneNumber,
	}

	return s.placeholderPattern.ReplaceAllStringFunc(content, func(match string) string {
		fieldName := strings.Trim(match, "{}")
		if value, exists := fieldMap[fieldName]; exists {
			return value
		}
		return ""
	})
}

// ValidateContent checks that all placeholders in content are recognized
func (s *templateService) ValidateContent(content string) error {
	if content == "" {
		return models.ErrValidationWithMsg("content cannot be empty")
	}

	var invalid []string
	for _, match := range s.placeholderPattern.FindAllStringSubmatch(content, -1) {
		if len(match) > 1 && !validPlaceholders[match[1]] {
			invalid = append(invalid, match[1])
		}
	}

	if len(invalid) > 0 {
		return models.ErrValidationWithMsg(fmt.Sprintf(
			"invalid placeholders: %s. Valid placeholders are: name, push_name, phone",
			strings.Join(invalid, ", "),
		))
	}

	return nil
}
