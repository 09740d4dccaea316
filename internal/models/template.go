package models

import "time"

// Template is a reusable message body referenced by campaigns. Content may
// include {placeholder} markers resolved against contact fields before send.
type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateFilter holds filtering options for listing templates
type TemplateFilter struct {
	Search   string
	Page     int
	PageSize int
}

// Validate performs validation on template data
func (t *Template) Validate() error {
	if t.Name == "" {
		return ErrValidationWithMsg("name is required")
	}
	if t.Content == "" {
		return ErrValidationWithMsg("content is required")
	}
	return nil
}
