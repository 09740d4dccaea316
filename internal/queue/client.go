package queue

import (
	"context"

	"github.com/wacrm/whatsapp-crm-backend/internal/models"
)

// Client defines the interface for queue operations
type Client interface {
	// Publish sends a campaign launch job to the queue
	Publish(ctx context.Context, job *models.LaunchJob) error

	// Consume receives launch jobs from the queue and processes them with the
	// handler. concurrency controls how many campaigns may dispatch at once;
	// per-send pacing stays with the shared Pacer regardless.
	Consume(ctx context.Context, handler LaunchHandler, concurrency int) error

	// Close closes the queue connection
	Close() error

	// Health checks if the queue is healthy
	Health(ctx context.Context) error
}

// LaunchHandler is a function that processes a campaign launch job
type LaunchHandler func(ctx context.Context, job *models.LaunchJob) error
