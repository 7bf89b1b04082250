package queue

import (
	"context"

	"github.com/Raymond9734/storefront-backend/internal/models"
)

// Client defines the interface for queue operations
type Client interface {
	// Publish sends a stock alert job to the queue
	Publish(ctx context.Context, job *models.StockAlertJob) error

	// Consume receives jobs from the queue and processes them with the handler.
	// concurrency controls how many jobs can be processed simultaneously.
	Consume(ctx context.Context, handler AlertHandler, concurrency int) error

	// Close closes the queue connection
	Close() error

	// Health checks if the queue is healthy
	Health(ctx context.Context) error
}

// AlertHandler is a function that processes a stock alert job
type AlertHandler func(ctx context.Context, job *models.StockAlertJob) error

// Publisher is the producer side of Client
type Publisher interface {
	Publish(ctx context.Context, job *models.StockAlertJob) error
}
