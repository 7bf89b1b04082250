package worker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/models"
	"github.com/Raymond9734/storefront-backend/internal/observability/metrics"
)

// ProductFinder loads a live product by id and store
type ProductFinder interface {
	FindByID(ctx context.Context, id, storeID string) (*models.Product, error)
}

// Outcomes reported by AlertProcessor.Process
const (
	OutcomeNotified = "notified"
	OutcomeGone     = "gone"
	OutcomeRestored = "restocked"
)

// AlertProcessor processes stock alert jobs from the queue
type AlertProcessor struct {
	products ProductFinder
	notifier Notifier
	logger   *zap.Logger
}

// NewAlertProcessor creates a new alert processor
func NewAlertProcessor(products ProductFinder, notifier Notifier, logger *zap.Logger) *AlertProcessor {
	return &AlertProcessor{
		products: products,
		notifier: notifier,
		logger:   logger,
	}
}

// Handle adapts Process to queue.AlertHandler
func (p *AlertProcessor) Handle(ctx context.Context, job *models.StockAlertJob) error {
	_, err := p.Process(ctx, job)
	return err
}

// Process re-reads the product so an alert that went stale while queued
// (product deleted or restocked) is dropped instead of delivered.
func (p *AlertProcessor) Process(ctx context.Context, job *models.StockAlertJob) (string, error) {
	logger := p.logger.With(
		zap.String("product_id", job.ProductID),
		zap.String("store_id", job.TenantID),
	)

	product, err := p.products.FindByID(ctx, job.ProductID, job.TenantID)
	if errors.Is(err, models.ErrNotFound) {
		logger.Info("dropping alert for missing product")
		metrics.ObserveStockAlert(OutcomeGone, nil)
		return OutcomeGone, nil
	}
	if err != nil {
		logger.Error("failed to fetch product", zap.Error(err))
		metrics.ObserveStockAlert(OutcomeNotified, err)
		return "", fmt.Errorf("failed to fetch product: %w", err)
	}

	if !product.IsLowStock() {
		logger.Info("dropping alert, product no longer low on stock",
			zap.Int("stock_quantity", product.StockQuantity()),
		)
		metrics.ObserveStockAlert(OutcomeRestored, nil)
		return OutcomeRestored, nil
	}

	if err := p.notifier.Notify(ctx, product); err != nil {
		logger.Error("failed to deliver stock alert", zap.Error(err))
		metrics.ObserveStockAlert(OutcomeNotified, err)
		return "", fmt.Errorf("failed to notify: %w", err)
	}

	metrics.ObserveStockAlert(OutcomeNotified, nil)
	return OutcomeNotified, nil
}
