package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/models"
)

// Notifier delivers a confirmed low-stock alert to whoever restocks
type Notifier interface {
	Notify(ctx context.Context, product *models.Product) error
}

// logNotifier records alerts in the structured log
type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that writes alerts to the log
func NewLogNotifier(logger *zap.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(ctx context.Context, product *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	minStock := 0
	if m := product.MinStock(); m != nil {
		minStock = *m
	}

	n.logger.Warn("product low on stock",
		zap.String("product_id", product.ID()),
		zap.String("store_id", product.TenantID()),
		zap.String("sku", product.SKU()),
		zap.String("name", product.Name()),
		zap.Int("stock_quantity", product.StockQuantity()),
		zap.Int("min_stock", minStock),
		zap.String("status", string(product.Status())),
	)
	return nil
}
