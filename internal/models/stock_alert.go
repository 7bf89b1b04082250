package models

import "time"

// StockAlertJob is queued when a product ends an operation at or below its
// minimum stock.
type StockAlertJob struct {
	ProductID     string    `json:"product_id"`
	TenantID      string    `json:"store_id"`
	SKU           string    `json:"sku"`
	StockQuantity int       `json:"stock_quantity"`
	MinStock      int       `json:"min_stock"`
	RaisedAt      time.Time `json:"raised_at"`
}

// NewStockAlertJob builds a job from a low-stock product. The second return
// is false when the product is not low on stock.
func NewStockAlertJob(p *Product) (*StockAlertJob, bool) {
	if p == nil || p.IsDeleted() || !p.IsLowStock() {
		return nil, false
	}
	return &StockAlertJob{
		ProductID:     p.ID(),
		TenantID:      p.TenantID(),
		SKU:           p.SKU(),
		StockQuantity: p.StockQuantity(),
		MinStock:      *p.MinStock(),
		RaisedAt:      nowFunc(),
	}, true
}
