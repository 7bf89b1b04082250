package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/models"
	"github.com/Raymond9734/storefront-backend/internal/observability/metrics"
	"github.com/Raymond9734/storefront-backend/internal/queue"
	"github.com/Raymond9734/storefront-backend/internal/repository"
)

// DefaultFeaturedLimit is used when ListFeatured gets no positive limit
const DefaultFeaturedLimit = 10

// ProductService handles product business logic
type ProductService interface {
	Create(ctx context.Context, req *CreateProductRequest) (*models.Product, error)
	GetByID(ctx context.Context, id, storeID string) (*models.Product, error)
	List(ctx context.Context, storeID string, page models.PageRequest) (*ProductListResult, error)
	ListByCategory(ctx context.Context, storeID, category string, page models.PageRequest) (*ProductListResult, error)
	ListFeatured(ctx context.Context, storeID string, limit int) ([]*models.Product, error)
	ListLowStock(ctx context.Context, storeID string) ([]*models.Product, error)
	Update(ctx context.Context, id string, req *UpdateProductRequest) (*models.Product, error)
	Delete(ctx context.Context, id, storeID string) error
	UpdateImage(ctx context.Context, id, storeID, imageURL string) (*models.Product, error)
	UpdateImages(ctx context.Context, id, storeID string, imageURLs []string) (*models.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	alerts      queue.Publisher
	logger      *zap.Logger
}

// NewProductService creates a new product service. alerts may be nil, in
// which case low-stock alerts are not published.
func NewProductService(
	productRepo repository.ProductRepository,
	alerts queue.Publisher,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		alerts:      alerts,
		logger:      logger,
	}
}

// Create creates a new product. A product created without stock starts
// out_of_stock.
func (s *productService) Create(ctx context.Context, req *CreateProductRequest) (product *models.Product, err error) {
	defer func() { metrics.ObserveMutation("product", "create", err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureSKUAvailable(ctx, req.SKU, req.StoreID, ""); err != nil {
		return nil, err
	}

	status := models.ProductStatusActive
	if *req.StockQuantity == 0 {
		status = models.ProductStatusOutOfStock
	}

	product, err = models.NewProduct(models.ProductParams{
		ID:            uuid.NewString(),
		TenantID:      req.StoreID,
		Name:          req.Name,
		Description:   req.Description,
		SKU:           req.SKU,
		Price:         *req.Price,
		StockQuantity: *req.StockQuantity,
		MinStock:      req.MinStock,
		Category:      req.Category,
		Status:        status,
		Featured:      req.Featured,
	})
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error("failed to create product",
			zap.String("store_id", req.StoreID),
			zap.String("sku", product.SKU()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID()),
		zap.String("store_id", product.TenantID()),
		zap.String("sku", product.SKU()),
	)

	s.publishIfLow(ctx, product)
	return product, nil
}

// GetByID retrieves a product by ID
func (s *productService) GetByID(ctx context.Context, id, storeID string) (*models.Product, error) {
	if err := required("store_id", storeID); err != nil {
		return nil, err
	}
	return s.productRepo.FindByID(ctx, id, storeID)
}

// List retrieves products with pagination
func (s *productService) List(ctx context.Context, storeID string, page models.PageRequest) (*ProductListResult, error) {
	if err := required("store_id", storeID); err != nil {
		return nil, err
	}

	products, total, err := s.productRepo.FindAll(ctx, storeID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &ProductListResult{
		Data:       NewProductResponses(products),
		Pagination: models.NewPaginationResult(page, total),
	}, nil
}

// ListByCategory retrieves one category's products with pagination
func (s *productService) ListByCategory(ctx context.Context, storeID, category string, page models.PageRequest) (*ProductListResult, error) {
	if err := required("store_id", storeID); err != nil {
		return nil, err
	}
	if err := required("category", category); err != nil {
		return nil, err
	}

	products, total, err := s.productRepo.FindByCategory(ctx, storeID, category, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}

	return &ProductListResult{
		Data:       NewProductResponses(products),
		Pagination: models.NewPaginationResult(page, total),
	}, nil
}

// ListFeatured retrieves up to limit featured products
func (s *productService) ListFeatured(ctx context.Context, storeID string, limit int) ([]*models.Product, error) {
	if err := required("store_id", storeID); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = DefaultFeaturedLimit
	}
	if limit > models.MaxPageSize {
		limit = models.MaxPageSize
	}

	products, err := s.productRepo.FindFeatured(ctx, storeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}
	return products, nil
}

// ListLowStock retrieves products at or below their minimum stock
func (s *productService) ListLowStock(ctx context.Context, storeID string) ([]*models.Product, error) {
	if err := required("store_id", storeID); err != nil {
		return nil, err
	}

	products, err := s.productRepo.FindLowStock(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, nil
}

// Update applies the present fields of req through the product's setters
func (s *productService) Update(ctx context.Context, id string, req *UpdateProductRequest) (product *models.Product, err error) {
	defer func() { metrics.ObserveMutation("product", "update", err) }()

	if err := required("store_id", req.StoreID); err != nil {
		return nil, err
	}

	product, err = s.productRepo.FindByID(ctx, id, req.StoreID)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, product, req); err != nil {
		return nil, err
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) apply(ctx context.Context, product *models.Product, req *UpdateProductRequest) error {
	if req.Name != nil {
		if err := product.SetName(*req.Name); err != nil {
			return err
		}
	}
	if req.Description != nil {
		product.SetDescription(*req.Description)
	}
	if req.SKU != nil {
		if err := s.ensureSKUAvailable(ctx, *req.SKU, product.TenantID(), product.ID()); err != nil {
			return err
		}
		if err := product.SetSKU(*req.SKU); err != nil {
			return err
		}
	}
	if req.Price != nil {
		if err := product.SetPrice(*req.Price); err != nil {
			return err
		}
	}
	// Status before stock, so a zero quantity in the same request still wins.
	if req.Status != nil {
		status, err := models.ParseProductStatus(*req.Status)
		if err != nil {
			return err
		}
		if err := product.SetStatus(status); err != nil {
			return err
		}
	}
	if req.StockQuantity != nil {
		if err := product.SetStockQuantity(*req.StockQuantity); err != nil {
			return err
		}
	}
	if req.MinStock != nil {
		if err := product.SetMinStock(*req.MinStock); err != nil {
			return err
		}
	}
	if req.Category != nil {
		product.SetCategory(*req.Category)
	}
	if req.Featured != nil {
		product.SetFeatured(*req.Featured)
	}
	return nil
}

// Delete soft-deletes a product
func (s *productService) Delete(ctx context.Context, id, storeID string) (err error) {
	defer func() { metrics.ObserveMutation("product", "delete", err) }()

	if err := required("store_id", storeID); err != nil {
		return err
	}

	product, err := s.productRepo.FindByID(ctx, id, storeID)
	if err != nil {
		return err
	}

	product.SoftDelete()

	if err := s.productRepo.SoftDelete(ctx, product); err != nil {
		s.logger.Error("failed to delete product",
			zap.String("product_id", id),
			zap.Error(err),
		)
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info("product deleted", zap.String("product_id", id))

	return nil
}

// UpdateImage sets the primary image after an upload
func (s *productService) UpdateImage(ctx context.Context, id, storeID, imageURL string) (product *models.Product, err error) {
	defer func() { metrics.ObserveMutation("product", "update_image", err) }()

	if err := required("store_id", storeID); err != nil {
		return nil, err
	}

	product, err = s.productRepo.FindByID(ctx, id, storeID)
	if err != nil {
		return nil, err
	}

	product.SetImageURL(imageURL)
	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateImages replaces the gallery after an upload
func (s *productService) UpdateImages(ctx context.Context, id, storeID string, imageURLs []string) (product *models.Product, err error) {
	defer func() { metrics.ObserveMutation("product", "update_images", err) }()

	if err := required("store_id", storeID); err != nil {
		return nil, err
	}

	product, err = s.productRepo.FindByID(ctx, id, storeID)
	if err != nil {
		return nil, err
	}

	product.SetImages(imageURLs)
	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) save(ctx context.Context, product *models.Product) error {
	if err := s.productRepo.Update(ctx, product); err != nil {
		s.logger.Error("failed to update product",
			zap.String("product_id", product.ID()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info("product updated",
		zap.String("product_id", product.ID()),
		zap.Int64("version", product.Version()),
		zap.String("status", string(product.Status())),
	)

	s.publishIfLow(ctx, product)
	return nil
}

// publishIfLow queues a stock alert. Failures are logged, never returned.
func (s *productService) publishIfLow(ctx context.Context, product *models.Product) {
	if s.alerts == nil {
		return
	}
	job, ok := models.NewStockAlertJob(product)
	if !ok {
		return
	}

	err := s.alerts.Publish(ctx, job)
	metrics.ObserveStockAlert("publish", err)
	if err != nil {
		s.logger.Warn("failed to publish stock alert",
			zap.String("product_id", product.ID()),
			zap.Error(err),
		)
	}
}

// ensureSKUAvailable fails with CONFLICT when another live product in the
// store already uses sku, compared case-insensitively. selfID is excluded.
func (s *productService) ensureSKUAvailable(ctx context.Context, sku, storeID, selfID string) error {
	normalized, err := models.NormalizeSKU(sku)
	if err != nil {
		return err
	}

	existing, err := s.productRepo.FindBySKU(ctx, normalized, storeID)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check sku: %w", err)
	}
	if existing.ID() == selfID {
		return nil
	}
	return models.ErrConflictWithMsg(fmt.Sprintf("sku %s already exists for this store", normalized))
}
