package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/models"
)

func newTestProductService(alerts *recordingPublisher) (ProductService, *mockProductRepository) {
	repo := newMockProductRepository()
	if alerts == nil {
		return NewProductService(repo, nil, zap.NewNop()), repo
	}
	return NewProductService(repo, alerts, zap.NewNop()), repo
}

func validProductRequest() *CreateProductRequest {
	return &CreateProductRequest{
		StoreID:       testStore,
		Name:          "Espresso Beans",
		SKU:           " esp-001 ",
		Price:         ptr(24.90),
		StockQuantity: ptr(12),
		Category:      "coffee",
	}
}

func TestProductService_Create(t *testing.T) {
	svc, _ := newTestProductService(nil)

	product, err := svc.Create(context.Background(), validProductRequest())
	require.NoError(t, err)

	assert.Equal(t, "ESP-001", product.SKU())
	assert.Equal(t, models.ProductStatusActive, product.Status())
	assert.Equal(t, int64(1), product.Version())
	assert.False(t, product.IsLowStock())
}

func TestProductService_Create_ZeroStockStartsOutOfStock(t *testing.T) {
	svc, _ := newTestProductService(nil)

	req := validProductRequest()
	req.StockQuantity = ptr(0)

	product, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusOutOfStock, product.Status())
}

func TestProductService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CreateProductRequest)
		field  string
	}{
		{"missing store", func(r *CreateProductRequest) { r.StoreID = "" }, "store_id"},
		{"missing name", func(r *CreateProductRequest) { r.Name = "" }, "name"},
		{"missing sku", func(r *CreateProductRequest) { r.SKU = "  " }, "sku"},
		{"missing price", func(r *CreateProductRequest) { r.Price = nil }, "price"},
		{"zero price", func(r *CreateProductRequest) { r.Price = ptr(0.0) }, "price"},
		{"missing stock", func(r *CreateProductRequest) { r.StockQuantity = nil }, "stock_quantity"},
		{"negative stock", func(r *CreateProductRequest) { r.StockQuantity = ptr(-1) }, "stock_quantity"},
		{"negative min stock", func(r *CreateProductRequest) { r.MinStock = ptr(-3) }, "min_stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestProductService(nil)
			req := validProductRequest()
			tt.mutate(req)

			_, err := svc.Create(context.Background(), req)

			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestProductService_Create_DuplicateSKU(t *testing.T) {
	svc, _ := newTestProductService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, validProductRequest())
	require.NoError(t, err)

	dup := validProductRequest()
	dup.SKU = "Esp-001"
	_, err = svc.Create(ctx, dup)
	assert.True(t, errors.Is(err, models.ErrConflict))
}

func TestProductService_Update_StockDrivesStatus(t *testing.T) {
	svc, _ := newTestProductService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validProductRequest())
	require.NoError(t, err)

	emptied, err := svc.Update(ctx, created.ID(), &UpdateProductRequest{StoreID: testStore, StockQuantity: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusOutOfStock, emptied.Status())

	restocked, err := svc.Update(ctx, created.ID(), &UpdateProductRequest{StoreID: testStore, StockQuantity: ptr(4)})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusActive, restocked.Status())
	assert.Equal(t, int64(3), restocked.Version())

	inactive, err := svc.Update(ctx, created.ID(), &UpdateProductRequest{
		StoreID:       testStore,
		Status:        ptr("inactive"),
		StockQuantity: ptr(9),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusInactive, inactive.Status(), "positive stock leaves a manual status alone")

	zeroed, err := svc.Update(ctx, created.ID(), &UpdateProductRequest{
		StoreID:       testStore,
		Status:        ptr("active"),
		StockQuantity: ptr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusOutOfStock, zeroed.Status(), "zero stock wins over a requested status")
}

func TestProductService_Update_SKU(t *testing.T) {
	svc, _ := newTestProductService(nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, validProductRequest())
	require.NoError(t, err)

	req := validProductRequest()
	req.SKU = "ESP-002"
	second, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Update(ctx, second.ID(), &UpdateProductRequest{StoreID: testStore, SKU: ptr("esp-001")})
	assert.True(t, errors.Is(err, models.ErrConflict))

	updated, err := svc.Update(ctx, first.ID(), &UpdateProductRequest{StoreID: testStore, SKU: ptr("esp-001")})
	require.NoError(t, err)
	assert.Equal(t, "ESP-001", updated.SKU())
}

func TestProductService_Update_Missing(t *testing.T) {
	svc, _ := newTestProductService(nil)

	_, err := svc.Update(context.Background(), "missing", &UpdateProductRequest{StoreID: testStore, Name: ptr("x")})
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestProductService_StockAlerts(t *testing.T) {
	alerts := &recordingPublisher{}
	svc, _ := newTestProductService(alerts)
	ctx := context.Background()

	req := validProductRequest()
	req.MinStock = ptr(5)
	product, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 0, alerts.count(), "stock above threshold")

	_, err = svc.Update(ctx, product.ID(), &UpdateProductRequest{StoreID: testStore, StockQuantity: ptr(5)})
	require.NoError(t, err)
	require.Equal(t, 1, alerts.count())

	job := alerts.jobs[0]
	assert.Equal(t, product.ID(), job.ProductID)
	assert.Equal(t, testStore, job.TenantID)
	assert.Equal(t, 5, job.StockQuantity)
	assert.Equal(t, 5, job.MinStock)
}

func TestProductService_StockAlertPublishFailureIsNotReturned(t *testing.T) {
	alerts := &recordingPublisher{err: errBroker}
	svc, _ := newTestProductService(alerts)

	req := validProductRequest()
	req.StockQuantity = ptr(1)
	req.MinStock = ptr(2)

	product, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, product.IsLowStock())
}

func TestProductService_Delete(t *testing.T) {
	svc, repo := newTestProductService(nil)
	ctx := context.Background()

	product, err := svc.Create(ctx, validProductRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, product.ID(), testStore))
	assert.NotNil(t, repo.products[product.ID()].DeletedAt)

	_, err = svc.GetByID(ctx, product.ID(), testStore)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	assert.True(t, errors.Is(svc.Delete(ctx, product.ID(), testStore), models.ErrNotFound))
}

func TestProductService_Listings(t *testing.T) {
	svc, _ := newTestProductService(nil)
	ctx := context.Background()

	seed := []struct {
		sku      string
		category string
		stock    int
		min      *int
		featured bool
	}{
		{"A-1", "coffee", 10, ptr(2), true},
		{"A-2", "coffee", 1, ptr(3), false},
		{"B-1", "tea", 0, ptr(0), true},
		{"B-2", "tea", 7, nil, false},
	}
	for _, s := range seed {
		req := validProductRequest()
		req.SKU = s.sku
		req.Category = s.category
		req.StockQuantity = ptr(s.stock)
		req.MinStock = s.min
		req.Featured = s.featured
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, testStore, models.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Pagination.TotalCount)

	tea, err := svc.ListByCategory(ctx, testStore, "tea", models.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Len(t, tea.Data, 2)

	featured, err := svc.ListFeatured(ctx, testStore, 0)
	require.NoError(t, err)
	assert.Len(t, featured, 2)

	low, err := svc.ListLowStock(ctx, testStore)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "B-1", low[0].SKU(), "a zero threshold still counts")
	assert.Equal(t, "A-2", low[1].SKU())

	_, err = svc.List(ctx, "", models.NewPageRequest(1, 10))
	var verr *models.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestProductService_UpdateImages(t *testing.T) {
	svc, _ := newTestProductService(nil)
	ctx := context.Background()

	product, err := svc.Create(ctx, validProductRequest())
	require.NoError(t, err)

	withImage, err := svc.UpdateImage(ctx, product.ID(), testStore, "/uploads/images/a.png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/images/a.png", withImage.ImageURL())

	withGallery, err := svc.UpdateImages(ctx, product.ID(), testStore, []string{"/uploads/images/b.jpg", "/uploads/images/c.webp"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/images/b.jpg", "/uploads/images/c.webp"}, withGallery.Images())
	assert.Equal(t, "/uploads/images/a.png", withGallery.ImageURL())
	assert.Equal(t, int64(3), withGallery.Version())
}
