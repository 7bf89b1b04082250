package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Raymond9734/storefront-backend/internal/models"
)

// ProductRepository defines the interface for product data access. Every
// lookup is scoped by store and ignores soft-deleted rows.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id, storeID string) (*models.Product, error)
	FindBySKU(ctx context.Context, sku, storeID string) (*models.Product, error)
	FindAll(ctx context.Context, storeID string, page models.PageRequest) ([]*models.Product, int64, error)
	FindByCategory(ctx context.Context, storeID, category string, page models.PageRequest) ([]*models.Product, int64, error)
	FindFeatured(ctx context.Context, storeID string, limit int) ([]*models.Product, error)
	FindLowStock(ctx context.Context, storeID string) ([]*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	SoftDelete(ctx context.Context, product *models.Product) error
}

// productRepository implements ProductRepository using PostgreSQL
type productRepository struct {
	db queryer
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, store_id, name, description, sku, price, stock_quantity, min_stock,
	image_url, images, category, status, featured, version, created_at, updated_at, deleted_at`

// Create inserts a new product
func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	s := product.Snapshot()
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.db.ExecContext(
		ctx,
		query,
		s.ID,
		s.TenantID,
		s.Name,
		s.Description,
		s.SKU,
		s.Price,
		s.StockQuantity,
		nullInt(s.MinStock),
		s.ImageURL,
		pq.Array(s.Images),
		s.Category,
		s.Status,
		s.Featured,
		s.Version,
		s.CreatedAt,
		s.UpdatedAt,
		s.DeletedAt,
	)
	if isUniqueViolation(err) {
		return models.ErrConflictWithMsg("sku already exists for this store")
	}
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id, storeID string) (*models.Product, error) {
	if !validID(id) {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("product with ID %s not found", id))
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND store_id = $2 AND deleted_at IS NULL`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id, storeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("product with ID %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// FindBySKU retrieves a product by SKU, case-insensitively
func (r *productRepository) FindBySKU(ctx context.Context, sku, storeID string) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE upper(sku) = upper($1) AND store_id = $2 AND deleted_at IS NULL`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, sku, storeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("product with SKU %s not found", sku))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product by sku: %w", err)
	}

	return product, nil
}

// FindAll retrieves a page of products, newest first, with the total count
func (r *productRepository) FindAll(ctx context.Context, storeID string, page models.PageRequest) ([]*models.Product, int64, error) {
	return r.findPage(ctx, "store_id = $1 AND deleted_at IS NULL", []interface{}{storeID}, page)
}

// FindByCategory retrieves a page of products in one category
func (r *productRepository) FindByCategory(ctx context.Context, storeID, category string, page models.PageRequest) ([]*models.Product, int64, error) {
	return r.findPage(ctx, "store_id = $1 AND category = $2 AND deleted_at IS NULL", []interface{}{storeID, category}, page)
}

func (r *productRepository) findPage(ctx context.Context, where string, args []interface{}, page models.PageRequest) ([]*models.Product, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM products WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	argPos := len(args) + 1
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, productColumns, where, argPos, argPos+1)
	args = append(args, page.Limit, page.Offset())

	products, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindFeatured retrieves the newest featured products
func (r *productRepository) FindFeatured(ctx context.Context, storeID string, limit int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE store_id = $1 AND featured AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2`

	return r.query(ctx, query, storeID, limit)
}

// FindLowStock retrieves products at or below their minimum stock, lowest first
func (r *productRepository) FindLowStock(ctx context.Context, storeID string) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE store_id = $1 AND deleted_at IS NULL
			AND min_stock IS NOT NULL AND stock_quantity <= min_stock
		ORDER BY stock_quantity ASC`

	return r.query(ctx, query, storeID)
}

func (r *productRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Update writes the product if its version still matches the stored row
func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	s := product.Snapshot()
	if !validID(s.ID) {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("product with ID %s not found", s.ID))
	}

	query := `
		UPDATE products
		SET name = $1, description = $2, sku = $3, price = $4, stock_quantity = $5,
			min_stock = $6, image_url = $7, images = $8, category = $9, status = $10,
			featured = $11, updated_at = $12, version = version + 1
		WHERE id = $13 AND store_id = $14 AND deleted_at IS NULL AND version = $15
		RETURNING version`

	var version int64
	err := r.db.QueryRowContext(
		ctx,
		query,
		s.Name,
		s.Description,
		s.SKU,
		s.Price,
		s.StockQuantity,
		nullInt(s.MinStock),
		s.ImageURL,
		pq.Array(s.Images),
		s.Category,
		s.Status,
		s.Featured,
		s.UpdatedAt,
		s.ID,
		s.TenantID,
		s.Version,
	).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return r.staleOrMissing(ctx, s.ID, s.TenantID)
	}
	if isUniqueViolation(err) {
		return models.ErrConflictWithMsg("sku already exists for this store")
	}
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	product.SetPersistedVersion(version)
	return nil
}

// SoftDelete stamps deleted_at on the stored row from the product's state
func (r *productRepository) SoftDelete(ctx context.Context, product *models.Product) error {
	s := product.Snapshot()
	if !validID(s.ID) {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("product with ID %s not found", s.ID))
	}

	if s.DeletedAt == nil {
		return fmt.Errorf("product %s is not marked deleted", s.ID)
	}

	query := `
		UPDATE products
		SET deleted_at = $1, updated_at = $2, version = version + 1
		WHERE id = $3 AND store_id = $4 AND deleted_at IS NULL
		RETURNING version`

	var version int64
	err := r.db.QueryRowContext(ctx, query, s.DeletedAt, s.UpdatedAt, s.ID, s.TenantID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("product with ID %s not found", s.ID))
	}
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	product.SetPersistedVersion(version)
	return nil
}

func (r *productRepository) staleOrMissing(ctx context.Context, id, storeID string) error {
	found, err := exists(ctx, r.db,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1 AND store_id = $2 AND deleted_at IS NULL)`,
		id, storeID,
	)
	if err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if !found {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("product with ID %s not found", id))
	}
	return models.ErrConflictWithMsg("product was modified concurrently")
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var s models.ProductSnapshot
	var minStock sql.NullInt64
	var images pq.StringArray
	var deletedAt sql.NullTime
	err := row.Scan(
		&s.ID,
		&s.TenantID,
		&s.Name,
		&s.Description,
		&s.SKU,
		&s.Price,
		&s.StockQuantity,
		&minStock,
		&s.ImageURL,
		&images,
		&s.Category,
		&s.Status,
		&s.Featured,
		&s.Version,
		&s.CreatedAt,
		&s.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	if minStock.Valid {
		v := int(minStock.Int64)
		s.MinStock = &v
	}
	if images != nil {
		s.Images = []string(images)
	}
	if deletedAt.Valid {
		s.DeletedAt = &deletedAt.Time
	}
	return models.RestoreProduct(s), nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
