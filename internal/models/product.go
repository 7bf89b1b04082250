package models

import (
	"fmt"
	"strings"
	"time"
)

// ProductStatus is the closed set of product states
type ProductStatus string

// Product status constants
const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusInactive   ProductStatus = "inactive"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
)

// Valid reports whether s is a known product status
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusOutOfStock:
		return true
	default:
		return false
	}
}

// ParseProductStatus converts user input into a ProductStatus
func ParseProductStatus(s string) (ProductStatus, error) {
	status := ProductStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", NewValidationError("status", fmt.Sprintf("invalid status: %s", s))
	}
	return status, nil
}

// Product is a store's catalog item.
//
// Stock drives status: a quantity of zero forces out_of_stock, and a
// positive quantity lifts out_of_stock back to active. Other status values
// are left alone by stock changes.
type Product struct {
	id            string
	tenantID      string
	name          string
	description   string
	sku           string
	price         float64
	stockQuantity int
	minStock      *int
	imageURL      string
	images        []string
	category      string
	status        ProductStatus
	featured      bool
	version       int64
	createdAt     time.Time
	updatedAt     time.Time
	deletedAt     *time.Time
}

// ProductParams holds the inputs for NewProduct
type ProductParams struct {
	ID            string
	TenantID      string
	Name          string
	Description   string
	SKU           string
	Price         float64
	StockQuantity int
	MinStock      *int
	ImageURL      string
	Images        []string
	Category      string
	Status        ProductStatus
	Featured      bool
	CreatedAt     time.Time
}

// NewProduct builds a product from fresh input
func NewProduct(p ProductParams) (*Product, error) {
	id, err := ValidateID("id", p.ID)
	if err != nil {
		return nil, err
	}
	tenantID, err := ValidateID("store_id", p.TenantID)
	if err != nil {
		return nil, err
	}
	if err := ValidatePrice(p.Price); err != nil {
		return nil, err
	}
	if err := ValidateStockQuantity(p.StockQuantity); err != nil {
		return nil, err
	}
	if p.MinStock != nil {
		if err := ValidateMinStock(*p.MinStock); err != nil {
			return nil, err
		}
	}
	if !p.Status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("invalid status: %s", p.Status))
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = nowFunc()
	}

	return &Product{
		id:            id,
		tenantID:      tenantID,
		name:          strings.TrimSpace(p.Name),
		description:   strings.TrimSpace(p.Description),
		sku:           strings.ToUpper(strings.TrimSpace(p.SKU)),
		price:         p.Price,
		stockQuantity: p.StockQuantity,
		minStock:      copyInt(p.MinStock),
		imageURL:      strings.TrimSpace(p.ImageURL),
		images:        copyStrings(p.Images),
		category:      strings.TrimSpace(p.Category),
		status:        p.Status,
		featured:      p.Featured,
		version:       1,
		createdAt:     createdAt,
		updatedAt:     createdAt,
	}, nil
}

// ProductSnapshot is the persisted form of a product
type ProductSnapshot struct {
	ID            string        `json:"id"`
	TenantID      string        `json:"store_id"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	SKU           string        `json:"sku"`
	Price         float64       `json:"price"`
	StockQuantity int           `json:"stock_quantity"`
	MinStock      *int          `json:"min_stock,omitempty"`
	ImageURL      string        `json:"image_url,omitempty"`
	Images        []string      `json:"images,omitempty"`
	Category      string        `json:"category,omitempty"`
	Status        ProductStatus `json:"status"`
	Featured      bool          `json:"featured"`
	Version       int64         `json:"version"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	DeletedAt     *time.Time    `json:"deleted_at,omitempty"`
}

// RestoreProduct rehydrates a stored product without re-validating it
func RestoreProduct(s ProductSnapshot) *Product {
	return &Product{
		id:            s.ID,
		tenantID:      s.TenantID,
		name:          s.Name,
		description:   s.Description,
		sku:           s.SKU,
		price:         s.Price,
		stockQuantity: s.StockQuantity,
		minStock:      copyInt(s.MinStock),
		imageURL:      s.ImageURL,
		images:        copyStrings(s.Images),
		category:      s.Category,
		status:        s.Status,
		featured:      s.Featured,
		version:       s.Version,
		createdAt:     s.CreatedAt,
		updatedAt:     s.UpdatedAt,
		deletedAt:     copyTime(s.DeletedAt),
	}
}

// Snapshot returns the product's current state
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:            p.id,
		TenantID:      p.tenantID,
		Name:          p.name,
		Description:   p.description,
		SKU:           p.sku,
		Price:         p.price,
		StockQuantity: p.stockQuantity,
		MinStock:      copyInt(p.minStock),
		ImageURL:      p.imageURL,
		Images:        copyStrings(p.images),
		Category:      p.category,
		Status:        p.status,
		Featured:      p.featured,
		Version:       p.version,
		CreatedAt:     p.createdAt,
		UpdatedAt:     p.updatedAt,
		DeletedAt:     copyTime(p.deletedAt),
	}
}

func (p *Product) ID() string            { return p.id }
func (p *Product) TenantID() string      { return p.tenantID }
func (p *Product) Name() string          { return p.name }
func (p *Product) Description() string   { return p.description }
func (p *Product) SKU() string           { return p.sku }
func (p *Product) Price() float64        { return p.price }
func (p *Product) StockQuantity() int    { return p.stockQuantity }
func (p *Product) MinStock() *int        { return copyInt(p.minStock) }
func (p *Product) ImageURL() string      { return p.imageURL }
func (p *Product) Images() []string      { return copyStrings(p.images) }
func (p *Product) Category() string      { return p.category }
func (p *Product) Status() ProductStatus { return p.status }
func (p *Product) Featured() bool        { return p.featured }
func (p *Product) Version() int64        { return p.version }
func (p *Product) CreatedAt() time.Time  { return p.createdAt }
func (p *Product) UpdatedAt() time.Time  { return p.updatedAt }
func (p *Product) DeletedAt() *time.Time { return copyTime(p.deletedAt) }
func (p *Product) IsDeleted() bool       { return p.deletedAt != nil }

// SetName replaces the name with its trimmed form
func (p *Product) SetName(name string) error {
	value, err := ValidateRequiredText("name", name)
	if err != nil {
		return err
	}
	p.name = value
	p.updatedAt = touch(p.updatedAt)
	return nil
}

// SetDescription stores the trimmed description
func (p *Product) SetDescription(description string) {
	p.description = strings.TrimSpace(description)
	p.updatedAt = touch(p.updatedAt)
}

// SetSKU stores the trimmed, uppercased SKU. Uniqueness is the service's job.
func (p *Product) SetSKU(sku string) error {
	value, err := NormalizeSKU(sku)
	if err != nil {
		return err
	}
	p.sku = value
	p.updatedAt = touch(p.updatedAt)
	return nil
}

// SetPrice changes the unit price
func (p *Product) SetPrice(price float64) error {
	if err := ValidatePrice(price); err != nil {
		return err
	}
	p.price = price
	p.updatedAt = touch(p.updatedAt)
	return nil
}

// SetStockQuantity changes the quantity on hand and re-derives status
func (p *Product) SetStockQuantity(quantity int) error {
	if err := ValidateStockQuantity(quantity); err != nil {
		return err
	}
	p.stockQuantity = quantity

	if quantity == 0 {
		p.status = ProductStatusOutOfStock
	} else if p.status == ProductStatusOutOfStock {
		p.status = ProductStatusActive
	}

	p.updatedAt = touch(p.updatedAt)
	return nil
}

// SetMinStock sets the low-stock threshold
func (p *Product) SetMinStock(minStock int) error {
	if err := ValidateMinStock(minStock); err != nil {
		return err
	}
	p.minStock = &minStock
	p.updatedAt = touch(p.updatedAt)
	return nil
}

// SetImageURL stores the primary image location
func (p *Product) SetImageURL(imageURL string) {
	p.imageURL = strings.TrimSpace(imageURL)
	p.updatedAt = touch(p.updatedAt)
}

// SetImages replaces the gallery
func (p *Product) SetImages(images []string) {
	p.images = copyStrings(images)
	p.updatedAt = touch(p.updatedAt)
}

// SetCategory stores the trimmed category
func (p *Product) SetCategory(category string) {
	p.category = strings.TrimSpace(category)
	p.updatedAt = touch(p.updatedAt)
}

// SetFeatured flags the product for storefront highlights
func (p *Product) SetFeatured(featured bool) {
	p.featured = featured
	p.updatedAt = touch(p.updatedAt)
}

// SetStatus changes the status directly. Stock is not consulted.
func (p *Product) SetStatus(status ProductStatus) error {
	if !status.Valid() {
		return NewValidationError("status", fmt.Sprintf("invalid status: %s", status))
	}
	p.status = status
	p.updatedAt = touch(p.updatedAt)
	return nil
}

// IsLowStock reports whether a threshold is set and stock is at or below it
func (p *Product) IsLowStock() bool {
	if p.minStock == nil {
		return false
	}
	return p.stockQuantity <= *p.minStock
}

// SoftDelete stamps the deletion time. Calling it again re-stamps.
func (p *Product) SoftDelete() {
	now := touch(p.updatedAt)
	p.deletedAt = &now
	p.updatedAt = now
}

// SetPersistedVersion records the version storage assigned after a write
func (p *Product) SetPersistedVersion(v int64) { p.version = v }

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
