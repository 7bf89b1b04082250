package service

import (
	"strings"
	"time"

	"github.com/Raymond9734/storefront-backend/internal/models"
)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return models.NewValidationError(field, "is required")
	}
	return nil
}

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	StoreID  string `json:"store_id"`
	Name     string `json:"name"`
	TaxID    string `json:"tax_id"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Validate performs validation on the create customer request
func (r *CreateCustomerRequest) Validate() error {
	checks := []struct{ field, value string }{
		{"store_id", r.StoreID},
		{"name", r.Name},
		{"tax_id", r.TaxID},
		{"email", r.Email},
		{"phone", r.Phone},
		{"password", r.Password},
	}
	for _, c := range checks {
		if err := required(c.field, c.value); err != nil {
			return err
		}
	}
	return nil
}

// UpdateCustomerRequest carries a partial update. Nil fields are left alone;
// present fields go through the customer's setters.
type UpdateCustomerRequest struct {
	StoreID  string  `json:"store_id"`
	Name     *string `json:"name,omitempty"`
	TaxID    *string `json:"tax_id,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// CustomerLoginRequest represents a customer sign-in
type CustomerLoginRequest struct {
	StoreID  string `json:"store_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate performs validation on the login request
func (r *CustomerLoginRequest) Validate() error {
	if err := required("store_id", r.StoreID); err != nil {
		return err
	}
	if err := required("email", r.Email); err != nil {
		return err
	}
	return required("password", r.Password)
}

// CustomerResponse is the public view of a customer. The hash never leaves.
type CustomerResponse struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"store_id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCustomerResponse converts a customer to its public view
func NewCustomerResponse(c *models.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:        c.ID(),
		StoreID:   c.TenantID(),
		Name:      c.Name(),
		TaxID:     c.TaxID(),
		Email:     c.Email(),
		Phone:     c.Phone(),
		Status:    string(c.Status()),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
}

// CustomerListResult represents paginated customer list results
type CustomerListResult struct {
	Data       []*CustomerResponse     `json:"data"`
	Pagination models.PaginationResult `json:"pagination"`
}

// CreateProductRequest represents a request to create a product. Price and
// stock are pointers so a missing value is told apart from zero.
type CreateProductRequest struct {
	StoreID       string   `json:"store_id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	SKU           string   `json:"sku"`
	Price         *float64 `json:"price"`
	StockQuantity *int     `json:"stock_quantity"`
	MinStock      *int     `json:"min_stock,omitempty"`
	Category      string   `json:"category,omitempty"`
	Featured      bool     `json:"featured,omitempty"`
}

// Validate performs validation on the create product request
func (r *CreateProductRequest) Validate() error {
	if err := required("store_id", r.StoreID); err != nil {
		return err
	}
	if err := required("name", r.Name); err != nil {
		return err
	}
	if err := required("sku", r.SKU); err != nil {
		return err
	}
	if r.Price == nil {
		return models.NewValidationError("price", "is required")
	}
	if r.StockQuantity == nil {
		return models.NewValidationError("stock_quantity", "is required")
	}
	return nil
}

// UpdateProductRequest carries a partial product update
type UpdateProductRequest struct {
	StoreID       string   `json:"store_id"`
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	SKU           *string  `json:"sku,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	StockQuantity *int     `json:"stock_quantity,omitempty"`
	MinStock      *int     `json:"min_stock,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Status        *string  `json:"status,omitempty"`
	Featured      *bool    `json:"featured,omitempty"`
}

// ProductResponse is the public view of a product
type ProductResponse struct {
	ID            string    `json:"id"`
	StoreID       string    `json:"store_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	SKU           string    `json:"sku"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	MinStock      *int      `json:"min_stock"`
	ImageURL      string    `json:"image_url"`
	Images        []string  `json:"images"`
	Category      string    `json:"category"`
	Status        string    `json:"status"`
	Featured      bool      `json:"featured"`
	LowStock      bool      `json:"is_low_stock"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewProductResponse converts a product to its public view
func NewProductResponse(p *models.Product) *ProductResponse {
	images := p.Images()
	if images == nil {
		images = []string{}
	}
	return &ProductResponse{
		ID:            p.ID(),
		StoreID:       p.TenantID(),
		Name:          p.Name(),
		Description:   p.Description(),
		SKU:           p.SKU(),
		Price:         p.Price(),
		StockQuantity: p.StockQuantity(),
		MinStock:      p.MinStock(),
		ImageURL:      p.ImageURL(),
		Images:        images,
		Category:      p.Category(),
		Status:        string(p.Status()),
		Featured:      p.Featured(),
		LowStock:      p.IsLowStock(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

// NewProductResponses converts a slice of products
func NewProductResponses(products []*models.Product) []*ProductResponse {
	out := make([]*ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, NewProductResponse(p))
	}
	return out
}

// ProductListResult represents paginated product list results
type ProductListResult struct {
	Data       []*ProductResponse      `json:"data"`
	Pagination models.PaginationResult `json:"pagination"`
}

// RegisterUserRequest represents a request to create a platform user
type RegisterUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Validate performs validation on the register request
func (r *RegisterUserRequest) Validate() error {
	if err := required("email", r.Email); err != nil {
		return err
	}
	return models.ValidatePassword(r.Password)
}

// LoginRequest represents a platform user sign-in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate performs validation on the login request
func (r *LoginRequest) Validate() error {
	if err := required("email", r.Email); err != nil {
		return err
	}
	return required("password", r.Password)
}

// UpdateUserRequest carries a partial user update
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

func (r *UpdateUserRequest) empty() bool {
	return r.Name == nil && r.Email == nil && r.Password == nil && r.Role == nil
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse converts a user to its public view
func NewUserResponse(u *models.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID(),
		Name:      u.Name(),
		Email:     u.Email(),
		Role:      string(u.Role()),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
}

// LoginResult carries a signed token and the authenticated principal
type LoginResult struct {
	Token     string            `json:"token"`
	ExpiresIn int64             `json:"expires_in"`
	User      *UserResponse     `json:"user,omitempty"`
	Customer  *CustomerResponse `json:"customer,omitempty"`
}

// Actor is the authenticated caller of a user operation
type Actor struct {
	UserID string
	Admin  bool
}
