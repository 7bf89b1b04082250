package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Raymond9734/storefront-backend/internal/auth"
	"github.com/Raymond9734/storefront-backend/internal/models"
)

const testStore = "store-1"

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager(auth.TokenConfig{Secret: "test-secret", ExpiresIn: time.Hour})
}

func testHasher() auth.PasswordHasher {
	return auth.NewBcryptHasher(4)
}

// mockCustomerRepository keeps snapshots so callers never share state with
// the store, mirroring a database round trip.
type mockCustomerRepository struct {
	mu        sync.Mutex
	customers map[string]models.CustomerSnapshot
	updateErr error
}

func newMockCustomerRepository() *mockCustomerRepository {
	return &mockCustomerRepository{customers: make(map[string]models.CustomerSnapshot)}
}

func (m *mockCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[customer.ID()] = customer.Snapshot()
	return nil
}

func (m *mockCustomerRepository) live(id, storeID string) (models.CustomerSnapshot, bool) {
	s, ok := m.customers[id]
	if !ok || s.TenantID != storeID || s.DeletedAt != nil {
		return models.CustomerSnapshot{}, false
	}
	return s, true
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, id, storeID string) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live(id, storeID)
	if !ok {
		return nil, models.ErrNotFoundWithMsg("customer not found")
	}
	return models.RestoreCustomer(s), nil
}

func (m *mockCustomerRepository) FindByEmail(ctx context.Context, email, storeID string) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.customers {
		if s.TenantID == storeID && s.DeletedAt == nil && strings.EqualFold(s.Email, email) {
			return models.RestoreCustomer(s), nil
		}
	}
	return nil, models.ErrNotFoundWithMsg("customer not found")
}

func (m *mockCustomerRepository) FindAll(ctx context.Context, storeID string, page models.PageRequest) ([]*models.Customer, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*models.Customer
	for _, s := range m.customers {
		if s.TenantID == storeID && s.DeletedAt == nil {
			all = append(all, models.RestoreCustomer(s))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt().After(all[j].CreatedAt()) })
	return paginate(all, page), int64(len(all)), nil
}

func (m *mockCustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.live(customer.ID(), customer.TenantID())
	if !ok {
		return models.ErrNotFoundWithMsg("customer not found")
	}
	if stored.Version != customer.Version() {
		return models.ErrConflictWithMsg("customer was modified concurrently")
	}
	customer.SetPersistedVersion(stored.Version + 1)
	m.customers[customer.ID()] = customer.Snapshot()
	return nil
}

func (m *mockCustomerRepository) SoftDelete(ctx context.Context, customer *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(customer.ID(), customer.TenantID()); !ok {
		return models.ErrNotFoundWithMsg("customer not found")
	}
	m.customers[customer.ID()] = customer.Snapshot()
	return nil
}

type mockProductRepository struct {
	mu       sync.Mutex
	products map[string]models.ProductSnapshot
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[string]models.ProductSnapshot)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID()] = product.Snapshot()
	return nil
}

func (m *mockProductRepository) live(id, storeID string) (models.ProductSnapshot, bool) {
	s, ok := m.products[id]
	if !ok || s.TenantID != storeID || s.DeletedAt != nil {
		return models.ProductSnapshot{}, false
	}
	return s, true
}

func (m *mockProductRepository) FindByID(ctx context.Context, id, storeID string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live(id, storeID)
	if !ok {
		return nil, models.ErrNotFoundWithMsg("product not found")
	}
	return models.RestoreProduct(s), nil
}

func (m *mockProductRepository) FindBySKU(ctx context.Context, sku, storeID string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.products {
		if s.TenantID == storeID && s.DeletedAt == nil && strings.EqualFold(s.SKU, sku) {
			return models.RestoreProduct(s), nil
		}
	}
	return nil, models.ErrNotFoundWithMsg("product not found")
}

func (m *mockProductRepository) filter(storeID string, keep func(models.ProductSnapshot) bool) []*models.Product {
	var out []*models.Product
	for _, s := range m.products {
		if s.TenantID == storeID && s.DeletedAt == nil && keep(s) {
			out = append(out, models.RestoreProduct(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out
}

func (m *mockProductRepository) FindAll(ctx context.Context, storeID string, page models.PageRequest) ([]*models.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.filter(storeID, func(models.ProductSnapshot) bool { return true })
	return paginate(all, page), int64(len(all)), nil
}

func (m *mockProductRepository) FindByCategory(ctx context.Context, storeID, category string, page models.PageRequest) ([]*models.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.filter(storeID, func(s models.ProductSnapshot) bool { return s.Category == category })
	return paginate(all, page), int64(len(all)), nil
}

func (m *mockProductRepository) FindFeatured(ctx context.Context, storeID string, limit int) ([]*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.filter(storeID, func(s models.ProductSnapshot) bool { return s.Featured })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *mockProductRepository) FindLowStock(ctx context.Context, storeID string) ([]*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.filter(storeID, func(s models.ProductSnapshot) bool {
		return s.MinStock != nil && s.StockQuantity <= *s.MinStock
	})
	sort.SliceStable(all, func(i, j int) bool { return all[i].StockQuantity() < all[j].StockQuantity() })
	return all, nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.live(product.ID(), product.TenantID())
	if !ok {
		return models.ErrNotFoundWithMsg("product not found")
	}
	if stored.Version != product.Version() {
		return models.ErrConflictWithMsg("product was modified concurrently")
	}
	product.SetPersistedVersion(stored.Version + 1)
	m.products[product.ID()] = product.Snapshot()
	return nil
}

func (m *mockProductRepository) SoftDelete(ctx context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(product.ID(), product.TenantID()); !ok {
		return models.ErrNotFoundWithMsg("product not found")
	}
	m.products[product.ID()] = product.Snapshot()
	return nil
}

type mockUserRepository struct {
	mu    sync.Mutex
	users map[string]models.UserSnapshot
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]models.UserSnapshot)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID()] = user.Snapshot()
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFoundWithMsg("user not found")
	}
	return models.RestoreUser(s), nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.users {
		if strings.EqualFold(s.Email, email) {
			return models.RestoreUser(s), nil
		}
	}
	return nil, models.ErrNotFoundWithMsg("user not found")
}

func (m *mockUserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.User, 0, len(m.users))
	for _, s := range m.users {
		out = append(out, models.RestoreUser(s))
	}
	return out, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID()]; !ok {
		return models.ErrNotFoundWithMsg("user not found")
	}
	m.users[user.ID()] = user.Snapshot()
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return models.ErrNotFoundWithMsg("user not found")
	}
	delete(m.users, id)
	return nil
}

// recordingPublisher captures published stock alerts
type recordingPublisher struct {
	mu   sync.Mutex
	jobs []*models.StockAlertJob
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, job *models.StockAlertJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

var errBroker = errors.New("broker unavailable")

func paginate[T any](items []T, page models.PageRequest) []T {
	start := page.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func ptr[T any](v T) *T { return &v }
