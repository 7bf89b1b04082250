package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Raymond9734/storefront-backend/internal/models"
)

// CustomerRepository defines the interface for customer data access. Every
// lookup is scoped by store and ignores soft-deleted rows.
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id, storeID string) (*models.Customer, error)
	FindByEmail(ctx context.Context, email, storeID string) (*models.Customer, error)
	FindAll(ctx context.Context, storeID string, page models.PageRequest) ([]*models.Customer, int64, error)
	Update(ctx context.Context, customer *models.Customer) error
	SoftDelete(ctx context.Context, customer *models.Customer) error
}

// customerRepository implements CustomerRepository using PostgreSQL
type customerRepository struct {
	db queryer
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, store_id, name, tax_id, email, phone, password_hash, status, version, created_at, updated_at, deleted_at`

// Create inserts a new customer
func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	s := customer.Snapshot()
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(
		ctx,
		query,
		s.ID,
		s.TenantID,
		s.Name,
		s.TaxID,
		s.Email,
		s.Phone,
		s.PasswordHash,
		s.Status,
		s.Version,
		s.CreatedAt,
		s.UpdatedAt,
		s.DeletedAt,
	)
	if isUniqueViolation(err) {
		return models.ErrConflictWithMsg("email already registered for this store")
	}
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// FindByID retrieves a customer by ID
func (r *customerRepository) FindByID(ctx context.Context, id, storeID string) (*models.Customer, error) {
	if !validID(id) {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %s not found", id))
	}

	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE id = $1 AND store_id = $2 AND deleted_at IS NULL`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, id, storeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return customer, nil
}

// FindByEmail retrieves a customer by email, case-insensitively
func (r *customerRepository) FindByEmail(ctx context.Context, email, storeID string) (*models.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE lower(email) = lower($1) AND store_id = $2 AND deleted_at IS NULL`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, email, storeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("customer with email %s not found", email))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer by email: %w", err)
	}

	return customer, nil
}

// FindAll retrieves a page of customers, newest first, with the total count
func (r *customerRepository) FindAll(ctx context.Context, storeID string, page models.PageRequest) ([]*models.Customer, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM customers WHERE store_id = $1 AND deleted_at IS NULL`
	if err := r.db.QueryRowContext(ctx, countQuery, storeID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE store_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, storeID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, total, nil
}

// Update writes the customer if its version still matches the stored row
func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	s := customer.Snapshot()
	if !validID(s.ID) {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %s not found", s.ID))
	}

	query := `
		UPDATE customers
		SET name = $1, tax_id = $2, email = $3, phone = $4, password_hash = $5,
			status = $6, updated_at = $7, version = version + 1
		WHERE id = $8 AND store_id = $9 AND deleted_at IS NULL AND version = $10
		RETURNING version`

	var version int64
	err := r.db.QueryRowContext(
		ctx,
		query,
		s.Name,
		s.TaxID,
		s.Email,
		s.Phone,
		s.PasswordHash,
		s.Status,
		s.UpdatedAt,
		s.ID,
		s.TenantID,
		s.Version,
	).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return r.staleOrMissing(ctx, s.ID, s.TenantID)
	}
	if isUniqueViolation(err) {
		return models.ErrConflictWithMsg("email already registered for this store")
	}
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	customer.SetPersistedVersion(version)
	return nil
}

// SoftDelete stamps deleted_at on the stored row from the customer's state
func (r *customerRepository) SoftDelete(ctx context.Context, customer *models.Customer) error {
	s := customer.Snapshot()
	if !validID(s.ID) {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %s not found", s.ID))
	}

	if s.DeletedAt == nil {
		return fmt.Errorf("customer %s is not marked deleted", s.ID)
	}

	query := `
		UPDATE customers
		SET deleted_at = $1, updated_at = $2, version = version + 1
		WHERE id = $3 AND store_id = $4 AND deleted_at IS NULL
		RETURNING version`

	var version int64
	err := r.db.QueryRowContext(ctx, query, s.DeletedAt, s.UpdatedAt, s.ID, s.TenantID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %s not found", s.ID))
	}
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	customer.SetPersistedVersion(version)
	return nil
}

func (r *customerRepository) staleOrMissing(ctx context.Context, id, storeID string) error {
	found, err := exists(ctx, r.db,
		`SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1 AND store_id = $2 AND deleted_at IS NULL)`,
		id, storeID,
	)
	if err != nil {
		return fmt.Errorf("failed to check customer: %w", err)
	}
	if !found {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %s not found", id))
	}
	return models.ErrConflictWithMsg("customer was modified concurrently")
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var s models.CustomerSnapshot
	var deletedAt sql.NullTime
	err := row.Scan(
		&s.ID,
		&s.TenantID,
		&s.Name,
		&s.TaxID,
		&s.Email,
		&s.Phone,
		&s.PasswordHash,
		&s.Status,
		&s.Version,
		&s.CreatedAt,
		&s.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		s.DeletedAt = &deletedAt.Time
	}
	return models.RestoreCustomer(s), nil
}
