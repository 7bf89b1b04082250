package models

import (
	"fmt"
	"strings"
	"time"
)

// CustomerStatus is the closed set of customer states
type CustomerStatus string

// Customer status constants
const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
	CustomerStatusBlocked  CustomerStatus = "blocked"
)

// Valid reports whether s is a known customer status
func (s CustomerStatus) Valid() bool {
	switch s {
	case CustomerStatusActive, CustomerStatusInactive, CustomerStatusBlocked:
		return true
	default:
		return false
	}
}

// ParseCustomerStatus converts user input into a CustomerStatus
func ParseCustomerStatus(s string) (CustomerStatus, error) {
	status := CustomerStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", NewValidationError("status", fmt.Sprintf("invalid status: %s", s))
	}
	return status, nil
}

// Customer is a store's customer account. Fields change only through the
// setters below; a failed setter leaves the customer untouched.
type Customer struct {
	id           string
	tenantID     string
	name         string
	taxID        string
	email        string
	phone        string
	passwordHash string
	status       CustomerStatus
	version      int64
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// CustomerParams holds the inputs for NewCustomer
type CustomerParams struct {
	ID           string
	TenantID     string
	Name         string
	TaxID        string
	Email        string
	Phone        string
	PasswordHash string
	Status       CustomerStatus
	CreatedAt    time.Time
}

// NewCustomer builds a customer from fresh input, applying the
// construction-time rules (strict email pattern, hash length).
func NewCustomer(p CustomerParams) (*Customer, error) {
	id, err := ValidateID("id", p.ID)
	if err != nil {
		return nil, err
	}
	tenantID, err := ValidateID("store_id", p.TenantID)
	if err != nil {
		return nil, err
	}
	email, err := ValidateEmailStrict(p.Email)
	if err != nil {
		return nil, err
	}
	if !p.Status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("invalid status: %s", p.Status))
	}
	if err := ValidatePasswordHashStrict(p.PasswordHash); err != nil {
		return nil, err
	}
	name, err := ValidatePersonName(p.Name)
	if err != nil {
		return nil, err
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = nowFunc()
	}

	return &Customer{
		id:           id,
		tenantID:     tenantID,
		name:         name,
		taxID:        DigitsOnly(p.TaxID),
		email:        email,
		phone:        DigitsOnly(p.Phone),
		passwordHash: p.PasswordHash,
		status:       p.Status,
		version:      1,
		createdAt:    createdAt,
		updatedAt:    createdAt,
	}, nil
}

// CustomerSnapshot is the persisted form of a customer
type CustomerSnapshot struct {
	ID           string         `json:"id"`
	TenantID     string         `json:"store_id"`
	Name         string         `json:"name"`
	TaxID        string         `json:"tax_id"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	PasswordHash string         `json:"password_hash"`
	Status       CustomerStatus `json:"status"`
	Version      int64          `json:"version"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    *time.Time     `json:"deleted_at,omitempty"`
}

// RestoreCustomer rehydrates a stored customer without re-validating it
func RestoreCustomer(s CustomerSnapshot) *Customer {
	return &Customer{
		id:           s.ID,
		tenantID:     s.TenantID,
		name:         s.Name,
		taxID:        s.TaxID,
		email:        s.Email,
		phone:        s.Phone,
		passwordHash: s.PasswordHash,
		status:       s.Status,
		version:      s.Version,
		createdAt:    s.CreatedAt,
		updatedAt:    s.UpdatedAt,
		deletedAt:    copyTime(s.DeletedAt),
	}
}

// Snapshot returns the customer's current state
func (c *Customer) Snapshot() CustomerSnapshot {
	return CustomerSnapshot{
		ID:           c.id,
		TenantID:     c.tenantID,
		Name:         c.name,
		TaxID:        c.taxID,
		Email:        c.email,
		Phone:        c.phone,
		PasswordHash: c.passwordHash,
		Status:       c.status,
		Version:      c.version,
		CreatedAt:    c.createdAt,
		UpdatedAt:    c.updatedAt,
		DeletedAt:    copyTime(c.deletedAt),
	}
}

func (c *Customer) ID() string             { return c.id }
func (c *Customer) TenantID() string       { return c.tenantID }
func (c *Customer) Name() string           { return c.name }
func (c *Customer) TaxID() string          { return c.taxID }
func (c *Customer) Email() string          { return c.email }
func (c *Customer) Phone() string          { return c.phone }
func (c *Customer) PasswordHash() string   { return c.passwordHash }
func (c *Customer) Status() CustomerStatus { return c.status }
func (c *Customer) Version() int64         { return c.version }
func (c *Customer) CreatedAt() time.Time   { return c.createdAt }
func (c *Customer) UpdatedAt() time.Time   { return c.updatedAt }
func (c *Customer) DeletedAt() *time.Time  { return copyTime(c.deletedAt) }
func (c *Customer) IsDeleted() bool        { return c.deletedAt != nil }

// IsActive reports whether the customer may sign in
func (c *Customer) IsActive() bool {
	return c.status == CustomerStatusActive && c.deletedAt == nil
}

// SetName replaces the name with its trimmed form
func (c *Customer) SetName(name string) error {
	value, err := ValidateRequiredText("name", name)
	if err != nil {
		return err
	}
	c.name = value
	c.updatedAt = touch(c.updatedAt)
	return nil
}

// SetTaxID stores the digits of raw
func (c *Customer) SetTaxID(raw string) error {
	value, err := NormalizeTaxID(raw)
	if err != nil {
		return err
	}
	c.taxID = value
	c.updatedAt = touch(c.updatedAt)
	return nil
}

// SetEmail stores the lowercased, trimmed address
func (c *Customer) SetEmail(email string) error {
	value, err := ValidateEmail(email)
	if err != nil {
		return err
	}
	c.email = value
	c.updatedAt = touch(c.updatedAt)
	return nil
}

// SetPhone stores the digits of raw
func (c *Customer) SetPhone(raw string) error {
	value, err := NormalizePhone(raw)
	if err != nil {
		return err
	}
	c.phone = value
	c.updatedAt = touch(c.updatedAt)
	return nil
}

// SetPasswordHash replaces the stored hash. Hashing happens in the service.
func (c *Customer) SetPasswordHash(hash string) error {
	if err := ValidatePasswordHash(hash); err != nil {
		return err
	}
	c.passwordHash = hash
	c.updatedAt = touch(c.updatedAt)
	return nil
}

// SetStatus changes the status
func (c *Customer) SetStatus(status CustomerStatus) error {
	if !status.Valid() {
		return NewValidationError("status", fmt.Sprintf("invalid status: %s", status))
	}
	c.status = status
	c.updatedAt = touch(c.updatedAt)
	return nil
}

// SoftDelete stamps the deletion time. Calling it again re-stamps.
func (c *Customer) SoftDelete() {
	now := touch(c.updatedAt)
	c.deletedAt = &now
	c.updatedAt = now
}

// SetPersistedVersion records the version storage assigned after a write
func (c *Customer) SetPersistedVersion(v int64) { c.version = v }

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
