package models

import (
	"fmt"
	"strings"
	"time"
)

// UserRole is the closed set of back-office roles
type UserRole string

// User role constants
const (
	UserRoleClient UserRole = "client"
	UserRoleAdmin  UserRole = "admin"
)

// Valid reports whether r is a known role
func (r UserRole) Valid() bool {
	return r == UserRoleClient || r == UserRoleAdmin
}

// ParseUserRole converts user input into a UserRole. Empty input maps to client.
func ParseUserRole(s string) (UserRole, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return UserRoleClient, nil
	}
	role := UserRole(s)
	if !role.Valid() {
		return "", NewValidationError("role", "invalid role")
	}
	return role, nil
}

// User is a platform account. Unlike customers, users are not scoped to a
// store and are physically deleted.
type User struct {
	id           string
	name         string
	email        string
	passwordHash string
	role         UserRole
	createdAt    time.Time
	updatedAt    time.Time
}

// UserParams holds the inputs for NewUser
type UserParams struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
}

// NewUser validates and builds a user
func NewUser(p UserParams) (*User, error) {
	id, err := ValidateID("id", p.ID)
	if err != nil {
		return nil, err
	}
	email, err := ValidateEmailStrict(p.Email)
	if err != nil {
		return nil, err
	}
	if !p.Role.Valid() {
		return nil, NewValidationError("role", fmt.Sprintf("invalid role: %s", p.Role))
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

	return &User{
		id:           id,
		name:         name,
		email:        email,
		passwordHash: p.PasswordHash,
		role:         p.Role,
		createdAt:    createdAt,
		updatedAt:    createdAt,
	}, nil
}

// UserSnapshot is the persisted form of a user
type UserSnapshot struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RestoreUser rehydrates a stored user
func RestoreUser(s UserSnapshot) *User {
	return &User{
		id:           s.ID,
		name:         s.Name,
		email:        s.Email,
		passwordHash: s.PasswordHash,
		role:         s.Role,
		createdAt:    s.CreatedAt,
		updatedAt:    s.UpdatedAt,
	}
}

// Snapshot returns the user's current state
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		ID:           u.id,
		Name:         u.name,
		Email:        u.email,
		PasswordHash: u.passwordHash,
		Role:         u.role,
		CreatedAt:    u.createdAt,
		UpdatedAt:    u.updatedAt,
	}
}

func (u *User) ID() string           { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) Role() UserRole       { return u.role }
func (u *User) IsAdmin() bool        { return u.role == UserRoleAdmin }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// PasswordHashForAuth exposes the hash for credential checks only
func (u *User) PasswordHashForAuth() string { return u.passwordHash }

// ChangeName requires at least two characters
func (u *User) ChangeName(name string) error {
	value, err := ValidatePersonName(name)
	if err != nil {
		return err
	}
	if value == "" {
		return NewValidationError("name", "must have at least 2 characters")
	}
	u.name = value
	u.updatedAt = touch(u.updatedAt)
	return nil
}

// ChangeEmail applies the strict email pattern
func (u *User) ChangeEmail(email string) error {
	value, err := ValidateEmailStrict(email)
	if err != nil {
		return err
	}
	u.email = value
	u.updatedAt = touch(u.updatedAt)
	return nil
}

// ChangeRole switches between client and admin
func (u *User) ChangeRole(role UserRole) error {
	if !role.Valid() {
		return NewValidationError("role", "invalid role")
	}
	u.role = role
	u.updatedAt = touch(u.updatedAt)
	return nil
}

// ChangePasswordHash replaces the stored hash
func (u *User) ChangePasswordHash(hash string) error {
	if err := ValidatePasswordHashStrict(hash); err != nil {
		return err
	}
	u.passwordHash = hash
	u.updatedAt = touch(u.updatedAt)
	return nil
}
