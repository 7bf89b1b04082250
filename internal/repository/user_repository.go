package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Raymond9734/storefront-backend/internal/models"
)

// UserRepository defines the interface for platform user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// userRepository implements UserRepository using PostgreSQL
type userRepository struct {
	db queryer
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

// Create inserts a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	s := user.Snapshot()
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query, s.ID, s.Name, s.Email, s.PasswordHash, s.Role, s.CreatedAt, s.UpdatedAt)
	if isUniqueViolation(err) {
		return models.ErrConflictWithMsg("email already registered")
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByID retrieves a user by ID
func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("user with ID %s not found", id))
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("user with ID %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// FindByEmail retrieves a user by email, case-insensitively
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("user with email %s not found", email))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// FindAll retrieves every user, newest first
func (r *userRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// Update updates an existing user
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	s := user.Snapshot()
	if !validID(s.ID) {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("user with ID %s not found", s.ID))
	}

	query := `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, role = $4, updated_at = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query, s.Name, s.Email, s.PasswordHash, s.Role, s.UpdatedAt, s.ID)
	if isUniqueViolation(err) {
		return models.ErrConflictWithMsg("email already registered")
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("user with ID %s not found", s.ID))
	}

	return nil
}

// Delete removes a user
func (r *userRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("user with ID %s not found", id))
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("user with ID %s not found", id))
	}

	return nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var s models.UserSnapshot
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.Role, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return models.RestoreUser(s), nil
}
