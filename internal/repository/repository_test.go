package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Raymond9734/storefront-backend/internal/models"
)

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"6f1c2a3e-0b4d-4e5f-8a9b-0c1d2e3f4a5b", true},
		{"6F1C2A3E-0B4D-4E5F-8A9B-0C1D2E3F4A5B", true},
		{"abc", false},
		{"", false},
		{"p-1", false},
		{"6f1c2a3e-0b4d-4e5f-8a9b-0c1d2e3f4a5", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, validID(tt.id))
		})
	}
}

// A nil *sql.DB panics if touched, so these prove malformed ids never reach
// the database.
func TestRepositories_MalformedIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	customers := NewCustomerRepository(nil)
	products := NewProductRepository(nil)
	users := NewUserRepository(nil)

	t.Run("customer find", func(t *testing.T) {
		_, err := customers.FindByID(ctx, "abc", "store-1")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("customer update and delete", func(t *testing.T) {
		c := models.RestoreCustomer(models.CustomerSnapshot{ID: "abc", TenantID: "store-1", Version: 1})
		assert.ErrorIs(t, customers.Update(ctx, c), models.ErrNotFound)
		c.SoftDelete()
		assert.ErrorIs(t, customers.SoftDelete(ctx, c), models.ErrNotFound)
	})

	t.Run("product find", func(t *testing.T) {
		_, err := products.FindByID(ctx, "abc", "store-1")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("product update and delete", func(t *testing.T) {
		p := models.RestoreProduct(models.ProductSnapshot{ID: "abc", TenantID: "store-1", Version: 1})
		assert.ErrorIs(t, products.Update(ctx, p), models.ErrNotFound)
		p.SoftDelete()
		assert.ErrorIs(t, products.SoftDelete(ctx, p), models.ErrNotFound)
	})

	t.Run("user", func(t *testing.T) {
		_, err := users.FindByID(ctx, "abc")
		assert.ErrorIs(t, err, models.ErrNotFound)

		u := models.RestoreUser(models.UserSnapshot{ID: "abc"})
		assert.ErrorIs(t, users.Update(ctx, u), models.ErrNotFound)
		assert.ErrorIs(t, users.Delete(ctx, "abc"), models.ErrNotFound)
	})
}
