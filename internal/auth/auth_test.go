package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(hash), 20)
	assert.NotEqual(t, "s3cret", hash)

	require.NoError(t, h.Compare(hash, "s3cret"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), ErrPasswordMismatch)

	err = h.Compare("not-a-hash", "s3cret")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrPasswordMismatch))
}

func TestNewBcryptHasher_CostFallback(t *testing.T) {
	h := NewBcryptHasher(99).(*bcryptHasher)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}

func newTestManager() *TokenManager {
	return NewTokenManager(TokenConfig{
		Secret:    "test-secret",
		Issuer:    "storefront",
		Audience:  "storefront-api",
		ExpiresIn: time.Minute,
	})
}

func TestTokenManager_UserRoundTrip(t *testing.T) {
	tm := newTestManager()

	token, err := tm.GenerateUserToken("u-1", "ada@example.com", "admin")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, KindUser, claims.Kind)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Empty(t, claims.StoreID)
}

func TestTokenManager_CustomerRoundTrip(t *testing.T) {
	tm := newTestManager()

	token, err := tm.GenerateCustomerToken("c-1", "store-1", "maria@example.com")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, KindCustomer, claims.Kind)
	assert.Equal(t, "store-1", claims.StoreID)

	_, err = tm.GenerateCustomerToken("c-1", "", "maria@example.com")
	require.Error(t, err)
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := newTestManager()
	token, err := tm.GenerateUserToken("u-1", "a@b.co", "client")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager(TokenConfig{Secret: "other", Issuer: "storefront", Audience: "storefront-api"})
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other := NewTokenManager(TokenConfig{Secret: "test-secret", Issuer: "storefront", Audience: "admin"})
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := newTestManager()
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	for _, header := range []string{"", "abc", "Basic abc", "Bearer a b"} {
		_, err := ExtractToken(header)
		assert.Error(t, err, header)
	}
}
