package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigitsOnly(t *testing.T) {
	cases := map[string]string{
		"123.456.789-00":  "12345678900",
		"(11) 98888-7777": "11988887777",
		"abc":             "",
		"":                "",
		"٣4":              "4",
	}
	for in, want := range cases {
		assert.Equal(t, want, DigitsOnly(in), in)
	}
}

func TestValidateEmail(t *testing.T) {
	got, err := ValidateEmail(" Foo@Bar ")
	require.NoError(t, err)
	assert.Equal(t, "foo@bar", got)

	_, err = ValidateEmail("foo")
	require.Error(t, err)

	_, err = ValidateEmailStrict("foo@bar")
	require.Error(t, err)

	got, err = ValidateEmailStrict(" Foo@Bar.io ")
	require.NoError(t, err)
	assert.Equal(t, "foo@bar.io", got)
}

func TestValidationErrorKind(t *testing.T) {
	err := NewValidationError("price", "must be greater than zero")
	assert.Equal(t, "price: must be greater than zero", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrNotFound))

	notFound := ErrNotFoundWithMsg("customer not found")
	assert.True(t, errors.Is(notFound, ErrNotFound))
	var appErr *AppError
	require.True(t, errors.As(notFound, &appErr))
	assert.Equal(t, CodeNotFound, appErr.Code)
}

func TestValidatePassword(t *testing.T) {
	require.Error(t, ValidatePassword(""))
	require.Error(t, ValidatePassword("   "))
	require.NoError(t, ValidatePassword("s3cret"))
}

func TestNewPageRequest(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
		wantOffset          int
	}{
		{0, 0, 1, 50, 0},
		{-3, 10, 1, 10, 0},
		{3, 20, 3, 20, 40},
		{2, 500, 2, 100, 100},
	}
	for _, tt := range tests {
		p := NewPageRequest(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, p.Page)
		assert.Equal(t, tt.wantLimit, p.Limit)
		assert.Equal(t, tt.wantOffset, p.Offset())
	}
}

func TestNewPaginationResult(t *testing.T) {
	r := NewPaginationResult(NewPageRequest(2, 20), 41)
	assert.Equal(t, 2, r.Page)
	assert.Equal(t, 20, r.Limit)
	assert.Equal(t, int64(41), r.TotalCount)
	assert.Equal(t, 3, r.TotalPages)

	assert.Equal(t, 0, NewPaginationResult(NewPageRequest(1, 10), 0).TotalPages)
}
