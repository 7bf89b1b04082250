package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser(UserParams{
		ID:           " u-1 ",
		Name:         " Ada ",
		Email:        " ADA@Example.com",
		PasswordHash: testHash,
		Role:         UserRoleAdmin,
	})
	require.NoError(t, err)

	assert.Equal(t, "u-1", u.ID())
	assert.Equal(t, "Ada", u.Name())
	assert.Equal(t, "ada@example.com", u.Email())
	assert.True(t, u.IsAdmin())
	assert.Equal(t, testHash, u.PasswordHashForAuth())
}

func TestNewUser_Invalid(t *testing.T) {
	base := UserParams{ID: "u-1", Email: "a@b.co", PasswordHash: testHash, Role: UserRoleClient}

	cases := map[string]func(p *UserParams){
		"empty id":   func(p *UserParams) { p.ID = "" },
		"bad email":  func(p *UserParams) { p.Email = "a@b" },
		"bad role":   func(p *UserParams) { p.Role = "root" },
		"short hash": func(p *UserParams) { p.PasswordHash = "abc" },
		"short name": func(p *UserParams) { p.Name = "A" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := base
			mutate(&p)
			_, err := NewUser(p)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUser_Changes(t *testing.T) {
	u, err := NewUser(UserParams{ID: "u-1", Email: "a@b.co", PasswordHash: testHash, Role: UserRoleClient})
	require.NoError(t, err)

	require.Error(t, u.ChangeName(""))
	require.NoError(t, u.ChangeName("Grace"))
	assert.Equal(t, "Grace", u.Name())

	require.Error(t, u.ChangeEmail("grace"))
	require.NoError(t, u.ChangeEmail("Grace@Navy.mil"))
	assert.Equal(t, "grace@navy.mil", u.Email())

	require.Error(t, u.ChangeRole("owner"))
	require.NoError(t, u.ChangeRole(UserRoleAdmin))
	assert.Equal(t, UserRoleAdmin, u.Role())

	require.Error(t, u.ChangePasswordHash("tiny"))
	assert.True(t, u.UpdatedAt().After(u.CreatedAt()))
}

func TestParseUserRole(t *testing.T) {
	r, err := ParseUserRole("")
	require.NoError(t, err)
	assert.Equal(t, UserRoleClient, r)

	r, err = ParseUserRole("ADMIN")
	require.NoError(t, err)
	assert.Equal(t, UserRoleAdmin, r)

	_, err = ParseUserRole("superuser")
	require.Error(t, err)
}
