package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasAnyPermission(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	role := env.seedRole(t, "Customer", RoleCustomer, "order:create", "order:read_own")
	id := &Identity{UserID: 1, Role: RoleCustomer, RoleID: role.ID}

	ok, err := env.authz.HasAnyPermission(ctx, id, "order:create")
	require.NoError(t, err)
	assert.True(t, ok)

	// One held key out of several required is enough.
	ok, err = env.authz.HasAnyPermission(ctx, id, "order:delete", "order:read_own")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.authz.HasAnyPermission(ctx, id, "order:delete", "user:delete")
	require.NoError(t, err)
	assert.False(t, ok)

	// An empty required set grants nothing.
	ok, err = env.authz.HasAnyPermission(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPermissionsFor(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	role := env.seedRole(t, "Customer", RoleCustomer, "order:create", "order:read_own")

	keys, err := env.authz.PermissionsFor(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"order:create", "order:read_own"}, keys)

	empty := env.seedRole(t, "Empty", "empty")
	keys, err = env.authz.PermissionsFor(ctx, empty.ID)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestHasRole(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	id := &Identity{Role: RoleCustomer}
	assert.True(t, env.authz.HasRole(id, RoleCustomer))
	assert.True(t, env.authz.HasRole(id, RoleAdmin, RoleCustomer))
	assert.False(t, env.authz.HasRole(id, RoleAdmin))
	assert.False(t, env.authz.HasRole(id))
}

func TestOwnsResource(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	admin := &Identity{UserID: 1, Role: RoleAdmin}
	customer := &Identity{UserID: 2, Role: RoleCustomer}

	// Admins reach every row, customers only their own.
	assert.True(t, env.authz.OwnsResource(admin, 99))
	assert.True(t, env.authz.OwnsResource(customer, 2))
	assert.False(t, env.authz.OwnsResource(customer, 3))
}
