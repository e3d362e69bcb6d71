package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dmarkhas/orderflow/internal/hash"
	"github.com/dmarkhas/orderflow/internal/models"
	"github.com/dmarkhas/orderflow/internal/repo"
)

// testEnv wires the services against an in-memory database so the
// tests exercise the real store behavior, including rotation.
type testEnv struct {
	repo  *repo.Repo
	auth  *AuthService
	authz *AuthzService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.User{},
		&models.AuthToken{},
		&models.Order{},
	))

	r := repo.New(db)
	return &testEnv{
		repo: r,
		auth: &AuthService{
			Users:      r,
			Tokens:     r,
			Secret:     []byte("service-test-secret"),
			AccessTTL:  30 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		authz: &AuthzService{Repo: r},
	}
}

func (e *testEnv) seedRole(t *testing.T, name, key string, permKeys ...string) *models.Role {
	t.Helper()
	ctx := context.Background()

	role := &models.Role{Name: name, Key: key, Description: name}
	require.NoError(t, e.repo.CreateRole(ctx, role))
	for _, pk := range permKeys {
		perm := &models.Permission{Name: pk, Key: pk, Description: pk}
		require.NoError(t, e.repo.CreatePermission(ctx, perm))
		require.NoError(t, e.repo.AssignPermission(ctx, role.ID, perm.ID))
	}
	return role
}

func (e *testEnv) seedUser(t *testing.T, username, email, password string, roleID uint) *models.User {
	t.Helper()

	h, err := hash.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Username: username, Email: email, PasswordHash: h, RoleID: roleID}
	require.NoError(t, e.repo.CreateUser(context.Background(), u))
	return u
}
