package main

import (
	"context"
	"os"
	"testing"

	"github.com/storelinehq/storeline-admin/config"
	"github.com/storelinehq/storeline-admin/models"
	"github.com/storelinehq/storeline-admin/repository"
	testhelpers "github.com/storelinehq/storeline-admin/testing"
	"github.com/storelinehq/storeline-admin/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func requireTestDB(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("TEST_DB_HOST not set, skipping database tests")
	}
}

func bootstrapTestConfig(email string) *config.ProductionConfig {
	return &config.ProductionConfig{
		Bootstrap: config.BootstrapConfig{
			AdminEmail:    email,
			AdminPassword: "BootPass123!",
			AdminFullName: "Bootstrap Admin",
		},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
}

func TestEnsureBootstrapAdmin_NormalizesEmail(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		adminRepo := repository.NewAdminRepository(tdb.DB)
		ctx := context.Background()

		cfg := bootstrapTestConfig("  Boot.Admin@Example.COM ")
		require.NoError(t, ensureBootstrapAdmin(adminRepo, cfg))

		// The stored row matches what the login lookup will search for
		admin, err := adminRepo.ByEmail(ctx, "boot.admin@example.com")
		require.NoError(t, err)
		require.NotNil(t, admin)
		assert.Equal(t, "boot.admin@example.com", admin.Email)
		assert.Equal(t, models.RoleSuperAdmin, admin.Role)
		assert.True(t, utils.IsTrue(admin.IsActive))
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("BootPass123!")))

		return nil
	})
	require.NoError(t, err)
}

func TestEnsureBootstrapAdmin_ExistingAccountIsKept(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		adminRepo := repository.NewAdminRepository(tdb.DB)
		ctx := context.Background()

		require.NoError(t, ensureBootstrapAdmin(adminRepo, bootstrapTestConfig("root@example.com")))

		// Re-running with a differently cased email must not create a duplicate
		require.NoError(t, ensureBootstrapAdmin(adminRepo, bootstrapTestConfig("ROOT@example.com")))

		count, err := adminRepo.Count(ctx, models.AdminFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		return nil
	})
	require.NoError(t, err)
}

func TestEnsureBootstrapAdmin_NoEmailIsNoOp(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		adminRepo := repository.NewAdminRepository(tdb.DB)

		require.NoError(t, ensureBootstrapAdmin(adminRepo, bootstrapTestConfig("   ")))

		count, err := adminRepo.Count(context.Background(), models.AdminFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		return nil
	})
	require.NoError(t, err)
}
