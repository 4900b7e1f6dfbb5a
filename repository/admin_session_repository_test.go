// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/storelinehq/storeline-admin/models"
	testhelpers "github.com/storelinehq/storeline-admin/testing"
	"github.com/storelinehq/storeline-admin/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireTestDB(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("TEST_DB_HOST not set, skipping database tests")
	}
}

func TestAdminSessionRepository_BySessionToken(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		repo := NewAdminSessionRepository(tdb.DB)
		ctx := context.Background()

		admin, err := fixtures.CreateTestAdmin(models.RoleManager)
		require.NoError(t, err)
		session, err := fixtures.CreateTestSession(admin.ID, time.Hour)
		require.NoError(t, err)

		found, err := repo.BySessionToken(ctx, session.SessionToken)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, session.ID, found.ID)
		assert.Equal(t, admin.ID, found.AdminID)

		missing, err := repo.BySessionToken(ctx, "no-such-token")
		require.NoError(t, err)
		assert.Nil(t, missing)

		// Dead rows are still returned; validity is the caller's call
		require.NoError(t, repo.Invalidate(ctx, session.ID))
		dead, err := repo.BySessionToken(ctx, session.SessionToken)
		require.NoError(t, err)
		require.NotNil(t, dead)
		assert.False(t, dead.IsValid())

		return nil
	})
	require.NoError(t, err)
}

func TestAdminSessionRepository_InvalidateAllForAdmin(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		repo := NewAdminSessionRepository(tdb.DB)
		ctx := context.Background()

		admin, err := fixtures.CreateTestAdmin(models.RoleManager)
		require.NoError(t, err)
		other, err := fixtures.CreateTestAdmin(models.RoleSupport)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err := fixtures.CreateTestSession(admin.ID, time.Hour)
			require.NoError(t, err)
		}
		otherSession, err := fixtures.CreateTestSession(other.ID, time.Hour)
		require.NoError(t, err)

		require.NoError(t, repo.InvalidateAllForAdmin(ctx, admin.ID))

		remaining, err := repo.ListActiveSessionsByAdmin(ctx, admin.ID)
		require.NoError(t, err)
		assert.Empty(t, remaining)

		// Other admins' sessions stay untouched
		untouched, err := repo.BySessionToken(ctx, otherSession.SessionToken)
		require.NoError(t, err)
		assert.True(t, untouched.IsValid())

		return nil
	})
	require.NoError(t, err)
}

func TestAdminSessionRepository_CleanupExpiredSessions(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		repo := NewAdminSessionRepository(tdb.DB)
		ctx := context.Background()

		admin, err := fixtures.CreateTestAdmin(models.RoleManager)
		require.NoError(t, err)

		live, err := fixtures.CreateTestSession(admin.ID, time.Hour)
		require.NoError(t, err)
		expired, err := fixtures.CreateTestSession(admin.ID, -time.Minute)
		require.NoError(t, err)

		cleaned, err := repo.CleanupExpiredSessions(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), cleaned)

		reloaded, err := repo.BySessionToken(ctx, expired.SessionToken)
		require.NoError(t, err)
		assert.False(t, utils.IsTrue(reloaded.IsActive))

		stillLive, err := repo.BySessionToken(ctx, live.SessionToken)
		require.NoError(t, err)
		assert.True(t, stillLive.IsValid())

		// Idempotent on a second pass
		again, err := repo.CleanupExpiredSessions(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), again)

		return nil
	})
	require.NoError(t, err)
}
