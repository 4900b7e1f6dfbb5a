// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storelinehq/storeline-admin/app/dto"
	"github.com/storelinehq/storeline-admin/models"
	"github.com/storelinehq/storeline-admin/repository"
	testhelpers "github.com/storelinehq/storeline-admin/testing"
	"github.com/storelinehq/storeline-admin/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newManagementFlowForTest(tdb *testhelpers.TestDB) AdminManagementFlow {
	return NewAdminManagementFlow(
		repository.NewAdminRepository(tdb.DB),
		repository.NewAdminSessionRepository(tdb.DB),
		repository.NewAuditLogRepository(tdb.DB),
		tdb.DB,
	)
}

func TestCreateAdmin_SeedsRolePermissions(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		flow := newManagementFlowForTest(tdb)
		ctx := context.Background()

		actor, err := fixtures.CreateTestAdmin(models.RoleSuperAdmin)
		require.NoError(t, err)

		created, err := flow.CreateAdmin(ctx, &dto.CreateAdminRequest{
			Email:    "New.Support@Example.com",
			Password: "SupportPass123!",
			FullName: "Support Person",
			Role:     string(models.RoleSupport),
		}, actor, testMetadata())
		require.NoError(t, err)

		// Email is normalized, permissions come from the role map
		assert.Equal(t, "new.support@example.com", created.Email)
		assert.Equal(t, string(models.RoleSupport), created.Role)
		want := make([]string, 0)
		for _, p := range models.RoleDefaultPermissions[models.RoleSupport] {
			want = append(want, string(p))
		}
		assert.ElementsMatch(t, want, created.Permissions)
		assert.True(t, utils.IsTrue(created.IsActive))

		return nil
	})
	require.NoError(t, err)
}

func TestCreateAdmin_ExplicitPermissionsOverrideDefaults(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		flow := newManagementFlowForTest(tdb)

		created, err := flow.CreateAdmin(context.Background(), &dto.CreateAdminRequest{
			Email:       "narrow@example.com",
			Password:    "NarrowPass123!",
			FullName:    "Narrow Scope",
			Role:        string(models.RoleManager),
			Permissions: []string{string(models.PermProductsView)},
		}, nil, testMetadata())
		require.NoError(t, err)

		assert.Equal(t, []string{string(models.PermProductsView)}, created.Permissions)

		return nil
	})
	require.NoError(t, err)
}

func TestCreateAdmin_Failures(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		flow := newManagementFlowForTest(tdb)
		ctx := context.Background()

		existing, err := fixtures.CreateTestAdmin(models.RoleSupport)
		require.NoError(t, err)

		tests := []struct {
			name     string
			request  *dto.CreateAdminRequest
			wantCode string
		}{
			{
				name: "duplicate email",
				request: &dto.CreateAdminRequest{
					Email:    existing.Email,
					Password: "AnotherPass123!",
					FullName: "Duplicate",
					Role:     string(models.RoleSupport),
				},
				wantCode: "EMAIL_TAKEN",
			},
			{
				name: "unknown role",
				request: &dto.CreateAdminRequest{
					Email:    "owner@example.com",
					Password: "OwnerPass123!",
					FullName: "Owner",
					Role:     "owner",
				},
				wantCode: "INVALID_ROLE",
			},
			{
				name: "unknown permission",
				request: &dto.CreateAdminRequest{
					Email:       "odd@example.com",
					Password:    "OddPass123!",
					FullName:    "Odd Perms",
					Role:        string(models.RoleSupport),
					Permissions: []string{"products:publish"},
				},
				wantCode: "INVALID_PERMISSION",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				created, err := flow.CreateAdmin(ctx, tt.request, nil, testMetadata())
				assert.Nil(t, created)
				require.Error(t, err)

				var bizErr *BusinessError
				require.True(t, errors.As(err, &bizErr))
				assert.Equal(t, tt.wantCode, bizErr.Code)
			})
		}

		return nil
	})
	require.NoError(t, err)
}

func TestUpdateAdmin(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		flow := newManagementFlowForTest(tdb)
		ctx := context.Background()

		admin, err := fixtures.CreateTestAdmin(models.RoleSupport)
		require.NoError(t, err)

		newName := "Renamed Admin"
		updated, err := flow.UpdateAdmin(ctx, admin.UUID.String(), &dto.UpdateAdminRequest{
			FullName:    &newName,
			Permissions: []string{string(models.PermOrdersView)},
		}, nil, testMetadata())
		require.NoError(t, err)

		assert.Equal(t, newName, updated.FullName)
		assert.Equal(t, []string{string(models.PermOrdersView)}, updated.Permissions)

		_, err = flow.UpdateAdmin(ctx, "550e8400-e29b-41d4-a716-446655440000", &dto.UpdateAdminRequest{
			FullName: &newName,
		}, nil, testMetadata())
		require.Error(t, err)
		assert.True(t, IsAdminNotFound(err))

		return nil
	})
	require.NoError(t, err)
}

func TestDeactivateAdmin_KillsSessions(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		flow := newManagementFlowForTest(tdb)
		ctx := context.Background()

		admin, err := fixtures.CreateTestAdmin(models.RoleManager)
		require.NoError(t, err)

		first, err := fixtures.CreateTestSession(admin.ID, time.Hour)
		require.NoError(t, err)
		second, err := fixtures.CreateTestSession(admin.ID, time.Hour)
		require.NoError(t, err)

		require.NoError(t, flow.DeactivateAdmin(ctx, admin.UUID.String(), nil, testMetadata()))

		adminRepo := repository.NewAdminRepository(tdb.DB)
		reloaded, err := adminRepo.ByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.False(t, utils.IsTrue(reloaded.IsActive))

		sessionRepo := repository.NewAdminSessionRepository(tdb.DB)
		for _, token := range []string{first.SessionToken, second.SessionToken} {
			session, err := sessionRepo.BySessionToken(ctx, token)
			require.NoError(t, err)
			require.NotNil(t, session)
			assert.False(t, session.IsValid())
		}

		return nil
	})
	require.NoError(t, err)
}

func TestListAdmins_Pagination(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		flow := newManagementFlowForTest(tdb)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			_, err := fixtures.CreateTestAdmin(models.RoleSupport)
			require.NoError(t, err)
		}

		resp, err := flow.ListAdmins(ctx, &dto.ListAdminsRequest{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(5), resp.Total)
		assert.Len(t, resp.Items, 2)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 2, resp.PageSize)

		last, err := flow.ListAdmins(ctx, &dto.ListAdminsRequest{Page: 3, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, last.Items, 1)

		role := string(models.RoleManager)
		filtered, err := flow.ListAdmins(ctx, &dto.ListAdminsRequest{Page: 1, PageSize: 10, Role: &role})
		require.NoError(t, err)
		assert.Equal(t, int64(0), filtered.Total)

		badRole := "owner"
		_, err = flow.ListAdmins(ctx, &dto.ListAdminsRequest{Page: 1, PageSize: 10, Role: &badRole})
		require.Error(t, err)
		assert.True(t, IsInvalidRole(err))

		return nil
	})
	require.NoError(t, err)
}

func TestExportAdminsExcel(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		flow := newManagementFlowForTest(tdb)

		admin, err := fixtures.CreateTestAdmin(models.RoleAnalyst)
		require.NoError(t, err)

		filename, data, err := flow.ExportAdminsExcel(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, `^admins_\d{8}\.xlsx$`, filename)
		require.NotEmpty(t, data)

		xl, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer xl.Close()

		rows, err := xl.GetRows("Admins")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "email", rows[0][2])
		assert.Equal(t, admin.Email, rows[1][2])

		return nil
	})
	require.NoError(t, err)
}
