// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/storelinehq/storeline-admin/app/dto"
	"github.com/storelinehq/storeline-admin/app/services"
	"github.com/storelinehq/storeline-admin/models"
	"github.com/storelinehq/storeline-admin/repository"
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

func newAuthFlowForTest(t *testing.T, tdb *testhelpers.TestDB) AdminAuthFlow {
	t.Helper()

	tokenService, err := services.NewTokenService(
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false,
		"",
		"",
		"test-secret-key-for-jwt-signing-32-chars",
	)
	require.NoError(t, err)

	return NewAdminAuthFlow(
		repository.NewAdminRepository(tdb.DB),
		repository.NewAdminSessionRepository(tdb.DB),
		repository.NewAuditLogRepository(tdb.DB),
		tokenService,
		nil, // revocation is best-effort and not under test here
		services.NewNotificationService(services.NewMockEmailProvider()),
		tdb.DB,
	)
}

func testMetadata() *ClientMetadata {
	return NewClientMetadata("192.0.2.10", "test-agent/1.0")
}

func TestLogin_Success(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		flow := newAuthFlowForTest(t, tdb)
		ctx := context.Background()

		admin, err := fixtures.CreateTestAdmin(models.RoleManager)
		require.NoError(t, err)

		resp, err := flow.Login(ctx, &dto.AdminLoginRequest{
			Email:    admin.Email,
			Password: testhelpers.TestPassword,
		}, testMetadata())
		require.NoError(t, err)
		require.NotNil(t, resp)

		assert.Equal(t, admin.Email, resp.Admin.Email)
		assert.Equal(t, string(models.RoleManager), resp.Admin.Role)
		assert.NotEmpty(t, resp.Session.AccessToken)
		assert.Equal(t, "Bearer", resp.Session.TokenType)
		assert.Greater(t, resp.Session.ExpiresIn, 0)
		assert.NotEmpty(t, resp.Admin.LastLoginAt)

		// The login must have opened an active session row
		sessionRepo := repository.NewAdminSessionRepository(tdb.DB)
		session, err := sessionRepo.BySessionToken(ctx, resp.Session.AccessToken)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, admin.ID, session.AdminID)
		assert.True(t, session.IsValid())

		return nil
	})
	require.NoError(t, err)
}

func TestLogin_CaseInsensitiveEmail(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		flow := newAuthFlowForTest(t, tdb)

		admin, err := fixtures.CreateTestAdmin(models.RoleSupport)
		require.NoError(t, err)

		resp, err := flow.Login(context.Background(), &dto.AdminLoginRequest{
			Email:    "  " + strings.ToUpper(admin.Email) + "  ",
			Password: testhelpers.TestPassword,
		}, testMetadata())
		require.NoError(t, err)
		assert.Equal(t, admin.Email, resp.Admin.Email)

		return nil
	})
	require.NoError(t, err)
}

// TestLogin_FailureCollapse verifies that unknown email, wrong password
// and deactivated account all yield the same error code and message, so
// responses cannot be used to enumerate accounts.
func TestLogin_FailureCollapse(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		flow := newAuthFlowForTest(t, tdb)
		ctx := context.Background()

		active, err := fixtures.CreateTestAdmin(models.RoleManager)
		require.NoError(t, err)

		inactive, err := fixtures.CreateTestAdmin(models.RoleSupport)
		require.NoError(t, err)
		require.NoError(t, tdb.DB.Model(inactive).Update("is_active", false).Error)

		tests := []struct {
			name     string
			email    string
			password string
		}{
			{"unknown email", "nobody@example.com", testhelpers.TestPassword},
			{"wrong password", active.Email, "WrongPass123!"},
			{"deactivated account", inactive.Email, testhelpers.TestPassword},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, err := flow.Login(ctx, &dto.AdminLoginRequest{
					Email:    tt.email,
					Password: tt.password,
				}, testMetadata())
				assert.Nil(t, resp)
				require.Error(t, err)

				var bizErr *BusinessError
				require.True(t, errors.As(err, &bizErr))
				assert.Equal(t, "INVALID_CREDENTIALS", bizErr.Code)
				assert.Equal(t, "Invalid credentials", bizErr.Message)
				assert.True(t, IsAuthFailure(err))
			})
		}

		return nil
	})
	require.NoError(t, err)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		flow := newAuthFlowForTest(t, tdb)
		ctx := context.Background()

		admin, err := fixtures.CreateTestAdmin(models.RoleManager)
		require.NoError(t, err)

		resp, err := flow.Login(ctx, &dto.AdminLoginRequest{
			Email:    admin.Email,
			Password: testhelpers.TestPassword,
		}, testMetadata())
		require.NoError(t, err)

		token := resp.Session.AccessToken
		require.NoError(t, flow.Logout(ctx, token, testMetadata()))

		sessionRepo := repository.NewAdminSessionRepository(tdb.DB)
		session, err := sessionRepo.BySessionToken(ctx, token)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.False(t, utils.IsTrue(session.IsActive))
		assert.False(t, session.IsValid())

		// Logging out again is a no-op, not an error
		require.NoError(t, flow.Logout(ctx, token, testMetadata()))

		return nil
	})
	require.NoError(t, err)
}

func TestLogout_UnknownTokenIsNoOp(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		flow := newAuthFlowForTest(t, tdb)

		assert.NoError(t, flow.Logout(context.Background(), "no-such-token", testMetadata()))

		return nil
	})
	require.NoError(t, err)
}

// lastLoginFailRepo refuses the last-login timestamp write while
// delegating everything else to the real repository.
type lastLoginFailRepo struct {
	repository.AdminRepository
}

func (r *lastLoginFailRepo) UpdateLastLogin(ctx context.Context, adminID uint, at time.Time) error {
	return errors.New("last login write refused")
}

func TestLogin_LastLoginWriteFailureDoesNotFailLogin(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		ctx := context.Background()

		tokenService, err := services.NewTokenService(
			7*24*time.Hour,
			"test-issuer",
			"test-audience",
			false,
			"",
			"",
			"test-secret-key-for-jwt-signing-32-chars",
		)
		require.NoError(t, err)

		flow := NewAdminAuthFlow(
			&lastLoginFailRepo{AdminRepository: repository.NewAdminRepository(tdb.DB)},
			repository.NewAdminSessionRepository(tdb.DB),
			repository.NewAuditLogRepository(tdb.DB),
			tokenService,
			nil,
			services.NewNotificationService(services.NewMockEmailProvider()),
			tdb.DB,
		)

		admin, err := fixtures.CreateTestAdmin(models.RoleManager)
		require.NoError(t, err)

		resp, err := flow.Login(ctx, &dto.AdminLoginRequest{
			Email:    admin.Email,
			Password: testhelpers.TestPassword,
		}, testMetadata())
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.NotEmpty(t, resp.Session.AccessToken)
		assert.Empty(t, resp.Admin.LastLoginAt)

		// The session survived the failed timestamp write
		sessionRepo := repository.NewAdminSessionRepository(tdb.DB)
		session, err := sessionRepo.BySessionToken(ctx, resp.Session.AccessToken)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.True(t, session.IsValid())

		return nil
	})
	require.NoError(t, err)
}

func TestForgotPassword_StoresResetToken(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		flow := newAuthFlowForTest(t, tdb)
		ctx := context.Background()

		admin, err := fixtures.CreateTestAdmin(models.RoleAnalyst)
		require.NoError(t, err)

		require.NoError(t, flow.ForgotPassword(ctx, &dto.AdminForgotPasswordRequest{
			Email: admin.Email,
		}, testMetadata()))

		adminRepo := repository.NewAdminRepository(tdb.DB)
		reloaded, err := adminRepo.ByID(ctx, admin.ID)
		require.NoError(t, err)
		require.NotNil(t, reloaded.ResetToken)
		require.NotNil(t, reloaded.ResetTokenExpiresAt)
		assert.True(t, reloaded.ResetTokenExpiresAt.After(utils.UTCNow()))

		return nil
	})
	require.NoError(t, err)
}

func TestForgotPassword_UnknownEmailSucceeds(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		flow := newAuthFlowForTest(t, tdb)

		// Unknown accounts get the same outcome as known ones
		err := flow.ForgotPassword(context.Background(), &dto.AdminForgotPasswordRequest{
			Email: "nobody@example.com",
		}, testMetadata())
		assert.NoError(t, err)

		return nil
	})
	require.NoError(t, err)
}

func TestResetPassword_RotatesHashAndKillsSessions(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		flow := newAuthFlowForTest(t, tdb)
		ctx := context.Background()

		admin, err := fixtures.CreateTestAdmin(models.RoleManager)
		require.NoError(t, err)

		session, err := fixtures.CreateTestSession(admin.ID, time.Hour)
		require.NoError(t, err)

		require.NoError(t, flow.ForgotPassword(ctx, &dto.AdminForgotPasswordRequest{
			Email: admin.Email,
		}, testMetadata()))

		adminRepo := repository.NewAdminRepository(tdb.DB)
		withToken, err := adminRepo.ByID(ctx, admin.ID)
		require.NoError(t, err)
		require.NotNil(t, withToken.ResetToken)

		newPassword := "RotatedPass456!"
		require.NoError(t, flow.ResetPassword(ctx, &dto.AdminResetPasswordRequest{
			Token:           *withToken.ResetToken,
			NewPassword:     newPassword,
			ConfirmPassword: newPassword,
		}, testMetadata()))

		// Old password stops working, new one logs in
		_, err = flow.Login(ctx, &dto.AdminLoginRequest{
			Email:    admin.Email,
			Password: testhelpers.TestPassword,
		}, testMetadata())
		require.Error(t, err)
		assert.True(t, IsAuthFailure(err))

		_, err = flow.Login(ctx, &dto.AdminLoginRequest{
			Email:    admin.Email,
			Password: newPassword,
		}, testMetadata())
		assert.NoError(t, err)

		// The pre-existing session is dead and the token is cleared
		sessionRepo := repository.NewAdminSessionRepository(tdb.DB)
		reloaded, err := sessionRepo.BySessionToken(ctx, session.SessionToken)
		require.NoError(t, err)
		require.NotNil(t, reloaded)
		assert.False(t, reloaded.IsValid())

		cleared, err := adminRepo.ByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.Nil(t, cleared.ResetToken)
		assert.Nil(t, cleared.ResetTokenExpiresAt)

		// The token is single-use
		err = flow.ResetPassword(ctx, &dto.AdminResetPasswordRequest{
			Token:           *withToken.ResetToken,
			NewPassword:     newPassword,
			ConfirmPassword: newPassword,
		}, testMetadata())
		require.Error(t, err)
		assert.True(t, IsResetTokenInvalid(err))

		return nil
	})
	require.NoError(t, err)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		flow := newAuthFlowForTest(t, tdb)
		ctx := context.Background()

		admin, err := fixtures.CreateTestAdmin(models.RoleManager)
		require.NoError(t, err)

		token, err := testhelpers.GenerateSecureToken(32)
		require.NoError(t, err)

		expired := utils.UTCNow().Add(-time.Minute)
		adminRepo := repository.NewAdminRepository(tdb.DB)
		require.NoError(t, adminRepo.SetResetToken(ctx, admin.ID, &token, &expired))

		err = flow.ResetPassword(ctx, &dto.AdminResetPasswordRequest{
			Token:           token,
			NewPassword:     "RotatedPass456!",
			ConfirmPassword: "RotatedPass456!",
		}, testMetadata())
		require.Error(t, err)
		assert.True(t, IsResetTokenExpired(err))

		return nil
	})
	require.NoError(t, err)
}
