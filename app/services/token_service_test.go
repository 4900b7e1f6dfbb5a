// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"testing"
	"time"

	"github.com/storelinehq/storeline-admin/models"
	"github.com/storelinehq/storeline-admin/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService() (TokenService, error) {
	return NewTokenService(
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		"test-secret-key-for-jwt-signing-32-chars", // secretKey
	)
}

func testAdmin(role models.Role, perms models.PermissionList) *models.Admin {
	return &models.Admin{
		ID:          42,
		Email:       "admin@example.com",
		Role:        role,
		Permissions: perms,
		IsActive:    utils.ToPtr(true),
	}
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		useRSAKeys  bool
		secretKey   string
		expectError bool
	}{
		{
			name:        "valid symmetric key configuration",
			secretKey:   "test-secret-key-for-jwt-signing-32-chars",
			expectError: false,
		},
		{
			name:        "missing secret key",
			secretKey:   "",
			expectError: true,
		},
		{
			name:        "rsa mode without keys",
			useRSAKeys:  true,
			secretKey:   "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(
				7*24*time.Hour,
				"test-issuer",
				"test-audience",
				tt.useRSAKeys,
				"",
				"",
				tt.secretKey,
			)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, service)
			}
		})
	}
}

func TestGenerateAdminToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	admin := testAdmin(models.RoleManager, models.PermissionList{models.PermProductsView})

	token, claims, err := service.GenerateAdminToken(admin)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	require.NotNil(t, claims)

	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, admin.Email, claims.Email)
	assert.Equal(t, models.RoleManager, claims.Role)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt, time.Minute)
}

func TestGenerateAdminToken_UniqueTokenIDs(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	admin := testAdmin(models.RoleSupport, nil)

	_, first, err := service.GenerateAdminToken(admin)
	require.NoError(t, err)
	_, second, err := service.GenerateAdminToken(admin)
	require.NoError(t, err)

	assert.NotEqual(t, first.TokenID, second.TokenID)
}

func TestValidateAdminToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	admin := testAdmin(models.RoleManager, models.PermissionList{
		models.PermProductsView,
		models.PermOrdersView,
	})

	token, issued, err := service.GenerateAdminToken(admin)
	require.NoError(t, err)

	claims, err := service.ValidateAdminToken(token)
	require.NoError(t, err)

	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, admin.Email, claims.Email)
	assert.Equal(t, admin.Role, claims.Role)
	assert.Equal(t, issued.TokenID, claims.TokenID)
	assert.ElementsMatch(t, admin.Permissions, claims.Permissions)
}

func TestValidateAdminToken_Errors(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	// A token signed with a different key must fail signature checks
	otherService, err := NewTokenService(
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false,
		"",
		"",
		"another-secret-key-for-jwt-signing-32ch",
	)
	require.NoError(t, err)

	foreignToken, _, err := otherService.GenerateAdminToken(testAdmin(models.RoleManager, nil))
	require.NoError(t, err)

	// A token with a TTL in the past must fail as expired
	expiredService, err := NewTokenService(
		-time.Minute,
		"test-issuer",
		"test-audience",
		false,
		"",
		"",
		"test-secret-key-for-jwt-signing-32-chars",
	)
	require.NoError(t, err)

	expiredToken, _, err := expiredService.GenerateAdminToken(testAdmin(models.RoleManager, nil))
	require.NoError(t, err)

	tests := []struct {
		name      string
		token     string
		wantError error
	}{
		{
			name:      "malformed token",
			token:     "not-a-jwt",
			wantError: ErrTokenMalformed,
		},
		{
			name:      "wrong signing key",
			token:     foreignToken,
			wantError: ErrTokenSignatureInvalid,
		},
		{
			name:      "expired token",
			token:     expiredToken,
			wantError: ErrTokenExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateAdminToken(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.wantError)
		})
	}
}

func TestAccessTokenTTL(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, service.AccessTokenTTL())
}
