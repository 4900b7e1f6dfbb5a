// Package testing provides test utilities and database setup for testing the admin system
package testing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mathrand "math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/storelinehq/storeline-admin/models"
	"github.com/storelinehq/storeline-admin/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext behind every fixture admin's hash
const TestPassword = "TestPass123!"

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestAdmin creates an active admin with the given role and its
// default permission set. The password is TestPassword.
func (tf *TestFixtures) CreateTestAdmin(role models.Role) (*models.Admin, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	permissions := models.PermissionList{}
	if defaults, ok := models.RoleDefaultPermissions[role]; ok && defaults != nil {
		permissions = append(permissions, defaults...)
	}

	admin := &models.Admin{
		UUID:         uuid.New(),
		Email:        fmt.Sprintf("admin.%s.%d@example.com", role, mathrand.Intn(1000000)),
		PasswordHash: string(hashedPassword),
		FullName:     "Test Admin",
		Role:         role,
		Permissions:  permissions,
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}

	return admin, nil
}

// CreateTestSession creates an active session for the admin, expiring
// ttl from now. A negative ttl produces an already-expired session.
func (tf *TestFixtures) CreateTestSession(adminID uint, ttl time.Duration) (*models.AdminSession, error) {
	token, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &models.AdminSession{
		CorrelationID: uuid.New(),
		AdminID:       adminID,
		SessionToken:  token,
		IsActive:      utils.ToPtr(true),
		ExpiresAt:     utils.UTCNow().Add(ttl),
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	return session, nil
}

// CreateTestProduct creates an active product with a unique SKU
func (tf *TestFixtures) CreateTestProduct() (*models.Product, error) {
	product := &models.Product{
		UUID:       uuid.New(),
		Name:       "Test Product",
		SKU:        fmt.Sprintf("SKU-%d", mathrand.Intn(1000000)),
		PriceCents: 1999,
		Stock:      10,
		IsActive:   utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create test product: %w", err)
	}

	return product, nil
}

// GenerateSecureToken returns a hex string of length bytes of entropy
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
