// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/storelinehq/storeline-admin/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// AdminRepository defines operations for admins
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByEmail(ctx context.Context, email string) (*models.Admin, error)
	ByUUID(ctx context.Context, uuid string) (*models.Admin, error)
	ByResetToken(ctx context.Context, token string) (*models.Admin, error)
	UpdatePassword(ctx context.Context, adminID uint, passwordHash string) error
	UpdateLastLogin(ctx context.Context, adminID uint, at time.Time) error
	UpdateProfile(ctx context.Context, adminID uint, fullName *string, permissions models.PermissionList) error
	SetActive(ctx context.Context, adminID uint, active bool) error
	SetResetToken(ctx context.Context, adminID uint, token *string, expiresAt *time.Time) error
}

// AdminSessionRepository defines operations for admin sessions
type AdminSessionRepository interface {
	Repository[models.AdminSession, models.AdminSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.AdminSession, error)
	ListActiveSessionsByAdmin(ctx context.Context, adminID uint) ([]*models.AdminSession, error)
	Invalidate(ctx context.Context, sessionID uint) error
	InvalidateAllForAdmin(ctx context.Context, adminID uint) error
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByAdmin(ctx context.Context, adminID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
	ListSecurityEvents(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}

// ProductRepository defines operations for products
type ProductRepository interface {
	Repository[models.Product, models.ProductFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Product, error)
	BySKU(ctx context.Context, sku string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	SetActive(ctx context.Context, productID uint, active bool) error
}
