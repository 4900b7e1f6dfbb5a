// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storelinehq/storeline-admin/models"
	"gorm.io/gorm"
)

// AdminSessionRepositoryImpl implements AdminSessionRepository interface
type AdminSessionRepositoryImpl struct {
	*BaseRepository[models.AdminSession, models.AdminSessionFilter]
}

// NewAdminSessionRepository creates a new admin session repository
func NewAdminSessionRepository(db *gorm.DB) AdminSessionRepository {
	return &AdminSessionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AdminSession, models.AdminSessionFilter](db),
	}
}

// BySessionToken retrieves a session by its token. Inactive and expired
// rows are returned too; validity is the caller's decision.
func (r *AdminSessionRepositoryImpl) BySessionToken(ctx context.Context, token string) (*models.AdminSession, error) {
	db := r.getDB(ctx)

	var session models.AdminSession
	err := db.Where("session_token = ?", token).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session by token: %w", err)
	}

	return &session, nil
}

// ListActiveSessionsByAdmin retrieves all live sessions for an admin
func (r *AdminSessionRepositoryImpl) ListActiveSessionsByAdmin(ctx context.Context, adminID uint) ([]*models.AdminSession, error) {
	db := r.getDB(ctx)

	var sessions []*models.AdminSession
	err := db.Where("admin_id = ? AND is_active = ? AND expires_at > ?",
		adminID, true, time.Now()).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions by admin: %w", err)
	}

	return sessions, nil
}

// Invalidate marks a single session inactive
func (r *AdminSessionRepositoryImpl) Invalidate(ctx context.Context, sessionID uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Model(&models.AdminSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}

	return nil
}

// InvalidateAllForAdmin marks every active session for an admin inactive
func (r *AdminSessionRepositoryImpl) InvalidateAllForAdmin(ctx context.Context, adminID uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Model(&models.AdminSession{}).
		Where("admin_id = ? AND is_active = ?", adminID, true).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to invalidate admin sessions: %w", err)
	}

	return nil
}

// CleanupExpiredSessions flips naturally expired rows that are still
// marked active, and reports how many were touched
func (r *AdminSessionRepositoryImpl) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	result := db.Model(&models.AdminSession{}).
		Where("is_active = ? AND expires_at <= ?", true, time.Now()).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		err = result.Error
		return 0, fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}

	return result.RowsAffected, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *AdminSessionRepositoryImpl) applyFilter(query *gorm.DB, filter models.AdminSessionFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.CorrelationID != nil {
		query = query.Where("correlation_id = ?", *filter.CorrelationID)
	}
	if filter.AdminID != nil {
		query = query.Where("admin_id = ?", *filter.AdminID)
	}
	if filter.SessionToken != nil {
		query = query.Where("session_token = ?", *filter.SessionToken)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IPAddress != nil {
		query = query.Where("ip_address = ?", *filter.IPAddress)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	if filter.ExpiresAfter != nil {
		query = query.Where("expires_at > ?", *filter.ExpiresAfter)
	}
	if filter.ExpiresBefore != nil {
		query = query.Where("expires_at < ?", *filter.ExpiresBefore)
	}
	return query
}

// ByFilter retrieves sessions based on filter criteria
func (r *AdminSessionRepositoryImpl) ByFilter(ctx context.Context, filter models.AdminSessionFilter, orderBy string, limit, offset int) ([]*models.AdminSession, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.AdminSession{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var sessions []*models.AdminSession
	err := query.Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// Count returns the number of sessions matching the filter
func (r *AdminSessionRepositoryImpl) Count(ctx context.Context, filter models.AdminSessionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.AdminSession{})

	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any session matching the filter exists
func (r *AdminSessionRepositoryImpl) Exists(ctx context.Context, filter models.AdminSessionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
