// Package models contains domain entities and business models for the admin system
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/storelinehq/storeline-admin/utils"
)

type AdminSession struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CorrelationID uuid.UUID `gorm:"type:uuid;not null;index:idx_admin_sessions_correlation_id" json:"correlation_id"`
	AdminID       uint      `gorm:"not null;index:idx_admin_sessions_admin_id" json:"admin_id"`
	Admin         Admin     `gorm:"foreignKey:AdminID;references:ID" json:"admin,omitempty"`
	SessionToken  string    `gorm:"size:512;not null;uniqueIndex:idx_admin_sessions_session_token" json:"-"` // Never serialize token
	IPAddress     *string   `gorm:"type:inet;index:idx_admin_sessions_ip_address" json:"ip_address,omitempty"`
	UserAgent     *string   `gorm:"type:text" json:"user_agent,omitempty"`
	IsActive      *bool     `gorm:"default:true;index:idx_admin_sessions_is_active" json:"is_active"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	ExpiresAt     time.Time `gorm:"not null;index:idx_admin_sessions_expires_at" json:"expires_at"`
}

func (AdminSession) TableName() string {
	return "admin_sessions"
}

// AdminSessionFilter represents filter criteria for session queries
type AdminSessionFilter struct {
	ID            *uint
	CorrelationID *uuid.UUID
	AdminID       *uint
	SessionToken  *string
	IsActive      *bool
	IPAddress     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	ExpiresAfter  *time.Time
	ExpiresBefore *time.Time
}

func (s *AdminSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsValid covers the session row itself. Callers must still check the
// owning admin's active flag; the row cannot see it.
func (s *AdminSession) IsValid() bool {
	return utils.IsTrue(s.IsActive) && !s.IsExpired()
}
