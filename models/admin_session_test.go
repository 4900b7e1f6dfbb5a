// Package models contains domain entities and business models for the admin system
package models

import (
	"testing"
	"time"

	"github.com/storelinehq/storeline-admin/utils"
	"github.com/stretchr/testify/assert"
)

func TestAdminSessionIsValid(t *testing.T) {
	tests := []struct {
		name      string
		isActive  *bool
		expiresAt time.Time
		want      bool
	}{
		{"active and unexpired", utils.ToPtr(true), time.Now().Add(time.Hour), true},
		{"revoked", utils.ToPtr(false), time.Now().Add(time.Hour), false},
		{"expired", utils.ToPtr(true), time.Now().Add(-time.Minute), false},
		{"revoked and expired", utils.ToPtr(false), time.Now().Add(-time.Minute), false},
		{"nil active flag", nil, time.Now().Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &AdminSession{IsActive: tt.isActive, ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, session.IsValid())
		})
	}
}

func TestAdminSessionIsExpired(t *testing.T) {
	unexpired := &AdminSession{ExpiresAt: time.Now().Add(time.Hour)}
	assert.False(t, unexpired.IsExpired())

	expired := &AdminSession{ExpiresAt: time.Now().Add(-time.Second)}
	assert.True(t, expired.IsExpired())
}
