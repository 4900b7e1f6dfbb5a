// Package models contains domain entities and business models for the admin system
package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_products_uuid" json:"uuid"`
	Name       string    `gorm:"size:255;not null;index:idx_products_name" json:"name"`
	SKU        string    `gorm:"size:64;not null;uniqueIndex:uk_products_sku" json:"sku"`
	PriceCents int64     `gorm:"not null" json:"price_cents"`
	Stock      int       `gorm:"not null;default:0" json:"stock"`
	IsActive   *bool     `gorm:"default:true;index:idx_products_is_active" json:"is_active"`
	CreatedAt  time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_products_created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// ProductFilter represents filter criteria for product queries
type ProductFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Name          *string
	SKU           *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
