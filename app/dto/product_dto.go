// Package dto contains Data Transfer Objects for API request and response structures
package dto

// ProductDTO represents a product in API responses
type ProductDTO struct {
	ID         uint   `json:"id" example:"1"`
	UUID       string `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name       string `json:"name" example:"Canvas Tote Bag"`
	SKU        string `json:"sku" example:"TOTE-001"`
	PriceCents int64  `json:"price_cents" example:"2499"`
	Stock      int    `json:"stock" example:"120"`
	IsActive   *bool  `json:"is_active" example:"true"`
	CreatedAt  string `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// CreateProductRequest represents the payload for creating a product
type CreateProductRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=255" example:"Canvas Tote Bag"`
	SKU        string `json:"sku" validate:"required,min=2,max=64" example:"TOTE-001"`
	PriceCents int64  `json:"price_cents" validate:"required,min=0" example:"2499"`
	Stock      int    `json:"stock" validate:"min=0" example:"120"`
}

// UpdateProductRequest represents the payload for updating a product
type UpdateProductRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	PriceCents *int64  `json:"price_cents,omitempty" validate:"omitempty,min=0"`
	Stock      *int    `json:"stock,omitempty" validate:"omitempty,min=0"`
}

// ListProductsRequest carries pagination and filters for product listing
type ListProductsRequest struct {
	Page     int     `query:"page" validate:"omitempty,min=1"`
	PageSize int     `query:"page_size" validate:"omitempty,min=1,max=100"`
	Name     *string `query:"name" validate:"omitempty,max=255"`
	IsActive *bool   `query:"is_active" validate:"omitempty"`
}

// ListProductsResponse represents a paginated product list
type ListProductsResponse struct {
	Items    []ProductDTO `json:"items"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// Common error codes for product operations
const (
	ErrorProductNotFound = "PRODUCT_NOT_FOUND"
	ErrorSKUTaken        = "SKU_TAKEN"
)
