// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/storelinehq/storeline-admin/app/dto"
	"github.com/storelinehq/storeline-admin/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToAdminDTO converts an admin model to its API representation
func ToAdminDTO(admin models.Admin) dto.AdminDTO {
	permissions := make([]string, 0, len(admin.Permissions))
	for _, p := range admin.Permissions {
		permissions = append(permissions, string(p))
	}

	out := dto.AdminDTO{
		ID:          admin.ID,
		UUID:        admin.UUID.String(),
		Email:       admin.Email,
		FullName:    admin.FullName,
		Role:        string(admin.Role),
		Permissions: permissions,
		IsActive:    admin.IsActive,
		CreatedAt:   admin.CreatedAt.Format(time.RFC3339),
	}
	if admin.LastLoginAt != nil {
		out.LastLoginAt = admin.LastLoginAt.Format(time.RFC3339)
	}

	return out
}

func ToAdminSessionDTO(session models.AdminSession) dto.AdminSessionDTO {
	return dto.AdminSessionDTO{
		AccessToken: session.SessionToken,
		ExpiresIn:   int(time.Until(session.ExpiresAt).Seconds()),
		TokenType:   "Bearer",
		CreatedAt:   session.CreatedAt.Format(time.RFC3339),
	}
}

func ToProductDTO(product models.Product) dto.ProductDTO {
	return dto.ProductDTO{
		ID:         product.ID,
		UUID:       product.UUID.String(),
		Name:       product.Name,
		SKU:        product.SKU,
		PriceCents: product.PriceCents,
		Stock:      product.Stock,
		IsActive:   product.IsActive,
		CreatedAt:  product.CreatedAt.Format(time.RFC3339),
	}
}
