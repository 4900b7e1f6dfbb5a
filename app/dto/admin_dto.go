// Package dto contains Data Transfer Objects for API request and response structures
package dto

// AdminDTO represents an admin profile in API responses
type AdminDTO struct {
	ID          uint     `json:"id" example:"1"`
	UUID        string   `json:"uuid" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	Email       string   `json:"email" example:"admin@storeline.io"`
	FullName    string   `json:"full_name" example:"Jordan Lee"`
	Role        string   `json:"role" example:"manager"`
	Permissions []string `json:"permissions"`
	IsActive    *bool    `json:"is_active" example:"true"`
	CreatedAt   string   `json:"created_at" example:"2024-01-15T10:30:00Z"`
	LastLoginAt string   `json:"last_login_at,omitempty" example:"2024-01-15T10:30:00Z"`
}

// AdminSessionDTO represents an issued token in login responses
type AdminSessionDTO struct {
	AccessToken string `json:"access_token" example:"jwt"`
	ExpiresIn   int    `json:"expires_in" example:"604800"`
	TokenType   string `json:"token_type" example:"Bearer"`
	CreatedAt   string `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// AdminLoginRequest represents the request payload for admin login
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"admin@storeline.io"`
	Password string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// AdminLoginResponse represents the successful login response
type AdminLoginResponse struct {
	Admin   AdminDTO        `json:"admin"`
	Session AdminSessionDTO `json:"session"`
}

// AdminForgotPasswordRequest represents the request to initiate a password reset
type AdminForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255" example:"admin@storeline.io"`
}

// AdminResetPasswordRequest represents the request to complete a password reset
type AdminResetPasswordRequest struct {
	Token           string `json:"token" validate:"required,min=32,max=255"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=100,password_strength" example:"NewSecurePass123!"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword" example:"NewSecurePass123!"`
}

// CreateAdminRequest represents the payload for creating an admin
type CreateAdminRequest struct {
	Email       string   `json:"email" validate:"required,email,max=255" example:"new.admin@storeline.io"`
	Password    string   `json:"password" validate:"required,min=8,max=100,password_strength" example:"SecurePass123!"`
	FullName    string   `json:"full_name" validate:"required,min=2,max=255" example:"Jordan Lee"`
	Role        string   `json:"role" validate:"required" example:"support"`
	Permissions []string `json:"permissions,omitempty"`
}

// UpdateAdminRequest represents the payload for updating an admin
type UpdateAdminRequest struct {
	FullName    *string  `json:"full_name,omitempty" validate:"omitempty,min=2,max=255"`
	Permissions []string `json:"permissions,omitempty"`
}

// ListAdminsRequest carries pagination and filters for admin listing
type ListAdminsRequest struct {
	Page     int     `query:"page" validate:"omitempty,min=1"`
	PageSize int     `query:"page_size" validate:"omitempty,min=1,max=100"`
	Role     *string `query:"role" validate:"omitempty"`
	IsActive *bool   `query:"is_active" validate:"omitempty"`
}

// ListAdminsResponse represents a paginated admin list
type ListAdminsResponse struct {
	Items    []AdminDTO `json:"items"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// Common error codes for admin auth operations
const (
	ErrorInvalidCredentials = "INVALID_CREDENTIALS"
	ErrorUnauthorized       = "UNAUTHORIZED"
	ErrorForbidden          = "FORBIDDEN"
	ErrorAdminNotFound      = "ADMIN_NOT_FOUND"
	ErrorEmailTaken         = "EMAIL_TAKEN"
	ErrorInvalidRole        = "INVALID_ROLE"
	ErrorInvalidPermission  = "INVALID_PERMISSION"
	ErrorResetTokenInvalid  = "RESET_TOKEN_INVALID"
	ErrorResetTokenExpired  = "RESET_TOKEN_EXPIRED"
)
