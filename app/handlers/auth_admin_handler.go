// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/storelinehq/storeline-admin/app/dto"
	"github.com/storelinehq/storeline-admin/app/middleware"
	businessflow "github.com/storelinehq/storeline-admin/business_flow"
	"github.com/storelinehq/storeline-admin/utils"
)

// AdminAuthHandlerInterface defines the contract for admin auth handlers
type AdminAuthHandlerInterface interface {
	Login(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
	Verify(c fiber.Ctx) error
	ForgotPassword(c fiber.Ctx) error
	ResetPassword(c fiber.Ctx) error
	Health(c fiber.Ctx) error
}

// AdminAuthHandler handles admin authentication HTTP requests
type AdminAuthHandler struct {
	authFlow     businessflow.AdminAuthFlow
	validator    *validator.Validate
	cookieSecure bool
}

// NewAdminAuthHandler creates a new admin authentication handler.
// cookieSecure controls the Secure attribute on the session cookie and
// should be true everywhere except local development over plain HTTP.
func NewAdminAuthHandler(authFlow businessflow.AdminAuthFlow, cookieSecure bool) AdminAuthHandlerInterface {
	return &AdminAuthHandler{
		authFlow:     authFlow,
		validator:    newValidator(),
		cookieSecure: cookieSecure,
	}
}

// ErrorResponse standard JSON error
func (h *AdminAuthHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// SuccessResponse standard JSON success
func (h *AdminAuthHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Login authenticates an admin with email and password
// @Summary Admin login
// @Description Authenticate an admin and issue a session token
// @Tags Admin Authentication
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AdminLoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/login [post]
func (h *AdminAuthHandler) Login(c fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.authFlow.Login(h.createRequestContext(c, "/api/v1/auth/login"), &req, metadata)
	if err != nil {
		// Unknown email, wrong password, and inactive account all land
		// here with the same status, body, and code. Anything that
		// distinguishes them would leak which emails have accounts.
		if businessflow.IsAuthFailure(err) {
			middleware.RecordLoginOutcome("invalid_credentials")
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid credentials", dto.ErrorInvalidCredentials, nil)
		}

		log.Println("Admin login failed", err)
		middleware.RecordLoginOutcome("error")
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Login failed", "LOGIN_FAILED", nil)
	}

	h.setSessionCookie(c, result.Session.AccessToken)
	middleware.RecordLoginOutcome("success")

	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// Logout invalidates the current session and revokes its token.
// Logout is idempotent: repeating it with an already-dead or unknown
// token still answers 200.
// @Summary Admin logout
// @Description Invalidate the current admin session
// @Tags Admin Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse "Logout successful"
// @Router /api/v1/auth/logout [post]
func (h *AdminAuthHandler) Logout(c fiber.Ctx) error {
	if token := middleware.ExtractToken(c); token != "" {
		metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
		if err := h.authFlow.Logout(h.createRequestContext(c, "/api/v1/auth/logout"), token, metadata); err != nil {
			log.Println("Admin logout failed", err)
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Logout failed", "LOGOUT_FAILED", nil)
		}
	}

	h.clearSessionCookie(c)

	return h.SuccessResponse(c, fiber.StatusOK, "Logout successful", nil)
}

// Verify returns the authenticated admin's profile. The middleware has
// already re-fetched the admin, so reaching this handler proves the
// token, session, and account are all still live.
// @Summary Verify session
// @Description Return the current admin if the session is still valid
// @Tags Admin Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.AdminDTO} "Session is valid"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Router /api/v1/auth/verify [get]
func (h *AdminAuthHandler) Verify(c fiber.Ctx) error {
	admin, ok := middleware.GetAdminFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", dto.ErrorUnauthorized, nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Session is valid", businessflow.ToAdminDTO(*admin))
}

// ForgotPassword starts the password reset flow
// @Summary Forgot password
// @Description Send a password reset link to the admin's email if the account exists
// @Tags Admin Authentication
// @Accept json
// @Produce json
// @Param request body dto.AdminForgotPasswordRequest true "Account email"
// @Success 200 {object} dto.APIResponse "Reset email dispatched if the account exists"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/auth/forgot-password [post]
func (h *AdminAuthHandler) ForgotPassword(c fiber.Ctx) error {
	var req dto.AdminForgotPasswordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if err := h.authFlow.ForgotPassword(h.createRequestContext(c, "/api/v1/auth/forgot-password"), &req, metadata); err != nil {
		log.Println("Forgot password failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Password reset failed", "PASSWORD_RESET_FAILED", nil)
	}

	// The flow answers identically for known and unknown emails.
	return h.SuccessResponse(c, fiber.StatusOK, "If the account exists, a reset email has been sent", nil)
}

// ResetPassword completes the password reset flow
// @Summary Reset password
// @Description Set a new password using a reset token and revoke all sessions
// @Tags Admin Authentication
// @Accept json
// @Produce json
// @Param request body dto.AdminResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} dto.APIResponse "Password reset successful"
// @Failure 400 {object} dto.APIResponse "Invalid or expired token"
// @Router /api/v1/auth/reset-password [post]
func (h *AdminAuthHandler) ResetPassword(c fiber.Ctx) error {
	var req dto.AdminResetPasswordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if err := h.authFlow.ResetPassword(h.createRequestContext(c, "/api/v1/auth/reset-password"), &req, metadata); err != nil {
		if businessflow.IsResetTokenInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Reset token is invalid", dto.ErrorResetTokenInvalid, nil)
		}
		if businessflow.IsResetTokenExpired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Reset token has expired", dto.ErrorResetTokenExpired, nil)
		}

		log.Println("Reset password failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Password reset failed", "PASSWORD_RESET_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Password reset successful", nil)
}

// Health handles health check requests
// @Summary Health Check
// @Description Check the health status of the API
// @Tags Health
// @Produce json
// @Success 200 {object} dto.APIResponse "Service is healthy"
// @Router /api/v1/health [get]
func (h *AdminAuthHandler) Health(c fiber.Ctx) error {
	return h.SuccessResponse(c, fiber.StatusOK, "Admin service is healthy", fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "storeline-admin",
	})
}

func (h *AdminAuthHandler) setSessionCookie(c fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AdminTokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   utils.AccessTokenTTLSeconds,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AdminAuthHandler) clearSessionCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AdminTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *AdminAuthHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	// Add request-scoped values for observability
	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}
