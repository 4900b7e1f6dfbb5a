// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/storelinehq/storeline-admin/app/dto"
	"github.com/storelinehq/storeline-admin/app/services"
	"github.com/storelinehq/storeline-admin/models"
	"github.com/storelinehq/storeline-admin/repository"
	"github.com/storelinehq/storeline-admin/utils"
)

// AdminTokenCookieName is the cookie the login handler sets and the
// middleware reads. The Authorization header is the fallback for API
// clients that do not carry cookies.
const AdminTokenCookieName = "admin_token"

const authLookupTimeout = 10 * time.Second

// AuthMiddleware authenticates admin requests. A token by itself is
// never enough: the matching session row must still be active and
// unexpired, and the owning admin must still be active at the time of
// the request.
type AuthMiddleware struct {
	tokenService    services.TokenService
	revocationSvc   services.RevocationService
	sessionRepo     repository.AdminSessionRepository
	adminRepo       repository.AdminRepository
	strictForbidden bool
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(
	tokenService services.TokenService,
	revocationSvc services.RevocationService,
	sessionRepo repository.AdminSessionRepository,
	adminRepo repository.AdminRepository,
	strictForbidden bool,
) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService:    tokenService,
		revocationSvc:   revocationSvc,
		sessionRepo:     sessionRepo,
		adminRepo:       adminRepo,
		strictForbidden: strictForbidden,
	}
}

func unauthorized(c fiber.Ctx, message, code string) error {
	recordAuthRejection(code)
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: code},
	})
}

// ExtractToken reads the admin token from the request. The cookie wins
// over the Authorization header when both are present.
func ExtractToken(c fiber.Ctx) string {
	if cookie := c.Cookies(AdminTokenCookieName); cookie != "" {
		return cookie
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// Authenticate validates the admin token, checks the revocation list,
// loads the session row, and re-fetches the admin so deactivation and
// logout take effect on the very next request.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token := ExtractToken(c)
		if token == "" {
			return unauthorized(c, "Authentication required", "MISSING_ACCESS_TOKEN")
		}

		claims, err := m.tokenService.ValidateAdminToken(token)
		if err != nil {
			var code, msg string
			if errors.Is(err, services.ErrTokenExpired) {
				code = "TOKEN_EXPIRED"
				msg = "Access token has expired"
			} else if errors.Is(err, services.ErrTokenMalformed) {
				code = "TOKEN_MALFORMED"
				msg = "Malformed access token"
			} else if errors.Is(err, services.ErrTokenSignatureInvalid) {
				code = "TOKEN_SIGNATURE_INVALID"
				msg = "Invalid token signature"
			} else if errors.Is(err, services.ErrTokenInvalid) {
				code = "TOKEN_INVALID"
				msg = "Invalid access token"
			} else {
				code = "TOKEN_VALIDATION_FAILED"
				msg = "Token validation failed"
			}
			return unauthorized(c, msg, code)
		}

		ctx, cancel := context.WithTimeout(context.Background(), authLookupTimeout)
		defer cancel()

		// Fast path: a revoked jti dies here without touching the DB.
		// A Redis failure falls through; the session row below is the
		// authoritative check and catches logged-out tokens anyway.
		if revoked, err := m.revocationSvc.IsRevoked(ctx, claims.TokenID); err == nil && revoked {
			return unauthorized(c, "Access token has been revoked", "TOKEN_REVOKED")
		}

		session, err := m.sessionRepo.BySessionToken(ctx, token)
		if err != nil || session == nil {
			return unauthorized(c, "Session not found", "SESSION_NOT_FOUND")
		}
		if !session.IsValid() {
			return unauthorized(c, "Session is no longer valid", "SESSION_INVALID")
		}

		admin, err := m.adminRepo.ByID(ctx, session.AdminID)
		if err != nil || admin == nil {
			return unauthorized(c, "Admin account not found", "ADMIN_NOT_FOUND")
		}
		if !utils.IsTrue(admin.IsActive) {
			return unauthorized(c, "Admin account is inactive", "ADMIN_INACTIVE")
		}

		c.Locals("admin_id", admin.ID)
		c.Locals("admin", admin)
		c.Locals("session_id", session.ID)
		c.Locals("session_token", token)
		c.Locals("token_id", claims.TokenID)
		c.Locals("token_claims", claims)

		// Store RequestID for audit logging
		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// forbidden answers a permission failure for an already-authenticated
// admin. Some legacy frontends only understand 401 for every auth
// failure; strictForbidden=false keeps them working.
func (m *AuthMiddleware) forbidden(c fiber.Ctx) error {
	route := c.Path()
	if r := c.Route(); r != nil && r.Path != "" {
		route = r.Path
	}
	recordPermissionDenial(route)

	status := fiber.StatusForbidden
	if !m.strictForbidden {
		status = fiber.StatusUnauthorized
	}
	return c.Status(status).JSON(dto.APIResponse{
		Success: false,
		Message: "Insufficient permissions",
		Error:   dto.ErrorDetail{Code: "INSUFFICIENT_PERMISSIONS"},
	})
}

// RequireAll passes only admins holding every listed permission.
// An empty list passes any authenticated admin.
func (m *AuthMiddleware) RequireAll(perms ...models.Permission) fiber.Handler {
	return func(c fiber.Ctx) error {
		admin, ok := GetAdminFromContext(c)
		if !ok {
			return unauthorized(c, "Authentication required", "AUTHENTICATION_REQUIRED")
		}
		if !admin.HasAllPermissions(perms...) {
			return m.forbidden(c)
		}
		return c.Next()
	}
}

// RequireAny passes admins holding at least one of the listed
// permissions. An empty list passes nobody.
func (m *AuthMiddleware) RequireAny(perms ...models.Permission) fiber.Handler {
	return func(c fiber.Ctx) error {
		admin, ok := GetAdminFromContext(c)
		if !ok {
			return unauthorized(c, "Authentication required", "AUTHENTICATION_REQUIRED")
		}
		if !admin.HasAnyPermission(perms...) {
			return m.forbidden(c)
		}
		return c.Next()
	}
}

// GetAdminFromContext extracts the authenticated admin from the request context
func GetAdminFromContext(c fiber.Ctx) (*models.Admin, bool) {
	admin, ok := c.Locals("admin").(*models.Admin)
	return admin, ok
}

// GetAdminIDFromContext extracts admin ID from the request context
func GetAdminIDFromContext(c fiber.Ctx) (uint, bool) {
	adminID, ok := c.Locals("admin_id").(uint)
	return adminID, ok
}

// GetSessionTokenFromContext extracts the raw session token from the request context
func GetSessionTokenFromContext(c fiber.Ctx) (string, bool) {
	token, ok := c.Locals("session_token").(string)
	return token, ok
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.AdminTokenClaims, bool) {
	claims, ok := c.Locals("token_claims").(*services.AdminTokenClaims)
	return claims, ok
}
