// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storelinehq/storeline-admin/app/dto"
	"github.com/storelinehq/storeline-admin/app/services"
	"github.com/storelinehq/storeline-admin/models"
	"github.com/storelinehq/storeline-admin/repository"
	"github.com/storelinehq/storeline-admin/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminAuthFlow handles admin authentication and password reset operations
type AdminAuthFlow interface {
	Login(ctx context.Context, request *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error)
	Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) error
	ForgotPassword(ctx context.Context, request *dto.AdminForgotPasswordRequest, metadata *ClientMetadata) error
	ResetPassword(ctx context.Context, request *dto.AdminResetPasswordRequest, metadata *ClientMetadata) error
}

// AdminAuthFlowImpl implements the admin authentication business flow
type AdminAuthFlowImpl struct {
	adminRepo       repository.AdminRepository
	sessionRepo     repository.AdminSessionRepository
	auditRepo       repository.AuditLogRepository
	tokenService    services.TokenService
	revocationSvc   services.RevocationService
	notificationSvc services.NotificationService
	db              *gorm.DB
}

// NewAdminAuthFlow creates a new admin auth flow instance
func NewAdminAuthFlow(
	adminRepo repository.AdminRepository,
	sessionRepo repository.AdminSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	revocationSvc services.RevocationService,
	notificationSvc services.NotificationService,
	db *gorm.DB,
) AdminAuthFlow {
	return &AdminAuthFlowImpl{
		adminRepo:       adminRepo,
		sessionRepo:     sessionRepo,
		auditRepo:       auditRepo,
		tokenService:    tokenService,
		revocationSvc:   revocationSvc,
		notificationSvc: notificationSvc,
		db:              db,
	}
}

// Login verifies admin credentials and opens a session. Unknown email,
// wrong password and inactive account all surface as the same
// INVALID_CREDENTIALS error; the audit log keeps the real reason.
func (af *AdminAuthFlowImpl) Login(ctx context.Context, request *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error) {
	if err := af.validateLoginRequest(request); err != nil {
		return nil, NewBusinessError("INVALID_CREDENTIALS", "Invalid credentials", err)
	}

	var admin *models.Admin

	resp, err := af.WithLoginTransaction(ctx, func(ctx context.Context) (*dto.AdminLoginResponse, error) {
		var err error
		admin, err = af.adminRepo.ByEmail(ctx, normalizeEmail(request.Email))
		if err != nil {
			return nil, err
		}
		if admin == nil {
			return nil, ErrAdminNotFound
		}

		if !utils.IsTrue(admin.IsActive) {
			return nil, ErrAdminInactive
		}

		if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(request.Password)); err != nil {
			return nil, ErrIncorrectPassword
		}

		session, err := af.CreateSession(ctx, admin, metadata)
		if err != nil {
			return nil, err
		}

		return &dto.AdminLoginResponse{
			Admin:   ToAdminDTO(*admin),
			Session: ToAdminSessionDTO(*session),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Login failed: %s", err.Error())
		_ = af.LogAuthEvent(ctx, admin, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		if IsAuthFailure(err) {
			return nil, NewBusinessError("INVALID_CREDENTIALS", "Invalid credentials", err)
		}
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	// Best-effort outside the transaction; a failed timestamp write
	// must not undo the login or roll back the new session.
	now := utils.UTCNow()
	if err := af.adminRepo.UpdateLastLogin(ctx, admin.ID, now); err != nil {
		log.Printf("Failed to record last login for admin %d: %v", admin.ID, err)
	} else {
		admin.LastLoginAt = &now
		resp.Admin.LastLoginAt = now.Format(time.RFC3339)
	}

	msg := fmt.Sprintf("Admin logged in successfully: %d", resp.Admin.ID)
	_ = af.LogAuthEvent(ctx, admin, models.AuditActionLoginSuccess, msg, true, nil, metadata)

	return resp, nil
}

// Logout invalidates the session behind the token and tombstones its
// jti. An unknown or already-invalidated token is a no-op, so repeating
// a logout succeeds just like the first call.
func (af *AdminAuthFlowImpl) Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) error {
	// Claims are only needed for the revocation tombstone; an
	// unparseable token still gets its session row checked.
	claims, _ := af.tokenService.ValidateAdminToken(sessionToken)

	var admin *models.Admin

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		session, err := af.sessionRepo.BySessionToken(ctx, sessionToken)
		if err != nil {
			return err
		}
		if session == nil {
			return nil
		}

		admin, err = af.adminRepo.ByID(ctx, session.AdminID)
		if err != nil {
			return err
		}

		return af.sessionRepo.Invalidate(ctx, session.ID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Logout failed: %s", err.Error())
		_ = af.LogAuthEvent(ctx, admin, models.AuditActionLogout, errMsg, false, &errMsg, metadata)
		return NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}

	// Revocation is best-effort; the dead session row already blocks the token
	if claims != nil && af.revocationSvc != nil {
		_ = af.revocationSvc.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
	}

	if admin != nil {
		_ = af.LogAuthEvent(ctx, admin, models.AuditActionLogout, "Admin logged out", true, nil, metadata)
	}

	return nil
}

// ForgotPassword stores a reset token and mails it. The outcome is
// identical whether or not the email exists.
func (af *AdminAuthFlowImpl) ForgotPassword(ctx context.Context, request *dto.AdminForgotPasswordRequest, metadata *ClientMetadata) error {
	var admin *models.Admin

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		var err error
		admin, err = af.adminRepo.ByEmail(ctx, normalizeEmail(request.Email))
		if err != nil {
			return err
		}
		if admin == nil || !utils.IsTrue(admin.IsActive) {
			// Nothing to do, and nothing to reveal
			admin = nil
			return nil
		}

		token, err := generateResetToken()
		if err != nil {
			return err
		}

		expiresAt := utils.UTCNowAdd(utils.ResetTokenTTL)
		if err := af.adminRepo.SetResetToken(ctx, admin.ID, &token, &expiresAt); err != nil {
			return err
		}

		subject := "Password reset request"
		message := fmt.Sprintf("A password reset was requested for your account. Your reset token is: %s. It expires in 30 minutes. If you did not request this, ignore this email.", token)
		if err := af.notificationSvc.SendEmail(admin.Email, subject, message); err != nil {
			errMsg := fmt.Sprintf("Reset token stored but email failed: %v", err)
			_ = af.LogAuthEvent(ctx, admin, models.AuditActionPasswordResetFailed, errMsg, false, &errMsg, metadata)
		}

		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Forgot password failed: %s", err.Error())
		_ = af.LogAuthEvent(ctx, admin, models.AuditActionPasswordResetFailed, errMsg, false, &errMsg, metadata)
		return NewBusinessError("FORGOT_PASSWORD_FAILED", "Forgot password failed", err)
	}

	if admin != nil {
		msg := fmt.Sprintf("Password reset requested: %d", admin.ID)
		_ = af.LogAuthEvent(ctx, admin, models.AuditActionPasswordResetRequested, msg, true, nil, metadata)
	}

	return nil
}

// ResetPassword completes a reset: validates the token, rotates the
// hash, and kills every session the admin had open
func (af *AdminAuthFlowImpl) ResetPassword(ctx context.Context, request *dto.AdminResetPasswordRequest, metadata *ClientMetadata) error {
	var admin *models.Admin

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		var err error
		admin, err = af.adminRepo.ByResetToken(ctx, request.Token)
		if err != nil {
			return err
		}
		if admin == nil {
			return ErrResetTokenInvalid
		}
		if admin.ResetTokenExpiresAt == nil || utils.UTCNow().After(*admin.ResetTokenExpiresAt) {
			return ErrResetTokenExpired
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		// UpdatePassword also clears the reset token
		if err := af.adminRepo.UpdatePassword(ctx, admin.ID, string(hashedPassword)); err != nil {
			return err
		}

		return af.sessionRepo.InvalidateAllForAdmin(ctx, admin.ID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Password reset failed: %s", err.Error())
		_ = af.LogAuthEvent(ctx, admin, models.AuditActionPasswordResetFailed, errMsg, false, &errMsg, metadata)

		switch {
		case IsResetTokenInvalid(err):
			return NewBusinessError("RESET_TOKEN_INVALID", "Reset token is invalid", err)
		case IsResetTokenExpired(err):
			return NewBusinessError("RESET_TOKEN_EXPIRED", "Reset token has expired", err)
		default:
			return NewBusinessError("PASSWORD_RESET_FAILED", "Password reset failed", err)
		}
	}

	msg := fmt.Sprintf("Password reset completed: %d", admin.ID)
	_ = af.LogAuthEvent(ctx, admin, models.AuditActionPasswordResetCompleted, msg, true, nil, metadata)
	_ = af.LogAuthEvent(ctx, admin, models.AuditActionSessionsRevoked, "All sessions invalidated after password reset", true, nil, metadata)

	return nil
}

// Helpers

// CreateSession issues a token and persists the matching session row
func (af *AdminAuthFlowImpl) CreateSession(ctx context.Context, admin *models.Admin, metadata *ClientMetadata) (*models.AdminSession, error) {
	token, claims, err := af.tokenService.GenerateAdminToken(admin)
	if err != nil {
		return nil, err
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	session := &models.AdminSession{
		AdminID:       admin.ID,
		CorrelationID: uuid.New(),
		SessionToken:  token,
		ExpiresAt:     claims.ExpiresAt,
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
		CreatedAt:     claims.IssuedAt,
	}

	if err := af.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (af *AdminAuthFlowImpl) LogAuthEvent(ctx context.Context, admin *models.Admin, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	var adminID *uint
	if admin != nil {
		adminID = &admin.ID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		AdminID:      adminID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return af.auditRepo.Save(ctx, audit)
}

func (af *AdminAuthFlowImpl) WithLoginTransaction(ctx context.Context, fn func(context.Context) (*dto.AdminLoginResponse, error)) (*dto.AdminLoginResponse, error) {
	var result *dto.AdminLoginResponse
	var fnErr error

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (af *AdminAuthFlowImpl) validateLoginRequest(request *dto.AdminLoginRequest) error {
	if request == nil || request.Email == "" {
		return ErrAdminNotFound
	}
	if request.Password == "" {
		return ErrIncorrectPassword
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateResetToken returns a 64-hex-char random token
func generateResetToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", bytes), nil
}
