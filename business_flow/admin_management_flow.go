// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/storelinehq/storeline-admin/app/dto"
	"github.com/storelinehq/storeline-admin/models"
	"github.com/storelinehq/storeline-admin/repository"
	"github.com/storelinehq/storeline-admin/utils"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminManagementFlow provides use cases for managing admin accounts
type AdminManagementFlow interface {
	CreateAdmin(ctx context.Context, request *dto.CreateAdminRequest, actor *models.Admin, metadata *ClientMetadata) (*dto.AdminDTO, error)
	ListAdmins(ctx context.Context, request *dto.ListAdminsRequest) (*dto.ListAdminsResponse, error)
	UpdateAdmin(ctx context.Context, adminUUID string, request *dto.UpdateAdminRequest, actor *models.Admin, metadata *ClientMetadata) (*dto.AdminDTO, error)
	DeactivateAdmin(ctx context.Context, adminUUID string, actor *models.Admin, metadata *ClientMetadata) error
	ExportAdminsExcel(ctx context.Context) (string, []byte, error)
}

// AdminManagementFlowImpl implements the admin management business flow
type AdminManagementFlowImpl struct {
	adminRepo   repository.AdminRepository
	sessionRepo repository.AdminSessionRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

// NewAdminManagementFlow creates a new admin management flow instance
func NewAdminManagementFlow(
	adminRepo repository.AdminRepository,
	sessionRepo repository.AdminSessionRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) AdminManagementFlow {
	return &AdminManagementFlowImpl{
		adminRepo:   adminRepo,
		sessionRepo: sessionRepo,
		auditRepo:   auditRepo,
		db:          db,
	}
}

// CreateAdmin provisions a new admin. Permissions default from the role
// map; explicit permissions in the request override the defaults. The
// role map is never consulted again after this point.
func (mf *AdminManagementFlowImpl) CreateAdmin(ctx context.Context, request *dto.CreateAdminRequest, actor *models.Admin, metadata *ClientMetadata) (*dto.AdminDTO, error) {
	role := models.Role(request.Role)
	if !role.IsValid() {
		return nil, NewBusinessError("INVALID_ROLE", fmt.Sprintf("Unknown role: %s", request.Role), ErrInvalidRole)
	}

	permissions, err := resolvePermissions(role, request.Permissions)
	if err != nil {
		return nil, NewBusinessError("INVALID_PERMISSION", err.Error(), ErrInvalidPermission)
	}

	var created *models.Admin

	err = repository.WithTransaction(ctx, mf.db, func(ctx context.Context) error {
		email := normalizeEmail(request.Email)

		existing, err := mf.adminRepo.ByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		created = &models.Admin{
			UUID:         uuid.New(),
			Email:        email,
			PasswordHash: string(hashedPassword),
			FullName:     request.FullName,
			Role:         role,
			Permissions:  permissions,
			IsActive:     utils.ToPtr(true),
		}

		return mf.adminRepo.Save(ctx, created)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Admin creation failed: %s", err.Error())
		_ = mf.logManagementEvent(ctx, actor, models.AuditActionAdminCreated, errMsg, false, &errMsg, metadata)

		if IsEmailAlreadyExists(err) {
			return nil, NewBusinessError("EMAIL_TAKEN", "Email already in use", err)
		}
		return nil, NewBusinessError("ADMIN_CREATE_FAILED", "Failed to create admin", err)
	}

	msg := fmt.Sprintf("Admin created: %s (%s)", created.Email, created.Role)
	_ = mf.logManagementEvent(ctx, actor, models.AuditActionAdminCreated, msg, true, nil, metadata)

	result := ToAdminDTO(*created)
	return &result, nil
}

// ListAdmins returns a paginated admin list
func (mf *AdminManagementFlowImpl) ListAdmins(ctx context.Context, request *dto.ListAdminsRequest) (*dto.ListAdminsResponse, error) {
	page := request.Page
	if page < 1 {
		page = 1
	}
	pageSize := request.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := models.AdminFilter{
		IsActive: request.IsActive,
	}
	if request.Role != nil {
		role := models.Role(*request.Role)
		if !role.IsValid() {
			return nil, NewBusinessError("INVALID_ROLE", fmt.Sprintf("Unknown role: %s", *request.Role), ErrInvalidRole)
		}
		filter.Role = &role
	}

	total, err := mf.adminRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LIST_FAILED", "Failed to count admins", err)
	}

	admins, err := mf.adminRepo.ByFilter(ctx, filter, "id DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LIST_FAILED", "Failed to list admins", err)
	}

	items := make([]dto.AdminDTO, 0, len(admins))
	for _, admin := range admins {
		items = append(items, ToAdminDTO(*admin))
	}

	return &dto.ListAdminsResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// UpdateAdmin changes profile fields and the stored permission set
func (mf *AdminManagementFlowImpl) UpdateAdmin(ctx context.Context, adminUUID string, request *dto.UpdateAdminRequest, actor *models.Admin, metadata *ClientMetadata) (*dto.AdminDTO, error) {
	var updated *models.Admin

	err := repository.WithTransaction(ctx, mf.db, func(ctx context.Context) error {
		admin, err := mf.adminRepo.ByUUID(ctx, adminUUID)
		if err != nil {
			return err
		}
		if admin == nil {
			return ErrAdminNotFound
		}

		var permissions models.PermissionList
		if request.Permissions != nil {
			permissions, err = validatePermissions(request.Permissions)
			if err != nil {
				return ErrInvalidPermission
			}
		}

		if err := mf.adminRepo.UpdateProfile(ctx, admin.ID, request.FullName, permissions); err != nil {
			return err
		}

		updated, err = mf.adminRepo.ByID(ctx, admin.ID)
		return err
	})

	if err != nil {
		errMsg := fmt.Sprintf("Admin update failed: %s", err.Error())
		_ = mf.logManagementEvent(ctx, actor, models.AuditActionAdminUpdated, errMsg, false, &errMsg, metadata)

		switch {
		case IsAdminNotFound(err):
			return nil, NewBusinessError("ADMIN_NOT_FOUND", "Admin not found", err)
		case IsInvalidPermission(err):
			return nil, NewBusinessError("INVALID_PERMISSION", "Unknown permission in request", err)
		default:
			return nil, NewBusinessError("ADMIN_UPDATE_FAILED", "Failed to update admin", err)
		}
	}

	msg := fmt.Sprintf("Admin updated: %s", updated.Email)
	_ = mf.logManagementEvent(ctx, actor, models.AuditActionAdminUpdated, msg, true, nil, metadata)

	result := ToAdminDTO(*updated)
	return &result, nil
}

// DeactivateAdmin disables the account and kills all of its sessions in
// the same transaction, so issued tokens stop working immediately
func (mf *AdminManagementFlowImpl) DeactivateAdmin(ctx context.Context, adminUUID string, actor *models.Admin, metadata *ClientMetadata) error {
	var target *models.Admin

	err := repository.WithTransaction(ctx, mf.db, func(ctx context.Context) error {
		var err error
		target, err = mf.adminRepo.ByUUID(ctx, adminUUID)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrAdminNotFound
		}

		if err := mf.adminRepo.SetActive(ctx, target.ID, false); err != nil {
			return err
		}

		return mf.sessionRepo.InvalidateAllForAdmin(ctx, target.ID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Admin deactivation failed: %s", err.Error())
		_ = mf.logManagementEvent(ctx, actor, models.AuditActionAdminDeactivated, errMsg, false, &errMsg, metadata)

		if IsAdminNotFound(err) {
			return NewBusinessError("ADMIN_NOT_FOUND", "Admin not found", err)
		}
		return NewBusinessError("ADMIN_DEACTIVATE_FAILED", "Failed to deactivate admin", err)
	}

	msg := fmt.Sprintf("Admin deactivated: %s", target.Email)
	_ = mf.logManagementEvent(ctx, actor, models.AuditActionAdminDeactivated, msg, true, nil, metadata)
	_ = mf.logManagementEvent(ctx, actor, models.AuditActionSessionsRevoked, fmt.Sprintf("All sessions invalidated for admin %d", target.ID), true, nil, metadata)

	return nil
}

// ExportAdminsExcel builds an XLSX workbook with every admin account
func (mf *AdminManagementFlowImpl) ExportAdminsExcel(ctx context.Context) (string, []byte, error) {
	admins, err := mf.adminRepo.ByFilter(ctx, models.AdminFilter{}, "id ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("ADMIN_EXPORT_FAILED", "Failed to fetch admins for export", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Admins"
	xl.SetSheetName("Sheet1", sheet)

	header := []string{"id", "uuid", "email", "full_name", "role", "permissions", "is_active", "last_login_at", "created_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, admin := range admins {
		permissions := ""
		for i, p := range admin.Permissions {
			if i > 0 {
				permissions += ","
			}
			permissions += string(p)
		}
		lastLogin := ""
		if admin.LastLoginAt != nil {
			lastLogin = admin.LastLoginAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			strconv.FormatUint(uint64(admin.ID), 10),
			admin.UUID.String(),
			admin.Email,
			admin.FullName,
			string(admin.Role),
			permissions,
			strconv.FormatBool(utils.IsTrue(admin.IsActive)),
			lastLogin,
			admin.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	filename := fmt.Sprintf("admins_%s.xlsx", utils.UTCNow().Format("20060102"))
	return filename, buf.Bytes(), nil
}

// Helpers

func (mf *AdminManagementFlowImpl) logManagementEvent(ctx context.Context, actor *models.Admin, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	var actorID *uint
	if actor != nil {
		actorID = &actor.ID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		AdminID:      actorID,
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

	return mf.auditRepo.Save(ctx, audit)
}

// resolvePermissions seeds from the role map, letting an explicit
// request list override the defaults
func resolvePermissions(role models.Role, requested []string) (models.PermissionList, error) {
	if len(requested) > 0 {
		return validatePermissions(requested)
	}
	return models.PermissionList(models.RoleDefaultPermissions[role]), nil
}

func validatePermissions(requested []string) (models.PermissionList, error) {
	permissions := make(models.PermissionList, 0, len(requested))
	for _, raw := range requested {
		p := models.Permission(raw)
		if !p.IsValid() {
			return nil, fmt.Errorf("unknown permission: %s", raw)
		}
		permissions = append(permissions, p)
	}
	return permissions, nil
}
