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
)

// AdminManagementHandlerInterface defines the contract for admin management handlers
type AdminManagementHandlerInterface interface {
	CreateAdmin(c fiber.Ctx) error
	ListAdmins(c fiber.Ctx) error
	UpdateAdmin(c fiber.Ctx) error
	DeactivateAdmin(c fiber.Ctx) error
	ExportAdmins(c fiber.Ctx) error
}

// AdminManagementHandler handles admin account management HTTP requests
type AdminManagementHandler struct {
	flow      businessflow.AdminManagementFlow
	validator *validator.Validate
}

// NewAdminManagementHandler creates a new admin management handler
func NewAdminManagementHandler(flow businessflow.AdminManagementFlow) AdminManagementHandlerInterface {
	return &AdminManagementHandler{
		flow:      flow,
		validator: newValidator(),
	}
}

// ErrorResponse standard JSON error
func (h *AdminManagementHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
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
func (h *AdminManagementHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateAdmin creates a new admin account
// @Summary Create admin
// @Description Create a new admin account with a role and optional explicit permissions
// @Tags Admin Management
// @Accept json
// @Produce json
// @Param request body dto.CreateAdminRequest true "New admin data"
// @Success 201 {object} dto.APIResponse{data=dto.AdminDTO} "Admin created"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid role"
// @Failure 409 {object} dto.APIResponse "Email already in use"
// @Router /api/v1/admins [post]
func (h *AdminManagementHandler) CreateAdmin(c fiber.Ctx) error {
	var req dto.CreateAdminRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	actor, ok := middleware.GetAdminFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", dto.ErrorUnauthorized, nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.CreateAdmin(h.createRequestContext(c, "/api/v1/admins"), &req, actor, metadata)
	if err != nil {
		if businessflow.IsEmailAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Email already in use", dto.ErrorEmailTaken, nil)
		}
		if businessflow.IsInvalidRole(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown role", dto.ErrorInvalidRole, nil)
		}
		if businessflow.IsInvalidPermission(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown permission", dto.ErrorInvalidPermission, nil)
		}

		log.Println("Create admin failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create admin", "ADMIN_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Admin created", result)
}

// ListAdmins lists admin accounts with pagination and filters
// @Summary List admins
// @Description List admin accounts with pagination and optional role and active filters
// @Tags Admin Management
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param role query string false "Filter by role"
// @Param is_active query bool false "Filter by active state"
// @Success 200 {object} dto.APIResponse{data=dto.ListAdminsResponse} "Admin list"
// @Failure 400 {object} dto.APIResponse "Invalid pagination"
// @Router /api/v1/admins [get]
func (h *AdminManagementHandler) ListAdmins(c fiber.Ctx) error {
	var req dto.ListAdminsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	result, err := h.flow.ListAdmins(h.createRequestContext(c, "/api/v1/admins"), &req)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", "INVALID_PAGINATION", nil)
		}

		log.Println("List admins failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list admins", "ADMIN_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Admins fetched", result)
}

// UpdateAdmin updates an admin's profile and permissions
// @Summary Update admin
// @Description Update an admin's name and stored permission set
// @Tags Admin Management
// @Accept json
// @Produce json
// @Param uuid path string true "Admin UUID"
// @Param request body dto.UpdateAdminRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.AdminDTO} "Admin updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Admin not found"
// @Router /api/v1/admins/{uuid} [patch]
func (h *AdminManagementHandler) UpdateAdmin(c fiber.Ctx) error {
	adminUUID := c.Params("uuid")
	if adminUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Admin UUID is required", "INVALID_REQUEST", nil)
	}

	var req dto.UpdateAdminRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	actor, ok := middleware.GetAdminFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", dto.ErrorUnauthorized, nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.UpdateAdmin(h.createRequestContext(c, "/api/v1/admins/:uuid"), adminUUID, &req, actor, metadata)
	if err != nil {
		if businessflow.IsAdminNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Admin not found", dto.ErrorAdminNotFound, nil)
		}
		if businessflow.IsInvalidPermission(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown permission", dto.ErrorInvalidPermission, nil)
		}

		log.Println("Update admin failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update admin", "ADMIN_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Admin updated", result)
}

// DeactivateAdmin deactivates an admin and revokes all of its sessions
// @Summary Deactivate admin
// @Description Deactivate an admin account; all live sessions stop working immediately
// @Tags Admin Management
// @Produce json
// @Param uuid path string true "Admin UUID"
// @Success 200 {object} dto.APIResponse "Admin deactivated"
// @Failure 404 {object} dto.APIResponse "Admin not found"
// @Router /api/v1/admins/{uuid} [delete]
func (h *AdminManagementHandler) DeactivateAdmin(c fiber.Ctx) error {
	adminUUID := c.Params("uuid")
	if adminUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Admin UUID is required", "INVALID_REQUEST", nil)
	}

	actor, ok := middleware.GetAdminFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", dto.ErrorUnauthorized, nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if err := h.flow.DeactivateAdmin(h.createRequestContext(c, "/api/v1/admins/:uuid"), adminUUID, actor, metadata); err != nil {
		if businessflow.IsAdminNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Admin not found", dto.ErrorAdminNotFound, nil)
		}

		log.Println("Deactivate admin failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to deactivate admin", "ADMIN_DEACTIVATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Admin deactivated", nil)
}

// ExportAdmins exports all admin accounts as an Excel workbook
// @Summary Export admins
// @Description Download all admin accounts as an Excel file
// @Tags Admin Management
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary "Excel file"
// @Router /api/v1/admins/export [get]
func (h *AdminManagementHandler) ExportAdmins(c fiber.Ctx) error {
	filename, data, err := h.flow.ExportAdminsExcel(h.createRequestContext(c, "/api/v1/admins/export"))
	if err != nil {
		log.Println("Export admins failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export admins", "ADMIN_EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *AdminManagementHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	// Add request-scoped values for observability
	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}
