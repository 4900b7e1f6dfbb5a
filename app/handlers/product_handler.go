// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/storelinehq/storeline-admin/app/dto"
	businessflow "github.com/storelinehq/storeline-admin/business_flow"
)

// ProductHandlerInterface defines the contract for product handlers
type ProductHandlerInterface interface {
	CreateProduct(c fiber.Ctx) error
	ListProducts(c fiber.Ctx) error
	UpdateProduct(c fiber.Ctx) error
	DeactivateProduct(c fiber.Ctx) error
}

// ProductHandler handles product catalog HTTP requests
type ProductHandler struct {
	flow      businessflow.ProductFlow
	validator *validator.Validate
}

// NewProductHandler creates a new product handler
func NewProductHandler(flow businessflow.ProductFlow) ProductHandlerInterface {
	return &ProductHandler{
		flow:      flow,
		validator: newValidator(),
	}
}

// ErrorResponse standard JSON error
func (h *ProductHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
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
func (h *ProductHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateProduct creates a new product
// @Summary Create product
// @Description Create a new product in the catalog
// @Tags Products
// @Accept json
// @Produce json
// @Param request body dto.CreateProductRequest true "New product data"
// @Success 201 {object} dto.APIResponse{data=dto.ProductDTO} "Product created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "SKU already in use"
// @Router /api/v1/products [post]
func (h *ProductHandler) CreateProduct(c fiber.Ctx) error {
	var req dto.CreateProductRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	result, err := h.flow.CreateProduct(h.createRequestContext(c, "/api/v1/products"), &req)
	if err != nil {
		if businessflow.IsSKUAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "SKU already in use", dto.ErrorSKUTaken, nil)
		}

		log.Println("Create product failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create product", "PRODUCT_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Product created", result)
}

// ListProducts lists products with pagination and filters
// @Summary List products
// @Description List products with pagination and optional name and active filters
// @Tags Products
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param name query string false "Filter by name, partial match"
// @Param is_active query bool false "Filter by active state"
// @Success 200 {object} dto.APIResponse{data=dto.ListProductsResponse} "Product list"
// @Router /api/v1/products [get]
func (h *ProductHandler) ListProducts(c fiber.Ctx) error {
	var req dto.ListProductsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	result, err := h.flow.ListProducts(h.createRequestContext(c, "/api/v1/products"), &req)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", "INVALID_PAGINATION", nil)
		}

		log.Println("List products failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list products", "PRODUCT_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Products fetched", result)
}

// UpdateProduct updates a product
// @Summary Update product
// @Description Update a product's name, price, or stock
// @Tags Products
// @Accept json
// @Produce json
// @Param uuid path string true "Product UUID"
// @Param request body dto.UpdateProductRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.ProductDTO} "Product updated"
// @Failure 404 {object} dto.APIResponse "Product not found"
// @Router /api/v1/products/{uuid} [patch]
func (h *ProductHandler) UpdateProduct(c fiber.Ctx) error {
	productUUID := c.Params("uuid")
	if productUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Product UUID is required", "INVALID_REQUEST", nil)
	}

	var req dto.UpdateProductRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	result, err := h.flow.UpdateProduct(h.createRequestContext(c, "/api/v1/products/:uuid"), productUUID, &req)
	if err != nil {
		if businessflow.IsProductNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", dto.ErrorProductNotFound, nil)
		}

		log.Println("Update product failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update product", "PRODUCT_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Product updated", result)
}

// DeactivateProduct removes a product from sale
// @Summary Deactivate product
// @Description Mark a product inactive so it no longer appears in storefronts
// @Tags Products
// @Produce json
// @Param uuid path string true "Product UUID"
// @Success 200 {object} dto.APIResponse "Product deactivated"
// @Failure 404 {object} dto.APIResponse "Product not found"
// @Router /api/v1/products/{uuid} [delete]
func (h *ProductHandler) DeactivateProduct(c fiber.Ctx) error {
	productUUID := c.Params("uuid")
	if productUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Product UUID is required", "INVALID_REQUEST", nil)
	}

	if err := h.flow.DeactivateProduct(h.createRequestContext(c, "/api/v1/products/:uuid"), productUUID); err != nil {
		if businessflow.IsProductNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", dto.ErrorProductNotFound, nil)
		}

		log.Println("Deactivate product failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to deactivate product", "PRODUCT_DEACTIVATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Product deactivated", nil)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *ProductHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	// Add request-scoped values for observability
	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}
