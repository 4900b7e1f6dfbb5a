// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/storelinehq/storeline-admin/app/dto"
	"github.com/storelinehq/storeline-admin/models"
	"github.com/storelinehq/storeline-admin/repository"
	"github.com/storelinehq/storeline-admin/utils"
	"gorm.io/gorm"
)

// ProductFlow provides catalog CRUD behind the permission gates
type ProductFlow interface {
	CreateProduct(ctx context.Context, request *dto.CreateProductRequest) (*dto.ProductDTO, error)
	ListProducts(ctx context.Context, request *dto.ListProductsRequest) (*dto.ListProductsResponse, error)
	UpdateProduct(ctx context.Context, productUUID string, request *dto.UpdateProductRequest) (*dto.ProductDTO, error)
	DeactivateProduct(ctx context.Context, productUUID string) error
}

// ProductFlowImpl implements the product business flow
type ProductFlowImpl struct {
	productRepo repository.ProductRepository
	db          *gorm.DB
}

// NewProductFlow creates a new product flow instance
func NewProductFlow(productRepo repository.ProductRepository, db *gorm.DB) ProductFlow {
	return &ProductFlowImpl{
		productRepo: productRepo,
		db:          db,
	}
}

// CreateProduct inserts a new product with a unique SKU
func (pf *ProductFlowImpl) CreateProduct(ctx context.Context, request *dto.CreateProductRequest) (*dto.ProductDTO, error) {
	var created *models.Product

	err := repository.WithTransaction(ctx, pf.db, func(ctx context.Context) error {
		existing, err := pf.productRepo.BySKU(ctx, request.SKU)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrSKUAlreadyExists
		}

		created = &models.Product{
			UUID:       uuid.New(),
			Name:       request.Name,
			SKU:        request.SKU,
			PriceCents: request.PriceCents,
			Stock:      request.Stock,
			IsActive:   utils.ToPtr(true),
		}

		return pf.productRepo.Save(ctx, created)
	})

	if err != nil {
		if IsSKUAlreadyExists(err) {
			return nil, NewBusinessError("SKU_TAKEN", fmt.Sprintf("SKU already in use: %s", request.SKU), err)
		}
		return nil, NewBusinessError("PRODUCT_CREATE_FAILED", "Failed to create product", err)
	}

	result := ToProductDTO(*created)
	return &result, nil
}

// ListProducts returns a paginated product list
func (pf *ProductFlowImpl) ListProducts(ctx context.Context, request *dto.ListProductsRequest) (*dto.ListProductsResponse, error) {
	page := request.Page
	if page < 1 {
		page = 1
	}
	pageSize := request.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := models.ProductFilter{
		Name:     request.Name,
		IsActive: request.IsActive,
	}

	total, err := pf.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_LIST_FAILED", "Failed to count products", err)
	}

	products, err := pf.productRepo.ByFilter(ctx, filter, "id DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_LIST_FAILED", "Failed to list products", err)
	}

	items := make([]dto.ProductDTO, 0, len(products))
	for _, product := range products {
		items = append(items, ToProductDTO(*product))
	}

	return &dto.ListProductsResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// UpdateProduct changes the mutable product fields
func (pf *ProductFlowImpl) UpdateProduct(ctx context.Context, productUUID string, request *dto.UpdateProductRequest) (*dto.ProductDTO, error) {
	var updated *models.Product

	err := repository.WithTransaction(ctx, pf.db, func(ctx context.Context) error {
		product, err := pf.productRepo.ByUUID(ctx, productUUID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}

		if request.Name != nil {
			product.Name = *request.Name
		}
		if request.PriceCents != nil {
			product.PriceCents = *request.PriceCents
		}
		if request.Stock != nil {
			product.Stock = *request.Stock
		}

		if err := pf.productRepo.Update(ctx, product); err != nil {
			return err
		}

		updated = product
		return nil
	})

	if err != nil {
		if IsProductNotFound(err) {
			return nil, NewBusinessError("PRODUCT_NOT_FOUND", "Product not found", err)
		}
		return nil, NewBusinessError("PRODUCT_UPDATE_FAILED", "Failed to update product", err)
	}

	result := ToProductDTO(*updated)
	return &result, nil
}

// DeactivateProduct soft-deletes by flipping the active flag
func (pf *ProductFlowImpl) DeactivateProduct(ctx context.Context, productUUID string) error {
	err := repository.WithTransaction(ctx, pf.db, func(ctx context.Context) error {
		product, err := pf.productRepo.ByUUID(ctx, productUUID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}

		return pf.productRepo.SetActive(ctx, product.ID, false)
	})

	if err != nil {
		if IsProductNotFound(err) {
			return NewBusinessError("PRODUCT_NOT_FOUND", "Product not found", err)
		}
		return NewBusinessError("PRODUCT_DEACTIVATE_FAILED", "Failed to deactivate product", err)
	}

	return nil
}
