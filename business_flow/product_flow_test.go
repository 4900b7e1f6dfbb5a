// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/storelinehq/storeline-admin/app/dto"
	"github.com/storelinehq/storeline-admin/repository"
	testhelpers "github.com/storelinehq/storeline-admin/testing"
	"github.com/storelinehq/storeline-admin/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductFlowForTest(tdb *testhelpers.TestDB) ProductFlow {
	return NewProductFlow(repository.NewProductRepository(tdb.DB), tdb.DB)
}

func TestCreateProduct(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		flow := newProductFlowForTest(tdb)
		ctx := context.Background()

		created, err := flow.CreateProduct(ctx, &dto.CreateProductRequest{
			Name:       "Canvas Tote Bag",
			SKU:        "TOTE-001",
			PriceCents: 2499,
			Stock:      120,
		})
		require.NoError(t, err)
		assert.Equal(t, "TOTE-001", created.SKU)
		assert.Equal(t, int64(2499), created.PriceCents)
		assert.True(t, utils.IsTrue(created.IsActive))

		// The SKU is unique across products
		dup, err := flow.CreateProduct(ctx, &dto.CreateProductRequest{
			Name:       "Another Tote",
			SKU:        "TOTE-001",
			PriceCents: 1999,
		})
		assert.Nil(t, dup)
		require.Error(t, err)

		var bizErr *BusinessError
		require.True(t, errors.As(err, &bizErr))
		assert.Equal(t, "SKU_TAKEN", bizErr.Code)
		assert.True(t, IsSKUAlreadyExists(err))

		return nil
	})
	require.NoError(t, err)
}

func TestUpdateProduct(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		flow := newProductFlowForTest(tdb)
		ctx := context.Background()

		product, err := fixtures.CreateTestProduct()
		require.NoError(t, err)

		newPrice := int64(3499)
		newStock := 5
		updated, err := flow.UpdateProduct(ctx, product.UUID.String(), &dto.UpdateProductRequest{
			PriceCents: &newPrice,
			Stock:      &newStock,
		})
		require.NoError(t, err)
		assert.Equal(t, newPrice, updated.PriceCents)
		assert.Equal(t, newStock, updated.Stock)
		assert.Equal(t, product.Name, updated.Name)

		_, err = flow.UpdateProduct(ctx, "550e8400-e29b-41d4-a716-446655440000", &dto.UpdateProductRequest{
			PriceCents: &newPrice,
		})
		require.Error(t, err)
		assert.True(t, IsProductNotFound(err))

		return nil
	})
	require.NoError(t, err)
}

func TestListProducts(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		flow := newProductFlowForTest(tdb)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			_, err := fixtures.CreateTestProduct()
			require.NoError(t, err)
		}

		resp, err := flow.ListProducts(ctx, &dto.ListProductsRequest{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.Total)
		assert.Len(t, resp.Items, 2)

		// Out-of-range values fall back to defaults
		fallback, err := flow.ListProducts(ctx, &dto.ListProductsRequest{Page: 0, PageSize: 1000})
		require.NoError(t, err)
		assert.Equal(t, 1, fallback.Page)
		assert.Equal(t, 20, fallback.PageSize)

		return nil
	})
	require.NoError(t, err)
}

func TestDeactivateProduct(t *testing.T) {
	requireTestDB(t)

	err := testhelpers.TestWithDB(func(tdb *testhelpers.TestDB) error {
		fixtures := testhelpers.NewTestFixtures(tdb)
		flow := newProductFlowForTest(tdb)
		ctx := context.Background()

		product, err := fixtures.CreateTestProduct()
		require.NoError(t, err)

		require.NoError(t, flow.DeactivateProduct(ctx, product.UUID.String()))

		productRepo := repository.NewProductRepository(tdb.DB)
		reloaded, err := productRepo.ByID(ctx, product.ID)
		require.NoError(t, err)
		assert.False(t, utils.IsTrue(reloaded.IsActive))

		err = flow.DeactivateProduct(ctx, "550e8400-e29b-41d4-a716-446655440000")
		require.Error(t, err)
		assert.True(t, IsProductNotFound(err))

		return nil
	})
	require.NoError(t, err)
}
