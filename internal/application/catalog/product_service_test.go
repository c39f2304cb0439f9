package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/shared"
)

type fakeProductRepo struct {
	products map[uuid.UUID]catalog.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]catalog.Product)}
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if p, ok := r.products[id]; ok {
		copy := p
		return &copy, nil
	}
	return nil, nil
}

func (r *fakeProductRepo) FindByCode(_ context.Context, code string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			copy := p
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := r.products[id]
	return ok, nil
}

func (r *fakeProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.products)), nil
}

func TestProductServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a product with an uppercased code", func(t *testing.T) {
		service := NewProductService(newFakeProductRepo())

		resp, err := service.Create(ctx, CreateProductRequest{
			Code: "mat-001",
			Name: "Steel rod",
			Unit: "kg",
			Kind: "raw_material",
		})

		require.NoError(t, err)
		assert.Equal(t, "MAT-001", resp.Code)
		assert.Equal(t, "active", resp.Status)
		assert.True(t, resp.StandardCost.IsZero())
	})

	t.Run("applies an initial standard cost", func(t *testing.T) {
		service := NewProductService(newFakeProductRepo())
		cost := decimal.RequireFromString("12.50")

		resp, err := service.Create(ctx, CreateProductRequest{
			Code:         "FG-001",
			Name:         "Widget",
			Unit:         "pcs",
			Kind:         "finished_good",
			StandardCost: &cost,
		})

		require.NoError(t, err)
		assert.True(t, resp.StandardCost.Equal(cost))
	})

	t.Run("rejects a duplicate code", func(t *testing.T) {
		repo := newFakeProductRepo()
		service := NewProductService(repo)

		_, err := service.Create(ctx, CreateProductRequest{Code: "MAT-002", Name: "A", Unit: "pcs", Kind: "raw_material"})
		require.NoError(t, err)

		_, err = service.Create(ctx, CreateProductRequest{Code: "mat-002", Name: "B", Unit: "pcs", Kind: "raw_material"})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})

	t.Run("rejects an unknown kind", func(t *testing.T) {
		service := NewProductService(newFakeProductRepo())

		_, err := service.Create(ctx, CreateProductRequest{Code: "X", Name: "X", Unit: "pcs", Kind: "service"})
		require.Error(t, err)
	})
}

func TestProductServiceGet(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProductRepo()
	service := NewProductService(repo)

	created, err := service.Create(ctx, CreateProductRequest{Code: "MAT-010", Name: "Bolt", Unit: "pcs", Kind: "raw_material"})
	require.NoError(t, err)

	t.Run("finds by ID", func(t *testing.T) {
		resp, err := service.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "MAT-010", resp.Code)
	})

	t.Run("finds by code", func(t *testing.T) {
		resp, err := service.GetByCode(ctx, "MAT-010")
		require.NoError(t, err)
		assert.Equal(t, created.ID, resp.ID)
	})

	t.Run("returns PRODUCT_NOT_FOUND for an unknown ID", func(t *testing.T) {
		_, err := service.GetByID(ctx, uuid.New())
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRODUCT_NOT_FOUND", domainErr.Code)
	})
}

func TestProductServiceSetStandardCost(t *testing.T) {
	ctx := context.Background()
	service := NewProductService(newFakeProductRepo())

	created, err := service.Create(ctx, CreateProductRequest{Code: "FG-010", Name: "Gadget", Unit: "pcs", Kind: "finished_good"})
	require.NoError(t, err)

	t.Run("updates the planned unit cost", func(t *testing.T) {
		resp, err := service.SetStandardCost(ctx, created.ID, SetStandardCostRequest{
			StandardCost: decimal.RequireFromString("7.25"),
		})
		require.NoError(t, err)
		assert.True(t, resp.StandardCost.Equal(decimal.RequireFromString("7.25")))
	})

	t.Run("rejects a negative cost", func(t *testing.T) {
		_, err := service.SetStandardCost(ctx, created.ID, SetStandardCostRequest{
			StandardCost: decimal.RequireFromString("-1"),
		})
		require.Error(t, err)
	})
}

func TestProductServiceDiscontinue(t *testing.T) {
	ctx := context.Background()
	service := NewProductService(newFakeProductRepo())

	created, err := service.Create(ctx, CreateProductRequest{Code: "MAT-020", Name: "Washer", Unit: "pcs", Kind: "raw_material"})
	require.NoError(t, err)

	resp, err := service.Discontinue(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "discontinued", resp.Status)
}
