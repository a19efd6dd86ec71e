package service_test

import (
	"context"
	"testing"

	"stolarpos/internal/dto"
	"stolarpos/internal/model"
	"stolarpos/internal/repository/repotest"
	"stolarpos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductSvc() (service.ProductService, *repotest.ProductRepo, *repotest.MovementRepo) {
	products := repotest.NewProductRepo()
	movements := &repotest.MovementRepo{}
	return service.NewProductService(products, movements, nil), products, movements
}

func TestClampedStock(t *testing.T) {
	cases := []struct{ current, delta, want int }{
		{5, -2, 3},
		{1, -3, 0},
		{0, -1, 0},
		{2, 4, 6},
		{3, -3, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, service.ClampedStock(c.current, c.delta), "%d%+d", c.current, c.delta)
	}
}

func TestProductCreate_DefaultsAndDuplicate(t *testing.T) {
	svc, _, _ := newProductSvc()
	ctx := context.Background()

	p, err := svc.Create(ctx, dto.CreateProductRequest{Barcode: " 123 ", Name: "Soap", Price: decimal.RequireFromString("2.5"), StockQuantity: 3})
	require.NoError(t, err)
	assert.Equal(t, "123", p.Barcode)
	assert.Equal(t, "general", p.Category)
	assert.Equal(t, 5, p.LowStockThreshold)
	assert.True(t, p.LowStock)

	_, err = svc.Create(ctx, dto.CreateProductRequest{Barcode: "123", Name: "Other"})
	assert.ErrorIs(t, err, service.ErrDuplicateBarcode)
}

func TestProductGetByBarcode(t *testing.T) {
	svc, products, _ := newProductSvc()
	products.Seed("123", "Soap", 10)

	p, err := svc.GetByBarcode(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "Soap", p.Name)
	assert.False(t, p.LowStock)

	_, err = svc.GetByBarcode(context.Background(), "nope")
	assert.ErrorIs(t, err, service.ErrProductNotFound)
}

func TestAdjustStock_ClampsAndRecordsMovement(t *testing.T) {
	svc, products, movements := newProductSvc()
	p := products.Seed("123", "Soap", 4)

	resp, err := svc.AdjustStock(context.Background(), p.ID, dto.AdjustStockRequest{Delta: -10, Reason: "breakage"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.StockQuantity)
	require.Len(t, movements.Movements, 1)
	assert.Equal(t, model.MovementAdjustment, movements.Movements[0].Kind)
	assert.Equal(t, -10, movements.Movements[0].Quantity)
	assert.Equal(t, 0, movements.Movements[0].StockAfter)

	resp, err = svc.AdjustStock(context.Background(), p.ID, dto.AdjustStockRequest{Delta: 7, Reason: "delivery"})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.StockQuantity)

	_, err = svc.AdjustStock(context.Background(), uuid.New(), dto.AdjustStockRequest{Delta: 1, Reason: "nope"})
	assert.ErrorIs(t, err, service.ErrProductNotFound)
}

func TestLowStockAndMovements(t *testing.T) {
	svc, products, _ := newProductSvc()
	low := products.Seed("1", "Low", 2)
	products.Seed("2", "Plenty", 50)
	ctx := context.Background()

	list, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "1", list[0].Barcode)

	_, err = svc.AdjustStock(ctx, low.ID, dto.AdjustStockRequest{Delta: 3, Reason: "restock"})
	require.NoError(t, err)
	movs, total, err := svc.Movements(ctx, low.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, 5, movs[0].StockAfter)

	_, _, err = svc.Movements(ctx, uuid.New(), 1, 20)
	assert.ErrorIs(t, err, service.ErrProductNotFound)
}

func TestProductList_Paginates(t *testing.T) {
	svc, products, _ := newProductSvc()
	products.Seed("1", "Apple", 10)
	products.Seed("2", "Banana", 10)
	products.Seed("3", "Cherry", 10)

	resp, err := svc.List(context.Background(), dto.ProductFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.Total)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Cherry", resp.Data[0].Name)
}
