package services

import (
	"context"
	"regexp"
	"testing"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSKU(t *testing.T) {
	re := regexp.MustCompile(`^PROD-[0-9A-Z]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		sku := NewSKU()
		assert.Regexp(t, re, sku)
		seen[sku] = true
	}
	assert.Len(t, seen, 50)
}

func TestCreateProductBooksOpeningStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Hand Grinder", "99.90", 6)
	assert.Equal(t, "Coffee", p.CategoryName)
	assert.Equal(t, 6, f.net(t, p.ID))

	empty := f.product(t, "Preorder", "10.00", 0)
	_, log, err := f.stock.Log(empty.ID)
	require.NoError(t, err)
	assert.Empty(t, log)
}

func TestProductInputValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var verr *domain.ValidationError

	_, err := f.catalog.CreateProduct(ctx, admin, ProductInput{Name: " ", CategoryID: "cat-tea"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = f.catalog.CreateProduct(ctx, admin, ProductInput{Name: "X", CategoryID: "cat-tea", Price: decimal.NewFromInt(-1)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)

	_, err = f.catalog.CreateProduct(ctx, admin, ProductInput{Name: "X", CategoryID: "cat-none"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category_id", verr.Field)

	_, err = f.catalog.CreateProduct(ctx, admin, ProductInput{Name: "X", CategoryID: "cat-tea", SupplierID: "sup-none"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "supplier_id", verr.Field)
}

func TestUpdateProductKeepsQuantity(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Canister", "22.00", 8)

	up, err := f.catalog.UpdateProduct(p.ID, ProductInput{
		Name: "Vacuum Canister", CategoryID: "cat-gear", SupplierID: "sup-kettle",
		Price: decimal.RequireFromString("24.00"), Quantity: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "Vacuum Canister", up.Name)
	assert.Equal(t, "Kettle & Co", up.SupplierName)
	assert.Equal(t, 8, up.Quantity)
	assert.Equal(t, p.SKU, up.SKU)

	require.NoError(t, f.catalog.DeleteProduct(p.ID))
	_, err = f.catalog.Detail(p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.catalog.DeleteProduct(p.ID), domain.ErrNotFound)
}

func TestProductsFilter(t *testing.T) {
	f := newFixture(t)
	lo := decimal.RequireFromString("30")
	hi := decimal.RequireFromString("40")

	got, err := f.catalog.Products(domain.ProductFilter{Category: "coffee", MinPrice: &lo, MaxPrice: &hi}, 1, 12)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p-arabica", got[0].ID)

	got, err = f.catalog.Products(domain.ProductFilter{Supplier: "kettle"}, 1, 12)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p-kettle", got[0].ID)

	got, err = f.catalog.Products(domain.ProductFilter{SKU: "senc"}, 1, 12)
	require.NoError(t, err)
	require.Len(t, got, 1)

	all, err := f.catalog.Products(domain.ProductFilter{}, 1, 2)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	rest, err := f.catalog.Products(domain.ProductFilter{}, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	assert.NotEqual(t, all[0].ID, rest[0].ID)
}

func TestDetailAggregates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Cupping Spoon", "9.00", 10)

	first := f.paidOrder(t, alice, p.ID, 2)
	second := f.paidOrder(t, bob, p.ID, 3)
	_, err := f.checkout.BuyNow(ctx, alice, p.ID, 1) // pending, not sold
	require.NoError(t, err)

	_, err = f.reviews.Submit(ctx, alice, first, p.ID, 5, "")
	require.NoError(t, err)
	_, err = f.reviews.Submit(ctx, bob, second, p.ID, 4, "")
	require.NoError(t, err)

	d, err := f.catalog.Detail(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, d.TotalSold)
	assert.Equal(t, 2, d.ReviewCount)
	assert.Equal(t, "4.5", d.AvgRating.String())
	assert.Len(t, d.Reviews, 2)
}
