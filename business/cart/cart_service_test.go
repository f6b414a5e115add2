//go:build !integration

package cart

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/business/txn"
	"marketplace/domain"
	"marketplace/internal/repository/memory"
)

var customer = domain.Actor{UserID: "c1", Role: domain.RoleCustomer}

func setup(t *testing.T) (*Service, *memory.Store, time.Time) {
	t.Helper()
	now := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	store := memory.NewStore(nil)

	promo := decimal.RequireFromString("4.00")
	end := now.Add(time.Hour)
	for _, p := range []domain.Product{
		{ID: "p1", Name: "Basil", Price: decimal.RequireFromString("5.00"), IsActive: true, Stock: 5, CreatedAt: now},
		{ID: "p2", Name: "Mint", Price: decimal.RequireFromString("6.00"), IsActive: true, Stock: 2, CreatedAt: now,
			IsPromotional: true, PromotionalPrice: &promo, PromotionalEndDate: &end},
		{ID: "p3", Name: "Thyme", Price: decimal.RequireFromString("1.00"), IsActive: false, Stock: 9, CreatedAt: now},
	} {
		require.NoError(t, store.CreateProduct(context.Background(), p))
	}

	return NewService(store, store, txn.NewLocalUnit(), func() time.Time { return now }), store, now
}

func TestAddToCart_MergesAndChecksStock(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	item, err := svc.AddToCart(ctx, customer, "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	item, err = svc.AddToCart(ctx, customer, "p1", 3)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	_, err = svc.AddToCart(ctx, customer, "p1", 1)
	assert.ErrorIs(t, err, domain.ErrCapacity)

	items, err := svc.Items(ctx, customer.UserID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddToCart_Rejections(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, domain.Actor{UserID: "v", Role: domain.RoleVendor}, "p1", 1)
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	_, err = svc.AddToCart(ctx, customer, "p1", 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AddToCart(ctx, customer, "p3", 1)
	assert.ErrorIs(t, err, domain.ErrStateConflict)

	_, err = svc.AddToCart(ctx, customer, "nope", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateRemoveClear(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.UpdateQuantity(ctx, customer, "p1", 2)
	assert.ErrorIs(t, err, domain.ErrCartItemMissing)

	_, err = svc.AddToCart(ctx, customer, "p1", 1)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, customer, "p2", 1)
	require.NoError(t, err)

	item, err := svc.UpdateQuantity(ctx, customer, "p1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)

	_, err = svc.UpdateQuantity(ctx, customer, "p2", 3)
	assert.ErrorIs(t, err, domain.ErrCapacity)

	require.NoError(t, svc.RemoveItem(ctx, customer, "p2"))
	assert.ErrorIs(t, svc.RemoveItem(ctx, customer, "p2"), domain.ErrCartItemMissing)

	n, err := svc.Clear(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items, err := svc.Items(ctx, customer.UserID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSummary_UsesEffectivePrices(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, customer, "p1", 2)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, customer, "p2", 2)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, customer.UserID)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.ItemCount)
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("18.00")), summary.Total.String())

	require.NoError(t, store.DeleteProduct(ctx, "p2"))
	summary, err = svc.Summary(ctx, customer.UserID)
	require.NoError(t, err)
	assert.Len(t, summary.Lines, 1)
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("10")))
}
