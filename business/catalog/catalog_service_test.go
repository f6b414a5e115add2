//go:build !integration

package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/business/txn"
	"marketplace/domain"
	"marketplace/internal/repository/memory"
)

var (
	admin   = domain.Actor{UserID: "admin", Role: domain.RoleAdmin}
	vendor  = domain.Actor{UserID: "v1", Role: domain.RoleVendor}
	vendor2 = domain.Actor{UserID: "v2", Role: domain.RoleVendor}
	buyer   = domain.Actor{UserID: "c1", Role: domain.RoleCustomer}
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
	return NewService(memory.NewStore(nil), txn.NewLocalUnit(), validator.New(), clock.Now), clock
}

func input(name, price string, stock int) ProductInput {
	return ProductInput{Name: name, Price: decimal.RequireFromString(price), Category: "plants", Stock: stock}
}

func promoInput(name, price, promo string, end *time.Time) ProductInput {
	in := input(name, price, 10)
	p := decimal.RequireFromString(promo)
	in.IsPromotional = true
	in.PromotionalPrice = &p
	in.PromotionalEndDate = end
	return in
}

func TestCreateProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, vendor, input("Fern", "12.99", 4))
	require.NoError(t, err)
	assert.Equal(t, vendor.UserID, p.VendorID)
	assert.True(t, p.IsActive)

	_, err = svc.CreateProduct(ctx, buyer, input("Fern", "12.99", 4))
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	_, err = svc.CreateProduct(ctx, vendor, input("Fern", "0", 4))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateProduct(ctx, vendor, input("", "3", 4))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateProduct(ctx, vendor, input("Fern", "3", -1))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateProduct_PromotionRules(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, vendor, promoInput("Rose", "10", "10", nil))
	assert.ErrorIs(t, err, domain.ErrValidation)

	in := input("Rose", "10", 1)
	in.IsPromotional = true
	_, err = svc.CreateProduct(ctx, vendor, in)
	assert.ErrorIs(t, err, domain.ErrValidation)

	p, err := svc.CreateProduct(ctx, vendor, promoInput("Rose", "10", "8", nil))
	require.NoError(t, err)
	require.NotNil(t, p.PromotionalEndDate)
	assert.Equal(t, clock.Now().Add(DefaultPromotionLength), *p.PromotionalEndDate)
	assert.True(t, p.EffectivePrice(clock.Now()).Equal(decimal.NewFromInt(8)))
}

func TestOwnershipOfMutations(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, vendor, input("Fern", "5", 4))
	require.NoError(t, err)

	_, err = svc.ToggleActive(ctx, vendor2, p.ID)
	assert.ErrorIs(t, err, domain.ErrAuthorization)
	_, err = svc.SetStock(ctx, vendor2, p.ID, 9)
	assert.ErrorIs(t, err, domain.ErrAuthorization)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, buyer, p.ID), domain.ErrAuthorization)

	toggled, err := svc.ToggleActive(ctx, vendor, p.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	stocked, err := svc.SetStock(ctx, admin, p.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, stocked.Stock)

	_, err = svc.SetStock(ctx, admin, p.ID, -1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	updated, err := svc.UpdateProduct(ctx, vendor, p.ID, input("Big fern", "6", 2))
	require.NoError(t, err)
	assert.Equal(t, "Big fern", updated.Name)

	require.NoError(t, svc.DeleteProduct(ctx, admin, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestPromotionalWindow(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	past := clock.Now().Add(-time.Second)
	future := clock.Now().Add(time.Hour)

	expired, err := svc.CreateProduct(ctx, vendor, promoInput("Expired", "10", "5", &past))
	require.NoError(t, err)
	live, err := svc.CreateProduct(ctx, vendor, promoInput("Live", "10", "5", &future))
	require.NoError(t, err)

	promos, err := svc.GetPromotionalProducts(ctx)
	require.NoError(t, err)
	require.Len(t, promos, 1)
	assert.Equal(t, live.ID, promos[0].ID)
	assert.NotEqual(t, expired.ID, promos[0].ID)

	clock.t = future
	promos, err = svc.GetPromotionalProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, promos)
}

func TestGetFeaturedProducts(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	future := clock.Now().Add(time.Hour)

	var ids []string
	for _, in := range []ProductInput{
		input("plain-1", "3", 1),
		promoInput("promo-1", "10", "5", &future),
		input("plain-2", "3", 1),
		promoInput("promo-2", "10", "5", &future),
	} {
		p, err := svc.CreateProduct(ctx, vendor, in)
		require.NoError(t, err)
		ids = append(ids, p.ID)
		clock.t = clock.t.Add(time.Second)
	}

	hidden, err := svc.CreateProduct(ctx, vendor, input("hidden", "3", 1))
	require.NoError(t, err)
	_, err = svc.ToggleActive(ctx, vendor, hidden.ID)
	require.NoError(t, err)

	featured, err := svc.GetFeaturedProducts(ctx, 0)
	require.NoError(t, err)
	var got []string
	for _, p := range featured {
		got = append(got, p.ID)
	}
	assert.Equal(t, []string{ids[1], ids[3], ids[0], ids[2]}, got)

	featured, err = svc.GetFeaturedProducts(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, featured, 3)
}

func TestListingsAndCategories(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tools := input("Spade", "9", 1)
	tools.Category = "tools"
	_, err := svc.CreateProduct(ctx, vendor, tools)
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, vendor, input("Fern", "5", 1))
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, vendor2, input("Moss", "2", 1))
	require.NoError(t, err)

	plants, err := svc.ListProducts(ctx, "plants")
	require.NoError(t, err)
	assert.Len(t, plants, 2)

	mine, err := svc.ListByVendor(ctx, vendor.UserID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []CategoryCount{{Name: "plants", Count: 2}, {Name: "tools", Count: 1}}, cats)

	_, err = svc.ListAll(ctx, vendor)
	assert.ErrorIs(t, err, domain.ErrAuthorization)
	all, err := svc.ListAll(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
