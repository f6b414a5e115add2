//go:build !integration

package review

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
	alice = domain.Actor{UserID: "alice", Role: domain.RoleCustomer}
	bob   = domain.Actor{UserID: "bob", Role: domain.RoleCustomer}
)

func setup(t *testing.T) (*Service, *time.Time) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 4, 4, 4, 0, 0, 0, time.UTC)
	store := memory.NewStore(nil)

	require.NoError(t, store.CreateProduct(ctx, domain.Product{ID: "p1", Name: "Fern", Price: decimal.NewFromInt(3), IsActive: true, CreatedAt: now}))
	for _, u := range []domain.User{
		{ID: "alice", Username: "Alice", Email: "alice@example.com", Role: domain.RoleCustomer, CreatedAt: now},
		{ID: "bob", Username: "Bob", Email: "bob@example.com", Role: domain.RoleCustomer, CreatedAt: now},
	} {
		require.NoError(t, store.CreateUser(ctx, u))
	}

	svc := NewService(store, store, store, txn.NewLocalUnit(), validator.New(), func() time.Time { return now })
	return svc, &now
}

func TestAddReview(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	r, err := svc.AddReview(ctx, alice, "p1", ReviewInput{Rating: 4, Comment: " lovely "})
	require.NoError(t, err)
	assert.Equal(t, "Alice", r.UserName)
	assert.Equal(t, "lovely", r.Comment)

	for _, rating := range []int{0, 6, -1} {
		_, err = svc.AddReview(ctx, alice, "p1", ReviewInput{Rating: rating, Comment: "x"})
		assert.ErrorIs(t, err, domain.ErrValidation, "rating=%d", rating)
	}

	_, err = svc.AddReview(ctx, alice, "p1", ReviewInput{Rating: 3, Comment: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AddReview(ctx, alice, "missing", ReviewInput{Rating: 3, Comment: "ok"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = svc.AddReview(ctx, domain.Actor{UserID: "v", Role: domain.RoleVendor}, "p1", ReviewInput{Rating: 3, Comment: "ok"})
	assert.ErrorIs(t, err, domain.ErrAuthorization)
}

func TestReviewsNewestFirstAndAverage(t *testing.T) {
	svc, now := setup(t)
	ctx := context.Background()

	avg, err := svc.AverageRating(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)

	_, err = svc.AddReview(ctx, alice, "p1", ReviewInput{Rating: 5, Comment: "first"})
	require.NoError(t, err)
	*now = now.Add(time.Minute)
	_, err = svc.AddReview(ctx, bob, "p1", ReviewInput{Rating: 4, Comment: "second"})
	require.NoError(t, err)
	*now = now.Add(time.Minute)
	_, err = svc.AddReview(ctx, bob, "p1", ReviewInput{Rating: 4, Comment: "third"})
	require.NoError(t, err)

	reviews, err := svc.Reviews(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	assert.Equal(t, "third", reviews[0].Comment)
	assert.Equal(t, "first", reviews[2].Comment)

	avg, err = svc.AverageRating(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 4.3, avg)
}

func TestDeleteReview(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	r, err := svc.AddReview(ctx, alice, "p1", ReviewInput{Rating: 2, Comment: "meh"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteReview(ctx, alice, r.ID), domain.ErrAuthorization)
	require.NoError(t, svc.DeleteReview(ctx, domain.Actor{UserID: "root", Role: domain.RoleAdmin}, r.ID))
	assert.ErrorIs(t, svc.DeleteReview(ctx, domain.Actor{UserID: "root", Role: domain.RoleAdmin}, r.ID), domain.ErrReviewNotFound)
}
