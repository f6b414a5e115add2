//go:build !integration

package discount

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/business/txn"
	"marketplace/domain"
	"marketplace/internal/repository/memory"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// constRandom always draws the same index.
type constRandom int

func (r constRandom) IntN(n int) int { return int(r) % n }

func newTestService(t *testing.T) (*Service, *memory.Store, *fakeClock) {
	t.Helper()
	store := memory.NewStore(nil)
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(store, txn.NewLocalUnit(), rand.New(rand.NewPCG(1, 2)), clock.Now, 0)
	return svc, store, clock
}

func TestCreate_IssuesSixCharacterCode(t *testing.T) {
	svc, _, clock := newTestService(t)

	code, err := svc.Create(context.Background(), 10, "u1")
	require.NoError(t, err)

	assert.Len(t, code.Code, CodeLength)
	assert.Equal(t, NormalizeCode(code.Code), code.Code)
	assert.Equal(t, 10, code.Percentage)
	assert.Equal(t, "u1", code.UserID)
	assert.False(t, code.Used)
	assert.Equal(t, clock.Now().Add(7*24*time.Hour), code.ExpiresAt)
}

func TestCreate_RejectsPercentageOutsideAllowedSet(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, pct := range []int{0, 1, 7, 35, 40, 100, -5} {
		_, err := svc.Create(context.Background(), pct, "u1")
		assert.ErrorIs(t, err, domain.ErrInvalidDiscountValue, "pct=%d", pct)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	for _, pct := range domain.AllowedDiscountPercentages {
		_, err := svc.Create(context.Background(), pct, "u1")
		assert.NoError(t, err, "pct=%d", pct)
	}
}

func TestCreate_GivesUpAfterRepeatedCollisions(t *testing.T) {
	store := memory.NewStore(nil)
	svc := NewService(store, txn.NewLocalUnit(), constRandom(0), time.Now, 0)

	first, err := svc.Create(context.Background(), 5, "u1")
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", first.Code)

	_, err = svc.Create(context.Background(), 5, "u1")
	assert.ErrorIs(t, err, domain.ErrCapacity)
}

func TestValidate_Failures(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	code, err := svc.Create(ctx, 10, "u")
	require.NoError(t, err)

	_, err = svc.Validate(ctx, "NOPE00", "u")
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)

	_, err = svc.Validate(ctx, code.Code, "v")
	assert.ErrorIs(t, err, domain.ErrCodeWrongOwner)
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	got, err := svc.Validate(ctx, " "+code.Code+" ", "u")
	require.NoError(t, err)
	assert.False(t, got.Used, "validation must not mutate")

	clock.Advance(7*24*time.Hour + time.Second)
	_, err = svc.Validate(ctx, code.Code, "u")
	assert.ErrorIs(t, err, domain.ErrCodeExpired)
}

func TestUse_BurnsCodeOnce(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	code, err := svc.Create(ctx, 20, "u")
	require.NoError(t, err)

	used, err := svc.Use(ctx, code.Code, "u")
	require.NoError(t, err)
	assert.True(t, used.Used)
	require.NotNil(t, used.UsedAt)

	stored, err := store.FindDiscountCode(ctx, code.Code)
	require.NoError(t, err)
	assert.True(t, stored.Used)

	_, err = svc.Validate(ctx, code.Code, "u")
	assert.ErrorIs(t, err, domain.ErrCodeAlreadyUsed)
	_, err = svc.Use(ctx, code.Code, "u")
	assert.ErrorIs(t, err, domain.ErrCodeAlreadyUsed)
}

func TestUse_UsedCheckedBeforeOwner(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	code, err := svc.Create(ctx, 20, "u")
	require.NoError(t, err)
	_, err = svc.Use(ctx, code.Code, "u")
	require.NoError(t, err)

	_, err = svc.Validate(ctx, code.Code, "v")
	assert.ErrorIs(t, err, domain.ErrCodeAlreadyUsed)
}

func TestCreateForUser_AdminOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateForUser(ctx, domain.Actor{UserID: "c", Role: domain.RoleCustomer}, 50, "c")
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	code, err := svc.CreateForUser(ctx, domain.Actor{UserID: "a", Role: domain.RoleAdmin}, 50, "c")
	require.NoError(t, err)
	assert.Equal(t, "c", code.UserID)

	codes, err := svc.ListUserCodes(ctx, "c")
	require.NoError(t, err)
	assert.Len(t, codes, 1)
}

func TestApply(t *testing.T) {
	amount, total := Apply(decimal.RequireFromString("80.00"), 15)
	assert.True(t, amount.Equal(decimal.RequireFromString("12")))
	assert.True(t, total.Equal(decimal.RequireFromString("68")))

	amount, total = Apply(decimal.RequireFromString("19.99"), 5)
	assert.True(t, amount.Equal(decimal.RequireFromString("0.9995")))
	assert.True(t, total.Equal(decimal.RequireFromString("18.9905")))
}
