//go:build !integration

package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/domain"
)

type change struct {
	id       string
	from, to domain.OrderStatus
}

type recordingNotifier struct {
	changes []change
	err     error
}

func (n *recordingNotifier) OrderStatusChanged(_ context.Context, order domain.Order, from domain.OrderStatus) error {
	n.changes = append(n.changes, change{id: order.ID, from: from, to: order.Status})
	return n.err
}

func TestNotifier_CalledOnAppliedTransitionsOnly(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", vendor.UserID, "10", 5)
	f.orderAt(t, "o1", domain.StatusPending)

	n := &recordingNotifier{}
	f.orders.SetNotifier(n)
	ctx := context.Background()

	_, err := f.orders.ConfirmReceipt(ctx, vendor, "o1")
	require.Error(t, err)
	assert.Empty(t, n.changes)

	_, err = f.orders.SubmitPayment(ctx, customer, "o1")
	require.NoError(t, err)
	assert.Equal(t, []change{{id: "o1", from: domain.StatusPending, to: domain.StatusReceiptPending}}, n.changes)
}

func TestNotifier_FailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", vendor.UserID, "10", 5)
	f.orderAt(t, "o1", domain.StatusPending)

	f.orders.SetNotifier(&recordingNotifier{err: errors.New("smtp down")})

	order, err := f.orders.Cancel(context.Background(), admin, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, order.Status)
}
