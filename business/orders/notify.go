package orders

import (
	"context"

	"marketplace/domain"
	"marketplace/pkg/logger"
)

// StatusNotifier hears about every applied status change, after it has been
// committed.
type StatusNotifier interface {
	OrderStatusChanged(ctx context.Context, order domain.Order, from domain.OrderStatus) error
}

func (s *OrdersService) SetNotifier(n StatusNotifier) {
	s.notifier = n
}

// notify never fails the transition; delivery problems are only logged.
func (s *OrdersService) notify(ctx context.Context, order domain.Order, from domain.OrderStatus) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.OrderStatusChanged(ctx, order, from); err != nil {
		logger.Warn("failed to send order notification", "order_id", order.ID, "status", order.Status, "error", err)
	}
}
