package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"marketplace/business/discount"
	"marketplace/business/txn"
	"marketplace/domain"
	"marketplace/pkg/logger"
	"marketplace/pkg/metrics"
)

type OrdersRepository interface {
	CreateOrder(ctx context.Context, order domain.Order) error
	FindOrderByID(ctx context.Context, id string) (domain.Order, error)
	FindAllOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrder(ctx context.Context, order domain.Order) error
	DeleteOrder(ctx context.Context, id string) error
	CreateComment(ctx context.Context, comment domain.OrderComment) error
	FindCommentsByOrder(ctx context.Context, orderID string) ([]domain.OrderComment, error)
}

type ProductRepository interface {
	FindProductByID(ctx context.Context, id string) (domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) error
}

type CartReader interface {
	FindCartItemsByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
}

// CartClearer empties a cart while the unit lock is already held.
type CartClearer interface {
	ClearTx(ctx context.Context, userID string) (int, error)
}

// DiscountRedeemer validates codes and burns them inside a checkout.
type DiscountRedeemer interface {
	Validate(ctx context.Context, code, userID string) (domain.DiscountCode, error)
	UseTx(ctx context.Context, code, userID string) (domain.DiscountCode, error)
}

type OrdersService struct {
	orderRepo   OrdersRepository
	productRepo ProductRepository
	cartRepo    CartReader
	cart        CartClearer
	discounts   DiscountRedeemer
	unit        *txn.Unit
	now         txn.Clock
	notifier    StatusNotifier
}

func NewOrdersService(
	orderRepo OrdersRepository,
	productRepo ProductRepository,
	cartRepo CartReader,
	cart CartClearer,
	discounts DiscountRedeemer,
	unit *txn.Unit,
	now txn.Clock,
) *OrdersService {
	return &OrdersService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		cart:        cart,
		discounts:   discounts,
		unit:        unit,
		now:         now,
	}
}

// Checkout turns the customer's cart into a pending order.
//
// Stock is decremented line by line. When a later line cannot be served the
// checkout fails with a capacity error, but the decrements already applied to
// earlier lines are kept and persisted. The cart itself is left untouched
// until the payment is submitted.
func (s *OrdersService) Checkout(ctx context.Context, actor domain.Actor, discountCode string) (domain.Order, error) {
	if actor.Role != domain.RoleCustomer {
		return domain.Order{}, domain.NewAuthorization("only customers can place orders")
	}

	var order domain.Order
	err := s.unit.Do(ctx, func() (bool, error) {
		items, err := s.cartRepo.FindCartItemsByUser(ctx, actor.UserID)
		if err != nil {
			return false, err
		}
		if len(items) == 0 {
			return false, domain.NewValidation("cart is empty")
		}

		var code domain.DiscountCode
		if discountCode != "" {
			code, err = s.discounts.Validate(ctx, discountCode, actor.UserID)
			if err != nil {
				return false, err
			}
		}

		now := s.now()
		order = domain.Order{
			ID:         uuid.NewString(),
			CustomerID: actor.UserID,
			Subtotal:   decimal.Zero,
			Status:     domain.StatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		decremented := 0
		for _, item := range items {
			product, err := s.productRepo.FindProductByID(ctx, item.ProductID)
			if err != nil {
				return decremented > 0, err
			}
			if !product.IsActive {
				return decremented > 0, domain.NewStateConflict(fmt.Sprintf("%s is currently unavailable", product.Name))
			}
			if product.Stock < item.Quantity {
				return decremented > 0, domain.NewCapacity(fmt.Sprintf("not enough stock for %s, available: %d", product.Name, product.Stock))
			}

			product.Stock -= item.Quantity
			if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
				return decremented > 0, fmt.Errorf("failed to decrement stock: %w", err)
			}
			decremented++

			line := domain.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				VendorID:    product.VendorID,
				Quantity:    item.Quantity,
				Price:       product.EffectivePrice(now),
			}
			order.Items = append(order.Items, line)
			order.Subtotal = order.Subtotal.Add(line.Total())
		}

		order.DiscountAmount = decimal.Zero
		order.Total = order.Subtotal
		if discountCode != "" {
			if _, err := s.discounts.UseTx(ctx, code.Code, actor.UserID); err != nil {
				return true, err
			}
			order.DiscountCode = code.Code
			order.DiscountPercentage = code.Percentage
			order.DiscountAmount, order.Total = discount.Apply(order.Subtotal, code.Percentage)
		}

		if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
			return true, fmt.Errorf("failed to create order: %w", err)
		}
		return true, nil
	})
	if err != nil {
		logger.Warn("checkout failed", "user_id", actor.UserID, "error", err)
		return domain.Order{}, err
	}

	metrics.OrdersCreated.Inc()
	logger.Info("order created", "order_id", order.ID, "user_id", actor.UserID, "total", order.Total.String())

	return order, nil
}

// UpdateStatus moves an order to target when the transition table allows it
// for the actor's role and the actor may act on the order.
func (s *OrdersService) UpdateStatus(ctx context.Context, actor domain.Actor, orderID string, target domain.OrderStatus) (domain.Order, error) {
	return s.transition(ctx, actor, orderID, target, nil)
}

func (s *OrdersService) transition(ctx context.Context, actor domain.Actor, orderID string, target domain.OrderStatus, after func(order domain.Order) error) (domain.Order, error) {
	if _, ok := domain.ParseOrderStatus(string(target)); !ok {
		return domain.Order{}, domain.NewValidation(fmt.Sprintf("unknown order status %q", target))
	}

	var (
		order domain.Order
		from  domain.OrderStatus
	)
	err := s.unit.Do(ctx, func() (bool, error) {
		var err error
		order, err = s.orderRepo.FindOrderByID(ctx, orderID)
		if err != nil {
			return false, err
		}
		from = order.Status

		if !CanTransition(actor.Role, from, target) {
			return false, domain.NewStateConflict(fmt.Sprintf("%s cannot move order from %s to %s", actor.Role, from, target))
		}
		ok, err := s.canAccess(ctx, actor, order)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, domain.NewAuthorization("order does not belong to you")
		}

		order.Status = target
		order.UpdatedAt = s.now()
		if err := s.orderRepo.UpdateOrder(ctx, order); err != nil {
			return false, fmt.Errorf("failed to update order: %w", err)
		}

		if after != nil {
			if err := after(order); err != nil {
				return true, err
			}
		}
		return true, nil
	})
	if err != nil {
		metrics.OrderTransitionsRejected.WithLabelValues(string(actor.Role), rejectReason(err)).Inc()
		logger.Warn("order transition rejected",
			"order_id", orderID, "user_id", actor.UserID, "role", actor.Role, "target", target, "error", err)
		return domain.Order{}, err
	}

	metrics.OrderTransitions.WithLabelValues(string(actor.Role), string(from), string(target)).Inc()
	logger.Info("order status updated", "order_id", orderID, "role", actor.Role, "from", from, "to", target)
	s.notify(ctx, order, from)

	return order, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrStateConflict):
		return "state_conflict"
	case errors.Is(err, domain.ErrAuthorization):
		return "authorization"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	default:
		return "error"
	}
}

// SubmitPayment records the customer's payment and empties their cart.
func (s *OrdersService) SubmitPayment(ctx context.Context, actor domain.Actor, orderID string) (domain.Order, error) {
	return s.transition(ctx, actor, orderID, domain.StatusReceiptPending, func(order domain.Order) error {
		if actor.Role != domain.RoleCustomer {
			return nil
		}
		_, err := s.cart.ClearTx(ctx, order.CustomerID)
		return err
	})
}

// ConfirmReceipt is the vendor acknowledging the payment.
func (s *OrdersService) ConfirmReceipt(ctx context.Context, actor domain.Actor, orderID string) (domain.Order, error) {
	return s.UpdateStatus(ctx, actor, orderID, domain.StatusAdminReview)
}

func (s *OrdersService) Approve(ctx context.Context, actor domain.Actor, orderID string) (domain.Order, error) {
	return s.UpdateStatus(ctx, actor, orderID, domain.StatusApproved)
}

func (s *OrdersService) ConfirmDelivery(ctx context.Context, actor domain.Actor, orderID string) (domain.Order, error) {
	return s.UpdateStatus(ctx, actor, orderID, domain.StatusDelivered)
}

// Cancel does not restore stock or discount codes.
func (s *OrdersService) Cancel(ctx context.Context, actor domain.Actor, orderID string) (domain.Order, error) {
	return s.UpdateStatus(ctx, actor, orderID, domain.StatusCancelled)
}

// Delete removes a cancelled order and its comments. Stock is not restored.
func (s *OrdersService) Delete(ctx context.Context, actor domain.Actor, orderID string) error {
	if actor.Role != domain.RoleAdmin {
		return domain.NewAuthorization("admin access required")
	}

	err := s.unit.Do(ctx, func() (bool, error) {
		order, err := s.orderRepo.FindOrderByID(ctx, orderID)
		if err != nil {
			return false, err
		}
		if order.Status != domain.StatusCancelled {
			return false, domain.NewStateConflict("only cancelled orders can be deleted")
		}
		if err := s.orderRepo.DeleteOrder(ctx, orderID); err != nil {
			return false, fmt.Errorf("failed to delete order: %w", err)
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	logger.Info("order deleted", "order_id", orderID, "user_id", actor.UserID)

	return nil
}

// canAccess reports whether actor may read or act on order: admins always,
// customers on their own orders, vendors when a line is one of their products.
// The vendor recorded on the line wins, so deleting a product does not lock
// its vendor out. Lines without one fall back to the live product.
func (s *OrdersService) canAccess(ctx context.Context, actor domain.Actor, order domain.Order) (bool, error) {
	switch actor.Role {
	case domain.RoleAdmin:
		return true, nil
	case domain.RoleCustomer:
		return order.CustomerID == actor.UserID, nil
	case domain.RoleVendor:
		for _, item := range order.Items {
			if item.VendorID != "" {
				if item.VendorID == actor.UserID {
					return true, nil
				}
				continue
			}
			product, err := s.productRepo.FindProductByID(ctx, item.ProductID)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return false, err
			}
			if product.VendorID == actor.UserID {
				return true, nil
			}
		}
	}

	return false, nil
}

func (s *OrdersService) GetOrder(ctx context.Context, actor domain.Actor, orderID string) (domain.Order, error) {
	order, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	ok, err := s.canAccess(ctx, actor, order)
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		return domain.Order{}, domain.NewAuthorization("order does not belong to you")
	}

	return order, nil
}

// ListOrders returns the orders visible to actor, oldest first.
func (s *OrdersService) ListOrders(ctx context.Context, actor domain.Actor) ([]domain.Order, error) {
	all, err := s.orderRepo.FindAllOrders(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]domain.Order, 0, len(all))
	for _, order := range all {
		ok, err := s.canAccess(ctx, actor, order)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, order)
		}
	}

	return visible, nil
}

// ListByStatus is the admin queue view, e.g. every order awaiting review.
func (s *OrdersService) ListByStatus(ctx context.Context, actor domain.Actor, status domain.OrderStatus) ([]domain.Order, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.NewAuthorization("admin access required")
	}
	if _, ok := domain.ParseOrderStatus(string(status)); !ok {
		return nil, domain.NewValidation(fmt.Sprintf("unknown order status %q", status))
	}

	all, err := s.orderRepo.FindAllOrders(ctx)
	if err != nil {
		return nil, err
	}

	var out []domain.Order
	for _, order := range all {
		if order.Status == status {
			out = append(out, order)
		}
	}

	return out, nil
}
