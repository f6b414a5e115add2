package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"marketplace/business/txn"
	"marketplace/domain"
	"marketplace/pkg/logger"
)

type CartRepository interface {
	FindCartItem(ctx context.Context, userID, productID string) (domain.CartItem, error)
	FindCartItemsByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	SaveCartItem(ctx context.Context, item domain.CartItem) error
	DeleteCartItem(ctx context.Context, userID, productID string) error
	DeleteCartItemsByUser(ctx context.Context, userID string) (int, error)
}

type ProductFinder interface {
	FindProductByID(ctx context.Context, id string) (domain.Product, error)
}

type Service struct {
	cartRepo    CartRepository
	productRepo ProductFinder
	unit        *txn.Unit
	now         txn.Clock
}

func NewService(cartRepo CartRepository, productRepo ProductFinder, unit *txn.Unit, now txn.Clock) *Service {
	return &Service{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		unit:        unit,
		now:         now,
	}
}

func requireCustomer(actor domain.Actor) error {
	if actor.Role != domain.RoleCustomer {
		return domain.NewAuthorization("only customers can use the cart")
	}
	return nil
}

func notEnoughStock(product domain.Product) error {
	return domain.NewCapacity(fmt.Sprintf("not enough stock for %s, available: %d", product.Name, product.Stock))
}

// AddToCart adds qty units, merging with an existing line for the same product.
func (s *Service) AddToCart(ctx context.Context, actor domain.Actor, productID string, qty int) (domain.CartItem, error) {
	if err := requireCustomer(actor); err != nil {
		return domain.CartItem{}, err
	}
	if qty < 1 {
		return domain.CartItem{}, domain.NewValidation("quantity must be at least 1")
	}

	var saved domain.CartItem
	err := s.unit.Do(ctx, func() (bool, error) {
		product, err := s.productRepo.FindProductByID(ctx, productID)
		if err != nil {
			return false, err
		}
		if !product.IsActive {
			return false, domain.NewStateConflict("product is currently unavailable")
		}

		item, err := s.cartRepo.FindCartItem(ctx, actor.UserID, productID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			item = domain.CartItem{UserID: actor.UserID, ProductID: productID, AddedAt: s.now()}
		case err != nil:
			return false, err
		}

		if item.Quantity+qty > product.Stock {
			return false, notEnoughStock(product)
		}
		item.Quantity += qty

		if err := s.cartRepo.SaveCartItem(ctx, item); err != nil {
			return false, fmt.Errorf("failed to save cart item: %w", err)
		}
		saved = item
		return true, nil
	})
	if err != nil {
		logger.Warn("add to cart rejected", "user_id", actor.UserID, "product_id", productID, "error", err)
		return domain.CartItem{}, err
	}

	logger.Debug("added to cart", "user_id", actor.UserID, "product_id", productID, "quantity", saved.Quantity)

	return saved, nil
}

// UpdateQuantity sets the quantity of an existing line.
func (s *Service) UpdateQuantity(ctx context.Context, actor domain.Actor, productID string, qty int) (domain.CartItem, error) {
	if err := requireCustomer(actor); err != nil {
		return domain.CartItem{}, err
	}
	if qty < 1 {
		return domain.CartItem{}, domain.NewValidation("quantity must be at least 1")
	}

	var saved domain.CartItem
	err := s.unit.Do(ctx, func() (bool, error) {
		product, err := s.productRepo.FindProductByID(ctx, productID)
		if err != nil {
			return false, err
		}
		if product.Stock < qty {
			return false, notEnoughStock(product)
		}

		item, err := s.cartRepo.FindCartItem(ctx, actor.UserID, productID)
		if err != nil {
			return false, err
		}
		item.Quantity = qty

		if err := s.cartRepo.SaveCartItem(ctx, item); err != nil {
			return false, fmt.Errorf("failed to save cart item: %w", err)
		}
		saved = item
		return true, nil
	})
	if err != nil {
		return domain.CartItem{}, err
	}

	return saved, nil
}

func (s *Service) RemoveItem(ctx context.Context, actor domain.Actor, productID string) error {
	if err := requireCustomer(actor); err != nil {
		return err
	}

	return s.unit.Do(ctx, func() (bool, error) {
		if err := s.cartRepo.DeleteCartItem(ctx, actor.UserID, productID); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Clear empties the caller's cart and returns the number of removed lines.
func (s *Service) Clear(ctx context.Context, actor domain.Actor) (int, error) {
	if err := requireCustomer(actor); err != nil {
		return 0, err
	}

	var n int
	err := s.unit.Do(ctx, func() (bool, error) {
		var err error
		n, err = s.ClearTx(ctx, actor.UserID)
		return n > 0, err
	})
	if err != nil {
		return 0, err
	}

	logger.Info("cart cleared", "user_id", actor.UserID, "items", n)

	return n, nil
}

// ClearTx empties userID's cart. The caller must hold the unit lock.
func (s *Service) ClearTx(ctx context.Context, userID string) (int, error) {
	n, err := s.cartRepo.DeleteCartItemsByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return n, nil
}

func (s *Service) Items(ctx context.Context, userID string) ([]domain.CartItem, error) {
	return s.cartRepo.FindCartItemsByUser(ctx, userID)
}

// Summary prices the cart at the current time. Lines whose product no longer
// exists are skipped.
func (s *Service) Summary(ctx context.Context, userID string) (domain.CartSummary, error) {
	items, err := s.cartRepo.FindCartItemsByUser(ctx, userID)
	if err != nil {
		return domain.CartSummary{}, err
	}

	now := s.now()
	summary := domain.CartSummary{Total: decimal.Zero}
	for _, item := range items {
		product, err := s.productRepo.FindProductByID(ctx, item.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return domain.CartSummary{}, err
		}

		unit := product.EffectivePrice(now)
		line := domain.CartLine{
			Product:   product,
			Quantity:  item.Quantity,
			UnitPrice: unit,
			LineTotal: unit.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		summary.Lines = append(summary.Lines, line)
		summary.ItemCount += item.Quantity
		summary.Total = summary.Total.Add(line.LineTotal)
	}

	return summary, nil
}
