package user

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"marketplace/domain"
	"marketplace/pkg/logger"
)

func (s *UserService) AddToWishlist(ctx context.Context, actor domain.Actor, productID string) error {
	err := s.unit.Do(ctx, func() (bool, error) {
		if _, err := s.productRepo.FindProductByID(ctx, productID); err != nil {
			return false, err
		}

		user, err := s.userRepo.FindUserByID(ctx, actor.UserID)
		if err != nil {
			return false, err
		}
		if user.InWishlist(productID) {
			return false, domain.NewStateConflict("product already in wishlist")
		}

		user.Wishlist = append(user.Wishlist, productID)
		if err := s.userRepo.UpdateUser(ctx, user); err != nil {
			return false, fmt.Errorf("failed to update wishlist: %w", err)
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	logger.Debug("wishlist item added", "user_id", actor.UserID, "product_id", productID)

	return nil
}

func (s *UserService) RemoveFromWishlist(ctx context.Context, actor domain.Actor, productID string) error {
	return s.unit.Do(ctx, func() (bool, error) {
		user, err := s.userRepo.FindUserByID(ctx, actor.UserID)
		if err != nil {
			return false, err
		}

		idx := slices.Index(user.Wishlist, productID)
		if idx < 0 {
			return false, domain.NewNotFound("product not in wishlist")
		}

		user.Wishlist = slices.Delete(user.Wishlist, idx, idx+1)
		if err := s.userRepo.UpdateUser(ctx, user); err != nil {
			return false, fmt.Errorf("failed to update wishlist: %w", err)
		}
		return true, nil
	})
}

// Wishlist resolves the user's wishlist to products. Deleted products are skipped.
func (s *UserService) Wishlist(ctx context.Context, userID string) ([]domain.Product, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(user.Wishlist))
	for _, id := range user.Wishlist {
		p, err := s.productRepo.FindProductByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, nil
}
