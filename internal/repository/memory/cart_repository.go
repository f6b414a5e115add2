package memory

import (
	"context"

	"marketplace/domain"
)

func (s *Store) FindCartItem(ctx context.Context, userID, productID string) (domain.CartItem, error) {
	if err := checkCtx(ctx); err != nil {
		return domain.CartItem{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.data.CartItems[domain.CartKey(userID, productID)]
	if !ok {
		return domain.CartItem{}, domain.ErrCartItemMissing
	}

	return item, nil
}

func (s *Store) FindCartItemsByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []domain.CartItem
	for _, item := range s.data.CartItems {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	sortByCreated(items, func(c domain.CartItem) (int64, string) { return c.AddedAt.UnixNano(), c.ProductID })

	return items, nil
}

// SaveCartItem inserts or replaces the (user, product) row.
func (s *Store) SaveCartItem(ctx context.Context, item domain.CartItem) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.CartItems[item.Key()] = item

	return nil
}

func (s *Store) DeleteCartItem(ctx context.Context, userID, productID string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.CartKey(userID, productID)
	if _, ok := s.data.CartItems[key]; !ok {
		return domain.ErrCartItemMissing
	}
	delete(s.data.CartItems, key)

	return nil
}

// DeleteCartItemsByUser empties a user's cart and reports how many rows went.
func (s *Store) DeleteCartItemsByUser(ctx context.Context, userID string) (int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, item := range s.data.CartItems {
		if item.UserID == userID {
			delete(s.data.CartItems, key)
			n++
		}
	}

	return n, nil
}
