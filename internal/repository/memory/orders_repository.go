package memory

import (
	"context"

	"marketplace/domain"
)

func (s *Store) CreateOrder(ctx context.Context, order domain.Order) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Orders[order.ID]; ok {
		return domain.NewStateConflict("order already exists")
	}
	s.data.Orders[order.ID] = cloneOrder(order)

	return nil
}

func (s *Store) FindOrderByID(ctx context.Context, id string) (domain.Order, error) {
	if err := checkCtx(ctx); err != nil {
		return domain.Order{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.data.Orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	return cloneOrder(order), nil
}

func (s *Store) FindAllOrders(ctx context.Context) ([]domain.Order, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]domain.Order, 0, len(s.data.Orders))
	for _, o := range s.data.Orders {
		orders = append(orders, cloneOrder(o))
	}
	sortByCreated(orders, func(o domain.Order) (int64, string) { return o.CreatedAt.UnixNano(), o.ID })

	return orders, nil
}

func (s *Store) UpdateOrder(ctx context.Context, order domain.Order) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Orders[order.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	s.data.Orders[order.ID] = cloneOrder(order)

	return nil
}

// DeleteOrder removes the order and its comment thread.
func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(s.data.Orders, id)
	for cid, c := range s.data.OrderComments {
		if c.OrderID == id {
			delete(s.data.OrderComments, cid)
		}
	}

	return nil
}

func (s *Store) CreateComment(ctx context.Context, comment domain.OrderComment) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.OrderComments[comment.ID]; ok {
		return domain.NewStateConflict("comment already exists")
	}
	s.data.OrderComments[comment.ID] = comment

	return nil
}

// FindCommentsByOrder returns the thread oldest first.
func (s *Store) FindCommentsByOrder(ctx context.Context, orderID string) ([]domain.OrderComment, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var comments []domain.OrderComment
	for _, c := range s.data.OrderComments {
		if c.OrderID == orderID {
			comments = append(comments, c)
		}
	}
	sortByCreated(comments, func(c domain.OrderComment) (int64, string) { return c.CreatedAt.UnixNano(), c.ID })

	return comments, nil
}
