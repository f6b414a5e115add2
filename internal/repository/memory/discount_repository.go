package memory

import (
	"context"

	"marketplace/domain"
)

func (s *Store) CreateDiscountCode(ctx context.Context, code domain.DiscountCode) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.DiscountCodes[code.Code]; ok {
		return domain.NewStateConflict("discount code already exists")
	}
	s.data.DiscountCodes[code.Code] = cloneDiscount(code)

	return nil
}

func (s *Store) FindDiscountCode(ctx context.Context, code string) (domain.DiscountCode, error) {
	if err := checkCtx(ctx); err != nil {
		return domain.DiscountCode{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dc, ok := s.data.DiscountCodes[code]
	if !ok {
		return domain.DiscountCode{}, domain.ErrCodeNotFound
	}

	return cloneDiscount(dc), nil
}

func (s *Store) DiscountCodeExists(ctx context.Context, code string) (bool, error) {
	if err := checkCtx(ctx); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.data.DiscountCodes[code]
	return ok, nil
}

func (s *Store) FindDiscountCodesByUser(ctx context.Context, userID string) ([]domain.DiscountCode, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var codes []domain.DiscountCode
	for _, dc := range s.data.DiscountCodes {
		if dc.UserID == userID {
			codes = append(codes, cloneDiscount(dc))
		}
	}
	sortByCreated(codes, func(d domain.DiscountCode) (int64, string) { return d.CreatedAt.UnixNano(), d.Code })

	return codes, nil
}

func (s *Store) UpdateDiscountCode(ctx context.Context, code domain.DiscountCode) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.DiscountCodes[code.Code]; !ok {
		return domain.ErrCodeNotFound
	}
	s.data.DiscountCodes[code.Code] = cloneDiscount(code)

	return nil
}
