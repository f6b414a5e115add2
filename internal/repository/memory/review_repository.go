package memory

import (
	"context"

	"marketplace/domain"
)

func (s *Store) CreateReview(ctx context.Context, review domain.Review) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Reviews[review.ID]; ok {
		return domain.NewStateConflict("review already exists")
	}
	s.data.Reviews[review.ID] = review

	return nil
}

func (s *Store) FindReviewByID(ctx context.Context, id string) (domain.Review, error) {
	if err := checkCtx(ctx); err != nil {
		return domain.Review{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	review, ok := s.data.Reviews[id]
	if !ok {
		return domain.Review{}, domain.ErrReviewNotFound
	}

	return review, nil
}

// FindReviewsByProduct returns reviews oldest first.
func (s *Store) FindReviewsByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var reviews []domain.Review
	for _, r := range s.data.Reviews {
		if r.ProductID == productID {
			reviews = append(reviews, r)
		}
	}
	sortByCreated(reviews, func(r domain.Review) (int64, string) { return r.CreatedAt.UnixNano(), r.ID })

	return reviews, nil
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Reviews[id]; !ok {
		return domain.ErrReviewNotFound
	}
	delete(s.data.Reviews, id)

	return nil
}
