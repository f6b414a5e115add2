package memory

import (
	"context"

	"marketplace/domain"
)

func (s *Store) CreateSpinAttempt(ctx context.Context, attempt domain.SpinAttempt) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.SpinAttempts[attempt.ID]; ok {
		return domain.NewStateConflict("spin attempt already recorded")
	}
	s.data.SpinAttempts[attempt.ID] = attempt

	return nil
}

func (s *Store) FindSpinAttemptsByUser(ctx context.Context, userID string) ([]domain.SpinAttempt, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var attempts []domain.SpinAttempt
	for _, a := range s.data.SpinAttempts {
		if a.UserID == userID {
			attempts = append(attempts, a)
		}
	}
	sortByCreated(attempts, func(a domain.SpinAttempt) (int64, string) { return a.CreatedAt.UnixNano(), a.ID })

	return attempts, nil
}

func (s *Store) DeleteSpinAttempts(ctx context.Context, ids []string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.data.SpinAttempts, id)
	}

	return nil
}

func (s *Store) DeleteAllSpinAttempts(ctx context.Context) (int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.data.SpinAttempts)
	s.data.SpinAttempts = make(map[string]domain.SpinAttempt)

	return n, nil
}
