package memory

import (
	"context"
	"strings"

	"marketplace/domain"
)

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Users[user.ID]; ok {
		return domain.NewStateConflict("user already exists")
	}
	s.data.Users[user.ID] = cloneUser(user)

	return nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (domain.User, error) {
	if err := checkCtx(ctx); err != nil {
		return domain.User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.data.Users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}

	return cloneUser(user), nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	if err := checkCtx(ctx); err != nil {
		return domain.User{}, err
	}

	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.data.Users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}

	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) FindAllUsers(ctx context.Context) ([]domain.User, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.User, 0, len(s.data.Users))
	for _, user := range s.data.Users {
		users = append(users, cloneUser(user))
	}
	sortByCreated(users, func(u domain.User) (int64, string) { return u.CreatedAt.UnixNano(), u.ID })

	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, user domain.User) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	s.data.Users[user.ID] = cloneUser(user)

	return nil
}
