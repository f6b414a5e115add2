package memory

import (
	"context"

	"marketplace/domain"
)

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Products[product.ID]; ok {
		return domain.NewStateConflict("product already exists")
	}
	s.data.Products[product.ID] = cloneProduct(product)

	return nil
}

func (s *Store) FindProductByID(ctx context.Context, id string) (domain.Product, error) {
	if err := checkCtx(ctx); err != nil {
		return domain.Product{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.data.Products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}

	return cloneProduct(product), nil
}

// FindAllProducts returns every product ordered by creation time.
func (s *Store) FindAllProducts(ctx context.Context) ([]domain.Product, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.data.Products))
	for _, p := range s.data.Products {
		products = append(products, cloneProduct(p))
	}
	sortByCreated(products, func(p domain.Product) (int64, string) { return p.CreatedAt.UnixNano(), p.ID })

	return products, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Products[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	s.data.Products[product.ID] = cloneProduct(product)

	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(s.data.Products, id)

	return nil
}
