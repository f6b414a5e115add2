package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"marketplace/business/txn"
	"marketplace/domain"
	"marketplace/pkg/logger"
)

// ProductRepository contract interface
type ProductRepository interface {
	CreateProduct(ctx context.Context, product domain.Product) error
	FindProductByID(ctx context.Context, id string) (domain.Product, error)
	FindAllProducts(ctx context.Context) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// DefaultPromotionLength applies when a promotion is created without an end date.
const DefaultPromotionLength = 7 * 24 * time.Hour

type ProductInput struct {
	Name               string `validate:"required,max=200"`
	Description        string
	Price              decimal.Decimal
	Category           string `validate:"required,max=100"`
	ImageFilename      string `validate:"max=200"`
	Stock              int    `validate:"gte=0"`
	IsPromotional      bool
	PromotionalPrice   *decimal.Decimal
	PromotionalEndDate *time.Time
}

type CategoryCount struct {
	Name  string
	Count int
}

type Service struct {
	productRepo ProductRepository
	unit        *txn.Unit
	validate    *validator.Validate
	now         txn.Clock
}

func NewService(productRepo ProductRepository, unit *txn.Unit, validate *validator.Validate, now txn.Clock) *Service {
	return &Service{
		productRepo: productRepo,
		unit:        unit,
		validate:    validate,
		now:         now,
	}
}

func (s *Service) validateInput(in *ProductInput) error {
	if err := s.validate.Struct(in); err != nil {
		return domain.NewValidation(fmt.Sprintf("invalid product data: %v", err))
	}

	if !in.Price.IsPositive() {
		return domain.NewValidation("price must be greater than 0")
	}

	if !in.IsPromotional {
		in.PromotionalPrice = nil
		in.PromotionalEndDate = nil
		return nil
	}

	if in.PromotionalPrice == nil {
		return domain.NewValidation("promotional price is required for a promotion")
	}
	if !in.PromotionalPrice.IsPositive() || !in.PromotionalPrice.LessThan(in.Price) {
		return domain.NewValidation("promotional price must be greater than 0 and less than price")
	}

	if in.PromotionalEndDate == nil {
		end := s.now().Add(DefaultPromotionLength)
		in.PromotionalEndDate = &end
	}

	return nil
}

func canManage(actor domain.Actor, product domain.Product) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleVendor:
		if product.VendorID == actor.UserID {
			return nil
		}
		return domain.NewAuthorization("you can only manage your own products")
	}

	return domain.NewAuthorization("only vendors and admins can manage products")
}

func (s *Service) CreateProduct(ctx context.Context, actor domain.Actor, in ProductInput) (domain.Product, error) {
	if actor.Role != domain.RoleVendor && actor.Role != domain.RoleAdmin {
		logger.Warn("product create denied", "user_id", actor.UserID, "role", actor.Role)
		return domain.Product{}, domain.NewAuthorization("only vendors and admins can create products")
	}

	if err := s.validateInput(&in); err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		ID:                 uuid.NewString(),
		Name:               in.Name,
		Description:        in.Description,
		Price:              in.Price,
		Category:           in.Category,
		VendorID:           actor.UserID,
		ImageFilename:      in.ImageFilename,
		IsActive:           true,
		Stock:              in.Stock,
		IsPromotional:      in.IsPromotional,
		PromotionalPrice:   in.PromotionalPrice,
		PromotionalEndDate: in.PromotionalEndDate,
		CreatedAt:          s.now(),
	}

	err := s.unit.Do(ctx, func() (bool, error) {
		if err := s.productRepo.CreateProduct(ctx, product); err != nil {
			return false, fmt.Errorf("failed to create product: %w", err)
		}
		return true, nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	logger.Info("product created", "product_id", product.ID, "vendor_id", product.VendorID)

	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, actor domain.Actor, id string, in ProductInput) (domain.Product, error) {
	if err := s.validateInput(&in); err != nil {
		return domain.Product{}, err
	}

	var updated domain.Product
	err := s.unit.Do(ctx, func() (bool, error) {
		product, err := s.productRepo.FindProductByID(ctx, id)
		if err != nil {
			return false, err
		}
		if err := canManage(actor, product); err != nil {
			return false, err
		}

		product.Name = in.Name
		product.Description = in.Description
		product.Price = in.Price
		product.Category = in.Category
		product.Stock = in.Stock
		product.IsPromotional = in.IsPromotional
		product.PromotionalPrice = in.PromotionalPrice
		product.PromotionalEndDate = in.PromotionalEndDate
		if in.ImageFilename != "" {
			product.ImageFilename = in.ImageFilename
		}

		if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
			return false, fmt.Errorf("failed to update product: %w", err)
		}
		updated = product
		return true, nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	logger.Info("product updated", "product_id", id, "user_id", actor.UserID)

	return updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, actor domain.Actor, id string) error {
	err := s.unit.Do(ctx, func() (bool, error) {
		product, err := s.productRepo.FindProductByID(ctx, id)
		if err != nil {
			return false, err
		}
		if err := canManage(actor, product); err != nil {
			return false, err
		}
		if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
			return false, fmt.Errorf("failed to delete product: %w", err)
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	logger.Info("product deleted", "product_id", id, "user_id", actor.UserID)

	return nil
}

// ToggleActive flips the active flag and returns the updated product.
func (s *Service) ToggleActive(ctx context.Context, actor domain.Actor, id string) (domain.Product, error) {
	var updated domain.Product
	err := s.unit.Do(ctx, func() (bool, error) {
		product, err := s.productRepo.FindProductByID(ctx, id)
		if err != nil {
			return false, err
		}
		if err := canManage(actor, product); err != nil {
			return false, err
		}

		product.IsActive = !product.IsActive
		if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
			return false, fmt.Errorf("failed to update product: %w", err)
		}
		updated = product
		return true, nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	logger.Info("product toggled", "product_id", id, "active", updated.IsActive, "user_id", actor.UserID)

	return updated, nil
}

func (s *Service) SetStock(ctx context.Context, actor domain.Actor, id string, stock int) (domain.Product, error) {
	if stock < 0 {
		return domain.Product{}, domain.NewValidation("stock cannot be negative")
	}

	var updated domain.Product
	err := s.unit.Do(ctx, func() (bool, error) {
		product, err := s.productRepo.FindProductByID(ctx, id)
		if err != nil {
			return false, err
		}
		if err := canManage(actor, product); err != nil {
			return false, err
		}

		product.Stock = stock
		if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
			return false, fmt.Errorf("failed to update product: %w", err)
		}
		updated = product
		return true, nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	return updated, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return s.productRepo.FindProductByID(ctx, id)
}

// ListProducts returns active products, optionally restricted to one category.
func (s *Service) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := s.productRepo.FindAllProducts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}

	return out, nil
}

func (s *Service) ListByVendor(ctx context.Context, vendorID string) ([]domain.Product, error) {
	products, err := s.productRepo.FindAllProducts(ctx)
	if err != nil {
		return nil, err
	}

	var out []domain.Product
	for _, p := range products {
		if p.VendorID == vendorID {
			out = append(out, p)
		}
	}

	return out, nil
}

func (s *Service) ListAll(ctx context.Context, actor domain.Actor) ([]domain.Product, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.NewAuthorization("admin access required")
	}

	return s.productRepo.FindAllProducts(ctx)
}

// Categories counts active products per category, sorted by name.
func (s *Service) Categories(ctx context.Context) ([]CategoryCount, error) {
	products, err := s.ListProducts(ctx, "")
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, p := range products {
		counts[p.Category]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, CategoryCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

// GetPromotionalProducts returns active products whose promotional window is open.
func (s *Service) GetPromotionalProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.ListProducts(ctx, "")
	if err != nil {
		return nil, err
	}

	now := s.now()
	var out []domain.Product
	for _, p := range products {
		if p.IsCurrentlyPromotional(now) {
			out = append(out, p)
		}
	}

	return out, nil
}

// GetFeaturedProducts lists currently promotional active products first, then
// the remaining active products, each group in catalog order, cut to limit.
// A limit <= 0 means no limit.
func (s *Service) GetFeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	products, err := s.ListProducts(ctx, "")
	if err != nil {
		return nil, err
	}

	now := s.now()
	promo := make([]domain.Product, 0, len(products))
	rest := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.IsCurrentlyPromotional(now) {
			promo = append(promo, p)
		} else {
			rest = append(rest, p)
		}
	}

	featured := append(promo, rest...)
	if limit > 0 && len(featured) > limit {
		featured = featured[:limit]
	}

	return featured, nil
}
