package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"marketplace/business/txn"
	"marketplace/domain"
	"marketplace/pkg/logger"
)

type ReviewRepository interface {
	CreateReview(ctx context.Context, review domain.Review) error
	FindReviewByID(ctx context.Context, id string) (domain.Review, error)
	FindReviewsByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	DeleteReview(ctx context.Context, id string) error
}

type ProductFinder interface {
	FindProductByID(ctx context.Context, id string) (domain.Product, error)
}

type UserFinder interface {
	FindUserByID(ctx context.Context, id string) (domain.User, error)
}

type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

type Service struct {
	reviewRepo  ReviewRepository
	productRepo ProductFinder
	userRepo    UserFinder
	unit        *txn.Unit
	validate    *validator.Validate
	now         txn.Clock
}

func NewService(reviewRepo ReviewRepository, productRepo ProductFinder, userRepo UserFinder, unit *txn.Unit, validate *validator.Validate, now txn.Clock) *Service {
	return &Service{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		unit:        unit,
		validate:    validate,
		now:         now,
	}
}

// AddReview records a customer's rating of a product.
func (s *Service) AddReview(ctx context.Context, actor domain.Actor, productID string, in ReviewInput) (domain.Review, error) {
	if actor.Role != domain.RoleCustomer {
		return domain.Review{}, domain.NewAuthorization("only customers can review products")
	}

	in.Comment = strings.TrimSpace(in.Comment)
	if in.Rating < 1 || in.Rating > 5 {
		return domain.Review{}, domain.NewValidation("rating must be between 1 and 5")
	}
	if err := s.validate.Struct(in); err != nil {
		return domain.Review{}, domain.NewValidation(fmt.Sprintf("invalid review: %v", err))
	}

	var review domain.Review
	err := s.unit.Do(ctx, func() (bool, error) {
		if _, err := s.productRepo.FindProductByID(ctx, productID); err != nil {
			return false, err
		}
		user, err := s.userRepo.FindUserByID(ctx, actor.UserID)
		if err != nil {
			return false, err
		}

		review = domain.Review{
			ID:        uuid.NewString(),
			ProductID: productID,
			UserID:    user.ID,
			UserName:  user.Username,
			Rating:    in.Rating,
			Comment:   in.Comment,
			CreatedAt: s.now(),
		}
		if err := s.reviewRepo.CreateReview(ctx, review); err != nil {
			return false, fmt.Errorf("failed to save review: %w", err)
		}
		return true, nil
	})
	if err != nil {
		return domain.Review{}, err
	}

	logger.Info("review added", "product_id", productID, "user_id", actor.UserID, "rating", review.Rating)

	return review, nil
}

// Reviews returns the product's reviews newest first.
func (s *Service) Reviews(ctx context.Context, productID string) ([]domain.Review, error) {
	reviews, err := s.reviewRepo.FindReviewsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(reviews)-1; i < j; i, j = i+1, j-1 {
		reviews[i], reviews[j] = reviews[j], reviews[i]
	}

	return reviews, nil
}

// AverageRating is the mean rating rounded to one decimal, 0 without reviews.
func (s *Service) AverageRating(ctx context.Context, productID string) (float64, error) {
	reviews, err := s.reviewRepo.FindReviewsByProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	if len(reviews) == 0 {
		return 0, nil
	}

	var sum int64
	for _, r := range reviews {
		sum += int64(r.Rating)
	}

	avg := decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(len(reviews)))).Round(1)
	return avg.InexactFloat64(), nil
}

func (s *Service) DeleteReview(ctx context.Context, actor domain.Actor, reviewID string) error {
	if actor.Role != domain.RoleAdmin {
		return domain.NewAuthorization("admin access required")
	}

	err := s.unit.Do(ctx, func() (bool, error) {
		if err := s.reviewRepo.DeleteReview(ctx, reviewID); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	logger.Info("review deleted", "review_id", reviewID, "user_id", actor.UserID)

	return nil
}
