package rest

import (
	"context"
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"marketplace/business/review"
	"marketplace/domain"
)

type (
	ReviewHandler struct {
		validate      *validator.Validate
		reviewService ReviewService
	}

	ReviewService interface {
		AddReview(ctx context.Context, actor domain.Actor, productID string, in review.ReviewInput) (domain.Review, error)
		Reviews(ctx context.Context, productID string) ([]domain.Review, error)
		AverageRating(ctx context.Context, productID string) (float64, error)
		DeleteReview(ctx context.Context, actor domain.Actor, reviewID string) error
	}

	ReviewList struct {
		AverageRating float64         `json:"average_rating"`
		Count         int             `json:"count"`
		Reviews       []domain.Review `json:"reviews"`
	}
)

func NewReviewHandler(reviewService ReviewService, validate *validator.Validate) *ReviewHandler {
	return &ReviewHandler{
		validate:      validate,
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) GetReviews(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	productID := c.Param("id")
	reviews, err := h.reviewService.Reviews(ctx, productID)
	if err != nil {
		return writeError(c, err)
	}
	avg, err := h.reviewService.AverageRating(ctx, productID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(ReviewList{
		AverageRating: avg,
		Count:         len(reviews),
		Reviews:       reviews,
	}))
}

func (h *ReviewHandler) AddReview(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	var req review.ReviewInput
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	r, err := h.reviewService.AddReview(ctx, actor, c.Param("id"), req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(r))
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.reviewService.DeleteReview(ctx, actor, c.Param("review_id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Review deleted successfully"))
}
