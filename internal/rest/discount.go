package rest

import (
	"context"
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"marketplace/business/discount"
	"marketplace/domain"
)

type (
	DiscountHandler struct {
		validate        *validator.Validate
		discountService DiscountService
		spinService     SpinService
	}

	DiscountService interface {
		CreateForUser(ctx context.Context, actor domain.Actor, pct int, userID string) (domain.DiscountCode, error)
		Validate(ctx context.Context, code, userID string) (domain.DiscountCode, error)
		ListUserCodes(ctx context.Context, userID string) ([]domain.DiscountCode, error)
	}

	SpinService interface {
		Spin(ctx context.Context, userID string) (discount.SpinResult, error)
		Status(ctx context.Context, userID string) (domain.SpinStatus, error)
		ResetSpinAttempts(ctx context.Context, actor domain.Actor) (int, error)
	}

	DiscountCreateInput struct {
		UserID     string `json:"user_id" validate:"required"`
		Percentage int    `json:"percentage" validate:"required"`
	}

	DiscountValidateInput struct {
		Code string `json:"code" validate:"required"`
	}

	SpinResponse struct {
		Attempt domain.SpinAttempt   `json:"attempt"`
		Code    *domain.DiscountCode `json:"discount_code,omitempty"`
		Status  domain.SpinStatus    `json:"status"`
	}
)

func NewDiscountHandler(discountService DiscountService, spinService SpinService, validate *validator.Validate) *DiscountHandler {
	return &DiscountHandler{
		validate:        validate,
		discountService: discountService,
		spinService:     spinService,
	}
}

func (h *DiscountHandler) GetMyCodes(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	codes, err := h.discountService.ListUserCodes(ctx, actor.UserID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(codes))
}

// ValidateCode lets a customer check a code before checkout. Nothing is consumed.
func (h *DiscountHandler) ValidateCode(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	var req DiscountValidateInput
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	code, err := h.discountService.Validate(ctx, req.Code, actor.UserID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(code))
}

func (h *DiscountHandler) CreateCode(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	var req DiscountCreateInput
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	code, err := h.discountService.CreateForUser(ctx, actor, req.Percentage, req.UserID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(code))
}

func (h *DiscountHandler) Spin(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.spinService.Spin(ctx, actor.UserID)
	if err != nil {
		return writeError(c, err)
	}

	status, err := h.spinService.Status(ctx, actor.UserID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(SpinResponse{
		Attempt: res.Attempt,
		Code:    res.Code,
		Status:  status,
	}))
}

func (h *DiscountHandler) GetSpinStatus(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	status, err := h.spinService.Status(ctx, actor.UserID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(status))
}

func (h *DiscountHandler) ResetSpins(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	n, err := h.spinService.ResetSpinAttempts(ctx, actor)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]int{"removed": n}))
}
