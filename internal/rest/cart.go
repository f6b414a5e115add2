package rest

import (
	"context"
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"marketplace/domain"
)

type (
	CartHandler struct {
		validate    *validator.Validate
		cartService CartService
	}

	CartService interface {
		AddToCart(ctx context.Context, actor domain.Actor, productID string, qty int) (domain.CartItem, error)
		UpdateQuantity(ctx context.Context, actor domain.Actor, productID string, qty int) (domain.CartItem, error)
		RemoveItem(ctx context.Context, actor domain.Actor, productID string) error
		Clear(ctx context.Context, actor domain.Actor) (int, error)
		Summary(ctx context.Context, userID string) (domain.CartSummary, error)
	}

	CartInput struct {
		ProductID string `json:"product_id" validate:"required"`
		Quantity  int    `json:"quantity" validate:"required,min=1"`
	}

	QuantityInput struct {
		Quantity int `json:"quantity" validate:"required,min=1"`
	}
)

func NewCartHandler(cartService CartService, validate *validator.Validate) *CartHandler {
	return &CartHandler{
		validate:    validate,
		cartService: cartService,
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	summary, err := h.cartService.Summary(ctx, actor.UserID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(summary))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	var req CartInput
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := h.cartService.AddToCart(ctx, actor, req.ProductID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(item))
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	var req QuantityInput
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := h.cartService.UpdateQuantity(ctx, actor, c.Param("product_id"), req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(item))
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.cartService.RemoveItem(ctx, actor, c.Param("product_id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Item removed"))
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	n, err := h.cartService.Clear(ctx, actor)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]int{"removed": n}))
}
