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
	OrdersHandler struct {
		validate      *validator.Validate
		ordersService OrdersService
	}

	OrdersService interface {
		Checkout(ctx context.Context, actor domain.Actor, discountCode string) (domain.Order, error)
		UpdateStatus(ctx context.Context, actor domain.Actor, orderID string, target domain.OrderStatus) (domain.Order, error)
		SubmitPayment(ctx context.Context, actor domain.Actor, orderID string) (domain.Order, error)
		ConfirmReceipt(ctx context.Context, actor domain.Actor, orderID string) (domain.Order, error)
		Approve(ctx context.Context, actor domain.Actor, orderID string) (domain.Order, error)
		ConfirmDelivery(ctx context.Context, actor domain.Actor, orderID string) (domain.Order, error)
		Cancel(ctx context.Context, actor domain.Actor, orderID string) (domain.Order, error)
		Delete(ctx context.Context, actor domain.Actor, orderID string) error
		GetOrder(ctx context.Context, actor domain.Actor, orderID string) (domain.Order, error)
		ListOrders(ctx context.Context, actor domain.Actor) ([]domain.Order, error)
		ListByStatus(ctx context.Context, actor domain.Actor, status domain.OrderStatus) ([]domain.Order, error)
		AddComment(ctx context.Context, actor domain.Actor, orderID, message string) (domain.OrderComment, error)
		Comments(ctx context.Context, actor domain.Actor, orderID string) ([]domain.OrderComment, error)
	}

	CheckoutInput struct {
		DiscountCode string `json:"discount_code" validate:"omitempty,len=6,alphanum"`
	}

	StatusInput struct {
		Status string `json:"status" validate:"required"`
	}

	CommentInput struct {
		Message string `json:"message" validate:"required,max=2000"`
	}
)

func NewOrdersHandler(ordersService OrdersService, validate *validator.Validate) *OrdersHandler {
	return &OrdersHandler{
		validate:      validate,
		ordersService: ordersService,
	}
}

func (h *OrdersHandler) Checkout(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	var req CheckoutInput
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.ordersService.Checkout(ctx, actor, req.DiscountCode)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(order))
}

func (h *OrdersHandler) GetAllOrders(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	var orders []domain.Order
	if status := c.QueryParam("status"); status != "" {
		orders, err = h.ordersService.ListByStatus(ctx, actor, domain.OrderStatus(status))
	} else {
		orders, err = h.ordersService.ListOrders(ctx, actor)
	}
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(orders))
}

func (h *OrdersHandler) GetOrderByID(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.ordersService.GetOrder(ctx, actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) UpdateStatus(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	var req StatusInput
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.ordersService.UpdateStatus(ctx, actor, c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

type orderAction func(ctx context.Context, actor domain.Actor, orderID string) (domain.Order, error)

func (h *OrdersHandler) runAction(c echo.Context, action orderAction) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := action(ctx, actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) SubmitPayment(c echo.Context) error {
	return h.runAction(c, h.ordersService.SubmitPayment)
}

func (h *OrdersHandler) ConfirmReceipt(c echo.Context) error {
	return h.runAction(c, h.ordersService.ConfirmReceipt)
}

func (h *OrdersHandler) Approve(c echo.Context) error {
	return h.runAction(c, h.ordersService.Approve)
}

func (h *OrdersHandler) ConfirmDelivery(c echo.Context) error {
	return h.runAction(c, h.ordersService.ConfirmDelivery)
}

func (h *OrdersHandler) Cancel(c echo.Context) error {
	return h.runAction(c, h.ordersService.Cancel)
}

func (h *OrdersHandler) DeleteOrder(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.ordersService.Delete(ctx, actor, c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Order deleted successfully"))
}

func (h *OrdersHandler) AddComment(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	var req CommentInput
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.ordersService.AddComment(ctx, actor, c.Param("id"), req.Message)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(comment))
}

func (h *OrdersHandler) GetComments(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comments, err := h.ordersService.Comments(ctx, actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(comments))
}
