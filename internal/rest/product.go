package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"marketplace/business/catalog"
	"marketplace/domain"
)

type (
	ProductHandler struct {
		validate       *validator.Validate
		productService ProductService
	}

	ProductService interface {
		CreateProduct(ctx context.Context, actor domain.Actor, in catalog.ProductInput) (domain.Product, error)
		UpdateProduct(ctx context.Context, actor domain.Actor, id string, in catalog.ProductInput) (domain.Product, error)
		DeleteProduct(ctx context.Context, actor domain.Actor, id string) error
		ToggleActive(ctx context.Context, actor domain.Actor, id string) (domain.Product, error)
		SetStock(ctx context.Context, actor domain.Actor, id string, stock int) (domain.Product, error)
		GetProduct(ctx context.Context, id string) (domain.Product, error)
		ListProducts(ctx context.Context, category string) ([]domain.Product, error)
		ListByVendor(ctx context.Context, vendorID string) ([]domain.Product, error)
		ListAll(ctx context.Context, actor domain.Actor) ([]domain.Product, error)
		Categories(ctx context.Context) ([]catalog.CategoryCount, error)
		GetPromotionalProducts(ctx context.Context) ([]domain.Product, error)
		GetFeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error)
	}

	ProductRequest struct {
		Name               string           `json:"name" validate:"required,max=200"`
		Description        string           `json:"description"`
		Price              decimal.Decimal  `json:"price"`
		Category           string           `json:"category" validate:"required"`
		ImageFilename      string           `json:"image_filename"`
		Stock              int              `json:"stock" validate:"gte=0"`
		IsPromotional      bool             `json:"is_promotional"`
		PromotionalPrice   *decimal.Decimal `json:"promotional_price"`
		PromotionalEndDate *time.Time       `json:"promotional_end_date"`
	}

	StockRequest struct {
		Stock int `json:"stock" validate:"gte=0"`
	}
)

func NewProductHandler(productService ProductService, validate *validator.Validate) *ProductHandler {
	return &ProductHandler{
		validate:       validate,
		productService: productService,
	}
}

func (r ProductRequest) input() catalog.ProductInput {
	return catalog.ProductInput{
		Name:               r.Name,
		Description:        r.Description,
		Price:              r.Price,
		Category:           r.Category,
		ImageFilename:      r.ImageFilename,
		Stock:              r.Stock,
		IsPromotional:      r.IsPromotional,
		PromotionalPrice:   r.PromotionalPrice,
		PromotionalEndDate: r.PromotionalEndDate,
	}
}

func (h *ProductHandler) GetAllProducts(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.productService.ListProducts(ctx, c.QueryParam("category"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}

func (h *ProductHandler) GetProductByID(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.productService.GetProduct(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(product))
}

func (h *ProductHandler) GetFeatured(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.productService.GetFeaturedProducts(ctx, queryInt(c, "limit", 8))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}

func (h *ProductHandler) GetPromotions(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.productService.GetPromotionalProducts(ctx)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}

func (h *ProductHandler) GetCategories(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	categories, err := h.productService.Categories(ctx)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(categories))
}

// GetMyProducts lists every product of the calling vendor, inactive included.
func (h *ProductHandler) GetMyProducts(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.productService.ListByVendor(ctx, actor.UserID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}

func (h *ProductHandler) GetAllProductsAdmin(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.productService.ListAll(ctx, actor)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	var req ProductRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.productService.CreateProduct(ctx, actor, req.input())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(product))
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	var req ProductRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.productService.UpdateProduct(ctx, actor, c.Param("id"), req.input())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(product))
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.productService.DeleteProduct(ctx, actor, c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Product deleted successfully"))
}

func (h *ProductHandler) ToggleActive(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.productService.ToggleActive(ctx, actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(product))
}

func (h *ProductHandler) SetStock(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	var req StockRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.productService.SetStock(ctx, actor, c.Param("id"), req.Stock)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(product))
}
