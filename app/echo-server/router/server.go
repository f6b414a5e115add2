package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketplace/app/echo-server/metrics"
	"marketplace/internal/app"
	"marketplace/internal/middleware"
	"marketplace/internal/rest"
)

// Sessions is the optional token allow-list. Pass nil to rely on token
// signatures alone.
type Sessions interface {
	rest.SessionStore
	middleware.TokenValidator
}

func NewHandlers(a *app.App, sessions Sessions) Handlers {
	var store rest.SessionStore
	if sessions != nil {
		store = sessions
	}

	return Handlers{
		User:     rest.NewUserHandler(a.Users, store, a.Tokens.TTL(), a.Validate),
		Product:  rest.NewProductHandler(a.Catalog, a.Validate),
		Cart:     rest.NewCartHandler(a.Cart, a.Validate),
		Orders:   rest.NewOrdersHandler(a.Orders, a.Validate),
		Discount: rest.NewDiscountHandler(a.Discounts, a.Spins, a.Validate),
		Review:   rest.NewReviewHandler(a.Reviews, a.Validate),
	}
}

// New builds the echo instance with global middleware and every route.
func New(a *app.App, sessions Sessions, allowOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = middleware.ErrorHandler

	e.Use(echomiddleware.Recover())
	e.Use(metrics.Middleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	var validator middleware.TokenValidator
	if sessions != nil {
		validator = sessions
	}
	authRequired := middleware.AuthMiddleware(a.Tokens, validator)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	Setup(api, NewHandlers(a, sessions), authRequired)

	return e
}
