package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"marketplace/domain"
	"marketplace/internal/middleware"
	"marketplace/pkg/logger"
	jsonres "marketplace/pkg/response"
)

const defaultTimeout = 10 * time.Second

func writeError(c echo.Context, err error) error {
	status, body := jsonres.FromError(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.JSON(status, body)
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, jsonres.Error("BAD_REQUEST", err.Error(), nil))
}

func bindAndValidate(c echo.Context, v *validator.Validate, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return v.Struct(req)
}

func actorOf(c echo.Context) (domain.Actor, error) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return domain.Actor{}, domain.NewAuthorization("user not authenticated")
	}
	return actor, nil
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), defaultTimeout)
}

func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
