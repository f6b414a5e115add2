package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"marketplace/business/user"
	"marketplace/domain"
	"marketplace/internal/repository/redis"
	"marketplace/pkg/logger"
)

type UserService interface {
	Register(ctx context.Context, in user.RegisterInput) (domain.User, error)
	Login(ctx context.Context, email, password string) (string, domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetAllUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error)
	AddToWishlist(ctx context.Context, actor domain.Actor, productID string) error
	RemoveFromWishlist(ctx context.Context, actor domain.Actor, productID string) error
	Wishlist(ctx context.Context, userID string) ([]domain.Product, error)
}

// SessionStore tracks issued tokens. It is optional.
type SessionStore interface {
	StoreSession(ctx context.Context, data redis.SessionData, ttl time.Duration) error
	RevokeSession(ctx context.Context, userID string) error
}

type UserHandler struct {
	userService UserService
	sessions    SessionStore
	tokenTTL    time.Duration
	validator   *validator.Validate
}

func NewUserHandler(userService UserService, sessions SessionStore, tokenTTL time.Duration, validate *validator.Validate) *UserHandler {
	return &UserHandler{
		userService: userService,
		sessions:    sessions,
		tokenTTL:    tokenTTL,
		validator:   validate,
	}
}

type UserRegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=customer vendor seller buyer"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type WishlistRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

func (h *UserHandler) Register(c echo.Context) error {
	var req UserRegisterRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.userService.Register(ctx, user.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(u))
}

func (h *UserHandler) Login(c echo.Context) error {
	var req UserLoginRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	token, u, err := h.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	if h.sessions != nil {
		now := time.Now()
		err := h.sessions.StoreSession(ctx, redis.SessionData{
			UserID:    u.ID,
			Role:      string(u.Role),
			Token:     token,
			IssuedAt:  now,
			ExpiresAt: now.Add(h.tokenTTL),
			IPAddress: c.RealIP(),
			UserAgent: c.Request().UserAgent(),
		}, h.tokenTTL)
		if err != nil {
			logger.Error("failed to store session", "user_id", u.ID, "error", err)
			return writeError(c, err)
		}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"token": token,
		"user":  u,
	}))
}

func (h *UserHandler) Logout(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	if h.sessions != nil {
		ctx, cancel := requestContext(c)
		defer cancel()

		if err := h.sessions.RevokeSession(ctx, actor.UserID); err != nil {
			logger.Warn("failed to revoke session", "user_id", actor.UserID, "error", err)
		}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Logged out"))
}

func (h *UserHandler) Me(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.userService.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(u))
}

func (h *UserHandler) GetAllUsers(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.userService.GetAllUsers(ctx, actor)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(users))
}

func (h *UserHandler) GetWishlist(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.userService.Wishlist(ctx, actor.UserID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}

func (h *UserHandler) AddToWishlist(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	var req WishlistRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.userService.AddToWishlist(ctx, actor, req.ProductID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("Added to wishlist"))
}

func (h *UserHandler) RemoveFromWishlist(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.userService.RemoveFromWishlist(ctx, actor, c.Param("product_id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Removed from wishlist"))
}
