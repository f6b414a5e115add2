package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"marketplace/domain"
	"marketplace/pkg/logger"
	jsonres "marketplace/pkg/response"
	"marketplace/pkg/utils"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextToken  = "token"
)

// TokenParser verifies a signed session token.
type TokenParser interface {
	ParseJWT(token string) (*utils.Claims, error)
}

// TokenValidator checks that a token is still in the session allow-list.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", msg, nil))
}

func forbidden(c echo.Context, msg string) error {
	return c.JSON(http.StatusForbidden, jsonres.Error("FORBIDDEN", msg, nil))
}

// AuthMiddleware authenticates the bearer token. When sessions is non-nil the
// token must also be present in the session store, so logout takes effect
// before the token expires.
func AuthMiddleware(parser TokenParser, sessions TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthorized(c, "Missing authorization header")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return unauthorized(c, "Invalid authorization format")
			}
			tokenString := tokenParts[1]

			claims, err := parser.ParseJWT(tokenString)
			if err != nil {
				logger.Debug("failed to parse JWT", "error", err)
				return unauthorized(c, "Invalid token")
			}

			role, ok := domain.ParseRole(claims.Role)
			if !ok || claims.UserID == "" {
				return forbidden(c, "Invalid token claims")
			}

			if sessions != nil {
				ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
				defer cancel()

				userID, err := sessions.ValidateToken(ctx, tokenString)
				if err != nil {
					logger.Warn("token not found in session store", "error", err)
					return unauthorized(c, "Token expired or invalid")
				}
				if userID != claims.UserID {
					logger.Error("user id mismatch between token and session store")
					return unauthorized(c, "Invalid token")
				}
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextRole, role)
			c.Set(ContextToken, tokenString)

			return next(c)
		}
	}
}

// ActorFrom returns the authenticated caller set by AuthMiddleware.
func ActorFrom(c echo.Context) (domain.Actor, bool) {
	userID, ok := c.Get(ContextUserID).(string)
	if !ok || userID == "" {
		return domain.Actor{}, false
	}
	role, ok := c.Get(ContextRole).(domain.Role)
	if !ok {
		return domain.Actor{}, false
	}

	return domain.Actor{UserID: userID, Role: role}, true
}

// RequireRoles rejects callers whose role is not listed.
func RequireRoles(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFrom(c)
			if !ok {
				return unauthorized(c, "User not authenticated")
			}
			if !slices.Contains(roles, actor.Role) {
				return forbidden(c, "Insufficient role")
			}

			return next(c)
		}
	}
}

func AdminOnly() echo.MiddlewareFunc {
	return RequireRoles(domain.RoleAdmin)
}
