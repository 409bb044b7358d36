package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"ecommerce-backend/internal/model"
	"ecommerce-backend/internal/token"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// Auth verifies the bearer token and attaches the caller's identity to
// the request context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			userID, role, err := token.Verify(jwtSecret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ContextUserID, userID)
			c.Set(ContextRole, role)
			return next(c)
		}
	}
}

// RequireAdmin rejects callers whose token does not carry the admin
// role. Must run after Auth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if RoleFromContext(c) != model.RoleAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "not authorized as admin")
			}
			return next(c)
		}
	}
}

func UserIDFromContext(c echo.Context) string {
	userID, _ := c.Get(ContextUserID).(string)
	return userID
}

func RoleFromContext(c echo.Context) model.Role {
	role, _ := c.Get(ContextRole).(model.Role)
	return role
}
