package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edulearn/lms/internal/core/domain"
	"github.com/edulearn/lms/internal/core/ports"
)

// RBAC enforces role-based access control. It must run after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ClaimsKey).(ports.TokenClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]any{"success": false, "error": "Not authorized to access this route"})
			}
			if _, ok := allowed[claims.Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]any{
					"success": false,
					"error":   "User role " + claims.Role.String() + " is not authorized to access this route",
				})
			}
			return next(c)
		}
	}
}
